package inmemory

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"taskBoard/internal/remote"
)

// Call - запись об одном обращении к хранилищу
type Call struct {
	Method     string
	Collection remote.Collection
	ID         string
	Body       []byte
}

type Storage struct {
	storage map[remote.Collection]map[string][]byte
	ids     map[remote.Collection][]string
	mtx     *sync.RWMutex

	calls []Call
	fail  error
}

func NewStorage() *Storage {
	return &Storage{
		storage: make(map[remote.Collection]map[string][]byte),
		ids:     make(map[remote.Collection][]string),
		mtx:     &sync.RWMutex{},
	}
}

// FailWith заставляет все последующие вызовы возвращать err (nil снимает сбой)
func (s *Storage) FailWith(err error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.fail = err
}

func (s *Storage) Get(ctx context.Context, c remote.Collection) (map[string]json.RawMessage, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.calls = append(s.calls, Call{Method: "GET", Collection: c})
	if s.fail != nil {
		return nil, s.fail
	}

	docs, ok := s.storage[c]
	if !ok || len(docs) == 0 {
		return nil, nil
	}
	res := make(map[string]json.RawMessage, len(docs))
	for id, body := range docs {
		res[id] = json.RawMessage(slices.Clone(body))
	}
	return res, nil
}

func (s *Storage) Put(ctx context.Context, c remote.Collection, id string, body []byte) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.calls = append(s.calls, Call{Method: "PUT", Collection: c, ID: id, Body: slices.Clone(body)})
	if s.fail != nil {
		return s.fail
	}

	if s.storage[c] == nil {
		s.storage[c] = make(map[string][]byte)
	}
	if _, exists := s.storage[c][id]; !exists {
		s.ids[c] = append(s.ids[c], id)
	}
	s.storage[c][id] = slices.Clone(body)
	return nil
}

func (s *Storage) Delete(ctx context.Context, c remote.Collection, id string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.calls = append(s.calls, Call{Method: "DELETE", Collection: c, ID: id})
	if s.fail != nil {
		return s.fail
	}

	delete(s.storage[c], id)
	s.ids[c] = slices.DeleteFunc(s.ids[c], func(v string) bool { return v == id })
	return nil
}

// Seed кладёт документ напрямую, не записывая вызов
func (s *Storage) Seed(c remote.Collection, id string, entity any) error {
	body, err := json.Marshal(entity)
	if err != nil {
		return err
	}
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if s.storage[c] == nil {
		s.storage[c] = make(map[string][]byte)
	}
	if _, exists := s.storage[c][id]; !exists {
		s.ids[c] = append(s.ids[c], id)
	}
	s.storage[c][id] = body
	return nil
}

// Document возвращает сохранённое тело документа
func (s *Storage) Document(c remote.Collection, id string) ([]byte, bool) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	body, ok := s.storage[c][id]
	return slices.Clone(body), ok
}

// IDs возвращает ключи коллекции в порядке первой записи
func (s *Storage) IDs(c remote.Collection) []string {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return slices.Clone(s.ids[c])
}

func (s *Storage) Calls() []Call {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	return slices.Clone(s.calls)
}

// Writes возвращает только PUT и DELETE
func (s *Storage) Writes() []Call {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	var res []Call
	for _, c := range s.calls {
		if c.Method != "GET" {
			res = append(res, c)
		}
	}
	return res
}

func (s *Storage) ResetCalls() {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	s.calls = nil
}
