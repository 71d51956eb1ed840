package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"taskBoard/internal/logger"
	"time"

	"go.uber.org/zap"
)

type Collection string

const (
	Tasks    Collection = "tasks"
	Contacts Collection = "contacts"
	Users    Collection = "users"
)

var ErrUnknownCollection = errors.New("неизвестная коллекция")

func (c Collection) Valid() bool {
	return c == Tasks || c == Contacts || c == Users
}

// Backend - транспорт к дереву документов. Get возвращает nil-карту,
// если коллекция пуста (ответ null).
type Backend interface {
	Get(ctx context.Context, c Collection) (map[string]json.RawMessage, error)
	Put(ctx context.Context, c Collection, id string, body []byte) error
	Delete(ctx context.Context, c Collection, id string) error
}

// Store - CRUD-фасад поверх Backend. Сбои чтения превращаются в пустую
// коллекцию, сбои записи возвращаются как значение и логируются.
type Store struct {
	backend Backend
	name    string
}

func New(backend Backend, name string) *Store {
	return &Store{backend: backend, name: name}
}

func (s *Store) Name() string {
	return s.name
}

func (s *Store) FetchAll(ctx context.Context, c Collection) []json.RawMessage {
	start := time.Now()
	if !c.Valid() {
		logger.Warn("Remote: Неизвестная коллекция", zap.String("collection", string(c)))
		return []json.RawMessage{}
	}

	docs, err := s.backend.Get(ctx, c)
	if err != nil {
		logger.Error("Remote: Ошибка загрузки коллекции", err,
			zap.String("backend", s.name),
			zap.String("collection", string(c)),
			zap.Duration("ms", time.Since(start)))
		return []json.RawMessage{}
	}

	res := make([]json.RawMessage, 0, len(docs))
	for _, key := range orderedKeys(docs) {
		doc := docs[key]
		if len(doc) == 0 || string(doc) == "null" {
			continue
		}
		res = append(res, doc)
	}

	logger.Debug("Remote: Коллекция загружена",
		zap.String("collection", string(c)),
		zap.Int("count", len(res)),
		zap.Duration("ms", time.Since(start)))
	return res
}

func (s *Store) Put(ctx context.Context, c Collection, id int64, entity any) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}
	body, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("сериализация %s/%d: %w", c, id, err)
	}

	if err := s.backend.Put(ctx, c, Key(id), body); err != nil {
		logger.Error("Remote: Ошибка записи документа", err,
			zap.String("backend", s.name),
			zap.String("collection", string(c)),
			zap.Int64("id", id))
		return fmt.Errorf("запись %s/%d: %w", c, id, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, c Collection, id int64) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, c)
	}

	if err := s.backend.Delete(ctx, c, Key(id)); err != nil {
		logger.Error("Remote: Ошибка удаления документа", err,
			zap.String("backend", s.name),
			zap.String("collection", string(c)),
			zap.Int64("id", id))
		return fmt.Errorf("удаление %s/%d: %w", c, id, err)
	}
	return nil
}

// ParseTree принимает объект с ключами-id, null или массив
// (дерево отдаёт массив, когда ключи - плотные маленькие числа)
func ParseTree(data []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	if trimmed[0] == '[' {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return nil, fmt.Errorf("разбор массива: %w", err)
		}
		res := make(map[string]json.RawMessage, len(arr))
		for i, doc := range arr {
			if bytes.Equal(bytes.TrimSpace(doc), []byte("null")) {
				continue
			}
			res[fmt.Sprint(i)] = doc
		}
		return res, nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return nil, fmt.Errorf("разбор объекта: %w", err)
	}
	return obj, nil
}

func Key(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Decode разбирает документы в T, пропуская те, что не удалось разобрать
func Decode[T any](docs []json.RawMessage) []T {
	res := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := json.Unmarshal(doc, &v); err != nil {
			logger.Warn("Remote: Пропущен повреждённый документ", zap.Error(err))
			continue
		}
		res = append(res, v)
	}
	return res
}

// числовые ключи идут по возрастанию перед остальными, как в JS Object.values
func orderedKeys(docs map[string]json.RawMessage) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.ParseInt(keys[i], 10, 64)
		b, errB := strconv.ParseInt(keys[j], 10, 64)
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}
