package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/contact"

	"go.uber.org/zap"
)

// GuestEmail - служебный email, которым помечен гостевой режим
const GuestEmail = "guest@join.com"

const (
	markerFile   = "session.json"
	rememberFile = "remember.json"
)

var ErrNoSession = errors.New("нет активной сессии")

type Kind int

const (
	KindGuest Kind = iota + 1
	KindAuthenticated
)

func (k Kind) String() string {
	switch k {
	case KindGuest:
		return "guest"
	case KindAuthenticated:
		return "authenticated"
	default:
		return "none"
	}
}

type Session struct {
	Kind Kind
	User contact.User
}

// Persistent сообщает, уходят ли изменения в удалённое хранилище
func (s Session) Persistent() bool {
	return s.Kind == KindAuthenticated
}

func (s Session) IsGuest() bool {
	return s.Kind == KindGuest
}

// Guest - гостевая сессия без обращения к диску
func Guest() Session {
	return Session{Kind: KindGuest, User: contact.User{Name: "Guest", Email: GuestEmail}}
}

func Authenticated(u contact.User) Session {
	return Session{Kind: KindAuthenticated, User: u.Public()}
}

type marker struct {
	ID    int64  `json:"id,omitempty"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type remembered struct {
	Email string `json:"email"`
}

// Store хранит маркер сессии и email для "запомнить меня" в каталоге dir
type Store struct {
	dir string
	mtx *sync.Mutex
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		logger.Error("Session: Не удалось создать каталог", err, zap.String("dir", dir))
		return nil, fmt.Errorf("каталог сессии: %w", err)
	}
	return &Store{dir: dir, mtx: &sync.Mutex{}}, nil
}

// Resolve заново читает маркер. Отсутствующий или битый маркер - ErrNoSession.
func (s *Store) Resolve() (Session, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var m marker
	if err := s.read(markerFile, &m); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.Warn("Session: Повреждённый маркер сессии", zap.Error(err))
		}
		return Session{}, ErrNoSession
	}
	if m.Email == "" {
		return Session{}, ErrNoSession
	}

	if strings.EqualFold(m.Email, GuestEmail) {
		return Guest(), nil
	}
	return Authenticated(contact.User{ID: m.ID, Name: m.Name, Email: m.Email}), nil
}

func (s *Store) Begin(u contact.User) (Session, error) {
	if strings.EqualFold(u.Email, GuestEmail) {
		return s.BeginGuest()
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := s.write(markerFile, marker{ID: u.ID, Name: u.Name, Email: u.Email}); err != nil {
		return Session{}, err
	}
	logger.Info("Session: Вход выполнен", zap.String("email", u.Email))
	return Authenticated(u), nil
}

func (s *Store) BeginGuest() (Session, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	g := Guest()
	if err := s.write(markerFile, marker{Name: g.User.Name, Email: g.User.Email}); err != nil {
		return Session{}, err
	}
	logger.Info("Session: Гостевой вход")
	return g, nil
}

// End удаляет маркер. Запомненный email остаётся.
func (s *Store) End() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := os.Remove(filepath.Join(s.dir, markerFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Error("Session: Ошибка удаления маркера", err)
		return fmt.Errorf("удаление маркера: %w", err)
	}
	logger.Info("Session: Выход")
	return nil
}

// Remember сохраняет только email для предзаполнения формы входа
func (s *Store) Remember(email string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.write(rememberFile, remembered{Email: email})
}

func (s *Store) Remembered() (string, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var r remembered
	if err := s.read(rememberFile, &r); err != nil || r.Email == "" {
		return "", false
	}
	return r.Email, true
}

func (s *Store) Forget() error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if err := os.Remove(filepath.Join(s.dir, rememberFile)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("удаление remember-me: %w", err)
	}
	return nil
}

func (s *Store) read(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// write пишет во временный файл и переименовывает поверх старого
func (s *Store) write(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("сериализация %s: %w", name, err)
	}

	tmp, err := os.CreateTemp(s.dir, name+".*")
	if err != nil {
		return fmt.Errorf("временный файл: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("права %s: %w", name, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("запись %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("запись %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		logger.Error("Session: Ошибка сохранения файла", err, zap.String("file", name))
		return fmt.Errorf("сохранение %s: %w", name, err)
	}
	return nil
}
