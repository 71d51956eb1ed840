package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"taskBoard/internal/board"
	"taskBoard/internal/cache"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Sessions - хранилище маркера сессии, *session.Store подходит
type Sessions interface {
	Resolve() (session.Session, error)
	Begin(u contact.User) (session.Session, error)
	BeginGuest() (session.Session, error)
	End() error
	Remember(email string) error
	Remembered() (string, bool)
	Forget() error
}

// workspace живёт от входа до выхода
type workspace struct {
	session session.Session
	cache   *cache.Cache
	board   *board.Board
}

type Service struct {
	remote   cache.Remote
	sessions Sessions

	mtx *sync.RWMutex
	ws  *workspace

	pick       func(n int) int
	bcryptCost int
}

type Option func(*Service)

// WithColorPicker подменяет выбор цвета значка (для тестов)
func WithColorPicker(pick func(n int) int) Option {
	return func(s *Service) {
		s.pick = pick
	}
}

func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(r cache.Remote, sessions Sessions, options ...Option) *Service {
	s := &Service{
		remote:     r,
		sessions:   sessions,
		mtx:        &sync.RWMutex{},
		pick:       rand.IntN,
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Start восстанавливает сессию по маркеру при запуске процесса
func (s *Service) Start(ctx context.Context) (session.Session, error) {
	sess, err := s.sessions.Resolve()
	if err != nil {
		if errors.Is(err, session.ErrNoSession) {
			logger.Info("Service: Активной сессии нет")
		}
		return session.Session{}, err
	}
	if err := s.open(ctx, sess, nil); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

func (s *Service) LoginGuest(ctx context.Context) (session.Session, error) {
	sess, err := s.sessions.BeginGuest()
	if err != nil {
		return session.Session{}, fmt.Errorf("гостевой вход: %w", err)
	}
	if err := s.open(ctx, sess, nil); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// open строит кэш для новой сессии, загружает его и подменяет текущий
func (s *Service) open(ctx context.Context, sess session.Session, c *cache.Cache) error {
	if c == nil {
		c = cache.New(s.remote, sess)
		if err := c.LoadAll(ctx); err != nil {
			return fmt.Errorf("загрузка данных: %w", err)
		}
	}

	s.mtx.Lock()
	old := s.ws
	s.ws = &workspace{session: sess, cache: c, board: board.New(c)}
	s.mtx.Unlock()

	if old != nil {
		old.cache.Wait()
	}
	logger.Info("Service: Сессия открыта",
		zap.String("kind", sess.Kind.String()),
		zap.String("email", sess.User.Email))
	return nil
}

func (s *Service) Logout(ctx context.Context) error {
	if err := s.sessions.End(); err != nil {
		return fmt.Errorf("выход: %w", err)
	}

	s.mtx.Lock()
	old := s.ws
	s.ws = nil
	s.mtx.Unlock()

	if old != nil {
		old.cache.Wait()
	}
	return nil
}

func (s *Service) Current() (session.Session, error) {
	ws, err := s.workspace()
	if err != nil {
		return session.Session{}, err
	}
	return ws.session, nil
}

func (s *Service) Remembered() (string, bool) {
	return s.sessions.Remembered()
}

// Reload перечитывает данные сессии из удалённого хранилища
func (s *Service) Reload(ctx context.Context) error {
	ws, err := s.workspace()
	if err != nil {
		return err
	}
	if ws.session.IsGuest() {
		return NewGuestForbidden("reload")
	}
	return ws.cache.LoadAll(ctx)
}

// Pending - число незавершённых записей текущей сессии
func (s *Service) Pending() int {
	ws, err := s.workspace()
	if err != nil {
		return 0
	}
	return ws.cache.Pending()
}

// Close дожидается фоновых записей текущей сессии
func (s *Service) Close() {
	s.mtx.RLock()
	ws := s.ws
	s.mtx.RUnlock()
	if ws != nil {
		ws.cache.Wait()
	}
}

func (s *Service) workspace() (*workspace, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	if s.ws == nil {
		return nil, session.ErrNoSession
	}
	return s.ws, nil
}
