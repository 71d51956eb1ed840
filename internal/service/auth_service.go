package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"taskBoard/internal/cache"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/remote"
	"taskBoard/internal/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Login проверяет пароль по коллекции users и открывает сессию.
// remember сохраняет только email, пароль не сохраняется никогда.
func (s *Service) Login(ctx context.Context, email, password string, remember bool) (session.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return session.Session{}, NewValidationError("email", "не может быть пустым")
	}
	if password == "" {
		return session.Session{}, NewValidationError("password", "не может быть пустым")
	}

	users := remote.Decode[contact.User](s.remote.FetchAll(ctx, remote.Users))
	var found *contact.User
	for i := range users {
		if users[i].Email == email {
			found = &users[i]
			break
		}
	}
	if found == nil || !checkPassword(found.Password, password) {
		logger.Warn("Service: Неудачная попытка входа", zap.String("email", email))
		return session.Session{}, NewInvalidCredentials()
	}

	sess, err := s.sessions.Begin(*found)
	if err != nil {
		return session.Session{}, fmt.Errorf("начало сессии: %w", err)
	}

	if remember {
		err = s.sessions.Remember(email)
	} else {
		err = s.sessions.Forget()
	}
	if err != nil {
		logger.Warn("Service: Не удалось обновить remember-me", zap.Error(err))
	}

	if err := s.open(ctx, sess, nil); err != nil {
		return session.Session{}, err
	}
	return sess, nil
}

// Register заводит пользователя и его контакт и сразу открывает сессию
func (s *Service) Register(ctx context.Context, name, email, password string) (session.Session, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	if name == "" {
		return session.Session{}, NewValidationError("name", "не может быть пустым")
	}
	if !strings.Contains(email, "@") {
		return session.Session{}, NewValidationError("email", "некорректный адрес")
	}
	if strings.EqualFold(email, session.GuestEmail) {
		return session.Session{}, NewEmailTaken(email)
	}
	if password == "" {
		return session.Session{}, NewValidationError("password", "не может быть пустым")
	}

	c := cache.New(s.remote, session.Authenticated(contact.User{Name: name, Email: email}))
	if err := c.LoadAll(ctx); err != nil {
		return session.Session{}, fmt.Errorf("загрузка данных: %w", err)
	}
	if _, err := c.UserByEmail(email); err == nil {
		return session.Session{}, NewEmailTaken(email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		logger.Error("Service: Ошибка хеширования пароля", err)
		return session.Session{}, fmt.Errorf("хеширование пароля: %w", err)
	}

	user := contact.User{ID: c.NewID(), Name: name, Email: email, Password: string(hash)}
	c.Rebind(session.Authenticated(user))
	c.AddUser(ctx, user)

	if _, err := c.ContactByEmail(email); errors.Is(err, cache.ErrNotFound) {
		if err := c.UpsertContact(ctx, contact.FromUser(c.NewID(), user, contact.RegisteredColor)); err != nil {
			logger.Warn("Service: Контакт пользователя не создан", zap.String("email", email), zap.Error(err))
		}
	}

	sess, err := s.sessions.Begin(user)
	if err != nil {
		return session.Session{}, fmt.Errorf("начало сессии: %w", err)
	}
	if err := s.open(ctx, sess, c); err != nil {
		return session.Session{}, err
	}

	logger.Info("Service: Пользователь зарегистрирован", zap.Int64("id", user.ID), zap.String("email", email))
	return sess, nil
}

// checkPassword принимает bcrypt-хеш и, для старых записей, открытый текст
func checkPassword(stored, given string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
	}
	return stored != "" && subtle.ConstantTimeCompare([]byte(stored), []byte(given)) == 1
}
