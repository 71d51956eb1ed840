package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"taskBoard/internal/cache"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/contact"

	"go.uber.org/zap"
)

type ContactInput struct {
	Name  string
	Email string
	Phone string
}

func (in ContactInput) normalize() ContactInput {
	return ContactInput{
		Name:  strings.TrimSpace(in.Name),
		Email: strings.TrimSpace(in.Email),
		Phone: strings.TrimSpace(in.Phone),
	}
}

func (in ContactInput) validate() error {
	if in.Name == "" {
		return NewValidationError("name", "не может быть пустым")
	}
	if !strings.Contains(in.Email, "@") {
		return NewValidationError("email", "некорректный адрес")
	}
	return nil
}

// Contacts возвращает контакты по алфавиту, как в списке контактов
func (s *Service) Contacts() ([]contact.Contact, error) {
	ws, err := s.workspace()
	if err != nil {
		return nil, err
	}
	contacts := ws.cache.Contacts()
	slices.SortStableFunc(contacts, func(a, b contact.Contact) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
	return contacts, nil
}

func (s *Service) CreateContact(ctx context.Context, in ContactInput) (contact.Contact, error) {
	ws, err := s.workspace()
	if err != nil {
		return contact.Contact{}, err
	}

	in = in.normalize()
	if err := in.validate(); err != nil {
		return contact.Contact{}, err
	}
	if _, err := ws.cache.ContactByEmail(in.Email); err == nil {
		return contact.Contact{}, NewEmailTaken(in.Email)
	}

	c := contact.Contact{
		ID:       ws.cache.NewID(),
		Name:     in.Name,
		Email:    in.Email,
		Phone:    in.Phone,
		Color:    contact.Palette[s.pick(len(contact.Palette))],
		Initials: contact.Initials(in.Name),
	}
	if err := ws.cache.UpsertContact(ctx, c); err != nil {
		return contact.Contact{}, contactError(err, c.Email)
	}

	logger.Info("Service: Контакт создан", zap.Int64("id", c.ID))
	return c, nil
}

// UpdateContact находит контакт по прежнему email. id и цвет сохраняются.
func (s *Service) UpdateContact(ctx context.Context, oldEmail string, in ContactInput) (contact.Contact, error) {
	ws, err := s.workspace()
	if err != nil {
		return contact.Contact{}, err
	}

	c, err := ws.cache.ContactByEmail(oldEmail)
	if err != nil {
		return contact.Contact{}, NewNotFound("contact", oldEmail)
	}

	in = in.normalize()
	if err := in.validate(); err != nil {
		return contact.Contact{}, err
	}
	if in.Email != oldEmail {
		if _, err := ws.cache.ContactByEmail(in.Email); !errors.Is(err, cache.ErrNotFound) {
			return contact.Contact{}, NewEmailTaken(in.Email)
		}
	}

	c.Name = in.Name
	c.Email = in.Email
	c.Phone = in.Phone
	c.Initials = contact.Initials(in.Name)
	if err := ws.cache.UpsertContact(ctx, c); err != nil {
		return contact.Contact{}, contactError(err, c.Email)
	}
	return c, nil
}

func (s *Service) DeleteContactByEmail(ctx context.Context, email string) error {
	ws, err := s.workspace()
	if err != nil {
		return err
	}

	c, err := ws.cache.ContactByEmail(email)
	if err != nil {
		return NewNotFound("contact", email)
	}
	ws.cache.DeleteContact(ctx, c.ID)
	return nil
}

func contactError(err error, email string) error {
	if errors.Is(err, cache.ErrEmailTaken) {
		return NewEmailTaken(email)
	}
	return fmt.Errorf("сохранение контакта: %w", err)
}
