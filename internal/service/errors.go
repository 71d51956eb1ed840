package service

import (
	"errors"
	"fmt"
)

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeGuestForbidden     = "GUEST_FORBIDDEN"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{Key: key, Payload: payload}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}
	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}
	return busErr
}

func NewNotFound(resource string, id any) *BusinessError {
	return NewBusinessError(CodeNotFound,
		fmt.Sprintf("%s %v не найден(а)", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id))
}

func NewValidationError(field, reason string) *BusinessError {
	return NewBusinessError(CodeValidation,
		fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		ToDetail("field", field),
		ToDetail("reason", reason))
}

func NewEmailTaken(email string) *BusinessError {
	return NewBusinessError(CodeEmailTaken,
		fmt.Sprintf("email %s уже используется", email),
		ToDetail("email", email))
}

func NewInvalidCredentials() *BusinessError {
	return NewBusinessError(CodeInvalidCredentials, "неверный email или пароль")
}

func NewGuestForbidden(action string) *BusinessError {
	return NewBusinessError(CodeGuestForbidden,
		fmt.Sprintf("действие '%s' недоступно в гостевом режиме", action),
		ToDetail("action", action))
}

// HasCode сообщает, является ли err бизнес-ошибкой с данным кодом
func HasCode(err error, code string) bool {
	var busErr *BusinessError
	return errors.As(err, &busErr) && busErr.Code == code
}
