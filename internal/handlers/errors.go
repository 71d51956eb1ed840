package handlers

import (
	"errors"
	"net/http"
	"taskBoard/internal/logger"
	"taskBoard/internal/service"
	"taskBoard/internal/session"

	"go.uber.org/zap"
)

// handleError пишет ответ для ошибки сервиса
func handleError(w http.ResponseWriter, r *http.Request, err error, operation string) {
	if handleBusinessError(w, err) {
		return
	}

	if errors.Is(err, session.ErrNoSession) {
		logger.Warn("HTTP: Запрос без сессии",
			zap.String("operation", operation),
			zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusUnauthorized,
			toPayload("error", "NO_SESSION"),
			toPayload("message", "требуется вход"))
		return
	}

	logger.Error("HTTP: Ошибка Service", err,
		zap.String("operation", operation),
		zap.String("client_ip", r.RemoteAddr))
	responseWithError(w, http.StatusInternalServerError, err.Error())
}

func handleBusinessError(w http.ResponseWriter, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}

	statusCode := mapBusinessErrorToHTTP(businessErr.Code)
	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeEmailTaken:
		return http.StatusConflict
	case service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	case service.CodeGuestForbidden:
		return http.StatusForbidden
	default:
		return http.StatusBadRequest
	}
}
