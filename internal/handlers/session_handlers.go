package handlers

import (
	"net/http"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/service"
	"time"

	"go.uber.org/zap"
)

func (h *Handler) GetSession(w http.ResponseWriter, r *http.Request) {
	remembered, _ := h.Service.Remembered()

	sess, err := h.Service.Current()
	if err != nil {
		// без сессии отдаём только запомненный email для формы входа
		responseWithJSON(w, http.StatusUnauthorized,
			toPayload("error", "NO_SESSION"),
			toPayload("rememberedEmail", remembered))
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("session", dto.FromSession(sess)),
		toPayload("rememberedEmail", remembered))
}

func (h *Handler) LoginGuest(w http.ResponseWriter, r *http.Request) {
	sess, err := h.Service.LoginGuest(r.Context())
	if err != nil {
		handleError(w, r, err, "login_guest")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("session", dto.FromSession(sess)))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.LoginRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	sess, err := h.Service.Login(r.Context(), request.Email, request.Password, request.Remember)
	if err != nil {
		handleError(w, r, err, "login")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.String("email", sess.User.Email),
		zap.Duration("ms", time.Since(start)))
	responseWithJSON(w, http.StatusOK, toPayload("session", dto.FromSession(sess)))
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var request dto.RegisterRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	if request.Password != request.ConfirmPassword {
		handleError(w, r, service.NewValidationError("confirmPassword", "пароли не совпадают"), "register")
		return
	}
	if !request.AcceptPrivacy {
		handleError(w, r, service.NewValidationError("acceptPrivacy", "необходимо принять политику конфиденциальности"), "register")
		return
	}

	sess, err := h.Service.Register(r.Context(), request.Name, request.Email, request.Password)
	if err != nil {
		handleError(w, r, err, "register")
		return
	}
	responseWithJSON(w, http.StatusCreated, toPayload("session", dto.FromSession(sess)))
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Logout(r.Context()); err != nil {
		handleError(w, r, err, "logout")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
