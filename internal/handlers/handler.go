package handlers

import (
	"net/http"
	"taskBoard/internal/logger"
	"time"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	Service Service
	now     func() time.Time
}

func NewHandler(svc Service) *Handler {
	return &Handler{Service: svc, now: time.Now}
}

// Mount вешает маршруты на роутер. authLimit оборачивает вход и регистрацию.
func (h *Handler) Mount(r chi.Router, authLimit func(http.Handler) http.Handler) {
	if authLimit == nil {
		authLimit = func(next http.Handler) http.Handler { return next }
	}

	r.Get("/health", h.HealthCheck)

	r.Route("/session", func(r chi.Router) {
		r.Get("/", h.GetSession)
		r.Delete("/", h.Logout)
		r.Post("/guest", h.LoginGuest)
		r.With(authLimit).Post("/login", h.Login)
		r.With(authLimit).Post("/register", h.Register)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Get("/", h.GetTasks)
		r.Post("/", h.PostTask)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetTaskByID)
			r.Put("/", h.UpdateTaskByID)
			r.Delete("/", h.DeleteTaskByID)
			r.Post("/move", h.MoveTask)
			r.Post("/drop", h.DropTask)
			r.Post("/subtasks/{index}/toggle", h.ToggleSubtask)
		})
	})

	r.Get("/board", h.GetBoard)
	r.Get("/summary", h.GetSummary)

	r.Route("/contacts", func(r chi.Router) {
		r.Get("/", h.GetContacts)
		r.Post("/", h.PostContact)
		r.Put("/{email}", h.UpdateContact)
		r.Delete("/{email}", h.DeleteContact)
	})
}

func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	sessionKind := "none"
	if sess, err := h.Service.Current(); err == nil {
		sessionKind = sess.Kind.String()
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", "task-board"),
		toPayload("session", sessionKind),
		toPayload("pending_writes", h.Service.Pending()),
	)
}
