package handlers

import (
	"net/http"
	"strconv"
	"taskBoard/internal/handlers/dto"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func (h *Handler) GetTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.Service.Tasks(r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, r, err, "get_tasks")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("tasks", dto.FromTaskList(tasks)))
}

func (h *Handler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.CreateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	created, err := h.Service.CreateTask(r.Context(), request.Draft())
	if err != nil {
		handleError(w, r, err, "create_task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithJSON(w, http.StatusCreated, toPayload("task", dto.FromTask(created)))
}

func (h *Handler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	t, err := h.Service.Task(id)
	if err != nil {
		handleError(w, r, err, "get_task")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(t)))
}

func (h *Handler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	var assignees []task.Assignee
	if request.Assignees != nil {
		var err error
		if assignees, err = h.Service.Assignees(request.Assignees); err != nil {
			handleError(w, r, err, "update_task")
			return
		}
	}

	updated, err := h.Service.EditTask(r.Context(), id, request.Options(assignees)...)
	if err != nil {
		handleError(w, r, err, "update_task")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}

func (h *Handler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err, "delete_task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	var request dto.MoveRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	moved, err := h.Service.MoveTask(r.Context(), id, task.Status(request.Status))
	if err != nil {
		handleError(w, r, err, "move_task")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(moved)))
}

func (h *Handler) DropTask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}

	var request dto.DropRequest
	if !decodeJSON(w, r, &request) {
		return
	}

	moved, err := h.Service.DropTask(r.Context(), id, request.Column)
	if err != nil {
		handleError(w, r, err, "drop_task")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(moved)))
}

func (h *Handler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	id, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		responseWithError(w, http.StatusBadRequest, "неверное значение index")
		return
	}

	updated, err := h.Service.ToggleSubtask(r.Context(), id, index)
	if err != nil {
		handleError(w, r, err, "toggle_subtask")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("task", dto.FromTask(updated)))
}
