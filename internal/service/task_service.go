package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskBoard/internal/board"
	"taskBoard/internal/cache"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"
	"time"

	"go.uber.org/zap"
)

// TaskDraft - данные формы создания задачи. Assignees - id контактов.
type TaskDraft struct {
	Title       string
	Description string
	Category    task.Category
	DueDate     string
	Priority    task.Priority
	Status      task.Status
	Assignees   []int64
	Subtasks    []string
}

func (s *Service) Tasks(query string) ([]task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return nil, err
	}
	return ws.board.Filter(query), nil
}

func (s *Service) Task(id int64) (task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return task.Task{}, err
	}
	t, err := ws.cache.Task(id)
	if err != nil {
		return task.Task{}, NewNotFound("task", id)
	}
	return t, nil
}

func (s *Service) CreateTask(ctx context.Context, d TaskDraft) (task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return task.Task{}, err
	}

	if d.Priority == "" {
		d.Priority = task.PriorityMedium
	}
	if d.Status == "" {
		d.Status = task.StatusTodo
	}

	assignees, err := s.resolveAssignees(ws, d.Assignees)
	if err != nil {
		return task.Task{}, err
	}

	subtasks := make([]task.Subtask, 0, len(d.Subtasks))
	for _, title := range d.Subtasks {
		if title = strings.TrimSpace(title); title != "" {
			subtasks = append(subtasks, task.Subtask{Title: title})
		}
	}

	t := task.Task{
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Category:    d.Category,
		DueDate:     d.DueDate,
		Priority:    d.Priority,
		AssignedTo:  assignees,
		Subtasks:    subtasks,
		Status:      d.Status,
	}
	if t.Description == "" {
		return task.Task{}, NewValidationError("description", "не может быть пустым")
	}
	if err := validateTask(t); err != nil {
		return task.Task{}, err
	}

	t.ID = ws.cache.NewID()
	if err := ws.cache.UpsertTask(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("сохранение задачи: %w", err)
	}

	logger.Info("Service: Задача создана", zap.Int64("id", t.ID), zap.String("status", string(t.Status)))
	return t, nil
}

// EditTask применяет опции к задаче. Статус при редактировании не меняется.
func (s *Service) EditTask(ctx context.Context, id int64, options ...task.TaskOption) (task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return task.Task{}, err
	}

	t, err := ws.cache.Task(id)
	if err != nil {
		logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
		return task.Task{}, NewNotFound("task", id)
	}

	status := t.Status
	t.Apply(options...)
	t.ID = id
	t.Status = status
	t.Title = strings.TrimSpace(t.Title)

	if err := validateTask(t); err != nil {
		return task.Task{}, err
	}
	if err := ws.cache.UpsertTask(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("сохранение задачи: %w", err)
	}
	return t, nil
}

func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	ws, err := s.workspace()
	if err != nil {
		return err
	}
	if _, err := ws.cache.Task(id); err != nil {
		return NewNotFound("task", id)
	}
	ws.cache.DeleteTask(ctx, id)
	return nil
}

func (s *Service) MoveTask(ctx context.Context, id int64, status task.Status) (task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return task.Task{}, err
	}
	t, err := ws.board.MoveTask(ctx, id, status)
	return t, boardError(err, id)
}

func (s *Service) DropTask(ctx context.Context, id int64, columnID string) (task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return task.Task{}, err
	}
	t, err := ws.board.Drop(ctx, id, columnID)
	return t, boardError(err, id)
}

func (s *Service) ToggleSubtask(ctx context.Context, id int64, index int) (task.Task, error) {
	ws, err := s.workspace()
	if err != nil {
		return task.Task{}, err
	}
	t, err := ws.board.ToggleSubtask(ctx, id, index)
	return t, boardError(err, id)
}

func (s *Service) Columns(query string) ([]board.Column, error) {
	ws, err := s.workspace()
	if err != nil {
		return nil, err
	}
	return ws.board.Columns(query), nil
}

func (s *Service) Summary() (board.Summary, error) {
	ws, err := s.workspace()
	if err != nil {
		return board.Summary{}, err
	}
	return ws.board.Summary(), nil
}

// Assignees превращает id контактов в снимки {name, color}
func (s *Service) Assignees(ids []int64) ([]task.Assignee, error) {
	ws, err := s.workspace()
	if err != nil {
		return nil, err
	}
	return s.resolveAssignees(ws, ids)
}

func (s *Service) resolveAssignees(ws *workspace, ids []int64) ([]task.Assignee, error) {
	res := make([]task.Assignee, 0, len(ids))
	for _, id := range ids {
		c, err := ws.cache.Contact(id)
		if err != nil {
			return nil, NewValidationError("assignedTo", fmt.Sprintf("контакт %d не найден", id))
		}
		res = append(res, task.Assignee{Name: c.Name, Color: c.Color})
	}
	return res, nil
}

func validateTask(t task.Task) error {
	if t.Title == "" {
		return NewValidationError("title", "не может быть пустым")
	}
	if t.DueDate == "" {
		return NewValidationError("dueDate", "должен быть задан")
	}
	if _, err := time.Parse(task.DateLayout, t.DueDate); err != nil {
		return NewValidationError("dueDate", "ожидается формат YYYY-MM-DD")
	}
	if !t.Category.IsValid() {
		return NewValidationError("category", fmt.Sprintf("неизвестная категория %q", t.Category))
	}
	if !t.Priority.IsValid() {
		return NewValidationError("priority", fmt.Sprintf("неизвестный приоритет %q", t.Priority))
	}
	if !t.Status.IsValid() {
		return NewValidationError("status", fmt.Sprintf("неизвестный статус %q", t.Status))
	}
	return nil
}

func boardError(err error, id int64) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, board.ErrTaskNotFound):
		return NewNotFound("task", id)
	case errors.Is(err, board.ErrSubtaskNotFound):
		return NewNotFound("subtask", id)
	case errors.Is(err, cache.ErrInvalidStatus):
		return &BusinessError{
			Code:    CodeValidation,
			Message: "Неверное значение поля 'status'",
			Details: map[string]any{"field": "status"},
			Err:     err,
		}
	default:
		return err
	}
}
