package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"taskBoard/internal/cache"
	"taskBoard/internal/logger"
	"taskBoard/internal/models/task"

	"go.uber.org/zap"
)

var (
	ErrTaskNotFound    = errors.New("задача не найдена")
	ErrInvalidStatus   = cache.ErrInvalidStatus
	ErrSubtaskNotFound = errors.New("подзадача не найдена")
)

// Store - часть кэша, которой пользуется доска
type Store interface {
	Task(id int64) (task.Task, error)
	Tasks() []task.Task
	UpsertTask(ctx context.Context, t task.Task) error
}

type Board struct {
	store Store
}

func New(store Store) *Board {
	return &Board{store: store}
}

// MoveTask - единственная точка смены статуса, в неё сходятся
// и перетаскивание, и выбор из меню
func (b *Board) MoveTask(ctx context.Context, id int64, status task.Status) (task.Task, error) {
	if !status.IsValid() {
		return task.Task{}, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	t, err := b.store.Task(id)
	if err != nil {
		logger.Warn("Board: Перемещение отсутствующей задачи", zap.Int64("id", id))
		return task.Task{}, ErrTaskNotFound
	}

	from := t.Status
	t.Status = status
	if err := b.store.UpsertTask(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("перемещение задачи: %w", err)
	}

	logger.Debug("Board: Задача перемещена",
		zap.Int64("id", id),
		zap.String("from", string(from)),
		zap.String("to", string(status)))
	return t, nil
}

// Drop обрабатывает бросок карточки на колонку. id колонки совпадает со статусом.
func (b *Board) Drop(ctx context.Context, id int64, columnID string) (task.Task, error) {
	return b.MoveTask(ctx, id, task.Status(strings.TrimSpace(columnID)))
}

// Filter - регистронезависимый поиск подстроки в заголовке и описании
func (b *Board) Filter(query string) []task.Task {
	tasks := b.store.Tasks()
	if query == "" {
		return tasks
	}

	term := strings.ToLower(query)
	res := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, term) {
			res = append(res, t)
		}
	}
	return res
}

func matches(t task.Task, term string) bool {
	return strings.Contains(strings.ToLower(t.Title), term) ||
		strings.Contains(strings.ToLower(t.Description), term)
}

// ToggleSubtask переключает флаг done у подзадачи по индексу
func (b *Board) ToggleSubtask(ctx context.Context, id int64, index int) (task.Task, error) {
	t, err := b.store.Task(id)
	if err != nil {
		return task.Task{}, ErrTaskNotFound
	}
	if index < 0 || index >= len(t.Subtasks) {
		return task.Task{}, ErrSubtaskNotFound
	}

	t.Subtasks[index].Done = !t.Subtasks[index].Done
	if err := b.store.UpsertTask(ctx, t); err != nil {
		return task.Task{}, fmt.Errorf("переключение подзадачи: %w", err)
	}
	return t, nil
}
