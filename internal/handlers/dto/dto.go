package dto

import (
	"taskBoard/internal/board"
	"taskBoard/internal/models/task"
	"taskBoard/internal/service"
	"taskBoard/internal/session"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Remember bool   `json:"remember"`
}

type RegisterRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	AcceptPrivacy   bool   `json:"acceptPrivacy"`
}

type SessionResponse struct {
	Kind       string `json:"kind"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Persistent bool   `json:"persistent"`
}

func FromSession(s session.Session) SessionResponse {
	return SessionResponse{
		Kind:       s.Kind.String(),
		Name:       s.User.Name,
		Email:      s.User.Email,
		Persistent: s.Persistent(),
	}
}

type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	DueDate     string   `json:"dueDate"`
	Priority    string   `json:"priority"`
	Status      string   `json:"status"`
	Assignees   []int64  `json:"assignees"`
	Subtasks    []string `json:"subtasks"`
}

func (r CreateTaskRequest) Draft() service.TaskDraft {
	return service.TaskDraft{
		Title:       r.Title,
		Description: r.Description,
		Category:    task.Category(r.Category),
		DueDate:     r.DueDate,
		Priority:    task.Priority(r.Priority),
		Status:      task.Status(r.Status),
		Assignees:   r.Assignees,
		Subtasks:    r.Subtasks,
	}
}

// UpdateTaskRequest - отсутствующее поле не меняется.
// Пустой массив assignees снимает всех исполнителей.
type UpdateTaskRequest struct {
	Title       *string        `json:"title,omitempty"`
	Description *string        `json:"description,omitempty"`
	Category    *string        `json:"category,omitempty"`
	DueDate     *string        `json:"dueDate,omitempty"`
	Priority    *string        `json:"priority,omitempty"`
	Assignees   []int64        `json:"assignees,omitempty"`
	Subtasks    []task.Subtask `json:"subtasks,omitempty"`
}

// Options собирает опции редактирования. assignees уже разрешены в снимки.
func (r UpdateTaskRequest) Options(assignees []task.Assignee) []task.TaskOption {
	var opts []task.TaskOption
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.Category != nil {
		opts = append(opts, task.WithCategory(task.Category(*r.Category)))
	}
	if r.DueDate != nil {
		opts = append(opts, task.WithDueDate(*r.DueDate))
	}
	if r.Priority != nil {
		opts = append(opts, task.WithPriority(task.Priority(*r.Priority)))
	}
	if r.Assignees != nil {
		opts = append(opts, task.WithAssignees(assignees))
	}
	if r.Subtasks != nil {
		opts = append(opts, task.WithSubtasks(r.Subtasks))
	}
	return opts
}

type MoveRequest struct {
	Status string `json:"status"`
}

type DropRequest struct {
	Column string `json:"column"`
}

type ContactRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (r ContactRequest) Input() service.ContactInput {
	return service.ContactInput{Name: r.Name, Email: r.Email, Phone: r.Phone}
}

type SummaryResponse struct {
	board.Summary
	DeadlineLabel string `json:"deadlineLabel"`
	Greeting      string `json:"greeting"`
	UserName      string `json:"userName"`
}

// TaskCard - задача с прогрессом подзадач для карточки на доске
type TaskCard struct {
	task.Task
	SubtasksDone  int `json:"subtasksDone"`
	SubtasksTotal int `json:"subtasksTotal"`
}

func FromTask(t task.Task) TaskCard {
	return TaskCard{Task: t, SubtasksDone: t.CompletedSubtasks(), SubtasksTotal: len(t.Subtasks)}
}

func FromTaskList(tasks []task.Task) []TaskCard {
	result := make([]TaskCard, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type ColumnResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Tasks       []TaskCard `json:"tasks"`
	Placeholder string     `json:"placeholder,omitempty"`
}

func FromColumns(columns []board.Column) []ColumnResponse {
	result := make([]ColumnResponse, len(columns))
	for i, c := range columns {
		result[i] = ColumnResponse{
			ID:          string(c.ID),
			Title:       c.Title,
			Tasks:       FromTaskList(c.Tasks),
			Placeholder: c.Placeholder,
		}
	}
	return result
}
