package handlers

import (
	"context"
	"taskBoard/internal/board"
	"taskBoard/internal/models/contact"
	"taskBoard/internal/models/task"
	"taskBoard/internal/service"
	"taskBoard/internal/session"
)

type Service interface {
	Current() (session.Session, error)
	Remembered() (string, bool)
	LoginGuest(ctx context.Context) (session.Session, error)
	Login(ctx context.Context, email, password string, remember bool) (session.Session, error)
	Register(ctx context.Context, name, email, password string) (session.Session, error)
	Logout(ctx context.Context) error
	Pending() int

	Tasks(query string) ([]task.Task, error)
	Task(id int64) (task.Task, error)
	CreateTask(ctx context.Context, d service.TaskDraft) (task.Task, error)
	EditTask(ctx context.Context, id int64, options ...task.TaskOption) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	MoveTask(ctx context.Context, id int64, status task.Status) (task.Task, error)
	DropTask(ctx context.Context, id int64, columnID string) (task.Task, error)
	ToggleSubtask(ctx context.Context, id int64, index int) (task.Task, error)
	Assignees(ids []int64) ([]task.Assignee, error)
	Columns(query string) ([]board.Column, error)
	Summary() (board.Summary, error)

	Contacts() ([]contact.Contact, error)
	CreateContact(ctx context.Context, in service.ContactInput) (contact.Contact, error)
	UpdateContact(ctx context.Context, oldEmail string, in service.ContactInput) (contact.Contact, error)
	DeleteContactByEmail(ctx context.Context, email string) error
}

var _ Service = (*service.Service)(nil)
