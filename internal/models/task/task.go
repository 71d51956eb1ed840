package task

import "slices"

type Task struct {
	ID          int64      `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Category    Category   `json:"category" yaml:"category"`
	DueDate     string     `json:"dueDate" yaml:"dueDate"`
	Priority    Priority   `json:"priority" yaml:"priority"`
	AssignedTo  []Assignee `json:"assignedTo" yaml:"assignedTo"`
	Subtasks    []Subtask  `json:"subtasks" yaml:"subtasks"`
	Status      Status     `json:"status" yaml:"status"`
}

// Assignee - снимок контакта на момент назначения, не ссылка на Contact.ID
type Assignee struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

type Subtask struct {
	Title string `json:"title" yaml:"title"`
	Done  bool   `json:"done" yaml:"done"`
}

type Status string
type Priority string
type Category string

const StatusTodo Status = "todo"
const StatusInProgress Status = "inprogress"
const StatusAwaitFeedback Status = "awaitfeedback"
const StatusDone Status = "done"

const PriorityUrgent Priority = "urgent"
const PriorityMedium Priority = "medium"
const PriorityLow Priority = "low"

const CategoryUserStory Category = "User Story"
const CategoryTechnicalTask Category = "Technical Task"

// DateLayout - формат поля dueDate
const DateLayout = "2006-01-02"

// Statuses возвращает колонки доски в порядке отображения
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusAwaitFeedback, StatusDone}
}

func (s Status) IsValid() bool {
	return slices.Contains(Statuses(), s)
}

func (p Priority) IsValid() bool {
	switch p {
	case PriorityUrgent, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

func (c Category) IsValid() bool {
	return c == CategoryUserStory || c == CategoryTechnicalTask
}

// Clone возвращает глубокую копию, чтобы вызывающий код не делил слайсы с кэшем
func (t Task) Clone() Task {
	t.AssignedTo = slices.Clone(t.AssignedTo)
	t.Subtasks = slices.Clone(t.Subtasks)
	return t
}

// IsAssigned сообщает, есть ли в assignedTo запись с таким именем
func (t Task) IsAssigned(name string) bool {
	return slices.ContainsFunc(t.AssignedTo, func(a Assignee) bool { return a.Name == name })
}

// Unassign убирает все записи с данным именем и возвращает число удалённых
func (t *Task) Unassign(name string) int {
	before := len(t.AssignedTo)
	t.AssignedTo = slices.DeleteFunc(t.AssignedTo, func(a Assignee) bool { return a.Name == name })
	return before - len(t.AssignedTo)
}

func (t Task) CompletedSubtasks() int {
	done := 0
	for _, st := range t.Subtasks {
		if st.Done {
			done++
		}
	}
	return done
}
