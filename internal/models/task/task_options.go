package task

type TaskOption func(*Task)

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

func WithCategory(category Category) TaskOption {
	return func(task *Task) {
		task.Category = category
	}
}

func WithDueDate(dueDate string) TaskOption {
	return func(task *Task) {
		task.DueDate = dueDate
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

func WithAssignees(assignees []Assignee) TaskOption {
	return func(task *Task) {
		task.AssignedTo = append([]Assignee(nil), assignees...)
	}
}

func WithSubtasks(subtasks []Subtask) TaskOption {
	return func(task *Task) {
		task.Subtasks = append([]Subtask(nil), subtasks...)
	}
}

// Apply применяет опции по порядку, nil-опции пропускаются
func (t *Task) Apply(options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}
