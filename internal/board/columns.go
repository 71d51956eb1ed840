package board

import "taskBoard/internal/models/task"

type Column struct {
	ID          task.Status `json:"id"`
	Title       string      `json:"title"`
	Tasks       []task.Task `json:"tasks"`
	Placeholder string      `json:"placeholder,omitempty"`
}

var columnTitles = map[task.Status]string{
	task.StatusTodo:          "To do",
	task.StatusInProgress:    "In progress",
	task.StatusAwaitFeedback: "Await feedback",
	task.StatusDone:          "Done",
}

func Title(s task.Status) string {
	return columnTitles[s]
}

// Columns раскладывает отфильтрованные задачи по четырём колонкам.
// Пустая колонка получает текст-заглушку.
func (b *Board) Columns(query string) []Column {
	byStatus := make(map[task.Status][]task.Task, 4)
	for _, t := range b.Filter(query) {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	columns := make([]Column, 0, 4)
	for _, s := range task.Statuses() {
		col := Column{ID: s, Title: Title(s), Tasks: byStatus[s]}
		if len(col.Tasks) == 0 {
			col.Tasks = []task.Task{}
			col.Placeholder = "No tasks " + col.Title
		}
		columns = append(columns, col)
	}
	return columns
}
