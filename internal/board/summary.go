package board

import (
	"time"

	"taskBoard/internal/models/task"
)

type Summary struct {
	Todo          int    `json:"todo"`
	InProgress    int    `json:"inProgress"`
	AwaitFeedback int    `json:"awaitFeedback"`
	Done          int    `json:"done"`
	Total         int    `json:"total"`
	Urgent        int    `json:"urgent"`

	// ближайший срок среди срочных задач, "" если таких нет
	UpcomingDeadline string `json:"upcomingDeadline"`
}

// DeadlineLayout - формат срока для экрана сводки
const DeadlineLayout = "January 2, 2006"

func (b *Board) Summary() Summary {
	var s Summary
	var earliest time.Time

	for _, t := range b.store.Tasks() {
		s.Total++
		switch t.Status {
		case task.StatusTodo:
			s.Todo++
		case task.StatusInProgress:
			s.InProgress++
		case task.StatusAwaitFeedback:
			s.AwaitFeedback++
		case task.StatusDone:
			s.Done++
		}

		if t.Priority != task.PriorityUrgent {
			continue
		}
		s.Urgent++
		due, err := time.Parse(task.DateLayout, t.DueDate)
		if err != nil {
			continue
		}
		if earliest.IsZero() || due.Before(earliest) {
			earliest = due
		}
	}

	if !earliest.IsZero() {
		s.UpcomingDeadline = earliest.Format(task.DateLayout)
	}
	return s
}

// FormatDeadline переводит дату YYYY-MM-DD в вид "March 15, 2026", "-" если даты нет
func FormatDeadline(date string) string {
	d, err := time.Parse(task.DateLayout, date)
	if err != nil {
		return "-"
	}
	return d.Format(DeadlineLayout)
}

// Greeting подбирает приветствие по часу суток
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "Good morning,"
	case h < 18:
		return "Good afternoon,"
	default:
		return "Good evening,"
	}
}
