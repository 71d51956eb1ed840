package handlers

import (
	"net/http"
	"taskBoard/internal/board"
	"taskBoard/internal/handlers/dto"
)

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	columns, err := h.Service.Columns(r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, r, err, "get_board")
		return
	}
	responseWithJSON(w, http.StatusOK, toPayload("columns", dto.FromColumns(columns)))
}

func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.Service.Summary()
	if err != nil {
		handleError(w, r, err, "get_summary")
		return
	}

	userName := "Guest"
	if sess, err := h.Service.Current(); err == nil && sess.User.Name != "" {
		userName = sess.User.Name
	}

	writeJSON(w, http.StatusOK, dto.SummaryResponse{
		Summary:       summary,
		DeadlineLabel: board.FormatDeadline(summary.UpcomingDeadline),
		Greeting:      board.Greeting(h.now()),
		UserName:      userName,
	})
}
