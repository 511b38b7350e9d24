package handlers

import (
	"net/http"
	"strconv"

	"github.com/selectarr/selectarr/internal/database"
)

// History returns recent selection decisions, newest first. Supports
// user, limit, and offset query parameters.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	userID := r.URL.Query().Get("user")

	records, err := h.db.ListSelectionHistory(userID, limit, offset)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	if records == nil {
		records = []*database.SelectionRecord{}
	}
	respondJSON(w, http.StatusOK, records)
}
