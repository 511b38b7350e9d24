package handlers

import (
	"net/http"

	"github.com/selectarr/selectarr/internal/language"
)

// Languages returns the selectable languages for settings UIs.
func (h *Handlers) Languages(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, language.Options())
}
