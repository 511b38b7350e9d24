package handlers

import "net/http"

// Healthz reports service liveness and basic stats.
func (h *Handlers) Healthz(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	stats := map[string]any{"status": "ok"}
	if h.sessionMgr != nil {
		stats["sessions"] = h.sessionMgr.SessionCount()
	}
	if count, err := h.db.CountDevices(); err == nil {
		stats["devices"] = count
	}
	respondJSON(w, http.StatusOK, stats)
}
