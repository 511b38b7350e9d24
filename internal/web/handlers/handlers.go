// Package handlers contains the HTTP handlers for the selection API.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/selectarr/selectarr/internal/auth"
	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/selection"
	"github.com/selectarr/selectarr/internal/session"
)

// Handlers contains all HTTP handlers.
type Handlers struct {
	db         *database.DB
	selector   *selection.Service
	deviceAuth *auth.DeviceAuthService
	sessionMgr *session.Manager
}

// New creates a new Handlers instance.
func New(db *database.DB, selector *selection.Service, deviceAuth *auth.DeviceAuthService, sessionMgr *session.Manager) *Handlers {
	return &Handlers{
		db:         db,
		selector:   selector,
		deviceAuth: deviceAuth,
		sessionMgr: sessionMgr,
	}
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON parses the request body into v, rejecting unknown fields so
// player integration bugs surface early.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
