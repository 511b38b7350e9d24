package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/selectarr/selectarr/internal/database"
	"github.com/selectarr/selectarr/internal/tracks"
)

// PolicyGet returns the stored policy for a user, or the defaults when none
// has been saved yet.
func (h *Handlers) PolicyGet(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	policy, err := h.db.GetPolicy(userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to load policy")
		return
	}
	if policy == nil {
		policy = database.DefaultPolicy(userID)
	}
	respondJSON(w, http.StatusOK, policy)
}

// policyUpdateRequest is the payload for PUT /api/policies/{user}.
type policyUpdateRequest struct {
	PreferredLanguage string `json:"preferredLanguage"`
	SubtitleSource    string `json:"subtitleSource"`
	AutoSelect        bool   `json:"autoSelect"`
}

// PolicyPut stores the policy for a user.
func (h *Handlers) PolicyPut(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	var req policyUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	source := tracks.SourcePreference(req.SubtitleSource)
	if req.SubtitleSource == "" {
		source = tracks.SourceAny
	}
	if !source.Valid() {
		respondError(w, http.StatusBadRequest, "subtitleSource must be internal, external, or any")
		return
	}

	policy := &database.Policy{
		UserID:            userID,
		PreferredLanguage: req.PreferredLanguage,
		SubtitleSource:    source,
		AutoSelect:        req.AutoSelect,
	}
	if err := h.selector.UpdatePolicy(policy); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save policy")
		return
	}

	// Saved policies invalidate any cached selections for the user.
	if h.sessionMgr != nil {
		h.sessionMgr.InvalidateUser(userID)
	}

	respondJSON(w, http.StatusOK, policy)
}

// PolicyDelete removes the stored policy; the user falls back to defaults.
func (h *Handlers) PolicyDelete(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "user")

	if err := h.db.DeletePolicy(userID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete policy")
		return
	}
	if h.sessionMgr != nil {
		h.sessionMgr.InvalidateUser(userID)
	}
	w.WriteHeader(http.StatusNoContent)
}

// PolicyList returns all stored policies.
func (h *Handlers) PolicyList(w http.ResponseWriter, r *http.Request) {
	policies, err := h.db.ListPolicies()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list policies")
		return
	}
	if policies == nil {
		policies = []*database.Policy{}
	}
	respondJSON(w, http.StatusOK, policies)
}
