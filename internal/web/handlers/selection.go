package handlers

import (
	"net/http"

	"github.com/selectarr/selectarr/internal/tracks"
)

// SelectAudioRequest is the payload for POST /api/select/audio.
type SelectAudioRequest struct {
	UserID     string         `json:"userId"`
	MediaTitle string         `json:"mediaTitle"`
	Tracks     []tracks.Track `json:"tracks"`
}

// SelectAudioResponse mirrors the comma-ok contract over the wire: Selected
// is false when no track matched and TrackID is meaningless then.
type SelectAudioResponse struct {
	Selected bool `json:"selected"`
	TrackID  int  `json:"trackId,omitempty"`
}

// SelectAudio picks an audio track for the request's user.
func (h *Handlers) SelectAudio(w http.ResponseWriter, r *http.Request) {
	var req SelectAudioRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	trackID, ok, err := h.selector.SelectAudio(r.Context(), req.UserID, req.MediaTitle, req.Tracks)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "selection failed")
		return
	}

	resp := SelectAudioResponse{Selected: ok}
	if ok {
		resp.TrackID = trackID
	}
	respondJSON(w, http.StatusOK, resp)
}

// SelectSubtitleRequest is the payload for POST /api/select/subtitle. When
// ExternalSubtitles is empty the server gathers candidates itself (sidecar
// index plus provider search).
type SelectSubtitleRequest struct {
	UserID            string                    `json:"userId"`
	MediaTitle        string                    `json:"mediaTitle"`
	InternalTracks    []tracks.Track            `json:"internalTracks"`
	ExternalSubtitles []tracks.ExternalSubtitle `json:"externalSubtitles"`
}

// SelectSubtitle picks a subtitle for the request's user.
func (h *Handlers) SelectSubtitle(w http.ResponseWriter, r *http.Request) {
	var req SelectSubtitleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		respondError(w, http.StatusBadRequest, "userId is required")
		return
	}

	result, err := h.selector.SelectSubtitle(r.Context(), req.UserID, req.MediaTitle, req.InternalTracks, req.ExternalSubtitles)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "selection failed")
		return
	}
	respondJSON(w, http.StatusOK, result)
}
