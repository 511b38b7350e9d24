package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/selectarr/selectarr/internal/database"
)

// DeviceList returns all paired devices.
func (h *Handlers) DeviceList(w http.ResponseWriter, r *http.Request) {
	devices, err := h.db.ListDevices()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}
	if devices == nil {
		devices = []*database.Device{}
	}
	respondJSON(w, http.StatusOK, devices)
}

// devicePairRequest is the payload for POST /api/devices.
type devicePairRequest struct {
	Name string `json:"name"`
}

// DevicePair registers a new device and returns its API key. The key is only
// shown in this response.
func (h *Handlers) DevicePair(w http.ResponseWriter, r *http.Request) {
	var req devicePairRequest
	if err := decodeJSON(r, &req); err != nil || req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	device, err := h.deviceAuth.PairDevice(req.Name)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to pair device")
		return
	}
	respondJSON(w, http.StatusCreated, device)
}

// DeviceRegenerateKey replaces a device's API key.
func (h *Handlers) DeviceRegenerateKey(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	key, err := h.deviceAuth.RegenerateAPIKey(id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to regenerate key")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"apiKey": key})
}

// DeviceDelete unpairs a device.
func (h *Handlers) DeviceDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid device id")
		return
	}

	if err := h.db.DeleteDevice(id); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to delete device")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
