package api

import (
	"net/http"

	"github.com/CB5Capital/research-terminal-backend/internal/library"
)

func (h *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.lib.Settings()
	if err != nil {
		h.respondFailure(w, err, "Error reading settings")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"settings": settings,
	})
}

func (h *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var updates library.Settings
	if err := decodeBody(r, &updates); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid settings body")
		return
	}

	settings, err := h.lib.UpdateSettings(updates)
	if err != nil {
		h.respondFailure(w, err, "Error updating settings")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"message":  "Settings updated successfully",
		"settings": settings,
	})
}
