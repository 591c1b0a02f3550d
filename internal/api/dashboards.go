package api

import (
	"fmt"
	"net/http"
)

func (h *Handler) handleGenerateFromFile(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")
	filename := r.PathValue("filename")

	result, err := h.generator.GenerateFromFile(r.Context(), caseName, filename)
	if err != nil {
		h.respondFailure(w, err, "Error generating dashboard")
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleGenerateFromQuery(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	var req struct {
		Query string `json:"query"`
	}
	if err := decodeBody(r, &req); err != nil || req.Query == "" {
		h.respondError(w, http.StatusBadRequest, "Query is required")
		return
	}

	composed, err := h.composer.Compose(r.Context(), caseName, req.Query)
	if err != nil {
		h.respondFailure(w, err, "Error generating dashboard")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"dashboard":    composed,
		"dashboard_id": composed.Metadata.DashboardID,
		"message":      fmt.Sprintf("Successfully generated dashboard with %d components", len(composed.Components)),
	})
}
