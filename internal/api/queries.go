package api

import (
	"net/http"
)

func (h *Handler) handleListQueries(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	queries, err := h.lib.Queries(caseName)
	if err != nil {
		h.respondFailure(w, err, "Error retrieving queries")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"case_name":   caseName,
		"queries":     queries,
		"total_count": len(queries),
	})
}

func (h *Handler) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")
	dashboardID := r.PathValue("dashboard_id")

	d, err := h.lib.Dashboard(caseName, dashboardID)
	if err != nil {
		h.respondFailure(w, err, "Error loading dashboard")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"dashboard":    d,
		"dashboard_id": dashboardID,
	})
}
