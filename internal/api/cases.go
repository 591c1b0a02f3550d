package api

import (
	"fmt"
	"net/http"

	"github.com/CB5Capital/research-terminal-backend/internal/extract"
)

func (h *Handler) handleListCases(w http.ResponseWriter, r *http.Request) {
	cases, err := h.lib.Cases()
	if err != nil {
		h.respondFailure(w, err, "Error retrieving cases")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"cases":       cases,
		"total_count": len(cases),
	})
}

func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")
	files, err := h.lib.CaseFiles(caseName)
	if err != nil {
		// The frontend treats a missing case as an inline error, not a 404.
		h.respondJSON(w, http.StatusOK, map[string]any{"error": "Case not found"})
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{"files": files})
}

func (h *Handler) handleSourceContent(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")
	filename := r.PathValue("filename")

	path, err := h.lib.SourcePath(caseName, filename)
	if err != nil {
		h.respondFailure(w, err, "Error reading source file")
		return
	}

	doc, err := extract.Source(path, filename)
	if err != nil {
		h.respondFailure(w, err, "Error reading source file")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"filename":      doc.Filename,
		"content":       doc.Content,
		"file_size":     doc.Size,
		"modified_time": doc.ModifiedAt,
		"case_name":     caseName,
		"file_type":     doc.FileType,
	})
}

func (h *Handler) handleGetResearchQuestions(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")
	questions, err := h.lib.ResearchQuestions(caseName)
	if err != nil {
		h.respondFailure(w, err, "Error loading research questions")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"case_name":          caseName,
		"research_questions": questions,
	})
}

func (h *Handler) handleUpdateResearchQuestions(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	var req struct {
		ResearchQuestions []string `json:"research_questions"`
	}
	if err := decodeBody(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.lib.SetResearchQuestions(caseName, req.ResearchQuestions); err != nil {
		h.respondFailure(w, err, "Error saving research questions")
		return
	}
	h.logger.Info("Updated research questions", "case", caseName, "count", len(req.ResearchQuestions))
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":            true,
		"case_name":          caseName,
		"research_questions": req.ResearchQuestions,
		"message":            fmt.Sprintf("Updated %d research questions", len(req.ResearchQuestions)),
	})
}
