// Package api exposes the research terminal's HTTP surface: case and file
// management, dashboard generation, saved queries, analyst chat and
// settings.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/CB5Capital/research-terminal-backend/internal/agent"
	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
	"github.com/CB5Capital/research-terminal-backend/internal/extract"
	"github.com/CB5Capital/research-terminal-backend/internal/library"
	"github.com/CB5Capital/research-terminal-backend/internal/scrape"
)

// Version is reported by the health endpoint.
var Version = "1.0.0"

type Handler struct {
	lib       *library.Library
	store     *dashboard.Store
	scraper   *scrape.Scraper
	generator *agent.Generator
	composer  *agent.Composer
	chat      *agent.Chat
	logger    *slog.Logger
}

func NewHandler(lib *library.Library, store *dashboard.Store, scraper *scrape.Scraper, generator *agent.Generator, composer *agent.Composer, chat *agent.Chat, logger *slog.Logger) *Handler {
	return &Handler{
		lib:       lib,
		store:     store,
		scraper:   scraper,
		generator: generator,
		composer:  composer,
		chat:      chat,
		logger:    logger,
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", h.handleHealth)

	mux.HandleFunc("GET /api/cases", h.handleListCases)
	mux.HandleFunc("GET /api/cases/{case_name}/files", h.handleListFiles)
	mux.HandleFunc("GET /api/cases/{case_name}/sources/{filename}", h.handleSourceContent)
	mux.HandleFunc("GET /api/cases/{case_name}/research-questions", h.handleGetResearchQuestions)
	mux.HandleFunc("PUT /api/cases/{case_name}/research-questions", h.handleUpdateResearchQuestions)

	mux.HandleFunc("POST /api/cases/{case_name}/upload/file", h.handleUploadFile)
	mux.HandleFunc("POST /api/cases/{case_name}/upload/url", h.handleUploadURL)
	mux.HandleFunc("POST /api/cases/{case_name}/upload/text", h.handleUploadText)
	mux.HandleFunc("POST /api/cases/{case_name}/upload/note", h.handleUploadNote)

	mux.HandleFunc("POST /api/cases/{case_name}/files/{filename}/generate-dashboard", h.handleGenerateFromFile)
	mux.HandleFunc("POST /api/cases/{case_name}/generate-dashboard", h.handleGenerateFromQuery)
	mux.HandleFunc("GET /api/cases/{case_name}/queries", h.handleListQueries)
	mux.HandleFunc("GET /api/cases/{case_name}/queries/{dashboard_id}", h.handleGetDashboard)

	mux.HandleFunc("POST /api/cases/{case_name}/chat/continue", h.handleChatContinue)

	mux.HandleFunc("GET /api/settings", h.handleGetSettings)
	mux.HandleFunc("POST /api/settings", h.handleUpdateSettings)
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"message": "CB5 Capital Research Terminal API is running",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": Version,
	})
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

// respondError mirrors the {"detail": ...} error envelope the frontend
// expects.
func (h *Handler) respondError(w http.ResponseWriter, status int, detail string) {
	h.respondJSON(w, status, map[string]any{"detail": detail})
}

// respondFailure classifies an error: missing resources map to 404,
// unreadable file types to 400, everything else to 500.
func (h *Handler) respondFailure(w http.ResponseWriter, err error, context string) {
	var notFound *library.NotFoundError
	if errors.As(err, &notFound) {
		h.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	var unsupported *extract.UnsupportedTypeError
	if errors.As(err, &unsupported) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	var unreadable *extract.UnreadableError
	if errors.As(err, &unreadable) {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.logger.Error(context, "error", err)
	h.respondError(w, http.StatusInternalServerError, context+": "+err.Error())
}

func decodeBody(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
