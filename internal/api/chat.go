package api

import (
	"net/http"

	"github.com/CB5Capital/research-terminal-backend/internal/agent"
)

func (h *Handler) handleChatContinue(w http.ResponseWriter, r *http.Request) {
	caseName := r.PathValue("case_name")

	var req struct {
		Message             string           `json:"message"`
		ConversationHistory []agent.ChatTurn `json:"conversation_history"`
		DashboardID         string           `json:"dashboard_id"`
	}
	if err := decodeBody(r, &req); err != nil || req.Message == "" {
		h.respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	reply, err := h.chat.Continue(r.Context(), caseName, req.Message, req.DashboardID, req.ConversationHistory)
	if err != nil {
		h.respondFailure(w, err, "Error processing chat")
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"response":  reply.Response,
		"sources":   reply.Sources,
		"case_name": caseName,
		"timestamp": reply.Timestamp,
	})
}
