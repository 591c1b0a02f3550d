package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/CB5Capital/research-terminal-backend/internal/conversation"
	"github.com/CB5Capital/research-terminal-backend/internal/library"
)

// Chat answers follow-up questions about a case grounded in the case's
// source files. When the question belongs to a saved dashboard the exchange
// is persisted with it, otherwise an in-memory thread per case is used.
type Chat struct {
	llm    Completer
	lib    *library.Library
	memory *conversation.Store
	logger *slog.Logger
}

func NewChat(llm Completer, lib *library.Library, memory *conversation.Store, logger *slog.Logger) *Chat {
	return &Chat{llm: llm, lib: lib, memory: memory, logger: logger}
}

// ChatTurn is one prior exchange supplied by the client.
type ChatTurn struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// ChatReply is the analyst's answer with the source files it drew on.
type ChatReply struct {
	Response  string
	Sources   []string
	Timestamp string
}

const (
	chatHistoryWindow = 6
	chatMaxFiles      = 5
	chatMaxChars      = 3000
)

const analystSystemPrompt = "You are an expert business analyst. Analyze data directly and provide specific insights with numbers and concrete findings. Never just point to where information might be - always analyze and conclude."

// Continue answers one analyst question. History precedence: the client's
// transcript wins; without one and without a dashboard the per-case memory
// thread supplies context.
func (c *Chat) Continue(ctx context.Context, caseName, message, dashboardID string, history []ChatTurn) (*ChatReply, error) {
	if !c.lib.CaseExists(caseName) {
		return nil, &library.NotFoundError{What: fmt.Sprintf("case %s", caseName)}
	}

	availableFiles, err := c.lib.AnalysisFilenames(caseName)
	if err != nil {
		return nil, err
	}

	excerpts, err := c.lib.TextExcerpts(caseName, chatMaxFiles, chatMaxChars)
	if err != nil {
		return nil, err
	}

	if len(history) == 0 && dashboardID == "" {
		for _, msg := range c.memory.History(caseName, chatHistoryWindow) {
			history = append(history, ChatTurn{Type: msg.Role, Content: msg.Content})
		}
	}

	user := analystUserPrompt(caseName, message, excerpts, history)
	response, err := c.llm.ChatCompletion(ctx, analystSystemPrompt, user, 800, 0.7)
	if err != nil {
		return nil, fmt.Errorf("analyst chat for case %s: %w", caseName, err)
	}

	sources := detectSources(response, availableFiles)
	now := time.Now().Format(time.RFC3339)

	if dashboardID != "" {
		turns := []library.ChatMessage{
			{Type: "user", Content: message, Timestamp: now},
			{Type: "ai", Content: response, Sources: sources, Timestamp: now},
		}
		if err := c.lib.AppendConversation(caseName, dashboardID, turns); err != nil {
			c.logger.Warn("Failed to persist conversation", "case", caseName, "dashboard_id", dashboardID, "error", err)
		}
	} else {
		c.memory.Add(caseName, "user", message)
		c.memory.Add(caseName, "ai", response)
	}

	return &ChatReply{Response: response, Sources: sources, Timestamp: now}, nil
}

func analystUserPrompt(caseName, message string, excerpts []library.FileExcerpt, history []ChatTurn) string {
	var files strings.Builder
	for _, e := range excerpts {
		fmt.Fprintf(&files, "\n\n=== %s ===\n%s\n", e.Filename, e.Content)
	}
	filesData := files.String()
	if filesData == "" {
		filesData = "No readable text files found."
	}

	var convo strings.Builder
	start := 0
	if len(history) > chatHistoryWindow {
		start = len(history) - chatHistoryWindow
	}
	for _, turn := range history[start:] {
		speaker := "Assistant"
		if turn.Type == "user" {
			speaker = "User"
		}
		fmt.Fprintf(&convo, "%s: %s\n", speaker, turn.Content)
	}

	return fmt.Sprintf(`You are an expert business analyst with access to real data about case %s.

ACTUAL DATA AVAILABLE:
%s

CONVERSATION CONTEXT:
%s

USER QUESTION: %s

INSTRUCTIONS:
- You are an expert analyst, not a pointer or guide
- Analyze the actual data above to answer the user's question directly
- Provide specific numbers, trends, insights from the data
- If you can't find specific information in the data, say so clearly
- Cite the exact filename when referencing specific data points
- Give concrete analysis, not suggestions about where to look
- Be direct and authoritative in your analysis

Analyze the data and provide a comprehensive answer to the user's question.`, caseName, filesData, convo.String(), message)
}

// detectSources finds which available files the response mentions, matching
// on the filename with its extension stripped.
func detectSources(response string, filenames []string) []string {
	lower := strings.ToLower(response)
	sources := []string{}
	for _, filename := range filenames {
		name := strings.ToLower(filename)
		for _, ext := range []string{".txt", ".docx", ".pdf"} {
			name = strings.ReplaceAll(name, ext, "")
		}
		if name != "" && strings.Contains(lower, name) {
			sources = append(sources, filename)
		}
	}
	return sources
}
