package agent

import (
	"context"
	"log/slog"
	"os"

	sdk "github.com/openai/openai-go/v3"

	"github.com/CB5Capital/research-terminal-backend/internal/openai"
)

// stubLLM replays queued tool calls and canned responses so agent flows can
// run without the API.
type stubLLM struct {
	toolQueue    [][]openai.ToolCall
	toolSystems  []string
	toolUsers    []string
	structuredFn func(target any)
	chatResponse string
	chatUser     string
}

func (s *stubLLM) ToolCompletion(ctx context.Context, system, user string, tools []sdk.ChatCompletionToolUnionParam, maxTokens int, temperature float64) ([]openai.ToolCall, error) {
	s.toolSystems = append(s.toolSystems, system)
	s.toolUsers = append(s.toolUsers, user)
	if len(s.toolQueue) == 0 {
		return nil, nil
	}
	calls := s.toolQueue[0]
	s.toolQueue = s.toolQueue[1:]
	return calls, nil
}

func (s *stubLLM) StructuredCompletion(ctx context.Context, system, user, schemaName string, target any, maxTokens int, temperature float64) (string, error) {
	if s.structuredFn != nil {
		s.structuredFn(target)
	}
	return "", nil
}

func (s *stubLLM) ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	s.chatUser = user
	return s.chatResponse, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
