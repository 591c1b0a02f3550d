// Package agent implements the terminal's AI workflows: generating
// dashboard items from case files, composing dashboards from saved items,
// pruning the item library, and grounded analyst chat.
package agent

import (
	"context"

	sdk "github.com/openai/openai-go/v3"

	"github.com/CB5Capital/research-terminal-backend/internal/openai"
)

// Completer is the slice of the OpenAI client the agents use. Tests swap in
// stubs.
type Completer interface {
	ToolCompletion(ctx context.Context, system, user string, tools []sdk.ChatCompletionToolUnionParam, maxTokens int, temperature float64) ([]openai.ToolCall, error)
	StructuredCompletion(ctx context.Context, system, user, schemaName string, target any, maxTokens int, temperature float64) (string, error)
	ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error)
}
