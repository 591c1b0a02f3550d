// Package openai wraps the OpenAI SDK with the three completion shapes the
// terminal's agents use: tool calling, schema-constrained JSON, and plain
// chat.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/invopop/jsonschema"
	sdk "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// ToolCall is one function call requested by the model.
type ToolCall struct {
	ID        string
	Name      string
	Arguments json.RawMessage
}

type Client struct {
	client sdk.Client
	model  string
	logger *slog.Logger
}

func NewClient(apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
		logger: logger,
	}
}

// ToolCompletion sends a prompt with a tool set and returns the tool calls
// the model made. An empty result means the model chose not to call any
// tools.
func (c *Client) ToolCompletion(ctx context.Context, system, user string, tools []sdk.ChatCompletionToolUnionParam, maxTokens int, temperature float64) ([]ToolCall, error) {
	completion, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(system),
			sdk.UserMessage(user),
		},
		Model:       sdk.ChatModel(c.model),
		Tools:       tools,
		MaxTokens:   sdk.Int(int64(maxTokens)),
		Temperature: sdk.Float(temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("tool completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("tool completion: no choices in response")
	}

	message := completion.Choices[0].Message
	calls := make([]ToolCall, 0, len(message.ToolCalls))
	for _, tc := range message.ToolCalls {
		calls = append(calls, ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}

	c.logger.Info("Tool completion finished",
		"model", c.model,
		"tool_calls", len(calls),
		"tokens_used", completion.Usage.TotalTokens)
	return calls, nil
}

// StructuredCompletion asks for a response constrained to the JSON schema of
// target's type, decodes it into target, and returns the raw JSON content.
func (c *Client) StructuredCompletion(ctx context.Context, system, user, schemaName string, target any, maxTokens int, temperature float64) (string, error) {
	schema, err := SchemaFor(target)
	if err != nil {
		return "", err
	}

	completion, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(system),
			sdk.UserMessage(user),
		},
		Model:       sdk.ChatModel(c.model),
		MaxTokens:   sdk.Int(int64(maxTokens)),
		Temperature: sdk.Float(temperature),
		ResponseFormat: sdk.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &sdk.ResponseFormatJSONSchemaParam{
				JSONSchema: sdk.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   schemaName,
					Schema: schema,
					Strict: sdk.Bool(true),
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("structured completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("structured completion: no content in response")
	}

	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), target); err != nil {
		return "", fmt.Errorf("structured completion: decode %s response: %w", schemaName, err)
	}

	c.logger.Info("Structured completion finished",
		"model", c.model,
		"schema", schemaName,
		"tokens_used", completion.Usage.TotalTokens)
	return content, nil
}

// ChatCompletion sends a plain prompt and returns the text response.
func (c *Client) ChatCompletion(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, sdk.ChatCompletionNewParams{
		Messages: []sdk.ChatCompletionMessageParamUnion{
			sdk.SystemMessage(system),
			sdk.UserMessage(user),
		},
		Model:       sdk.ChatModel(c.model),
		MaxTokens:   sdk.Int(int64(maxTokens)),
		Temperature: sdk.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion: no content in response")
	}

	response := completion.Choices[0].Message.Content
	c.logger.Info("Chat completion finished",
		"model", c.model,
		"tokens_used", completion.Usage.TotalTokens,
		"response_length", len(response))
	return response, nil
}

// SchemaFor generates a strict JSON schema for v's type.
func SchemaFor(v any) (map[string]any, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schemaObj := reflector.Reflect(v)
	if schemaObj.Type == "" {
		schemaObj.Type = "object"
	}

	data, err := json.Marshal(schemaObj)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return schema, nil
}
