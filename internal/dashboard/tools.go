package dashboard

import (
	"github.com/openai/openai-go/v3"
)

// ComponentTools returns the function-calling tool definitions the generator
// agent exposes to the model. Each tool maps to one component builder.
func ComponentTools() []openai.ChatCompletionToolUnionParam {
	sizeProp := map[string]any{
		"type":        "string",
		"enum":        []string{"small", "medium", "large"},
		"description": "Component size",
	}
	largeSizeProp := map[string]any{
		"type":        "string",
		"enum":        []string{"medium", "large"},
		"description": "Component size",
	}
	colorProp := map[string]any{
		"type":        "string",
		"enum":        []string{"blue", "green", "red", "orange", "purple"},
		"description": "Color theme",
	}
	sourceProps := map[string]any{
		"source_filename": map[string]any{
			"type":        "string",
			"description": "Source filename where this data came from",
		},
		"key_insight": map[string]any{
			"type":        "string",
			"description": "Brief description of what this component represents",
		},
	}

	objectSchema := func(props map[string]any, required ...string) openai.FunctionParameters {
		for k, v := range sourceProps {
			props[k] = v
		}
		return openai.FunctionParameters{
			"type":       "object",
			"properties": props,
			"required":   required,
		}
	}

	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_metric_card",
			Description: openai.String("Create a metric card to display a key performance indicator or important metric"),
			Parameters: objectSchema(map[string]any{
				"label": map[string]any{"type": "string", "description": "The label/title for the metric (e.g., 'Market Size by 2029', 'Growth Rate')"},
				"value": map[string]any{"type": "string", "description": "The metric value (e.g., '$45.2B', '23.5%', '1,250 units')"},
				"size":  sizeProp,
				"color": colorProp,
			}, "label", "value"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_data_table",
			Description: openai.String("Create a data table to display structured data in rows and columns"),
			Parameters: objectSchema(map[string]any{
				"title":   map[string]any{"type": "string", "description": "Table title"},
				"headers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "List of column headers"},
				"rows": map[string]any{
					"type":        "array",
					"items":       map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"description": "List of rows, where each row is a list of cell values",
				},
				"size": sizeProp,
			}, "title", "headers", "rows"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_financial_chart",
			Description: openai.String("Create a financial chart to visualize numerical data"),
			Parameters: objectSchema(map[string]any{
				"title": map[string]any{"type": "string", "description": "Chart title"},
				"data": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"label": map[string]any{"type": "string"},
							"value": map[string]any{"type": "number"},
						},
						"required": []string{"label", "value"},
					},
					"description": "List of data points with label and value",
				},
				"chart_type": map[string]any{"type": "string", "enum": []string{"bar", "line", "pie", "area"}, "description": "Type of chart to display"},
				"size":       sizeProp,
			}, "title", "data"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_list_items",
			Description: openai.String("Create a bulleted list to display multiple related items"),
			Parameters: objectSchema(map[string]any{
				"title": map[string]any{"type": "string", "description": "List title"},
				"items": map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "List of string items to display"},
				"size":  sizeProp,
			}, "title", "items"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_short_text",
			Description: openai.String("Create a short text component for brief summaries or key points"),
			Parameters: objectSchema(map[string]any{
				"title":   map[string]any{"type": "string", "description": "Text title"},
				"content": map[string]any{"type": "string", "description": "Text content (should be brief, 1-2 sentences)"},
				"size":    sizeProp,
			}, "title", "content"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_long_text",
			Description: openai.String("Create a long text component for detailed analysis or explanations"),
			Parameters: objectSchema(map[string]any{
				"title":   map[string]any{"type": "string", "description": "Text title"},
				"content": map[string]any{"type": "string", "description": "Text content (can be longer, multiple paragraphs)"},
				"size":    largeSizeProp,
			}, "title", "content"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_text_analysis",
			Description: openai.String("Create a comprehensive text analysis component with insights and conclusions"),
			Parameters: objectSchema(map[string]any{
				"title":      map[string]any{"type": "string", "description": "Analysis title"},
				"content":    map[string]any{"type": "string", "description": "Main analysis content"},
				"insights":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "description": "Optional list of key insights"},
				"conclusion": map[string]any{"type": "string", "description": "Optional conclusion summary"},
				"size":       largeSizeProp,
			}, "title", "content"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_competitor_analysis",
			Description: openai.String("Create a competitor analysis component to compare market competitors"),
			Parameters: objectSchema(map[string]any{
				"title": map[string]any{"type": "string", "description": "Analysis title"},
				"competitors": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"name":         map[string]any{"type": "string"},
							"market_share": map[string]any{"type": "string"},
							"key_strength": map[string]any{"type": "string"},
							"position":     map[string]any{"type": "string"},
						},
						"required": []string{"name", "market_share", "key_strength", "position"},
					},
					"description": "List of competitors with their details",
				},
				"size": largeSizeProp,
			}, "title", "competitors"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_risk_assessment",
			Description: openai.String("Create a risk assessment component to analyze potential risks"),
			Parameters: objectSchema(map[string]any{
				"title": map[string]any{"type": "string", "description": "Assessment title"},
				"risks": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type": "object",
						"properties": map[string]any{
							"title":       map[string]any{"type": "string"},
							"level":       map[string]any{"type": "string"},
							"description": map[string]any{"type": "string"},
						},
						"required": []string{"title", "level", "description"},
					},
					"description": "List of risks with their details",
				},
				"size": sizeProp,
			}, "title", "risks"),
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_progress_bar",
			Description: openai.String("Create a progress bar to show completion or achievement levels"),
			Parameters: objectSchema(map[string]any{
				"title":     map[string]any{"type": "string", "description": "Progress bar title"},
				"value":     map[string]any{"type": "number", "description": "Current value"},
				"max_value": map[string]any{"type": "number", "description": "Maximum value (default 100.0)"},
				"label":     map[string]any{"type": "string", "description": "Optional label to display with the progress"},
				"color":     colorProp,
				"size":      sizeProp,
			}, "title", "value"),
		}),
	}
}
