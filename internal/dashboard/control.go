package dashboard

import (
	"encoding/json"
	"fmt"

	"github.com/openai/openai-go/v3"
)

// ControlComplete is the tool the control agent calls to end optimization.
const ControlComplete = "mark_optimization_complete"

// ControlTools returns the tool definitions for the dashboard control agent,
// which prunes and consolidates a case's item library.
func ControlTools() []openai.ChatCompletionToolUnionParam {
	caseProp := map[string]any{
		"type":        "string",
		"description": "The case name (e.g., 'C1')",
	}
	componentProp := map[string]any{
		"type":        "object",
		"description": "Component data (same structure as a generated component)",
		"properties": map[string]any{
			"type":  map[string]any{"type": "string"},
			"title": map[string]any{"type": "string"},
			"size":  map[string]any{"type": "string"},
		},
		"required": []string{"type"},
	}

	return []openai.ChatCompletionToolUnionParam{
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "list_dashboard_items",
			Description: openai.String("List all current dashboard items for analysis and management"),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": map[string]any{"case_name": caseProp},
				"required":   []string{"case_name"},
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "delete_dashboard_item",
			Description: openai.String("Delete a dashboard item that is duplicate, outdated, or redundant"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"case_name": caseProp,
					"item_id":   map[string]any{"type": "string", "description": "The ID of the dashboard item to delete"},
					"reason":    map[string]any{"type": "string", "description": "Reason for deletion (e.g., 'duplicate', 'outdated', 'redundant', 'low-value')"},
				},
				"required": []string{"case_name", "item_id", "reason"},
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "update_dashboard_item",
			Description: openai.String("Update an existing dashboard item with new or corrected information"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"case_name":         caseProp,
					"item_id":           map[string]any{"type": "string", "description": "The ID of the dashboard item to update"},
					"updated_component": componentProp,
					"update_reason":     map[string]any{"type": "string", "description": "Reason for the update (e.g., 'merged_duplicates', 'corrected_data')"},
				},
				"required": []string{"case_name", "item_id", "updated_component", "update_reason"},
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "create_consolidated_item",
			Description: openai.String("Create a new dashboard item that consolidates information from multiple existing items"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"case_name": caseProp,
					"component": componentProp,
					"source_item_ids": map[string]any{
						"type":        "array",
						"items":       map[string]any{"type": "string"},
						"description": "Item IDs that were consolidated into this new item",
					},
					"consolidation_reason": map[string]any{"type": "string", "description": "Reason for consolidation"},
				},
				"required": []string{"case_name", "component", "source_item_ids", "consolidation_reason"},
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "analyze_item_similarity",
			Description: openai.String("Analyze similarity between dashboard items to identify duplicates or mergeable content"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"case_name": caseProp,
					"item_id_1": map[string]any{"type": "string", "description": "First item ID to compare"},
					"item_id_2": map[string]any{"type": "string", "description": "Second item ID to compare"},
				},
				"required": []string{"case_name", "item_id_1", "item_id_2"},
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        "get_item_statistics",
			Description: openai.String("Get statistics about dashboard items to help with optimization decisions"),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": map[string]any{"case_name": caseProp},
				"required":   []string{"case_name"},
			},
		}),
		openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        ControlComplete,
			Description: openai.String("Mark the optimization process as complete when no more changes are needed"),
			Parameters: openai.FunctionParameters{
				"type": "object",
				"properties": map[string]any{
					"case_name":        caseProp,
					"summary":          map[string]any{"type": "string", "description": "Summary of optimization actions taken"},
					"final_item_count": map[string]any{"type": "integer", "description": "Final number of dashboard items after optimization"},
				},
				"required": []string{"case_name", "summary", "final_item_count"},
			},
		}),
	}
}

// ExecuteControl runs one control tool call against the store and returns a
// JSON-encodable result. Tool errors are returned as result payloads rather
// than Go errors so the agent loop can keep going, matching how each tool
// reports its own failure to the model.
func (s *Store) ExecuteControl(caseName, toolName string, arguments json.RawMessage) map[string]any {
	switch toolName {
	case "list_dashboard_items":
		items, err := s.Items(caseName)
		if err != nil {
			return controlError("failed to load dashboard items: %v", err)
		}
		return map[string]any{
			"success": true,
			"items":   items,
			"count":   len(items),
			"message": fmt.Sprintf("Retrieved %d dashboard items for case %s", len(items), caseName),
		}

	case "delete_dashboard_item":
		var args struct {
			ItemID string `json:"item_id"`
			Reason string `json:"reason"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return controlError("invalid delete arguments: %v", err)
		}
		remaining, err := s.Delete(caseName, args.ItemID)
		if err != nil {
			return controlError("failed to delete item: %v", err)
		}
		return map[string]any{
			"success":         true,
			"message":         fmt.Sprintf("Deleted item %s. Reason: %s", args.ItemID, args.Reason),
			"remaining_items": remaining,
		}

	case "update_dashboard_item":
		var args struct {
			ItemID           string    `json:"item_id"`
			UpdatedComponent Component `json:"updated_component"`
			UpdateReason     string    `json:"update_reason"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return controlError("invalid update arguments: %v", err)
		}
		if err := s.Update(caseName, args.ItemID, args.UpdatedComponent, args.UpdateReason); err != nil {
			return controlError("failed to update item: %v", err)
		}
		return map[string]any{
			"success":           true,
			"message":           fmt.Sprintf("Updated item %s. Reason: %s", args.ItemID, args.UpdateReason),
			"updated_component": args.UpdatedComponent,
		}

	case "create_consolidated_item":
		var args struct {
			Component           Component `json:"component"`
			SourceItemIDs       []string  `json:"source_item_ids"`
			ConsolidationReason string    `json:"consolidation_reason"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return controlError("invalid consolidation arguments: %v", err)
		}
		item, err := s.Consolidate(caseName, args.Component, args.SourceItemIDs, args.ConsolidationReason)
		if err != nil {
			return controlError("failed to create consolidated item: %v", err)
		}
		return map[string]any{
			"success":              true,
			"message":              fmt.Sprintf("Created consolidated item from %d source items", len(args.SourceItemIDs)),
			"new_item_id":          item.ID,
			"consolidation_reason": args.ConsolidationReason,
		}

	case "analyze_item_similarity":
		var args struct {
			ItemID1 string `json:"item_id_1"`
			ItemID2 string `json:"item_id_2"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return controlError("invalid similarity arguments: %v", err)
		}
		report, err := s.Similarity(caseName, args.ItemID1, args.ItemID2)
		if err != nil {
			return controlError("failed to analyze similarity: %v", err)
		}
		return map[string]any{
			"success":            true,
			"similarity_score":   report.Score,
			"similarity_factors": report.Factors,
			"recommendation":     report.Recommendation,
			"item1_summary":      report.Item1,
			"item2_summary":      report.Item2,
		}

	case "get_item_statistics":
		stats, err := s.Statistics(caseName)
		if err != nil {
			return controlError("failed to get statistics: %v", err)
		}
		return map[string]any{"success": true, "statistics": stats}

	case ControlComplete:
		var args struct {
			Summary        string `json:"summary"`
			FinalItemCount int    `json:"final_item_count"`
		}
		if err := json.Unmarshal(arguments, &args); err != nil {
			return controlError("invalid completion arguments: %v", err)
		}
		if err := s.WriteOptimizationLog(caseName, args.Summary, args.FinalItemCount); err != nil {
			return controlError("failed to mark optimization complete: %v", err)
		}
		return map[string]any{
			"success":                true,
			"message":                fmt.Sprintf("Optimization completed for case %s", caseName),
			"summary":                args.Summary,
			"final_item_count":       args.FinalItemCount,
			"optimization_completed": true,
		}

	default:
		return controlError("unknown function: %s", toolName)
	}
}

func controlError(format string, args ...any) map[string]any {
	return map[string]any{"success": false, "error": fmt.Sprintf(format, args...)}
}
