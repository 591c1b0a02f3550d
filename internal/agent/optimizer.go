package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
)

// Optimizer drives the control agent loop that prunes a case's dashboard
// item library. Obvious duplicates are removed rule-based first so the model
// spends its iterations on the judgement calls.
type Optimizer struct {
	llm    Completer
	store  *dashboard.Store
	logger *slog.Logger
}

func NewOptimizer(llm Completer, store *dashboard.Store, logger *slog.Logger) *Optimizer {
	return &Optimizer{llm: llm, store: store, logger: logger}
}

type OptimizationAction struct {
	Iteration int            `json:"iteration"`
	Function  string         `json:"function"`
	Arguments map[string]any `json:"arguments"`
	Result    map[string]any `json:"result"`
}

type OptimizationResult struct {
	Success                 bool                 `json:"success"`
	CaseName                string               `json:"case_name,omitempty"`
	OriginalItemCount       int                  `json:"original_item_count"`
	FinalItemCount          int                  `json:"final_item_count"`
	ItemsRemoved            int                  `json:"items_removed"`
	DuplicatesRemovedPrepro int                  `json:"duplicates_removed_preprocessing"`
	Iterations              int                  `json:"iterations"`
	Actions                 []OptimizationAction `json:"optimization_actions"`
	Completed               bool                 `json:"optimization_completed"`
	Message                 string               `json:"message"`
}

const maxOptimizeIterations = 5

const optimizerSystemPrompt = `You are an AI control agent that MUST aggressively optimize dashboard items by removing duplicates and redundancy.

CRITICAL: You MUST take action every iteration. Do not just list items - you must actively delete, update, or consolidate items.

Your mandatory workflow:
1. FIRST: Call list_dashboard_items() to see all items
2. IMMEDIATELY identify obvious duplicates (same type, same label/title, same values)
3. AGGRESSIVELY delete duplicate items using delete_dashboard_item()
4. Look for similar items that can be merged using create_consolidated_item()
5. Continue until no more optimization is possible
6. FINALLY: Call mark_optimization_complete()

RULES FOR DELETION:
- If multiple metric_card items have the same label (like "Global Market Size 2025"), DELETE all but the most recent one
- If multiple items show essentially the same information, DELETE duplicates immediately
- If items have identical titles and types, DELETE the older ones
- Be very aggressive - reduce the total number of items significantly

You MUST make deletion or consolidation actions every single iteration. Do not hesitate to delete items.

Current target: Reduce the dashboard items by at least 50% by removing obvious duplicates and redundant information.`

const optimizerContinuePrompt = "Continue optimizing the dashboard items. If no more optimization is needed, mark the process as complete."

func optimizerUserPrompt(caseName string, itemCount int) string {
	return fmt.Sprintf(`Please optimize the dashboard items for case %s.

Current item count: %d

Your goal is to create an efficient, well-organized set of dashboard items by:
1. Removing duplicates and redundant items
2. Merging similar items into consolidated components
3. Ensuring all valuable information is preserved
4. Creating a clean, coherent dashboard structure

Start by listing all items to understand the current state, then work systematically to optimize the collection.`, caseName, itemCount)
}

func decodeArguments(raw json.RawMessage) map[string]any {
	args := map[string]any{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &args)
	}
	return args
}

// Optimize runs the control agent against one case. Control tool calls are
// executed locally against the store; their results, including errors the
// model caused, are recorded as actions rather than failing the run.
func (o *Optimizer) Optimize(ctx context.Context, caseName string) (*OptimizationResult, error) {
	items, err := o.store.Items(caseName)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return &OptimizationResult{
			Success:        true,
			Message:        "No items to optimize",
			Actions:        []OptimizationAction{},
			FinalItemCount: 0,
		}, nil
	}

	o.logger.Info("Starting dashboard optimization", "case", caseName, "items", len(items))

	duplicatesRemoved, err := o.store.Deduplicate(caseName)
	if err != nil {
		return nil, err
	}
	if duplicatesRemoved > 0 {
		o.logger.Info("Rule-based pass removed duplicates", "case", caseName, "removed", duplicatesRemoved)
	}
	afterDedup := len(items) - duplicatesRemoved

	actions := []OptimizationAction{}
	completed := false
	iteration := 0

	for !completed && iteration < maxOptimizeIterations {
		iteration++
		o.logger.Debug("Control agent iteration", "case", caseName, "iteration", iteration)

		user := optimizerContinuePrompt
		if iteration == 1 {
			user = optimizerUserPrompt(caseName, afterDedup)
		}

		calls, err := o.llm.ToolCompletion(ctx, optimizerSystemPrompt, user, dashboard.ControlTools(), 2000, 0.2)
		if err != nil {
			return nil, fmt.Errorf("control agent iteration %d: %w", iteration, err)
		}
		if len(calls) == 0 {
			break
		}

		for _, call := range calls {
			result := o.store.ExecuteControl(caseName, call.Name, call.Arguments)
			actions = append(actions, OptimizationAction{
				Iteration: iteration,
				Function:  call.Name,
				Arguments: decodeArguments(call.Arguments),
				Result:    result,
			})
			if call.Name == dashboard.ControlComplete {
				if ok, _ := result["success"].(bool); ok {
					completed = true
					break
				}
			}
		}
	}

	finalItems, err := o.store.Items(caseName)
	if err != nil {
		return nil, err
	}

	original := afterDedup + duplicatesRemoved
	result := &OptimizationResult{
		Success:                 true,
		CaseName:                caseName,
		OriginalItemCount:       original,
		FinalItemCount:          len(finalItems),
		ItemsRemoved:            original - len(finalItems),
		DuplicatesRemovedPrepro: duplicatesRemoved,
		Iterations:              iteration,
		Actions:                 actions,
		Completed:               completed,
		Message: fmt.Sprintf("Optimization completed. Reduced from %d to %d items (%d by pre-processing, %d by AI) in %d iterations.",
			original, len(finalItems), duplicatesRemoved, afterDedup-len(finalItems), iteration),
	}

	o.logger.Info("Optimization finished", "case", caseName, "final_items", len(finalItems), "completed", completed)
	return result, nil
}
