package agent

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CB5Capital/research-terminal-backend/internal/dashboard"
	"github.com/CB5Capital/research-terminal-backend/internal/openai"
)

func seedItems(t *testing.T, store *dashboard.Store, caseName string, items ...dashboard.Item) {
	t.Helper()
	require.NoError(t, store.Append(caseName, items))
}

func metric(id, label, value string) dashboard.Item {
	return dashboard.Item{
		ID:        id,
		CreatedAt: time.Now().Format(time.RFC3339),
		Component: dashboard.Component{"type": dashboard.TypeMetricCard, "label": label, "value": value},
	}
}

func TestOptimizeEmptyLibrary(t *testing.T) {
	llm := &stubLLM{}
	store := dashboard.NewStore(t.TempDir())
	opt := NewOptimizer(llm, store, testLogger())

	result, err := opt.Optimize(context.Background(), "C1")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "No items to optimize", result.Message)
	assert.Empty(t, llm.toolSystems, "no model call for an empty library")
}

func TestOptimizeDeduplicatesBeforeModel(t *testing.T) {
	llm := &stubLLM{}
	store := dashboard.NewStore(t.TempDir())
	opt := NewOptimizer(llm, store, testLogger())
	seedItems(t, store, "C1",
		metric("a", "Revenue", "$10M"),
		metric("b", "Revenue", "$10M"),
		metric("c", "Margin", "40%"),
	)

	result, err := opt.Optimize(context.Background(), "C1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.DuplicatesRemovedPrepro)
	assert.Equal(t, 3, result.OriginalItemCount)
	assert.Equal(t, 2, result.FinalItemCount)
	assert.Equal(t, 1, result.ItemsRemoved)
	assert.False(t, result.Completed, "model made no calls so optimization never completed")

	require.NotEmpty(t, llm.toolUsers)
	assert.Contains(t, llm.toolUsers[0], "Current item count: 2", "model sees the post-dedupe count")
}

func TestOptimizeRunsControlActions(t *testing.T) {
	llm := &stubLLM{
		toolQueue: [][]openai.ToolCall{
			{
				{ID: "1", Name: "delete_dashboard_item", Arguments: json.RawMessage(`{"case_name":"C1","item_id":"b","reason":"duplicate"}`)},
			},
			{
				{ID: "2", Name: dashboard.ControlComplete, Arguments: json.RawMessage(`{"case_name":"C1","summary":"removed duplicate","final_item_count":1}`)},
			},
		},
	}
	store := dashboard.NewStore(t.TempDir())
	opt := NewOptimizer(llm, store, testLogger())
	seedItems(t, store, "C1",
		metric("a", "Revenue", "$10M"),
		metric("b", "Revenue Q2", "$11M"),
	)

	result, err := opt.Optimize(context.Background(), "C1")
	require.NoError(t, err)

	assert.True(t, result.Completed)
	assert.Equal(t, 2, result.Iterations)
	assert.Equal(t, 2, result.OriginalItemCount)
	assert.Equal(t, 1, result.FinalItemCount)
	require.Len(t, result.Actions, 2)
	assert.Equal(t, "delete_dashboard_item", result.Actions[0].Function)
	assert.Equal(t, 1, result.Actions[0].Iteration)
	assert.Equal(t, true, result.Actions[0].Result["success"])
	assert.Equal(t, dashboard.ControlComplete, result.Actions[1].Function)

	// Second iteration uses the continuation prompt.
	require.Len(t, llm.toolUsers, 2)
	assert.Contains(t, llm.toolUsers[1], "Continue optimizing")
}

func TestOptimizeStopsAtIterationCap(t *testing.T) {
	// Every iteration lists items without ever completing.
	listCall := []openai.ToolCall{
		{ID: "1", Name: "list_dashboard_items", Arguments: json.RawMessage(`{"case_name":"C1"}`)},
	}
	llm := &stubLLM{
		toolQueue: [][]openai.ToolCall{listCall, listCall, listCall, listCall, listCall, listCall, listCall},
	}
	store := dashboard.NewStore(t.TempDir())
	opt := NewOptimizer(llm, store, testLogger())
	seedItems(t, store, "C1", metric("a", "Revenue", "$10M"))

	result, err := opt.Optimize(context.Background(), "C1")
	require.NoError(t, err)

	assert.Equal(t, maxOptimizeIterations, result.Iterations)
	assert.False(t, result.Completed)
}
