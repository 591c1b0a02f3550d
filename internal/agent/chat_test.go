package agent

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CB5Capital/research-terminal-backend/internal/conversation"
	"github.com/CB5Capital/research-terminal-backend/internal/library"
)

func chatFixture(t *testing.T, llm *stubLLM) (*Chat, *library.Library, *conversation.Store, string) {
	t.Helper()
	root := t.TempDir()
	logger := testLogger()
	lib := library.New(root, logger)
	memory := conversation.NewStore(50, time.Hour)
	t.Cleanup(memory.Close)
	return NewChat(llm, lib, memory, logger), lib, memory, root
}

func TestChatUnknownCase(t *testing.T) {
	chat, _, _, _ := chatFixture(t, &stubLLM{})

	_, err := chat.Continue(context.Background(), "C9", "hello", "", nil)
	var notFound *library.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestChatGroundsAnswerInFiles(t *testing.T) {
	llm := &stubLLM{chatResponse: "According to metrics, ARR is $1.2M and churn is 2%."}
	chat, _, memory, root := chatFixture(t, llm)
	seedDataFile(t, root, "C1", "metrics.txt", "ARR: $1.2M\nChurn: 2% monthly")
	seedDataFile(t, root, "C1", "competitors.txt", "Main competitor: Acme")

	reply, err := chat.Continue(context.Background(), "C1", "What is our ARR?", "", nil)
	require.NoError(t, err)

	assert.Equal(t, llm.chatResponse, reply.Response)
	assert.Equal(t, []string{"metrics.txt"}, reply.Sources, "only files named in the answer are cited")
	assert.NotEmpty(t, reply.Timestamp)

	// File excerpts reach the model.
	assert.Contains(t, llm.chatUser, "=== metrics.txt ===")
	assert.Contains(t, llm.chatUser, "ARR: $1.2M")
	assert.Contains(t, llm.chatUser, "What is our ARR?")

	// Without a dashboard the exchange lands in the memory thread.
	history := memory.History("C1", 6)
	require.Len(t, history, 2)
	assert.Equal(t, "user", history[0].Role)
	assert.Equal(t, "ai", history[1].Role)
}

func TestChatUsesMemoryForFollowUps(t *testing.T) {
	llm := &stubLLM{chatResponse: "It doubled since last year."}
	chat, _, memory, root := chatFixture(t, llm)
	seedDataFile(t, root, "C1", "metrics.txt", "ARR: $1.2M")

	memory.Add("C1", "user", "What is our ARR?")
	memory.Add("C1", "ai", "ARR is $1.2M.")

	_, err := chat.Continue(context.Background(), "C1", "How has it changed?", "", nil)
	require.NoError(t, err)

	assert.Contains(t, llm.chatUser, "User: What is our ARR?")
	assert.Contains(t, llm.chatUser, "Assistant: ARR is $1.2M.")
}

func TestChatClientHistoryWins(t *testing.T) {
	llm := &stubLLM{chatResponse: "ok"}
	chat, _, _, root := chatFixture(t, llm)
	seedDataFile(t, root, "C1", "metrics.txt", "data")

	history := []ChatTurn{
		{Type: "user", Content: "client-sent question"},
		{Type: "ai", Content: "client-sent answer"},
	}
	_, err := chat.Continue(context.Background(), "C1", "next question", "", history)
	require.NoError(t, err)

	assert.Contains(t, llm.chatUser, "User: client-sent question")
	assert.Contains(t, llm.chatUser, "Assistant: client-sent answer")
}

func TestChatPersistsToDashboard(t *testing.T) {
	llm := &stubLLM{chatResponse: "The market is growing."}
	chat, lib, memory, root := chatFixture(t, llm)
	seedDataFile(t, root, "C1", "market.txt", "growth data")

	d := &library.Dashboard{
		Title:    "Market",
		Metadata: library.DashboardMetadata{DashboardID: "dashboard_20260829_140000"},
	}
	require.NoError(t, lib.SaveDashboard("C1", d))

	_, err := chat.Continue(context.Background(), "C1", "Is the market growing?", "dashboard_20260829_140000", nil)
	require.NoError(t, err)

	loaded, err := lib.Dashboard("C1", "dashboard_20260829_140000")
	require.NoError(t, err)
	require.Len(t, loaded.ConversationHistory, 2)
	assert.Equal(t, "user", loaded.ConversationHistory[0].Type)
	assert.Equal(t, "Is the market growing?", loaded.ConversationHistory[0].Content)
	assert.Equal(t, "The market is growing.", loaded.ConversationHistory[1].Content)

	assert.Empty(t, memory.History("C1", 6), "dashboard-bound chat does not touch the memory thread")
}
