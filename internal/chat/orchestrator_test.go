package chat

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kavia-common/qna-chatbot/internal/db"
	"github.com/kavia-common/qna-chatbot/internal/llm"
	"github.com/kavia-common/qna-chatbot/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubGenerator records the prompts it receives and returns a fixed reply or
// error.
type stubGenerator struct {
	reply string
	err   error
	calls [][]llm.ChatMessage
}

func (s *stubGenerator) Generate(_ context.Context, messages []llm.ChatMessage) (string, error) {
	s.calls = append(s.calls, messages)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func newTestOrchestrator(t *testing.T, gen llm.Generator) (*Orchestrator, *db.Database) {
	t.Helper()
	database, err := db.New(filepath.Join(t.TempDir(), "qna.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return NewOrchestrator(database, gen, zap.NewNop()), database
}

func TestSubmitTurnCreatesConversation(t *testing.T) {
	gen := &stubGenerator{reply: "42."}
	o, database := newTestOrchestrator(t, gen)
	ctx := context.Background()

	result, err := o.SubmitTurn(ctx, "alice", "", "What is the answer?", "")
	require.NoError(t, err)
	require.NotEmpty(t, result.ConversationID)
	require.Equal(t, "42.", result.Assistant)

	// Exactly one user and one assistant message, in that order.
	require.Len(t, result.Messages, 2)
	require.Equal(t, models.RoleUser, result.Messages[0].Role)
	require.Equal(t, "What is the answer?", result.Messages[0].Content)
	require.Equal(t, models.RoleAssistant, result.Messages[1].Role)
	require.Equal(t, "42.", result.Messages[1].Content)

	conv, err := database.GetConversation(ctx, "alice", result.ConversationID)
	require.NoError(t, err)
	require.Equal(t, "What is the answer?", conv.Title)
}

func TestSubmitTurnTruncatesLongTitle(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	o, database := newTestOrchestrator(t, gen)
	ctx := context.Background()

	long := strings.Repeat("é", 80)
	result, err := o.SubmitTurn(ctx, "alice", "", long, "")
	require.NoError(t, err)

	conv, err := database.GetConversation(ctx, "alice", result.ConversationID)
	require.NoError(t, err)
	require.Equal(t, strings.Repeat("é", 60), conv.Title)
}

func TestSubmitTurnAppendsToExistingConversation(t *testing.T) {
	gen := &stubGenerator{reply: "second reply"}
	o, _ := newTestOrchestrator(t, gen)
	ctx := context.Background()

	first, err := o.SubmitTurn(ctx, "alice", "", "first question", "")
	require.NoError(t, err)

	second, err := o.SubmitTurn(ctx, "alice", first.ConversationID, "second question", "")
	require.NoError(t, err)
	require.Equal(t, first.ConversationID, second.ConversationID)
	require.Len(t, second.Messages, 4)
	require.Equal(t, "second question", second.Messages[2].Content)
	require.Equal(t, "second reply", second.Messages[3].Content)
}

func TestSubmitTurnPromptIncludesHistoryAndSystemPrompt(t *testing.T) {
	gen := &stubGenerator{reply: "r"}
	o, _ := newTestOrchestrator(t, gen)
	ctx := context.Background()

	first, err := o.SubmitTurn(ctx, "alice", "", "q1", "")
	require.NoError(t, err)
	_, err = o.SubmitTurn(ctx, "alice", first.ConversationID, "q2", "be brief")
	require.NoError(t, err)

	require.Len(t, gen.calls, 2)
	prompt := gen.calls[1]
	require.Equal(t, []llm.ChatMessage{
		{Role: models.RoleSystem, Content: "be brief"},
		{Role: models.RoleUser, Content: "q1"},
		{Role: models.RoleAssistant, Content: "r"},
		{Role: models.RoleUser, Content: "q2"},
	}, prompt)
}

func TestSubmitTurnEmptyMessage(t *testing.T) {
	gen := &stubGenerator{reply: "never"}
	o, database := newTestOrchestrator(t, gen)
	ctx := context.Background()

	_, err := o.SubmitTurn(ctx, "alice", "", "   \t\n", "")
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.Empty(t, gen.calls)

	convs, err := database.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, convs)
}

func TestSubmitTurnUnknownConversation(t *testing.T) {
	gen := &stubGenerator{reply: "never"}
	o, _ := newTestOrchestrator(t, gen)

	_, err := o.SubmitTurn(context.Background(), "alice", "missing-id", "hi", "")
	require.ErrorIs(t, err, db.ErrNotFound)
	require.Empty(t, gen.calls)
}

func TestSubmitTurnOwnershipIsolation(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	o, _ := newTestOrchestrator(t, gen)
	ctx := context.Background()

	result, err := o.SubmitTurn(ctx, "alice", "", "mine", "")
	require.NoError(t, err)

	_, err = o.SubmitTurn(ctx, "bob", result.ConversationID, "let me in", "")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestSubmitTurnGenerationFailureRollsBack(t *testing.T) {
	gen := &stubGenerator{reply: "ok"}
	o, database := newTestOrchestrator(t, gen)
	ctx := context.Background()

	seeded, err := o.SubmitTurn(ctx, "alice", "", "seed", "")
	require.NoError(t, err)
	require.Len(t, seeded.Messages, 2)

	gen.err = llm.ErrGeneration
	_, err = o.SubmitTurn(ctx, "alice", seeded.ConversationID, "doomed", "")
	require.ErrorIs(t, err, llm.ErrGeneration)

	// The user message written before the gateway call must not survive.
	msgs, err := database.ListMessages(ctx, seeded.ConversationID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	require.Equal(t, "seed", msgs[0].Content)
}

func TestSubmitTurnGenerationFailureDiscardsNewConversation(t *testing.T) {
	gen := &stubGenerator{err: llm.ErrGeneration}
	o, database := newTestOrchestrator(t, gen)
	ctx := context.Background()

	_, err := o.SubmitTurn(ctx, "alice", "", "hello", "")
	require.ErrorIs(t, err, llm.ErrGeneration)

	convs, err := database.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Empty(t, convs)
}

func TestSubmitTurnMockFallback(t *testing.T) {
	// No credential configured selects the mock generator end to end.
	gen := llm.NewGenerator(llm.Config{}, zap.NewNop())
	o, database := newTestOrchestrator(t, gen)
	ctx := context.Background()

	result, err := o.SubmitTurn(ctx, "alice", "", "Hello?", "")
	require.NoError(t, err)
	require.Contains(t, result.Assistant, "Hello?")
	require.Len(t, result.Messages, 2)

	convs, err := database.ListConversations(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, convs, 1)
}
