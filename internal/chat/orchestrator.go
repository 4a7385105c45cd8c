package chat

import (
	"context"
	"errors"
	"strings"

	"github.com/kavia-common/qna-chatbot/internal/db"
	"github.com/kavia-common/qna-chatbot/internal/llm"
	"github.com/kavia-common/qna-chatbot/internal/models"
	"go.uber.org/zap"
)

// ErrEmptyMessage is returned when the submitted message is blank after
// trimming whitespace.
var ErrEmptyMessage = errors.New("message text is required")

// titleLimit caps auto-generated conversation titles, matching the stored
// title length the frontend expects.
const titleLimit = 60

// Orchestrator runs conversation turns. Each turn is a single storage
// transaction: the user message and the assistant reply are recorded together
// or not at all, so a failed generation leaves the conversation untouched.
type Orchestrator struct {
	db     *db.Database
	gen    llm.Generator
	logger *zap.Logger
}

func NewOrchestrator(database *db.Database, gen llm.Generator, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		db:     database,
		gen:    gen,
		logger: logger,
	}
}

type TurnResult struct {
	ConversationID string
	Assistant      string
	Messages       []models.Message
}

// SubmitTurn appends one user message to the conversation (creating it when
// conversationID is empty), generates the assistant reply from the full
// ordered history, and returns the updated message list.
func (o *Orchestrator) SubmitTurn(ctx context.Context, ownerID, conversationID, message, systemPrompt string) (*TurnResult, error) {
	text := strings.TrimSpace(message)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var result TurnResult
	err := o.db.WithTx(ctx, func(tx *db.Tx) error {
		var (
			conv *models.Conversation
			err  error
		)
		if conversationID != "" {
			conv, err = tx.GetConversation(ctx, ownerID, conversationID)
		} else {
			conv, err = tx.CreateConversation(ctx, ownerID, titleFor(text))
		}
		if err != nil {
			return err
		}

		prior, err := tx.ListMessages(ctx, conv.ID)
		if err != nil {
			return err
		}

		// The prompt includes the new user message before it is persisted, so
		// it reflects exactly what the store will hold on commit.
		prompt := BuildContext(prior, systemPrompt, text)

		if _, err := tx.AppendMessage(ctx, conv.ID, models.RoleUser, text); err != nil {
			return err
		}

		reply, err := o.gen.Generate(ctx, prompt)
		if err != nil {
			o.logger.Warn("generation failed, rolling back turn",
				zap.String("conversation_id", conv.ID),
				zap.Int("history_len", len(prior)),
				zap.Error(err))
			return err
		}

		if _, err := tx.AppendMessage(ctx, conv.ID, models.RoleAssistant, reply); err != nil {
			return err
		}

		messages, err := tx.ListMessages(ctx, conv.ID)
		if err != nil {
			return err
		}

		result = TurnResult{
			ConversationID: conv.ID,
			Assistant:      reply,
			Messages:       messages,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// titleFor derives a new conversation's title from the first message.
func titleFor(text string) string {
	runes := []rune(text)
	if len(runes) > titleLimit {
		runes = runes[:titleLimit]
	}
	return string(runes)
}
