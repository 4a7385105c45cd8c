package db

import (
	"context"
	"time"

	"github.com/kavia-common/qna-chatbot/internal/models"
)

// AppendMessage records one message at the end of a conversation and bumps
// the conversation's updated_at. Messages are never mutated afterwards.
func (d *Database) AppendMessage(ctx context.Context, convID, role, content string) (*models.Message, error) {
	return appendMessage(ctx, d.db, convID, role, content)
}

func (t *Tx) AppendMessage(ctx context.Context, convID, role, content string) (*models.Message, error) {
	return appendMessage(ctx, t.tx, convID, role, content)
}

func appendMessage(ctx context.Context, q querier, convID, role, content string) (*models.Message, error) {
	now := time.Now().UTC()
	msg := &models.Message{
		ConvID:    convID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}

	err := q.QueryRowContext(ctx, `
        INSERT INTO messages (conversation_id, role, content, created_at)
        VALUES (?, ?, ?, ?)
        RETURNING id`, convID, role, content, now).Scan(&msg.ID)
	if err != nil {
		return nil, err
	}

	if _, err := q.ExecContext(ctx,
		"UPDATE conversations SET updated_at = ? WHERE id = ?", now, convID); err != nil {
		return nil, err
	}
	return msg, nil
}

// ListMessages returns a conversation's messages in creation order. The
// autoincrement id breaks same-timestamp ties, so the order is a strict total
// order and stable across reads.
func (d *Database) ListMessages(ctx context.Context, convID string) ([]models.Message, error) {
	return listMessages(ctx, d.db, convID)
}

func (t *Tx) ListMessages(ctx context.Context, convID string) ([]models.Message, error) {
	return listMessages(ctx, t.tx, convID)
}

func listMessages(ctx context.Context, q querier, convID string) ([]models.Message, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT id, conversation_id, role, content, created_at
        FROM messages
        WHERE conversation_id = ?
        ORDER BY created_at, id`, convID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]models.Message, 0)
	for rows.Next() {
		var msg models.Message
		if err := rows.Scan(&msg.ID, &msg.ConvID, &msg.Role, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
