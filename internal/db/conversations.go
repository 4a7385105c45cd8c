package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/kavia-common/qna-chatbot/internal/models"
)

// DefaultTitle is used when a conversation is created without one.
const DefaultTitle = "New Conversation"

func (d *Database) CreateConversation(ctx context.Context, ownerID, title string) (*models.Conversation, error) {
	return createConversation(ctx, d.db, ownerID, title)
}

func (t *Tx) CreateConversation(ctx context.Context, ownerID, title string) (*models.Conversation, error) {
	return createConversation(ctx, t.tx, ownerID, title)
}

func createConversation(ctx context.Context, q querier, ownerID, title string) (*models.Conversation, error) {
	if title == "" {
		title = DefaultTitle
	}
	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := q.ExecContext(ctx, `
        INSERT INTO conversations (id, owner_id, title, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)`,
		conv.ID, conv.OwnerID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// GetConversation looks up a conversation by id, scoped to its owner. A
// missing row and an ownership mismatch both return ErrNotFound.
func (d *Database) GetConversation(ctx context.Context, ownerID, id string) (*models.Conversation, error) {
	return getConversation(ctx, d.db, ownerID, id)
}

func (t *Tx) GetConversation(ctx context.Context, ownerID, id string) (*models.Conversation, error) {
	return getConversation(ctx, t.tx, ownerID, id)
}

func getConversation(ctx context.Context, q querier, ownerID, id string) (*models.Conversation, error) {
	var conv models.Conversation
	err := q.QueryRowContext(ctx, `
        SELECT id, owner_id, title, created_at, updated_at
        FROM conversations
        WHERE id = ? AND owner_id = ?`, id, ownerID).
		Scan(&conv.ID, &conv.OwnerID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &conv, nil
}

func (d *Database) ListConversations(ctx context.Context, ownerID string) ([]models.Conversation, error) {
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, owner_id, title, created_at, updated_at
        FROM conversations
        WHERE owner_id = ?
        ORDER BY updated_at DESC, created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]models.Conversation, 0)
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(&conv.ID, &conv.OwnerID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// DeleteConversation removes a conversation and all its messages atomically.
func (d *Database) DeleteConversation(ctx context.Context, ownerID, id string) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages WHERE conversation_id = ?", id); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM conversations WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return tx.Commit()
}
