package message

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBTX is the interface for database operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Datastore handles database operations for messages.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new message datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

// Insert persists a single message.
func (ds *Datastore) Insert(ctx context.Context, m *Message) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := time.Now()

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, content, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return ds.db.QueryRowContext(ctx, query,
		m.ID, m.SenderID, m.RecipientID, m.Content, now,
	).Scan(&m.CreatedAt)
}

// InsertBatch persists one message per recipient in a single statement.
// Because it is one INSERT, the fan-out is atomic: either every recipient
// gets a row or none does.
func (ds *Datastore) InsertBatch(ctx context.Context, senderID uuid.UUID, recipientIDs []uuid.UUID, content string) (int64, error) {
	if len(recipientIDs) == 0 {
		return 0, nil
	}

	now := time.Now()
	values := make([]string, len(recipientIDs))
	args := make([]any, 0, len(recipientIDs)*5)
	for i, rid := range recipientIDs {
		base := i * 5
		values[i] = fmt.Sprintf("($%d, $%d, $%d, $%d, $%d)", base+1, base+2, base+3, base+4, base+5)
		args = append(args, uuid.New(), senderID, rid, content, now)
	}

	query := `
		INSERT INTO messages (id, sender_id, recipient_id, content, created_at)
		VALUES ` + strings.Join(values, ", ")

	result, err := ds.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// HasMessageBetween checks whether at least one message exists from
// senderID to recipientID. Existence only; content is never inspected.
func (ds *Datastore) HasMessageBetween(ctx context.Context, senderID, recipientID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM messages WHERE sender_id = $1 AND recipient_id = $2)`
	var exists bool
	err := ds.db.QueryRowContext(ctx, query, senderID, recipientID).Scan(&exists)
	return exists, err
}

// ListConversation retrieves the messages exchanged between two users in
// either direction, oldest first.
func (ds *Datastore) ListConversation(ctx context.Context, a, b uuid.UUID) ([]*Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, content, created_at
		FROM messages
		WHERE (sender_id = $1 AND recipient_id = $2)
		   OR (sender_id = $2 AND recipient_id = $1)
		ORDER BY created_at`

	rows, err := ds.db.QueryContext(ctx, query, a, b)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

// ListForUser retrieves every message sent or received by a user,
// oldest first.
func (ds *Datastore) ListForUser(ctx context.Context, userID uuid.UUID) ([]*Message, error) {
	query := `
		SELECT id, sender_id, recipient_id, content, created_at
		FROM messages
		WHERE sender_id = $1 OR recipient_id = $1
		ORDER BY created_at`

	rows, err := ds.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectMessages(rows)
}

func collectMessages(rows *sql.Rows) ([]*Message, error) {
	var messages []*Message
	for rows.Next() {
		m := &Message{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.RecipientID, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
