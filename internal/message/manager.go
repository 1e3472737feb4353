package message

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"supportdesk/internal/contact"
	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrEmptyContent       = errors.New("message content is required")
	ErrRecipientNotFound  = errors.New("recipient not found")
	ErrNotAllowed         = errors.New("not allowed to message this user")
	ErrBroadcastForbidden = errors.New("only admins may broadcast")
)

// Directory is the subset of the profile directory the message manager
// needs: recipient lookup and role-set listing for broadcast fan-out.
type Directory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*profile.Profile, error)
	ListByRoles(ctx context.Context, roles ...profile.Role) ([]*profile.Profile, error)
}

// Manager handles business logic for sending messages.
type Manager struct {
	ds        *Datastore
	directory Directory
	engine    *contact.Engine
}

// NewManager creates a new message manager.
func NewManager(ds *Datastore, directory Directory, engine *contact.Engine) *Manager {
	return &Manager{ds: ds, directory: directory, engine: engine}
}

// Send delivers a single direct message after running the contact engine.
//
// Error taxonomy, in check order: ErrEmptyContent (validation),
// ErrRecipientNotFound, ErrNotAllowed (authorization). Storage failures
// come back wrapped.
func (m *Manager) Send(ctx context.Context, senderID uuid.UUID, senderRole profile.Role, recipientID uuid.UUID, content string) (*Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	recipient, err := m.directory.GetByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, profile.ErrNotFound) {
			return nil, ErrRecipientNotFound
		}
		return nil, fmt.Errorf("failed to load recipient: %w", err)
	}

	allowed, err := m.engine.CanMessage(ctx, senderID, senderRole, recipient)
	if err != nil {
		return nil, fmt.Errorf("failed to authorize message: %w", err)
	}
	if !allowed {
		return nil, ErrNotAllowed
	}

	msg := &Message{
		SenderID:    senderID,
		RecipientID: recipientID,
		Content:     content,
	}
	if err := m.ds.Insert(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}
	return msg, nil
}

// Broadcast fans a message out to every non-admin profile. Admin only.
// The fan-out is a single insert, so a storage failure means no recipient
// received anything. Returns the number of messages delivered.
func (m *Manager) Broadcast(ctx context.Context, senderID uuid.UUID, senderRole profile.Role, content string) (int64, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return 0, ErrEmptyContent
	}

	roles, ok := contact.BroadcastRoles(senderRole)
	if !ok {
		return 0, ErrBroadcastForbidden
	}

	recipients, err := m.directory.ListByRoles(ctx, roles...)
	if err != nil {
		return 0, fmt.Errorf("failed to list broadcast recipients: %w", err)
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	ids := make([]uuid.UUID, len(recipients))
	for i, r := range recipients {
		ids[i] = r.ID
	}

	sent, err := m.ds.InsertBatch(ctx, senderID, ids, content)
	if err != nil {
		return 0, fmt.Errorf("failed to insert broadcast messages: %w", err)
	}
	return sent, nil
}

// Conversation retrieves the message history between the caller and
// another user, both directions, oldest first.
func (m *Manager) Conversation(ctx context.Context, userID, otherID uuid.UUID) ([]*Message, error) {
	msgs, err := m.ds.ListConversation(ctx, userID, otherID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversation: %w", err)
	}
	return msgs, nil
}

// Inbox retrieves every message the user has sent or received, oldest
// first. Clients group it into conversations themselves.
func (m *Manager) Inbox(ctx context.Context, userID uuid.UUID) ([]*Message, error) {
	msgs, err := m.ds.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return msgs, nil
}
