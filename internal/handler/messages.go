package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"supportdesk/internal/auth"
	"supportdesk/internal/message"
	"supportdesk/internal/middleware"
	"supportdesk/internal/observability"
	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

// MessageService sends and reads messages.
type MessageService interface {
	Send(ctx context.Context, senderID uuid.UUID, senderRole profile.Role, recipientID uuid.UUID, content string) (*message.Message, error)
	Broadcast(ctx context.Context, senderID uuid.UUID, senderRole profile.Role, content string) (int64, error)
	Conversation(ctx context.Context, userID, otherID uuid.UUID) ([]*message.Message, error)
	Inbox(ctx context.Context, userID uuid.UUID) ([]*message.Message, error)
}

// MessagesHandler handles message endpoints.
type MessagesHandler struct {
	messages MessageService
}

// NewMessagesHandler creates a new messages handler.
func NewMessagesHandler(messages MessageService) *MessagesHandler {
	return &MessagesHandler{messages: messages}
}

type sendMessageRequest struct {
	RecipientID string `json:"recipient_id,omitempty"`
	Content     string `json:"content"`
	Broadcast   bool   `json:"broadcast,omitempty"`
}

// Send handles POST /api/v1/messages. With "broadcast": true the message
// fans out to every non-admin profile; otherwise recipient_id is required.
func (h *MessagesHandler) Send(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}

	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Broadcast {
		sent, err := h.messages.Broadcast(r.Context(), actor.ID, actor.Role, req.Content)
		if err != nil {
			writeMessageError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "sent": sent})
		return
	}

	if req.RecipientID == "" {
		writeError(w, http.StatusBadRequest, "missing recipient")
		return
	}
	recipientID, err := parseUUID(req.RecipientID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid recipient_id")
		return
	}

	msg, err := h.messages.Send(r.Context(), actor.ID, actor.Role, recipientID, req.Content)
	if err != nil {
		writeMessageError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "message": msg})
}

// Conversation handles GET /api/v1/messages. With ?with={id} it returns
// the history between the caller and the other user; without it, every
// message the caller has sent or received. Oldest first either way.
func (h *MessagesHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}

	var (
		msgs []*message.Message
		err  error
	)
	if otherRaw := r.URL.Query().Get("with"); otherRaw != "" {
		var otherID uuid.UUID
		otherID, err = parseUUID(otherRaw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid 'with' query parameter")
			return
		}
		msgs, err = h.messages.Conversation(r.Context(), actor.ID, otherID)
	} else {
		msgs, err = h.messages.Inbox(r.Context(), actor.ID)
	}
	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("failed to list messages", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}
	if msgs == nil {
		msgs = []*message.Message{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"messages": msgs})
}

func writeMessageError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, message.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, "missing message content")
	case errors.Is(err, message.ErrRecipientNotFound):
		writeError(w, http.StatusNotFound, "recipient not found")
	case errors.Is(err, message.ErrNotAllowed):
		writeError(w, http.StatusForbidden, "not allowed to message this user")
	case errors.Is(err, message.ErrBroadcastForbidden):
		auth.WriteForbidden(w)
	default:
		observability.LoggerFromContext(r.Context()).Error("failed to send message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send message")
	}
}

// parseUUID parses a UUID from a request value.
func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(raw)
}
