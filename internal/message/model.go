package message

import (
	"time"

	"github.com/google/uuid"
)

// Message is a single direct message. Rows are append-only: there is no
// edit or delete path anywhere in the system.
type Message struct {
	ID          uuid.UUID `json:"id"`
	SenderID    uuid.UUID `json:"sender_id"`
	RecipientID uuid.UUID `json:"recipient_id"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
}
