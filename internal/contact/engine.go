// Package contact decides who may message whom. The permission relation is
// a directed graph over roles, narrowed for managers by team assignment and
// for team members by reply eligibility.
package contact

import (
	"context"
	"fmt"

	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

// ReplyChecker answers whether at least one message exists from one user to
// another. The message datastore satisfies this.
type ReplyChecker interface {
	HasMessageBetween(ctx context.Context, senderID, recipientID uuid.UUID) (bool, error)
}

// Engine evaluates messaging permissions. It holds no state of its own;
// the only lookup it performs is the reply-eligibility existence query.
type Engine struct {
	replies ReplyChecker
}

// NewEngine creates a new contact engine.
func NewEngine(replies ReplyChecker) *Engine {
	return &Engine{replies: replies}
}

// CanMessage decides whether a sender may send a direct message to the
// recipient profile.
//
// The rules, per sender role:
//   - admin: any manager, team member, or customer. Never another admin.
//   - manager: only team members whose manager_id is the sender. Other
//     managers' reports are off limits.
//   - team: only customers, and only customers who have previously messaged
//     this team member. The graph is deliberately asymmetric: customers
//     initiate, team members reply.
//   - customer: any team member, no prior contact required.
//
// Self-targeting is not special-cased here; callers that want to forbid it
// must check before calling.
func (e *Engine) CanMessage(ctx context.Context, senderID uuid.UUID, senderRole profile.Role, recipient *profile.Profile) (bool, error) {
	switch senderRole {
	case profile.RoleAdmin:
		switch recipient.Role {
		case profile.RoleManager, profile.RoleTeam, profile.RoleCustomer:
			return true, nil
		case profile.RoleAdmin:
			return false, nil
		default:
			return false, nil
		}

	case profile.RoleManager:
		return recipient.ReportsTo(senderID), nil

	case profile.RoleTeam:
		if recipient.Role != profile.RoleCustomer {
			return false, nil
		}
		hasInbound, err := e.replies.HasMessageBetween(ctx, recipient.ID, senderID)
		if err != nil {
			return false, fmt.Errorf("failed to check reply eligibility: %w", err)
		}
		return hasInbound, nil

	case profile.RoleCustomer:
		return recipient.Role == profile.RoleTeam, nil

	default:
		// Unknown sender role. Deny rather than guess.
		return false, nil
	}
}

// BroadcastRoles returns the recipient role set for a broadcast send.
// Only admins may broadcast; the set is every role except admin, so an
// admin profile never receives a broadcast.
func BroadcastRoles(senderRole profile.Role) ([]profile.Role, bool) {
	if senderRole != profile.RoleAdmin {
		return nil, false
	}
	return []profile.Role{profile.RoleManager, profile.RoleTeam, profile.RoleCustomer}, true
}
