package contact

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

// fakeReplyChecker implements ReplyChecker for testing.
type fakeReplyChecker struct {
	hasMessage bool
	err        error
	calls      int
}

func (f *fakeReplyChecker) HasMessageBetween(ctx context.Context, senderID, recipientID uuid.UUID) (bool, error) {
	f.calls++
	return f.hasMessage, f.err
}

func newRecipient(role profile.Role, managerID *uuid.UUID) *profile.Profile {
	return &profile.Profile{
		ID:        uuid.New(),
		Role:      role,
		ManagerID: managerID,
	}
}

// TestCanMessage_AllRolePairs checks the full sender-role x recipient-role
// grid. For manager->team the recipient reports to the sender, and for
// team->customer the customer has a prior inbound message, so the grid
// captures the maximal allow set; the narrowing conditions are exercised
// separately below.
func TestCanMessage_AllRolePairs(t *testing.T) {
	roles := []profile.Role{profile.RoleAdmin, profile.RoleManager, profile.RoleTeam, profile.RoleCustomer}

	allowed := map[profile.Role]map[profile.Role]bool{
		profile.RoleAdmin:    {profile.RoleManager: true, profile.RoleTeam: true, profile.RoleCustomer: true},
		profile.RoleManager:  {profile.RoleTeam: true},
		profile.RoleTeam:     {profile.RoleCustomer: true},
		profile.RoleCustomer: {profile.RoleTeam: true},
	}

	for _, senderRole := range roles {
		for _, recipientRole := range roles {
			t.Run(fmt.Sprintf("%s_to_%s", senderRole, recipientRole), func(t *testing.T) {
				senderID := uuid.New()

				var managerID *uuid.UUID
				if recipientRole == profile.RoleTeam {
					id := senderID // satisfy the manager condition when relevant
					managerID = &id
				}
				recipient := newRecipient(recipientRole, managerID)

				engine := NewEngine(&fakeReplyChecker{hasMessage: true})
				got, err := engine.CanMessage(context.Background(), senderID, senderRole, recipient)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				want := allowed[senderRole][recipientRole]
				if got != want {
					t.Errorf("%s -> %s: got %v, want %v", senderRole, recipientRole, got, want)
				}
			})
		}
	}
}

func TestCanMessage_UnknownSenderRoleDenied(t *testing.T) {
	engine := NewEngine(&fakeReplyChecker{hasMessage: true})

	for _, recipientRole := range []profile.Role{profile.RoleAdmin, profile.RoleManager, profile.RoleTeam, profile.RoleCustomer} {
		got, err := engine.CanMessage(context.Background(), uuid.New(), profile.Role("superuser"), newRecipient(recipientRole, nil))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got {
			t.Errorf("unknown sender role allowed to message %s", recipientRole)
		}
	}
}

func TestCanMessage_ManagerOnlyOwnReports(t *testing.T) {
	managerID := uuid.New()
	otherManagerID := uuid.New()
	engine := NewEngine(&fakeReplyChecker{})

	own := newRecipient(profile.RoleTeam, &managerID)
	got, err := engine.CanMessage(context.Background(), managerID, profile.RoleManager, own)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("manager denied messaging own report")
	}

	// Same recipient reassigned to a different manager must flip to deny.
	foreign := newRecipient(profile.RoleTeam, &otherManagerID)
	got, err = engine.CanMessage(context.Background(), managerID, profile.RoleManager, foreign)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("manager allowed to message another manager's report")
	}

	// Unassigned team member: deny.
	unassigned := newRecipient(profile.RoleTeam, nil)
	got, err = engine.CanMessage(context.Background(), managerID, profile.RoleManager, unassigned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("manager allowed to message unassigned team member")
	}
}

func TestCanMessage_TeamRequiresInboundMessage(t *testing.T) {
	teamID := uuid.New()
	customer := newRecipient(profile.RoleCustomer, nil)

	// No prior message from the customer: deny.
	checker := &fakeReplyChecker{hasMessage: false}
	engine := NewEngine(checker)
	got, err := engine.CanMessage(context.Background(), teamID, profile.RoleTeam, customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("team member allowed to message customer with no prior contact")
	}
	if checker.calls != 1 {
		t.Errorf("expected 1 reply lookup, got %d", checker.calls)
	}

	// One qualifying message flips the result to allow.
	engine = NewEngine(&fakeReplyChecker{hasMessage: true})
	got, err = engine.CanMessage(context.Background(), teamID, profile.RoleTeam, customer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Error("team member denied replying to customer who messaged first")
	}
}

func TestCanMessage_TeamToNonCustomerSkipsLookup(t *testing.T) {
	checker := &fakeReplyChecker{hasMessage: true}
	engine := NewEngine(checker)

	got, err := engine.CanMessage(context.Background(), uuid.New(), profile.RoleTeam, newRecipient(profile.RoleManager, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Error("team member allowed to message a manager")
	}
	if checker.calls != 0 {
		t.Errorf("reply lookup ran for non-customer recipient (%d calls)", checker.calls)
	}
}

func TestCanMessage_ReplyLookupError(t *testing.T) {
	lookupErr := errors.New("store unavailable")
	engine := NewEngine(&fakeReplyChecker{err: lookupErr})

	got, err := engine.CanMessage(context.Background(), uuid.New(), profile.RoleTeam, newRecipient(profile.RoleCustomer, nil))
	if !errors.Is(err, lookupErr) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if got {
		t.Error("lookup failure must not allow")
	}
}

func TestBroadcastRoles(t *testing.T) {
	roles, ok := BroadcastRoles(profile.RoleAdmin)
	if !ok {
		t.Fatal("admin broadcast denied")
	}
	if len(roles) != 3 {
		t.Fatalf("expected 3 broadcast roles, got %d", len(roles))
	}
	for _, r := range roles {
		if r == profile.RoleAdmin {
			t.Error("admin must never be a broadcast recipient")
		}
	}

	for _, senderRole := range []profile.Role{profile.RoleManager, profile.RoleTeam, profile.RoleCustomer, profile.Role("unknown")} {
		if _, ok := BroadcastRoles(senderRole); ok {
			t.Errorf("%s allowed to broadcast", senderRole)
		}
	}
}
