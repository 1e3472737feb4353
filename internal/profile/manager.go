package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Domain errors
var (
	ErrNotFound       = errors.New("profile not found")
	ErrInvalidRole    = errors.New("invalid role")
	ErrManagerUnknown = errors.New("manager_id does not reference a manager profile")
)

// Manager handles business logic for the profile directory.
type Manager struct {
	ds *Datastore
}

// NewManager creates a new profile manager.
func NewManager(ds *Datastore) *Manager {
	return &Manager{ds: ds}
}

// GetByID retrieves a profile by ID.
func (m *Manager) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	p, err := m.ds.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return p, nil
}

// Create inserts a profile row after checking the directory invariants:
// the role must be known, manager_id is set iff the role is team, and a
// set manager_id must reference an existing manager profile.
func (m *Manager) Create(ctx context.Context, p *Profile) error {
	if !p.Role.Valid() {
		return ErrInvalidRole
	}

	switch p.Role {
	case RoleTeam:
		if p.ManagerID == nil {
			return fmt.Errorf("%w: team profile requires manager_id", ErrManagerUnknown)
		}
		ok, err := m.ds.ExistsWithRole(ctx, *p.ManagerID, RoleManager)
		if err != nil {
			return fmt.Errorf("failed to check manager: %w", err)
		}
		if !ok {
			return ErrManagerUnknown
		}
	case RoleAdmin, RoleManager, RoleCustomer:
		if p.ManagerID != nil {
			return fmt.Errorf("%w: manager_id only valid for team profiles", ErrInvalidRole)
		}
	default:
		return ErrInvalidRole
	}

	if err := m.ds.Insert(ctx, p); err != nil {
		return fmt.Errorf("failed to insert profile: %w", err)
	}
	return nil
}

// Delete removes a profile.
func (m *Manager) Delete(ctx context.Context, id uuid.UUID) error {
	rowsAffected, err := m.ds.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsWithRole reports whether a profile with the given ID and role exists.
func (m *Manager) ExistsWithRole(ctx context.Context, id uuid.UUID, role Role) (bool, error) {
	return m.ds.ExistsWithRole(ctx, id, role)
}

// ListByRoles retrieves all profiles carrying one of the given roles.
func (m *Manager) ListByRoles(ctx context.Context, roles ...Role) ([]*Profile, error) {
	return m.ds.ListByRoles(ctx, roles...)
}

// ListTeamOf retrieves a manager's direct reports.
func (m *Manager) ListTeamOf(ctx context.Context, managerID uuid.UUID) ([]*Profile, error) {
	return m.ds.ListTeamOf(ctx, managerID)
}

// ListCustomersWhoMessaged retrieves the customers a team member may reply to.
func (m *Manager) ListCustomersWhoMessaged(ctx context.Context, teamID uuid.UUID) ([]*Profile, error) {
	return m.ds.ListCustomersWhoMessaged(ctx, teamID)
}
