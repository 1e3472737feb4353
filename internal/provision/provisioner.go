// Package provision creates accounts: an auth identity plus a profile row,
// as one logical operation. The two stores offer no shared transaction, so
// the workflow compensates by hand — if the profile insert fails, the
// identity is deleted before the error is returned.
package provision

import (
	"context"
	"fmt"

	"supportdesk/internal/auth"
	"supportdesk/internal/observability"
	"supportdesk/internal/profile"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// IdentityService is the capability the auth service provides: create and
// delete identities keyed by the IDs it assigns.
type IdentityService interface {
	CreateUser(ctx context.Context, email, password, name string, role profile.Role) (uuid.UUID, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// ProfileStore is the subset of the profile directory the workflow needs.
type ProfileStore interface {
	Create(ctx context.Context, p *profile.Profile) error
	ExistsWithRole(ctx context.Context, id uuid.UUID, role profile.Role) (bool, error)
}

// Request describes an account to provision on behalf of an actor.
// ManagerID is only meaningful when Role is team, and only an admin may
// set it: managers always assign new team members to themselves.
type Request struct {
	Name      string       `json:"name" validate:"required"`
	Email     string       `json:"email" validate:"required,email"`
	Password  string       `json:"password" validate:"required,min=6"`
	Role      profile.Role `json:"role" validate:"required"`
	ManagerID *uuid.UUID   `json:"manager_id,omitempty"`
}

// SignUpRequest describes a self-serve customer signup. No actor involved.
type SignUpRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// Provisioner runs the two-phase account creation workflow.
type Provisioner struct {
	identity IdentityService
	profiles ProfileStore
	validate *validator.Validate
}

// NewProvisioner creates a new provisioner.
func NewProvisioner(identity IdentityService, profiles ProfileStore) *Provisioner {
	return &Provisioner{
		identity: identity,
		profiles: profiles,
		validate: validator.New(),
	}
}

// Provision creates an account for the requested role.
//
// Role gate: only an admin may provision a manager; admins and managers
// may provision team members. Customers sign themselves up through
// SignUpCustomer, never through here.
//
// Phases: (1) create the auth identity, (2) insert the profile row keyed
// by the identity's ID. If phase 2 fails for any reason the identity is
// deleted before returning, so a failed call never leaves an orphaned
// identity behind.
func (p *Provisioner) Provision(ctx context.Context, actor auth.Actor, req Request) (*profile.Profile, error) {
	if err := p.validate.Struct(req); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	managerID, err := p.authorize(ctx, actor, req)
	if err != nil {
		return nil, err
	}

	return p.createAccount(ctx, accountSpec{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		ManagerID: managerID,
		CreatedBy: actor.ID,
	})
}

// SignUpCustomer creates a customer account with no actor. Same two-phase
// commit and compensation semantics as Provision; created_by is the new
// account itself.
func (p *Provisioner) SignUpCustomer(ctx context.Context, req SignUpRequest) (*profile.Profile, error) {
	if err := p.validate.Struct(req); err != nil {
		return nil, &ValidationError{Reason: err.Error()}
	}

	return p.createAccount(ctx, accountSpec{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     profile.RoleCustomer,
		SelfOwn:  true,
	})
}

// authorize applies the role gate and resolves the new account's manager
// assignment. Exhaustive over the requested role; anything but manager or
// team is rejected outright.
func (p *Provisioner) authorize(ctx context.Context, actor auth.Actor, req Request) (*uuid.UUID, error) {
	switch req.Role {
	case profile.RoleManager:
		if actor.Role != profile.RoleAdmin {
			return nil, ErrPermissionDenied
		}
		if req.ManagerID != nil {
			return nil, &ValidationError{Reason: "manager accounts do not take a manager_id"}
		}
		return nil, nil

	case profile.RoleTeam:
		switch actor.Role {
		case profile.RoleManager:
			// Managers always assign new team members to themselves.
			if req.ManagerID != nil {
				return nil, &ValidationError{Reason: "managers may not assign team members to someone else"}
			}
			id := actor.ID
			return &id, nil
		case profile.RoleAdmin:
			// Admins provision on a manager's behalf and must say which one.
			if req.ManagerID == nil {
				return nil, &ValidationError{Reason: "manager_id is required when an admin provisions a team member"}
			}
			ok, err := p.profiles.ExistsWithRole(ctx, *req.ManagerID, profile.RoleManager)
			if err != nil {
				return nil, fmt.Errorf("failed to check manager: %w", err)
			}
			if !ok {
				return nil, &ValidationError{Reason: "manager_id does not reference a manager"}
			}
			return req.ManagerID, nil
		default:
			return nil, ErrPermissionDenied
		}

	case profile.RoleAdmin, profile.RoleCustomer:
		return nil, ErrPermissionDenied

	default:
		return nil, &ValidationError{Reason: fmt.Sprintf("unknown role %q", req.Role)}
	}
}

type accountSpec struct {
	Name      string
	Email     string
	Password  string
	Role      profile.Role
	ManagerID *uuid.UUID
	CreatedBy uuid.UUID
	SelfOwn   bool // created_by is the new account (self-serve signup)
}

func (p *Provisioner) createAccount(ctx context.Context, spec accountSpec) (*profile.Profile, error) {
	// Phase 1: create the auth identity.
	identityID, err := p.identity.CreateUser(ctx, spec.Email, spec.Password, spec.Name, spec.Role)
	if err != nil {
		return nil, &IdentityError{Err: err}
	}

	createdBy := spec.CreatedBy
	if spec.SelfOwn {
		createdBy = identityID
	}

	// Phase 2: insert the profile row keyed by the identity.
	prof := &profile.Profile{
		ID:        identityID,
		Name:      spec.Name,
		Email:     spec.Email,
		Role:      spec.Role,
		ManagerID: spec.ManagerID,
		CreatedBy: createdBy,
	}
	if err := p.profiles.Create(ctx, prof); err != nil {
		// Compensate: remove the identity so the two stores stay in step.
		compErr := p.identity.DeleteUser(ctx, identityID)
		if compErr != nil {
			observability.LoggerFromContext(ctx).Error("identity compensation failed",
				"identity_id", identityID, "error", compErr)
		}
		return nil, &ProfileError{Err: err, CompensationErr: compErr}
	}

	return prof, nil
}
