package handler

import (
	"context"
	"net/http"

	"supportdesk/internal/auth"
	"supportdesk/internal/middleware"
	"supportdesk/internal/observability"
	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

// DirectoryService reads the profile directory.
type DirectoryService interface {
	ListByRoles(ctx context.Context, roles ...profile.Role) ([]*profile.Profile, error)
	ListTeamOf(ctx context.Context, managerID uuid.UUID) ([]*profile.Profile, error)
	ListCustomersWhoMessaged(ctx context.Context, teamID uuid.UUID) ([]*profile.Profile, error)
}

// DirectoryHandler handles directory endpoints backing the dashboards.
type DirectoryHandler struct {
	directory DirectoryService
}

// NewDirectoryHandler creates a new directory handler.
func NewDirectoryHandler(directory DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Recipients handles GET /api/v1/recipients: the set of users the caller
// is eligible to message, per role. The listing mirrors the contact
// engine's rules so clients only offer sends that would be allowed:
//
//	admin    -> every manager, team member, and customer
//	manager  -> the manager's own reports
//	team     -> customers who have messaged this team member
//	customer -> every team member
func (h *DirectoryHandler) Recipients(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}

	var (
		recipients []*profile.Profile
		err        error
	)

	switch actor.Role {
	case profile.RoleAdmin:
		recipients, err = h.directory.ListByRoles(r.Context(),
			profile.RoleManager, profile.RoleTeam, profile.RoleCustomer)
	case profile.RoleManager:
		recipients, err = h.directory.ListTeamOf(r.Context(), actor.ID)
	case profile.RoleTeam:
		recipients, err = h.directory.ListCustomersWhoMessaged(r.Context(), actor.ID)
	case profile.RoleCustomer:
		recipients, err = h.directory.ListByRoles(r.Context(), profile.RoleTeam)
	default:
		auth.WriteForbidden(w)
		return
	}

	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("failed to list recipients", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list recipients")
		return
	}
	if recipients == nil {
		recipients = []*profile.Profile{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"recipients": recipients})
}

// Team handles GET /api/v1/team: a manager's direct reports, or all team
// members for an admin.
func (h *DirectoryHandler) Team(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}

	var (
		team []*profile.Profile
		err  error
	)

	switch actor.Role {
	case profile.RoleAdmin:
		team, err = h.directory.ListByRoles(r.Context(), profile.RoleTeam)
	case profile.RoleManager:
		team, err = h.directory.ListTeamOf(r.Context(), actor.ID)
	case profile.RoleTeam, profile.RoleCustomer:
		auth.WriteForbidden(w)
		return
	default:
		auth.WriteForbidden(w)
		return
	}

	if err != nil {
		observability.LoggerFromContext(r.Context()).Error("failed to list team", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list team")
		return
	}
	if team == nil {
		team = []*profile.Profile{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"team": team})
}
