package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"supportdesk/internal/auth"
	"supportdesk/internal/identity"
	"supportdesk/internal/middleware"
	"supportdesk/internal/observability"
	"supportdesk/internal/profile"
	"supportdesk/internal/provision"
)

// ProvisionService runs the account creation workflows.
type ProvisionService interface {
	Provision(ctx context.Context, actor auth.Actor, req provision.Request) (*profile.Profile, error)
	SignUpCustomer(ctx context.Context, req provision.SignUpRequest) (*profile.Profile, error)
}

// ProvisionHandler handles account creation endpoints.
type ProvisionHandler struct {
	provisioner ProvisionService
}

// NewProvisionHandler creates a new provision handler.
func NewProvisionHandler(provisioner ProvisionService) *ProvisionHandler {
	return &ProvisionHandler{provisioner: provisioner}
}

type createAccountRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	ManagerID string `json:"manager_id,omitempty"`
}

// CreateManager handles POST /api/v1/managers. Admin only; the role gate
// lives in the workflow, not here.
func (h *ProvisionHandler) CreateManager(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, profile.RoleManager)
}

// CreateTeamMember handles POST /api/v1/team-members. Admins must name the
// manager the new member reports to; managers always get the member
// assigned to themselves.
func (h *ProvisionHandler) CreateTeamMember(w http.ResponseWriter, r *http.Request) {
	h.create(w, r, profile.RoleTeam)
}

func (h *ProvisionHandler) create(w http.ResponseWriter, r *http.Request, role profile.Role) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		auth.WriteUnauthorized(w)
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	provReq := provision.Request{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     role,
	}
	if req.ManagerID != "" {
		id, err := parseUUID(req.ManagerID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid manager_id")
			return
		}
		provReq.ManagerID = &id
	}

	created, err := h.provisioner.Provision(r.Context(), actor, provReq)
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": created})
}

// SignUp handles POST /api/v1/signup, the self-serve customer path.
// No authentication required.
func (h *ProvisionHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req provision.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	created, err := h.provisioner.SignUpCustomer(r.Context(), req)
	if err != nil {
		writeProvisionError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"user": created})
}

// writeProvisionError maps workflow errors onto the HTTP surface. The
// phase distinction matters: identity failures are the auth service's,
// profile failures are ours and arrive with compensation already done.
func writeProvisionError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *provision.ValidationError
	var idErr *provision.IdentityError
	var profErr *provision.ProfileError

	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Reason)
	case errors.Is(err, provision.ErrPermissionDenied):
		auth.WriteForbidden(w)
	case errors.As(err, &idErr):
		if errors.Is(idErr.Err, identity.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "email is already registered")
			return
		}
		if errors.Is(idErr.Err, identity.ErrWeakPassword) {
			writeError(w, http.StatusBadRequest, "password does not meet requirements")
			return
		}
		observability.LoggerFromContext(r.Context()).Error("identity creation failed", "error", err)
		writeError(w, http.StatusBadGateway, "account creation failed")
	case errors.As(err, &profErr):
		observability.LoggerFromContext(r.Context()).Error("profile creation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "account creation failed")
	default:
		observability.LoggerFromContext(r.Context()).Error("provisioning failed", "error", err)
		writeError(w, http.StatusInternalServerError, "account creation failed")
	}
}
