package provision

import (
	"context"
	"errors"
	"testing"

	"supportdesk/internal/auth"
	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

// fakeIdentity implements IdentityService for testing.
type fakeIdentity struct {
	createErr error
	deleteErr error

	created []uuid.UUID
	deleted []uuid.UUID
}

func (f *fakeIdentity) CreateUser(ctx context.Context, email, password, name string, role profile.Role) (uuid.UUID, error) {
	if f.createErr != nil {
		return uuid.Nil, f.createErr
	}
	id := uuid.New()
	f.created = append(f.created, id)
	return id, nil
}

func (f *fakeIdentity) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

// fakeProfiles implements ProfileStore for testing.
type fakeProfiles struct {
	createErr error
	managers  map[uuid.UUID]bool
	existsErr error

	created []*profile.Profile
}

func (f *fakeProfiles) Create(ctx context.Context, p *profile.Profile) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakeProfiles) ExistsWithRole(ctx context.Context, id uuid.UUID, role profile.Role) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return role == profile.RoleManager && f.managers[id], nil
}

func adminActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Email: "admin@example.com", Role: profile.RoleAdmin}
}

func managerActor() auth.Actor {
	return auth.Actor{ID: uuid.New(), Email: "manager@example.com", Role: profile.RoleManager}
}

func validRequest(role profile.Role) Request {
	return Request{
		Name:     "Jordan Doe",
		Email:    "jordan@example.com",
		Password: "hunter22",
		Role:     role,
	}
}

func TestProvision_AdminCreatesManager(t *testing.T) {
	identity := &fakeIdentity{}
	profiles := &fakeProfiles{}
	p := NewProvisioner(identity, profiles)
	actor := adminActor()

	prof, err := p.Provision(context.Background(), actor, validRequest(profile.RoleManager))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prof.Role != profile.RoleManager {
		t.Errorf("expected manager role, got %s", prof.Role)
	}
	if prof.ManagerID != nil {
		t.Error("managers must not carry a manager_id")
	}
	if prof.CreatedBy != actor.ID {
		t.Errorf("expected created_by %s, got %s", actor.ID, prof.CreatedBy)
	}
	if len(identity.created) != 1 || prof.ID != identity.created[0] {
		t.Error("profile ID must match the identity the auth service assigned")
	}
}

func TestProvision_ManagerCreatesTeamMember(t *testing.T) {
	identity := &fakeIdentity{}
	profiles := &fakeProfiles{}
	p := NewProvisioner(identity, profiles)
	actor := managerActor()

	prof, err := p.Provision(context.Background(), actor, validRequest(profile.RoleTeam))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prof.ManagerID == nil || *prof.ManagerID != actor.ID {
		t.Error("team member must be assigned to the provisioning manager")
	}
	if prof.CreatedBy != actor.ID {
		t.Errorf("expected created_by %s, got %s", actor.ID, prof.CreatedBy)
	}
}

func TestProvision_ManagerMayNotReassign(t *testing.T) {
	p := NewProvisioner(&fakeIdentity{}, &fakeProfiles{})
	other := uuid.New()

	req := validRequest(profile.RoleTeam)
	req.ManagerID = &other

	_, err := p.Provision(context.Background(), managerActor(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestProvision_AdminCreatesTeamMember(t *testing.T) {
	managerID := uuid.New()
	profiles := &fakeProfiles{managers: map[uuid.UUID]bool{managerID: true}}
	p := NewProvisioner(&fakeIdentity{}, profiles)

	req := validRequest(profile.RoleTeam)
	req.ManagerID = &managerID

	prof, err := p.Provision(context.Background(), adminActor(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prof.ManagerID == nil || *prof.ManagerID != managerID {
		t.Error("team member must be assigned to the named manager")
	}
}

func TestProvision_AdminTeamMemberNeedsManagerID(t *testing.T) {
	p := NewProvisioner(&fakeIdentity{}, &fakeProfiles{})

	_, err := p.Provision(context.Background(), adminActor(), validRequest(profile.RoleTeam))
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestProvision_AdminTeamMemberManagerMustExist(t *testing.T) {
	profiles := &fakeProfiles{managers: map[uuid.UUID]bool{}}
	p := NewProvisioner(&fakeIdentity{}, profiles)
	unknown := uuid.New()

	req := validRequest(profile.RoleTeam)
	req.ManagerID = &unknown

	_, err := p.Provision(context.Background(), adminActor(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestProvision_RoleGate(t *testing.T) {
	tests := []struct {
		name  string
		actor auth.Actor
		role  profile.Role
	}{
		{"manager cannot create manager", managerActor(), profile.RoleManager},
		{"team cannot create team", auth.Actor{ID: uuid.New(), Role: profile.RoleTeam}, profile.RoleTeam},
		{"customer cannot create team", auth.Actor{ID: uuid.New(), Role: profile.RoleCustomer}, profile.RoleTeam},
		{"admin cannot provision admin", adminActor(), profile.RoleAdmin},
		{"admin cannot provision customer", adminActor(), profile.RoleCustomer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			identity := &fakeIdentity{}
			p := NewProvisioner(identity, &fakeProfiles{})

			_, err := p.Provision(context.Background(), tt.actor, validRequest(tt.role))
			if !errors.Is(err, ErrPermissionDenied) {
				t.Fatalf("expected ErrPermissionDenied, got %v", err)
			}
			if len(identity.created) != 0 {
				t.Error("no identity may be created for a denied request")
			}
		})
	}
}

func TestProvision_InvalidInput(t *testing.T) {
	p := NewProvisioner(&fakeIdentity{}, &fakeProfiles{})

	req := validRequest(profile.RoleManager)
	req.Password = "short"

	_, err := p.Provision(context.Background(), adminActor(), req)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestProvision_IdentityFailure(t *testing.T) {
	cause := errors.New("email already registered")
	identity := &fakeIdentity{createErr: cause}
	profiles := &fakeProfiles{}
	p := NewProvisioner(identity, profiles)

	_, err := p.Provision(context.Background(), adminActor(), validRequest(profile.RoleManager))
	var ierr *IdentityError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected IdentityError, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Error("expected the auth service error to be wrapped")
	}
	if len(profiles.created) != 0 {
		t.Error("no profile may be written when the identity create fails")
	}
}

func TestProvision_ProfileFailureCompensates(t *testing.T) {
	identity := &fakeIdentity{}
	profiles := &fakeProfiles{createErr: errors.New("duplicate key")}
	p := NewProvisioner(identity, profiles)

	_, err := p.Provision(context.Background(), adminActor(), validRequest(profile.RoleManager))
	var perr *ProfileError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProfileError, got %v", err)
	}
	if perr.CompensationErr != nil {
		t.Errorf("compensation succeeded, got %v", perr.CompensationErr)
	}
	if len(identity.created) != 1 || len(identity.deleted) != 1 {
		t.Fatalf("expected exactly one create and one delete, got %d/%d", len(identity.created), len(identity.deleted))
	}
	if identity.deleted[0] != identity.created[0] {
		t.Error("compensation must delete the identity that was just created")
	}
}

func TestProvision_CompensationFailureIsReported(t *testing.T) {
	compCause := errors.New("auth service unavailable")
	identity := &fakeIdentity{deleteErr: compCause}
	profiles := &fakeProfiles{createErr: errors.New("duplicate key")}
	p := NewProvisioner(identity, profiles)

	_, err := p.Provision(context.Background(), adminActor(), validRequest(profile.RoleManager))
	var perr *ProfileError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ProfileError, got %v", err)
	}
	if !errors.Is(perr.CompensationErr, compCause) {
		t.Errorf("expected compensation error to be carried, got %v", perr.CompensationErr)
	}
}

func TestSignUpCustomer(t *testing.T) {
	identity := &fakeIdentity{}
	profiles := &fakeProfiles{}
	p := NewProvisioner(identity, profiles)

	prof, err := p.SignUpCustomer(context.Background(), SignUpRequest{
		Name:     "Casey Lee",
		Email:    "casey@example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if prof.Role != profile.RoleCustomer {
		t.Errorf("expected customer role, got %s", prof.Role)
	}
	if prof.CreatedBy != prof.ID {
		t.Error("self-serve accounts are their own creator")
	}
}

func TestSignUpCustomer_InvalidEmail(t *testing.T) {
	p := NewProvisioner(&fakeIdentity{}, &fakeProfiles{})

	_, err := p.SignUpCustomer(context.Background(), SignUpRequest{
		Name:     "Casey Lee",
		Email:    "not-an-email",
		Password: "hunter22",
	})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}
