package profile

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the directory record for an account. The ID is the same
// identifier the hosted identity provider assigned at signup, so profile
// rows and auth identities are always keyed alike.
type Profile struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      Role       `json:"role"`
	ManagerID *uuid.UUID `json:"manager_id,omitempty"`
	CreatedBy uuid.UUID  `json:"created_by"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ReportsTo reports whether the profile is a team member assigned to the
// given manager. ManagerID is only ever set on team profiles.
func (p *Profile) ReportsTo(managerID uuid.UUID) bool {
	return p.Role == RoleTeam && p.ManagerID != nil && *p.ManagerID == managerID
}
