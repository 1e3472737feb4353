package profile

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DBTX is the interface for database operations.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Datastore handles database operations for profiles.
type Datastore struct {
	db DBTX
}

// NewDatastore creates a new profile datastore.
func NewDatastore(db DBTX) *Datastore {
	return &Datastore{db: db}
}

const profileColumns = `id, name, email, role, manager_id, created_by, created_at, updated_at`

func scanProfile(row interface{ Scan(...any) error }) (*Profile, error) {
	p := &Profile{}
	err := row.Scan(
		&p.ID, &p.Name, &p.Email, &p.Role, &p.ManagerID,
		&p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Insert creates a profile row. The caller supplies the ID because it must
// match the identity the auth service already created.
func (ds *Datastore) Insert(ctx context.Context, p *Profile) error {
	now := time.Now()

	query := `
		INSERT INTO profiles (id, name, email, role, manager_id, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`

	return ds.db.QueryRowContext(ctx, query,
		p.ID, p.Name, p.Email, p.Role, p.ManagerID, p.CreatedBy, now, now,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

// GetByID retrieves a profile by ID.
func (ds *Datastore) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(ds.db.QueryRowContext(ctx, query, id))
}

// Delete removes a profile row.
func (ds *Datastore) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	query := `DELETE FROM profiles WHERE id = $1`
	result, err := ds.db.ExecContext(ctx, query, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// ExistsWithRole checks that a profile exists and carries the given role.
// Used to validate manager assignments before provisioning a team member.
func (ds *Datastore) ExistsWithRole(ctx context.Context, id uuid.UUID, role Role) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1 AND role = $2)`
	var exists bool
	err := ds.db.QueryRowContext(ctx, query, id, role).Scan(&exists)
	return exists, err
}

// ListByRoles retrieves all profiles whose role is in the given set,
// ordered by creation time so directory listings are stable.
func (ds *Datastore) ListByRoles(ctx context.Context, roles ...Role) ([]*Profile, error) {
	placeholders := make([]string, len(roles))
	args := make([]any, len(roles))
	for i, r := range roles {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = string(r)
	}

	query := `
		SELECT ` + profileColumns + `
		FROM profiles WHERE role IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at`

	rows, err := ds.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListTeamOf retrieves the team members assigned to a manager.
func (ds *Datastore) ListTeamOf(ctx context.Context, managerID uuid.UUID) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles WHERE role = 'team' AND manager_id = $1
		ORDER BY created_at`

	rows, err := ds.db.QueryContext(ctx, query, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

// ListCustomersWhoMessaged retrieves the customers who have at least one
// message on record addressed to the given team member. This is the set a
// team member is allowed to reply to.
func (ds *Datastore) ListCustomersWhoMessaged(ctx context.Context, teamID uuid.UUID) ([]*Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles p
		WHERE p.role = 'customer'
		  AND EXISTS (
			SELECT 1 FROM messages m
			WHERE m.sender_id = p.id AND m.recipient_id = $1
		  )
		ORDER BY p.created_at`

	rows, err := ds.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectProfiles(rows)
}

func collectProfiles(rows *sql.Rows) ([]*Profile, error) {
	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}
