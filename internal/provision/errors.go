package provision

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied means the actor's role may not provision the
// requested role.
var ErrPermissionDenied = errors.New("not allowed to provision this role")

// ValidationError reports missing or malformed provisioning input. It is
// distinct from ErrPermissionDenied so callers can render different
// feedback.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid provisioning request: " + e.Reason
}

// IdentityError means phase 1 failed: the auth service rejected the
// identity create. Nothing was persisted, so there is nothing to undo.
type IdentityError struct {
	Err error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("identity creation failed: %v", e.Err)
}

func (e *IdentityError) Unwrap() error {
	return e.Err
}

// ProfileError means phase 2 failed: the identity was created but the
// profile insert did not land. Compensation (deleting the identity) has
// already been attempted by the time this error is returned;
// CompensationErr records whether that attempt itself failed.
type ProfileError struct {
	Err             error
	CompensationErr error
}

func (e *ProfileError) Error() string {
	if e.CompensationErr != nil {
		return fmt.Sprintf("profile creation failed: %v (identity cleanup also failed: %v)", e.Err, e.CompensationErr)
	}
	return fmt.Sprintf("profile creation failed: %v", e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}
