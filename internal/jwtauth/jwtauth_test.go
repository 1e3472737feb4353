package jwtauth

import (
	"strings"
	"testing"
	"time"

	"supportdesk/internal/profile"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "super-secret-signing-key"

func signToken(t *testing.T, secret string, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func sessionClaims(subject string, role string) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  jwt.ClaimStrings{DefaultAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Email:        "jordan@example.com",
		UserMetadata: UserMetadata{Role: role, Name: "Jordan Doe"},
	}
}

func TestNewVerifier_RequiresSecret(t *testing.T) {
	if _, err := NewVerifier(Config{}); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestVerify(t *testing.T) {
	v, err := NewVerifier(Config{Secret: testSecret})
	if err != nil {
		t.Fatalf("failed to create verifier: %v", err)
	}

	userID := uuid.New()
	token := signToken(t, testSecret, sessionClaims(userID.String(), "team"))

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("failed to parse user ID: %v", err)
	}
	if id != userID {
		t.Errorf("expected user ID %s, got %s", userID, id)
	}

	role, err := claims.Role()
	if err != nil {
		t.Fatalf("failed to parse role: %v", err)
	}
	if role != profile.RoleTeam {
		t.Errorf("expected team role, got %s", role)
	}
	if claims.Email != "jordan@example.com" {
		t.Errorf("unexpected email: %s", claims.Email)
	}
}

func TestVerify_WrongSecret(t *testing.T) {
	v, _ := NewVerifier(Config{Secret: testSecret})

	token := signToken(t, "some-other-secret", sessionClaims(uuid.NewString(), "team"))
	if _, err := v.Verify(token); err == nil {
		t.Error("expected verification to fail for the wrong secret")
	}
}

func TestVerify_WrongAudience(t *testing.T) {
	v, _ := NewVerifier(Config{Secret: testSecret})

	claims := sessionClaims(uuid.NewString(), "team")
	claims.Audience = jwt.ClaimStrings{"anon"}
	token := signToken(t, testSecret, claims)

	_, err := v.Verify(token)
	if err == nil || !strings.Contains(err.Error(), "audience") {
		t.Errorf("expected audience error, got %v", err)
	}
}

func TestVerify_Expired(t *testing.T) {
	v, _ := NewVerifier(Config{Secret: testSecret})

	claims := sessionClaims(uuid.NewString(), "team")
	claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))
	token := signToken(t, testSecret, claims)

	if _, err := v.Verify(token); err == nil {
		t.Error("expected verification to fail for an expired token")
	}
}

func TestVerify_UnsignedRejected(t *testing.T) {
	v, _ := NewVerifier(Config{Secret: testSecret})

	token := jwt.NewWithClaims(jwt.SigningMethodNone, sessionClaims(uuid.NewString(), "team"))
	unsigned, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("failed to build token: %v", err)
	}

	if _, err := v.Verify(unsigned); err == nil {
		t.Error("expected verification to fail for alg none")
	}
}

func TestClaims_UserID_Invalid(t *testing.T) {
	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "not-a-uuid"}}
	if _, err := c.UserID(); err == nil {
		t.Error("expected error for malformed subject")
	}
}

func TestClaims_Role_Unknown(t *testing.T) {
	c := &Claims{UserMetadata: UserMetadata{Role: "superuser"}}
	if _, err := c.Role(); err == nil {
		t.Error("expected error for unknown role")
	}
}
