// Package jwtauth verifies session tokens issued by the hosted auth
// service. Tokens are HS256-signed with the project's JWT secret and carry
// the account's role in user metadata.
package jwtauth

import (
	"errors"
	"fmt"

	"supportdesk/internal/profile"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultAudience is the audience the auth service stamps on session
// tokens for signed-in users.
const DefaultAudience = "authenticated"

// UserMetadata mirrors the metadata block the auth service embeds in
// session tokens. The role is stamped at identity creation and never
// changes afterwards.
type UserMetadata struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// Claims represents the session JWT claims.
type Claims struct {
	jwt.RegisteredClaims
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata,omitempty"`
}

// UserID parses the token subject as the account's UUID.
func (c *Claims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject: %w", err)
	}
	return id, nil
}

// Role parses the role claim from user metadata.
func (c *Claims) Role() (profile.Role, error) {
	return profile.ParseRole(c.UserMetadata.Role)
}

// Config holds JWT verification configuration.
type Config struct {
	Secret   string // shared signing secret from the auth service project
	Audience string // defaults to DefaultAudience
}

// Verifier handles session token verification.
type Verifier struct {
	secret   []byte
	audience string
}

// NewVerifier creates a new session token verifier.
func NewVerifier(cfg Config) (*Verifier, error) {
	if cfg.Secret == "" {
		return nil, errors.New("secret is required")
	}

	audience := cfg.Audience
	if audience == "" {
		audience = DefaultAudience
	}

	return &Verifier{
		secret:   []byte(cfg.Secret),
		audience: audience,
	}, nil
}

// Verify verifies a session token and returns its claims.
func (v *Verifier) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if !v.verifyAudience(claims) {
		return nil, errors.New("invalid audience")
	}

	return claims, nil
}

func (v *Verifier) verifyAudience(claims *Claims) bool {
	for _, aud := range claims.Audience {
		if aud == v.audience {
			return true
		}
	}
	return false
}
