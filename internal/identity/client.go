// Package identity talks to the hosted auth service's admin API. The
// service owns credentials and sessions; this backend only creates,
// deletes, and looks up identities with the service-role key.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"supportdesk/internal/profile"

	"github.com/google/uuid"
)

const defaultTimeout = 10 * time.Second

// Client errors
var (
	ErrEmailTaken   = errors.New("email is already registered")
	ErrWeakPassword = errors.New("password does not meet requirements")
	ErrUserNotFound = errors.New("auth user not found")
)

// AuthUser is the subset of the auth service's user record we care about.
type AuthUser struct {
	ID           uuid.UUID    `json:"id"`
	Email        string       `json:"email"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

// UserMetadata carries the role stamped onto the identity at creation.
// It flows back to us inside session JWTs.
type UserMetadata struct {
	Role string `json:"role,omitempty"`
	Name string `json:"name,omitempty"`
}

// Client is an HTTP client for the auth service admin endpoints.
type Client struct {
	baseURL    string
	serviceKey string
	client     *http.Client
}

// NewClient creates a client for the auth service at baseURL, authenticated
// with the service-role key.
func NewClient(baseURL, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		serviceKey: serviceKey,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

type createUserRequest struct {
	Email        string       `json:"email"`
	Password     string       `json:"password"`
	EmailConfirm bool         `json:"email_confirm"`
	UserMetadata UserMetadata `json:"user_metadata"`
}

type apiErrorResponse struct {
	Msg       string `json:"msg"`
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

func (e *apiErrorResponse) text() string {
	if e.Msg != "" {
		return e.Msg
	}
	return e.Message
}

// CreateUser provisions an identity with a confirmed email and the role in
// its user metadata. Returns the identity's ID on success.
//
// Duplicate emails map to ErrEmailTaken and rejected passwords to
// ErrWeakPassword so callers can surface precise feedback; anything else
// comes back wrapped with the upstream message.
func (c *Client) CreateUser(ctx context.Context, email, password, name string, role profile.Role) (uuid.UUID, error) {
	body, err := json.Marshal(createUserRequest{
		Email:        email,
		Password:     password,
		EmailConfirm: true,
		UserMetadata: UserMetadata{Role: string(role), Name: name},
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode create request: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/auth/v1/admin/users", bytes.NewReader(body))
	if err != nil {
		return uuid.Nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create user request failed: %w", err)
	}
	defer closeBody(resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return uuid.Nil, c.mapCreateError(resp)
	}

	var user AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return uuid.Nil, fmt.Errorf("failed to decode create response: %w", err)
	}
	if user.ID == uuid.Nil {
		return uuid.Nil, errors.New("auth service returned no user id")
	}
	return user.ID, nil
}

// DeleteUser removes an identity. Used as compensation when profile
// creation fails after the identity was already created.
func (c *Client) DeleteUser(ctx context.Context, id uuid.UUID) error {
	req, err := c.newRequest(ctx, http.MethodDelete, "/auth/v1/admin/users/"+id.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("delete user request failed: %w", err)
	}
	defer closeBody(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusNoContent:
		return nil
	case http.StatusNotFound:
		return ErrUserNotFound
	default:
		return fmt.Errorf("delete user failed: %s", c.readError(resp))
	}
}

// GetUser looks up an identity by ID. Returns ErrUserNotFound if the auth
// service has no record of it.
func (c *Client) GetUser(ctx context.Context, id uuid.UUID) (*AuthUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/auth/v1/admin/users/"+id.String(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get user request failed: %w", err)
	}
	defer closeBody(resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		var user AuthUser
		if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
			return nil, fmt.Errorf("failed to decode user response: %w", err)
		}
		return &user, nil
	case http.StatusNotFound:
		return nil, ErrUserNotFound
	default:
		return nil, fmt.Errorf("get user failed: %s", c.readError(resp))
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("apikey", c.serviceKey)
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	return req, nil
}

func (c *Client) mapCreateError(resp *http.Response) error {
	apiErr := c.readError(resp)
	lower := strings.ToLower(apiErr)

	switch {
	case strings.Contains(lower, "registered") || strings.Contains(lower, "already exists"):
		return fmt.Errorf("%w: %s", ErrEmailTaken, apiErr)
	case strings.Contains(lower, "password"):
		return fmt.Errorf("%w: %s", ErrWeakPassword, apiErr)
	default:
		return fmt.Errorf("create user failed (status %d): %s", resp.StatusCode, apiErr)
	}
}

func (c *Client) readError(resp *http.Response) string {
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(raw) == 0 {
		return resp.Status
	}

	var apiErr apiErrorResponse
	if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.text() != "" {
		return apiErr.text()
	}
	return string(raw)
}

func closeBody(body io.Closer) {
	_ = body.Close()
}
