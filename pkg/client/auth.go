package client

import (
	"context"
	"net/http"

	"github.com/medsched/medsched/pkg/domain"
)

// TokenPair is the /auth/login and /auth/refresh response. Refresh is
// empty when the backend does not rotate the refresh token.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

// wireUser is the /auth/me payload.
type wireUser struct {
	ID        int64       `json:"id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	IsActive  bool        `json:"is_active"`
}

func (u wireUser) identity() *domain.Identity {
	return &domain.Identity{
		ID:     u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Name:   domain.DisplayName(u.FirstName, u.LastName, u.Email),
		Active: u.IsActive,
	}
}

// Login exchanges credentials for a token pair. A 401 here must reach
// the caller as-is, so the request bypasses the refresh path.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, loginRequest{Email: email, Password: password}, &pair, false)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// RefreshToken exchanges a refresh token for a new token pair. It is
// the transport behind the session manager's refresh callback and must
// never re-enter the refresh path itself.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, refreshRequest{Refresh: refreshToken}, &pair, false)
	if err != nil {
		return nil, err
	}
	return &pair, nil
}

// Logout invalidates the session holding refreshToken server-side.
// Callers treat failures as best-effort.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	var body any
	if refreshToken != "" {
		body = refreshRequest{Refresh: refreshToken}
	}
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, body, nil, false)
}

// Me fetches the authenticated identity.
func (c *Client) Me(ctx context.Context) (*domain.Identity, error) {
	var user wireUser
	if err := c.get(ctx, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return user.identity(), nil
}
