package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/domain"
)

func newTestSessionService(t *testing.T, config SessionConfig) (*SessionService, *repository.UsersRepository, *repository.SessionsRepository) {
	t.Helper()
	if config.JWTSecret == nil {
		config.JWTSecret = []byte("test-secret")
	}
	if config.Issuer == "" {
		config.Issuer = "medsched"
	}
	users := repository.NewUsersRepository()
	sessions := repository.NewSessionsRepository()
	return NewSessionService(config, sessions, users), users, sessions
}

func createTestUser(t *testing.T, users *repository.UsersRepository) *domain.User {
	t.Helper()
	user, err := users.Create(context.Background(), &domain.User{
		Email:     "ana.ruiz@hospital.com",
		Role:      domain.RoleDoctor,
		FirstName: "Ana",
		LastName:  "Ruiz",
		Active:    true,
	}, "unused")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func TestIssueAndValidateSession(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{})
	user := createTestUser(t, users)

	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected both tokens")
	}
	if !pair.ExpiresAt.After(time.Now()) {
		t.Error("access token already expired")
	}

	claims, err := svc.ValidateAccessToken(pair.AccessToken)
	if err != nil {
		t.Fatalf("ValidateAccessToken: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != user.ID {
		t.Errorf("subject = %d, want %d", id, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("email claim = %q, want %q", claims.Email, user.Email)
	}
	if claims.Role != domain.RoleDoctor {
		t.Errorf("role claim = %q, want DOCTOR", claims.Role)
	}
	if claims.Name != "Ana Ruiz" {
		t.Errorf("name claim = %q, want Ana Ruiz", claims.Name)
	}
	if claims.Issuer != "medsched" {
		t.Errorf("issuer = %q", claims.Issuer)
	}
}

func TestValidateAccessTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestSessionService(t, SessionConfig{})
	for _, token := range []string{"", "not.a.jwt", "a.b.c"} {
		if _, err := svc.ValidateAccessToken(token); !errors.Is(err, domain.ErrInvalidToken) {
			t.Errorf("ValidateAccessToken(%q) = %v, want ErrInvalidToken", token, err)
		}
	}
}

func TestValidateAccessTokenRejectsWrongSecret(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{JWTSecret: []byte("secret-a")})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	other, _, _ := newTestSessionService(t, SessionConfig{JWTSecret: []byte("secret-b")})
	if _, err := other.ValidateAccessToken(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("foreign secret should be rejected, got %v", err)
	}
}

func TestValidateAccessTokenRejectsExpired(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{AccessTokenTTL: -time.Minute})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ValidateAccessToken(pair.AccessToken); !errors.Is(err, domain.ErrInvalidToken) {
		t.Errorf("expired token should be rejected, got %v", err)
	}
}

func TestRefreshSessionWithoutRotation(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.RefreshSession(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Error("expected a new access token")
	}
	if refreshed.RefreshToken != "" {
		t.Errorf("non-rotating refresh returned a refresh token: %q", refreshed.RefreshToken)
	}

	// The original refresh token stays usable.
	if _, err := svc.RefreshSession(context.Background(), pair.RefreshToken); err != nil {
		t.Errorf("second refresh with same token: %v", err)
	}
}

func TestRefreshSessionWithRotation(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{RotateRefreshTokens: true})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	refreshed, err := svc.RefreshSession(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if refreshed.RefreshToken == "" {
		t.Fatal("rotation must return a new refresh token")
	}
	if refreshed.RefreshToken == pair.RefreshToken {
		t.Error("rotated token equals the old one")
	}

	// The old token is revoked by rotation.
	_, err = svc.RefreshSession(context.Background(), pair.RefreshToken)
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("old token after rotation: %v, want ErrSessionNotFound", err)
	}

	// The new one works.
	if _, err := svc.RefreshSession(context.Background(), refreshed.RefreshToken); err != nil {
		t.Errorf("refresh with rotated token: %v", err)
	}
}

func TestRefreshSessionUnknownToken(t *testing.T) {
	svc, _, _ := newTestSessionService(t, SessionConfig{})
	if _, err := svc.RefreshSession(context.Background(), "never-issued"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("unknown token: %v, want ErrSessionNotFound", err)
	}
}

func TestRefreshSessionExpired(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{RefreshTokenTTL: -time.Hour})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RefreshSession(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrSessionExpired) {
		t.Errorf("expired session: %v, want ErrSessionExpired", err)
	}
}

func TestRefreshSessionInactiveUser(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := users.SetActive(context.Background(), user.ID, false); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RefreshSession(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrUserInactive) {
		t.Errorf("inactive user: %v, want ErrUserInactive", err)
	}

	// Refreshing for an inactive user also revokes the session.
	if _, err := users.SetActive(context.Background(), user.ID, true); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.RefreshSession(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("session should be gone after inactive refresh, got %v", err)
	}
}

func TestRevokeSession(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{})
	user := createTestUser(t, users)
	pair, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.RevokeSession(context.Background(), pair.RefreshToken); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if _, err := svc.RefreshSession(context.Background(), pair.RefreshToken); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("revoked token: %v, want ErrSessionNotFound", err)
	}

	// Revoking an unknown token is not an error, logout is idempotent.
	if err := svc.RevokeSession(context.Background(), "never-issued"); err != nil {
		t.Errorf("revoking unknown token: %v", err)
	}
}

func TestRevokeAllSessions(t *testing.T) {
	svc, users, _ := newTestSessionService(t, SessionConfig{})
	user := createTestUser(t, users)

	first, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.IssueSession(context.Background(), user.ID)
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.RevokeAllSessions(context.Background(), user.ID); err != nil {
		t.Fatal(err)
	}
	for _, token := range []string{first.RefreshToken, second.RefreshToken} {
		if _, err := svc.RefreshSession(context.Background(), token); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("token still usable after RevokeAllSessions: %v", err)
		}
	}
}
