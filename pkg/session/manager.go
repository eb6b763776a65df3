package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/medsched/medsched/pkg/client"
	"github.com/medsched/medsched/pkg/domain"
)

// ErrNoProfile is returned by Login when the credentials are accepted
// but the identity cannot be loaded afterwards.
var ErrNoProfile = errors.New("could not load the user profile")

// State is a point-in-time copy of the session for readers.
type State struct {
	User        *domain.Identity
	Loading     bool
	Initialized bool
}

// Authenticated reports whether an identity is currently resolved.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Manager is the process-wide session controller. It owns the mutation
// of all authentication state: handlers and UI code only ever read it
// through Snapshot.
type Manager struct {
	api    *client.Client
	tokens *TokenStore
	logger *slog.Logger

	mu           sync.RWMutex
	user         *domain.Identity
	refreshToken string
	loading      bool
	initialized  bool
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) { m.logger = logger }
}

// NewManager restores any persisted session from the token store and
// registers the manager's refresh operation as the client's 401
// callback.
func NewManager(api *client.Client, tokens *TokenStore, opts ...ManagerOption) *Manager {
	m := &Manager{
		api:    api,
		tokens: tokens,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}

	access, refresh := tokens.ReadPersisted()
	tokens.SetAccessToken(access)
	m.refreshToken = refresh

	api.SetRefreshFunc(m.refreshForClient)
	return m
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state := State{Loading: m.loading, Initialized: m.initialized}
	if m.user != nil {
		u := *m.user
		state.User = &u
	}
	return state
}

// User returns the resolved identity, or nil when unauthenticated.
func (m *Manager) User() *domain.Identity {
	return m.Snapshot().User
}

// Login authenticates with the backend, stores the issued tokens, and
// resolves the identity. On any failure the session is cleared and a
// normalized error is returned.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.setLoading(true)
	defer m.setLoading(false)

	pair, err := m.api.Login(ctx, email, password)
	if err != nil {
		m.clearSession()
		return normalizeLoginError(err)
	}

	m.tokens.SetAccessToken(pair.Access)
	if err := m.tokens.Persist(pair.Access, pair.Refresh); err != nil {
		m.logger.Warn("could not persist session tokens", "error", err)
	}
	m.mu.Lock()
	m.refreshToken = pair.Refresh
	m.mu.Unlock()

	if user := m.Me(ctx); user == nil {
		m.clearSession()
		return ErrNoProfile
	}
	return nil
}

// Logout invalidates the session server-side on a best-effort basis and
// always clears local state. It never fails.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.RLock()
	refreshToken := m.refreshToken
	m.mu.RUnlock()

	if err := m.api.Logout(ctx, refreshToken); err != nil {
		m.logger.Debug("server-side logout failed", "error", err)
	}
	m.clearSession()
	m.mu.Lock()
	m.initialized = true
	m.mu.Unlock()
}

// Me resolves the current identity. Any failure leaves the session
// unauthenticated; either way the session counts as initialized from
// here on.
func (m *Manager) Me(ctx context.Context) *domain.Identity {
	user, err := m.api.Me(ctx)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.initialized = true
	if err != nil {
		m.logger.Debug("identity fetch failed", "error", err)
		m.user = nil
		return nil
	}
	m.user = user
	u := *user
	return &u
}

// Refresh exchanges the stored refresh token for a new access token.
// Without a stored refresh token, or on any exchange failure, the
// session is cleared and an empty token is returned.
func (m *Manager) Refresh(ctx context.Context) (string, error) {
	m.mu.RLock()
	refreshToken := m.refreshToken
	m.mu.RUnlock()

	if refreshToken == "" {
		m.clearSession()
		return "", nil
	}

	pair, err := m.api.RefreshToken(ctx, refreshToken)
	if err != nil || pair.Access == "" {
		m.clearSession()
		if err != nil {
			return "", fmt.Errorf("refresh token exchange: %w", err)
		}
		return "", nil
	}

	// The backend may rotate the refresh token; keep the old one when
	// the response omits it.
	newRefresh := pair.Refresh
	if newRefresh == "" {
		newRefresh = refreshToken
	}

	m.tokens.SetAccessToken(pair.Access)
	if err := m.tokens.Persist(pair.Access, newRefresh); err != nil {
		m.logger.Warn("could not persist refreshed tokens", "error", err)
	}
	m.mu.Lock()
	m.refreshToken = newRefresh
	m.mu.Unlock()

	return pair.Access, nil
}

// refreshForClient adapts Refresh to the client callback contract: an
// empty token tells the client to give up and propagate the original
// 401.
func (m *Manager) refreshForClient(ctx context.Context) (string, error) {
	return m.Refresh(ctx)
}

func (m *Manager) clearSession() {
	m.tokens.SetAccessToken("")
	if err := m.tokens.Persist("", ""); err != nil {
		m.logger.Warn("could not clear persisted tokens", "error", err)
	}
	m.mu.Lock()
	m.user = nil
	m.refreshToken = ""
	m.mu.Unlock()
}

func (m *Manager) setLoading(loading bool) {
	m.mu.Lock()
	m.loading = loading
	m.mu.Unlock()
}

func normalizeLoginError(err error) error {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusBadRequest:
			return fmt.Errorf("%w: %s", domain.ErrInvalidCredentials, apiErr.Detail)
		}
	}
	return fmt.Errorf("login failed: %w", err)
}
