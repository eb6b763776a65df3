package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medsched/medsched/pkg/client"
	"github.com/medsched/medsched/pkg/domain"
)

// fakeBackend is a minimal /auth surface the manager can be pointed at.
// Behavior is adjusted per test through the exported fields.
type fakeBackend struct {
	mu sync.Mutex

	loginStatus   int
	meStatus      int
	rotate        bool
	accessSeq     int
	refreshSeen   []string
	logoutCalled  bool
	logoutRefresh string
}

func (b *fakeBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.loginStatus != 0 {
			w.WriteHeader(b.loginStatus)
			_, _ = w.Write([]byte(`{"detail":"Credenciales inválidas"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access": "access-1", "refresh": "refresh-1"})
	})
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		var body struct {
			Refresh string `json:"refresh"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.refreshSeen = append(b.refreshSeen, body.Refresh)
		b.accessSeq++
		resp := map[string]string{"access": "access-r" + strconv.Itoa(b.accessSeq)}
		if b.rotate {
			resp["refresh"] = "refresh-r" + strconv.Itoa(b.accessSeq)
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Refresh string `json:"refresh"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		b.mu.Lock()
		b.logoutCalled = true
		b.logoutRefresh = body.Refresh
		b.mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"boom"}`))
	})
	mux.HandleFunc("/auth/me", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.meStatus != 0 {
			w.WriteHeader(b.meStatus)
			_, _ = w.Write([]byte(`{"detail":"No autenticado"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 1, "email": "admin@hospital.com", "role": "ADMIN",
			"first_name": "Admin", "last_name": "General", "is_active": true,
		})
	})
	return mux
}

func newTestManager(t *testing.T, backend *fakeBackend) (*Manager, *TokenStore) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	tokens := NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	api := client.New(srv.URL, tokens)
	return NewManager(api, tokens), tokens
}

func TestManagerLoginResolvesIdentity(t *testing.T) {
	backend := &fakeBackend{}
	m, tokens := newTestManager(t, backend)

	require.NoError(t, m.Login(context.Background(), "admin@hospital.com", "admin123"))

	state := m.Snapshot()
	require.NotNil(t, state.User)
	assert.Equal(t, "Admin General", state.User.Name)
	assert.Equal(t, domain.RoleAdmin, state.User.Role)
	assert.True(t, state.Initialized)
	assert.True(t, state.Authenticated())

	access, refresh := tokens.ReadPersisted()
	assert.Equal(t, "access-1", access)
	assert.Equal(t, "refresh-1", refresh)
}

func TestManagerLoginInvalidCredentials(t *testing.T) {
	backend := &fakeBackend{loginStatus: http.StatusUnauthorized}
	m, tokens := newTestManager(t, backend)

	err := m.Login(context.Background(), "admin@hospital.com", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "Credenciales inválidas")
	assert.Nil(t, m.User())

	access, refresh := tokens.ReadPersisted()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestManagerLoginWithoutProfile(t *testing.T) {
	backend := &fakeBackend{meStatus: http.StatusInternalServerError}
	m, _ := newTestManager(t, backend)

	err := m.Login(context.Background(), "admin@hospital.com", "admin123")
	require.ErrorIs(t, err, ErrNoProfile)
	assert.Nil(t, m.User())
}

func TestManagerLogoutNeverFails(t *testing.T) {
	backend := &fakeBackend{}
	m, tokens := newTestManager(t, backend)
	require.NoError(t, m.Login(context.Background(), "admin@hospital.com", "admin123"))

	// The backend rejects the logout call; locally it still succeeds.
	m.Logout(context.Background())

	backend.mu.Lock()
	called := backend.logoutCalled
	sentRefresh := backend.logoutRefresh
	backend.mu.Unlock()
	assert.True(t, called)
	assert.Equal(t, "refresh-1", sentRefresh, "logout should hand the server its refresh token")

	state := m.Snapshot()
	assert.Nil(t, state.User)
	assert.True(t, state.Initialized)
	access, refresh := tokens.ReadPersisted()
	assert.Empty(t, access)
	assert.Empty(t, refresh)
}

func TestManagerRefreshWithoutStoredToken(t *testing.T) {
	backend := &fakeBackend{}
	m, _ := newTestManager(t, backend)

	token, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Empty(t, backend.refreshSeen)
}

func TestManagerRefreshKeepsTokenWhenNotRotated(t *testing.T) {
	backend := &fakeBackend{}
	m, tokens := newTestManager(t, backend)
	require.NoError(t, m.Login(context.Background(), "admin@hospital.com", "admin123"))

	token, err := m.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "access-r1", token)
	assert.Equal(t, "access-r1", tokens.AccessToken())

	// Without rotation the original refresh token stays in use.
	_, err = m.Refresh(context.Background())
	require.NoError(t, err)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, []string{"refresh-1", "refresh-1"}, backend.refreshSeen)
}

func TestManagerRefreshAdoptsRotatedToken(t *testing.T) {
	backend := &fakeBackend{rotate: true}
	m, tokens := newTestManager(t, backend)
	require.NoError(t, m.Login(context.Background(), "admin@hospital.com", "admin123"))

	_, err := m.Refresh(context.Background())
	require.NoError(t, err)
	_, err = m.Refresh(context.Background())
	require.NoError(t, err)

	backend.mu.Lock()
	seen := append([]string(nil), backend.refreshSeen...)
	backend.mu.Unlock()
	assert.Equal(t, []string{"refresh-1", "refresh-r1"}, seen)

	_, refresh := tokens.ReadPersisted()
	assert.Equal(t, "refresh-r2", refresh)
}

func TestManagerMeFailureInitializesUnauthenticated(t *testing.T) {
	backend := &fakeBackend{meStatus: http.StatusUnauthorized}
	m, _ := newTestManager(t, backend)

	user := m.Me(context.Background())
	assert.Nil(t, user)
	state := m.Snapshot()
	assert.True(t, state.Initialized)
	assert.False(t, state.Authenticated())
}

func TestManagerRestoresPersistedSession(t *testing.T) {
	backend := &fakeBackend{}
	srv := httptest.NewServer(backend.handler())
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, NewTokenStore(path).Persist("old-access", "old-refresh"))

	tokens := NewTokenStore(path)
	api := client.New(srv.URL, tokens)
	m := NewManager(api, tokens)

	assert.Equal(t, "old-access", tokens.AccessToken())

	_, err := m.Refresh(context.Background())
	require.NoError(t, err)
	backend.mu.Lock()
	defer backend.mu.Unlock()
	assert.Equal(t, []string{"old-refresh"}, backend.refreshSeen)
}
