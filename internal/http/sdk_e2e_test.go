package http

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/medsched/medsched/internal/repository"
	"github.com/medsched/medsched/pkg/client"
	"github.com/medsched/medsched/pkg/domain"
	"github.com/medsched/medsched/pkg/session"
)

// The SDK wired against the real router: login resolves an identity, a
// stale access token is refreshed transparently, logout closes the
// session on both sides.
func TestSDKAgainstServer(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	tokens := session.NewTokenStore(filepath.Join(t.TempDir(), "tokens.json"))
	api := client.New(srv.URL, tokens)
	manager := session.NewManager(api, tokens)

	if err := manager.Login(ctx, repository.SeedAdminEmail, repository.SeedAdminPassword); err != nil {
		t.Fatalf("login: %v", err)
	}
	user := manager.User()
	if user == nil || user.Role != domain.RoleAdmin {
		t.Fatalf("identity = %+v", user)
	}

	// Typed calls work through the authenticated client.
	page, err := api.Appointments(ctx, domain.AppointmentFilters{PageSize: 5})
	if err != nil {
		t.Fatalf("appointments: %v", err)
	}
	if page.Meta.Total != 40 || len(page.Items) != 5 {
		t.Errorf("total = %d, items = %d", page.Meta.Total, len(page.Items))
	}

	// A dead access token triggers the refresh path and the request
	// still succeeds.
	tokens.SetAccessToken("expired-garbage")
	me, err := api.Me(ctx)
	if err != nil {
		t.Fatalf("me after stale token: %v", err)
	}
	if me.Email != repository.SeedAdminEmail {
		t.Errorf("me = %+v", me)
	}
	if tokens.AccessToken() == "expired-garbage" {
		t.Error("access token was not replaced by the refresh")
	}

	manager.Logout(ctx)
	if manager.User() != nil {
		t.Error("session should be cleared after logout")
	}
	// The server-side session is gone too, so a later refresh cannot
	// resurrect it.
	if token, err := manager.Refresh(ctx); err == nil && token != "" {
		t.Errorf("refresh after logout yielded a token: %q", token)
	}
}
