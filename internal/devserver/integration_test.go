package devserver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nutrilog/nutrilog/internal/client/api"
	"github.com/nutrilog/nutrilog/internal/client/credstore"
	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/nutrilog/nutrilog/internal/client/services"
	"github.com/nutrilog/nutrilog/internal/client/session"
	"github.com/nutrilog/nutrilog/internal/logging"
)

// newClientStack wires the real client (store, API client, session facade)
// against a dev server instance.
func newClientStack(t *testing.T, baseURL string) (services.AuthService, *credstore.Store, *session.Store) {
	t.Helper()
	log := logging.NewDefault("error")
	creds := credstore.NewStore(credstore.NewInMemoryRepository())
	state := session.NewStore()
	client := api.New(baseURL+"/api", 5*time.Second, creds, log)
	return services.NewAuthService(client, creds, state, log), creds, state
}

func TestClientSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, 5*time.Minute)
	svc, creds, state := newClientStack(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, models.RegisterData{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "secret123",
		Password2: "secret123",
	}))
	require.True(t, state.State().Authenticated)
	require.Equal(t, "alice", state.State().User.Username)

	require.NoError(t, svc.Logout(ctx))
	require.False(t, state.State().Authenticated)

	require.NoError(t, svc.Login(ctx, models.LoginCredentials{Username: "alice", Password: "secret123"}))
	require.True(t, state.State().Authenticated)

	first := "Alice"
	require.NoError(t, svc.UpdateProfile(ctx, models.ProfileUpdate{FirstName: &first}))
	require.Equal(t, "Alice", state.State().User.FirstName)

	cached, err := creds.User(ctx)
	require.NoError(t, err)
	require.Equal(t, "Alice", cached.FirstName)

	require.NoError(t, svc.ChangePassword(ctx, "secret123", "next456"))
	require.NoError(t, svc.Logout(ctx))
	require.NoError(t, svc.Login(ctx, models.LoginCredentials{Username: "alice", Password: "next456"}))

	require.NoError(t, svc.DeleteAccount(ctx, "next456"))
	require.False(t, state.State().Authenticated)

	access, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, access)
}

func TestClientRenewsExpiredSession(t *testing.T) {
	srv := newTestServer(t, time.Second)
	svc, creds, state := newClientStack(t, srv.URL)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, models.RegisterData{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "secret123",
		Password2: "secret123",
	}))
	accessBefore, err := creds.AccessToken(ctx)
	require.NoError(t, err)

	// let the access token lapse, then hit an authenticated endpoint: the
	// client must renew through the refresh token and carry on
	time.Sleep(1500 * time.Millisecond)

	require.NoError(t, svc.RefreshUser(ctx))
	require.True(t, state.State().Authenticated)

	accessAfter, err := creds.AccessToken(ctx)
	require.NoError(t, err)
	require.NotEqual(t, accessBefore, accessAfter)
}

func TestClientColdStartAgainstServer(t *testing.T) {
	srv := newTestServer(t, 5*time.Minute)

	// first process: sign in, leaving credentials behind
	repo := credstore.NewInMemoryRepository()
	log := logging.NewDefault("error")
	creds := credstore.NewStore(repo)
	client := api.New(srv.URL+"/api", 5*time.Second, creds, log)
	svc := services.NewAuthService(client, creds, session.NewStore(), log)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, models.RegisterData{
		Username:  "alice",
		Email:     "alice@example.com",
		Password1: "secret123",
		Password2: "secret123",
	}))

	// second process: same repository, fresh in-memory state
	creds2 := credstore.NewStore(repo)
	state2 := session.NewStore()
	client2 := api.New(srv.URL+"/api", 5*time.Second, creds2, log)
	svc2 := services.NewAuthService(client2, creds2, state2, log)

	require.NoError(t, svc2.InitializeFromStorage(ctx))
	require.True(t, state2.State().Authenticated)
	require.Equal(t, "alice", state2.State().User.Username)
	require.False(t, state2.State().Loading)
}
