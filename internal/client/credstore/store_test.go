package credstore

import (
	"context"
	"testing"

	"github.com/nutrilog/nutrilog/internal/client/models"
	"github.com/stretchr/testify/require"
)

func newTestStore() *Store {
	return NewStore(NewInMemoryRepository())
}

func TestStore_TokensRoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.SaveTokens(ctx, models.Credentials{Access: "a1", Refresh: "r1"}))

	access, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "a1", access)

	refresh, err := s.RefreshToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "r1", refresh)
}

func TestStore_EmptyReadsAreNotErrors(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	access, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, access)

	refresh, err := s.RefreshToken(ctx)
	require.NoError(t, err)
	require.Empty(t, refresh)

	user, err := s.User(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestStore_UserRoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	h := 182.5
	in := &models.Profile{ID: 7, Username: "alice", Email: "alice@example.com", Height: &h}
	require.NoError(t, s.SaveUser(ctx, in))

	out, err := s.User(ctx)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestStore_CorruptedUserReadsAsAbsent(t *testing.T) {
	repo := NewInMemoryRepository()
	s := NewStore(repo)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, keyUserData, []byte("{not json")))

	user, err := s.User(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}

func TestStore_ClearRemovesEverything(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	require.NoError(t, s.SaveTokens(ctx, models.Credentials{Access: "a", Refresh: "r"}))
	require.NoError(t, s.SaveUser(ctx, &models.Profile{ID: 1, Username: "bob"}))

	require.NoError(t, s.Clear(ctx))

	access, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, access)
	refresh, err := s.RefreshToken(ctx)
	require.NoError(t, err)
	require.Empty(t, refresh)
	user, err := s.User(ctx)
	require.NoError(t, err)
	require.Nil(t, user)
}
