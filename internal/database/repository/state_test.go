package repository_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jask/spotifydaily/internal/database"
	"github.com/jask/spotifydaily/internal/database/repository"
)

func openTestDB(t *testing.T) *repository.StateRepo {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	db, err := database.Open(ctx, filepath.Join(t.TempDir(), "nested", "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repository.NewStateRepo(db)
}

type rangeState struct {
	TimeRange string `json:"artistsTimeRange"`
}

func TestStateRepoRoundTrip(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestDB(t)

	var got rangeState
	ok, err := repo.Get(ctx, "topArtistsCollectionState", &got)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, repo.Put(ctx, "topArtistsCollectionState", rangeState{TimeRange: "short_term"}))
	require.NoError(t, repo.Put(ctx, "topArtistsCollectionState", rangeState{TimeRange: "long_term"}))

	ok, err = repo.Get(ctx, "topArtistsCollectionState", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "long_term", got.TimeRange)

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.JSONEq(t, `{"artistsTimeRange":"long_term"}`, string(entries[0].Value))
	require.False(t, entries[0].UpdatedAt.IsZero())

	require.NoError(t, repo.Delete(ctx, "topArtistsCollectionState"))
	require.NoError(t, repo.Delete(ctx, "topArtistsCollectionState"))
	ok, err = repo.Get(ctx, "topArtistsCollectionState", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStateRepoPutIfAbsent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestDB(t)

	wrote, err := repo.PutIfAbsent(ctx, "k", rangeState{TimeRange: "medium_term"})
	require.NoError(t, err)
	require.True(t, wrote)

	wrote, err = repo.PutIfAbsent(ctx, "k", rangeState{TimeRange: "short_term"})
	require.NoError(t, err)
	require.False(t, wrote)

	var got rangeState
	_, err = repo.Get(ctx, "k", &got)
	require.NoError(t, err)
	require.Equal(t, "medium_term", got.TimeRange)
}

func TestStateRepoCorruptValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := openTestDB(t)

	require.NoError(t, repo.Put(ctx, "k", "just a string"))
	var got rangeState
	ok, err := repo.Get(ctx, "k", &got)
	require.Error(t, err)
	require.False(t, ok)
}
