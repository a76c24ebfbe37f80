package repository

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T, key string) (SnapshotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSnapshotRepo(client, key), mr
}

func TestRedisSnapshotRepoRoundTrip(t *testing.T) {
	repo, mr := newRedisRepo(t, "")
	ctx := context.Background()

	_, _, err := repo.Load(ctx)
	require.ErrorIs(t, err, ErrSnapshotNotFound)

	v, err := repo.Save(ctx, []byte(`{"products":[]}`), 0)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
	got, version, err := repo.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), version)
	require.JSONEq(t, `{"products":[]}`, string(got))
	require.True(t, mr.Exists(DefaultStoreKey))

	v, err = repo.Save(ctx, []byte(`{"products":[{"id":"1"}]}`), version)
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
	got, _, err = repo.Load(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"products":[{"id":"1"}]}`, string(got))

	require.NoError(t, repo.Delete(ctx))
	_, _, err = repo.Load(ctx)
	require.ErrorIs(t, err, ErrSnapshotNotFound)
	require.False(t, mr.Exists(DefaultStoreKey+":version"))
}

func TestRedisSnapshotRepoRejectsStaleVersion(t *testing.T) {
	repo, mr := newRedisRepo(t, "")
	ctx := context.Background()

	v, err := repo.Save(ctx, []byte(`{"sales":[]}`), 0)
	require.NoError(t, err)

	// a second process writes first
	_, err = repo.Save(ctx, []byte(`{"sales":[{"id":"a"}]}`), v)
	require.NoError(t, err)

	_, err = repo.Save(ctx, []byte(`{"sales":[{"id":"stale"}]}`), v)
	require.ErrorIs(t, err, ErrSnapshotConflict)
	_, err = repo.Save(ctx, []byte(`{}`), 0)
	require.ErrorIs(t, err, ErrSnapshotConflict)

	doc, err := mr.Get(DefaultStoreKey)
	require.NoError(t, err)
	require.JSONEq(t, `{"sales":[{"id":"a"}]}`, doc)
}

func TestRedisSnapshotRepoDocumentWithoutVersion(t *testing.T) {
	repo, mr := newRedisRepo(t, "")
	require.NoError(t, mr.Set(DefaultStoreKey, `{"products":[]}`))

	_, version, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(0), version)

	v, err := repo.Save(context.Background(), []byte(`{}`), version)
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestRedisSnapshotRepoCustomKey(t *testing.T) {
	repo, mr := newRedisRepo(t, "branch-2")
	_, err := repo.Save(context.Background(), []byte(`{}`), 0)
	require.NoError(t, err)
	require.True(t, mr.Exists("branch-2"))
	require.False(t, mr.Exists(DefaultStoreKey))
}

func TestRedisSnapshotRepoUnavailable(t *testing.T) {
	repo, mr := newRedisRepo(t, "")
	mr.Close()

	_, _, err := repo.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrSnapshotNotFound)
}
