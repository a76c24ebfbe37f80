package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmaclic/internal/repository"
)

var errSlotDown = errors.New("slot down")

// memSnapshotRepo is an in-memory versioned slot whose reads and writes can be made to fail.
type memSnapshotRepo struct {
	mu       sync.Mutex
	doc      []byte
	version  int64
	saves    int
	failLoad bool
	failSave bool
}

func (r *memSnapshotRepo) Load(ctx context.Context) ([]byte, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failLoad {
		return nil, 0, errSlotDown
	}
	if r.doc == nil {
		return nil, 0, repository.ErrSnapshotNotFound
	}
	return append([]byte(nil), r.doc...), r.version, nil
}

func (r *memSnapshotRepo) Save(ctx context.Context, document []byte, expected int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSave {
		return 0, errSlotDown
	}
	if expected != r.version {
		return 0, repository.ErrSnapshotConflict
	}
	r.doc = append([]byte(nil), document...)
	r.version++
	r.saves++
	return r.version, nil
}

func (r *memSnapshotRepo) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.doc = nil
	r.version = 0
	return nil
}

func (r *memSnapshotRepo) setFailSave(v bool) {
	r.mu.Lock()
	r.failSave = v
	r.mu.Unlock()
}

var testNow = time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

// newTestStore returns a loaded store over an empty in-memory slot.
func newTestStore(t *testing.T) (*storeService, *memSnapshotRepo) {
	t.Helper()
	repo := &memSnapshotRepo{}
	store := newStoreService(repo, nil, fixedClock)
	require.NoError(t, store.Load(context.Background()))
	return store, repo
}

var cashier = Actor{ID: "u-1", Name: "Ana", Email: "ana@farmacia.mx"}
