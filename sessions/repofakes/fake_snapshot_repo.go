package repofakes

import (
	"context"
	"sync"

	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/sessions"
)

var _ sessions.SnapshotRepo = (*FakeSnapshotRepo)(nil)

// FakeSnapshotRepo keeps the snapshot in memory. It backs the "memory" store
// kind and the tests.
type FakeSnapshotRepo struct {
	lock     sync.RWMutex
	snapshot *sessions.Snapshot
	saves    int
	clears   int

	// SaveErr, when set, is returned by Save instead of storing.
	SaveErr error
}

func NewFakeSnapshotRepo() *FakeSnapshotRepo {
	return &FakeSnapshotRepo{}
}

// Seed stores snapshot without counting it as a save.
func (r *FakeSnapshotRepo) Seed(snapshot sessions.Snapshot) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.snapshot = &snapshot
}

func (r *FakeSnapshotRepo) Load(_ context.Context) (*sessions.Snapshot, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	if r.snapshot == nil {
		return nil, errors.ErrSnapshotNotFound
	}
	snapshot := *r.snapshot
	return &snapshot, nil
}

func (r *FakeSnapshotRepo) Save(_ context.Context, snapshot *sessions.Snapshot) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.SaveErr != nil {
		return r.SaveErr
	}
	stored := *snapshot
	r.snapshot = &stored
	r.saves++
	return nil
}

func (r *FakeSnapshotRepo) Clear(_ context.Context) error {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.snapshot = nil
	r.clears++
	return nil
}

// Counts returns how many times Save and Clear have been called.
func (r *FakeSnapshotRepo) Counts() (saves, clears int) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	return r.saves, r.clears
}
