package sessions

import (
	"context"
	"time"

	"github.com/jrsteele09/go-backoffice-core/roles"
)

// Snapshot is the persisted form of State, written on login and cleared on logout.
type Snapshot struct {
	Authenticated bool       `json:"isAuthenticated"`
	Role          roles.Role `json:"role,omitempty"`
	Username      string     `json:"username,omitempty"`
	Token         string     `json:"token,omitempty"`
	SavedAt       time.Time  `json:"savedAt"`
}

func (s Snapshot) State() State {
	return State{
		Authenticated: s.Authenticated,
		Role:          s.Role,
		Username:      s.Username,
		Token:         s.Token,
	}
}

func snapshotOf(state State, now time.Time) *Snapshot {
	return &Snapshot{
		Authenticated: state.Authenticated,
		Role:          state.Role,
		Username:      state.Username,
		Token:         state.Token,
		SavedAt:       now,
	}
}

// SnapshotRepo persists the session snapshot between process runs.
type SnapshotRepo interface {
	// Load returns the stored snapshot, or errors.ErrSnapshotNotFound when there is none
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the stored snapshot
	Save(ctx context.Context, snapshot *Snapshot) error

	// Clear removes the stored snapshot; clearing an empty repo is not an error
	Clear(ctx context.Context) error
}
