package sessions

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/jrsteele09/go-backoffice-core/apiclient"
	"github.com/jrsteele09/go-backoffice-core/internal/broadcast"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/roles"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Authenticator is the authentication collaborator. apiclient.Client implements it.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*apiclient.LoginResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*apiclient.UserInfo, error)
}

var (
	_ Authenticator    = (*apiclient.Client)(nil)
	_ roles.RoleSource = (*Store)(nil)
)

// Store owns the single session of the running process.
type Store struct {
	auth    Authenticator
	repo    SnapshotRepo
	nowTime func() time.Time

	mu      sync.Mutex // orders state transitions
	seq     uint64     // last sequence number handed out
	applied uint64     // sequence number of the last applied transition
	state   *broadcast.Subject[State]
}

// StoreOption modifies a Store at construction.
type StoreOption func(*Store)

// WithNowTime overrides the clock used to stamp snapshots.
func WithNowTime(nowTime func() time.Time) StoreOption {
	return func(s *Store) {
		s.nowTime = nowTime
	}
}

// NewStore creates the Store and rehydrates it from the persisted snapshot.
// A missing, unreadable or invalid snapshot leaves the session empty.
func NewStore(ctx context.Context, auth Authenticator, repo SnapshotRepo, options ...StoreOption) (*Store, error) {
	if auth == nil {
		return nil, pkgerrors.New("[NewStore] authenticator is required")
	}
	if repo == nil {
		return nil, pkgerrors.New("[NewStore] snapshot repo is required")
	}

	s := &Store{
		auth:    auth,
		repo:    repo,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.state = broadcast.New(s.restore(ctx))
	return s, nil
}

func (s *Store) restore(ctx context.Context) State {
	snapshot, err := s.repo.Load(ctx)
	switch {
	case errors.Is(err, errors.ErrSnapshotNotFound):
		return State{}
	case errors.Is(err, errors.ErrInvalidSnapshot):
		s.discard(ctx, err)
		return State{}
	case err != nil:
		log.Warn().Err(err).Msg("[Store.restore] could not load session snapshot")
		return State{}
	}

	state := snapshot.State()
	if !state.Valid() {
		s.discard(ctx, errors.Wrapf(errors.ErrInvalidSnapshot, "role %q authenticated %t", state.Role, state.Authenticated))
		return State{}
	}
	log.Debug().Str("username", state.Username).Stringer("role", state.Role).Bool("authenticated", state.Authenticated).Msg("session restored")
	return state
}

func (s *Store) discard(ctx context.Context, reason error) {
	log.Warn().Err(reason).Msg("[Store.restore] discarding session snapshot")
	if err := s.repo.Clear(ctx); err != nil {
		log.Err(err).Msg("[Store.restore] could not clear session snapshot")
	}
}

// Login authenticates against the collaborator and, on success, replaces the
// session. On failure the session is unchanged and the error wraps
// ErrAuthenticationFailure. A response that arrives after a newer Login or
// Logout has been applied is discarded with ErrStaleLogin.
func (s *Store) Login(ctx context.Context, username, password string) error {
	seq := s.nextSeq()

	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return fmt.Errorf("[Store.Login] %w: %w", errors.ErrAuthenticationFailure, err)
	}
	role, err := roles.FirstRole(resp.Roles)
	if err != nil {
		return fmt.Errorf("[Store.Login] %w: %w", errors.ErrAuthenticationFailure, err)
	}
	if resp.Username != "" {
		username = resp.Username
	}

	next := State{
		Authenticated: true,
		Role:          role,
		Username:      username,
		Token:         resp.Token,
	}
	if !s.apply(ctx, seq, next) {
		log.Debug().Str("username", username).Uint64("seq", seq).Msg("stale login response discarded")
		return errors.Wrapf(errors.ErrStaleLogin, "[Store.Login] %s", username)
	}
	log.Info().Str("username", username).Stringer("role", role).Msg("logged in")
	return nil
}

// Logout notifies the collaborator and clears the session whatever the outcome.
// Logins still in flight are invalidated; a login started after the logout
// wins. Calling it without a session only clears the persisted snapshot.
// The returned error is only ever a failure to clear the snapshot; the
// in-memory session is cleared regardless.
func (s *Store) Logout(ctx context.Context) error {
	seq := s.nextSeq()

	if s.IsAuthenticated() {
		if err := s.auth.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("[Store.Logout] collaborator logout failed, clearing local session anyway")
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		log.Debug().Uint64("seq", seq).Msg("logout superseded by a newer login")
		return nil
	}
	s.applied = seq
	if s.state.Get().Authenticated {
		s.state.Set(State{})
		log.Info().Msg("logged out")
	}
	if err := s.repo.Clear(context.WithoutCancel(ctx)); err != nil {
		return pkgerrors.Wrap(err, "[Store.Logout] clear snapshot")
	}
	return nil
}

// Verify asks the collaborator who the stored token belongs to. A 401 means
// the token is no longer accepted and the session is cleared; any other
// failure leaves the session untouched. A successful answer refreshes the
// username and role. The answer is dropped when the session was replaced
// while the request was in flight, since it describes the previous token.
func (s *Store) Verify(ctx context.Context) error {
	current := s.State()
	if !current.Authenticated {
		return errors.Wrapf(errors.ErrNotAuthenticated, "[Store.Verify]")
	}

	info, err := s.auth.Me(ctx)
	if apiclient.IsStatus(err, http.StatusUnauthorized) {
		if !s.replace(ctx, current, State{}) {
			return nil
		}
		return fmt.Errorf("[Store.Verify] %w: %w", errors.ErrNotAuthenticated, err)
	}
	if err != nil {
		return pkgerrors.Wrap(err, "[Store.Verify]")
	}

	role, err := roles.FirstRole(info.Roles)
	if err != nil {
		if !s.replace(ctx, current, State{}) {
			return nil
		}
		return fmt.Errorf("[Store.Verify] %w: %w", errors.ErrNotAuthenticated, err)
	}
	next := current
	next.Role = role
	if info.Username != "" {
		next.Username = info.Username
	}
	if next != current {
		s.replace(ctx, current, next)
	}
	return nil
}

func (s *Store) nextSeq() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// apply installs next unless a newer transition has already been applied.
func (s *Store) apply(ctx context.Context, seq uint64, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.applied {
		return false
	}
	s.applied = seq
	s.persist(ctx, next)
	s.state.Set(next)
	return true
}

// replace installs next only while the live session is still from. It does
// not take part in login sequencing.
func (s *Store) replace(ctx context.Context, from, next State) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Get() != from {
		log.Debug().Str("username", from.Username).Msg("session changed during verification, result dropped")
		return false
	}
	s.persist(ctx, next)
	s.state.Set(next)
	return true
}

func (s *Store) persist(ctx context.Context, state State) {
	ctx = context.WithoutCancel(ctx)
	var err error
	if state.Authenticated {
		err = s.repo.Save(ctx, snapshotOf(state, s.nowTime()))
	} else {
		err = s.repo.Clear(ctx)
	}
	if err != nil {
		log.Err(err).Msg("[Store.persist] session snapshot not written")
	}
}

func (s *Store) State() State {
	return s.state.Get()
}

func (s *Store) IsAuthenticated() bool {
	return s.state.Get().Authenticated
}

func (s *Store) CurrentRole() roles.Role {
	return s.state.Get().Role
}

func (s *Store) CurrentUsername() string {
	return s.state.Get().Username
}

// Token returns the opaque session token, empty when logged out.
func (s *Store) Token() string {
	return s.state.Get().Token
}

// Subscribe calls fn with the current identity and again after every change.
func (s *Store) Subscribe(fn func(Identity)) (unsubscribe func()) {
	return s.state.Subscribe(func(state State) {
		fn(state.Identity())
	})
}

// SubscribeRole calls fn with the current role and again after every session change.
func (s *Store) SubscribeRole(fn func(roles.Role)) (unsubscribe func()) {
	return s.state.Subscribe(func(state State) {
		fn(state.Role)
	})
}
