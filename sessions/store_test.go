package sessions_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-backoffice-core/apiclient"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/jrsteele09/go-backoffice-core/sessions"
	"github.com/jrsteele09/go-backoffice-core/sessions/repofakes"
	"github.com/stretchr/testify/require"
)

const password = "pw"

type fakeAuth struct {
	mu        sync.Mutex
	users     map[string]apiclient.LoginResponse
	gates     map[string]chan struct{}
	entered   chan string
	logouts   int
	logoutErr error
	me        func() (*apiclient.UserInfo, error)
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		users: map[string]apiclient.LoginResponse{
			"admin":    {Token: "admin-token", Username: "admin", Roles: []string{"ADMIN"}},
			"empleado": {Token: "emp-token", Username: "empleado", Roles: []string{"EMPLEADO", "ADMIN"}},
			"guest":    {Token: "guest-token", Username: "guest", Roles: []string{"GUEST"}},
			"noroles":  {Token: "x", Username: "noroles"},
		},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 64),
	}
}

func (f *fakeAuth) Login(ctx context.Context, username, pw string) (*apiclient.LoginResponse, error) {
	f.mu.Lock()
	gate := f.gates[username]
	resp, ok := f.users[username]
	f.mu.Unlock()

	f.entered <- username
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok || pw != password {
		return nil, &apiclient.Failure{Status: http.StatusUnauthorized, Method: http.MethodPost, Path: "/auth/login"}
	}
	return &resp, nil
}

func (f *fakeAuth) Logout(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logouts++
	return f.logoutErr
}

func (f *fakeAuth) Me(context.Context) (*apiclient.UserInfo, error) {
	return f.me()
}

func (f *fakeAuth) logoutCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.logouts
}

func newStore(t *testing.T, auth sessions.Authenticator, repo sessions.SnapshotRepo) *sessions.Store {
	t.Helper()
	store, err := sessions.NewStore(context.Background(), auth, repo)
	require.NoError(t, err)
	return store
}

func TestStore_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := repofakes.NewFakeSnapshotRepo()
		store := newStore(t, newFakeAuth(), repo)

		var seen []sessions.Identity
		unsubscribe := store.Subscribe(func(id sessions.Identity) { seen = append(seen, id) })
		defer unsubscribe()

		require.NoError(t, store.Login(ctx, "admin", password))
		require.True(t, store.IsAuthenticated())
		require.Equal(t, roles.RoleAdmin, store.CurrentRole())
		require.Equal(t, "admin", store.CurrentUsername())
		require.Equal(t, "admin-token", store.Token())

		require.Equal(t, []sessions.Identity{
			{},
			{Authenticated: true, Role: roles.RoleAdmin, Username: "admin"},
		}, seen)

		snapshot, err := repo.Load(ctx)
		require.NoError(t, err)
		require.Equal(t, "admin-token", snapshot.Token)
	})

	t.Run("only the first role is honoured", func(t *testing.T) {
		store := newStore(t, newFakeAuth(), repofakes.NewFakeSnapshotRepo())
		require.NoError(t, store.Login(ctx, "empleado", password))
		require.Equal(t, roles.RoleEmployee, store.CurrentRole())
	})

	t.Run("bad credentials leave the session unchanged", func(t *testing.T) {
		store := newStore(t, newFakeAuth(), repofakes.NewFakeSnapshotRepo())
		require.NoError(t, store.Login(ctx, "admin", password))

		err := store.Login(ctx, "admin", "wrong")
		require.True(t, errors.Is(err, errors.ErrAuthenticationFailure))
		require.True(t, errors.Is(err, errors.ErrCollaboratorFailure))
		require.Equal(t, "admin-token", store.Token())
	})

	t.Run("unrecognised roles fail", func(t *testing.T) {
		repo := repofakes.NewFakeSnapshotRepo()
		store := newStore(t, newFakeAuth(), repo)
		for _, username := range []string{"guest", "noroles"} {
			err := store.Login(ctx, username, password)
			require.True(t, errors.Is(err, errors.ErrAuthenticationFailure), username)
			require.True(t, errors.Is(err, errors.ErrUnknownRole), username)
			require.False(t, store.IsAuthenticated())
		}
		saves, _ := repo.Counts()
		require.Zero(t, saves)
	})

	t.Run("snapshot write failure keeps the in memory session", func(t *testing.T) {
		repo := repofakes.NewFakeSnapshotRepo()
		repo.SaveErr = fmt.Errorf("disk full")
		store := newStore(t, newFakeAuth(), repo)
		require.NoError(t, store.Login(ctx, "admin", password))
		require.True(t, store.IsAuthenticated())
	})
}

func TestStore_StaleLoginIsDiscarded(t *testing.T) {
	ctx := context.Background()
	auth := newFakeAuth()
	auth.users["slow"] = apiclient.LoginResponse{Token: "slow-token", Username: "slow", Roles: []string{"ADMIN"}}
	gate := make(chan struct{})
	auth.gates["slow"] = gate
	store := newStore(t, auth, repofakes.NewFakeSnapshotRepo())

	t.Run("newer login wins", func(t *testing.T) {
		errCh := make(chan error, 1)
		go func() { errCh <- store.Login(ctx, "slow", password) }()
		require.Equal(t, "slow", <-auth.entered)

		require.NoError(t, store.Login(ctx, "empleado", password))
		require.Equal(t, "empleado", <-auth.entered)

		gate <- struct{}{}
		err := <-errCh
		require.True(t, errors.Is(err, errors.ErrStaleLogin))
		require.Equal(t, "empleado", store.CurrentUsername())
		require.Equal(t, roles.RoleEmployee, store.CurrentRole())
	})

	t.Run("logout invalidates an in flight login", func(t *testing.T) {
		errCh := make(chan error, 1)
		go func() { errCh <- store.Login(ctx, "slow", password) }()
		require.Equal(t, "slow", <-auth.entered)

		require.NoError(t, store.Logout(ctx))

		gate <- struct{}{}
		require.True(t, errors.Is(<-errCh, errors.ErrStaleLogin))
		require.False(t, store.IsAuthenticated())
		require.Empty(t, store.Token())
	})
}

func TestStore_Logout(t *testing.T) {
	ctx := context.Background()

	t.Run("idempotent", func(t *testing.T) {
		auth := newFakeAuth()
		repo := repofakes.NewFakeSnapshotRepo()
		store := newStore(t, auth, repo)
		require.NoError(t, store.Login(ctx, "admin", password))

		var seen []sessions.Identity
		unsubscribe := store.Subscribe(func(id sessions.Identity) { seen = append(seen, id) })
		defer unsubscribe()

		require.NoError(t, store.Logout(ctx))
		first := store.State()
		require.NoError(t, store.Logout(ctx))

		require.Equal(t, first, store.State())
		require.Equal(t, sessions.State{}, store.State())
		require.Equal(t, 1, auth.logoutCount())
		require.Len(t, seen, 2)
		require.Equal(t, sessions.Identity{}, seen[1])

		_, err := repo.Load(ctx)
		require.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
		_, clears := repo.Counts()
		require.Equal(t, 2, clears)
	})

	t.Run("collaborator failure is absorbed", func(t *testing.T) {
		auth := newFakeAuth()
		auth.logoutErr = &apiclient.Failure{Status: http.StatusInternalServerError, Path: "/auth/logout"}
		store := newStore(t, auth, repofakes.NewFakeSnapshotRepo())
		require.NoError(t, store.Login(ctx, "admin", password))

		require.NoError(t, store.Logout(ctx))
		require.False(t, store.IsAuthenticated())
	})

	t.Run("cancelled context still clears", func(t *testing.T) {
		repo := repofakes.NewFakeSnapshotRepo()
		store := newStore(t, newFakeAuth(), repo)
		require.NoError(t, store.Login(ctx, "admin", password))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		require.NoError(t, store.Logout(cancelled))
		require.False(t, store.IsAuthenticated())
	})
}

func TestStore_ColdStart(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		repo := repofakes.NewFakeSnapshotRepo()
		first := newStore(t, newFakeAuth(), repo)
		require.NoError(t, first.Login(ctx, "empleado", password))

		second := newStore(t, newFakeAuth(), repo)
		require.Equal(t, first.State(), second.State())
		require.Equal(t, roles.RoleEmployee, second.CurrentRole())
	})

	t.Run("no snapshot", func(t *testing.T) {
		store := newStore(t, newFakeAuth(), repofakes.NewFakeSnapshotRepo())
		require.Equal(t, sessions.State{}, store.State())
	})

	t.Run("invalid snapshot is discarded", func(t *testing.T) {
		invalid := []sessions.Snapshot{
			{Authenticated: true, Role: "GUEST", Username: "x", Token: "t"},
			{Authenticated: true, Username: "x", Token: "t"},
			{Authenticated: false, Role: roles.RoleAdmin},
			{Authenticated: false, Token: "leftover"},
		}
		for _, snapshot := range invalid {
			repo := repofakes.NewFakeSnapshotRepo()
			repo.Seed(snapshot)

			store := newStore(t, newFakeAuth(), repo)
			require.Equal(t, sessions.State{}, store.State())
			_, err := repo.Load(ctx)
			require.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
		}
	})
}

func TestStore_Verify(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a session", func(t *testing.T) {
		store := newStore(t, newFakeAuth(), repofakes.NewFakeSnapshotRepo())
		require.True(t, errors.Is(store.Verify(ctx), errors.ErrNotAuthenticated))
	})

	t.Run("rejected token clears the session", func(t *testing.T) {
		auth := newFakeAuth()
		auth.me = func() (*apiclient.UserInfo, error) {
			return nil, &apiclient.Failure{Status: http.StatusUnauthorized, Path: "/auth/me"}
		}
		repo := repofakes.NewFakeSnapshotRepo()
		store := newStore(t, auth, repo)
		require.NoError(t, store.Login(ctx, "admin", password))

		err := store.Verify(ctx)
		require.True(t, errors.Is(err, errors.ErrNotAuthenticated))
		require.False(t, store.IsAuthenticated())
		_, err = repo.Load(ctx)
		require.True(t, errors.Is(err, errors.ErrSnapshotNotFound))
	})

	t.Run("other failures keep the session", func(t *testing.T) {
		auth := newFakeAuth()
		auth.me = func() (*apiclient.UserInfo, error) {
			return nil, &apiclient.Failure{Status: http.StatusInternalServerError, Path: "/auth/me"}
		}
		store := newStore(t, auth, repofakes.NewFakeSnapshotRepo())
		require.NoError(t, store.Login(ctx, "admin", password))

		require.Error(t, store.Verify(ctx))
		require.True(t, store.IsAuthenticated())
	})

	t.Run("refreshes the identity", func(t *testing.T) {
		auth := newFakeAuth()
		auth.me = func() (*apiclient.UserInfo, error) {
			return &apiclient.UserInfo{Username: "Administrator", Roles: []string{"ROLE_EMPLOYEE"}}, nil
		}
		store := newStore(t, auth, repofakes.NewFakeSnapshotRepo())
		require.NoError(t, store.Login(ctx, "admin", password))

		require.NoError(t, store.Verify(ctx))
		require.Equal(t, roles.RoleEmployee, store.CurrentRole())
		require.Equal(t, "Administrator", store.CurrentUsername())
		require.Equal(t, "admin-token", store.Token())
	})

	t.Run("answer for a replaced session is dropped", func(t *testing.T) {
		cases := map[string]func() (*apiclient.UserInfo, error){
			"rejected": func() (*apiclient.UserInfo, error) {
				return nil, &apiclient.Failure{Status: http.StatusUnauthorized, Path: "/auth/me"}
			},
			"unknown role": func() (*apiclient.UserInfo, error) {
				return &apiclient.UserInfo{Username: "admin", Roles: []string{"GUEST"}}, nil
			},
			"changed identity": func() (*apiclient.UserInfo, error) {
				return &apiclient.UserInfo{Username: "Administrator", Roles: []string{"EMPLOYEE"}}, nil
			},
		}
		for name, answer := range cases {
			t.Run(name, func(t *testing.T) {
				auth := newFakeAuth()
				auth.users["slow"] = apiclient.LoginResponse{Token: "slow-token", Username: "slow", Roles: []string{"ADMIN"}}
				loginGate := make(chan struct{})
				auth.gates["slow"] = loginGate
				meEntered, meGate := make(chan struct{}), make(chan struct{})
				auth.me = func() (*apiclient.UserInfo, error) {
					meEntered <- struct{}{}
					<-meGate
					return answer()
				}
				repo := repofakes.NewFakeSnapshotRepo()
				store := newStore(t, auth, repo)
				require.NoError(t, store.Login(ctx, "admin", password))
				require.Equal(t, "admin", <-auth.entered)

				loginErr := make(chan error, 1)
				go func() { loginErr <- store.Login(ctx, "slow", password) }()
				require.Equal(t, "slow", <-auth.entered)

				verifyErr := make(chan error, 1)
				go func() { verifyErr <- store.Verify(ctx) }()
				<-meEntered

				loginGate <- struct{}{}
				require.NoError(t, <-loginErr)
				require.Equal(t, "slow", store.CurrentUsername())

				meGate <- struct{}{}
				require.NoError(t, <-verifyErr)

				require.True(t, store.IsAuthenticated())
				require.Equal(t, "slow", store.CurrentUsername())
				require.Equal(t, roles.RoleAdmin, store.CurrentRole())
				require.Equal(t, "slow-token", store.Token())
				snapshot, err := repo.Load(ctx)
				require.NoError(t, err)
				require.Equal(t, "slow-token", snapshot.Token)
			})
		}
	})
}

func TestStore_TokenSource(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newFakeAuth(), repofakes.NewFakeSnapshotRepo())
	ts := store.TokenSource()

	_, err := ts.Token()
	require.True(t, errors.Is(err, errors.ErrNotAuthenticated))

	require.NoError(t, store.Login(ctx, "admin", password))
	tok, err := ts.Token()
	require.NoError(t, err)
	require.Equal(t, "admin-token", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestStore_RoleSource(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, newFakeAuth(), repofakes.NewFakeSnapshotRepo())
	authorizer, err := roles.NewAuthorizer(store)
	require.NoError(t, err)

	var sizes []int
	unsubscribe := authorizer.SubscribeMenu(func(menu []roles.MenuOption) { sizes = append(sizes, len(menu)) })
	defer unsubscribe()

	require.NoError(t, store.Login(ctx, "empleado", password))
	require.True(t, authorizer.CanAccessRoute(roles.RouteStock))
	require.False(t, authorizer.CanAccessRoute(roles.RouteClients))
	require.NoError(t, store.Logout(ctx))

	require.Equal(t, []int{0, 3, 0}, sizes)
}

func TestNewStore(t *testing.T) {
	_, err := sessions.NewStore(context.Background(), nil, repofakes.NewFakeSnapshotRepo())
	require.Error(t, err)
	_, err = sessions.NewStore(context.Background(), newFakeAuth(), nil)
	require.Error(t, err)

	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	repo := repofakes.NewFakeSnapshotRepo()
	store, err := sessions.NewStore(context.Background(), newFakeAuth(), repo, sessions.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	require.NoError(t, store.Login(context.Background(), "admin", password))
	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, now, snapshot.SavedAt)
}
