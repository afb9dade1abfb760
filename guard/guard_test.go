package guard_test

import (
	"testing"

	"github.com/jrsteele09/go-backoffice-core/guard"
	"github.com/jrsteele09/go-backoffice-core/internal/broadcast"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/notifications"
	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	role *broadcast.Subject[roles.Role]
}

func newFakeSession(role roles.Role) *fakeSession {
	return &fakeSession{role: broadcast.New(role)}
}

func (f *fakeSession) IsAuthenticated() bool { return f.role.Get() != roles.RoleNone }
func (f *fakeSession) CurrentRole() roles.Role { return f.role.Get() }
func (f *fakeSession) SubscribeRole(fn func(roles.Role)) func() { return f.role.Subscribe(fn) }

func newGuard(t *testing.T, role roles.Role, options ...guard.GuardOption) (*guard.Guard, *fakeSession, *notifications.Bus) {
	t.Helper()
	session := newFakeSession(role)
	authorizer, err := roles.NewAuthorizer(session)
	require.NoError(t, err)
	bus := notifications.NewBus()
	t.Cleanup(bus.Close)

	g, err := guard.New(session, authorizer, bus, options...)
	require.NoError(t, err)
	return g, session, bus
}

func TestGuard_Check(t *testing.T) {
	t.Run("unauthenticated goes to login silently", func(t *testing.T) {
		g, _, bus := newGuard(t, roles.RoleNone)
		for _, route := range []string{roles.RouteClients, roles.RouteHome, "/unknown"} {
			decision := g.Check(route)
			require.Equal(t, guard.Deny, decision.Outcome)
			require.Equal(t, guard.DefaultLoginRoute, decision.Redirect)
			require.True(t, errors.Is(decision.Err, errors.ErrNotAuthenticated))
		}
		require.Empty(t, bus.Active())
	})

	t.Run("under privileged goes home with one error", func(t *testing.T) {
		g, _, bus := newGuard(t, roles.RoleEmployee)
		decision := g.Check(roles.RouteClients)

		require.Equal(t, guard.Deny, decision.Outcome)
		require.Equal(t, roles.RouteHome, decision.Redirect)
		require.True(t, errors.Is(decision.Err, errors.ErrAuthorizationDenied))

		active := bus.Active()
		require.Len(t, active, 1)
		require.Equal(t, notifications.KindError, active[0].Kind)
		require.Equal(t, "Access Denied", active[0].Title)
	})

	t.Run("allowed", func(t *testing.T) {
		g, session, bus := newGuard(t, roles.RoleEmployee)
		decision := g.Check(roles.RouteStock)
		require.True(t, decision.Allowed())
		require.Equal(t, roles.RouteStock, decision.Target())
		require.NoError(t, decision.Err)

		session.role.Set(roles.RoleAdmin)
		require.True(t, g.Check(roles.RouteClients).Allowed())
		require.Empty(t, bus.Active())
	})

	t.Run("unknown route is denied for admins", func(t *testing.T) {
		g, _, bus := newGuard(t, roles.RoleAdmin)
		require.False(t, g.Check("/reports").Allowed())
		require.Len(t, bus.Active(), 1)
	})
}

func TestGuard_Navigate(t *testing.T) {
	var visited []string
	g, session, _ := newGuard(t, roles.RoleNone,
		guard.WithNavigator(guard.NavigatorFunc(func(route string) { visited = append(visited, route) })),
		guard.WithLoginRoute("/signin"),
		guard.WithHomeRoute("/dashboard"))

	g.Navigate(roles.RouteSales)
	session.role.Set(roles.RoleEmployee)
	g.Navigate(roles.RouteSales)
	g.Navigate(roles.RouteOrders)

	require.Equal(t, []string{"/signin", "/dashboard", roles.RouteOrders}, visited)
	require.Equal(t, "deny", guard.Deny.String())
}

func TestNew(t *testing.T) {
	session := newFakeSession(roles.RoleAdmin)
	authorizer, err := roles.NewAuthorizer(session)
	require.NoError(t, err)
	bus := notifications.NewBus()
	defer bus.Close()

	_, err = guard.New(nil, authorizer, bus)
	require.Error(t, err)
	_, err = guard.New(session, nil, bus)
	require.Error(t, err)
	_, err = guard.New(session, authorizer, nil)
	require.Error(t, err)
}
