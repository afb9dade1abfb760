package roles_test

import (
	"testing"

	"github.com/jrsteele09/go-backoffice-core/internal/broadcast"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/stretchr/testify/require"
)

type fakeRoleSource struct {
	role *broadcast.Subject[roles.Role]
}

func newFakeRoleSource(role roles.Role) *fakeRoleSource {
	return &fakeRoleSource{role: broadcast.New(role)}
}

func (f *fakeRoleSource) CurrentRole() roles.Role { return f.role.Get() }

func (f *fakeRoleSource) SubscribeRole(fn func(roles.Role)) func() { return f.role.Subscribe(fn) }

func routes(menu []roles.MenuOption) []string {
	out := make([]string, 0, len(menu))
	for _, m := range menu {
		out = append(out, m.Route)
	}
	return out
}

func TestHasPermission(t *testing.T) {
	all := []roles.Role{roles.RoleNone, roles.RoleEmployee, roles.RoleAdmin}

	t.Run("admin passes everything", func(t *testing.T) {
		for _, required := range all {
			require.True(t, roles.HasPermission(roles.RoleAdmin, required), "required=%s", required)
		}
	})

	t.Run("employee", func(t *testing.T) {
		require.True(t, roles.HasPermission(roles.RoleEmployee, roles.RoleNone))
		require.True(t, roles.HasPermission(roles.RoleEmployee, roles.RoleEmployee))
		require.False(t, roles.HasPermission(roles.RoleEmployee, roles.RoleAdmin))
	})

	t.Run("no actor role fails closed", func(t *testing.T) {
		for _, required := range all {
			require.False(t, roles.HasPermission(roles.RoleNone, required), "required=%s", required)
		}
		require.False(t, roles.HasPermission(roles.Role("GUEST"), roles.RoleNone))
	})
}

func TestParseRole(t *testing.T) {
	cases := map[string]roles.Role{
		"ADMIN":           roles.RoleAdmin,
		"admin":           roles.RoleAdmin,
		"ROLE_ADMIN":      roles.RoleAdmin,
		"EMPLOYEE":        roles.RoleEmployee,
		"EMPLEADO":        roles.RoleEmployee,
		" ROLE_empleado ": roles.RoleEmployee,
	}
	for in, want := range cases {
		got, err := roles.ParseRole(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}

	_, err := roles.ParseRole("GUEST")
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrUnknownRole))
}

func TestFirstRole(t *testing.T) {
	role, err := roles.FirstRole([]string{"EMPLEADO", "ADMIN"})
	require.NoError(t, err)
	require.Equal(t, roles.RoleEmployee, role)

	_, err = roles.FirstRole(nil)
	require.True(t, errors.Is(err, errors.ErrUnknownRole))
}

func TestAuthorizer_CanAccessRoute(t *testing.T) {
	source := newFakeRoleSource(roles.RoleNone)
	a, err := roles.NewAuthorizer(source)
	require.NoError(t, err)

	t.Run("no session", func(t *testing.T) {
		require.False(t, a.CanAccessRoute(roles.RouteClients))
		require.False(t, a.CanAccessRoute(roles.RouteHome))
	})

	t.Run("employee", func(t *testing.T) {
		source.role.Set(roles.RoleEmployee)
		require.False(t, a.CanAccessRoute(roles.RouteClients))
		require.True(t, a.CanAccessRoute(roles.RouteHome))
		require.True(t, a.CanAccessRoute(roles.RouteStock))
		require.True(t, a.CanAccessRoute("/pedidos/?page=2"))
	})

	t.Run("admin", func(t *testing.T) {
		source.role.Set(roles.RoleAdmin)
		require.True(t, a.CanAccessRoute(roles.RouteClients))
		require.True(t, a.CanAccessRoute(roles.RouteRawMaterials))
	})

	t.Run("unknown route", func(t *testing.T) {
		source.role.Set(roles.RoleAdmin)
		require.False(t, a.CanAccessRoute("/reports"))
	})
}

func TestAuthorizer_Menus(t *testing.T) {
	source := newFakeRoleSource(roles.RoleEmployee)
	a, err := roles.NewAuthorizer(source)
	require.NoError(t, err)

	require.Equal(t,
		[]string{roles.RouteHome, roles.RouteStock, roles.RouteOrders},
		routes(a.MenuForCurrentSession()))
	require.Len(t, a.MenuForRole(roles.RoleAdmin), len(roles.DefaultCatalog()))
	require.Empty(t, a.MenuForRole(roles.RoleNone))

	t.Run("menu copies are independent", func(t *testing.T) {
		menu := a.MenuForCurrentSession()
		menu[0].Label = "changed"
		require.Equal(t, "Dashboard", a.MenuForCurrentSession()[0].Label)
	})

	require.True(t, a.IsEmployee())
	require.False(t, a.IsAdmin())
}

func TestAuthorizer_SubscribeMenu(t *testing.T) {
	source := newFakeRoleSource(roles.RoleNone)
	a, err := roles.NewAuthorizer(source)
	require.NoError(t, err)

	var sizes []int
	unsubscribe := a.SubscribeMenu(func(menu []roles.MenuOption) { sizes = append(sizes, len(menu)) })

	source.role.Set(roles.RoleEmployee)
	source.role.Set(roles.RoleEmployee) // unchanged role, no recompute
	source.role.Set(roles.RoleAdmin)
	source.role.Set(roles.RoleNone)
	unsubscribe()
	source.role.Set(roles.RoleAdmin)

	require.Equal(t, []int{0, 3, len(roles.DefaultCatalog()), 0}, sizes)
}

func TestNewAuthorizer(t *testing.T) {
	t.Run("nil source", func(t *testing.T) {
		_, err := roles.NewAuthorizer(nil)
		require.Error(t, err)
	})

	t.Run("duplicate routes", func(t *testing.T) {
		_, err := roles.NewAuthorizer(newFakeRoleSource(roles.RoleAdmin), roles.WithCatalog([]roles.MenuOption{
			{Label: "A", Route: "/a"},
			{Label: "A again", Route: "/a/"},
		}))
		require.Error(t, err)
	})

	t.Run("custom catalog", func(t *testing.T) {
		a, err := roles.NewAuthorizer(newFakeRoleSource(roles.RoleEmployee), roles.WithCatalog([]roles.MenuOption{
			{Label: "Reports", Route: "/reports", RequiredRole: roles.RoleAdmin},
			{Label: "Help", Route: "/help"},
		}))
		require.NoError(t, err)
		require.False(t, a.CanAccessRoute("/reports"))
		require.True(t, a.CanAccessRoute("/help"))
		require.False(t, a.CanAccessRoute(roles.RouteHome))
	})
}
