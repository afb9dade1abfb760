package roles

import (
	"github.com/pkg/errors"
)

// RoleSource supplies the live actor role. The session store implements it.
type RoleSource interface {
	CurrentRole() Role
	SubscribeRole(fn func(Role)) (unsubscribe func())
}

// Authorizer decides route reachability and menu visibility for the current actor.
type Authorizer struct {
	source  RoleSource
	catalog []MenuOption
	byRoute map[string]int
}

// AuthorizerOption modifies an Authorizer at construction.
type AuthorizerOption func(*Authorizer)

// WithCatalog replaces the default menu catalog.
func WithCatalog(catalog []MenuOption) AuthorizerOption {
	return func(a *Authorizer) {
		a.catalog = append([]MenuOption(nil), catalog...)
	}
}

// NewAuthorizer creates an Authorizer bound to a role source.
func NewAuthorizer(source RoleSource, options ...AuthorizerOption) (*Authorizer, error) {
	if source == nil {
		return nil, errors.New("[NewAuthorizer] role source is required")
	}

	a := &Authorizer{
		source:  source,
		catalog: DefaultCatalog(),
	}
	for _, opt := range options {
		opt(a)
	}

	a.byRoute = make(map[string]int, len(a.catalog))
	for i, option := range a.catalog {
		route := NormalizeRoute(option.Route)
		if _, dup := a.byRoute[route]; dup {
			return nil, errors.Errorf("[NewAuthorizer] duplicate catalog route %q", option.Route)
		}
		a.byRoute[route] = i
	}
	return a, nil
}

// HasPermission evaluates the role hierarchy; see the package level HasPermission.
func (a *Authorizer) HasPermission(actor, required Role) bool {
	return HasPermission(actor, required)
}

// Lookup returns the catalog entry for route.
func (a *Authorizer) Lookup(route string) (MenuOption, bool) {
	i, ok := a.byRoute[NormalizeRoute(route)]
	if !ok {
		return MenuOption{}, false
	}
	return a.catalog[i], true
}

// CanAccessRoute reports whether the current actor may open route. Routes that
// are not in the catalog are never reachable.
func (a *Authorizer) CanAccessRoute(route string) bool {
	option, ok := a.Lookup(route)
	if !ok {
		return false
	}
	return HasPermission(a.source.CurrentRole(), option.RequiredRole)
}

// MenuForRole filters the catalog for role. The result is a fresh slice.
func (a *Authorizer) MenuForRole(role Role) []MenuOption {
	menu := make([]MenuOption, 0, len(a.catalog))
	if !role.IsValid() {
		return menu
	}
	for _, option := range a.catalog {
		if HasPermission(role, option.RequiredRole) {
			menu = append(menu, option)
		}
	}
	return menu
}

// MenuForCurrentSession derives the visible menu from the live session role.
func (a *Authorizer) MenuForCurrentSession() []MenuOption {
	return a.MenuForRole(a.source.CurrentRole())
}

// SubscribeMenu calls fn with the current menu and again every time the
// session role changes. Each call receives its own slice.
func (a *Authorizer) SubscribeMenu(fn func([]MenuOption)) (unsubscribe func()) {
	var (
		last    Role
		started bool
	)
	return a.source.SubscribeRole(func(role Role) {
		if started && role == last {
			return
		}
		started, last = true, role
		fn(a.MenuForRole(role))
	})
}

func (a *Authorizer) IsAdmin() bool {
	return a.source.CurrentRole() == RoleAdmin
}

func (a *Authorizer) IsEmployee() bool {
	return a.source.CurrentRole() == RoleEmployee
}
