// Package guard decides, once per navigation attempt, whether the current
// actor may open a route.
package guard

import (
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/notifications"
	"github.com/jrsteele09/go-backoffice-core/roles"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	DefaultLoginRoute = "/login"
	DefaultHomeRoute  = roles.RouteHome

	deniedTitle   = "Access Denied"
	deniedMessage = "You do not have permission to access this page"
)

type Outcome int

const (
	Allow Outcome = iota
	Deny
)

func (o Outcome) String() string {
	if o == Allow {
		return "allow"
	}
	return "deny"
}

// Decision is the result of a single navigation check.
type Decision struct {
	Outcome  Outcome
	Route    string // route that was requested
	Redirect string // where to go instead, set on Deny
	Err      error  // wraps ErrNotAuthenticated or ErrAuthorizationDenied on Deny
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Target is the route the caller should end up on.
func (d Decision) Target() string {
	if d.Allowed() {
		return d.Route
	}
	return d.Redirect
}

type Session interface {
	IsAuthenticated() bool
}

type RouteAuthorizer interface {
	CanAccessRoute(route string) bool
}

type Notifier interface {
	Error(title, message string, options ...notifications.PublishOption) string
}

// Navigator moves the rendering layer to a route.
type Navigator interface {
	Navigate(route string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route string)

func (f NavigatorFunc) Navigate(route string) { f(route) }

type Guard struct {
	session    Session
	authorizer RouteAuthorizer
	notifier   Notifier
	navigator  Navigator
	loginRoute string
	homeRoute  string
}

// GuardOption modifies a Guard at construction.
type GuardOption func(*Guard)

func WithNavigator(navigator Navigator) GuardOption {
	return func(g *Guard) {
		g.navigator = navigator
	}
}

func WithLoginRoute(route string) GuardOption {
	return func(g *Guard) {
		g.loginRoute = route
	}
}

// WithHomeRoute sets where under-privileged actors are sent.
func WithHomeRoute(route string) GuardOption {
	return func(g *Guard) {
		g.homeRoute = route
	}
}

func New(session Session, authorizer RouteAuthorizer, notifier Notifier, options ...GuardOption) (*Guard, error) {
	if session == nil {
		return nil, pkgerrors.New("[guard.New] session is required")
	}
	if authorizer == nil {
		return nil, pkgerrors.New("[guard.New] authorizer is required")
	}
	if notifier == nil {
		return nil, pkgerrors.New("[guard.New] notifier is required")
	}

	g := &Guard{
		session:    session,
		authorizer: authorizer,
		notifier:   notifier,
		loginRoute: DefaultLoginRoute,
		homeRoute:  DefaultHomeRoute,
	}
	for _, opt := range options {
		opt(g)
	}
	return g, nil
}

// Check evaluates authentication before authorization, so an anonymous
// actor is sent to login without learning that the route is protected.
// An authenticated actor lacking the role gets one error notification and
// is sent home.
func (g *Guard) Check(route string) Decision {
	if !g.session.IsAuthenticated() {
		log.Debug().Str("route", route).Msg("navigation denied, not authenticated")
		return Decision{
			Outcome:  Deny,
			Route:    route,
			Redirect: g.loginRoute,
			Err:      errors.Wrapf(errors.ErrNotAuthenticated, "[Guard.Check] %s", route),
		}
	}

	if g.authorizer.CanAccessRoute(route) {
		return Decision{Outcome: Allow, Route: route}
	}

	log.Debug().Str("route", route).Msg("navigation denied, insufficient role")
	g.notifier.Error(deniedTitle, deniedMessage)
	return Decision{
		Outcome:  Deny,
		Route:    route,
		Redirect: g.homeRoute,
		Err:      errors.Wrapf(errors.ErrAuthorizationDenied, "[Guard.Check] %s", route),
	}
}

// Navigate checks route and sends the navigator to the decision's target.
func (g *Guard) Navigate(route string) Decision {
	decision := g.Check(route)
	if g.navigator != nil {
		g.navigator.Navigate(decision.Target())
	}
	return decision
}
