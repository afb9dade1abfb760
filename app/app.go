// Package app wires the session, authorization and notification core together
// from configuration.
package app

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-backoffice-core/apiclient"
	"github.com/jrsteele09/go-backoffice-core/guard"
	"github.com/jrsteele09/go-backoffice-core/internal/config"
	"github.com/jrsteele09/go-backoffice-core/notifications"
	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/jrsteele09/go-backoffice-core/sessions"
	"github.com/jrsteele09/go-backoffice-core/validation"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// App is the single, explicitly constructed set of components shared by
// every feature of the client.
type App struct {
	Config     config.Config
	Client     *apiclient.Client
	Bus        *notifications.Bus
	Store      *sessions.Store
	Authorizer *roles.Authorizer
	Guard      *guard.Guard
	Gateway    *validation.Gateway

	closers []func() error
}

type options struct {
	snapshotRepo sessions.SnapshotRepo
	httpClient   *http.Client
	navigator    guard.Navigator
	busOptions   []notifications.BusOption
}

type Option func(*options)

// WithSnapshotRepo overrides the snapshot store selected by configuration.
func WithSnapshotRepo(repo sessions.SnapshotRepo) Option {
	return func(o *options) {
		o.snapshotRepo = repo
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *options) {
		o.httpClient = httpClient
	}
}

func WithNavigator(navigator guard.Navigator) Option {
	return func(o *options) {
		o.navigator = navigator
	}
}

func WithBusOptions(busOptions ...notifications.BusOption) Option {
	return func(o *options) {
		o.busOptions = append(o.busOptions, busOptions...)
	}
}

// New builds the components in dependency order. The session is restored
// from the snapshot store before New returns.
func New(ctx context.Context, cfg config.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, errors.New("[app.New] config is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg}

	clientOptions := []apiclient.ClientOption{
		apiclient.WithTimeout(cfg.GetAPITimeout()),
		apiclient.WithEndpoints(cfg.GetLoginEndpoint(), cfg.GetLogoutEndpoint(), cfg.GetMeEndpoint()),
	}
	if o.httpClient != nil {
		clientOptions = append(clientOptions, apiclient.WithHTTPClient(o.httpClient))
	}
	client, err := apiclient.New(cfg.GetAPIBaseURL(), clientOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "[app.New] apiclient")
	}
	a.Client = client

	busOptions := append([]notifications.BusOption{
		notifications.WithDefaultDuration(cfg.GetDefaultNotificationDuration()),
		notifications.WithLoginPath(client.LoginPath()),
	}, o.busOptions...)
	a.Bus = notifications.NewBus(busOptions...)
	a.closers = append(a.closers, func() error { a.Bus.Close(); return nil })
	client.UseReporter(a.Bus)

	repo := o.snapshotRepo
	if repo == nil {
		var closeRepo func() error
		repo, closeRepo, err = NewSnapshotRepo(ctx, cfg, cfg)
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "[app.New] snapshot repo")
		}
		a.closers = append(a.closers, closeRepo)
	}

	a.Store, err = sessions.NewStore(ctx, client, repo)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "[app.New] session store")
	}
	client.UseTokenSource(a.Store.TokenSource())

	a.Authorizer, err = roles.NewAuthorizer(a.Store)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "[app.New] authorizer")
	}

	guardOptions := []guard.GuardOption{
		guard.WithLoginRoute(cfg.GetLoginRoute()),
		guard.WithHomeRoute(cfg.GetHomeRoute()),
	}
	if o.navigator != nil {
		guardOptions = append(guardOptions, guard.WithNavigator(o.navigator))
	}
	a.Guard, err = guard.New(a.Store, a.Authorizer, a.Bus, guardOptions...)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "[app.New] guard")
	}

	a.Gateway, err = validation.NewGateway(a.Store, a.Bus)
	if err != nil {
		a.Close()
		return nil, errors.Wrap(err, "[app.New] gateway")
	}

	log.Debug().Bool("authenticated", a.Store.IsAuthenticated()).Str("api", cfg.GetAPIBaseURL()).Msg("app ready")
	return a, nil
}

// Close releases timers and connections. It is safe to call more than once.
func (a *App) Close() error {
	var firstErr error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	a.closers = nil
	return firstErr
}
