package server

import (
	"strings"

	"github.com/jrsteele09/go-backoffice-core/internal/config"
	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/jrsteele09/go-backoffice-core/server/resourcerepo"
	"github.com/jrsteele09/go-backoffice-core/token"
	"github.com/jrsteele09/go-backoffice-core/users"
	fakeuserrepo "github.com/jrsteele09/go-backoffice-core/users/repofake"
	"github.com/pkg/errors"
)

// CatalogResources returns one resource name per catalog route, leaving out
// the dashboard which has no backing data.
func CatalogResources(catalog []roles.MenuOption) []string {
	resources := make([]string, 0, len(catalog))
	for _, option := range catalog {
		route := roles.NormalizeRoute(option.Route)
		if route == roles.RouteHome {
			continue
		}
		resources = append(resources, strings.TrimPrefix(route, "/"))
	}
	return resources
}

// NewInMemory builds a Server with seeded in-memory users, HMAC signed tokens
// and an in-memory resource per catalog route.
func NewInMemory(cfg config.Config) (*Server, error) {
	userRepo := fakeuserrepo.NewFakeUserRepo()
	if err := users.Seed(userRepo, cfg.GetSeedAdminPassword(), cfg.GetSeedEmployeePassword()); err != nil {
		return nil, errors.Wrap(err, "[server.NewInMemory] seed users")
	}

	signer, err := token.NewHMACSigner(cfg.GetJWTSecret())
	if err != nil {
		return nil, errors.Wrap(err, "[server.NewInMemory]")
	}
	tokens, err := token.New(signer, token.WithTokenExpiry(cfg.GetAccessTokenExpiry()))
	if err != nil {
		return nil, errors.Wrap(err, "[server.NewInMemory]")
	}

	resources := resourcerepo.NewInMemoryRepo(CatalogResources(roles.DefaultCatalog())...)
	return New(cfg, userRepo, tokens, resources)
}
