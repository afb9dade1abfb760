package users

import (
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/roles"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	SeedAdminUsername    = "admin"
	SeedEmployeeUsername = "empleado"
)

// Seed creates the default administrator and employee accounts when they do
// not exist yet. Existing accounts are left alone.
func Seed(repo UserRepo, adminPassword, employeePassword string) error {
	seeds := []struct {
		username string
		password string
		role     roles.Role
	}{
		{SeedAdminUsername, adminPassword, roles.RoleAdmin},
		{SeedEmployeeUsername, employeePassword, roles.RoleEmployee},
	}

	for _, seed := range seeds {
		_, err := repo.GetByUsername(seed.username)
		if err == nil {
			continue
		}
		if !errors.Is(err, errors.ErrNotFound) {
			return pkgerrors.Wrapf(err, "[users.Seed] GetByUsername %s", seed.username)
		}

		user, err := New(seed.username, seed.password, seed.role)
		if err != nil {
			return pkgerrors.Wrapf(err, "[users.Seed] %s", seed.username)
		}
		if err := repo.Upsert(user); err != nil {
			return pkgerrors.Wrapf(err, "[users.Seed] Upsert %s", seed.username)
		}
		log.Info().Str("username", seed.username).Stringer("role", seed.role).Msg("seeded user")
	}
	return nil
}
