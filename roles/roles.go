package roles

import (
	"strings"

	"github.com/jrsteele09/go-backoffice-core/internal/errors"
)

// Role is the authorization role of the current actor.
type Role string

const (
	RoleNone     Role = ""         // No role: unauthenticated actor, or "any authenticated" when required
	RoleAdmin    Role = "ADMIN"    // Full access to every route and CRUD operation
	RoleEmployee Role = "EMPLOYEE" // Day-to-day operations (dashboard, stock, orders)
)

// roleAliases maps wire spellings used by the backend onto Role values.
var roleAliases = map[string]Role{
	"ADMIN":    RoleAdmin,
	"EMPLOYEE": RoleEmployee,
	"EMPLEADO": RoleEmployee,
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// IsValid reports whether r is one of the known actor roles.
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// ParseRole converts a backend role name into a Role. It is case-insensitive,
// strips a "ROLE_" prefix and accepts the "EMPLEADO" spelling.
func ParseRole(s string) (Role, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.TrimPrefix(name, "ROLE_")
	if role, ok := roleAliases[name]; ok {
		return role, nil
	}
	return RoleNone, errors.Wrapf(errors.ErrUnknownRole, "[ParseRole] %q", s)
}

// FirstRole returns the first entry of a backend roles list. Only one role is
// honoured per session, so later entries are ignored.
func FirstRole(names []string) (Role, error) {
	if len(names) == 0 {
		return RoleNone, errors.Wrapf(errors.ErrUnknownRole, "[FirstRole] empty roles list")
	}
	return ParseRole(names[0])
}

// HasPermission evaluates the role hierarchy. ADMIN passes every requirement,
// EMPLOYEE passes RoleNone and EMPLOYEE requirements. An actor without a role
// never passes: unauthenticated actors are rejected before this check.
func HasPermission(actor, required Role) bool {
	switch actor {
	case RoleAdmin:
		return true
	case RoleEmployee:
		return required == RoleNone || required == RoleEmployee
	default:
		return false
	}
}
