package sessions

import "github.com/jrsteele09/go-backoffice-core/roles"

// State is the authentication state of the current actor.
// Role is set iff Authenticated; Token is only present while Authenticated.
type State struct {
	Authenticated bool
	Role          roles.Role
	Username      string
	Token         string // opaque, forwarded to the backend and never parsed
}

// Identity is the part of State broadcast to subscribers. The token is left out.
type Identity struct {
	Authenticated bool
	Role          roles.Role
	Username      string
}

func (s State) Identity() Identity {
	return Identity{Authenticated: s.Authenticated, Role: s.Role, Username: s.Username}
}

// Valid reports whether s satisfies the session invariants.
func (s State) Valid() bool {
	if !s.Authenticated {
		return s.Role == roles.RoleNone && s.Token == "" && s.Username == ""
	}
	return s.Role.IsValid()
}
