package users

import (
	"time"

	"github.com/jrsteele09/go-backoffice-core/roles"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

// User is an account of the reference backend.
type User struct {
	ID           string     `json:"id,omitempty"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // never serialised
	DisplayName  string     `json:"displayName,omitempty"`
	Role         roles.Role `json:"role"`
	Blocked      bool       `json:"blocked,omitempty"`
	DateJoined   time.Time  `json:"dateJoined,omitempty"`
	LastLogin    time.Time  `json:"lastLogin,omitempty"`
}

// New creates a user with a hashed password.
func New(username, password string, role roles.Role) (*User, error) {
	if username == "" {
		return nil, errors.New("[users.New] username is required")
	}
	if !role.IsValid() {
		return nil, errors.Errorf("[users.New] invalid role %q", role)
	}
	hash, err := HashPassword(password)
	if err != nil {
		return nil, errors.Wrap(err, "[users.New] HashPassword")
	}
	return &User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  username,
		Role:         role,
		DateJoined:   time.Now(),
	}, nil
}

// WireRoles is the roles list returned to clients. The backend only ever
// assigns one role, but the wire format carries a list.
func (u *User) WireRoles() []string {
	return []string{string(u.Role)}
}

func (u *User) CheckPassword(password string) bool {
	return CheckPasswordHash(password, u.PasswordHash)
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
