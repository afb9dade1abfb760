package sessions

import (
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"golang.org/x/oauth2"
)

// TokenSource exposes the session token as a Bearer oauth2.Token. It reads the
// live session on every call, so a logout takes effect immediately.
func (s *Store) TokenSource() oauth2.TokenSource {
	return storeTokenSource{store: s}
}

type storeTokenSource struct {
	store *Store
}

func (ts storeTokenSource) Token() (*oauth2.Token, error) {
	token := ts.store.Token()
	if token == "" {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "[TokenSource.Token]")
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
