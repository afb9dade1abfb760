package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-backoffice-core/internal/errors"
	"github.com/jrsteele09/go-backoffice-core/internal/utils"
	"github.com/jrsteele09/go-backoffice-core/users"
	pkgerrors "github.com/pkg/errors"
)

const defaultIssuer = "backoffice-api"

// Claims is the verified content of a session token.
type Claims struct {
	ID        string // jti
	Subject   string // user id
	Username  string
	Roles     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Manager issues, verifies and revokes the bearer tokens of the reference backend.
type Manager struct {
	signer            Signer
	issuer            string
	revoked           RevokedTokenCache
	accessTokenExpiry time.Duration
	nowFunc           func() time.Time
}

type ManagerOption func(*Manager)

func WithTokenExpiry(accessTokenExpiry time.Duration) ManagerOption {
	return func(m *Manager) {
		m.accessTokenExpiry = accessTokenExpiry
	}
}

func WithNowFunc(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.nowFunc = now
	}
}

func WithIssuer(issuer string) ManagerOption {
	return func(m *Manager) {
		m.issuer = issuer
	}
}

func WithRevokedTokenCache(cache RevokedTokenCache) ManagerOption {
	return func(m *Manager) {
		m.revoked = cache
	}
}

func New(signer Signer, options ...ManagerOption) (*Manager, error) {
	if signer == nil {
		return nil, pkgerrors.New("[token.New] signer is required")
	}
	m := &Manager{
		signer:            signer,
		issuer:            defaultIssuer,
		revoked:           NewInMemoryRevokedTokenCache(),
		accessTokenExpiry: 10 * time.Hour,
		nowFunc:           time.Now,
	}
	for _, opt := range options {
		opt(m)
	}
	return m, nil
}

func (m *Manager) AccessTokenExpiry() time.Duration {
	return m.accessTokenExpiry
}

// Issue creates a signed token for user.
func (m *Manager) Issue(user *users.User) (string, error) {
	now := m.nowFunc()
	claims := jwt.MapClaims{
		"iss":      m.issuer,
		"sub":      user.ID,
		"username": user.Username,
		"roles":    user.WireRoles(),
		"iat":      now.Unix(),
		"exp":      now.Add(m.accessTokenExpiry).Unix(),
		"jti":      uuid.New().String(),
	}
	signed, err := m.signer.Sign(claims)
	if err != nil {
		return "", pkgerrors.Wrap(err, "[Manager.Issue]")
	}
	return signed, nil
}

// Verify checks signature, issuer, expiry and revocation. Any failure wraps
// errors.ErrNotAuthenticated.
func (m *Manager) Verify(rawToken string) (*Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "[Manager.Verify] empty token")
	}

	parsed, err := jwt.Parse(rawToken, m.signer.VerificationKey,
		jwt.WithIssuer(m.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.nowFunc),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "[Manager.Verify] %v", err)
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "[Manager.Verify] unexpected claims type")
	}
	claims := claimsFrom(mapClaims)
	if claims.ID == "" {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "[Manager.Verify] missing jti")
	}
	if m.revoked.IsRevoked(claims.ID) {
		return nil, errors.Wrapf(errors.ErrNotAuthenticated, "[Manager.Verify] token revoked")
	}
	return claims, nil
}

// Revoke verifies rawToken and blocks it until it expires.
func (m *Manager) Revoke(rawToken string) error {
	claims, err := m.Verify(rawToken)
	if err != nil {
		return pkgerrors.Wrap(err, "[Manager.Revoke]")
	}
	m.revoked.Add(claims.ID, claims.ExpiresAt)
	return nil
}

// CleanupRevokedTokens drops revocations for tokens that have expired.
func (m *Manager) CleanupRevokedTokens() int {
	return m.revoked.Cleanup(m.nowFunc())
}

func claimsFrom(mapClaims jwt.MapClaims) *Claims {
	claims := &Claims{}
	claims.ID, _ = mapClaims["jti"].(string)
	claims.Subject, _ = mapClaims.GetSubject()
	claims.Username, _ = mapClaims["username"].(string)
	if rawRoles, ok := mapClaims["roles"].([]any); ok {
		claims.Roles = utils.ToStringSlice(rawRoles)
	}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		claims.IssuedAt = iat.Time
	}
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		claims.ExpiresAt = exp.Time
	}
	return claims
}
