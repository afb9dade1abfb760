package token

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// Signer signs and verifies session tokens.
type Signer interface {
	Sign(claims jwt.MapClaims) (string, error)

	// VerificationKey is a jwt.Keyfunc
	VerificationKey(token *jwt.Token) (any, error)
}

// HMACSigner signs with a shared HS256 secret.
type HMACSigner struct {
	secret []byte
}

var _ Signer = (*HMACSigner)(nil)

func NewHMACSigner(secret string) (*HMACSigner, error) {
	if secret == "" {
		return nil, errors.New("[NewHMACSigner] secret is required")
	}
	return &HMACSigner{secret: []byte(secret)}, nil
}

func (h *HMACSigner) Sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
	if err != nil {
		return "", errors.Wrap(err, "[HMACSigner.Sign]")
	}
	return signed, nil
}

func (h *HMACSigner) VerificationKey(token *jwt.Token) (any, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.Errorf("[HMACSigner.VerificationKey] unexpected signing method: %v", token.Header["alg"])
	}
	return h.secret, nil
}
