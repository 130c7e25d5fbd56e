package utils // package utils provides helpers for issuing API tokens

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is used when NewAccessToken is given a non-positive TTL.
const DefaultTokenTTL = time.Hour

// AccessToken is a signed HS256 JWT together with its expiry. The movies API
// only looks at the subject claim, so no role or refresh pairing is issued.
type AccessToken struct {
	Token string
	Exp   time.Time
}

// NewAccessToken signs a token for subject with the shared JWT secret. It is
// the same secret the JWTAuth middleware verifies against.
func NewAccessToken(secret, subject string, ttl time.Duration) (AccessToken, error) {
	if secret == "" {
		return AccessToken{}, errors.New("jwt secret is empty")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return AccessToken{}, errors.New("token subject is empty")
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": exp.Unix(),
		"iat": now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
