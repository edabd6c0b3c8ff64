package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// TokenTTL is the fixed lifetime of a session token.
	TokenTTL = 600 * time.Second

	tokenIssuer   = "studsovet-api"
	tokenAudience = "studsovet-app"
)

// ErrEmptySecret is returned by NewTokenService when no signing secret is
// configured. It is a startup failure: the process must not serve traffic
// without one.
var ErrEmptySecret = errors.New("token signing secret is empty")

// SessionClaims is the JWT payload of a session token: the verified identity
// plus the registered issued-at/expiry/issuer/audience claims.
type SessionClaims struct {
	UserID    int64  `json:"userId"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName,omitempty"`
	jwt.RegisteredClaims
}

// TokenService issues and validates HS256-signed session tokens. Tokens are
// self-contained: validity is established purely by re-verifying signature,
// issuer, audience, and expiry, nothing is stored server-side.
type TokenService struct {
	secret []byte
	now    func() time.Time
}

// NewTokenService constructs a TokenService with the given signing secret.
// An empty secret is a configuration error.
func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenService{secret: []byte(secret), now: time.Now}, nil
}

// Issue signs a session token for the identity. It returns the compact token
// and its lifetime in seconds.
func (s *TokenService) Issue(id Identity) (token string, expiresIn int, err error) {
	now := s.now()
	claims := SessionClaims{
		UserID:    id.UserID,
		Username:  id.Username,
		FirstName: id.FirstName,
		LastName:  id.LastName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", 0, err
	}
	return token, int(TokenTTL / time.Second), nil
}

// Validate verifies a session token and returns the embedded identity, or
// nil if the token is invalid for any reason (bad signature, wrong issuer or
// audience, expired, malformed). It never returns an error: callers treat
// nil as "unauthenticated".
func (s *TokenService) Validate(token string) *Identity {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{},
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || parsed == nil || !parsed.Valid {
		return nil
	}
	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok {
		return nil
	}
	return &Identity{
		UserID:    claims.UserID,
		Username:  claims.Username,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}
}
