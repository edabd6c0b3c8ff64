package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService("test-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func TestNewTokenService_EmptySecret(t *testing.T) {
	if _, err := NewTokenService(""); !errors.Is(err, ErrEmptySecret) {
		t.Fatalf("expected ErrEmptySecret, got %v", err)
	}
}

func TestToken_RoundTrip(t *testing.T) {
	svc := newTestTokenService(t)
	id := Identity{UserID: 42, Username: "rogue", FirstName: "Andrew", LastName: "Rogue"}

	token, expiresIn, err := svc.Issue(id)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if expiresIn != 600 {
		t.Fatalf("expiresIn = %d, want 600", expiresIn)
	}

	got := svc.Validate(token)
	if got == nil {
		t.Fatal("Validate returned nil for fresh token")
	}
	if got.UserID != 42 || got.Username != "rogue" || got.FirstName != "Andrew" || got.LastName != "Rogue" {
		t.Fatalf("identity mismatch: %+v", got)
	}
}

func TestToken_ExpiredAfterTTL(t *testing.T) {
	svc := newTestTokenService(t)
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issuedAt }

	token, _, err := svc.Issue(Identity{UserID: 7, FirstName: "B"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	svc.now = func() time.Time { return issuedAt.Add(TokenTTL + time.Second) }
	if got := svc.Validate(token); got != nil {
		t.Fatalf("expected nil for expired token, got %+v", got)
	}
}

func TestToken_WrongSecret(t *testing.T) {
	issuer := newTestTokenService(t)
	token, _, err := issuer.Issue(Identity{UserID: 1, FirstName: "A"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, err := NewTokenService("another-secret")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	if got := other.Validate(token); got != nil {
		t.Fatalf("expected nil for token signed with a different secret, got %+v", got)
	}
}

func TestToken_WrongIssuerOrAudience(t *testing.T) {
	svc := newTestTokenService(t)
	now := time.Now()

	cases := map[string]SessionClaims{
		"wrong issuer": {
			UserID: 1, FirstName: "A",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    "someone-else",
				Audience:  jwt.ClaimStrings{tokenAudience},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			},
		},
		"wrong audience": {
			UserID: 1, FirstName: "A",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    tokenIssuer,
				Audience:  jwt.ClaimStrings{"some-other-app"},
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
			},
		},
		"no expiry": {
			UserID: 1, FirstName: "A",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:   tokenIssuer,
				Audience: jwt.ClaimStrings{tokenAudience},
				IssuedAt: jwt.NewNumericDate(now),
			},
		},
	}

	for name, claims := range cases {
		t.Run(name, func(t *testing.T) {
			token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
			if err != nil {
				t.Fatalf("sign: %v", err)
			}
			if got := svc.Validate(token); got != nil {
				t.Fatalf("expected nil, got %+v", got)
			}
		})
	}
}

func TestToken_GarbageNeverPanics(t *testing.T) {
	svc := newTestTokenService(t)
	for _, tok := range []string{"", "not.a.jwt", "a.b", "...."} {
		if got := svc.Validate(tok); got != nil {
			t.Fatalf("expected nil for %q, got %+v", tok, got)
		}
	}
}
