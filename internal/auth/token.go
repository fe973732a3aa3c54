// Package auth resolves the calling identity from a bearer token and decides
// whether it may perform admin operations.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
)

var (
	// ErrInvalidToken is returned when the token is malformed, badly signed or has a bad subject.
	ErrInvalidToken = fmt.Errorf("invalid token: %w", apperror.ErrUnauthenticated)
	// ErrExpiredToken is returned when the token has expired.
	ErrExpiredToken = fmt.Errorf("token has expired: %w", apperror.ErrUnauthenticated)
	// ErrMissingToken is returned when the request carries no token at all.
	ErrMissingToken = fmt.Errorf("missing token: %w", apperror.ErrUnauthenticated)
)

// Claims are the identity token claims. Subject holds the user id.
type Claims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenVerifier validates HS256 identity tokens issued by the identity provider.
type TokenVerifier struct {
	secret []byte
	issuer string
}

// NewTokenVerifier creates a verifier for tokens signed with secret. An empty
// issuer accepts any issuer.
func NewTokenVerifier(secret, issuer string) *TokenVerifier {
	return &TokenVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify checks the token signature and expiry and returns the caller's identity.
func (v *TokenVerifier) Verify(tokenString string) (Principal, error) {
	if tokenString == "" {
		return Principal{}, ErrMissingToken
	}

	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Principal{}, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	return Principal{UserID: userID, Name: claims.Name}, nil
}

// Issue signs a token for userID valid for ttl. It is used by tooling and
// tests; production tokens come from the identity provider.
func (v *TokenVerifier) Issue(userID uuid.UUID, name string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    v.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(v.secret)
}
