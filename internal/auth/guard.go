package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
)

// Principal is an authenticated caller.
type Principal struct {
	UserID  uuid.UUID
	Name    string
	IsAdmin bool
}

// ProfileFinder looks up user profiles by id.
type ProfileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
}

// Verifier turns a token into a Principal.
type Verifier interface {
	Verify(token string) (Principal, error)
}

// Guard is the single authorization check run before every protected operation.
type Guard struct {
	verifier Verifier
	profiles ProfileFinder
}

// NewGuard creates a Guard.
func NewGuard(verifier Verifier, profiles ProfileFinder) *Guard {
	return &Guard{verifier: verifier, profiles: profiles}
}

// Authenticate resolves the principal behind token. The admin flag is filled
// from the profile when one exists; a missing profile is not an error here.
func (g *Guard) Authenticate(ctx context.Context, token string) (Principal, error) {
	principal, err := g.verifier.Verify(token)
	if err != nil {
		return Principal{}, err
	}

	profile, err := g.profiles.FindByID(ctx, principal.UserID)
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return principal, nil
	case err != nil:
		return Principal{}, apperror.Persistence("find user profile", err)
	}

	principal.IsAdmin = profile.IsAdmin
	if profile.FullName != "" {
		principal.Name = profile.FullName
	}
	return principal, nil
}

// RequireAdmin authenticates token and fails with apperror.ErrForbidden unless
// the principal has a profile flagged as admin.
func (g *Guard) RequireAdmin(ctx context.Context, token string) (Principal, error) {
	principal, err := g.Authenticate(ctx, token)
	if err != nil {
		return Principal{}, err
	}
	if !principal.IsAdmin {
		return Principal{}, fmt.Errorf("user %s: %w", principal.UserID, apperror.ErrForbidden)
	}
	return principal, nil
}

type principalKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// UserFromContext returns the authenticated principal or apperror.ErrUnauthenticated.
func UserFromContext(ctx context.Context) (Principal, error) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return Principal{}, apperror.ErrUnauthenticated
	}
	return p, nil
}

// AdminFromContext returns the principal when it is an admin. Services call it
// first thing in every mutating operation.
func AdminFromContext(ctx context.Context) (Principal, error) {
	p, err := UserFromContext(ctx)
	if err != nil {
		return Principal{}, err
	}
	if !p.IsAdmin {
		return Principal{}, fmt.Errorf("user %s: %w", p.UserID, apperror.ErrForbidden)
	}
	return p, nil
}
