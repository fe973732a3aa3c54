package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockProfileFinder struct {
	mock.Mock
}

func (m *MockProfileFinder) FindByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProfile), args.Error(1)
}

func TestTokenVerifier_Verify(t *testing.T) {
	verifier := auth.NewTokenVerifier("test-secret", "storefront")
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token, err := verifier.Issue(userID, "Ana", time.Hour)
		require.NoError(t, err)

		principal, err := verifier.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, userID, principal.UserID)
		assert.Equal(t, "Ana", principal.Name)
		assert.False(t, principal.IsAdmin)
	})

	t.Run("missing token", func(t *testing.T) {
		_, err := verifier.Verify("")
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
		assert.ErrorIs(t, err, auth.ErrMissingToken)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := verifier.Issue(userID, "Ana", -time.Minute)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, auth.ErrExpiredToken)
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := auth.NewTokenVerifier("other-secret", "storefront").Issue(userID, "", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		token, err := auth.NewTokenVerifier("test-secret", "someone-else").Issue(userID, "", time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("subject is not a uuid", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: "user-123", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)), Issuer: "storefront"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})

	t.Run("signing method none is rejected", func(t *testing.T) {
		claims := jwt.RegisteredClaims{Subject: userID.String(), Issuer: "storefront"}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, auth.ErrInvalidToken)
	})
}

func TestGuard_RequireAdmin(t *testing.T) {
	ctx := context.Background()
	verifier := auth.NewTokenVerifier("test-secret", "")
	userID := uuid.New()
	token, err := verifier.Issue(userID, "", time.Hour)
	require.NoError(t, err)

	t.Run("admin profile", func(t *testing.T) {
		profiles := new(MockProfileFinder)
		profiles.On("FindByID", ctx, userID).Return(&model.UserProfile{ID: userID, FullName: "Ana Admin", IsAdmin: true}, nil)

		principal, err := auth.NewGuard(verifier, profiles).RequireAdmin(ctx, token)
		require.NoError(t, err)
		assert.True(t, principal.IsAdmin)
		assert.Equal(t, "Ana Admin", principal.Name)
		profiles.AssertExpectations(t)
	})

	t.Run("non-admin profile is forbidden", func(t *testing.T) {
		profiles := new(MockProfileFinder)
		profiles.On("FindByID", ctx, userID).Return(&model.UserProfile{ID: userID}, nil)

		_, err := auth.NewGuard(verifier, profiles).RequireAdmin(ctx, token)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("missing profile is forbidden", func(t *testing.T) {
		profiles := new(MockProfileFinder)
		profiles.On("FindByID", ctx, userID).Return(nil, apperror.NotFound("user profile", userID))

		_, err := auth.NewGuard(verifier, profiles).RequireAdmin(ctx, token)
		assert.ErrorIs(t, err, apperror.ErrForbidden)
	})

	t.Run("profile lookup failure", func(t *testing.T) {
		profiles := new(MockProfileFinder)
		profiles.On("FindByID", ctx, userID).Return(nil, errors.New("connection reset"))

		_, err := auth.NewGuard(verifier, profiles).RequireAdmin(ctx, token)
		assert.ErrorIs(t, err, apperror.ErrPersistence)
	})

	t.Run("invalid token never reaches the profile lookup", func(t *testing.T) {
		profiles := new(MockProfileFinder)

		_, err := auth.NewGuard(verifier, profiles).RequireAdmin(ctx, "garbage")
		assert.ErrorIs(t, err, apperror.ErrUnauthenticated)
		profiles.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func TestAdminFromContext(t *testing.T) {
	ctx := context.Background()

	_, err := auth.AdminFromContext(ctx)
	assert.ErrorIs(t, err, apperror.ErrUnauthenticated)

	_, err = auth.AdminFromContext(auth.WithPrincipal(ctx, auth.Principal{UserID: uuid.New()}))
	assert.ErrorIs(t, err, apperror.ErrForbidden)

	admin := auth.Principal{UserID: uuid.New(), IsAdmin: true}
	got, err := auth.AdminFromContext(auth.WithPrincipal(ctx, admin))
	require.NoError(t, err)
	assert.Equal(t, admin, got)
}
