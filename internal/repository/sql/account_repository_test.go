package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/repository/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserProfileRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewUserProfileRepository(db)
	ctx := context.Background()
	columns := []string{"id", "full_name", "phone", "is_admin", "created_at", "updated_at"}

	t.Run("find by id", func(t *testing.T) {
		// given
		id := uuid.New()
		now := time.Now()
		mock.ExpectPrepare("FROM user_profiles WHERE id = \\$1").
			ExpectQuery().
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns).AddRow(id.String(), "Ana Admin", "+55 11 99999-0000", true, now, now))

		// when
		profile, err := repo.FindByID(ctx, id)

		// then
		require.NoError(t, err)
		assert.Equal(t, "Ana Admin", profile.FullName)
		assert.True(t, profile.IsAdmin)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing profile is not found", func(t *testing.T) {
		// given
		id := uuid.New()
		mock.ExpectPrepare("FROM user_profiles WHERE id = \\$1").
			ExpectQuery().
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(columns))

		// when
		_, err := repo.FindByID(ctx, id)

		// then
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list paginates newest first", func(t *testing.T) {
		// given
		mock.ExpectPrepare("FROM user_profiles ORDER BY created_at DESC, id DESC LIMIT \\$1 OFFSET \\$2").
			ExpectQuery().
			WithArgs(5, 5).
			WillReturnRows(sqlmock.NewRows(columns))

		// when
		profiles, err := repo.List(ctx, repository.NewPagination(2, 5))

		// then
		require.NoError(t, err)
		assert.NotNil(t, profiles)
		assert.Empty(t, profiles)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAddressRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewAddressRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("create assigns an id", func(t *testing.T) {
		// given
		address := &model.Address{
			UserID:     userID,
			Recipient:  "Carla Cliente",
			Street:     "Rua das Flores",
			Number:     "120",
			City:       "São Paulo",
			State:      "SP",
			PostalCode: "01310-100",
			IsDefault:  true,
		}
		mock.ExpectPrepare("INSERT INTO addresses").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), userID, "Carla Cliente", "Rua das Flores", "120", "", "", "São Paulo", "SP", "01310-100", true, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// when
		err := repo.Create(ctx, address)

		// then
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, address.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("clear default only touches the user's rows", func(t *testing.T) {
		// given
		mock.ExpectPrepare("UPDATE addresses SET is_default = FALSE WHERE user_id = \\$1").
			ExpectExec().
			WithArgs(userID).
			WillReturnResult(sqlmock.NewResult(0, 2))

		// when
		err := repo.ClearDefault(ctx, userID)

		// then
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update overwrites the user's address", func(t *testing.T) {
		// given
		id := uuid.New()
		createdAt := time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)
		address := &model.Address{
			ID:           id,
			UserID:       userID,
			Recipient:    "Carla Cliente",
			Street:       "Avenida Paulista",
			Number:       "1578",
			Complement:   "Apto 42",
			Neighborhood: "Bela Vista",
			City:         "São Paulo",
			State:        "SP",
			PostalCode:   "01310-200",
		}
		mock.ExpectPrepare("UPDATE addresses SET (.+) WHERE id = \\$1 AND user_id = \\$2 RETURNING created_at").
			ExpectQuery().
			WithArgs(id, userID, "Carla Cliente", "Avenida Paulista", "1578", "Apto 42", "Bela Vista", "São Paulo", "SP", "01310-200", false).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		// when
		err := repo.Update(ctx, address)

		// then
		require.NoError(t, err)
		assert.Equal(t, createdAt, address.CreatedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("updating someone else's address is not found", func(t *testing.T) {
		// given
		id := uuid.New()
		mock.ExpectPrepare("UPDATE addresses SET (.+) WHERE id = \\$1 AND user_id = \\$2").
			ExpectQuery().
			WithArgs(id, userID, "Carla Cliente", "", "", "", "", "", "", "", false).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}))

		// when
		err := repo.Update(ctx, &model.Address{ID: id, UserID: userID, Recipient: "Carla Cliente"})

		// then
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deleting someone else's address is not found", func(t *testing.T) {
		// given
		id := uuid.New()
		mock.ExpectPrepare("DELETE FROM addresses WHERE id = \\$1 AND user_id = \\$2").
			ExpectExec().
			WithArgs(id, userID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// when
		err := repo.Delete(ctx, userID, id)

		// then
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestWishlistRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewWishlistRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	t.Run("add ignores duplicates", func(t *testing.T) {
		// given
		productID := uuid.New()
		mock.ExpectPrepare("INSERT INTO wishlist_items (.+) ON CONFLICT \\(user_id, product_id\\) DO NOTHING").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), userID, productID, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// when
		err := repo.Add(ctx, &model.WishlistItem{UserID: userID, ProductID: productID})

		// then
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("list joins active products", func(t *testing.T) {
		// given
		productID := uuid.New()
		mock.ExpectPrepare("FROM wishlist_items w JOIN products p ON p.id = w.product_id (.+) p.deleted_at IS NULL").
			ExpectQuery().
			WithArgs(userID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "product_id", "created_at", "name", "slug", "price", "discount_price", "image"}).
				AddRow(uuid.New().String(), userID.String(), productID.String(), time.Now(), "Anel Solitário", "anel-solitario", "899.00", nil, "https://cdn.example.com/anel.jpg"))

		// when
		items, err := repo.ListByUser(ctx, userID)

		// then
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, productID, items[0].ProductID)
		assert.Equal(t, "anel-solitario", items[0].ProductSlug)
		assert.Equal(t, "899", items[0].Price.String())
		assert.False(t, items[0].DiscountPrice.Valid)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
