package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/repository/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewAuditLogRepository(db)
	ctx := context.Background()

	t.Run("system action has no user", func(t *testing.T) {
		recordID := uuid.New()
		entry := &model.AuditLog{
			Action:    model.AuditActionRestore,
			TableName: model.TableProducts,
			RecordID:  recordID,
			Details:   model.ProductDetails("Colar"),
		}

		mock.ExpectPrepare("INSERT INTO audit_logs").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), nil, "restore", "products", recordID, []byte(`{"product_name":"Colar"}`), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Create(ctx, entry))
		assert.NotEqual(t, uuid.Nil, entry.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuditLogRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewAuditLogRepository(db)
	ctx := context.Background()
	columns := []string{"id", "user_id", "full_name", "action", "table_name", "record_id", "details", "created_at"}

	t.Run("all filters, newest first", func(t *testing.T) {
		recordID := uuid.New()
		userID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(columns).
			AddRow(uuid.New().String(), userID.String(), "Ana Admin", "delete", "products", recordID.String(), []byte(`{"product_name":"Anel"}`), now).
			AddRow(uuid.New().String(), nil, "", "create", "products", recordID.String(), nil, now.Add(-time.Hour))

		mock.ExpectPrepare("LEFT JOIN user_profiles u ON u.id = a.user_id WHERE 1=1 AND a.table_name = \\$1 AND a.action = \\$2 AND a.record_id = \\$3 ORDER BY a.created_at DESC, a.id DESC LIMIT \\$4 OFFSET \\$5").
			ExpectQuery().
			WithArgs("products", "delete", recordID, 50, 0).
			WillReturnRows(rows)

		entries, err := repo.List(ctx, repository.AuditQuery{
			TableName:  model.TableProducts,
			Action:     model.AuditActionDelete,
			RecordID:   &recordID,
			Pagination: repository.Pagination{Page: 1, Limit: 50},
		})

		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "Ana Admin", entries[0].Actor())
		assert.Equal(t, "Anel", entries[0].Details.String(model.DetailProductName))
		assert.Nil(t, entries[1].UserID)
		assert.Equal(t, "system", entries[1].Actor())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no filters", func(t *testing.T) {
		mock.ExpectPrepare("FROM audit_logs a LEFT JOIN user_profiles u ON u.id = a.user_id WHERE 1=1 ORDER BY").
			ExpectQuery().
			WithArgs(repository.DefaultPaginationLimit, 0).
			WillReturnRows(sqlmock.NewRows(columns))

		entries, err := repo.List(ctx, repository.AuditQuery{})

		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
