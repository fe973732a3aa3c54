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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{
	"id", "user_id", "full_name", "status", "total", "shipping_fee", "address_id",
	"payment_method", "notes", "tracking_code", "created_at", "updated_at",
}

func TestOrderRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewOrderRepository(db)
	ctx := context.Background()
	productID := uuid.New()

	order := &model.Order{
		UserID:        uuid.New(),
		Total:         decimal.RequireFromString("215.00"),
		ShippingFee:   decimal.RequireFromString("15.00"),
		PaymentMethod: "pix",
		Items: []model.OrderItem{
			{ProductID: productID, ProductName: "Anel", Price: decimal.NewFromInt(100), Quantity: 2},
		},
	}

	mock.ExpectPrepare("INSERT INTO orders").
		ExpectExec().
		WithArgs(sqlmock.AnyArg(), order.UserID, "pending", order.Total, order.ShippingFee, nil,
			"pix", "", "", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectPrepare("INSERT INTO order_items").
		ExpectExec().
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), productID, "Anel", decimal.NewFromInt(100), 2).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(ctx, order))
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, order.ID, order.Items[0].OrderID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewOrderRepository(db)
	ctx := context.Background()

	t.Run("order with items", func(t *testing.T) {
		id := uuid.New()
		now := time.Now()

		mock.ExpectPrepare("FROM orders o LEFT JOIN user_profiles u ON u.id = o.user_id WHERE o.id = \\$1").
			ExpectQuery().
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(orderRowColumns).
				AddRow(id.String(), uuid.New().String(), "Bruna", "shipped", "115.00", "15.00", nil, "card", "", "BR123", now, now))
		mock.ExpectPrepare("FROM order_items WHERE order_id = ANY").
			ExpectQuery().
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "product_name", "price", "quantity"}).
				AddRow(uuid.New().String(), id.String(), uuid.New().String(), "Brinco", "100.00", 1))

		order, err := repo.FindByID(ctx, id)
		require.NoError(t, err)

		assert.Equal(t, model.OrderStatusShipped, order.Status)
		assert.Equal(t, "Bruna", order.CustomerName)
		assert.Nil(t, order.AddressID)
		require.Len(t, order.Items, 1)
		assert.Equal(t, "100", order.Subtotal().String())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("order not found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectPrepare("FROM orders o").
			ExpectQuery().
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(orderRowColumns))

		_, err := repo.FindByID(ctx, id)
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewOrderRepository(db)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectPrepare("WHERE 1=1 AND o.user_id = \\$1 AND o.status = \\$2 ORDER BY o.total DESC, o.id DESC LIMIT \\$3 OFFSET \\$4").
		ExpectQuery().
		WithArgs(userID, "pending", repository.DefaultPaginationLimit, 0).
		WillReturnRows(sqlmock.NewRows(orderRowColumns))

	orders, err := repo.List(ctx, repository.OrderQuery{UserID: &userID, Status: model.OrderStatusPending, Sort: "total-desc"})
	require.NoError(t, err)
	assert.Empty(t, orders)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewOrderRepository(db)
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectPrepare("UPDATE orders").
			ExpectExec().
			WithArgs("shipped", "BR123", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.UpdateStatus(ctx, id, model.OrderStatusShipped, "BR123"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing order", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectPrepare("UPDATE orders").
			ExpectExec().
			WithArgs("canceled", "", sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, id, model.OrderStatusCanceled, "")
		assert.ErrorIs(t, err, apperror.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
