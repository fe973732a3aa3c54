package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

const orderColumns = `o.id, o.user_id, COALESCE(u.full_name, ''), o.status, o.total, o.shipping_fee, o.address_id,
                      o.payment_method, o.notes, o.tracking_code, o.created_at, o.updated_at`

const orderFrom = ` FROM orders o LEFT JOIN user_profiles u ON u.id = o.user_id`

// OrderRepository implements repository.OrderRepository for Postgres.
type OrderRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewOrderRepository creates a new OrderRepository instance.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts the order and its items.
func (r *OrderRepository) Create(ctx context.Context, order *model.Order) error {
	order.InitMeta()
	executor := getExecutor(r.db, r.txn)

	query := `INSERT INTO orders (id, user_id, status, total, shipping_fee, address_id, payment_method, notes, tracking_code, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := execStatement(ctx, executor, query,
		order.ID, order.UserID, string(order.Status), order.Total, order.ShippingFee, nullableUUID(order.AddressID),
		order.PaymentMethod, order.Notes, order.TrackingCode, order.CreatedAt, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	if len(order.Items) == 0 {
		return nil
	}

	stmt, err := executor.PrepareContext(ctx,
		`INSERT INTO order_items (id, order_id, product_id, product_name, price, quantity) VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New()
		item.OrderID = order.ID
		if _, err := stmt.ExecContext(ctx, item.ID, item.OrderID, item.ProductID, item.ProductName, item.Price, item.Quantity); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	return nil
}

// FindByID retrieves an order with its items.
func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	query := `SELECT ` + orderColumns + orderFrom + ` WHERE o.id = $1`

	var order *model.Order
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, []interface{}{id}, func(row rowScanner) error {
		var err error
		order, err = scanOrder(row)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to query order: %w", err)
	}

	if err := r.loadItems(ctx, []*model.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// List retrieves orders matching query, with their items.
func (r *OrderRepository) List(ctx context.Context, query repository.OrderQuery) ([]*model.Order, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + orderColumns + orderFrom + ` WHERE 1=1`)

	var args []interface{}
	argIndex := 1

	if query.UserID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.user_id = $%d", argIndex))
		args = append(args, *query.UserID)
		argIndex++
	}
	if query.Status != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND o.status = $%d", argIndex))
		args = append(args, string(query.Status))
		argIndex++
	}

	queryBuilder.WriteString(" ORDER BY " + orderOrder(query.Sort))

	page := query.Pagination.Normalized()
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1))
	args = append(args, page.Limit, page.Offset())

	orders := []*model.Order{}
	err := queryRows(ctx, getExecutor(r.db, r.txn), queryBuilder.String(), args, func(rows rowScanner) error {
		order, err := scanOrder(rows)
		if err != nil {
			return err
		}
		orders = append(orders, order)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}

	if err := r.loadItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatus sets the status of an order. A non-empty trackingCode replaces the stored one.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingCode string) error {
	query := `UPDATE orders
	          SET status = $1, tracking_code = CASE WHEN $2 = '' THEN tracking_code ELSE $2 END, updated_at = $3
	          WHERE id = $4`

	result, err := execStatement(ctx, getExecutor(r.db, r.txn), query, string(status), trackingCode, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}

	return affectedOrNotFound(result, "order", id)
}

func (r *OrderRepository) loadItems(ctx context.Context, orders []*model.Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.Order, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, order := range orders {
		order.Items = []model.OrderItem{}
		byID[order.ID] = order
		ids = append(ids, order.ID)
	}

	query := `SELECT id, order_id, product_id, product_name, price, quantity
	          FROM order_items WHERE order_id = ANY($1::uuid[]) ORDER BY order_id, product_name`
	err := queryRows(ctx, getExecutor(r.db, r.txn), query, []interface{}{uuidArray(ids)}, func(rows rowScanner) error {
		var item model.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductName, &item.Price, &item.Quantity); err != nil {
			return err
		}
		if order, ok := byID[item.OrderID]; ok {
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load order items: %w", err)
	}

	return nil
}

func scanOrder(row rowScanner) (*model.Order, error) {
	var (
		order     model.Order
		status    string
		addressID uuid.NullUUID
	)
	err := row.Scan(&order.ID, &order.UserID, &order.CustomerName, &status, &order.Total, &order.ShippingFee, &addressID,
		&order.PaymentMethod, &order.Notes, &order.TrackingCode, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}

	order.Status = model.OrderStatus(status)
	if addressID.Valid {
		id := addressID.UUID
		order.AddressID = &id
	}
	return &order, nil
}

func orderOrder(sort string) string {
	switch sort {
	case "created_at-asc":
		return "o.created_at ASC, o.id ASC"
	case "total-asc":
		return "o.total ASC, o.id ASC"
	case "total-desc":
		return "o.total DESC, o.id DESC"
	default:
		return "o.created_at DESC, o.id DESC"
	}
}
