package sql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/shopspring/decimal"
)

// WishlistRepository implements repository.WishlistRepository for Postgres.
type WishlistRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewWishlistRepository creates a new WishlistRepository instance.
func NewWishlistRepository(db *sql.DB) *WishlistRepository {
	return &WishlistRepository{db: db}
}

// Add saves a product for the user. Adding the same product twice is a no-op.
func (r *WishlistRepository) Add(ctx context.Context, item *model.WishlistItem) error {
	item.InitMeta()

	query := `INSERT INTO wishlist_items (id, user_id, product_id, created_at) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (user_id, product_id) DO NOTHING`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query, item.ID, item.UserID, item.ProductID, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert wishlist item: %w", err)
	}

	return nil
}

// ListByUser returns the user's saved active products, newest first, with their first image.
func (r *WishlistRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.WishlistItem, error) {
	query := `SELECT w.id, w.user_id, w.product_id, w.created_at, p.name, p.slug, p.price, p.discount_price,
	                 COALESCE((SELECT i.url FROM product_images i WHERE i.product_id = p.id ORDER BY i.display_order LIMIT 1), '')
	          FROM wishlist_items w JOIN products p ON p.id = w.product_id
	          WHERE w.user_id = $1 AND p.deleted_at IS NULL
	          ORDER BY w.created_at DESC`

	items := []*model.WishlistItem{}
	err := queryRows(ctx, getExecutor(r.db, r.txn), query, []interface{}{userID}, func(rows rowScanner) error {
		var (
			item     model.WishlistItem
			discount decimal.NullDecimal
		)
		if err := rows.Scan(&item.ID, &item.UserID, &item.ProductID, &item.CreatedAt,
			&item.ProductName, &item.ProductSlug, &item.Price, &discount, &item.Image); err != nil {
			return err
		}
		item.DiscountPrice = discount
		items = append(items, &item)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}

	return items, nil
}

// Remove deletes a saved product. Removing a product that is not saved is a no-op.
func (r *WishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	_, err := execStatement(ctx, getExecutor(r.db, r.txn),
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to delete wishlist item: %w", err)
	}
	return nil
}
