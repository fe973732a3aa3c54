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
	"github.com/shopspring/decimal"
)

const (
	productColumns = `p.id, p.name, p.slug, p.description, p.price, p.discount_price, p.category_id,
	                  p.stock, p.featured, p.deleted_at, p.created_at, p.updated_at, c.id, c.name, c.slug`
	productFrom = ` p LEFT JOIN categories c ON c.id = p.category_id`
)

// ProductRepository implements repository.ProductRepository for Postgres.
type ProductRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewProductRepository creates a new ProductRepository instance.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) executor() dbExecutor {
	return getExecutor(r.db, r.txn)
}

// Create inserts a new product row. Images and specifications are written separately.
func (r *ProductRepository) Create(ctx context.Context, product *model.Product) error {
	// Only initialize metadata if not already set
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	query := `INSERT INTO products (id, name, slug, description, price, discount_price, category_id, stock, featured, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := execStatement(ctx, r.executor(), query,
		product.ID, product.Name, product.Slug, product.Description, product.Price, product.DiscountPrice,
		product.CategoryID, product.Stock, product.Featured, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert product: %w", uniqueViolation(err))
	}

	return nil
}

// Update overwrites the scalar columns of an existing product. Slug and deletion marker are left untouched.
func (r *ProductRepository) Update(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now().UTC()

	query := `UPDATE products
	          SET name = $1, description = $2, price = $3, discount_price = $4, category_id = $5,
	              stock = $6, featured = $7, updated_at = $8
	          WHERE id = $9`

	result, err := execStatement(ctx, r.executor(), query,
		product.Name, product.Description, product.Price, product.DiscountPrice, product.CategoryID,
		product.Stock, product.Featured, product.UpdatedAt, product.ID)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	return affectedOrNotFound(result, "product", product.ID)
}

// FindByID retrieves a single product by ID, deleted or not.
func (r *ProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products` + productFrom + ` WHERE p.id = $1`
	return r.findOne(ctx, query, "product", id)
}

// FindBySlug retrieves a single active product by slug.
func (r *ProductRepository) FindBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products` + productFrom + ` WHERE p.slug = $1 AND p.deleted_at IS NULL`
	return r.findOne(ctx, query, "product", slug)
}

func (r *ProductRepository) findOne(ctx context.Context, query, kind string, key interface{}) (*model.Product, error) {
	var product *model.Product
	err := queryRow(ctx, r.executor(), query, []interface{}{key}, func(row rowScanner) error {
		var err error
		product, err = scanProduct(row)
		return err
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound(kind, key)
		}
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	if err := r.loadChildren(ctx, []*model.Product{product}); err != nil {
		return nil, err
	}
	return product, nil
}

// FindByIDs returns the existing rows among ids. Images and specifications are not loaded.
func (r *ProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + productColumns + ` FROM products` + productFrom +
		` WHERE p.id = ANY($1::uuid[]) ORDER BY p.created_at DESC, p.id DESC`

	var products []*model.Product
	err := queryRows(ctx, r.executor(), query, []interface{}{uuidArray(ids)}, func(rows rowScanner) error {
		product, err := scanProduct(rows)
		if err != nil {
			return err
		}
		products = append(products, product)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}

	return products, nil
}

// List retrieves products from the database based on the provided query.
func (r *ProductRepository) List(ctx context.Context, query repository.ProductQuery) ([]*model.Product, error) {
	source := "products"
	if query.IncludeDeleted || query.OnlyDeleted {
		source = "all_products"
	}

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + productColumns + ` FROM ` + source + productFrom + ` WHERE 1=1`)

	var args []interface{}
	argIndex := 1

	switch {
	case query.OnlyDeleted:
		queryBuilder.WriteString(" AND p.deleted_at IS NOT NULL")
	case !query.IncludeDeleted:
		queryBuilder.WriteString(" AND p.deleted_at IS NULL")
	}

	if query.CategorySlug != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND c.slug = $%d", argIndex))
		args = append(args, query.CategorySlug)
		argIndex++
	}

	if query.Featured != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND p.featured = $%d", argIndex))
		args = append(args, *query.Featured)
		argIndex++
	}

	if query.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (p.name ILIKE $%d OR p.description ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+escapeLike(query.Search)+"%")
		argIndex++
	}

	queryBuilder.WriteString(" ORDER BY " + productOrder(query.Sort))

	page := query.Pagination.Normalized()
	queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1))
	args = append(args, page.Limit, page.Offset())

	var products []*model.Product
	err := queryRows(ctx, r.executor(), queryBuilder.String(), args, func(rows rowScanner) error {
		product, err := scanProduct(rows)
		if err != nil {
			return err
		}
		products = append(products, product)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	if err := r.loadChildren(ctx, products); err != nil {
		return nil, err
	}
	return products, nil
}

// SetDeletedAt sets or clears the soft-delete marker of every id in a single statement.
func (r *ProductRepository) SetDeletedAt(ctx context.Context, ids []uuid.UUID, at *time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `UPDATE products SET deleted_at = $1, updated_at = NOW() WHERE id = ANY($2::uuid[])`

	result, err := execStatement(ctx, r.executor(), query, at, uuidArray(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to update deleted_at: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}

// ReplaceImages deletes every image row of the product and inserts urls in order.
func (r *ProductRepository) ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) error {
	if _, err := execStatement(ctx, r.executor(), `DELETE FROM product_images WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to delete product images: %w", err)
	}
	if len(urls) == 0 {
		return nil
	}

	stmt, err := r.executor().PrepareContext(ctx,
		`INSERT INTO product_images (id, product_id, url, display_order) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for i, url := range urls {
		if _, err := stmt.ExecContext(ctx, uuid.New(), productID, url, i); err != nil {
			return fmt.Errorf("failed to insert product image: %w", err)
		}
	}
	return nil
}

// ReplaceSpecifications deletes every specification row of the product and inserts specs.
func (r *ProductRepository) ReplaceSpecifications(ctx context.Context, productID uuid.UUID, specs []model.Specification) error {
	if _, err := execStatement(ctx, r.executor(), `DELETE FROM product_specifications WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("failed to delete product specifications: %w", err)
	}
	if len(specs) == 0 {
		return nil
	}

	stmt, err := r.executor().PrepareContext(ctx,
		`INSERT INTO product_specifications (id, product_id, name, value) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert statement: %w", err)
	}
	defer stmt.Close()

	for _, spec := range specs {
		if _, err := stmt.ExecContext(ctx, uuid.New(), productID, spec.Name, spec.Value); err != nil {
			return fmt.Errorf("failed to insert product specification: %w", err)
		}
	}
	return nil
}

// DecreaseStock subtracts quantity from an active product's stock.
// It fails with repository.ErrInsufficientStock when stock would go negative.
func (r *ProductRepository) DecreaseStock(ctx context.Context, productID uuid.UUID, quantity int) error {
	query := `UPDATE products SET stock = stock - $1, updated_at = NOW()
	          WHERE id = $2 AND deleted_at IS NULL AND stock >= $1`

	result, err := execStatement(ctx, r.executor(), query, quantity, productID)
	if err != nil {
		return fmt.Errorf("failed to decrease stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("product %s: %w", productID, repository.ErrInsufficientStock)
	}
	return nil
}

// DeleteByID permanently deletes a product. Images, specifications and
// wishlist rows go with it through ON DELETE CASCADE.
func (r *ProductRepository) DeleteByID(ctx context.Context, id uuid.UUID) error {
	result, err := execStatement(ctx, r.executor(), `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return affectedOrNotFound(result, "product", id)
}

// UpsertBySlug inserts the product or updates the row with the same slug.
func (r *ProductRepository) UpsertBySlug(ctx context.Context, product *model.Product) error {
	if product.ID == uuid.Nil {
		product.InitMeta()
	}

	query := `INSERT INTO products (id, name, slug, description, price, discount_price, category_id, stock, featured, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	          ON CONFLICT (slug) DO UPDATE
	          SET name = EXCLUDED.name, description = EXCLUDED.description, price = EXCLUDED.price,
	              discount_price = EXCLUDED.discount_price, category_id = EXCLUDED.category_id,
	              stock = EXCLUDED.stock, featured = EXCLUDED.featured, updated_at = EXCLUDED.updated_at
	          RETURNING id, created_at`

	args := []interface{}{
		product.ID, product.Name, product.Slug, product.Description, product.Price, product.DiscountPrice,
		product.CategoryID, product.Stock, product.Featured, product.CreatedAt, product.UpdatedAt,
	}
	err := queryRow(ctx, r.executor(), query, args, func(row rowScanner) error {
		return row.Scan(&product.ID, &product.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}

	return nil
}

// loadChildren attaches ordered images and specifications to products.
func (r *ProductRepository) loadChildren(ctx context.Context, products []*model.Product) error {
	if len(products) == 0 {
		return nil
	}

	byID := make(map[uuid.UUID]*model.Product, len(products))
	ids := make([]uuid.UUID, 0, len(products))
	for _, product := range products {
		product.Images = []string{}
		product.Specifications = []model.Specification{}
		byID[product.ID] = product
		ids = append(ids, product.ID)
	}

	imagesQuery := `SELECT product_id, url FROM product_images
	                WHERE product_id = ANY($1::uuid[]) ORDER BY product_id, display_order`
	err := queryRows(ctx, r.executor(), imagesQuery, []interface{}{uuidArray(ids)}, func(rows rowScanner) error {
		var productID uuid.UUID
		var url string
		if err := rows.Scan(&productID, &url); err != nil {
			return err
		}
		if product, ok := byID[productID]; ok {
			product.Images = append(product.Images, url)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load product images: %w", err)
	}

	specsQuery := `SELECT product_id, name, value FROM product_specifications
	               WHERE product_id = ANY($1::uuid[]) ORDER BY product_id, name`
	err = queryRows(ctx, r.executor(), specsQuery, []interface{}{uuidArray(ids)}, func(rows rowScanner) error {
		var productID uuid.UUID
		var spec model.Specification
		if err := rows.Scan(&productID, &spec.Name, &spec.Value); err != nil {
			return err
		}
		if product, ok := byID[productID]; ok {
			product.Specifications = append(product.Specifications, spec)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to load product specifications: %w", err)
	}

	return nil
}

func scanProduct(row rowScanner) (*model.Product, error) {
	var (
		product      model.Product
		discount     decimal.NullDecimal
		deletedAt    sql.NullTime
		categoryID   uuid.NullUUID
		categoryName sql.NullString
		categorySlug sql.NullString
	)
	err := row.Scan(
		&product.ID, &product.Name, &product.Slug, &product.Description, &product.Price, &discount,
		&product.CategoryID, &product.Stock, &product.Featured, &deletedAt, &product.CreatedAt, &product.UpdatedAt,
		&categoryID, &categoryName, &categorySlug,
	)
	if err != nil {
		return nil, err
	}

	product.DiscountPrice = discount
	if deletedAt.Valid {
		t := deletedAt.Time
		product.DeletedAt = &t
	}
	if categoryID.Valid {
		product.Category = &model.Category{ID: categoryID.UUID, Name: categoryName.String, Slug: categorySlug.String}
	}
	return &product, nil
}

// productOrder returns the ORDER BY clause for sort. Price sorts use the
// effective price; id breaks ties.
func productOrder(sort repository.ProductSort) string {
	switch sort {
	case repository.SortNameAsc:
		return "p.name ASC, p.id ASC"
	case repository.SortNameDesc:
		return "p.name DESC, p.id DESC"
	case repository.SortPriceAsc:
		return "COALESCE(p.discount_price, p.price) ASC, p.id ASC"
	case repository.SortPriceDesc:
		return "COALESCE(p.discount_price, p.price) DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
