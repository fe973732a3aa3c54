package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
)

const categoryColumns = `id, name, slug, created_at`

// CategoryRepository implements repository.CategoryRepository for Postgres.
type CategoryRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewCategoryRepository creates a new CategoryRepository instance.
func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create inserts a new category. A taken slug yields *repository.UniqueConstraintError.
func (r *CategoryRepository) Create(ctx context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.InitMeta()
	}

	query := `INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query, category.ID, category.Name, category.Slug, category.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert category: %w", uniqueViolation(err))
	}

	return nil
}

// List returns every category ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name ASC`

	categories := []*model.Category{}
	err := queryRows(ctx, getExecutor(r.db, r.txn), query, nil, func(rows rowScanner) error {
		var category model.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt); err != nil {
			return err
		}
		categories = append(categories, &category)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a single category by ID.
func (r *CategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
}

// FindBySlug retrieves a single category by slug.
func (r *CategoryRepository) FindBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return r.findOne(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, slug)
}

func (r *CategoryRepository) findOne(ctx context.Context, query string, key interface{}) (*model.Category, error) {
	var category model.Category
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, []interface{}{key}, func(row rowScanner) error {
		return row.Scan(&category.ID, &category.Name, &category.Slug, &category.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", key)
		}
		return nil, fmt.Errorf("failed to query category: %w", err)
	}

	return &category, nil
}

// UpsertBySlug inserts the category or renames the row holding the same slug.
func (r *CategoryRepository) UpsertBySlug(ctx context.Context, category *model.Category) error {
	if category.ID == uuid.Nil {
		category.InitMeta()
	}

	query := `INSERT INTO categories (id, name, slug, created_at) VALUES ($1, $2, $3, $4)
	          ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
	          RETURNING id, created_at`

	args := []interface{}{category.ID, category.Name, category.Slug, category.CreatedAt}
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, args, func(row rowScanner) error {
		return row.Scan(&category.ID, &category.CreatedAt)
	})
	if err != nil {
		return fmt.Errorf("failed to upsert category: %w", err)
	}

	return nil
}

// Update renames the category. A taken slug yields *repository.UniqueConstraintError.
func (r *CategoryRepository) Update(ctx context.Context, category *model.Category) error {
	query := `UPDATE categories SET name = $2, slug = $3 WHERE id = $1 RETURNING created_at`

	args := []interface{}{category.ID, category.Name, category.Slug}
	err := queryRow(ctx, getExecutor(r.db, r.txn), query, args, func(row rowScanner) error {
		return row.Scan(&category.CreatedAt)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperror.NotFound("category", category.ID)
		}
		return fmt.Errorf("failed to update category: %w", uniqueViolation(err))
	}

	return nil
}
