package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/cache"
	"github.com/iyhunko/storefront-backoffice/internal/metrics"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/slug"
	"github.com/shopspring/decimal"
)

// ProductInput carries the product fields of a create or update request.
// A nil field was not provided. For DiscountPrice a provided value with
// Valid=false clears the discount.
type ProductInput struct {
	Name           *string
	Description    *string
	Price          *decimal.Decimal
	DiscountPrice  *decimal.NullDecimal
	CategoryID     *uuid.UUID
	Stock          *int
	Featured       *bool
	Images         []string
	Specifications []model.Specification
}

// ProductService implements the product lifecycle: create, update, soft
// delete, restore and purge, plus catalog reads. Every mutation runs in one
// transaction together with its audit entries and outbox events.
type ProductService struct {
	gateway repository.Gateway
	cache   *cache.ProductCache
}

// NewProductService creates a ProductService. productCache may be nil.
func NewProductService(gateway repository.Gateway, productCache *cache.ProductCache) *ProductService {
	return &ProductService{
		gateway: gateway,
		cache:   productCache,
	}
}

// Create inserts a product with its images and specifications.
func (ps *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.validateCreate(); err != nil {
		return nil, err
	}

	product := &model.Product{
		Name:          strings.TrimSpace(*in.Name),
		Description:   strings.TrimSpace(*in.Description),
		Price:         *in.Price,
		CategoryID:    *in.CategoryID,
		Stock:         *in.Stock,
		DiscountPrice: optional(in.DiscountPrice, decimal.NullDecimal{}),
		Featured:      optional(in.Featured, false),
	}
	product.Slug = slug.Make(product.Name)
	if product.Slug == "" {
		return nil, apperror.Validation("name", "name must contain at least one letter or digit")
	}

	var created *model.Product
	err = withinAuditedTransaction(ctx, ps.gateway, func(tx repository.Store, tally *auditTally) error {
		if err := requireCategory(ctx, tx, product.CategoryID); err != nil {
			return err
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return uniqueAsValidation(err, "name", "a product with this name already exists")
		}
		if err := replaceChildren(ctx, tx, product.ID, in.Images, in.Specifications); err != nil {
			return err
		}
		if err := recordLifecycle(ctx, tx, tally, actor, model.AuditActionCreate, product); err != nil {
			return err
		}
		created, err = tx.Products().FindByID(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence("create product", err)
	}

	metrics.ProductLifecycleOps.WithLabelValues(string(model.AuditActionCreate)).Inc()
	return created, nil
}

// Update applies the provided fields to product id. Non-nil image and
// specification lists replace the stored ones. The slug never changes.
func (ps *ProductService) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*model.Product, error) {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.validateUpdate(); err != nil {
		return nil, err
	}

	var updated *model.Product
	err = withinAuditedTransaction(ctx, ps.gateway, func(tx repository.Store, tally *auditTally) error {
		product, err := tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if in.CategoryID != nil && *in.CategoryID != product.CategoryID {
			if err := requireCategory(ctx, tx, *in.CategoryID); err != nil {
				return err
			}
		}
		in.applyTo(product)
		if err := validatePricing(product.Price, product.DiscountPrice); err != nil {
			return err
		}
		if err := tx.Products().Update(ctx, product); err != nil {
			return err
		}
		if err := replaceChildren(ctx, tx, product.ID, in.Images, in.Specifications); err != nil {
			return err
		}
		if err := recordLifecycle(ctx, tx, tally, actor, model.AuditActionUpdate, product); err != nil {
			return err
		}
		updated, err = tx.Products().FindByID(ctx, product.ID)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence("update product", err)
	}

	ps.invalidate(ctx, updated.Slug)
	metrics.ProductLifecycleOps.WithLabelValues(string(model.AuditActionUpdate)).Inc()
	return updated, nil
}

// SoftDelete marks product id as deleted. Row existence gates the call, so
// deleting an already deleted product succeeds and is audited again.
func (ps *ProductService) SoftDelete(ctx context.Context, id uuid.UUID) error {
	now := time.Now().UTC()
	return ps.setDeletedAt(ctx, id, &now, model.AuditActionDelete)
}

// Restore clears the deletion marker of product id.
func (ps *ProductService) Restore(ctx context.Context, id uuid.UUID) error {
	return ps.setDeletedAt(ctx, id, nil, model.AuditActionRestore)
}

// SoftDeleteBatch marks every existing product among ids as deleted in one
// statement and returns how many rows were affected.
func (ps *ProductService) SoftDeleteBatch(ctx context.Context, ids []uuid.UUID) (int, error) {
	now := time.Now().UTC()
	return ps.setDeletedAtBatch(ctx, ids, &now, model.AuditActionDeleteBatch)
}

// RestoreBatch clears the deletion marker of every existing product among ids.
func (ps *ProductService) RestoreBatch(ctx context.Context, ids []uuid.UUID) (int, error) {
	return ps.setDeletedAtBatch(ctx, ids, nil, model.AuditActionRestoreBatch)
}

func (ps *ProductService) setDeletedAt(ctx context.Context, id uuid.UUID, at *time.Time, action model.AuditAction) error {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return err
	}

	var product *model.Product
	err = withinAuditedTransaction(ctx, ps.gateway, func(tx repository.Store, tally *auditTally) error {
		product, err = tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if _, err := tx.Products().SetDeletedAt(ctx, []uuid.UUID{id}, at); err != nil {
			return err
		}
		return recordLifecycle(ctx, tx, tally, actor, action, product)
	})
	if err != nil {
		return apperror.Persistence(string(action)+" product", err)
	}

	ps.invalidate(ctx, product.Slug)
	metrics.ProductLifecycleOps.WithLabelValues(string(action)).Inc()
	return nil
}

func (ps *ProductService) setDeletedAtBatch(ctx context.Context, ids []uuid.UUID, at *time.Time, action model.AuditAction) (int, error) {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, apperror.Validation("ids", "at least one id is required")
	}

	var products []*model.Product
	var affected int64
	err = withinAuditedTransaction(ctx, ps.gateway, func(tx repository.Store, tally *auditTally) error {
		products, err = tx.Products().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		affected, err = tx.Products().SetDeletedAt(ctx, ids, at)
		if err != nil {
			return err
		}
		for _, product := range products {
			if err := recordLifecycle(ctx, tx, tally, actor, action, product); err != nil {
				return fmt.Errorf("product %s: %w", product.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, apperror.Persistence(string(action)+" products", err)
	}

	slugs := make([]string, 0, len(products))
	for _, product := range products {
		slugs = append(slugs, product.Slug)
	}
	ps.invalidate(ctx, slugs...)
	metrics.ProductLifecycleOps.WithLabelValues(string(action)).Add(float64(affected))
	return int(affected), nil
}

// Purge permanently deletes product id with its images and specifications.
func (ps *ProductService) Purge(ctx context.Context, id uuid.UUID) error {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return err
	}

	var product *model.Product
	err = withinAuditedTransaction(ctx, ps.gateway, func(tx repository.Store, tally *auditTally) error {
		product, err = tx.Products().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := tx.Products().DeleteByID(ctx, id); err != nil {
			return err
		}
		return recordLifecycle(ctx, tx, tally, actor, model.AuditActionPurge, product)
	})
	if err != nil {
		return apperror.Persistence("purge product", err)
	}

	ps.invalidate(ctx, product.Slug)
	metrics.ProductLifecycleOps.WithLabelValues(string(model.AuditActionPurge)).Inc()
	return nil
}

// List returns active products for the storefront. Deletion filters are ignored.
func (ps *ProductService) List(ctx context.Context, query repository.ProductQuery) ([]*model.Product, error) {
	query.IncludeDeleted = false
	query.OnlyDeleted = false
	return ps.list(ctx, query)
}

// ListAdmin returns products for the back-office, honoring the deletion filters.
func (ps *ProductService) ListAdmin(ctx context.Context, query repository.ProductQuery) ([]*model.Product, error) {
	if _, err := auth.AdminFromContext(ctx); err != nil {
		return nil, err
	}
	if query.OnlyDeleted {
		query.IncludeDeleted = true
	}
	return ps.list(ctx, query)
}

func (ps *ProductService) list(ctx context.Context, query repository.ProductQuery) ([]*model.Product, error) {
	query.Pagination = query.Normalized()
	products, err := ps.gateway.Products().List(ctx, query)
	if err != nil {
		return nil, apperror.Persistence("list products", err)
	}
	return products, nil
}

// GetBySlug returns the active product identified by slug.
func (ps *ProductService) GetBySlug(ctx context.Context, productSlug string) (*model.Product, error) {
	cached, ok, err := ps.cache.Get(ctx, productSlug)
	switch {
	case err != nil:
		metrics.ProductCacheLookups.WithLabelValues("error").Inc()
		slog.Warn("Product cache lookup failed", slog.String("slug", productSlug), slog.Any("err", err))
	case ok:
		metrics.ProductCacheLookups.WithLabelValues("hit").Inc()
		return cached, nil
	case ps.cache != nil:
		metrics.ProductCacheLookups.WithLabelValues("miss").Inc()
	}

	product, err := ps.gateway.Products().FindBySlug(ctx, productSlug)
	if err != nil {
		return nil, apperror.Persistence("get product", err)
	}

	if err := ps.cache.Set(ctx, product); err != nil {
		slog.Warn("Failed to cache product", slog.String("slug", productSlug), slog.Any("err", err))
	}
	return product, nil
}

func (ps *ProductService) invalidate(ctx context.Context, slugs ...string) {
	if err := ps.cache.Invalidate(ctx, slugs...); err != nil {
		slog.Warn("Failed to invalidate product cache", slog.Any("slugs", slugs), slog.Any("err", err))
	}
}

func requireCategory(ctx context.Context, tx repository.Store, id uuid.UUID) error {
	if _, err := tx.Categories().FindByID(ctx, id); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.Validation("categoryId", "category does not exist")
		}
		return err
	}
	return nil
}

func replaceChildren(ctx context.Context, tx repository.Store, productID uuid.UUID, images []string, specs []model.Specification) error {
	if images != nil {
		if err := tx.Products().ReplaceImages(ctx, productID, images); err != nil {
			return err
		}
	}
	if specs != nil {
		if err := tx.Products().ReplaceSpecifications(ctx, productID, specs); err != nil {
			return err
		}
	}
	return nil
}

func (in ProductInput) validateCreate() error {
	switch {
	case in.Name == nil || strings.TrimSpace(*in.Name) == "":
		return apperror.Validation("name", "name is required")
	case in.Description == nil || strings.TrimSpace(*in.Description) == "":
		return apperror.Validation("description", "description is required")
	case in.Price == nil:
		return apperror.Validation("price", "price is required")
	case in.CategoryID == nil || *in.CategoryID == uuid.Nil:
		return apperror.Validation("categoryId", "category is required")
	case in.Stock == nil:
		return apperror.Validation("stock", "stock is required")
	}
	if err := in.validateUpdate(); err != nil {
		return err
	}
	return validatePricing(*in.Price, optional(in.DiscountPrice, decimal.NullDecimal{}))
}

func (in ProductInput) validateUpdate() error {
	switch {
	case in.Name != nil && strings.TrimSpace(*in.Name) == "":
		return apperror.Validation("name", "name must not be empty")
	case in.Description != nil && strings.TrimSpace(*in.Description) == "":
		return apperror.Validation("description", "description must not be empty")
	case in.Price != nil && in.Price.IsNegative():
		return apperror.Validation("price", "price must not be negative")
	case in.Stock != nil && *in.Stock < 0:
		return apperror.Validation("stock", "stock must not be negative")
	case in.CategoryID != nil && *in.CategoryID == uuid.Nil:
		return apperror.Validation("categoryId", "category is required")
	}
	for _, spec := range in.Specifications {
		if strings.TrimSpace(spec.Name) == "" {
			return apperror.Validation("specifications", "specification name is required")
		}
	}
	for _, image := range in.Images {
		if strings.TrimSpace(image) == "" {
			return apperror.Validation("images", "image url must not be empty")
		}
	}
	return nil
}

func validatePricing(price decimal.Decimal, discount decimal.NullDecimal) error {
	if !discount.Valid {
		return nil
	}
	if discount.Decimal.IsNegative() {
		return apperror.Validation("discountPrice", "discount price must not be negative")
	}
	if discount.Decimal.GreaterThanOrEqual(price) {
		return apperror.Validation("discountPrice", "discount price must be lower than price")
	}
	return nil
}

func (in ProductInput) applyTo(product *model.Product) {
	if in.Name != nil {
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		product.Description = strings.TrimSpace(*in.Description)
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	if in.DiscountPrice != nil {
		product.DiscountPrice = *in.DiscountPrice
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if in.Featured != nil {
		product.Featured = *in.Featured
	}
}

func optional[T any](v *T, fallback T) T {
	if v == nil {
		return fallback
	}
	return *v
}
