package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/cache"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/shopspring/decimal"
)

// Migrator brings the schema up to date. Running it on a current schema is a no-op.
type Migrator func() error

// SeedResult counts the upserted demo rows.
type SeedResult struct {
	Categories int `json:"categories"`
	Products   int `json:"products"`
}

// SetupService runs the schema migrations and loads demo data.
type SetupService struct {
	gateway repository.Gateway
	migrate Migrator
	cache   *cache.ProductCache
}

func NewSetupService(gateway repository.Gateway, migrate Migrator, productCache *cache.ProductCache) *SetupService {
	return &SetupService{
		gateway: gateway,
		migrate: migrate,
		cache:   productCache,
	}
}

// Setup applies pending migrations.
func (ss *SetupService) Setup(ctx context.Context) error {
	if _, err := auth.AdminFromContext(ctx); err != nil {
		return err
	}
	if err := ss.migrate(); err != nil {
		return apperror.Persistence("setup", err)
	}
	slog.Info("Schema migrations applied")
	return nil
}

// Seed upserts the demo categories and products by slug. Images and
// specifications of seeded products are replaced, so running it twice yields
// the same catalog.
func (ss *SetupService) Seed(ctx context.Context) (SeedResult, error) {
	if _, err := auth.AdminFromContext(ctx); err != nil {
		return SeedResult{}, err
	}

	var result SeedResult
	err := ss.gateway.WithinTransaction(ctx, func(tx repository.Store) error {
		bySlug := make(map[string]*model.Category, len(demoCategories))
		for _, c := range demoCategories {
			category := &model.Category{Name: c.name, Slug: c.slug}
			if err := tx.Categories().UpsertBySlug(ctx, category); err != nil {
				return fmt.Errorf("category %s: %w", c.slug, err)
			}
			bySlug[c.slug] = category
			result.Categories++
		}

		for _, p := range demoProducts {
			product, err := p.toProduct(bySlug)
			if err != nil {
				return err
			}
			if err := tx.Products().UpsertBySlug(ctx, product); err != nil {
				return fmt.Errorf("product %s: %w", p.slug, err)
			}
			if err := replaceChildren(ctx, tx, product.ID, p.images, p.specs); err != nil {
				return fmt.Errorf("product %s: %w", p.slug, err)
			}
			result.Products++
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, apperror.Persistence("seed", err)
	}

	slugs := make([]string, len(demoProducts))
	for i, p := range demoProducts {
		slugs[i] = p.slug
	}
	if err := ss.cache.Invalidate(ctx, slugs...); err != nil {
		slog.Warn("Failed to invalidate product cache after seed", slog.Any("err", err))
	}

	slog.Info("Demo data seeded", slog.Int("categories", result.Categories), slog.Int("products", result.Products))
	return result, nil
}

func (p seedProduct) toProduct(categories map[string]*model.Category) (*model.Product, error) {
	category, ok := categories[p.category]
	if !ok {
		return nil, fmt.Errorf("product %s: unknown category %s", p.slug, p.category)
	}
	price, err := decimal.NewFromString(p.price)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", p.slug, err)
	}

	product := &model.Product{
		Name:        p.name,
		Slug:        p.slug,
		Description: p.description,
		Price:       price,
		CategoryID:  category.ID,
		Featured:    p.featured,
		Stock:       p.stock,
	}
	if p.discountPrice != "" {
		discount, err := decimal.NewFromString(p.discountPrice)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", p.slug, err)
		}
		product.DiscountPrice = decimal.NewNullDecimal(discount)
	}
	return product, nil
}
