package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

type productRepository struct {
	r runner
}

func (p *productRepository) Create(_ context.Context, product *model.Product) error {
	return p.r.run(func(d *dataset) error {
		if err := d.fail("products.create"); err != nil {
			return err
		}
		if product.ID == uuid.Nil {
			product.InitMeta()
		}
		if err := d.checkProductSlug(product.Slug, product.ID); err != nil {
			return err
		}
		if _, ok := d.categories[product.CategoryID]; !ok {
			return fmt.Errorf("failed to insert product: category %s does not exist", product.CategoryID)
		}
		stored := copyProduct(product)
		stored.Category = nil
		stored.Images = []string{}
		stored.Specifications = []model.Specification{}
		d.products[product.ID] = stored
		d.productOrder = append(d.productOrder, product.ID)
		return nil
	})
}

func (p *productRepository) Update(_ context.Context, product *model.Product) error {
	return p.r.run(func(d *dataset) error {
		if err := d.fail("products.update"); err != nil {
			return err
		}
		stored, ok := d.products[product.ID]
		if !ok {
			return apperror.NotFound("product", product.ID)
		}
		if _, ok := d.categories[product.CategoryID]; !ok {
			return fmt.Errorf("failed to update product: category %s does not exist", product.CategoryID)
		}
		product.UpdatedAt = time.Now().UTC()
		stored.Name = product.Name
		stored.Description = product.Description
		stored.Price = product.Price
		stored.DiscountPrice = product.DiscountPrice
		stored.CategoryID = product.CategoryID
		stored.Stock = product.Stock
		stored.Featured = product.Featured
		stored.UpdatedAt = product.UpdatedAt
		return nil
	})
}

func (p *productRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	var found *model.Product
	err := p.r.run(func(d *dataset) error {
		stored, ok := d.products[id]
		if !ok {
			return apperror.NotFound("product", id)
		}
		found = d.joinedProduct(stored)
		return nil
	})
	return found, err
}

func (p *productRepository) FindBySlug(_ context.Context, slug string) (*model.Product, error) {
	var found *model.Product
	err := p.r.run(func(d *dataset) error {
		for _, stored := range d.products {
			if stored.Slug == slug && !stored.IsDeleted() {
				found = d.joinedProduct(stored)
				return nil
			}
		}
		return apperror.NotFound("product", slug)
	})
	return found, err
}

func (p *productRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*model.Product, error) {
	var products []*model.Product
	err := p.r.run(func(d *dataset) error {
		for _, id := range uniqueIDs(ids) {
			if stored, ok := d.products[id]; ok {
				product := d.joinedProduct(stored)
				product.Images = nil
				product.Specifications = nil
				products = append(products, product)
			}
		}
		return nil
	})
	return products, err
}

func (p *productRepository) List(_ context.Context, query repository.ProductQuery) ([]*model.Product, error) {
	var products []*model.Product
	err := p.r.run(func(d *dataset) error {
		search := strings.ToLower(query.Search)
		matched := []*model.Product{}
		// newest insert first, so ties on created_at keep a stable order
		for i := len(d.productOrder) - 1; i >= 0; i-- {
			stored, ok := d.products[d.productOrder[i]]
			if !ok {
				continue
			}
			switch {
			case query.OnlyDeleted && !stored.IsDeleted():
				continue
			case !query.OnlyDeleted && !query.IncludeDeleted && stored.IsDeleted():
				continue
			}
			product := d.joinedProduct(stored)
			if query.CategorySlug != "" && product.CategorySlug() != query.CategorySlug {
				continue
			}
			if query.Featured != nil && product.Featured != *query.Featured {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(product.Name), search) &&
				!strings.Contains(strings.ToLower(product.Description), search) {
				continue
			}
			matched = append(matched, product)
		}
		sortProducts(matched, query.Sort)
		products = page(matched, query.Pagination)
		return nil
	})
	return products, err
}

func (p *productRepository) SetDeletedAt(_ context.Context, ids []uuid.UUID, at *time.Time) (int64, error) {
	var affected int64
	err := p.r.run(func(d *dataset) error {
		if err := d.fail("products.set_deleted_at"); err != nil {
			return err
		}
		now := time.Now().UTC()
		for _, id := range uniqueIDs(ids) {
			stored, ok := d.products[id]
			if !ok {
				continue
			}
			if at == nil {
				stored.DeletedAt = nil
			} else {
				t := *at
				stored.DeletedAt = &t
			}
			stored.UpdatedAt = now
			affected++
		}
		return nil
	})
	return affected, err
}

func (p *productRepository) ReplaceImages(_ context.Context, productID uuid.UUID, urls []string) error {
	return p.r.run(func(d *dataset) error {
		if err := d.fail("product_images.replace"); err != nil {
			return err
		}
		stored, ok := d.products[productID]
		if !ok {
			return fmt.Errorf("failed to insert product image: product %s does not exist", productID)
		}
		stored.Images = append([]string{}, urls...)
		return nil
	})
}

func (p *productRepository) ReplaceSpecifications(_ context.Context, productID uuid.UUID, specs []model.Specification) error {
	return p.r.run(func(d *dataset) error {
		if err := d.fail("product_specifications.replace"); err != nil {
			return err
		}
		stored, ok := d.products[productID]
		if !ok {
			return fmt.Errorf("failed to insert product specification: product %s does not exist", productID)
		}
		stored.Specifications = append([]model.Specification{}, specs...)
		sort.SliceStable(stored.Specifications, func(i, j int) bool {
			return stored.Specifications[i].Name < stored.Specifications[j].Name
		})
		return nil
	})
}

func (p *productRepository) DecreaseStock(_ context.Context, productID uuid.UUID, quantity int) error {
	return p.r.run(func(d *dataset) error {
		stored, ok := d.products[productID]
		if !ok || stored.IsDeleted() || stored.Stock < quantity {
			return fmt.Errorf("product %s: %w", productID, repository.ErrInsufficientStock)
		}
		stored.Stock -= quantity
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (p *productRepository) DeleteByID(_ context.Context, id uuid.UUID) error {
	return p.r.run(func(d *dataset) error {
		if err := d.fail("products.delete"); err != nil {
			return err
		}
		if _, ok := d.products[id]; !ok {
			return apperror.NotFound("product", id)
		}
		delete(d.products, id)
		kept := d.wishlist[:0]
		for _, item := range d.wishlist {
			if item.ProductID != id {
				kept = append(kept, item)
			}
		}
		d.wishlist = kept
		return nil
	})
}

func (p *productRepository) UpsertBySlug(_ context.Context, product *model.Product) error {
	return p.r.run(func(d *dataset) error {
		for id, stored := range d.products {
			if stored.Slug != product.Slug {
				continue
			}
			product.ID = id
			product.CreatedAt = stored.CreatedAt
			product.UpdatedAt = time.Now().UTC()
			stored.Name = product.Name
			stored.Description = product.Description
			stored.Price = product.Price
			stored.DiscountPrice = product.DiscountPrice
			stored.CategoryID = product.CategoryID
			stored.Stock = product.Stock
			stored.Featured = product.Featured
			stored.UpdatedAt = product.UpdatedAt
			return nil
		}
		if product.ID == uuid.Nil {
			product.InitMeta()
		}
		stored := copyProduct(product)
		stored.Category = nil
		stored.Images = []string{}
		stored.Specifications = []model.Specification{}
		d.products[product.ID] = stored
		d.productOrder = append(d.productOrder, product.ID)
		return nil
	})
}

func (d *dataset) checkProductSlug(slug string, id uuid.UUID) error {
	for _, stored := range d.products {
		if stored.Slug == slug && stored.ID != id {
			return fmt.Errorf("failed to insert product: %w",
				&repository.UniqueConstraintError{Detail: fmt.Sprintf("Key (slug)=(%s) already exists.", slug)})
		}
	}
	return nil
}

// joinedProduct returns a copy of stored with its category attached.
func (d *dataset) joinedProduct(stored *model.Product) *model.Product {
	product := copyProduct(stored)
	if category, ok := d.categories[stored.CategoryID]; ok {
		cat := *category
		product.Category = &cat
	}
	return product
}

func sortProducts(products []*model.Product, by repository.ProductSort) {
	var less func(a, b *model.Product) bool
	switch by {
	case repository.SortNameAsc:
		less = func(a, b *model.Product) bool { return a.Name < b.Name }
	case repository.SortNameDesc:
		less = func(a, b *model.Product) bool { return a.Name > b.Name }
	case repository.SortPriceAsc:
		less = func(a, b *model.Product) bool { return a.EffectivePrice().LessThan(b.EffectivePrice()) }
	case repository.SortPriceDesc:
		less = func(a, b *model.Product) bool { return a.EffectivePrice().GreaterThan(b.EffectivePrice()) }
	default:
		less = func(a, b *model.Product) bool { return a.CreatedAt.After(b.CreatedAt) }
	}
	sort.SliceStable(products, func(i, j int) bool { return less(products[i], products[j]) })
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
