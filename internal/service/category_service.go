package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/slug"
)

type CategoryService struct {
	gateway repository.Gateway
}

func NewCategoryService(gateway repository.Gateway) *CategoryService {
	return &CategoryService{gateway: gateway}
}

// List returns every category ordered by name.
func (cs *CategoryService) List(ctx context.Context) ([]*model.Category, error) {
	categories, err := cs.gateway.Categories().List(ctx)
	if err != nil {
		return nil, apperror.Persistence("list categories", err)
	}
	return categories, nil
}

// Create adds a category whose slug is derived from name.
func (cs *CategoryService) Create(ctx context.Context, name string) (*model.Category, error) {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	category := &model.Category{Name: name, Slug: slug.Make(name)}
	if category.Slug == "" {
		return nil, apperror.Validation("name", "name is required")
	}

	err = withinAuditedTransaction(ctx, cs.gateway, func(tx repository.Store, tally *auditTally) error {
		if err := tx.Categories().Create(ctx, category); err != nil {
			return uniqueAsValidation(err, "name", "a category with this name already exists")
		}
		details := model.AuditDetails{model.DetailCategoryName: category.Name}
		return recordAudit(ctx, tx, tally, actor, model.AuditActionCreate, model.TableCategories, category.ID, details)
	})
	if err != nil {
		return nil, apperror.Persistence("create category", err)
	}
	return category, nil
}

// Update renames category id. The slug follows the new name.
func (cs *CategoryService) Update(ctx context.Context, id uuid.UUID, name string) (*model.Category, error) {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	category := &model.Category{ID: id, Name: name, Slug: slug.Make(name)}
	if category.Slug == "" {
		return nil, apperror.Validation("name", "name is required")
	}

	err = withinAuditedTransaction(ctx, cs.gateway, func(tx repository.Store, tally *auditTally) error {
		if err := tx.Categories().Update(ctx, category); err != nil {
			return uniqueAsValidation(err, "name", "a category with this name already exists")
		}
		details := model.AuditDetails{model.DetailCategoryName: category.Name}
		return recordAudit(ctx, tx, tally, actor, model.AuditActionUpdate, model.TableCategories, category.ID, details)
	})
	if err != nil {
		return nil, apperror.Persistence("update category", err)
	}
	return category, nil
}
