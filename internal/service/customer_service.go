package service

import (
	"context"

	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

type CustomerService struct {
	profiles repository.UserProfileRepository
}

func NewCustomerService(profiles repository.UserProfileRepository) *CustomerService {
	return &CustomerService{profiles: profiles}
}

// List returns user profiles newest first.
func (cs *CustomerService) List(ctx context.Context, page repository.Pagination) ([]*model.UserProfile, error) {
	if _, err := auth.AdminFromContext(ctx); err != nil {
		return nil, err
	}

	profiles, err := cs.profiles.List(ctx, page.Normalized())
	if err != nil {
		return nil, apperror.Persistence("list customers", err)
	}
	return profiles, nil
}
