package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// AddressInput is a shipping address as entered by the user.
type AddressInput struct {
	Recipient    string
	Street       string
	Number       string
	Complement   string
	Neighborhood string
	City         string
	State        string
	PostalCode   string
	IsDefault    bool
}

// AccountService serves the account pages of the authenticated user:
// shipping addresses and wishlist.
type AccountService struct {
	gateway repository.Gateway
}

func NewAccountService(gateway repository.Gateway) *AccountService {
	return &AccountService{gateway: gateway}
}

func (as *AccountService) ListAddresses(ctx context.Context) ([]*model.Address, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	addresses, err := as.gateway.Addresses().ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, apperror.Persistence("list addresses", err)
	}
	return addresses, nil
}

// CreateAddress stores a new address. The first address of a user, or one
// flagged IsDefault, becomes the only default address.
func (as *AccountService) CreateAddress(ctx context.Context, in AddressInput) (*model.Address, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	address := in.toAddress(user.UserID)

	err = as.gateway.WithinTransaction(ctx, func(tx repository.Store) error {
		existing, err := tx.Addresses().ListByUser(ctx, user.UserID)
		if err != nil {
			return err
		}
		if len(existing) == 0 {
			address.IsDefault = true
		}
		if address.IsDefault {
			if err := tx.Addresses().ClearDefault(ctx, user.UserID); err != nil {
				return err
			}
		}
		return tx.Addresses().Create(ctx, address)
	})
	if err != nil {
		return nil, apperror.Persistence("create address", err)
	}
	return address, nil
}

// UpdateAddress overwrites one of the user's addresses. Flagging it IsDefault
// clears the flag on the others.
func (as *AccountService) UpdateAddress(ctx context.Context, id uuid.UUID, in AddressInput) (*model.Address, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	address := in.toAddress(user.UserID)
	address.ID = id

	err = as.gateway.WithinTransaction(ctx, func(tx repository.Store) error {
		if address.IsDefault {
			if err := tx.Addresses().ClearDefault(ctx, user.UserID); err != nil {
				return err
			}
		}
		return tx.Addresses().Update(ctx, address)
	})
	if err != nil {
		return nil, apperror.Persistence("update address", err)
	}
	return address, nil
}

// DeleteAddress removes one of the user's addresses.
func (as *AccountService) DeleteAddress(ctx context.Context, id uuid.UUID) error {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return err
	}
	if err := as.gateway.Addresses().Delete(ctx, user.UserID, id); err != nil {
		return apperror.Persistence("delete address", err)
	}
	return nil
}

// ListWishlist returns the user's saved products that are still active.
func (as *AccountService) ListWishlist(ctx context.Context) ([]*model.WishlistItem, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	items, err := as.gateway.Wishlist().ListByUser(ctx, user.UserID)
	if err != nil {
		return nil, apperror.Persistence("list wishlist", err)
	}
	return items, nil
}

// AddToWishlist saves an active product. Adding it twice is a no-op.
func (as *AccountService) AddToWishlist(ctx context.Context, productID uuid.UUID) error {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return err
	}

	product, err := as.gateway.Products().FindByID(ctx, productID)
	if err != nil {
		return apperror.Persistence("add to wishlist", err)
	}
	if product.IsDeleted() {
		return apperror.NotFound("product", productID)
	}

	item := &model.WishlistItem{UserID: user.UserID, ProductID: productID}
	if err := as.gateway.Wishlist().Add(ctx, item); err != nil {
		return apperror.Persistence("add to wishlist", err)
	}
	return nil
}

func (as *AccountService) RemoveFromWishlist(ctx context.Context, productID uuid.UUID) error {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return err
	}
	if err := as.gateway.Wishlist().Remove(ctx, user.UserID, productID); err != nil {
		return apperror.Persistence("remove from wishlist", err)
	}
	return nil
}

func (in AddressInput) validate() error {
	required := []struct{ field, value string }{
		{"recipient", in.Recipient},
		{"street", in.Street},
		{"city", in.City},
		{"state", in.State},
		{"postalCode", in.PostalCode},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.Validation(r.field, r.field+" is required")
		}
	}
	return nil
}

func (in AddressInput) toAddress(userID uuid.UUID) *model.Address {
	return &model.Address{
		UserID:       userID,
		Recipient:    strings.TrimSpace(in.Recipient),
		Street:       strings.TrimSpace(in.Street),
		Number:       strings.TrimSpace(in.Number),
		Complement:   strings.TrimSpace(in.Complement),
		Neighborhood: strings.TrimSpace(in.Neighborhood),
		City:         strings.TrimSpace(in.City),
		State:        strings.TrimSpace(in.State),
		PostalCode:   strings.TrimSpace(in.PostalCode),
		IsDefault:    in.IsDefault,
	}
}
