package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/http/response"
	"github.com/iyhunko/storefront-backoffice/internal/service"
)

// AccountController serves the authenticated user's addresses and wishlist.
type AccountController struct {
	accountService *service.AccountService
}

// NewAccountController creates a new AccountController.
func NewAccountController(accountService *service.AccountService) *AccountController {
	return &AccountController{
		accountService: accountService,
	}
}

// AddressRequest is the body of POST and PUT /api/account/addresses.
type AddressRequest struct {
	Recipient    string `json:"recipient" binding:"required"`
	Street       string `json:"street" binding:"required"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city" binding:"required"`
	State        string `json:"state" binding:"required"`
	PostalCode   string `json:"postalCode" binding:"required"`
	IsDefault    bool   `json:"isDefault"`
}

func (r AddressRequest) input() service.AddressInput {
	return service.AddressInput{
		Recipient:    r.Recipient,
		Street:       r.Street,
		Number:       r.Number,
		Complement:   r.Complement,
		Neighborhood: r.Neighborhood,
		City:         r.City,
		State:        r.State,
		PostalCode:   r.PostalCode,
		IsDefault:    r.IsDefault,
	}
}

// WishlistRequest is the body of POST /api/account/wishlist.
type WishlistRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
}

// ListAddresses returns the caller's addresses.
func (ac *AccountController) ListAddresses(c *gin.Context) {
	addresses, err := ac.accountService.ListAddresses(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]AddressResponse, 0, len(addresses))
	for _, address := range addresses {
		out = append(out, toAddressResponse(address))
	}
	c.JSON(http.StatusOK, out)
}

// CreateAddress adds an address for the caller.
func (ac *AccountController) CreateAddress(c *gin.Context) {
	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := ac.accountService.CreateAddress(c.Request.Context(), req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, toAddressResponse(address))
}

// UpdateAddress overwrites one of the caller's addresses.
func (ac *AccountController) UpdateAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req AddressRequest
	if !bindJSON(c, &req) {
		return
	}

	address, err := ac.accountService.UpdateAddress(c.Request.Context(), id, req.input())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, toAddressResponse(address))
}

// DeleteAddress removes one of the caller's addresses.
func (ac *AccountController) DeleteAddress(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := ac.accountService.DeleteAddress(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// ListWishlist returns the caller's saved products.
func (ac *AccountController) ListWishlist(c *gin.Context) {
	items, err := ac.accountService.ListWishlist(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]WishlistItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, toWishlistItemResponse(item))
	}
	c.JSON(http.StatusOK, out)
}

// AddToWishlist saves a product for the caller.
func (ac *AccountController) AddToWishlist(c *gin.Context) {
	var req WishlistRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := ac.accountService.AddToWishlist(c.Request.Context(), req.ProductID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, SuccessResponse{Success: true})
}

// RemoveFromWishlist drops a saved product.
func (ac *AccountController) RemoveFromWishlist(c *gin.Context) {
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}
	if err := ac.accountService.RemoveFromWishlist(c.Request.Context(), productID); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}
