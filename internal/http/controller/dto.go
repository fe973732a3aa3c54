package controller

import (
	"time"

	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/shopspring/decimal"
)

// CategoryResponse represents a product category.
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	CreatedAt string `json:"created_at"`
}

// SpecificationDTO is one name/value product attribute.
type SpecificationDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ProductResponse represents the response body for a product.
type ProductResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Slug           string             `json:"slug"`
	Description    string             `json:"description"`
	Price          decimal.Decimal    `json:"price"`
	DiscountPrice  *decimal.Decimal   `json:"discount_price"`
	CategoryID     string             `json:"category_id"`
	Category       *CategoryResponse  `json:"category,omitempty"`
	Stock          int                `json:"stock"`
	Featured       bool               `json:"featured"`
	Images         []string           `json:"images"`
	Specifications []SpecificationDTO `json:"specifications"`
	IsDeleted      bool               `json:"is_deleted"`
	DeletedAt      *string            `json:"deleted_at"`
	CreatedAt      string             `json:"created_at"`
	UpdatedAt      string             `json:"updated_at"`
}

// OrderItemResponse is one order line.
type OrderItemResponse struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// OrderResponse represents an order with its items.
type OrderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"user_id"`
	CustomerName  string              `json:"customer_name,omitempty"`
	Status        model.OrderStatus   `json:"status"`
	NextStatuses  []model.OrderStatus `json:"next_statuses"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	ShippingFee   decimal.Decimal     `json:"shipping_fee"`
	Total         decimal.Decimal     `json:"total"`
	AddressID     *string             `json:"address_id"`
	PaymentMethod string              `json:"payment_method"`
	Notes         string              `json:"notes,omitempty"`
	TrackingCode  string              `json:"tracking_code,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     string              `json:"created_at"`
	UpdatedAt     string              `json:"updated_at"`
}

// AuditLogResponse is one audit trail entry.
type AuditLogResponse struct {
	ID        string             `json:"id"`
	UserID    *string            `json:"user_id"`
	Actor     string             `json:"actor"`
	Action    model.AuditAction  `json:"action"`
	TableName string             `json:"table_name"`
	RecordID  string             `json:"record_id"`
	Details   model.AuditDetails `json:"details"`
	CreatedAt string             `json:"created_at"`
}

// AddressResponse is a shipping address.
type AddressResponse struct {
	ID           string `json:"id"`
	Recipient    string `json:"recipient"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	IsDefault    bool   `json:"is_default"`
	CreatedAt    string `json:"created_at"`
}

// WishlistItemResponse is a saved product.
type WishlistItemResponse struct {
	ProductID     string           `json:"product_id"`
	ProductName   string           `json:"product_name"`
	ProductSlug   string           `json:"product_slug"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Image         string           `json:"image,omitempty"`
	CreatedAt     string           `json:"created_at"`
}

// CustomerResponse is a user profile as seen by admins.
type CustomerResponse struct {
	ID        string `json:"id"`
	FullName  string `json:"full_name"`
	Phone     string `json:"phone,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	CreatedAt string `json:"created_at"`
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func nullDecimal(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	return &d.Decimal
}

func toCategoryResponse(category *model.Category) CategoryResponse {
	return CategoryResponse{
		ID:        category.ID.String(),
		Name:      category.Name,
		Slug:      category.Slug,
		CreatedAt: formatTime(category.CreatedAt),
	}
}

func toProductResponse(product *model.Product) ProductResponse {
	resp := ProductResponse{
		ID:             product.ID.String(),
		Name:           product.Name,
		Slug:           product.Slug,
		Description:    product.Description,
		Price:          product.Price,
		DiscountPrice:  nullDecimal(product.DiscountPrice),
		CategoryID:     product.CategoryID.String(),
		Stock:          product.Stock,
		Featured:       product.Featured,
		Images:         append([]string{}, product.Images...),
		Specifications: make([]SpecificationDTO, 0, len(product.Specifications)),
		IsDeleted:      product.IsDeleted(),
		CreatedAt:      formatTime(product.CreatedAt),
		UpdatedAt:      formatTime(product.UpdatedAt),
	}
	if product.Category != nil {
		category := toCategoryResponse(product.Category)
		resp.Category = &category
	}
	for _, spec := range product.Specifications {
		resp.Specifications = append(resp.Specifications, SpecificationDTO{Name: spec.Name, Value: spec.Value})
	}
	if product.DeletedAt != nil {
		deletedAt := formatTime(*product.DeletedAt)
		resp.DeletedAt = &deletedAt
	}
	return resp
}

func toProductResponses(products []*model.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for _, product := range products {
		out = append(out, toProductResponse(product))
	}
	return out
}

func toOrderResponse(order *model.Order) OrderResponse {
	resp := OrderResponse{
		ID:            order.ID.String(),
		UserID:        order.UserID.String(),
		CustomerName:  order.CustomerName,
		Status:        order.Status,
		NextStatuses:  order.Status.NextStatuses(),
		Subtotal:      order.Subtotal(),
		ShippingFee:   order.ShippingFee,
		Total:         order.Total,
		PaymentMethod: order.PaymentMethod,
		Notes:         order.Notes,
		TrackingCode:  order.TrackingCode,
		Items:         make([]OrderItemResponse, 0, len(order.Items)),
		CreatedAt:     formatTime(order.CreatedAt),
		UpdatedAt:     formatTime(order.UpdatedAt),
	}
	if order.AddressID != nil {
		addressID := order.AddressID.String()
		resp.AddressID = &addressID
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:   item.ProductID.String(),
			ProductName: item.ProductName,
			Price:       item.Price,
			Quantity:    item.Quantity,
		})
	}
	return resp
}

func toOrderResponses(orders []*model.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderResponse(order))
	}
	return out
}

func toAuditLogResponse(entry *model.AuditLog) AuditLogResponse {
	resp := AuditLogResponse{
		ID:        entry.ID.String(),
		Actor:     entry.Actor(),
		Action:    entry.Action,
		TableName: entry.TableName,
		RecordID:  entry.RecordID.String(),
		Details:   entry.Details,
		CreatedAt: formatTime(entry.CreatedAt),
	}
	if entry.UserID != nil {
		userID := entry.UserID.String()
		resp.UserID = &userID
	}
	return resp
}

func toAddressResponse(address *model.Address) AddressResponse {
	return AddressResponse{
		ID:           address.ID.String(),
		Recipient:    address.Recipient,
		Street:       address.Street,
		Number:       address.Number,
		Complement:   address.Complement,
		Neighborhood: address.Neighborhood,
		City:         address.City,
		State:        address.State,
		PostalCode:   address.PostalCode,
		IsDefault:    address.IsDefault,
		CreatedAt:    formatTime(address.CreatedAt),
	}
}

func toWishlistItemResponse(item *model.WishlistItem) WishlistItemResponse {
	return WishlistItemResponse{
		ProductID:     item.ProductID.String(),
		ProductName:   item.ProductName,
		ProductSlug:   item.ProductSlug,
		Price:         item.Price,
		DiscountPrice: nullDecimal(item.DiscountPrice),
		Image:         item.Image,
		CreatedAt:     formatTime(item.CreatedAt),
	}
}

func toCustomerResponse(profile *model.UserProfile) CustomerResponse {
	return CustomerResponse{
		ID:        profile.ID.String(),
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		IsAdmin:   profile.IsAdmin,
		CreatedAt: formatTime(profile.CreatedAt),
	}
}
