package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WishlistItem links a user to a product they saved.
type WishlistItem struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	ProductID uuid.UUID
	CreatedAt time.Time

	// Joined product summary.
	ProductName   string
	ProductSlug   string
	Price         decimal.Decimal
	DiscountPrice decimal.NullDecimal
	Image         string
}

func (w *WishlistItem) InitMeta() {
	w.ID = uuid.New()
	w.CreatedAt = time.Now().UTC()
}
