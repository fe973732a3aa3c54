package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog product with its images and specifications.
// A product is visible to customers iff DeletedAt is nil.
type Product struct {
	ID             uuid.UUID
	Name           string
	Slug           string
	Description    string
	Price          decimal.Decimal
	DiscountPrice  decimal.NullDecimal
	CategoryID     uuid.UUID
	Category       *Category
	Stock          int
	Featured       bool
	Images         []string
	Specifications []Specification
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Specification is a name/value pair describing a product attribute.
type Specification struct {
	Name  string
	Value string
}

// InitMeta initializes the product metadata including ID and timestamps.
func (p *Product) InitMeta() {
	p.ID = uuid.New()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
}

// IsDeleted reports whether the product carries the soft-delete marker.
func (p *Product) IsDeleted() bool {
	return p.DeletedAt != nil
}

// EffectivePrice is the discount price when present, otherwise the price.
func (p *Product) EffectivePrice() decimal.Decimal {
	if p.DiscountPrice.Valid {
		return p.DiscountPrice.Decimal
	}
	return p.Price
}

// CategorySlug returns the slug of the joined category, or "" when not joined.
func (p *Product) CategorySlug() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Slug
}
