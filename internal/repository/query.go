package repository

import (
	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
)

const (
	// DefaultPaginationLimit is the default number of items per page.
	DefaultPaginationLimit = 10
	maxPaginationLimit     = 100
)

// Pagination is a 1-based page of Limit items.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination normalizes page and limit: page defaults to 1, limit to
// DefaultPaginationLimit, and limit is capped.
func NewPagination(page, limit int) Pagination {
	p := Pagination{Page: page, Limit: DefaultPaginationLimit}
	if limit > 0 {
		p.Limit = min(maxPaginationLimit, limit)
	}
	if p.Page < 1 {
		p.Page = 1
	}
	return p
}

// Normalized returns p passed through NewPagination.
func (p Pagination) Normalized() Pagination {
	return NewPagination(p.Page, p.Limit)
}

// Offset is the number of rows skipped before the page.
func (p Pagination) Offset() int {
	n := p.Normalized()
	return (n.Page - 1) * n.Limit
}

// ProductSort is the ordering applied to product listings.
type ProductSort string

const (
	SortNewest    ProductSort = ""
	SortNameAsc   ProductSort = "name-asc"
	SortNameDesc  ProductSort = "name-desc"
	SortPriceAsc  ProductSort = "price-asc"
	SortPriceDesc ProductSort = "price-desc"
)

// ParseProductSort maps a sort key to a ProductSort. Unknown keys fall back to newest first.
func ParseProductSort(key string) ProductSort {
	switch s := ProductSort(key); s {
	case SortNameAsc, SortNameDesc, SortPriceAsc, SortPriceDesc:
		return s
	default:
		return SortNewest
	}
}

// ProductQuery filters a product listing.
type ProductQuery struct {
	CategorySlug string
	Featured     *bool
	Search       string
	// IncludeDeleted reads from the all_products view.
	IncludeDeleted bool
	// OnlyDeleted returns soft-deleted rows only; it implies IncludeDeleted.
	OnlyDeleted bool
	Sort        ProductSort
	Pagination
}

// AuditQuery filters the audit trail. Empty fields do not filter.
type AuditQuery struct {
	TableName string
	Action    model.AuditAction
	RecordID  *uuid.UUID
	Pagination
}

// OrderQuery filters order listings.
type OrderQuery struct {
	UserID *uuid.UUID
	Status model.OrderStatus
	// Sort is one of created_at-desc (default), created_at-asc, total-asc, total-desc.
	Sort string
	Pagination
}
