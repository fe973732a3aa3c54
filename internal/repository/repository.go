package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
)

// ErrInsufficientStock is returned when an order asks for more units than a product has.
var ErrInsufficientStock = errors.New("insufficient stock")

// Store gives access to every table repository. Implementations bound to a
// transaction route all calls through that transaction.
type Store interface {
	Products() ProductRepository
	Categories() CategoryRepository
	AuditLogs() AuditLogRepository
	Orders() OrderRepository
	UserProfiles() UserProfileRepository
	Addresses() AddressRepository
	Wishlist() WishlistRepository
	Events() EventRepository
}

// Gateway is a Store that can run a function inside one transaction.
// If fn returns an error every write made through tx is rolled back.
type Gateway interface {
	Store
	WithinTransaction(ctx context.Context, fn func(tx Store) error) error
}

// ProductRepository manages products and their image and specification rows.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	// FindByID resolves a product regardless of its deletion marker.
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	// FindBySlug resolves an active product only.
	FindBySlug(ctx context.Context, slug string) (*model.Product, error)
	// FindByIDs returns the rows that exist among ids, without images or specifications.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*model.Product, error)
	List(ctx context.Context, query ProductQuery) ([]*model.Product, error)
	// SetDeletedAt updates the marker of every id in one statement.
	SetDeletedAt(ctx context.Context, ids []uuid.UUID, at *time.Time) (int64, error)
	ReplaceImages(ctx context.Context, productID uuid.UUID, urls []string) error
	ReplaceSpecifications(ctx context.Context, productID uuid.UUID, specs []model.Specification) error
	DecreaseStock(ctx context.Context, productID uuid.UUID, quantity int) error
	// DeleteByID removes the row permanently, cascading to images and specifications.
	DeleteByID(ctx context.Context, id uuid.UUID) error
	// UpsertBySlug inserts or updates the row identified by product.Slug and sets product.ID.
	UpsertBySlug(ctx context.Context, product *model.Product) error
}

// CategoryRepository manages product categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *model.Category) error
	List(ctx context.Context) ([]*model.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Category, error)
	FindBySlug(ctx context.Context, slug string) (*model.Category, error)
	UpsertBySlug(ctx context.Context, category *model.Category) error
	Update(ctx context.Context, category *model.Category) error
}

// AuditLogRepository appends and reads audit entries. Entries are never updated or deleted.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, query AuditQuery) ([]*model.AuditLog, error)
}

// OrderRepository manages orders and their items.
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, query OrderQuery) ([]*model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingCode string) error
}

// UserProfileRepository reads application profiles of identities.
type UserProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.UserProfile, error)
	List(ctx context.Context, page Pagination) ([]*model.UserProfile, error)
	Upsert(ctx context.Context, profile *model.UserProfile) error
}

// AddressRepository manages the shipping addresses of a user.
type AddressRepository interface {
	Create(ctx context.Context, address *model.Address) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Address, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.Address, error)
	ClearDefault(ctx context.Context, userID uuid.UUID) error
	Update(ctx context.Context, address *model.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// WishlistRepository manages saved products of a user.
type WishlistRepository interface {
	Add(ctx context.Context, item *model.WishlistItem) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*model.WishlistItem, error)
	Remove(ctx context.Context, userID, productID uuid.UUID) error
}

// EventRepository is the outbox of lifecycle messages.
type EventRepository interface {
	Create(ctx context.Context, event *model.Event) error
	ListPending(ctx context.Context, limit int) ([]*model.Event, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.EventStatus) error
}

// UniqueConstraintError represents a database unique constraint violation error.
type UniqueConstraintError struct {
	Detail string
}

func (u *UniqueConstraintError) Error() string {
	return "resource must be unique: " + u.Detail
}
