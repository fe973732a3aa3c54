// Package memory is an in-process implementation of repository.Gateway.
// It keeps the same observable semantics as the Postgres gateway and is used
// by service and HTTP tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// dataset holds every table. Records are owned by the dataset: callers only
// ever receive copies.
type dataset struct {
	products     map[uuid.UUID]*model.Product
	productOrder []uuid.UUID
	categories   map[uuid.UUID]*model.Category
	auditLogs    []*model.AuditLog
	orders       map[uuid.UUID]*model.Order
	orderOrder   []uuid.UUID
	profiles     map[uuid.UUID]*model.UserProfile
	addresses    map[uuid.UUID]*model.Address
	wishlist     []*model.WishlistItem
	events       []*model.Event

	// failures is shared between a dataset and its clones.
	failures map[string]error
}

func newDataset() *dataset {
	return &dataset{
		products:   map[uuid.UUID]*model.Product{},
		categories: map[uuid.UUID]*model.Category{},
		orders:     map[uuid.UUID]*model.Order{},
		profiles:   map[uuid.UUID]*model.UserProfile{},
		addresses:  map[uuid.UUID]*model.Address{},
		failures:   map[string]error{},
	}
}

func (d *dataset) clone() *dataset {
	c := &dataset{
		products:     make(map[uuid.UUID]*model.Product, len(d.products)),
		productOrder: append([]uuid.UUID(nil), d.productOrder...),
		categories:   make(map[uuid.UUID]*model.Category, len(d.categories)),
		auditLogs:    make([]*model.AuditLog, 0, len(d.auditLogs)),
		orders:       make(map[uuid.UUID]*model.Order, len(d.orders)),
		orderOrder:   append([]uuid.UUID(nil), d.orderOrder...),
		profiles:     make(map[uuid.UUID]*model.UserProfile, len(d.profiles)),
		addresses:    make(map[uuid.UUID]*model.Address, len(d.addresses)),
		wishlist:     make([]*model.WishlistItem, 0, len(d.wishlist)),
		events:       make([]*model.Event, 0, len(d.events)),
		failures:     d.failures,
	}
	for id, p := range d.products {
		c.products[id] = copyProduct(p)
	}
	for id, cat := range d.categories {
		cp := *cat
		c.categories[id] = &cp
	}
	for _, entry := range d.auditLogs {
		c.auditLogs = append(c.auditLogs, copyAuditLog(entry))
	}
	for id, o := range d.orders {
		c.orders[id] = copyOrder(o)
	}
	for id, p := range d.profiles {
		cp := *p
		c.profiles[id] = &cp
	}
	for id, a := range d.addresses {
		cp := *a
		c.addresses[id] = &cp
	}
	for _, w := range d.wishlist {
		cp := *w
		c.wishlist = append(c.wishlist, &cp)
	}
	for _, e := range d.events {
		c.events = append(c.events, copyEvent(e))
	}
	return c
}

// fail returns the error injected for op, if any.
func (d *dataset) fail(op string) error {
	return d.failures[op]
}

// runner executes fn against the dataset it is bound to.
type runner interface {
	run(fn func(d *dataset) error) error
}

// Store is an in-memory repository.Gateway. The zero value is not usable; use NewStore.
type Store struct {
	mu   sync.Mutex
	data *dataset
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

func (s *Store) run(fn func(d *dataset) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

// FailOn makes every later call of op return err until cleared with a nil err.
// Operations are named "<table>.<method>", e.g. "audit_logs.create".
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.data.failures, op)
		return
	}
	s.data.failures[op] = err
}

// WithinTransaction runs fn against a snapshot of the store. The snapshot
// replaces the store contents only when fn succeeds. Transactions are serialized.
func (s *Store) WithinTransaction(_ context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(newTxStore(snapshot)); err != nil {
		return err
	}
	s.data = snapshot
	return nil
}

func (s *Store) Products() repository.ProductRepository {
	return &productRepository{r: s}
}

func (s *Store) Categories() repository.CategoryRepository {
	return &categoryRepository{r: s}
}

func (s *Store) AuditLogs() repository.AuditLogRepository {
	return &auditLogRepository{r: s}
}

func (s *Store) Orders() repository.OrderRepository {
	return &orderRepository{r: s}
}

func (s *Store) UserProfiles() repository.UserProfileRepository {
	return &userProfileRepository{r: s}
}

func (s *Store) Addresses() repository.AddressRepository {
	return &addressRepository{r: s}
}

func (s *Store) Wishlist() repository.WishlistRepository {
	return &wishlistRepository{r: s}
}

func (s *Store) Events() repository.EventRepository {
	return &eventRepository{r: s}
}

// txStore is the repository.Store handed to a transaction function. The
// Store lock is already held.
type txStore struct {
	data *dataset
}

func newTxStore(data *dataset) *txStore {
	return &txStore{data: data}
}

func (t *txStore) run(fn func(d *dataset) error) error {
	return fn(t.data)
}

func (t *txStore) Products() repository.ProductRepository {
	return &productRepository{r: t}
}

func (t *txStore) Categories() repository.CategoryRepository {
	return &categoryRepository{r: t}
}

func (t *txStore) AuditLogs() repository.AuditLogRepository {
	return &auditLogRepository{r: t}
}

func (t *txStore) Orders() repository.OrderRepository {
	return &orderRepository{r: t}
}

func (t *txStore) UserProfiles() repository.UserProfileRepository {
	return &userProfileRepository{r: t}
}

func (t *txStore) Addresses() repository.AddressRepository {
	return &addressRepository{r: t}
}

func (t *txStore) Wishlist() repository.WishlistRepository {
	return &wishlistRepository{r: t}
}

func (t *txStore) Events() repository.EventRepository {
	return &eventRepository{r: t}
}

func copyProduct(p *model.Product) *model.Product {
	cp := *p
	cp.Images = append([]string{}, p.Images...)
	cp.Specifications = append([]model.Specification{}, p.Specifications...)
	if p.DeletedAt != nil {
		t := *p.DeletedAt
		cp.DeletedAt = &t
	}
	if p.Category != nil {
		cat := *p.Category
		cp.Category = &cat
	}
	return &cp
}

func copyOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem{}, o.Items...)
	if o.AddressID != nil {
		id := *o.AddressID
		cp.AddressID = &id
	}
	return &cp
}

func copyAuditLog(a *model.AuditLog) *model.AuditLog {
	cp := *a
	if a.UserID != nil {
		id := *a.UserID
		cp.UserID = &id
	}
	if a.Details != nil {
		cp.Details = make(model.AuditDetails, len(a.Details))
		for k, v := range a.Details {
			cp.Details[k] = v
		}
	}
	return &cp
}

func copyEvent(e *model.Event) *model.Event {
	cp := *e
	cp.EventData = append([]byte(nil), e.EventData...)
	if e.ProcessedAt != nil {
		t := *e.ProcessedAt
		cp.ProcessedAt = &t
	}
	return &cp
}

// page slices items to the requested page.
func page[T any](items []T, p repository.Pagination) []T {
	p = p.Normalized()
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := min(start+p.Limit, len(items))
	return items[start:end]
}
