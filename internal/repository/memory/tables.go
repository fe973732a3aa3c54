package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

type categoryRepository struct {
	r runner
}

func (c *categoryRepository) Create(_ context.Context, category *model.Category) error {
	return c.r.run(func(d *dataset) error {
		if err := d.fail("categories.create"); err != nil {
			return err
		}
		for _, stored := range d.categories {
			if stored.Slug == category.Slug {
				return fmt.Errorf("failed to insert category: %w",
					&repository.UniqueConstraintError{Detail: fmt.Sprintf("Key (slug)=(%s) already exists.", category.Slug)})
			}
		}
		if category.ID == uuid.Nil {
			category.InitMeta()
		}
		cp := *category
		d.categories[category.ID] = &cp
		return nil
	})
}

func (c *categoryRepository) List(_ context.Context) ([]*model.Category, error) {
	categories := []*model.Category{}
	err := c.r.run(func(d *dataset) error {
		for _, stored := range d.categories {
			cp := *stored
			categories = append(categories, &cp)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i].Name < categories[j].Name })
		return nil
	})
	return categories, err
}

func (c *categoryRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Category, error) {
	var found *model.Category
	err := c.r.run(func(d *dataset) error {
		stored, ok := d.categories[id]
		if !ok {
			return apperror.NotFound("category", id)
		}
		cp := *stored
		found = &cp
		return nil
	})
	return found, err
}

func (c *categoryRepository) FindBySlug(_ context.Context, slug string) (*model.Category, error) {
	var found *model.Category
	err := c.r.run(func(d *dataset) error {
		for _, stored := range d.categories {
			if stored.Slug == slug {
				cp := *stored
				found = &cp
				return nil
			}
		}
		return apperror.NotFound("category", slug)
	})
	return found, err
}

func (c *categoryRepository) UpsertBySlug(_ context.Context, category *model.Category) error {
	return c.r.run(func(d *dataset) error {
		for id, stored := range d.categories {
			if stored.Slug == category.Slug {
				stored.Name = category.Name
				category.ID = id
				category.CreatedAt = stored.CreatedAt
				return nil
			}
		}
		if category.ID == uuid.Nil {
			category.InitMeta()
		}
		cp := *category
		d.categories[category.ID] = &cp
		return nil
	})
}

func (c *categoryRepository) Update(_ context.Context, category *model.Category) error {
	return c.r.run(func(d *dataset) error {
		stored, ok := d.categories[category.ID]
		if !ok {
			return apperror.NotFound("category", category.ID)
		}
		for id, other := range d.categories {
			if id != category.ID && other.Slug == category.Slug {
				return fmt.Errorf("failed to update category: %w",
					&repository.UniqueConstraintError{Detail: fmt.Sprintf("Key (slug)=(%s) already exists.", category.Slug)})
			}
		}
		stored.Name = category.Name
		stored.Slug = category.Slug
		category.CreatedAt = stored.CreatedAt
		return nil
	})
}

type auditLogRepository struct {
	r runner
}

func (a *auditLogRepository) Create(_ context.Context, entry *model.AuditLog) error {
	return a.r.run(func(d *dataset) error {
		if err := d.fail("audit_logs.create"); err != nil {
			return err
		}
		entry.InitMeta()
		d.auditLogs = append(d.auditLogs, copyAuditLog(entry))
		return nil
	})
}

func (a *auditLogRepository) List(_ context.Context, query repository.AuditQuery) ([]*model.AuditLog, error) {
	var entries []*model.AuditLog
	err := a.r.run(func(d *dataset) error {
		matched := []*model.AuditLog{}
		for i := len(d.auditLogs) - 1; i >= 0; i-- {
			stored := d.auditLogs[i]
			if query.TableName != "" && stored.TableName != query.TableName {
				continue
			}
			if query.Action != "" && stored.Action != query.Action {
				continue
			}
			if query.RecordID != nil && stored.RecordID != *query.RecordID {
				continue
			}
			entry := copyAuditLog(stored)
			if entry.UserID != nil {
				if profile, ok := d.profiles[*entry.UserID]; ok {
					entry.UserName = profile.FullName
				}
			}
			matched = append(matched, entry)
		}
		sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
		entries = page(matched, query.Pagination)
		return nil
	})
	return entries, err
}

type orderRepository struct {
	r runner
}

func (o *orderRepository) Create(_ context.Context, order *model.Order) error {
	return o.r.run(func(d *dataset) error {
		if err := d.fail("orders.create"); err != nil {
			return err
		}
		order.InitMeta()
		for i := range order.Items {
			order.Items[i].ID = uuid.New()
			order.Items[i].OrderID = order.ID
		}
		d.orders[order.ID] = copyOrder(order)
		d.orderOrder = append(d.orderOrder, order.ID)
		return nil
	})
}

func (o *orderRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	var found *model.Order
	err := o.r.run(func(d *dataset) error {
		stored, ok := d.orders[id]
		if !ok {
			return apperror.NotFound("order", id)
		}
		found = d.joinedOrder(stored)
		return nil
	})
	return found, err
}

func (o *orderRepository) List(_ context.Context, query repository.OrderQuery) ([]*model.Order, error) {
	var orders []*model.Order
	err := o.r.run(func(d *dataset) error {
		matched := []*model.Order{}
		for i := len(d.orderOrder) - 1; i >= 0; i-- {
			stored := d.orders[d.orderOrder[i]]
			if query.UserID != nil && stored.UserID != *query.UserID {
				continue
			}
			if query.Status != "" && stored.Status != query.Status {
				continue
			}
			matched = append(matched, d.joinedOrder(stored))
		}
		var less func(a, b *model.Order) bool
		switch query.Sort {
		case "created_at-asc":
			less = func(a, b *model.Order) bool { return a.CreatedAt.Before(b.CreatedAt) }
		case "total-asc":
			less = func(a, b *model.Order) bool { return a.Total.LessThan(b.Total) }
		case "total-desc":
			less = func(a, b *model.Order) bool { return a.Total.GreaterThan(b.Total) }
		default:
			less = func(a, b *model.Order) bool { return a.CreatedAt.After(b.CreatedAt) }
		}
		sort.SliceStable(matched, func(i, j int) bool { return less(matched[i], matched[j]) })
		orders = page(matched, query.Pagination)
		return nil
	})
	return orders, err
}

func (o *orderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.OrderStatus, trackingCode string) error {
	return o.r.run(func(d *dataset) error {
		if err := d.fail("orders.update_status"); err != nil {
			return err
		}
		stored, ok := d.orders[id]
		if !ok {
			return apperror.NotFound("order", id)
		}
		stored.Status = status
		if trackingCode != "" {
			stored.TrackingCode = trackingCode
		}
		stored.UpdatedAt = time.Now().UTC()
		return nil
	})
}

func (d *dataset) joinedOrder(stored *model.Order) *model.Order {
	order := copyOrder(stored)
	if profile, ok := d.profiles[order.UserID]; ok {
		order.CustomerName = profile.FullName
	}
	return order
}

type userProfileRepository struct {
	r runner
}

func (u *userProfileRepository) FindByID(_ context.Context, id uuid.UUID) (*model.UserProfile, error) {
	var found *model.UserProfile
	err := u.r.run(func(d *dataset) error {
		stored, ok := d.profiles[id]
		if !ok {
			return apperror.NotFound("user profile", id)
		}
		cp := *stored
		found = &cp
		return nil
	})
	return found, err
}

func (u *userProfileRepository) List(_ context.Context, p repository.Pagination) ([]*model.UserProfile, error) {
	var profiles []*model.UserProfile
	err := u.r.run(func(d *dataset) error {
		all := make([]*model.UserProfile, 0, len(d.profiles))
		for _, stored := range d.profiles {
			cp := *stored
			all = append(all, &cp)
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].CreatedAt.Equal(all[j].CreatedAt) {
				return all[i].ID.String() > all[j].ID.String()
			}
			return all[i].CreatedAt.After(all[j].CreatedAt)
		})
		profiles = page(all, p)
		return nil
	})
	return profiles, err
}

func (u *userProfileRepository) Upsert(_ context.Context, profile *model.UserProfile) error {
	return u.r.run(func(d *dataset) error {
		now := time.Now().UTC()
		if stored, ok := d.profiles[profile.ID]; ok {
			profile.CreatedAt = stored.CreatedAt
		} else if profile.CreatedAt.IsZero() {
			profile.CreatedAt = now
		}
		profile.UpdatedAt = now
		cp := *profile
		d.profiles[profile.ID] = &cp
		return nil
	})
}

type addressRepository struct {
	r runner
}

func (a *addressRepository) Create(_ context.Context, address *model.Address) error {
	return a.r.run(func(d *dataset) error {
		address.InitMeta()
		cp := *address
		d.addresses[address.ID] = &cp
		return nil
	})
}

func (a *addressRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Address, error) {
	var found *model.Address
	err := a.r.run(func(d *dataset) error {
		stored, ok := d.addresses[id]
		if !ok {
			return apperror.NotFound("address", id)
		}
		cp := *stored
		found = &cp
		return nil
	})
	return found, err
}

func (a *addressRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Address, error) {
	addresses := []*model.Address{}
	err := a.r.run(func(d *dataset) error {
		for _, stored := range d.addresses {
			if stored.UserID == userID {
				cp := *stored
				addresses = append(addresses, &cp)
			}
		}
		sort.Slice(addresses, func(i, j int) bool {
			if addresses[i].IsDefault != addresses[j].IsDefault {
				return addresses[i].IsDefault
			}
			return addresses[i].CreatedAt.After(addresses[j].CreatedAt)
		})
		return nil
	})
	return addresses, err
}

func (a *addressRepository) ClearDefault(_ context.Context, userID uuid.UUID) error {
	return a.r.run(func(d *dataset) error {
		for _, stored := range d.addresses {
			if stored.UserID == userID {
				stored.IsDefault = false
			}
		}
		return nil
	})
}

func (a *addressRepository) Update(_ context.Context, address *model.Address) error {
	return a.r.run(func(d *dataset) error {
		stored, ok := d.addresses[address.ID]
		if !ok || stored.UserID != address.UserID {
			return apperror.NotFound("address", address.ID)
		}
		address.CreatedAt = stored.CreatedAt
		cp := *address
		d.addresses[address.ID] = &cp
		return nil
	})
}

func (a *addressRepository) Delete(_ context.Context, userID, id uuid.UUID) error {
	return a.r.run(func(d *dataset) error {
		stored, ok := d.addresses[id]
		if !ok || stored.UserID != userID {
			return apperror.NotFound("address", id)
		}
		delete(d.addresses, id)
		for _, order := range d.orders {
			if order.AddressID != nil && *order.AddressID == id {
				order.AddressID = nil
			}
		}
		return nil
	})
}

type wishlistRepository struct {
	r runner
}

func (w *wishlistRepository) Add(_ context.Context, item *model.WishlistItem) error {
	return w.r.run(func(d *dataset) error {
		if _, ok := d.products[item.ProductID]; !ok {
			return fmt.Errorf("failed to insert wishlist item: product %s does not exist", item.ProductID)
		}
		for _, stored := range d.wishlist {
			if stored.UserID == item.UserID && stored.ProductID == item.ProductID {
				return nil
			}
		}
		item.InitMeta()
		cp := *item
		d.wishlist = append(d.wishlist, &cp)
		return nil
	})
}

func (w *wishlistRepository) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.WishlistItem, error) {
	items := []*model.WishlistItem{}
	err := w.r.run(func(d *dataset) error {
		for i := len(d.wishlist) - 1; i >= 0; i-- {
			stored := d.wishlist[i]
			if stored.UserID != userID {
				continue
			}
			product, ok := d.products[stored.ProductID]
			if !ok || product.IsDeleted() {
				continue
			}
			item := *stored
			item.ProductName = product.Name
			item.ProductSlug = product.Slug
			item.Price = product.Price
			item.DiscountPrice = product.DiscountPrice
			if len(product.Images) > 0 {
				item.Image = product.Images[0]
			}
			items = append(items, &item)
		}
		return nil
	})
	return items, err
}

func (w *wishlistRepository) Remove(_ context.Context, userID, productID uuid.UUID) error {
	return w.r.run(func(d *dataset) error {
		kept := d.wishlist[:0]
		for _, stored := range d.wishlist {
			if stored.UserID != userID || stored.ProductID != productID {
				kept = append(kept, stored)
			}
		}
		d.wishlist = kept
		return nil
	})
}

type eventRepository struct {
	r runner
}

func (e *eventRepository) Create(_ context.Context, event *model.Event) error {
	return e.r.run(func(d *dataset) error {
		if err := d.fail("events.create"); err != nil {
			return err
		}
		event.InitMeta()
		d.events = append(d.events, copyEvent(event))
		return nil
	})
}

func (e *eventRepository) ListPending(_ context.Context, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = repository.DefaultPaginationLimit
	}
	var events []*model.Event
	err := e.r.run(func(d *dataset) error {
		for _, stored := range d.events {
			if stored.Status != model.EventStatusPending {
				continue
			}
			events = append(events, copyEvent(stored))
			if len(events) == limit {
				break
			}
		}
		return nil
	})
	return events, err
}

func (e *eventRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.EventStatus) error {
	return e.r.run(func(d *dataset) error {
		for _, stored := range d.events {
			if stored.ID == id {
				now := time.Now().UTC()
				stored.Status = status
				stored.ProcessedAt = &now
			}
		}
		return nil
	})
}
