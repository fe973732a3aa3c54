package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/metrics"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/shopspring/decimal"
)

// ShippingPolicy is the flat shipping fee waived from a minimum subtotal.
type ShippingPolicy struct {
	Fee                 decimal.Decimal
	FreeShippingMinimum decimal.Decimal
}

// FeeFor returns the shipping fee charged for subtotal.
func (p ShippingPolicy) FeeFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(p.FreeShippingMinimum) {
		return decimal.Zero
	}
	return p.Fee
}

// CheckoutItem is one cart line.
type CheckoutItem struct {
	ProductID uuid.UUID
	Quantity  int
}

// CheckoutInput is the cart submitted at checkout.
type CheckoutInput struct {
	Items         []CheckoutItem
	AddressID     *uuid.UUID
	PaymentMethod string
	Notes         string
}

// OrderService places orders and drives the order status workflow.
type OrderService struct {
	gateway  repository.Gateway
	shipping ShippingPolicy
}

func NewOrderService(gateway repository.Gateway, shipping ShippingPolicy) *OrderService {
	return &OrderService{
		gateway:  gateway,
		shipping: shipping,
	}
}

// UpdateStatus moves order id to status. Moves outside the transition table,
// self-transitions included, fail with apperror.ErrInvalidTransition.
func (o *OrderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, trackingCode string) (*model.Order, error) {
	actor, err := auth.AdminFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if !status.Valid() {
		return nil, apperror.Validation("status", fmt.Sprintf("unknown order status %q", status))
	}
	trackingCode = strings.TrimSpace(trackingCode)

	var (
		updated *model.Order
		from    model.OrderStatus
	)
	err = withinAuditedTransaction(ctx, o.gateway, func(tx repository.Store, tally *auditTally) error {
		order, err := tx.Orders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		from = order.Status
		if !from.CanTransitionTo(status) {
			return fmt.Errorf("order %s from %s to %s: %w", id, from, status, apperror.ErrInvalidTransition)
		}
		if err := tx.Orders().UpdateStatus(ctx, id, status, trackingCode); err != nil {
			return err
		}

		details := model.AuditDetails{
			model.DetailFrom: string(from),
			model.DetailTo:   string(status),
		}
		if trackingCode != "" {
			details[model.DetailTrackingCode] = trackingCode
		}
		if err := recordAudit(ctx, tx, tally, actor, model.AuditActionUpdateStatus, model.TableOrders, id, details); err != nil {
			return err
		}
		updated, err = tx.Orders().FindByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence("update order status", err)
	}

	metrics.OrderTransitions.WithLabelValues(string(from), string(status)).Inc()
	return updated, nil
}

// Checkout places a pending order for the authenticated user. Items snapshot
// the product name and effective price, and stock is decreased.
func (o *OrderService) Checkout(ctx context.Context, in CheckoutInput) (*model.Order, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}
	ids, quantities, err := in.lines()
	if err != nil {
		return nil, err
	}

	var placed *model.Order
	err = withinAuditedTransaction(ctx, o.gateway, func(tx repository.Store, tally *auditTally) error {
		if in.AddressID != nil {
			address, err := tx.Addresses().FindByID(ctx, *in.AddressID)
			if errors.Is(err, apperror.ErrNotFound) || (err == nil && address.UserID != user.UserID) {
				return apperror.Validation("addressId", "address does not exist")
			}
			if err != nil {
				return err
			}
		}

		products, err := tx.Products().FindByIDs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]*model.Product, len(products))
		for _, product := range products {
			byID[product.ID] = product
		}

		order := &model.Order{
			UserID:        user.UserID,
			AddressID:     in.AddressID,
			PaymentMethod: in.PaymentMethod,
			Notes:         in.Notes,
		}
		for _, id := range ids {
			product, ok := byID[id]
			if !ok || product.IsDeleted() {
				return apperror.Validation("items", fmt.Sprintf("product %s is not available", id))
			}
			if err := tx.Products().DecreaseStock(ctx, id, quantities[id]); err != nil {
				if errors.Is(err, repository.ErrInsufficientStock) {
					return apperror.Validation("items", fmt.Sprintf("not enough stock for %s", product.Name))
				}
				return err
			}
			order.Items = append(order.Items, model.OrderItem{
				ProductID:   id,
				ProductName: product.Name,
				Price:       product.EffectivePrice(),
				Quantity:    quantities[id],
			})
		}
		subtotal := order.Subtotal()
		order.ShippingFee = o.shipping.FeeFor(subtotal)
		order.Total = subtotal.Add(order.ShippingFee)

		if err := tx.Orders().Create(ctx, order); err != nil {
			return err
		}
		details := model.AuditDetails{model.DetailTotal: order.Total.StringFixed(2)}
		if err := recordAudit(ctx, tx, tally, user, model.AuditActionCreate, model.TableOrders, order.ID, details); err != nil {
			return err
		}
		placed, err = tx.Orders().FindByID(ctx, order.ID)
		return err
	})
	if err != nil {
		return nil, apperror.Persistence("checkout", err)
	}

	metrics.OrdersPlaced.Inc()
	return placed, nil
}

// ListMine returns the authenticated user's orders, newest first.
func (o *OrderService) ListMine(ctx context.Context, page repository.Pagination) ([]*model.Order, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	orders, err := o.gateway.Orders().List(ctx, repository.OrderQuery{
		UserID:     &user.UserID,
		Pagination: page.Normalized(),
	})
	if err != nil {
		return nil, apperror.Persistence("list orders", err)
	}
	return orders, nil
}

// Get returns order id to its owner or to an admin. Other callers get NotFound.
func (o *OrderService) Get(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	user, err := auth.UserFromContext(ctx)
	if err != nil {
		return nil, err
	}

	order, err := o.gateway.Orders().FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence("get order", err)
	}
	if order.UserID != user.UserID && !user.IsAdmin {
		return nil, apperror.NotFound("order", id)
	}
	return order, nil
}

// ListAll returns every order for admins, filtered by status.
func (o *OrderService) ListAll(ctx context.Context, query repository.OrderQuery) ([]*model.Order, error) {
	if _, err := auth.AdminFromContext(ctx); err != nil {
		return nil, err
	}
	if query.Status != "" && !query.Status.Valid() {
		return nil, apperror.Validation("status", fmt.Sprintf("unknown order status %q", query.Status))
	}
	query.Pagination = query.Normalized()

	orders, err := o.gateway.Orders().List(ctx, query)
	if err != nil {
		return nil, apperror.Persistence("list orders", err)
	}
	return orders, nil
}

// lines validates the cart and merges repeated products, keeping first-seen order.
func (in CheckoutInput) lines() ([]uuid.UUID, map[uuid.UUID]int, error) {
	if len(in.Items) == 0 {
		return nil, nil, apperror.Validation("items", "cart is empty")
	}
	ids := make([]uuid.UUID, 0, len(in.Items))
	quantities := make(map[uuid.UUID]int, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return nil, nil, apperror.Validation("items", "product id is required")
		}
		if item.Quantity <= 0 {
			return nil, nil, apperror.Validation("items", "quantity must be positive")
		}
		if _, seen := quantities[item.ProductID]; !seen {
			ids = append(ids, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}
	return ids, quantities, nil
}
