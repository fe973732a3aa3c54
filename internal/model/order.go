package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCanceled   OrderStatus = "canceled"
)

// orderTransitions is the adjacency list of allowed status moves.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCanceled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCanceled},
	OrderStatusShipped:    {OrderStatusDelivered},
	OrderStatusDelivered:  nil,
	OrderStatusCanceled:   nil,
}

// Valid reports whether s is a known status.
func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Self-transitions are never allowed.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextStatuses lists the statuses reachable from s in one move.
func (s OrderStatus) NextStatuses() []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[s]...)
}

// Order is a customer order. Items carry name and price snapshots because the
// product may change or be deleted after ordering.
type Order struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	CustomerName  string
	Status        OrderStatus
	Total         decimal.Decimal
	ShippingFee   decimal.Decimal
	AddressID     *uuid.UUID
	PaymentMethod string
	Notes         string
	TrackingCode  string
	Items         []OrderItem
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderItem is one order line.
type OrderItem struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

func (o *Order) InitMeta() {
	o.ID = uuid.New()
	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now
	if o.Status == "" {
		o.Status = OrderStatusPending
	}
}

// Subtotal sums price * quantity over the items.
func (o *Order) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
