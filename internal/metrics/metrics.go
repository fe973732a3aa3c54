package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProductLifecycleOps counts committed product lifecycle operations by action.
	ProductLifecycleOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_lifecycle_operations_total",
		Help: "The total number of committed product lifecycle operations",
	}, []string{"action"})

	// AuditEntries counts audit entries written by table and action.
	AuditEntries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_entries_total",
		Help: "The total number of audit entries written",
	}, []string{"table", "action"})

	// OrderTransitions counts applied order status transitions.
	OrderTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "The total number of order status transitions",
	}, []string{"from", "to"})

	// OrdersPlaced counts checkouts.
	OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "The total number of orders placed",
	})

	// ProductCacheLookups counts product cache reads by result (hit, miss, error).
	ProductCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "product_cache_lookups_total",
		Help: "The total number of product cache lookups",
	}, []string{"result"})

	// OutboxEvents counts published and failed outbox events.
	OutboxEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_total",
		Help: "The total number of outbox events handled by status",
	}, []string{"status"})
)
