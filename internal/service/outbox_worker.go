package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iyhunko/storefront-backoffice/internal/metrics"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// EventPublisher sends an encoded outbox event to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, body []byte) error
}

// OutboxWorker polls the events table and publishes pending events.
type OutboxWorker struct {
	events    repository.EventRepository
	publisher EventPublisher
	interval  time.Duration
	batchSize int
	stopChan  chan struct{}
}

// NewOutboxWorker creates a new OutboxWorker.
func NewOutboxWorker(events repository.EventRepository, publisher EventPublisher, interval time.Duration, batchSize int) *OutboxWorker {
	return &OutboxWorker{
		events:    events,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		stopChan:  make(chan struct{}),
	}
}

// Start processes pending events every interval until ctx is done or Stop is called.
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval), slog.Int("batch_size", w.batchSize))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// Stop stops the outbox worker.
func (w *OutboxWorker) Stop() {
	close(w.stopChan)
}

// ProcessPending publishes one batch of pending events and returns how many
// were published. Each event is marked processed or failed.
func (w *OutboxWorker) ProcessPending(ctx context.Context) int {
	events, err := w.events.ListPending(ctx, w.batchSize)
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return 0
	}
	if len(events) == 0 {
		return 0
	}

	slog.Debug("Processing pending events", slog.Int("count", len(events)))

	published := 0
	for _, event := range events {
		status := model.EventStatusProcessed
		if err := w.publisher.Publish(ctx, event.EventType, event.EventData); err != nil {
			slog.Error("Failed to publish event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			status = model.EventStatusFailed
		} else {
			published++
		}
		metrics.OutboxEvents.WithLabelValues(string(status)).Inc()

		if err := w.events.UpdateStatus(ctx, event.ID, status); err != nil {
			slog.Error("Failed to update event status",
				slog.String("event_id", event.ID.String()),
				slog.String("status", string(status)),
				slog.Any("err", err))
		}
	}
	return published
}
