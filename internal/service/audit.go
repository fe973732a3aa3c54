package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/metrics"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
	"github.com/iyhunko/storefront-backoffice/internal/sqs"
)

// auditTally collects the audit entries written inside one transaction.
type auditTally struct {
	entries []auditKey
}

type auditKey struct {
	table  string
	action model.AuditAction
}

func (t *auditTally) add(table string, action model.AuditAction) {
	t.entries = append(t.entries, auditKey{table: table, action: action})
}

// withinAuditedTransaction runs fn in one transaction. Audit entries recorded
// through the tally reach metrics only after the transaction commits.
func withinAuditedTransaction(ctx context.Context, gateway repository.Gateway, fn func(tx repository.Store, tally *auditTally) error) error {
	tally := &auditTally{}
	err := gateway.WithinTransaction(ctx, func(tx repository.Store) error {
		tally.entries = tally.entries[:0]
		return fn(tx, tally)
	})
	if err != nil {
		return err
	}
	for _, entry := range tally.entries {
		metrics.AuditEntries.WithLabelValues(entry.table, string(entry.action)).Inc()
	}
	return nil
}

// recordAudit appends one audit entry for actor through tx.
func recordAudit(ctx context.Context, tx repository.Store, tally *auditTally, actor auth.Principal, action model.AuditAction, table string, recordID uuid.UUID, details model.AuditDetails) error {
	entry := &model.AuditLog{
		UserID:    actorID(actor),
		Action:    action,
		TableName: table,
		RecordID:  recordID,
		Details:   details,
	}
	if err := tx.AuditLogs().Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	tally.add(table, action)
	return nil
}

// recordLifecycle writes the audit entry and the outbox event of one product
// lifecycle action through tx.
func recordLifecycle(ctx context.Context, tx repository.Store, tally *auditTally, actor auth.Principal, action model.AuditAction, product *model.Product) error {
	if err := recordAudit(ctx, tx, tally, actor, action, model.TableProducts, product.ID, model.ProductDetails(product.Name)); err != nil {
		return err
	}

	msg := sqs.LifecycleMessage{
		Action:     string(action),
		ProductID:  product.ID.String(),
		Name:       product.Name,
		Slug:       product.Slug,
		Price:      product.Price,
		Actor:      actor.UserID.String(),
		OccurredAt: time.Now().UTC(),
	}
	event, err := model.NewEvent(msg.EventType(), msg)
	if err != nil {
		return err
	}
	if err := tx.Events().Create(ctx, event); err != nil {
		return fmt.Errorf("failed to write outbox event: %w", err)
	}
	return nil
}

func actorID(actor auth.Principal) *uuid.UUID {
	if actor.UserID == uuid.Nil {
		return nil
	}
	id := actor.UserID
	return &id
}

// uniqueAsValidation turns a unique violation into a validation error on field.
func uniqueAsValidation(err error, field, message string) error {
	var uErr *repository.UniqueConstraintError
	if errors.As(err, &uErr) {
		return apperror.Validation(field, message)
	}
	return err
}
