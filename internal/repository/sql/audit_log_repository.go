package sql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// AuditLogRepository implements repository.AuditLogRepository for Postgres.
// It only ever inserts and selects.
type AuditLogRepository struct {
	db  *sql.DB
	txn *sql.Tx
}

// NewAuditLogRepository creates a new AuditLogRepository instance.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Create appends an audit entry.
func (r *AuditLogRepository) Create(ctx context.Context, entry *model.AuditLog) error {
	entry.InitMeta()

	query := `INSERT INTO audit_logs (id, user_id, action, table_name, record_id, details, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := execStatement(ctx, getExecutor(r.db, r.txn), query,
		entry.ID, nullableUUID(entry.UserID), string(entry.Action), entry.TableName, entry.RecordID, entry.Details, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert audit log: %w", err)
	}

	return nil
}

// List returns entries newest first, with the actor's full name when a profile exists.
func (r *AuditLogRepository) List(ctx context.Context, query repository.AuditQuery) ([]*model.AuditLog, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT a.id, a.user_id, COALESCE(u.full_name, ''), a.action, a.table_name, a.record_id, a.details, a.created_at
	                          FROM audit_logs a LEFT JOIN user_profiles u ON u.id = a.user_id WHERE 1=1`)

	var args []interface{}
	argIndex := 1

	if query.TableName != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND a.table_name = $%d", argIndex))
		args = append(args, query.TableName)
		argIndex++
	}
	if query.Action != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND a.action = $%d", argIndex))
		args = append(args, string(query.Action))
		argIndex++
	}
	if query.RecordID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND a.record_id = $%d", argIndex))
		args = append(args, *query.RecordID)
		argIndex++
	}

	page := query.Pagination.Normalized()
	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d", argIndex, argIndex+1))
	args = append(args, page.Limit, page.Offset())

	entries := []*model.AuditLog{}
	err := queryRows(ctx, getExecutor(r.db, r.txn), queryBuilder.String(), args, func(rows rowScanner) error {
		var (
			entry  model.AuditLog
			userID uuid.NullUUID
			action string
		)
		if err := rows.Scan(&entry.ID, &userID, &entry.UserName, &action, &entry.TableName,
			&entry.RecordID, &entry.Details, &entry.CreatedAt); err != nil {
			return err
		}
		entry.Action = model.AuditAction(action)
		if userID.Valid {
			id := userID.UUID
			entry.UserID = &id
		}
		entries = append(entries, &entry)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list audit logs: %w", err)
	}

	return entries, nil
}

func nullableUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}
