package service

import (
	"context"

	"github.com/iyhunko/storefront-backoffice/internal/apperror"
	"github.com/iyhunko/storefront-backoffice/internal/auth"
	"github.com/iyhunko/storefront-backoffice/internal/model"
	"github.com/iyhunko/storefront-backoffice/internal/repository"
)

// AuditService reads the audit trail for admins.
type AuditService struct {
	logs repository.AuditLogRepository
}

func NewAuditService(logs repository.AuditLogRepository) *AuditService {
	return &AuditService{logs: logs}
}

// List returns entries newest first, filtered by table, action and record id.
func (as *AuditService) List(ctx context.Context, query repository.AuditQuery) ([]*model.AuditLog, error) {
	if _, err := auth.AdminFromContext(ctx); err != nil {
		return nil, err
	}
	query.Pagination = query.Normalized()

	entries, err := as.logs.List(ctx, query)
	if err != nil {
		return nil, apperror.Persistence("list audit logs", err)
	}
	return entries, nil
}
