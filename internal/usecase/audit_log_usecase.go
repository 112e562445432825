package usecase

import (
	"context"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type AuditLogUsecase struct {
	logs repo.AuditLogRepository
}

func NewAuditLogUsecase(logs repo.AuditLogRepository) *AuditLogUsecase {
	return &AuditLogUsecase{logs: logs}
}

// 新しい順。Limitは0なら既定値。
func (u *AuditLogUsecase) ListAuditLogs(ctx context.Context, p Principal, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if f.Limit == 0 {
		f.Limit = defaultAuditLimit
	}
	if f.Limit < 1 || f.Limit > maxAuditLimit {
		return nil, badRequest("invalid limit")
	}
	if f.Offset < 0 {
		return nil, badRequest("invalid offset")
	}
	if f.Action != nil && !validAuditAction(*f.Action) {
		return nil, badRequest("invalid action")
	}
	if f.ResourceType != nil && *f.ResourceType != model.AuditResourceProduct && *f.ResourceType != model.AuditResourceSupplier {
		return nil, badRequest("invalid resource_type")
	}
	if f.CreatedFrom != nil && f.CreatedTo != nil && f.CreatedFrom.After(*f.CreatedTo) {
		return nil, badRequest("from must be <= to")
	}

	logs, err := u.logs.List(ctx, f)
	if err != nil {
		return nil, dbError(err)
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}
	return logs, nil
}

func validAuditAction(a model.AuditAction) bool {
	switch a {
	case model.AuditActionCreate, model.AuditActionUpdate, model.AuditActionDelete, model.AuditActionUpdateAssociation:
		return true
	}
	return false
}
