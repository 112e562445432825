package usecase

import (
	"context"
	"encoding/json"

	"orderapp/internal/domain/model"
	repo "orderapp/internal/repository"
)

// 監査ログに残すJSON。失敗しても空文字で続行する。
func auditJSON(v any) string {
	if v == nil {
		return ""
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

type associationChange struct {
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
}

// 「誰が」「何を」「どの対象に」「どう変えたか」を残す
func writeAudit(ctx context.Context, r repo.TxRepos, clock Clock, p Principal, action model.AuditAction, rt model.AuditResourceType, id int64, before, after any) error {
	if err := r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  p.UserID,
		Action:       action,
		ResourceType: rt,
		ResourceID:   id,
		BeforeJSON:   auditJSON(before),
		AfterJSON:    auditJSON(after),
		CreatedAt:    clock.Now(),
	}); err != nil {
		return dbError(err)
	}
	return nil
}
