package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"entrepreneurhub/internal/logger"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/pkg/apierror"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry) error
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error)
}

type AuditService struct {
	store auditStore
	now   func() time.Time
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log records an entry. Failures are logged and otherwise ignored so that
// auditing never fails the request it describes.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string) {
	if s == nil {
		return
	}

	entry := model.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		OccurredAt: s.now().UTC(),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Before:     marshalAuditState(before),
		After:      marshalAuditState(after),
		Error:      errText,
	}

	if err := s.store.Log(context.WithoutCancel(ctx), entry); err != nil {
		logger.FromContext(ctx).Error("audit write failed", "action", action, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) (model.AuditList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	if query.Limit > maxAuditLimit {
		query.Limit = maxAuditLimit
	}

	status := strings.ToLower(strings.TrimSpace(query.Status))
	if status != "" && status != model.AuditStatusSuccess && status != model.AuditStatusFailure {
		return model.AuditList{}, apierror.New(apierror.CodeBadRequest, "invalid status filter", query.Status, http.StatusBadRequest)
	}

	items, total, err := s.store.Query(ctx, query)
	if err != nil {
		return model.AuditList{}, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + query.Limit - 1) / query.Limit
	}

	return model.AuditList{
		Items: items,
		Meta:  model.Meta{Page: query.Page, Limit: query.Limit, Total: total, TotalPages: totalPages},
	}, nil
}

func marshalAuditState(v any) json.RawMessage {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil || string(data) == "null" {
		return nil
	}
	return data
}
