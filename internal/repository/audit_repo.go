package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"entrepreneurhub/internal/model"
)

type AuditRepository struct {
	db *sqlx.DB
}

func NewAuditRepository(db *sqlx.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

type auditRow struct {
	ID          string         `db:"id"`
	Action      string         `db:"action"`
	OccurredAt  time.Time      `db:"occurred_at"`
	ActorUserID string         `db:"actor_user_id"`
	ActorEmail  string         `db:"actor_email"`
	ActorRole   string         `db:"actor_role"`
	ActorIP     string         `db:"actor_ip"`
	Status      string         `db:"status"`
	Resource    string         `db:"resource"`
	BeforeData  sql.NullString `db:"before_data"`
	AfterData   sql.NullString `db:"after_data"`
	ErrorText   string         `db:"error_text"`
}

func (r *AuditRepository) Log(ctx context.Context, entry model.AuditEntry) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO audit_entries
		(id, action, occurred_at, actor_user_id, actor_email, actor_role, actor_ip,
		 status, resource, before_data, after_data, error_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		entry.ID, entry.Action, entry.OccurredAt,
		entry.Actor.UserID, entry.Actor.Email, entry.Actor.Role, entry.Actor.IP,
		entry.Status, entry.Resource, nullJSON(entry.Before), nullJSON(entry.After), entry.Error)
	if err != nil {
		return fmt.Errorf("log audit entry: %w", err)
	}
	return nil
}

// Query pages through entries newest first. Page and limit must already be
// normalised by the caller.
func (r *AuditRepository) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if action := strings.TrimSpace(query.Action); action != "" {
		where = append(where, "lower(action) = lower(?)")
		args = append(args, action)
	}
	if actorID := strings.TrimSpace(query.ActorID); actorID != "" {
		where = append(where, "actor_user_id = ?")
		args = append(args, actorID)
	}
	if status := strings.TrimSpace(query.Status); status != "" {
		where = append(where, "lower(status) = lower(?)")
		args = append(args, status)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		r.db.Rebind("SELECT COUNT(*) FROM audit_entries"+whereClause), args...); err != nil {
		return nil, 0, fmt.Errorf("count audit entries: %w", err)
	}

	rows := make([]auditRow, 0)
	pageArgs := append(args, query.Limit, (query.Page-1)*query.Limit)
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT id, action, occurred_at, actor_user_id, actor_email, actor_role, actor_ip,
		       status, resource, before_data, after_data, error_text
		FROM audit_entries`+whereClause+`
		ORDER BY occurred_at DESC, id
		LIMIT ? OFFSET ?`), pageArgs...); err != nil {
		return nil, 0, fmt.Errorf("query audit entries: %w", err)
	}

	entries := make([]model.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry := model.AuditEntry{
			ID:         row.ID,
			Action:     row.Action,
			OccurredAt: row.OccurredAt.UTC(),
			Actor: model.AuditActor{
				UserID: row.ActorUserID,
				Email:  row.ActorEmail,
				Role:   row.ActorRole,
				IP:     row.ActorIP,
			},
			Status:   row.Status,
			Resource: row.Resource,
			Error:    row.ErrorText,
		}
		if row.BeforeData.Valid && json.Valid([]byte(row.BeforeData.String)) {
			entry.Before = json.RawMessage(row.BeforeData.String)
		}
		if row.AfterData.Valid && json.Valid([]byte(row.AfterData.String)) {
			entry.After = json.RawMessage(row.AfterData.String)
		}
		entries = append(entries, entry)
	}

	return entries, total, nil
}

func nullJSON(raw json.RawMessage) sql.NullString {
	if len(raw) == 0 {
		return sql.NullString{}
	}
	return sql.NullString{String: string(raw), Valid: true}
}
