package model

import (
	"encoding/json"
	"time"
)

const (
	AuditStatusSuccess = "success"
	AuditStatusFailure = "failure"
)

type AuditActor struct {
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
	IP     string `json:"ip,omitempty"`
}

type AuditEntry struct {
	ID         string          `json:"id"`
	Action     string          `json:"action"`
	OccurredAt time.Time       `json:"occurred_at"`
	Actor      AuditActor      `json:"actor"`
	Status     string          `json:"status"`
	Resource   string          `json:"resource,omitempty"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
	Error      string          `json:"error,omitempty"`
}

type AuditQuery struct {
	Action  string
	ActorID string
	Status  string
	Page    int
	Limit   int
}

type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type AuditList struct {
	Items []AuditEntry `json:"items"`
	Meta  Meta         `json:"meta"`
}
