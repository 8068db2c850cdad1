package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"entrepreneurhub/internal/model"
)

const calendarSelect = `
	SELECT ce.id, ce.user_id, ce.course_id, c.title AS course_title, ce.title, ce.description,
	       ce.start_time, ce.end_time, ce.created_at
	FROM calendar_events ce
	LEFT JOIN courses c ON c.id = ce.course_id`

type CalendarRepository struct {
	db *sqlx.DB
}

func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

func (r *CalendarRepository) ListByUser(ctx context.Context, userID string) ([]model.CalendarEvent, error) {
	events := make([]model.CalendarEvent, 0)
	err := r.db.SelectContext(ctx, &events,
		r.db.Rebind(calendarSelect+` WHERE ce.user_id = ? ORDER BY ce.start_time, ce.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}
	return events, nil
}

// GetForUser returns ErrEventNotFound for events owned by someone else.
func (r *CalendarRepository) GetForUser(ctx context.Context, id string, userID string) (*model.CalendarEvent, error) {
	var ev model.CalendarEvent
	err := r.db.GetContext(ctx, &ev,
		r.db.Rebind(calendarSelect+` WHERE ce.id = ? AND ce.user_id = ?`), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get calendar event: %w", err)
	}
	return &ev, nil
}

func (r *CalendarRepository) Create(ctx context.Context, ev *model.CalendarEvent) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO calendar_events (id, user_id, course_id, title, description, start_time, end_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		ev.ID, ev.UserID, ev.CourseID, ev.Title, ev.Description, ev.StartTime, ev.EndTime, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("create calendar event: %w", err)
	}
	return nil
}

func (r *CalendarRepository) Update(ctx context.Context, ev *model.CalendarEvent) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE calendar_events
		SET course_id = ?, title = ?, description = ?, start_time = ?, end_time = ?
		WHERE id = ? AND user_id = ?`),
		ev.CourseID, ev.Title, ev.Description, ev.StartTime, ev.EndTime, ev.ID, ev.UserID)
	if err != nil {
		return fmt.Errorf("update calendar event: %w", err)
	}
	return expectAffected(res, model.ErrEventNotFound)
}

func (r *CalendarRepository) Delete(ctx context.Context, id string, userID string) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`DELETE FROM calendar_events WHERE id = ? AND user_id = ?`), id, userID)
	if err != nil {
		return fmt.Errorf("delete calendar event: %w", err)
	}
	return expectAffected(res, model.ErrEventNotFound)
}
