package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/util"
	"entrepreneurhub/pkg/apierror"
)

type calendarStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.CalendarEvent, error)
	GetForUser(ctx context.Context, id string, userID string) (*model.CalendarEvent, error)
	Create(ctx context.Context, ev *model.CalendarEvent) error
	Update(ctx context.Context, ev *model.CalendarEvent) error
	Delete(ctx context.Context, id string, userID string) error
}

// CalendarService manages per-user events. Every read and write is scoped to
// the owner; foreign ids look exactly like missing ones.
type CalendarService struct {
	store   calendarStore
	courses courseLookup
	now     func() time.Time
}

func NewCalendarService(store calendarStore, courses courseLookup) *CalendarService {
	return &CalendarService{store: store, courses: courses, now: time.Now}
}

func (s *CalendarService) List(ctx context.Context, userID string) ([]model.CalendarEvent, error) {
	return s.store.ListByUser(ctx, userID)
}

func (s *CalendarService) Create(ctx context.Context, userID string, req model.CalendarEventRequest) (*model.CalendarEvent, error) {
	ev := &model.CalendarEvent{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: s.now().UTC(),
	}
	if err := s.apply(ctx, ev, req); err != nil {
		return nil, err
	}

	if err := s.store.Create(ctx, ev); err != nil {
		return nil, err
	}
	return s.store.GetForUser(ctx, ev.ID, userID)
}

func (s *CalendarService) Update(ctx context.Context, userID string, id string, req model.CalendarEventRequest) (*model.CalendarEvent, error) {
	ev, err := s.store.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, ev, req); err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, ev); err != nil {
		return nil, err
	}
	return s.store.GetForUser(ctx, id, userID)
}

func (s *CalendarService) Delete(ctx context.Context, userID string, id string) error {
	return s.store.Delete(ctx, id, userID)
}

func (s *CalendarService) apply(ctx context.Context, ev *model.CalendarEvent, req model.CalendarEventRequest) error {
	title := util.CleanLine(req.Title)
	if title == "" || req.Start.IsZero() || req.End.IsZero() {
		return apierror.Validation("title, start time, and end time are required", "")
	}
	if !req.End.After(req.Start) {
		return apierror.Validation("end time must be after start time", "end")
	}

	var courseID *string
	if req.CourseID != nil && strings.TrimSpace(*req.CourseID) != "" {
		id := strings.TrimSpace(*req.CourseID)
		if _, err := s.courses.GetByID(ctx, id); err != nil {
			return err
		}
		courseID = &id
	}

	ev.Title = title
	ev.Description = util.CleanText(req.Description)
	ev.StartTime = req.Start.UTC()
	ev.EndTime = req.End.UTC()
	ev.CourseID = courseID
	ev.CourseTitle = nil
	return nil
}
