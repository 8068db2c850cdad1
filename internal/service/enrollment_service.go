package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"entrepreneurhub/internal/event"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/pkg/apierror"
)

type enrollmentStore interface {
	Create(ctx context.Context, e *model.Enrollment) error
	Exists(ctx context.Context, userID string, courseID string) (bool, error)
	ListByUser(ctx context.Context, userID string) ([]model.EnrollmentWithCourse, error)
	GetForUser(ctx context.Context, id string, userID string) (*model.Enrollment, error)
	UpdateProgress(ctx context.Context, e *model.Enrollment) error
}

type courseLookup interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
}

type EnrollmentService struct {
	store   enrollmentStore
	courses courseLookup
	bus     event.Bus
	now     func() time.Time
}

func NewEnrollmentService(store enrollmentStore, courses courseLookup, bus event.Bus) *EnrollmentService {
	return &EnrollmentService{store: store, courses: courses, bus: bus, now: time.Now}
}

func (s *EnrollmentService) Enroll(ctx context.Context, userID string, courseID string) (*model.Enrollment, error) {
	courseID = strings.TrimSpace(courseID)
	if courseID == "" {
		return nil, apierror.Validation("course_id is required", "course_id")
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, err
	}

	enrollment := &model.Enrollment{
		ID:         uuid.NewString(),
		UserID:     userID,
		CourseID:   courseID,
		Progress:   0,
		Completed:  false,
		EnrolledAt: s.now().UTC(),
	}
	if err := s.store.Create(ctx, enrollment); err != nil {
		return nil, err
	}

	s.publish(event.TypeEnrollmentCreated, userID, enrollment)
	return enrollment, nil
}

func (s *EnrollmentService) List(ctx context.Context, userID string) ([]model.EnrollmentWithCourse, error) {
	return s.store.ListByUser(ctx, userID)
}

// UpdateProgress only touches enrollments owned by userID; anything else is
// reported as model.ErrEnrollmentNotFound.
func (s *EnrollmentService) UpdateProgress(ctx context.Context, userID string, id string, req model.ProgressRequest) (*model.Enrollment, error) {
	if req.Progress == nil {
		return nil, apierror.Validation("progress is required", "progress")
	}
	if *req.Progress < 0 || *req.Progress > 100 {
		return nil, apierror.Validation("progress must be between 0 and 100", "progress")
	}

	enrollment, err := s.store.GetForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	enrollment.Progress = *req.Progress
	enrollment.Completed = req.Completed
	if err := s.store.UpdateProgress(ctx, enrollment); err != nil {
		return nil, err
	}

	s.publish(event.TypeEnrollmentUpdated, userID, enrollment)
	return enrollment, nil
}

func (s *EnrollmentService) publish(t event.Type, actorID string, payload any) {
	if s.bus != nil {
		s.bus.Publish(event.New(t, actorID, payload))
	}
}
