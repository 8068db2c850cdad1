package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"entrepreneurhub/internal/event"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/util"
	"entrepreneurhub/pkg/apierror"
)

type reviewStore interface {
	Upsert(ctx context.Context, rv *model.Review) (bool, error)
	ListByCourse(ctx context.Context, courseID string) ([]model.ReviewWithAuthor, error)
}

type enrollmentChecker interface {
	Exists(ctx context.Context, userID string, courseID string) (bool, error)
}

type ReviewService struct {
	store       reviewStore
	courses     courseLookup
	enrollments enrollmentChecker
	bus         event.Bus
	now         func() time.Time
}

func NewReviewService(store reviewStore, courses courseLookup, enrollments enrollmentChecker, bus event.Bus) *ReviewService {
	return &ReviewService{store: store, courses: courses, enrollments: enrollments, bus: bus, now: time.Now}
}

// Save creates or replaces the caller's review of a course they are enrolled
// in. The boolean is true when a new review was created.
func (s *ReviewService) Save(ctx context.Context, userID string, req model.ReviewRequest) (*model.Review, bool, error) {
	courseID := strings.TrimSpace(req.CourseID)
	if courseID == "" {
		return nil, false, apierror.Validation("course_id and rating are required", "course_id")
	}
	if req.Rating < 1 || req.Rating > 5 {
		return nil, false, apierror.Validation("rating must be between 1 and 5", "rating")
	}

	if _, err := s.courses.GetByID(ctx, courseID); err != nil {
		return nil, false, err
	}

	enrolled, err := s.enrollments.Exists(ctx, userID, courseID)
	if err != nil {
		return nil, false, err
	}
	if !enrolled {
		return nil, false, model.ErrNotEnrolled
	}

	now := s.now().UTC()
	review := &model.Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		CourseID:  courseID,
		Rating:    req.Rating,
		Comment:   util.CleanText(req.Comment),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.store.Upsert(ctx, review)
	if err != nil {
		return nil, false, err
	}

	if s.bus != nil {
		s.bus.Publish(event.New(event.TypeReviewSaved, userID, review))
	}
	return review, created, nil
}

func (s *ReviewService) ListByCourse(ctx context.Context, courseID string) ([]model.ReviewWithAuthor, error) {
	return s.store.ListByCourse(ctx, courseID)
}
