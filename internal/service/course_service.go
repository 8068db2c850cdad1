package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"entrepreneurhub/internal/event"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/util"
	"entrepreneurhub/pkg/apierror"
)

const (
	AuditCourseCreate = "course.create"
	AuditCourseUpdate = "course.update"
	AuditCourseDelete = "course.delete"
)

type courseStore interface {
	List(ctx context.Context) ([]model.Course, error)
	GetByID(ctx context.Context, id string) (*model.Course, error)
	Create(ctx context.Context, c *model.Course) error
	Update(ctx context.Context, c *model.Course) error
	Delete(ctx context.Context, id string) error
}

type CourseService struct {
	store courseStore
	audit *AuditService
	bus   event.Bus
	now   func() time.Time
}

func NewCourseService(store courseStore, audit *AuditService, bus event.Bus) *CourseService {
	return &CourseService{store: store, audit: audit, bus: bus, now: time.Now}
}

func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	return s.store.List(ctx)
}

func (s *CourseService) Get(ctx context.Context, id string) (*model.Course, error) {
	return s.store.GetByID(ctx, id)
}

func (s *CourseService) Create(ctx context.Context, req model.CourseRequest, actor model.AuditActor) (*model.Course, error) {
	if err := validateCourseRequest(req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	course := &model.Course{
		ID:        uuid.NewString(),
		Rating:    0,
		Status:    model.CourseStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	applyCourseRequest(course, req)

	if err := s.store.Create(ctx, course); err != nil {
		s.audit.Log(ctx, AuditCourseCreate, actor, model.AuditStatusFailure, "", nil, course, err.Error())
		return nil, err
	}

	s.audit.Log(ctx, AuditCourseCreate, actor, model.AuditStatusSuccess, course.ID, nil, course, "")
	s.publish(event.TypeCourseCreated, actor.UserID, course)
	return course, nil
}

func (s *CourseService) Update(ctx context.Context, id string, req model.CourseRequest, actor model.AuditActor) (*model.Course, error) {
	if err := validateCourseRequest(req); err != nil {
		return nil, err
	}

	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	after := *before
	applyCourseRequest(&after, req)
	if req.Status == "" {
		after.Status = before.Status
	}
	after.UpdatedAt = s.now().UTC()

	if err := s.store.Update(ctx, &after); err != nil {
		s.audit.Log(ctx, AuditCourseUpdate, actor, model.AuditStatusFailure, id, before, &after, err.Error())
		return nil, err
	}

	s.audit.Log(ctx, AuditCourseUpdate, actor, model.AuditStatusSuccess, id, before, &after, "")
	s.publish(event.TypeCourseUpdated, actor.UserID, &after)
	return &after, nil
}

func (s *CourseService) Delete(ctx context.Context, id string, actor model.AuditActor) error {
	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Delete(ctx, id); err != nil {
		s.audit.Log(ctx, AuditCourseDelete, actor, model.AuditStatusFailure, id, before, nil, err.Error())
		return err
	}

	s.audit.Log(ctx, AuditCourseDelete, actor, model.AuditStatusSuccess, id, before, nil, "")
	s.publish(event.TypeCourseDeleted, actor.UserID, map[string]string{"id": id})
	return nil
}

func (s *CourseService) publish(t event.Type, actorID string, payload any) {
	if s.bus != nil {
		s.bus.Publish(event.New(t, actorID, payload))
	}
}

func validateCourseRequest(req model.CourseRequest) error {
	missing := make([]string, 0)
	for field, value := range map[string]string{
		"title":       req.Title,
		"description": req.Description,
		"category":    req.Category,
		"duration":    req.Duration,
		"instructor":  req.Instructor,
	} {
		if util.CleanLine(value) == "" {
			missing = append(missing, field)
		}
	}
	if req.Price == nil {
		missing = append(missing, "price")
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return apierror.Validation("all fields are required", strings.Join(missing, ", "))
	}
	if *req.Price < 0 {
		return apierror.Validation("price must be a non-negative number", "price")
	}
	return nil
}

func applyCourseRequest(c *model.Course, req model.CourseRequest) {
	c.Title = util.CleanLine(req.Title)
	c.Description = util.CleanText(req.Description)
	c.Category = util.CleanLine(req.Category)
	c.Duration = util.CleanLine(req.Duration)
	c.Price = *req.Price
	c.Instructor = util.CleanLine(req.Instructor)
	c.Image = strings.TrimSpace(req.Image)
	if c.Image == "" {
		c.Image = model.DefaultCourseImage
	}
	if req.Status != "" {
		c.Status = req.Status
	}
}
