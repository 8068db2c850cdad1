//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrepreneurhub/internal/database"
	"entrepreneurhub/internal/model"
	"entrepreneurhub/internal/testutil"
)

func TestPostgres_RepositoriesEndToEnd(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := testutil.NewPostgresContainer(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(context.Background()) })

	db, err := database.Open(ctx, database.Options{Driver: database.DriverPostgres, DSN: pg.ConnectionString, MaxOpenConns: 5})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(ctx))

	users := NewUserRepository(db.DB)
	courses := NewCourseRepository(db.DB)
	enrollments := NewEnrollmentRepository(db.DB)
	reviews := NewReviewRepository(db.DB)
	calendar := NewCalendarRepository(db.DB)
	audit := NewAuditRepository(db.DB)

	now := time.Now().UTC().Truncate(time.Microsecond)
	u := &model.User{ID: uuid.NewString(), Name: "Ada", Email: "ada@example.com", PasswordHash: "hash", Role: model.RoleUser, CreatedAt: now}
	require.NoError(t, users.Create(ctx, u))

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, users.Create(ctx, &dup), model.ErrUserAlreadyExists)

	c := &model.Course{ID: uuid.NewString(), Title: "Pitching", Description: "d", Category: "Sales", Duration: "2h",
		Price: 10, Instructor: "Grace", Image: model.DefaultCourseImage, Status: model.CourseStatusActive, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, courses.Create(ctx, c))

	e := &model.Enrollment{ID: uuid.NewString(), UserID: u.ID, CourseID: c.ID, EnrolledAt: now}
	require.NoError(t, enrollments.Create(ctx, e))
	e2 := *e
	e2.ID = uuid.NewString()
	assert.ErrorIs(t, enrollments.Create(ctx, &e2), model.ErrAlreadyEnrolled)

	created, err := reviews.Upsert(ctx, &model.Review{ID: uuid.NewString(), UserID: u.ID, CourseID: c.ID, Rating: 3, CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.True(t, created)

	got, err := courses.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.StudentsEnrolled)
	assert.InDelta(t, 3.0, got.Rating, 0.0001)

	ev := &model.CalendarEvent{ID: uuid.NewString(), UserID: u.ID, CourseID: &c.ID, Title: "Study",
		StartTime: now, EndTime: now.Add(time.Hour), CreatedAt: now}
	require.NoError(t, calendar.Create(ctx, ev))

	require.NoError(t, courses.Delete(ctx, c.ID))
	kept, err := calendar.GetForUser(ctx, ev.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CourseID)

	require.NoError(t, audit.Log(ctx, model.AuditEntry{ID: uuid.NewString(), Action: "auth.login", OccurredAt: now, Status: model.AuditStatusSuccess}))
	items, total, err := audit.Query(ctx, model.AuditQuery{Action: "auth.login", Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
}
