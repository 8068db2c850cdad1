package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entrepreneurhub/internal/database"
	"entrepreneurhub/internal/model"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(context.Background(), database.Options{Driver: database.DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, db.Migrate(context.Background()))

	return db.DB
}

func seedUser(t *testing.T, db *sqlx.DB, email string) *model.User {
	t.Helper()

	u := &model.User{
		ID:           uuid.NewString(),
		Name:         "User " + email,
		Email:        email,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func seedCourse(t *testing.T, db *sqlx.DB, title string, createdAt time.Time) *model.Course {
	t.Helper()

	c := &model.Course{
		ID:          uuid.NewString(),
		Title:       title,
		Description: "Learn " + title,
		Category:    "Business",
		Duration:    "4 weeks",
		Price:       49.5,
		Instructor:  "Grace",
		Image:       model.DefaultCourseImage,
		Status:      model.CourseStatusActive,
		CreatedAt:   createdAt.UTC(),
		UpdatedAt:   createdAt.UTC(),
	}
	require.NoError(t, NewCourseRepository(db).Create(context.Background(), c))
	return c
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "ada@example.com")

	byID, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, byID.Email)
	assert.Equal(t, u.PasswordHash, byID.PasswordHash)
	assert.True(t, u.CreatedAt.Equal(byID.CreatedAt))

	byEmail, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.GetByEmail(ctx, "ADA@example.com")
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	_, err = repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, model.ErrUserNotFound)

	dup := *u
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, &dup), model.ErrUserAlreadyExists)
}

func TestCourseRepository_CRUD(t *testing.T) {
	db := newTestDB(t)
	repo := NewCourseRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	older := seedCourse(t, db, "Bookkeeping", base.Add(-time.Hour))
	newer := seedCourse(t, db, "Pitching", base)

	courses, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, newer.ID, courses[0].ID)
	assert.Equal(t, older.ID, courses[1].ID)

	got, err := repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, 49.5, got.Price)

	got.Title = "Advanced Bookkeeping"
	got.Status = model.CourseStatusArchived
	got.UpdatedAt = base.Add(time.Minute)
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.GetByID(ctx, older.ID)
	require.NoError(t, err)
	assert.Equal(t, "Advanced Bookkeeping", got.Title)
	assert.Equal(t, model.CourseStatusArchived, got.Status)

	missing := *got
	missing.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Update(ctx, &missing), model.ErrCourseNotFound)

	require.NoError(t, repo.Delete(ctx, older.ID))
	_, err = repo.GetByID(ctx, older.ID)
	assert.ErrorIs(t, err, model.ErrCourseNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, older.ID), model.ErrCourseNotFound)
}

func TestCourseRepository_DeleteCascades(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	u := seedUser(t, db, "bob@example.com")
	c := seedCourse(t, db, "Marketing", time.Now())
	now := time.Now().UTC()

	require.NoError(t, NewEnrollmentRepository(db).Create(ctx, &model.Enrollment{
		ID: uuid.NewString(), UserID: u.ID, CourseID: c.ID, EnrolledAt: now,
	}))
	_, err := NewReviewRepository(db).Upsert(ctx, &model.Review{
		ID: uuid.NewString(), UserID: u.ID, CourseID: c.ID, Rating: 4, CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)

	ev := &model.CalendarEvent{
		ID: uuid.NewString(), UserID: u.ID, CourseID: &c.ID, Title: "Study",
		StartTime: now, EndTime: now.Add(time.Hour), CreatedAt: now,
	}
	calendar := NewCalendarRepository(db)
	require.NoError(t, calendar.Create(ctx, ev))

	require.NoError(t, NewCourseRepository(db).Delete(ctx, c.ID))

	var count int
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments`))
	assert.Zero(t, count)
	require.NoError(t, db.GetContext(ctx, &count, `SELECT COUNT(*) FROM reviews`))
	assert.Zero(t, count)

	kept, err := calendar.GetForUser(ctx, ev.ID, u.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.CourseID)
	assert.Nil(t, kept.CourseTitle)
}

func TestEnrollmentRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewEnrollmentRepository(db)
	ctx := context.Background()

	u := seedUser(t, db, "cy@example.com")
	other := seedUser(t, db, "dee@example.com")
	c := seedCourse(t, db, "Sales", time.Now())

	e := &model.Enrollment{ID: uuid.NewString(), UserID: u.ID, CourseID: c.ID, EnrolledAt: time.Now().UTC()}
	require.NoError(t, repo.Create(ctx, e))

	course, err := NewCourseRepository(db).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, course.StudentsEnrolled)

	dup := *e
	dup.ID = uuid.NewString()
	assert.ErrorIs(t, repo.Create(ctx, &dup), model.ErrAlreadyEnrolled)

	course, err = NewCourseRepository(db).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, course.StudentsEnrolled, "failed enrollment must not bump the counter")

	ok, err := repo.Exists(ctx, u.ID, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Exists(ctx, other.ID, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	list, err := repo.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Sales", list[0].CourseTitle)
	assert.Equal(t, "Grace", list[0].CourseInstructor)

	_, err = repo.GetForUser(ctx, e.ID, other.ID)
	assert.ErrorIs(t, err, model.ErrEnrollmentNotFound)

	e.Progress = 100
	e.Completed = true
	require.NoError(t, repo.UpdateProgress(ctx, e))

	got, err := repo.GetForUser(ctx, e.ID, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Progress)
	assert.True(t, got.Completed)

	foreign := *e
	foreign.UserID = other.ID
	assert.ErrorIs(t, repo.UpdateProgress(ctx, &foreign), model.ErrEnrollmentNotFound)
}

func TestEnrollmentRepository_UnknownCourse(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "eve@example.com")

	_, err := db.ExecContext(ctx, `PRAGMA foreign_keys = OFF`)
	require.NoError(t, err)

	err = NewEnrollmentRepository(db).Create(ctx, &model.Enrollment{
		ID: uuid.NewString(), UserID: u.ID, CourseID: uuid.NewString(), EnrolledAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, model.ErrCourseNotFound)
}

func TestReviewRepository_UpsertRecomputesRating(t *testing.T) {
	db := newTestDB(t)
	repo := NewReviewRepository(db)
	ctx := context.Background()

	a := seedUser(t, db, "fay@example.com")
	b := seedUser(t, db, "gus@example.com")
	c := seedCourse(t, db, "Finance", time.Now())
	now := time.Now().UTC().Truncate(time.Second)

	first := &model.Review{ID: uuid.NewString(), UserID: a.ID, CourseID: c.ID, Rating: 5, Comment: "great", CreatedAt: now, UpdatedAt: now}
	created, err := repo.Upsert(ctx, first)
	require.NoError(t, err)
	assert.True(t, created)

	second := &model.Review{ID: uuid.NewString(), UserID: b.ID, CourseID: c.ID, Rating: 2, CreatedAt: now.Add(time.Second), UpdatedAt: now.Add(time.Second)}
	created, err = repo.Upsert(ctx, second)
	require.NoError(t, err)
	assert.True(t, created)

	course, err := NewCourseRepository(db).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.5, course.Rating, 0.0001)

	again := &model.Review{ID: uuid.NewString(), UserID: a.ID, CourseID: c.ID, Rating: 4, Comment: "good", CreatedAt: now.Add(time.Hour), UpdatedAt: now.Add(time.Hour)}
	created, err = repo.Upsert(ctx, again)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, now.Equal(again.CreatedAt))

	course, err = NewCourseRepository(db).GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.InDelta(t, 3.0, course.Rating, 0.0001)

	reviews, err := repo.ListByCourse(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, b.Name, reviews[0].UserName)
	assert.Equal(t, "good", reviews[1].Comment)
}

func TestCalendarRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewCalendarRepository(db)
	ctx := context.Background()

	owner := seedUser(t, db, "hal@example.com")
	stranger := seedUser(t, db, "ivy@example.com")
	c := seedCourse(t, db, "Negotiation", time.Now())
	now := time.Now().UTC().Truncate(time.Second)

	later := &model.CalendarEvent{ID: uuid.NewString(), UserID: owner.ID, Title: "Later",
		StartTime: now.Add(48 * time.Hour), EndTime: now.Add(49 * time.Hour), CreatedAt: now}
	sooner := &model.CalendarEvent{ID: uuid.NewString(), UserID: owner.ID, CourseID: &c.ID, Title: "Sooner",
		StartTime: now.Add(time.Hour), EndTime: now.Add(2 * time.Hour), CreatedAt: now}
	require.NoError(t, repo.Create(ctx, later))
	require.NoError(t, repo.Create(ctx, sooner))

	events, err := repo.ListByUser(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "Sooner", events[0].Title)
	require.NotNil(t, events[0].CourseTitle)
	assert.Equal(t, "Negotiation", *events[0].CourseTitle)
	assert.Nil(t, events[1].CourseTitle)

	none, err := repo.ListByUser(ctx, stranger.ID)
	require.NoError(t, err)
	assert.Empty(t, none)

	_, err = repo.GetForUser(ctx, later.ID, stranger.ID)
	assert.ErrorIs(t, err, model.ErrEventNotFound)

	later.Title = "Moved"
	require.NoError(t, repo.Update(ctx, later))
	got, err := repo.GetForUser(ctx, later.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Moved", got.Title)

	stolen := *later
	stolen.UserID = stranger.ID
	assert.ErrorIs(t, repo.Update(ctx, &stolen), model.ErrEventNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, later.ID, stranger.ID), model.ErrEventNotFound)

	require.NoError(t, repo.Delete(ctx, later.ID, owner.ID))
	assert.ErrorIs(t, repo.Delete(ctx, later.ID, owner.ID), model.ErrEventNotFound)
}

func TestAuditRepository_LogAndQuery(t *testing.T) {
	db := newTestDB(t)
	repo := NewAuditRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	for i, action := range []string{"auth.login", "auth.login", "course.create"} {
		status := model.AuditStatusSuccess
		if i == 1 {
			status = model.AuditStatusFailure
		}
		require.NoError(t, repo.Log(ctx, model.AuditEntry{
			ID:         uuid.NewString(),
			Action:     action,
			OccurredAt: base.Add(time.Duration(i) * time.Minute),
			Actor:      model.AuditActor{UserID: "u1", Email: "ada@example.com", Role: model.RoleAdmin, IP: "10.0.0.1"},
			Status:     status,
			Resource:   "/api/x",
			After:      json.RawMessage(`{"n":1}`),
		}))
	}

	items, total, err := repo.Query(ctx, model.AuditQuery{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, "course.create", items[0].Action)
	assert.JSONEq(t, `{"n":1}`, string(items[0].After))
	assert.Nil(t, items[0].Before)
	assert.Equal(t, "ada@example.com", items[0].Actor.Email)

	items, total, err = repo.Query(ctx, model.AuditQuery{Action: "AUTH.LOGIN", Status: "failure", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, model.AuditStatusFailure, items[0].Status)

	items, total, err = repo.Query(ctx, model.AuditQuery{ActorID: "u1", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 1)
	assert.Equal(t, "auth.login", items[0].Action)
}
