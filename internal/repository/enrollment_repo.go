package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"entrepreneurhub/internal/database"
	"entrepreneurhub/internal/model"
)

const enrollmentColumns = `id, user_id, course_id, progress, completed, enrolled_at`

type EnrollmentRepository struct {
	db *sqlx.DB
}

func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Create inserts the enrollment and bumps the course's student counter in one
// transaction.
func (r *EnrollmentRepository) Create(ctx context.Context, e *model.Enrollment) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, tx.Rebind(`INSERT INTO enrollments (`+enrollmentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?)`),
			e.ID, e.UserID, e.CourseID, e.Progress, e.Completed, e.EnrolledAt)
		if database.IsUniqueViolation(err) {
			return model.ErrAlreadyEnrolled
		}
		if err != nil {
			return fmt.Errorf("insert enrollment: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			tx.Rebind(`UPDATE courses SET students_enrolled = students_enrolled + 1 WHERE id = ?`), e.CourseID)
		if err != nil {
			return fmt.Errorf("increment students enrolled: %w", err)
		}
		return expectAffected(res, model.ErrCourseNotFound)
	})
}

func (r *EnrollmentRepository) Exists(ctx context.Context, userID string, courseID string) (bool, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		r.db.Rebind(`SELECT COUNT(*) FROM enrollments WHERE user_id = ? AND course_id = ?`), userID, courseID)
	if err != nil {
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return count > 0, nil
}

func (r *EnrollmentRepository) ListByUser(ctx context.Context, userID string) ([]model.EnrollmentWithCourse, error) {
	items := make([]model.EnrollmentWithCourse, 0)
	err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT e.id, e.user_id, e.course_id, e.progress, e.completed, e.enrolled_at,
		       c.title AS course_title, c.description AS course_description, c.image AS course_image,
		       c.instructor AS course_instructor, c.category AS course_category
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = ?
		ORDER BY e.enrolled_at DESC, e.id`), userID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return items, nil
}

// GetForUser only returns enrollments owned by userID.
func (r *EnrollmentRepository) GetForUser(ctx context.Context, id string, userID string) (*model.Enrollment, error) {
	var e model.Enrollment
	err := r.db.GetContext(ctx, &e,
		r.db.Rebind(`SELECT `+enrollmentColumns+` FROM enrollments WHERE id = ? AND user_id = ?`), id, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrEnrollmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &e, nil
}

func (r *EnrollmentRepository) UpdateProgress(ctx context.Context, e *model.Enrollment) error {
	res, err := r.db.ExecContext(ctx,
		r.db.Rebind(`UPDATE enrollments SET progress = ?, completed = ? WHERE id = ? AND user_id = ?`),
		e.Progress, e.Completed, e.ID, e.UserID)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}
	return expectAffected(res, model.ErrEnrollmentNotFound)
}
