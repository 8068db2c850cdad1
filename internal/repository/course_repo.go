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

const courseColumns = `id, title, description, category, duration, price, instructor, image,
	rating, students_enrolled, status, created_at, updated_at`

type CourseRepository struct {
	db *sqlx.DB
}

func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

func (r *CourseRepository) List(ctx context.Context) ([]model.Course, error) {
	courses := make([]model.Course, 0)
	err := r.db.SelectContext(ctx, &courses,
		`SELECT `+courseColumns+` FROM courses ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var c model.Course
	err := r.db.GetContext(ctx, &c, r.db.Rebind(`SELECT `+courseColumns+` FROM courses WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &c, nil
}

func (r *CourseRepository) Create(ctx context.Context, c *model.Course) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`INSERT INTO courses (`+courseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.Title, c.Description, c.Category, c.Duration, c.Price, c.Instructor, c.Image,
		c.Rating, c.StudentsEnrolled, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update rewrites the editable fields. Counters and rating are left alone.
func (r *CourseRepository) Update(ctx context.Context, c *model.Course) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE courses
		SET title = ?, description = ?, category = ?, duration = ?, price = ?,
		    instructor = ?, image = ?, status = ?, updated_at = ?
		WHERE id = ?`),
		c.Title, c.Description, c.Category, c.Duration, c.Price,
		c.Instructor, c.Image, c.Status, c.UpdatedAt, c.ID)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res, model.ErrCourseNotFound)
}

// Delete removes the course with its enrollments and reviews, and unlinks
// calendar events that pointed at it.
func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM reviews WHERE course_id = ?`), id); err != nil {
			return fmt.Errorf("delete course reviews: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM enrollments WHERE course_id = ?`), id); err != nil {
			return fmt.Errorf("delete course enrollments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE calendar_events SET course_id = NULL WHERE course_id = ?`), id); err != nil {
			return fmt.Errorf("unlink calendar events: %w", err)
		}

		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM courses WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete course: %w", err)
		}
		return expectAffected(res, model.ErrCourseNotFound)
	})
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
