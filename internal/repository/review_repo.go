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

type ReviewRepository struct {
	db *sqlx.DB
}

func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert stores one review per (user, course) and recomputes the course's
// average rating in the same transaction. It reports whether a new review was
// created. On update, rv is refreshed with the stored id and created_at.
func (r *ReviewRepository) Upsert(ctx context.Context, rv *model.Review) (bool, error) {
	created := false

	err := database.WithTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var existing model.Review
		err := tx.GetContext(ctx, &existing, tx.Rebind(`
			SELECT id, user_id, course_id, rating, comment, created_at, updated_at
			FROM reviews WHERE user_id = ? AND course_id = ?`), rv.UserID, rv.CourseID)

		switch {
		case errors.Is(err, sql.ErrNoRows):
			created = true
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO reviews (id, user_id, course_id, rating, comment, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`),
				rv.ID, rv.UserID, rv.CourseID, rv.Rating, rv.Comment, rv.CreatedAt, rv.UpdatedAt); err != nil {
				return fmt.Errorf("insert review: %w", err)
			}
		case err != nil:
			return fmt.Errorf("find review: %w", err)
		default:
			rv.ID = existing.ID
			rv.CreatedAt = existing.CreatedAt
			if _, err := tx.ExecContext(ctx, tx.Rebind(`
				UPDATE reviews SET rating = ?, comment = ?, updated_at = ? WHERE id = ?`),
				rv.Rating, rv.Comment, rv.UpdatedAt, rv.ID); err != nil {
				return fmt.Errorf("update review: %w", err)
			}
		}

		if _, err := tx.ExecContext(ctx, tx.Rebind(`
			UPDATE courses
			SET rating = (SELECT COALESCE(AVG(CAST(rating AS REAL)), 0) FROM reviews WHERE course_id = ?)
			WHERE id = ?`), rv.CourseID, rv.CourseID); err != nil {
			return fmt.Errorf("recompute course rating: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *ReviewRepository) ListByCourse(ctx context.Context, courseID string) ([]model.ReviewWithAuthor, error) {
	items := make([]model.ReviewWithAuthor, 0)
	err := r.db.SelectContext(ctx, &items, r.db.Rebind(`
		SELECT r.id, r.user_id, r.course_id, r.rating, r.comment, r.created_at, r.updated_at,
		       u.name AS user_name
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.course_id = ?
		ORDER BY r.created_at DESC, r.id`), courseID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return items, nil
}
