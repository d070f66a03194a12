package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"live-practice-service/internal/domain"
)

// Directory resolves class ownership and enrollment from the learning
// platform's tables.
type Directory struct {
	pool *pgxpool.Pool
}

func NewDirectory(pool *pgxpool.Pool) *Directory {
	return &Directory{pool: pool}
}

func (d *Directory) OwnsClass(ctx context.Context, teacherID, classID string) (bool, error) {
	var exists bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM classes WHERE id = $1)`, classID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("lookup class: %w", err)
	}
	if !exists {
		return false, domain.ErrClassNotFound
	}

	var owns bool
	err = d.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM class_teachers WHERE class_id = $1 AND teacher_id = $2)`,
		classID, teacherID).Scan(&owns)
	if err != nil {
		return false, fmt.Errorf("lookup class ownership: %w", err)
	}
	return owns, nil
}

func (d *Directory) IsEnrolled(ctx context.Context, studentID, classID string) (bool, error) {
	var enrolled bool
	err := d.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM class_students WHERE class_id = $1 AND student_id = $2)`,
		classID, studentID).Scan(&enrolled)
	if err != nil {
		return false, fmt.Errorf("lookup enrollment: %w", err)
	}
	return enrolled, nil
}
