package repo

import (
	"context"
	"database/sql"
	"edupay/internal/domain"
	"time"

	"github.com/google/uuid"
)

type EnrollmentRepo interface {
	// GetOrCreate returns the enrollment for (student, course), creating it
	// inside tx if missing. An existing row is the expected outcome of an
	// idempotent retry, not an error.
	GetOrCreate(ctx context.Context, tx *sql.Tx, studentID, courseID uuid.UUID, now time.Time) (*domain.Enrollment, error)
	FindByStudentCourse(ctx context.Context, studentID, courseID uuid.UUID) (*domain.Enrollment, error)
}

type enrollmentRepo struct {
	db *sql.DB
}

func NewEnrollmentRepo(db *sql.DB) EnrollmentRepo {
	return &enrollmentRepo{db: db}
}

func (r *enrollmentRepo) GetOrCreate(ctx context.Context, tx *sql.Tx, studentID, courseID uuid.UUID, now time.Time) (*domain.Enrollment, error) {
	// ON CONFLICT DO NOTHING + re-select: unique (student_id, course_id)
	// quyết định thắng thua, không phải lookup phía application.
	insert := `INSERT INTO enrollments (id, student_id, course_id, enrolled_at, completed)
	           VALUES ($1, $2, $3, $4, FALSE)
	           ON CONFLICT (student_id, course_id) DO NOTHING`
	_, err := tx.ExecContext(ctx, insert, uuid.New(), studentID, courseID, now)
	if err != nil {
		return nil, err
	}

	query := `SELECT id, student_id, course_id, enrolled_at, completed, completed_at
	          FROM enrollments WHERE student_id = $1 AND course_id = $2`
	row := tx.QueryRowContext(ctx, query, studentID, courseID)
	var e domain.Enrollment
	err = row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.EnrolledAt,
		&e.Completed,
		&e.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *enrollmentRepo) FindByStudentCourse(ctx context.Context, studentID, courseID uuid.UUID) (*domain.Enrollment, error) {
	query := `SELECT id, student_id, course_id, enrolled_at, completed, completed_at
	          FROM enrollments WHERE student_id = $1 AND course_id = $2`
	row := r.db.QueryRowContext(ctx, query, studentID, courseID)
	var e domain.Enrollment
	err := row.Scan(
		&e.ID,
		&e.StudentID,
		&e.CourseID,
		&e.EnrolledAt,
		&e.Completed,
		&e.CompletedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}
