package domain

import (
	"time"

	"github.com/google/uuid"
)

// Enrollment: tối đa một bản ghi cho mỗi cặp (student, course).
type Enrollment struct {
	ID          uuid.UUID
	StudentID   uuid.UUID
	CourseID    uuid.UUID
	EnrolledAt  time.Time
	Completed   bool
	CompletedAt *time.Time
}
