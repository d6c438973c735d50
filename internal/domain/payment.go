package domain

import (
	"time"

	"github.com/google/uuid"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// PaymentRecord được tạo đúng một lần cho mỗi callback thành công.
// TransactionID là unique, DB chịu trách nhiệm chặn duplicate.
type PaymentRecord struct {
	ID            uuid.UUID
	TransactionID string
	Amount        int64
	Status        PaymentStatus
	PaymentMethod string
	PaymentDate   time.Time
	EnrollmentID  uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PaymentIntent is built per purchase attempt and never persisted; the
// signed redirect URL carries everything needed to recover it.
type PaymentIntent struct {
	CourseID  uuid.UUID
	StudentID uuid.UUID
	Amount    int64
	OrderInfo string
	ReturnURL string
	TxnRef    string
	CreatedAt time.Time
	ExpireAt  time.Time
}
