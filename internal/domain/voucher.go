package domain

import (
	"time"

	"github.com/google/uuid"
)

// Voucher is a discount code for a course purchase. CourseID == nil means the
// voucher is global and applies to any course.
// Invariant: 0 <= UsageCount <= MaxUsage, enforced by the storage layer.
type Voucher struct {
	ID                    uuid.UUID
	Code                  string
	DiscountAmount        int64
	MinimumPurchaseAmount int64
	ValidFrom             time.Time
	ValidTo               time.Time
	MaxUsage              int
	UsageCount            int
	Active                bool
	CourseID              *uuid.UUID
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// IsValid kiểm tra điều kiện chung (chưa xét course và giá).
func (v *Voucher) IsValid(now time.Time) bool {
	return v.Active &&
		!now.Before(v.ValidFrom) && !now.After(v.ValidTo) &&
		v.UsageCount < v.MaxUsage
}

// AppliesTo reports whether the voucher's scope covers the given course.
func (v *Voucher) AppliesTo(courseID uuid.UUID) bool {
	return v.CourseID == nil || *v.CourseID == courseID
}

// VoucherUsage ghi nhận một lượt dùng voucher. Mỗi cặp (voucher, user)
// tối đa một dòng - unique index trong DB là cơ chế chặn race.
type VoucherUsage struct {
	ID        uuid.UUID
	VoucherID uuid.UUID
	UserID    uuid.UUID
	CourseID  uuid.UUID
	PaymentID *uuid.UUID
	UsedAt    time.Time
}
