package service

import (
	"context"
	"database/sql"
	"time"

	"edupay/internal/domain"
	"edupay/internal/repo"

	"github.com/google/uuid"
)

type VoucherService interface {
	// Validate checks eligibility and returns the computed discount without
	// side effects.
	Validate(ctx context.Context, code string, courseID uuid.UUID, price int64) (*domain.Voucher, int64, error)
	// Redeem consumes one usage slot for the user. At most one redemption per
	// (user, voucher); at most MaxUsage redemptions overall.
	Redeem(ctx context.Context, code string, courseID, userID uuid.UUID, paymentID *uuid.UUID) (*domain.VoucherUsage, error)
}

type voucherService struct {
	db       *sql.DB
	vouchers repo.VoucherRepo
	now      func() time.Time
}

func NewVoucherService(db *sql.DB, vouchers repo.VoucherRepo) VoucherService {
	return &voucherService{db: db, vouchers: vouchers, now: time.Now}
}

// checkEligible evaluates every condition except the price floor (redeem has
// no price in scope) and returns the first failed one as its specific reason.
// Thứ tự check cố định để message ổn định.
func checkEligible(v *domain.Voucher, courseID uuid.UUID, now time.Time) error {
	if !v.Active {
		return ErrVoucherInactive
	}
	if now.Before(v.ValidFrom) || now.After(v.ValidTo) {
		return ErrVoucherExpired
	}
	if v.UsageCount >= v.MaxUsage {
		return ErrVoucherExhausted
	}
	if !v.AppliesTo(courseID) {
		return ErrCourseScopeMismatch
	}
	return nil
}

// discount clamps to the price so the effective price never goes negative.
func discount(v *domain.Voucher, price int64) int64 {
	if v.DiscountAmount > price {
		return price
	}
	return v.DiscountAmount
}

func (s *voucherService) Validate(ctx context.Context, code string, courseID uuid.UUID, price int64) (*domain.Voucher, int64, error) {
	v, err := s.vouchers.FindByCode(ctx, code)
	if err != nil {
		return nil, 0, err
	}
	if v == nil {
		return nil, 0, ErrVoucherNotFound
	}
	// Eligibility chạy lại ngay tại đây, không tin flag validate từ trước.
	if err := checkEligible(v, courseID, s.now()); err != nil {
		return nil, 0, err
	}
	if price < v.MinimumPurchaseAmount {
		return nil, 0, ErrBelowMinimumPurchase
	}
	return v, discount(v, price), nil
}

func (s *voucherService) Redeem(ctx context.Context, code string, courseID, userID uuid.UUID, paymentID *uuid.UUID) (*domain.VoucherUsage, error) {
	v, err := s.vouchers.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVoucherNotFound
	}
	// Defense in depth: re-validate trước khi ghi. Race thật sự do DB xử:
	// unique index + conditional update bên dưới.
	if err := checkEligible(v, courseID, s.now()); err != nil {
		return nil, err
	}

	usage := &domain.VoucherUsage{
		ID:        uuid.New(),
		VoucherID: v.ID,
		UserID:    userID,
		CourseID:  courseID,
		PaymentID: paymentID,
		UsedAt:    s.now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	// Usage row trước, counter sau - cùng một transaction nên không bao giờ
	// có row mà thiếu increment hay ngược lại.
	if err := s.vouchers.CreateUsage(ctx, tx, usage); err != nil {
		if repo.IsUniqueViolation(err) {
			return nil, ErrAlreadyRedeemed
		}
		return nil, err
	}

	ok, err := s.vouchers.IncrementUsage(ctx, tx, v.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Hết slot: rollback kéo theo cả usage row vừa insert.
		return nil, ErrVoucherExhausted
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return usage, nil
}
