package repo

import (
	"context"
	"database/sql"
	"edupay/internal/domain"
	"time"

	"github.com/google/uuid"
)

type VoucherRepo interface {
	// FindByCode returns (nil, nil) when no voucher exists for code.
	FindByCode(ctx context.Context, code string) (*domain.Voucher, error)
	CreateVoucher(ctx context.Context, v *domain.Voucher) error
	// CreateUsage inserts the redemption row; the unique (voucher_id, user_id)
	// index rejects a second redemption by the same user.
	CreateUsage(ctx context.Context, tx *sql.Tx, u *domain.VoucherUsage) error
	// IncrementUsage bumps usage_count by one only while a slot remains.
	// Điều kiện usage_count < max_usage nằm ngay trong UPDATE, DB xử lý
	// atomically - không read-then-write.
	IncrementUsage(ctx context.Context, tx *sql.Tx, voucherID uuid.UUID) (bool, error)
	// DeactivateExpired flips active off for vouchers past their window.
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

type voucherRepo struct {
	db *sql.DB
}

func NewVoucherRepo(db *sql.DB) VoucherRepo {
	return &voucherRepo{db: db}
}

func (r *voucherRepo) FindByCode(ctx context.Context, code string) (*domain.Voucher, error) {
	query := `SELECT id, code, discount_amount, minimum_purchase_amount, valid_from, valid_to,
	                 max_usage, usage_count, active, course_id, created_at, updated_at
	          FROM vouchers WHERE code = $1`
	row := r.db.QueryRowContext(ctx, query, code)
	var v domain.Voucher
	err := row.Scan(
		&v.ID,
		&v.Code,
		&v.DiscountAmount,
		&v.MinimumPurchaseAmount,
		&v.ValidFrom,
		&v.ValidTo,
		&v.MaxUsage,
		&v.UsageCount,
		&v.Active,
		&v.CourseID,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err // system error
	}
	return &v, nil
}

func (r *voucherRepo) CreateVoucher(ctx context.Context, v *domain.Voucher) error {
	query := `INSERT INTO vouchers (id, code, discount_amount, minimum_purchase_amount, valid_from, valid_to,
	                                max_usage, usage_count, active, course_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.ExecContext(
		ctx, query, v.ID, v.Code, v.DiscountAmount, v.MinimumPurchaseAmount, v.ValidFrom, v.ValidTo,
		v.MaxUsage, v.UsageCount, v.Active, v.CourseID, v.CreatedAt, v.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return nil
}

func (r *voucherRepo) CreateUsage(ctx context.Context, tx *sql.Tx, u *domain.VoucherUsage) error {
	query := `INSERT INTO voucher_usages (id, voucher_id, user_id, course_id, payment_id, used_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := tx.ExecContext(ctx, query, u.ID, u.VoucherID, u.UserID, u.CourseID, u.PaymentID, u.UsedAt)
	if err != nil {
		return err
	}
	return nil
}

func (r *voucherRepo) IncrementUsage(ctx context.Context, tx *sql.Tx, voucherID uuid.UUID) (bool, error) {
	query := `
		UPDATE vouchers
		SET usage_count = usage_count + 1,
		    updated_at = now()
		WHERE id = $1
		AND usage_count < max_usage
	`
	result, err := tx.ExecContext(ctx, query, voucherID)
	if err != nil {
		return false, err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (r *voucherRepo) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `UPDATE vouchers SET active = FALSE, updated_at = now() WHERE active = TRUE AND valid_to < $1`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
