package repo

import (
	"context"
	"database/sql"
	"edupay/internal/domain"

	"github.com/google/uuid"
)

type PaymentRepo interface {
	// tx *sql.Tx -> kiểm soát transaction
	CreatePayment(ctx context.Context, tx *sql.Tx, p *domain.PaymentRecord) error
	// FindByTransactionID returns (nil, nil) when no record exists.
	FindByTransactionID(ctx context.Context, txnRef string) (*domain.PaymentRecord, error)
	FindById(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error)
}

type paymentRepo struct {
	db *sql.DB
}

func NewPaymentRepo(db *sql.DB) PaymentRepo {
	return &paymentRepo{db: db}
}

func (r *paymentRepo) CreatePayment(ctx context.Context, tx *sql.Tx, p *domain.PaymentRecord) error {
	query := `INSERT INTO payments (id, transaction_id, amount, status, payment_method, payment_date, enrollment_id, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.ExecContext(
		ctx, query, p.ID, p.TransactionID, p.Amount, p.Status, p.PaymentMethod, p.PaymentDate, p.EnrollmentID, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	return nil
}

func (r *paymentRepo) FindByTransactionID(ctx context.Context, txnRef string) (*domain.PaymentRecord, error) {
	query := `SELECT id, transaction_id, amount, status, payment_method, payment_date, enrollment_id, created_at, updated_at
	          FROM payments WHERE transaction_id = $1`
	row := r.db.QueryRowContext(ctx, query, txnRef)
	var p domain.PaymentRecord
	err := row.Scan(
		&p.ID,
		&p.TransactionID,
		&p.Amount,
		&p.Status,
		&p.PaymentMethod,
		&p.PaymentDate,
		&p.EnrollmentID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil // not found
	}
	if err != nil {
		return nil, err // system error
	}
	return &p, nil
}

func (r *paymentRepo) FindById(ctx context.Context, id uuid.UUID) (*domain.PaymentRecord, error) {
	query := `SELECT id, transaction_id, amount, status, payment_method, payment_date, enrollment_id, created_at, updated_at
	          FROM payments WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)
	var p domain.PaymentRecord
	err := row.Scan(
		&p.ID,
		&p.TransactionID,
		&p.Amount,
		&p.Status,
		&p.PaymentMethod,
		&p.PaymentDate,
		&p.EnrollmentID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
