package service

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"edupay/internal/domain"
	"edupay/internal/repo"
	"edupay/internal/vnpay"

	"github.com/google/uuid"
)

const paymentMethodVNPay = "VNPAY"

type PaymentService interface {
	// InitiatePayment returns the signed redirect URL for the purchase.
	InitiatePayment(ctx context.Context, req vnpay.PaymentRequest) (string, error)
	// HandleReturn verifies the provider callback and, only on a valid
	// success, finalizes the enrollment. The verdict comes back alongside the
	// record so the handler can mirror it in the HTTP status.
	HandleReturn(ctx context.Context, query url.Values) (*domain.PaymentRecord, vnpay.CallbackResult, error)
}

type paymentService struct {
	db          *sql.DB
	payments    repo.PaymentRepo
	enrollments repo.EnrollmentRepo
	builder     vnpay.URLBuilder
	verifier    vnpay.CallbackVerifier
}

func NewPaymentService(
	db *sql.DB,
	payments repo.PaymentRepo,
	enrollments repo.EnrollmentRepo,
	builder vnpay.URLBuilder,
	verifier vnpay.CallbackVerifier,
) PaymentService {
	return &paymentService{
		db:          db,
		payments:    payments,
		enrollments: enrollments,
		builder:     builder,
		verifier:    verifier,
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, req vnpay.PaymentRequest) (string, error) {
	if req.Amount <= 0 {
		return "", ErrInvalidAmount
	}
	redirect, _, err := s.builder.BuildPaymentURL(req)
	if err != nil {
		return "", err
	}
	return redirect, nil
}

func (s *paymentService) HandleReturn(ctx context.Context, query url.Values) (*domain.PaymentRecord, vnpay.CallbackResult, error) {
	// Verify chạy xong và cho verdict trước, mọi mutation sau đó.
	res, err := s.verifier.Verify(query)
	if err != nil {
		return nil, res, err
	}

	switch res.Outcome {
	case vnpay.OutcomeInvalidSignature:
		return nil, res, ErrInvalidSignature
	case vnpay.OutcomeExpired:
		return nil, res, ErrCallbackExpired
	case vnpay.OutcomeDeclined:
		return nil, res, fmt.Errorf("%w (code %s)", ErrProviderDeclined, res.ResponseCode)
	}

	rec, err := s.finalize(ctx, res)
	if err != nil {
		return nil, res, err
	}
	return rec, res, nil
}

// finalize converts a verified successful callback into enrollment + payment,
// exactly once per transaction reference. Duplicate delivery returns the
// record created by the first delivery.
func (s *paymentService) finalize(ctx context.Context, res vnpay.CallbackResult) (*domain.PaymentRecord, error) {
	// Fast path: provider đã gửi callback này rồi.
	if existing, err := s.payments.FindByTransactionID(ctx, res.TxnRef); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	now := time.Now()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	enrollment, err := s.enrollments.GetOrCreate(ctx, tx, res.StudentID, res.CourseID, now)
	if err != nil {
		return nil, err
	}

	rec := &domain.PaymentRecord{
		ID:            uuid.New(),
		TransactionID: res.TxnRef,
		Amount:        res.Amount,
		Status:        domain.PaymentCompleted,
		PaymentMethod: paymentMethodVNPay,
		PaymentDate:   now,
		EnrollmentID:  enrollment.ID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.payments.CreatePayment(ctx, tx, rec); err != nil {
		if repo.IsUniqueViolation(err) {
			// Thua race với callback trùng: rollback cả enrollment insert
			// rồi trả record của tx thắng.
			tx.Rollback()
			existing, ferr := s.payments.FindByTransactionID(ctx, res.TxnRef)
			if ferr != nil {
				return nil, ferr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return rec, nil
}
