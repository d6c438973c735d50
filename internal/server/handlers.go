package server

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"edupay/internal/service"
	"edupay/internal/vnpay"
)

type initiatePaymentRequest struct {
	StudentID uuid.UUID `json:"student_id" binding:"required"`
	CourseID  uuid.UUID `json:"course_id" binding:"required"`
	Amount    int64     `json:"amount" binding:"required"`
	OrderInfo string    `json:"order_info"`
}

func (s *Server) handleInitiatePayment(c *gin.Context) {
	var req initiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	redirect, err := s.payments.InitiatePayment(c.Request.Context(), vnpay.PaymentRequest{
		StudentID: req.StudentID,
		CourseID:  req.CourseID,
		Amount:    req.Amount,
		OrderInfo: req.OrderInfo,
		ClientIP:  c.ClientIP(),
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidAmount) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Encoding failure là lỗi server, không phải lỗi user.
		log.Printf("initiate payment failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build payment url"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment_url": redirect})
}

func (s *Server) handleVNPayReturn(c *gin.Context) {
	rec, res, err := s.payments.HandleReturn(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidSignature):
			// Tampered/forged: reject thẳng, log for audit.
			log.Printf("callback rejected: invalid signature, txn_ref=%s", c.Query("vnp_TxnRef"))
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "INVALID_SIGNATURE"})
		case errors.Is(err, service.ErrCallbackExpired):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "reason": "EXPIRED"})
		case errors.Is(err, service.ErrProviderDeclined):
			log.Printf("callback declined: txn_ref=%s code=%s", res.TxnRef, res.ResponseCode)
			c.JSON(http.StatusPaymentRequired, gin.H{
				"success":       false,
				"reason":        "PROVIDER_DECLINED",
				"response_code": res.ResponseCode,
			})
		default:
			log.Printf("callback processing failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "reason": "INTERNAL"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"payment_id":     rec.ID,
		"transaction_id": rec.TransactionID,
		"enrollment_id":  rec.EnrollmentID,
		"status":         rec.Status,
	})
}

type validateVoucherRequest struct {
	Code     string    `json:"code" binding:"required"`
	CourseID uuid.UUID `json:"course_id" binding:"required"`
	Price    int64     `json:"price" binding:"required"`
}

func (s *Server) handleValidateVoucher(c *gin.Context) {
	var req validateVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	voucher, amount, err := s.vouchers.Validate(c.Request.Context(), req.Code, req.CourseID, req.Price)
	if err != nil {
		c.JSON(voucherStatus(err), gin.H{"valid": false, "reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":       true,
		"code":        voucher.Code,
		"discount":    amount,
		"final_price": req.Price - amount,
	})
}

type applyVoucherRequest struct {
	Code      string     `json:"code" binding:"required"`
	CourseID  uuid.UUID  `json:"course_id" binding:"required"`
	UserID    uuid.UUID  `json:"user_id" binding:"required"`
	PaymentID *uuid.UUID `json:"payment_id"`
}

func (s *Server) handleApplyVoucher(c *gin.Context) {
	var req applyVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	usage, err := s.vouchers.Redeem(c.Request.Context(), req.Code, req.CourseID, req.UserID, req.PaymentID)
	if err != nil {
		c.JSON(voucherStatus(err), gin.H{"applied": false, "reason": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"applied":    true,
		"usage_id":   usage.ID,
		"voucher_id": usage.VoucherID,
		"used_at":    usage.UsedAt,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, s.health.Health())
}

// voucherStatus maps the redemption taxonomy to HTTP codes. Race losers get
// their specific reason (Exhausted/AlreadyRedeemed), never a generic error.
func voucherStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrVoucherNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAlreadyRedeemed),
		errors.Is(err, service.ErrVoucherExhausted):
		return http.StatusConflict
	case errors.Is(err, service.ErrVoucherInactive),
		errors.Is(err, service.ErrVoucherExpired),
		errors.Is(err, service.ErrBelowMinimumPurchase),
		errors.Is(err, service.ErrCourseScopeMismatch):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
