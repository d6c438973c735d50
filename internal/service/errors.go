package service

import "errors"

// Payment callback taxonomy. Verification failures are never retried here;
// the provider retries the callback on its own schedule.
var (
	ErrInvalidAmount    = errors.New("payment: amount must be positive")
	ErrInvalidSignature = errors.New("payment: invalid callback signature")
	ErrCallbackExpired  = errors.New("payment: callback arrived after intent expiry")
	ErrProviderDeclined = errors.New("payment: provider declined the transaction")
)

// Voucher taxonomy. Mỗi lý do một error riêng để API trả message cụ thể,
// không gộp thành "invalid voucher" chung chung.
var (
	ErrVoucherNotFound      = errors.New("voucher: not found")
	ErrVoucherInactive      = errors.New("voucher: inactive")
	ErrVoucherExpired       = errors.New("voucher: outside validity window")
	ErrVoucherExhausted     = errors.New("voucher: usage limit reached")
	ErrBelowMinimumPurchase = errors.New("voucher: price below minimum purchase amount")
	ErrCourseScopeMismatch  = errors.New("voucher: not applicable to this course")
	ErrAlreadyRedeemed      = errors.New("voucher: already redeemed by this user")
)
