package vnpay

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"edupay/internal/config"

	"github.com/google/uuid"
)

type Outcome string

const (
	OutcomeOK               Outcome = "OK"
	OutcomeInvalidSignature Outcome = "INVALID_SIGNATURE"
	OutcomeExpired          Outcome = "EXPIRED"
	OutcomeDeclined         Outcome = "PROVIDER_DECLINED"
)

// CallbackResult classifies an inbound return callback. Verification is pure:
// no records are created here, chỉ phân loại.
type CallbackResult struct {
	Outcome      Outcome
	ResponseCode string // raw provider code, preserved for audit
	TxnRef       string
	Amount       int64 // VND, converted back from minor units
	StudentID    uuid.UUID
	CourseID     uuid.UUID
	OrderInfo    string
}

func (r CallbackResult) Valid() bool { return r.Outcome == OutcomeOK }

type CallbackVerifier interface {
	Verify(query url.Values) (CallbackResult, error)
}

type callbackVerifier struct {
	cfg    config.VNPayConfig
	signer SignatureProvider
	now    func() time.Time
}

func NewCallbackVerifier(cfg config.VNPayConfig, signer SignatureProvider) CallbackVerifier {
	return &callbackVerifier{cfg: cfg, signer: signer, now: time.Now}
}

// Verify authenticates the callback query against the merchant secret and
// classifies it. The signature check always runs first; nothing from the
// payload (kể cả timestamp) được tin trước khi chữ ký hợp lệ.
func (v *callbackVerifier) Verify(query url.Values) (CallbackResult, error) {
	res := CallbackResult{Outcome: OutcomeInvalidSignature}

	sig := query.Get(paramSecureHash)
	if sig == "" {
		return res, nil
	}

	// Only vnp_-prefixed fields were signed. The hash itself and anything we
	// appended to the return URL (courseId) are stripped before
	// re-canonicalizing, otherwise the signature can never match.
	signed := make(Params, 0, len(query))
	for name, values := range query {
		if !strings.HasPrefix(name, "vnp_") {
			continue
		}
		if name == paramSecureHash || name == paramSecureHashType {
			continue
		}
		if len(values) > 0 {
			signed = signed.Set(name, values[0])
		}
	}

	data, err := signed.SignData()
	if err != nil {
		return res, nil
	}
	if !v.signer.Verify(data, sig) {
		return res, nil
	}

	// Signature holds; payload fields are trustworthy from here on.
	res.ResponseCode = query.Get(paramResponseCode)
	res.TxnRef = signed.Get(paramTxnRef)
	res.OrderInfo = signed.Get(paramOrderInfo)

	if exp := signed.Get(paramExpireDate); exp != "" {
		expireAt, perr := time.ParseInLocation(dateLayout, exp, time.Local)
		if perr != nil {
			return res, fmt.Errorf("vnpay: bad expire date %q: %w", exp, perr)
		}
		if v.now().After(expireAt) {
			res.Outcome = OutcomeExpired
			return res, nil
		}
	}

	if res.ResponseCode != SuccessCode {
		res.Outcome = OutcomeDeclined
		return res, nil
	}

	minor, err := strconv.ParseInt(signed.Get(paramAmount), 10, 64)
	if err != nil {
		return res, fmt.Errorf("vnpay: bad amount %q: %w", signed.Get(paramAmount), err)
	}
	res.Amount = minor / 100

	res.StudentID, res.CourseID, err = ParseOrderInfo(res.OrderInfo)
	if err != nil {
		return res, err
	}

	res.Outcome = OutcomeOK
	return res, nil
}
