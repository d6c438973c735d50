package vnpay

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"edupay/internal/config"
	"edupay/internal/domain"

	"github.com/google/uuid"
)

const (
	dateLayout  = "20060102150405"
	CommandPay  = "pay"
	SuccessCode = "00"

	paramSecureHash     = "vnp_SecureHash"
	paramSecureHashType = "vnp_SecureHashType"
	paramResponseCode   = "vnp_ResponseCode"
	paramTxnRef         = "vnp_TxnRef"
	paramAmount         = "vnp_Amount"
	paramOrderInfo      = "vnp_OrderInfo"
	paramExpireDate     = "vnp_ExpireDate"
	paramCourseContext  = "courseId"
)

var ErrInvalidAmount = errors.New("vnpay: amount must be positive")

// PaymentRequest is the input for building a redirect URL. StudentID rides
// inside the signed vnp_OrderInfo so the callback can authenticate the payer
// without server-side session state.
type PaymentRequest struct {
	StudentID uuid.UUID
	CourseID  uuid.UUID
	Amount    int64 // VND
	OrderInfo string
	ClientIP  string
	ReturnURL string // optional override of the configured return URL
}

type URLBuilder interface {
	BuildPaymentURL(req PaymentRequest) (string, *domain.PaymentIntent, error)
}

type urlBuilder struct {
	cfg    config.VNPayConfig
	signer SignatureProvider
	now    func() time.Time
	txnRef func(now time.Time) string
}

func NewURLBuilder(cfg config.VNPayConfig, signer SignatureProvider) URLBuilder {
	return &urlBuilder{
		cfg:    cfg,
		signer: signer,
		now:    time.Now,
		txnRef: defaultTxnRef,
	}
}

// defaultTxnRef: nano timestamp + random suffix. Chỉ cần unique cho mỗi
// PaymentRecord, không mang ý nghĩa thời gian.
func defaultTxnRef(now time.Time) string {
	return fmt.Sprintf("%d%04d", now.UnixNano(), rand.IntN(10000))
}

func (b *urlBuilder) BuildPaymentURL(req PaymentRequest) (string, *domain.PaymentIntent, error) {
	if req.Amount <= 0 {
		return "", nil, ErrInvalidAmount
	}

	now := b.now()
	ref := b.txnRef(now)
	expire := now.Add(b.cfg.IntentTTL)

	returnURL := req.ReturnURL
	if returnURL == "" {
		returnURL = b.cfg.ReturnURL
	}
	// courseId đi kèm return URL để frontend còn context sau redirect.
	// Nó KHÔNG thuộc signed set ở chiều về (xem verifier).
	returnURL = appendQuery(returnURL, paramCourseContext, req.CourseID.String())

	orderInfo := PackOrderInfo(req.StudentID, req.CourseID, req.OrderInfo)

	params := Params{
		{Name: "vnp_Version", Value: b.cfg.Version},
		{Name: "vnp_Command", Value: CommandPay},
		{Name: "vnp_TmnCode", Value: b.cfg.TmnCode},
		{Name: paramAmount, Value: strconv.FormatInt(req.Amount*100, 10)},
		{Name: paramTxnRef, Value: ref},
		{Name: paramOrderInfo, Value: orderInfo},
		{Name: "vnp_OrderType", Value: b.cfg.OrderType},
		{Name: "vnp_Locale", Value: b.cfg.Locale},
		{Name: "vnp_CurrCode", Value: b.cfg.CurrCode},
		{Name: "vnp_IpAddr", Value: req.ClientIP},
		{Name: "vnp_CreateDate", Value: now.Format(dateLayout)},
		{Name: paramExpireDate, Value: expire.Format(dateLayout)},
		{Name: "vnp_ReturnUrl", Value: returnURL},
	}

	data, err := params.SignData()
	if err != nil {
		return "", nil, err
	}
	hash := b.signer.Sign(data)

	// Signature is the trailing query param, appended unencoded (hex is
	// already query-safe).
	redirect := b.cfg.PayURL + "?" + data + "&" + paramSecureHash + "=" + hash

	intent := &domain.PaymentIntent{
		CourseID:  req.CourseID,
		StudentID: req.StudentID,
		Amount:    req.Amount,
		OrderInfo: orderInfo,
		ReturnURL: returnURL,
		TxnRef:    ref,
		CreatedAt: now,
		ExpireAt:  expire,
	}
	return redirect, intent, nil
}

// PackOrderInfo embeds the payer identity into the signed order description:
// "enroll:<studentID>:<courseID>[ free text]".
func PackOrderInfo(studentID, courseID uuid.UUID, text string) string {
	info := fmt.Sprintf("enroll:%s:%s", studentID, courseID)
	if text != "" {
		info += " " + text
	}
	return info
}

// ParseOrderInfo recovers the payer identity packed by PackOrderInfo.
func ParseOrderInfo(info string) (studentID, courseID uuid.UUID, err error) {
	head, _, _ := strings.Cut(info, " ")
	parts := strings.Split(head, ":")
	if len(parts) != 3 || parts[0] != "enroll" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("vnpay: malformed order info %q", info)
	}
	studentID, err = uuid.Parse(parts[1])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("vnpay: bad student id in order info: %w", err)
	}
	courseID, err = uuid.Parse(parts[2])
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("vnpay: bad course id in order info: %w", err)
	}
	return studentID, courseID, nil
}

func appendQuery(rawURL, key, value string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + key + "=" + encode(value)
}
