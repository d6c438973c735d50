package vnpay

import (
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"edupay/internal/config"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureConfig() config.VNPayConfig {
	return config.VNPayConfig{
		TmnCode:    "DEMOV210",
		HashSecret: "FIXTURESECRET",
		PayURL:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
		ReturnURL:  "http://localhost:8080/api/v1/payments/vnpay-return",
		Version:    "2.1.0",
		Locale:     "vn",
		CurrCode:   "VND",
		OrderType:  "billpayment",
		IntentTTL:  15 * time.Minute,
	}
}

func fixtureBuilder(cfg config.VNPayConfig, at time.Time, ref string) *urlBuilder {
	return &urlBuilder{
		cfg:    cfg,
		signer: NewSignatureProvider(cfg.HashSecret),
		now:    func() time.Time { return at },
		txnRef: func(time.Time) string { return ref },
	}
}

func TestBuildPaymentURL(t *testing.T) {
	cfg := fixtureConfig()
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	b := fixtureBuilder(cfg, at, "17561000000000001234")

	studentID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	courseID := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	redirect, intent, err := b.BuildPaymentURL(PaymentRequest{
		StudentID: studentID,
		CourseID:  courseID,
		Amount:    150000,
		OrderInfo: "khoa hoc Golang",
		ClientIP:  "203.0.113.7",
	})
	require.NoError(t, err)

	parsed, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "https", parsed.Scheme)
	assert.Equal(t, "sandbox.vnpayment.vn", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "2.1.0", q.Get("vnp_Version"))
	assert.Equal(t, "pay", q.Get("vnp_Command"))
	assert.Equal(t, "DEMOV210", q.Get("vnp_TmnCode"))
	assert.Equal(t, "15000000", q.Get("vnp_Amount"), "amount is x100 minor units")
	assert.Equal(t, "VND", q.Get("vnp_CurrCode"))
	assert.Equal(t, "17561000000000001234", q.Get("vnp_TxnRef"))
	assert.Equal(t, "20260828103000", q.Get("vnp_CreateDate"))
	assert.Equal(t, "20260828104500", q.Get("vnp_ExpireDate"), "create + 15m TTL")
	assert.Equal(t, "203.0.113.7", q.Get("vnp_IpAddr"))

	// Payer identity rides inside the signed order info.
	assert.Equal(t, "enroll:"+studentID.String()+":"+courseID.String()+" khoa hoc Golang", q.Get("vnp_OrderInfo"))

	// courseId is appended to the return URL for redirect context.
	returnURL, err := url.Parse(q.Get("vnp_ReturnUrl"))
	require.NoError(t, err)
	assert.Equal(t, courseID.String(), returnURL.Query().Get("courseId"))

	// The signature covers every outbound param except itself.
	signed := Params{}
	for name := range q {
		if name == "vnp_SecureHash" {
			continue
		}
		signed = signed.Set(name, q.Get(name))
	}
	data, err := signed.SignData()
	require.NoError(t, err)
	assert.True(t, NewSignatureProvider(cfg.HashSecret).Verify(data, q.Get("vnp_SecureHash")))

	// Intent mirrors the URL and round-trips through TxnRef.
	assert.Equal(t, "17561000000000001234", intent.TxnRef)
	assert.Equal(t, int64(150000), intent.Amount)
	assert.Equal(t, at, intent.CreatedAt)
	assert.Equal(t, at.Add(15*time.Minute), intent.ExpireAt)
}

func TestBuildPaymentURLByteReproducible(t *testing.T) {
	cfg := fixtureConfig()
	at := time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local)
	req := PaymentRequest{
		StudentID: uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		CourseID:  uuid.MustParse("22222222-2222-2222-2222-222222222222"),
		Amount:    99000,
		ClientIP:  "127.0.0.1",
	}

	first, _, err := fixtureBuilder(cfg, at, "REF1").BuildPaymentURL(req)
	require.NoError(t, err)
	second, _, err := fixtureBuilder(cfg, at, "REF1").BuildPaymentURL(req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestBuildPaymentURLQuerySortedLikeSigningInput(t *testing.T) {
	cfg := fixtureConfig()
	b := fixtureBuilder(cfg, time.Date(2026, 8, 28, 10, 30, 0, 0, time.Local), "REF1")

	redirect, _, err := b.BuildPaymentURL(PaymentRequest{
		StudentID: uuid.New(),
		CourseID:  uuid.New(),
		Amount:    50000,
		ClientIP:  "127.0.0.1",
	})
	require.NoError(t, err)

	rawQuery := redirect[strings.Index(redirect, "?")+1:]
	var keys []string
	for _, pair := range strings.Split(rawQuery, "&") {
		name, _, _ := strings.Cut(pair, "=")
		keys = append(keys, name)
	}
	// All keys except the trailing signature are in ascending order.
	body := keys[:len(keys)-1]
	assert.True(t, sort.StringsAreSorted(body), "query keys not sorted: %v", body)
	assert.Equal(t, "vnp_SecureHash", keys[len(keys)-1])
}

func TestBuildPaymentURLRejectsNonPositiveAmount(t *testing.T) {
	b := fixtureBuilder(fixtureConfig(), time.Now(), "REF1")

	for _, amount := range []int64{0, -1} {
		_, _, err := b.BuildPaymentURL(PaymentRequest{
			StudentID: uuid.New(),
			CourseID:  uuid.New(),
			Amount:    amount,
		})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	}
}

func TestBuildPaymentURLEncodingError(t *testing.T) {
	b := fixtureBuilder(fixtureConfig(), time.Now(), "REF1")

	_, _, err := b.BuildPaymentURL(PaymentRequest{
		StudentID: uuid.New(),
		CourseID:  uuid.New(),
		Amount:    50000,
		OrderInfo: string([]byte{0xc3, 0x28}), // invalid UTF-8 sequence
	})
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestPackParseOrderInfo(t *testing.T) {
	studentID := uuid.New()
	courseID := uuid.New()

	info := PackOrderInfo(studentID, courseID, "lop tieng Anh")
	gotStudent, gotCourse, err := ParseOrderInfo(info)
	require.NoError(t, err)
	assert.Equal(t, studentID, gotStudent)
	assert.Equal(t, courseID, gotCourse)

	_, _, err = ParseOrderInfo("random text")
	assert.Error(t, err)
	_, _, err = ParseOrderInfo("enroll:not-a-uuid:" + courseID.String())
	assert.Error(t, err)
}
