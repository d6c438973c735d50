package main

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"edupay/internal/config"
	"edupay/internal/database"
	"edupay/internal/domain"
	"edupay/internal/repo"
	"edupay/internal/service"
	"edupay/internal/vnpay"

	"github.com/google/uuid"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	db := database.NewPostgres()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("migrate failed: %v", err)
	}

	paymentRepo := repo.NewPaymentRepo(db)
	enrollmentRepo := repo.NewEnrollmentRepo(db)
	voucherRepo := repo.NewVoucherRepo(db)

	signer := vnpay.NewSignatureProvider(cfg.VNPay.HashSecret)
	builder := vnpay.NewURLBuilder(cfg.VNPay, signer)
	verifier := vnpay.NewCallbackVerifier(cfg.VNPay, signer)

	paymentService := service.NewPaymentService(db, paymentRepo, enrollmentRepo, builder, verifier)
	voucherService := service.NewVoucherService(db, voucherRepo)

	fmt.Println("--- SIMULATION 1: DUPLICATE CALLBACK (PROVIDER RETRY) ---")
	studentID := uuid.New()
	courseID := uuid.New()

	redirect, _, err := builder.BuildPaymentURL(vnpay.PaymentRequest{
		StudentID: studentID,
		CourseID:  courseID,
		Amount:    150000,
		OrderInfo: "khoa hoc Golang",
		ClientIP:  "127.0.0.1",
	})
	if err != nil {
		log.Fatalf("build failed: %v", err)
	}
	fmt.Printf("Redirect URL: %s\n", redirect)

	// Giả lập provider redirect về: cùng signed params + response code 00,
	// ký lại bằng chung secret.
	callback := simulateProviderReturn(redirect, signer, "00")

	// Provider có thể gửi callback nhiều lần -> finalize phải idempotent.
	for i := 0; i < 3; i++ {
		rec, _, err := paymentService.HandleReturn(ctx, callback)
		if err != nil {
			fmt.Printf("[%d] FAILED: %v\n", i+1, err)
			continue
		}
		fmt.Printf("[%d] payment_id=%s enrollment_id=%s status=%s\n", i+1, rec.ID, rec.EnrollmentID, rec.Status)
	}

	fmt.Println("--- SIMULATION 2: VOUCHER RACE (maxUsage=3, 10 redeemers) ---")
	now := time.Now()
	voucher := &domain.Voucher{
		ID:                    uuid.New(),
		Code:                  fmt.Sprintf("RACE-%d", now.UnixNano()),
		DiscountAmount:        50000,
		MinimumPurchaseAmount: 100000,
		ValidFrom:             now.Add(-time.Hour),
		ValidTo:               now.Add(time.Hour),
		MaxUsage:              3,
		Active:                true,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := voucherRepo.CreateVoucher(ctx, voucher); err != nil {
		log.Fatalf("seed voucher failed: %v", err)
	}

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := voucherService.Redeem(ctx, voucher.Code, courseID, uuid.New(), nil)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else {
			fmt.Printf("redeem rejected: %v\n", err)
		}
	}

	// Query lại DB để xem trạng thái thực tế
	fresh, _ := voucherRepo.FindByCode(ctx, voucher.Code)
	fmt.Printf("succeeded=%d usage_count=%d max_usage=%d\n", succeeded, fresh.UsageCount, fresh.MaxUsage)
	fmt.Println("---------------------------------------------------")
}

// simulateProviderReturn rebuilds the return-callback query the way the
// gateway would: signed vnp_ fields + response code, hash recomputed, plus
// the unsigned courseId context from the return URL.
func simulateProviderReturn(redirect string, signer vnpay.SignatureProvider, responseCode string) url.Values {
	parsed, err := url.Parse(redirect)
	if err != nil {
		log.Fatalf("bad redirect url: %v", err)
	}
	outbound := parsed.Query()

	signed := vnpay.Params{}
	for name := range outbound {
		if !strings.HasPrefix(name, "vnp_") || name == "vnp_SecureHash" {
			continue
		}
		signed = signed.Set(name, outbound.Get(name))
	}
	signed = signed.Set("vnp_ResponseCode", responseCode)

	data, err := signed.SignData()
	if err != nil {
		log.Fatalf("sign data failed: %v", err)
	}

	callback := url.Values{}
	for _, p := range signed {
		callback.Set(p.Name, p.Value)
	}
	callback.Set("vnp_SecureHash", signer.Sign(data))

	// courseId mà builder gắn vào return URL sẽ xuất hiện trong query chiều về
	returnURL, _ := url.Parse(outbound.Get("vnp_ReturnUrl"))
	if cid := returnURL.Query().Get("courseId"); cid != "" {
		callback.Set("courseId", cid)
	}
	return callback
}
