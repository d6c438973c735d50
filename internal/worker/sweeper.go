package worker

import (
	"context"
	"log"
	"time"

	"edupay/internal/repo"
)

// VoucherSweeper periodically deactivates vouchers whose validity window has
// lapsed. Housekeeping only - eligibility checks never trust the active flag
// alone, they re-check the window themselves.
type VoucherSweeper struct {
	vouchers repo.VoucherRepo
	interval time.Duration
}

func NewVoucherSweeper(vouchers repo.VoucherRepo, interval time.Duration) *VoucherSweeper {
	return &VoucherSweeper{
		vouchers: vouchers,
		interval: interval,
	}
}

func (w *VoucherSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	log.Println("Voucher sweeper started")

	for {
		select {
		case <-ctx.Done(): // Worker bị dừng
			return
		case <-ticker.C: // Đến giờ chạy job
			if err := w.process(ctx); err != nil {
				log.Printf("Voucher sweep failed: %v", err)
			}
		}
	}
}

func (w *VoucherSweeper) process(ctx context.Context) error {
	n, err := w.vouchers.DeactivateExpired(ctx, time.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("Deactivated %d expired vouchers", n)
	}
	return nil
}
