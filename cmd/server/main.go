package main

import (
	"context"
	"log"

	"edupay/internal/config"
	"edupay/internal/database"
	"edupay/internal/repo"
	"edupay/internal/server"
	"edupay/internal/service"
	"edupay/internal/vnpay"
	"edupay/internal/worker"
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

	sweeper := worker.NewVoucherSweeper(voucherRepo, cfg.SweepInterval)
	go sweeper.Run(ctx)

	srv := server.NewServer(paymentService, voucherService, database.New(db))
	if err := srv.Run(cfg.ServerAddr); err != nil {
		log.Fatal(err)
	}
}
