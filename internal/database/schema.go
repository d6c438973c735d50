package database

import (
	"context"
	"database/sql"
)

// Các unique index dưới đây là cơ chế chặn race thật sự:
// payments.transaction_id chặn duplicate callback,
// enrollments(student,course) chặn enroll đôi,
// voucher_usages(voucher,user) chặn redeem lần hai,
// CHECK usage_count giữ bất biến 0 <= usage_count <= max_usage.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS enrollments (
		id UUID PRIMARY KEY,
		student_id UUID NOT NULL,
		course_id UUID NOT NULL,
		enrolled_at TIMESTAMPTZ NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		completed_at TIMESTAMPTZ,
		UNIQUE (student_id, course_id)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		transaction_id TEXT NOT NULL UNIQUE,
		amount BIGINT NOT NULL,
		status TEXT NOT NULL,
		payment_method TEXT NOT NULL,
		payment_date TIMESTAMPTZ NOT NULL,
		enrollment_id UUID NOT NULL REFERENCES enrollments(id),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS vouchers (
		id UUID PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		discount_amount BIGINT NOT NULL,
		minimum_purchase_amount BIGINT NOT NULL DEFAULT 0,
		valid_from TIMESTAMPTZ NOT NULL,
		valid_to TIMESTAMPTZ NOT NULL,
		max_usage INT NOT NULL,
		usage_count INT NOT NULL DEFAULT 0,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		course_id UUID,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		CHECK (usage_count >= 0 AND usage_count <= max_usage)
	)`,
	`CREATE TABLE IF NOT EXISTS voucher_usages (
		id UUID PRIMARY KEY,
		voucher_id UUID NOT NULL REFERENCES vouchers(id),
		user_id UUID NOT NULL,
		course_id UUID NOT NULL,
		payment_id UUID,
		used_at TIMESTAMPTZ NOT NULL,
		UNIQUE (voucher_id, user_id)
	)`,
}

// Migrate applies the schema. Statements are idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
