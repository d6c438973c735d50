package config

import (
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
)

// VNPayConfig holds the merchant credentials and endpoints for the gateway
// handshake. It is injected into the URL builder and callback verifier so the
// signing path can be tested with fixture secrets.
type VNPayConfig struct {
	TmnCode    string
	HashSecret string
	PayURL     string
	ReturnURL  string
	Version    string
	Locale     string
	CurrCode   string
	OrderType  string
	IntentTTL  time.Duration
}

type Config struct {
	ServerAddr    string
	VNPay         VNPayConfig
	SweepInterval time.Duration
}

func Load() Config {
	return Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		VNPay: VNPayConfig{
			TmnCode:    os.Getenv("VNPAY_TMN_CODE"),
			HashSecret: os.Getenv("VNPAY_HASH_SECRET"),
			PayURL:     getEnv("VNPAY_PAY_URL", "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html"),
			ReturnURL:  getEnv("VNPAY_RETURN_URL", "http://localhost:8080/api/v1/payments/vnpay-return"),
			Version:    getEnv("VNPAY_VERSION", "2.1.0"),
			Locale:     getEnv("VNPAY_LOCALE", "vn"),
			CurrCode:   getEnv("VNPAY_CURR_CODE", "VND"),
			OrderType:  getEnv("VNPAY_ORDER_TYPE", "billpayment"),
			IntentTTL:  getEnvDuration("VNPAY_INTENT_TTL_MINUTES", 15) * time.Minute,
		},
		SweepInterval: getEnvDuration("VOUCHER_SWEEP_INTERVAL_MINUTES", 10) * time.Minute,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback int64) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(fallback)
}
