// Package config centralizes environment-driven settings so main stays lean.
package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures the full process configuration.
type Server struct {
	Addr        string
	APIBaseURL  string
	CountryCode string
	ReturnBase  string

	PollInterval   time.Duration
	PaymentTimeout time.Duration
	SessionTTL     time.Duration

	Redis    Redis
	Gateways Gateways
}

// Redis captures connection and pool settings. An empty URL disables Redis
// and the process falls back to in-memory stores.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Gateways carries the per-gateway merchant settings.
type Gateways struct {
	KNETMerchantID      string
	OmanNetMerchantID   string
	CCAvenueMerchantID  string
	CyberSourceMerchant string
	QNBMerchantID       string
	QNBSecretKey        string
	Default             string
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Server {
	return Server{
		Addr:        envOr("TRADEGATE_ADDR", ":8080"),
		APIBaseURL:  envOr("TRADEGATE_API_BASE_URL", "http://localhost:9000"),
		CountryCode: envOr("TRADEGATE_COUNTRY_CODE", "DOHA"),
		ReturnBase:  envOr("TRADEGATE_RETURN_BASE", "http://localhost:8080"),

		PollInterval:   envDuration("TRADEGATE_POLL_INTERVAL", 3*time.Second),
		PaymentTimeout: envDuration("TRADEGATE_PAYMENT_TIMEOUT", 15*time.Minute),
		SessionTTL:     envDuration("TRADEGATE_SESSION_TTL", 30*24*time.Hour),

		Redis: Redis{
			URL:          os.Getenv("TRADEGATE_REDIS_URL"),
			PoolSize:     envInt("TRADEGATE_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("TRADEGATE_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("TRADEGATE_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("TRADEGATE_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("TRADEGATE_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},

		Gateways: Gateways{
			KNETMerchantID:      os.Getenv("TRADEGATE_KNET_MERCHANT_ID"),
			OmanNetMerchantID:   os.Getenv("TRADEGATE_OMANNET_MERCHANT_ID"),
			CCAvenueMerchantID:  os.Getenv("TRADEGATE_CCAVENUE_MERCHANT_ID"),
			CyberSourceMerchant: os.Getenv("TRADEGATE_CYBERSOURCE_MERCHANT_ID"),
			QNBMerchantID:       os.Getenv("TRADEGATE_QNB_MERCHANT_ID"),
			QNBSecretKey:        os.Getenv("TRADEGATE_QNB_SECRET_KEY"),
			Default:             envOr("TRADEGATE_DEFAULT_GATEWAY", "QNB"),
		},
	}
}
