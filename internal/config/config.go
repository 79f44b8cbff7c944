// Package config reads service configuration from flags and environment.
package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime knob of the service. Environment
// variables win over flags; a local .env file is loaded first when
// present.
type Config struct {
	RunAddress           string        `env:"RUN_ADDRESS"`
	DatabaseURI          string        `env:"DATABASE_URI"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	JWTSecret            string        `env:"JWT_SECRET"`
	PaymentWebhookSecret string        `env:"PAYMENT_WEBHOOK_SECRET"`
	ToastDedupWindow     time.Duration `env:"TOAST_DEDUP_WINDOW"`
	CacheTTL             time.Duration `env:"CACHE_TTL"`
}

// Parse builds the configuration from command-line flags and the
// environment.
func Parse(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	fromEnv := *cfg

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&cfg.RunAddress, "a", "localhost:8080", "address and port for HTTP server")
	fs.StringVar(&cfg.DatabaseURI, "d", "", "postgres connection URI")
	fs.StringVar(&cfg.RedisAddr, "r", "127.0.0.1:6379", "redis address for the task queue")
	fs.StringVar(&cfg.JWTSecret, "s", "", "JWT signing secret")
	fs.StringVar(&cfg.PaymentWebhookSecret, "w", "", "shared secret for the payment webhook")
	fs.DurationVar(&cfg.ToastDedupWindow, "dedup", 30*time.Second, "toast dedup window")
	fs.DurationVar(&cfg.CacheTTL, "cache-ttl", 30*time.Second, "query cache TTL")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fromEnv.RunAddress != "" {
		cfg.RunAddress = fromEnv.RunAddress
	}
	if fromEnv.DatabaseURI != "" {
		cfg.DatabaseURI = fromEnv.DatabaseURI
	}
	if fromEnv.RedisAddr != "" {
		cfg.RedisAddr = fromEnv.RedisAddr
	}
	if fromEnv.JWTSecret != "" {
		cfg.JWTSecret = fromEnv.JWTSecret
	}
	if fromEnv.PaymentWebhookSecret != "" {
		cfg.PaymentWebhookSecret = fromEnv.PaymentWebhookSecret
	}
	if fromEnv.ToastDedupWindow != 0 {
		cfg.ToastDedupWindow = fromEnv.ToastDedupWindow
	}
	if fromEnv.CacheTTL != 0 {
		cfg.CacheTTL = fromEnv.CacheTTL
	}

	if cfg.DatabaseURI == "" {
		return nil, fmt.Errorf("database URI is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT secret is required")
	}
	if cfg.PaymentWebhookSecret == "" {
		return nil, fmt.Errorf("payment webhook secret is required")
	}

	return cfg, nil
}
