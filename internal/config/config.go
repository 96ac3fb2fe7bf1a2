package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds typed configuration for the maintenance app.
type Config struct {
	LogLevel    string
	HTTPPort    string
	MetricsAddr string

	PostgresDSN string
	RedisAddr   string

	JWTSecret       string
	SessionLifetime time.Duration

	// BaseURL is the public origin used in confirmation links.
	BaseURL     string
	TokenTTL    time.Duration
	ScanCron    string
	CleanupCron string
	SendRetries int
	SendTimeout time.Duration

	RateLimit  int
	RateWindow time.Duration
	JobLockTTL time.Duration

	OTelEndpoint string
}

// Load reads all values from the given viper instance.
func Load(v *viper.Viper) Config {
	return Config{
		LogLevel:        v.GetString("log_level"),
		HTTPPort:        v.GetString("http_port"),
		MetricsAddr:     v.GetString("metrics_addr"),
		PostgresDSN:     v.GetString("postgres_dsn"),
		RedisAddr:       v.GetString("redis_addr"),
		JWTSecret:       v.GetString("jwt_secret"),
		SessionLifetime: v.GetDuration("session_lifetime"),
		BaseURL:         v.GetString("base_url"),
		TokenTTL:        v.GetDuration("token_ttl"),
		ScanCron:        v.GetString("scan_cron"),
		CleanupCron:     v.GetString("cleanup_cron"),
		SendRetries:     v.GetInt("send_retries"),
		SendTimeout:     v.GetDuration("send_timeout"),
		RateLimit:       v.GetInt("rate_limit"),
		RateWindow:      v.GetDuration("rate_window"),
		JobLockTTL:      v.GetDuration("job_lock_ttl"),
		OTelEndpoint:    v.GetString("otel_endpoint"),
	}
}
