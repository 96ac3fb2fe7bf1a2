package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/u5732555133-stack/maintenance-app/internal/auth"
	"github.com/u5732555133-stack/maintenance-app/internal/config"
	"github.com/u5732555133-stack/maintenance-app/internal/httpapi"
	"github.com/u5732555133-stack/maintenance-app/internal/jobs"
	"github.com/u5732555133-stack/maintenance-app/internal/mail"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
	redisstore "github.com/u5732555133-stack/maintenance-app/internal/redis"
	"github.com/u5732555133-stack/maintenance-app/internal/reminder"
	"github.com/u5732555133-stack/maintenance-app/pkg/telemetry"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API and the daily reminder jobs",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("http-port", "8080", "HTTP server port")
	serveCmd.Flags().String("metrics-addr", ":9095", "Prometheus metrics server address")
	serveCmd.Flags().String("redis-addr", "localhost:6379", "Redis address (host:port)")
	serveCmd.Flags().String("jwt-secret", "changeme", "JWT signing secret")
	serveCmd.Flags().String("base-url", "http://localhost:8080", "public origin used in confirmation links")
	serveCmd.Flags().Duration("token-ttl", 30*24*time.Hour, "confirmation token lifetime")
	serveCmd.Flags().String("scan-cron", "0 8 * * *", "cron spec for the daily reminder scan")
	serveCmd.Flags().String("cleanup-cron", "0 2 * * *", "cron spec for the expired token cleanup")
	serveCmd.Flags().Int("send-retries", 2, "retries per reminder email after the first attempt")
	serveCmd.Flags().Duration("send-timeout", 30*time.Second, "timeout per reminder email send")
	serveCmd.Flags().Int("rate-limit", 30, "confirmation requests allowed per client per window")
	serveCmd.Flags().Duration("rate-window", time.Minute, "rate limiter window")
	serveCmd.Flags().Duration("job-lock-ttl", 10*time.Minute, "distributed job lock TTL")
	serveCmd.Flags().String("otel-endpoint", "", "OTLP HTTP endpoint for tracing (e.g. localhost:4318); empty disables tracing")

	bindFlag("http_port", serveCmd.Flags(), "http-port")
	bindFlag("metrics_addr", serveCmd.Flags(), "metrics-addr")
	bindFlag("redis_addr", serveCmd.Flags(), "redis-addr")
	bindFlag("jwt_secret", serveCmd.Flags(), "jwt-secret")
	bindFlag("base_url", serveCmd.Flags(), "base-url")
	bindFlag("token_ttl", serveCmd.Flags(), "token-ttl")
	bindFlag("scan_cron", serveCmd.Flags(), "scan-cron")
	bindFlag("cleanup_cron", serveCmd.Flags(), "cleanup-cron")
	bindFlag("send_retries", serveCmd.Flags(), "send-retries")
	bindFlag("send_timeout", serveCmd.Flags(), "send-timeout")
	bindFlag("rate_limit", serveCmd.Flags(), "rate-limit")
	bindFlag("rate_window", serveCmd.Flags(), "rate-window")
	bindFlag("job_lock_ttl", serveCmd.Flags(), "job-lock-ttl")
	bindFlag("otel_endpoint", serveCmd.Flags(), "otel-endpoint")
	_ = viper.BindEnv("otel_endpoint", "OTEL_EXPORTER_OTLP_ENDPOINT")
	_ = viper.BindEnv("jwt_secret", "JWT_SECRET")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load(viper.GetViper())
	logger := buildLogger(cfg.LogLevel)

	shutdownTracer, err := telemetry.InitTracer(context.Background(), "maintenance-app", cfg.OTelEndpoint)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer shutdownTracer()

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	pool, err := postgres.NewPool(initCtx, cfg.PostgresDSN)
	cancel()
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	redisClient := redisstore.NewClient(cfg.RedisAddr)
	defer func() { _ = redisClient.Close() }()

	establishments := postgres.NewEstablishmentRepository(pool)
	fiches := postgres.NewFicheRepository(pool)
	contacts := postgres.NewContactRepository(pool)
	users := postgres.NewUserRepository(pool)
	meetings := postgres.NewMeetingRepository(pool)
	history := postgres.NewHistoryRepository(pool)
	tokens := postgres.NewTokenRepository(pool)

	mailer := mail.NewSMTPMailer()
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionLifetime)
	limiter := redisstore.NewRateLimiter(redisClient, cfg.RateLimit, cfg.RateWindow)

	confirmer := reminder.NewConfirmer(tokens, fiches, history,
		reminder.WithConfirmerLogger(logger),
	)
	scanner := reminder.NewScanner(establishments, fiches, contacts, tokens, history, mailer,
		cfg.BaseURL,
		reminder.WithScannerLogger(logger),
		reminder.WithTokenTTL(cfg.TokenTTL),
		reminder.WithSendRetries(cfg.SendRetries),
		reminder.WithSendTimeout(cfg.SendTimeout),
	)
	cleaner := reminder.NewCleaner(tokens, reminder.WithCleanerLogger(logger))

	runCtx, runCancel := context.WithCancel(context.Background())
	defer runCancel()

	// ── scheduled jobs ────────────────────────────────────────────────────────
	instanceID := uuid.New().String()
	lock := redisstore.NewJobLock(redisClient, cfg.JobLockTTL)
	runner := jobs.NewRunner(lock, instanceID, logger)

	if err := runner.Register(runCtx, jobs.Job{
		Name:    "daily-scan",
		Spec:    cfg.ScanCron,
		Timeout: 30 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := scanner.Scan(ctx)
			return err
		},
	}); err != nil {
		return fmt.Errorf("register daily scan: %w", err)
	}
	if err := runner.Register(runCtx, jobs.Job{
		Name:    "token-cleanup",
		Spec:    cfg.CleanupCron,
		Timeout: 5 * time.Minute,
		Run: func(ctx context.Context) error {
			_, err := cleaner.Clean(ctx)
			return err
		},
	}); err != nil {
		return fmt.Errorf("register token cleanup: %w", err)
	}
	runner.Start(runCtx)

	// ── HTTP server ───────────────────────────────────────────────────────────
	server := httpapi.NewServer(
		establishments, fiches, contacts, users, meetings, history, tokens,
		confirmer, issuer, limiter, logger,
	)
	httpSrv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// ── Prometheus metrics ────────────────────────────────────────────────────
	telemetry.StartMetricsServer(runCtx, cfg.MetricsAddr, logger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logger.Info("HTTP server starting", slog.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	<-quit
	logger.Info("shutting down...")
	runCancel()

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutCancel()
	if err := httpSrv.Shutdown(shutCtx); err != nil {
		logger.Error("HTTP shutdown error", slog.String("error", err.Error()))
	}
	logger.Info("stopped")
	return nil
}
