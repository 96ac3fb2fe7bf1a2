package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ─── HTTP API ────────────────────────────────────────────────────────────────

	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total HTTP requests served, labelled by route and status class.",
	}, []string{"route", "status"})

	APIRateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "api",
		Name:      "rate_limited_total",
		Help:      "Total confirmation requests rejected by the rate limiter.",
	})

	// ─── Reminder scanner ────────────────────────────────────────────────────────

	ScannerFichesDue = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "scanner",
		Name:      "fiches_due_total",
		Help:      "Total fiches found due during daily scans.",
	})

	ScannerRemindersSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "scanner",
		Name:      "reminders_total",
		Help:      "Fiches processed by the scanner, labelled by outcome.",
	}, []string{"result"})

	ScannerEmailsSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "scanner",
		Name:      "emails_total",
		Help:      "Individual reminder emails, labelled by outcome.",
	}, []string{"result"})

	ScannerDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "maintenance",
		Subsystem: "scanner",
		Name:      "scan_duration_seconds",
		Help:      "Wall-clock duration of a full daily scan.",
		Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	})

	// ─── Confirmation ────────────────────────────────────────────────────────────

	ConfirmationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "confirm",
		Name:      "confirmations_total",
		Help:      "Confirmation attempts, labelled by result (ok, not_found, expired, invalid, error).",
	}, []string{"result"})

	// ─── Token cleanup ───────────────────────────────────────────────────────────

	TokensCleanedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "maintenance",
		Subsystem: "cleanup",
		Name:      "tokens_removed_total",
		Help:      "Total expired confirmation tokens removed by the daily cleanup.",
	})
)
