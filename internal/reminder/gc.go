package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
	"github.com/u5732555133-stack/maintenance-app/pkg/telemetry"
)

// Cleaner removes expired confirmation tokens. It is the only code path
// that deletes expired rows; the confirmation handler leaves them in
// place so it can report "expired" instead of "not found".
type Cleaner struct {
	tokens postgres.TokenRepository
	logger *slog.Logger
	now    func() time.Time
}

// CleanerOption configures a Cleaner.
type CleanerOption func(*Cleaner)

func WithCleanerLogger(l *slog.Logger) CleanerOption { return func(c *Cleaner) { c.logger = l } }
func WithCleanerClock(now func() time.Time) CleanerOption {
	return func(c *Cleaner) { c.now = now }
}

// NewCleaner constructs a Cleaner.
func NewCleaner(tokens postgres.TokenRepository, opts ...CleanerOption) *Cleaner {
	c := &Cleaner{
		tokens: tokens,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clean deletes every token past its expiry and returns how many were
// removed. Safe to run repeatedly; a second pass removes nothing.
func (c *Cleaner) Clean(ctx context.Context) (int64, error) {
	now := c.now().UTC()
	removed, err := c.tokens.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("clean expired tokens: %w", err)
	}
	if removed > 0 {
		telemetry.TokensCleanedTotal.Add(float64(removed))
	}
	c.logger.Info("expired token cleanup finished", slog.Int64("removed", removed))
	return removed, nil
}
