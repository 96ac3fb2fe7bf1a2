package reminder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
	"github.com/u5732555133-stack/maintenance-app/pkg/telemetry"
)

// Receipt is what a successful confirmation returns to the caller.
type Receipt struct {
	FicheID        string    `json:"fiche_id"`
	FicheName      string    `json:"fiche_name"`
	Establishment  string    `json:"establishment_id"`
	CompletionDate time.Time `json:"completion_date"`
	NextDue        time.Time `json:"next_due"`
}

// Confirmer consumes a confirmation token and reschedules its fiche.
//
// Exclusivity lives in the token store: Consume is a conditional delete,
// so exactly one of two racing confirmations gets the token and the
// other fails with TokenNotFoundError. Expired tokens are rejected
// without being consumed; the daily cleanup removes them.
type Confirmer struct {
	tokens  postgres.TokenRepository
	fiches  postgres.FicheRepository
	history postgres.HistoryRepository
	logger  *slog.Logger
	now     func() time.Time
}

// ConfirmerOption configures a Confirmer.
type ConfirmerOption func(*Confirmer)

func WithConfirmerLogger(l *slog.Logger) ConfirmerOption { return func(c *Confirmer) { c.logger = l } }
func WithConfirmerClock(now func() time.Time) ConfirmerOption {
	return func(c *Confirmer) { c.now = now }
}

// NewConfirmer constructs a Confirmer.
func NewConfirmer(
	tokens postgres.TokenRepository,
	fiches postgres.FicheRepository,
	history postgres.HistoryRepository,
	opts ...ConfirmerOption,
) *Confirmer {
	c := &Confirmer{
		tokens:  tokens,
		fiches:  fiches,
		history: history,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm records that the maintenance behind tokenValue was performed
// on completionDate. On success the fiche is COMPLETED, its next_due is
// one period after the completion date, and the token is gone.
func (c *Confirmer) Confirm(ctx context.Context, tokenValue string, completionDate time.Time, comment string) (*Receipt, error) {
	ctx, span := otel.Tracer("confirm").Start(ctx, "confirm.token")
	defer span.End()

	now := c.now().UTC()
	today := domain.Day(now)

	if tokenValue == "" {
		telemetry.ConfirmationsTotal.WithLabelValues("invalid").Inc()
		return nil, &domain.ValidationError{Field: "token", Reason: "is required"}
	}
	if completionDate.IsZero() {
		telemetry.ConfirmationsTotal.WithLabelValues("invalid").Inc()
		return nil, &domain.ValidationError{Field: "completion_date", Reason: "is required"}
	}
	completed := domain.Day(completionDate)
	if completed.After(today) {
		telemetry.ConfirmationsTotal.WithLabelValues("invalid").Inc()
		return nil, &domain.ValidationError{Field: "completion_date", Reason: "cannot be in the future"}
	}

	// Peek before consuming: an expired token must stay in place so the
	// caller can be told it expired rather than "not found", and so the
	// cleanup job remains the only thing that deletes expired rows.
	tok, err := c.tokens.Get(ctx, tokenValue)
	if err != nil {
		c.countTokenError(err)
		return nil, err
	}
	if tok.Expired(now) {
		telemetry.ConfirmationsTotal.WithLabelValues("expired").Inc()
		return nil, &domain.TokenExpiredError{Token: tokenValue, ExpiredAt: tok.ExpiresAt}
	}

	// Single-winner point. A concurrent confirmation that got here first
	// already deleted the row; we surface that as not-found.
	tok, err = c.tokens.Consume(ctx, tokenValue)
	if err != nil {
		c.countTokenError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("fiche.id", tok.FicheID),
		attribute.String("establishment.id", tok.EstablishmentID),
	)

	fiche, err := c.fiches.GetByID(ctx, tok.FicheID)
	if err != nil {
		// Fiche deleted after the reminder went out. The token is spent
		// either way; there is nothing left to reschedule.
		telemetry.ConfirmationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("confirm token %s: %w", tokenValue, err)
	}

	nextDue := domain.AddMonths(completed, fiche.PeriodicityMonths)
	if err := c.fiches.ApplyConfirmation(ctx, fiche.ID, completed, nextDue); err != nil {
		telemetry.ConfirmationsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("confirm token %s: %w", tokenValue, err)
	}

	entry := &domain.HistoryEntry{
		EstablishmentID: tok.EstablishmentID,
		FicheID:         fiche.ID,
		Type:            domain.HistoryConfirmation,
		FicheName:       fiche.Name,
		CompletionDate:  &completed,
		NextDue:         nextDue,
		Comment:         comment,
		RecordedAt:      now,
	}
	if err := c.history.Append(ctx, entry); err != nil {
		c.logger.Error("append confirmation history",
			slog.String("fiche_id", fiche.ID),
			slog.String("error", err.Error()),
		)
	}

	telemetry.ConfirmationsTotal.WithLabelValues("ok").Inc()
	c.logger.Info("maintenance confirmed",
		slog.String("fiche_id", fiche.ID),
		slog.String("fiche", fiche.Name),
		slog.String("establishment_id", tok.EstablishmentID),
		slog.Time("completed", completed),
		slog.Time("next_due", nextDue),
	)

	return &Receipt{
		FicheID:        fiche.ID,
		FicheName:      fiche.Name,
		Establishment:  tok.EstablishmentID,
		CompletionDate: completed,
		NextDue:        nextDue,
	}, nil
}

func (c *Confirmer) countTokenError(err error) {
	var notFound *domain.TokenNotFoundError
	if errors.As(err, &notFound) {
		telemetry.ConfirmationsTotal.WithLabelValues("not_found").Inc()
		return
	}
	telemetry.ConfirmationsTotal.WithLabelValues("error").Inc()
}
