package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
	"github.com/u5732555133-stack/maintenance-app/internal/mail"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
	"github.com/u5732555133-stack/maintenance-app/pkg/retry"
	"github.com/u5732555133-stack/maintenance-app/pkg/telemetry"
)

// ScanReport summarises one daily scan run.
type ScanReport struct {
	Establishments int
	FichesDue      int
	RemindersSent  int
	EmailsSent     int
	Skipped        int
	Failures       int
}

// Scanner walks every establishment once a day, finds fiches whose
// next_due has arrived, and emails their contacts a confirmation link.
//
// After a reminder goes out, the fiche's next_due is advanced one period
// ahead of today. That keeps the fiche out of tomorrow's scan without a
// status check in the query, and doubles as a backstop: if nobody ever
// confirms, the reminder fires again one full period later.
type Scanner struct {
	establishments postgres.EstablishmentRepository
	fiches         postgres.FicheRepository
	contacts       postgres.ContactRepository
	tokens         postgres.TokenRepository
	history        postgres.HistoryRepository
	mailer         mail.Mailer

	baseURL     string
	tokenTTL    time.Duration
	maxRetries  int
	baseDelay   time.Duration
	sendTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// ScannerOption configures a Scanner.
type ScannerOption func(*Scanner)

func WithScannerLogger(l *slog.Logger) ScannerOption    { return func(s *Scanner) { s.logger = l } }
func WithTokenTTL(d time.Duration) ScannerOption        { return func(s *Scanner) { s.tokenTTL = d } }
func WithSendRetries(n int) ScannerOption               { return func(s *Scanner) { s.maxRetries = n } }
func WithSendBaseDelay(d time.Duration) ScannerOption   { return func(s *Scanner) { s.baseDelay = d } }
func WithSendTimeout(d time.Duration) ScannerOption     { return func(s *Scanner) { s.sendTimeout = d } }
func WithScannerClock(now func() time.Time) ScannerOption {
	return func(s *Scanner) { s.now = now }
}

// NewScanner constructs a Scanner. baseURL is the public origin used to
// build confirmation links, e.g. "https://maintenance.example.com".
func NewScanner(
	establishments postgres.EstablishmentRepository,
	fiches postgres.FicheRepository,
	contacts postgres.ContactRepository,
	tokens postgres.TokenRepository,
	history postgres.HistoryRepository,
	mailer mail.Mailer,
	baseURL string,
	opts ...ScannerOption,
) *Scanner {
	s := &Scanner{
		establishments: establishments,
		fiches:         fiches,
		contacts:       contacts,
		tokens:         tokens,
		history:        history,
		mailer:         mailer,
		baseURL:        baseURL,
		tokenTTL:       domain.DefaultTokenTTL,
		maxRetries:     2,
		baseDelay:      time.Second,
		sendTimeout:    30 * time.Second,
		logger:         slog.Default(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan runs one full pass over all establishments. A failure on one
// fiche or one tenant never aborts the rest of the run; failures are
// logged, counted and reported.
func (s *Scanner) Scan(ctx context.Context) (ScanReport, error) {
	ctx, span := otel.Tracer("scanner").Start(ctx, "scanner.scan")
	defer span.End()

	start := s.now().UTC()
	today := domain.Day(start)
	var report ScanReport

	ests, err := s.establishments.List(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list establishments")
		return report, fmt.Errorf("list establishments: %w", err)
	}
	report.Establishments = len(ests)

	for _, est := range ests {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("scan interrupted: %w", err)
		}
		s.scanEstablishment(ctx, est, today, &report)
	}

	telemetry.ScannerDurationSeconds.Observe(time.Since(start).Seconds())
	span.SetAttributes(
		attribute.Int("scan.establishments", report.Establishments),
		attribute.Int("scan.fiches_due", report.FichesDue),
		attribute.Int("scan.reminders_sent", report.RemindersSent),
		attribute.Int("scan.failures", report.Failures),
	)

	s.logger.Info("daily scan finished",
		slog.Time("day", today),
		slog.Int("establishments", report.Establishments),
		slog.Int("fiches_due", report.FichesDue),
		slog.Int("reminders_sent", report.RemindersSent),
		slog.Int("emails_sent", report.EmailsSent),
		slog.Int("skipped", report.Skipped),
		slog.Int("failures", report.Failures),
		slog.Duration("took", time.Since(start)),
	)
	return report, nil
}

func (s *Scanner) scanEstablishment(ctx context.Context, est *domain.Establishment, today time.Time, report *ScanReport) {
	log := s.logger.With(
		slog.String("establishment_id", est.ID),
		slog.String("establishment", est.Name),
	)

	due, err := s.fiches.ListDue(ctx, est.ID, today)
	if err != nil {
		log.Error("list due fiches", slog.String("error", err.Error()))
		report.Failures++
		return
	}
	if len(due) == 0 {
		return
	}
	report.FichesDue += len(due)
	telemetry.ScannerFichesDue.Add(float64(len(due)))

	// A tenant that never finished SMTP setup gets skipped wholesale: its
	// fiches stay due and will be picked up the day the settings land.
	if !est.EmailCfg.Configured {
		log.Warn("email settings not configured, skipping establishment",
			slog.Int("fiches_due", len(due)),
		)
		report.Skipped += len(due)
		telemetry.ScannerRemindersSent.WithLabelValues("skipped_unconfigured").Add(float64(len(due)))
		return
	}

	for _, fiche := range due {
		if err := ctx.Err(); err != nil {
			return
		}
		s.processFiche(ctx, est, fiche, today, report, log)
	}
}

func (s *Scanner) processFiche(ctx context.Context, est *domain.Establishment, fiche *domain.Fiche, today time.Time, report *ScanReport, log *slog.Logger) {
	log = log.With(
		slog.String("fiche_id", fiche.ID),
		slog.String("fiche", fiche.Name),
	)

	contacts, err := s.contacts.ListByIDs(ctx, est.ID, fiche.ContactIDs)
	if err != nil {
		log.Error("resolve contacts", slog.String("error", err.Error()))
		report.Failures++
		telemetry.ScannerRemindersSent.WithLabelValues("error").Inc()
		return
	}
	if len(contacts) == 0 {
		// Nothing to notify. The fiche stays due so tomorrow's scan
		// retries it; the admin sees it overdue in the meantime.
		log.Warn("fiche has no reachable contacts, skipping")
		report.Skipped++
		telemetry.ScannerRemindersSent.WithLabelValues("skipped_no_contacts").Inc()
		return
	}

	value, err := domain.NewTokenValue()
	if err != nil {
		log.Error("generate confirmation token", slog.String("error", err.Error()))
		report.Failures++
		telemetry.ScannerRemindersSent.WithLabelValues("error").Inc()
		return
	}

	now := s.now().UTC()
	token := &domain.ConfirmationToken{
		Token:           value,
		FicheID:         fiche.ID,
		EstablishmentID: est.ID,
		FicheName:       fiche.Name,
		CreatedAt:       now,
		ExpiresAt:       now.Add(s.tokenTTL),
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		log.Error("create confirmation token", slog.String("error", err.Error()))
		report.Failures++
		telemetry.ScannerRemindersSent.WithLabelValues("error").Inc()
		return
	}

	confirmURL := s.baseURL + "/confirm/" + token.Token
	sent, notified := s.sendReminders(ctx, est, fiche, contacts, confirmURL, log)
	report.EmailsSent += sent

	if sent == 0 {
		// Every send failed. Leave next_due untouched so tomorrow's scan
		// retries; the orphan token ages out via the daily cleanup.
		log.Error("all reminder emails failed", slog.Int("contacts", len(contacts)))
		report.Failures++
		telemetry.ScannerRemindersSent.WithLabelValues("failed").Inc()
		return
	}

	// Provisional advance: one period from today, not from the previous
	// due date. Confirmation later overwrites this with the value
	// computed from the actual completion date.
	nextDue := domain.AddMonths(today, fiche.PeriodicityMonths)
	if err := s.fiches.MarkNotified(ctx, fiche.ID, now, nextDue); err != nil {
		log.Error("mark fiche notified", slog.String("error", err.Error()))
		report.Failures++
		telemetry.ScannerRemindersSent.WithLabelValues("error").Inc()
		return
	}

	entry := &domain.HistoryEntry{
		EstablishmentID:  est.ID,
		FicheID:          fiche.ID,
		Type:             domain.HistoryReminderSent,
		FicheName:        fiche.Name,
		NextDue:          nextDue,
		ContactsNotified: notified,
		EmailsSent:       sent,
		RecordedAt:       now,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		// The reminder already went out; a missing audit line is not
		// worth re-notifying over.
		log.Error("append history entry", slog.String("error", err.Error()))
	}

	report.RemindersSent++
	telemetry.ScannerRemindersSent.WithLabelValues("sent").Inc()
	log.Info("reminder sent",
		slog.Int("emails", sent),
		slog.Time("next_due", nextDue),
	)
}

// sendReminders emails every contact of the fiche. Each send gets its
// own timeout and quadratic-backoff retries; one bad mailbox does not
// block the others. Returns the number of successful sends and the IDs
// of the contacts actually reached.
func (s *Scanner) sendReminders(ctx context.Context, est *domain.Establishment, fiche *domain.Fiche, contacts []*domain.Contact, confirmURL string, log *slog.Logger) (int, []string) {
	var sent int
	var notified []string

	subject := mail.ReminderSubject(fiche.Name)
	for _, c := range contacts {
		if c.Email == "" {
			log.Warn("contact has no email address", slog.String("contact_id", c.ID))
			continue
		}

		body, err := mail.RenderReminder(mail.ReminderData{
			ContactName:       c.FirstName + " " + c.LastName,
			FicheName:         fiche.Name,
			PDFURL:            fiche.PDFURL,
			OwnerName:         fiche.OwnerName,
			OwnerEmail:        fiche.OwnerEmail,
			DeputyName:        fiche.DeputyName,
			DeputyEmail:       fiche.DeputyEmail,
			ConfirmURL:        confirmURL,
			EstablishmentName: est.Name,
		})
		if err != nil {
			log.Error("render reminder email", slog.String("error", err.Error()))
			telemetry.ScannerEmailsSent.WithLabelValues("failed").Inc()
			continue
		}

		sendErr := retry.Do(ctx, retry.Config{
			MaxAttempts: s.maxRetries + 1,
			BaseDelay:   s.baseDelay,
			OnRetry: func(attempt int, retryErr error) {
				log.Warn("email send failed, retrying",
					slog.String("contact_id", c.ID),
					slog.Int("attempt", attempt),
					slog.String("error", retryErr.Error()),
				)
			},
		}, func() error {
			sendCtx, cancel := context.WithTimeout(ctx, s.sendTimeout)
			defer cancel()
			return s.mailer.Send(sendCtx, est.EmailCfg, c.Email, c.FirstName+" "+c.LastName, subject, body)
		})
		if sendErr != nil {
			log.Error("email send exhausted retries",
				slog.String("contact_id", c.ID),
				slog.String("error", sendErr.Error()),
			)
			telemetry.ScannerEmailsSent.WithLabelValues("failed").Inc()
			continue
		}

		sent++
		notified = append(notified, c.ID)
		telemetry.ScannerEmailsSent.WithLabelValues("sent").Inc()
	}
	return sent, notified
}
