package reminder

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

var scanDay = time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return time.Date(2025, time.March, 10, 8, 0, 0, 0, time.UTC)
}

func testEstablishment(configured bool) *domain.Establishment {
	return &domain.Establishment{
		ID:   "est-1",
		Name: "Lycée Victor Hugo",
		EmailCfg: domain.EmailSettings{
			Configured: configured,
			FromName:   "Maintenance",
			FromEmail:  "noreply@example.com",
			SMTPHost:   "localhost",
			SMTPPort:   1025,
		},
	}
}

func testContact(id, email string) *domain.Contact {
	return &domain.Contact{
		ID:              id,
		EstablishmentID: "est-1",
		FirstName:       "Marie",
		LastName:        "Dupont",
		Email:           email,
	}
}

func dueFiche(id string, contactIDs ...string) *domain.Fiche {
	return &domain.Fiche{
		ID:                id,
		EstablishmentID:   "est-1",
		Name:              "Vérification extincteurs",
		PeriodicityMonths: 6,
		NextDue:           scanDay,
		ContactIDs:        contactIDs,
		Status:            domain.StatusPending,
	}
}

func newTestScanner(ests *fakeEstablishments, fiches *fakeFiches, contacts *fakeContacts, tokens *fakeTokens, history *fakeHistory, mailer *fakeMailer) *Scanner {
	return NewScanner(ests, fiches, contacts, tokens, history, mailer,
		"https://maintenance.example.com",
		WithScannerLogger(slog.Default()),
		WithScannerClock(fixedClock),
		WithSendRetries(1),
		WithSendBaseDelay(time.Millisecond),
	)
}

func TestScanner_SendsReminderAndAdvances(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1", "c-2"))
	contacts := newFakeContacts(
		testContact("c-1", "marie@example.com"),
		testContact("c-2", "paul@example.com"),
	)
	tokens := newFakeTokens()
	history := &fakeHistory{}
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, contacts, tokens, history, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.FichesDue)
	assert.Equal(t, 1, report.RemindersSent)
	assert.Equal(t, 2, report.EmailsSent)
	assert.Zero(t, report.Failures)

	f, err := fiches.GetByID(context.Background(), "fiche-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotified, f.Status)
	assert.Equal(t, domain.AddMonths(scanDay, 6), f.NextDue, "next_due advances one period from today")
	require.NotNil(t, f.LastSentAt)

	assert.Equal(t, 1, tokens.len(), "one token per notified fiche, shared by its contacts")

	require.Len(t, history.entries, 1)
	entry := history.entries[0]
	assert.Equal(t, domain.HistoryReminderSent, entry.Type)
	assert.ElementsMatch(t, []string{"c-1", "c-2"}, entry.ContactsNotified)
	assert.Equal(t, 2, entry.EmailsSent)

	require.Len(t, mailer.sent, 2)
	assert.Contains(t, mailer.sent[0].body, "/confirm/", "email body carries the confirmation link")
	assert.Contains(t, mailer.sent[0].subject, "Vérification extincteurs")
}

func TestScanner_FicheNotYetDueIgnored(t *testing.T) {
	future := dueFiche("fiche-1", "c-1")
	future.NextDue = scanDay.AddDate(0, 0, 1)

	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(future)
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, newFakeContacts(testContact("c-1", "m@example.com")), newFakeTokens(), &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Zero(t, report.FichesDue)
	assert.Empty(t, mailer.sent)
}

func TestScanner_OverdueFicheStillPicked(t *testing.T) {
	overdue := dueFiche("fiche-1", "c-1")
	overdue.NextDue = scanDay.AddDate(0, -2, 0) // two months late

	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(overdue)
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, newFakeContacts(testContact("c-1", "m@example.com")), newFakeTokens(), &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.RemindersSent)
	f, _ := fiches.GetByID(context.Background(), "fiche-1")
	assert.Equal(t, domain.AddMonths(scanDay, 6), f.NextDue, "advance is anchored on today, not the missed due date")
}

func TestScanner_SkipsUnconfiguredEstablishment(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(false)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1"))
	tokens := newFakeTokens()
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, newFakeContacts(testContact("c-1", "m@example.com")), tokens, &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, mailer.sent)
	assert.Zero(t, tokens.len())

	f, _ := fiches.GetByID(context.Background(), "fiche-1")
	assert.Equal(t, domain.StatusPending, f.Status, "fiche stays due until settings are configured")
	assert.Equal(t, scanDay, f.NextDue)
}

func TestScanner_SkipsFicheWithoutContacts(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1")) // no contact refs
	tokens := newFakeTokens()
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, newFakeContacts(), tokens, &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, mailer.sent)
	assert.Zero(t, tokens.len(), "no token is minted when there is nobody to notify")

	f, _ := fiches.GetByID(context.Background(), "fiche-1")
	assert.Equal(t, domain.StatusPending, f.Status)
}

func TestScanner_DanglingContactRefsTreatedAsEmpty(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "gone-1", "gone-2"))
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, newFakeContacts(), newFakeTokens(), &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Skipped)
	assert.Empty(t, mailer.sent)
}

func TestScanner_AllSendsFail_FicheStaysDue(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1"))
	tokens := newFakeTokens()
	mailer := newFakeMailer()
	mailer.failFor["m@example.com"] = errors.New("smtp refused")

	s := newTestScanner(ests, fiches, newFakeContacts(testContact("c-1", "m@example.com")), tokens, &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Failures)
	assert.Zero(t, report.RemindersSent)

	f, _ := fiches.GetByID(context.Background(), "fiche-1")
	assert.Equal(t, domain.StatusPending, f.Status, "no advance when nobody was reached")
	assert.Equal(t, scanDay, f.NextDue)
	assert.Equal(t, 1, tokens.len(), "orphan token left for the daily cleanup")
}

func TestScanner_PartialSendStillAdvances(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1", "c-2"))
	contacts := newFakeContacts(
		testContact("c-1", "good@example.com"),
		testContact("c-2", "bad@example.com"),
	)
	history := &fakeHistory{}
	mailer := newFakeMailer()
	mailer.failFor["bad@example.com"] = errors.New("mailbox unavailable")

	s := newTestScanner(ests, fiches, contacts, newFakeTokens(), history, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.RemindersSent)
	assert.Equal(t, 1, report.EmailsSent)

	f, _ := fiches.GetByID(context.Background(), "fiche-1")
	assert.Equal(t, domain.StatusNotified, f.Status, "one delivered email is enough to advance")

	require.Len(t, history.entries, 1)
	assert.Equal(t, []string{"c-1"}, history.entries[0].ContactsNotified, "history records only contacts actually reached")
}

func TestScanner_RetriesTransientSendFailure(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1"))
	mailer := newFakeMailer()
	mailer.failOnce["m@example.com"] = errors.New("transient")

	s := newTestScanner(ests, fiches, newFakeContacts(testContact("c-1", "m@example.com")), newFakeTokens(), &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.EmailsSent, "send succeeds on the retry")
	assert.Zero(t, report.Failures)
}

func TestScanner_ContactWithoutEmailSkipped(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1", "c-2"))
	contacts := newFakeContacts(
		testContact("c-1", ""),
		testContact("c-2", "ok@example.com"),
	)
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, contacts, newFakeTokens(), &fakeHistory{}, mailer)
	report, err := s.Scan(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.EmailsSent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ok@example.com", mailer.sent[0].to)
}

func TestScanner_NotifiedFicheNotRescanned(t *testing.T) {
	ests := &fakeEstablishments{items: []*domain.Establishment{testEstablishment(true)}}
	fiches := newFakeFiches(dueFiche("fiche-1", "c-1"))
	contacts := newFakeContacts(testContact("c-1", "m@example.com"))
	mailer := newFakeMailer()

	s := newTestScanner(ests, fiches, contacts, newFakeTokens(), &fakeHistory{}, mailer)

	_, err := s.Scan(context.Background())
	require.NoError(t, err)
	require.Len(t, mailer.sent, 1)

	// Second scan on the same day: next_due was advanced, nothing is due.
	report, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.FichesDue)
	assert.Len(t, mailer.sent, 1, "no duplicate reminder")
}
