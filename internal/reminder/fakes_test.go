package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
	"github.com/u5732555133-stack/maintenance-app/internal/mail"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
)

// ── fakes ────────────────────────────────────────────────────────────────────

type fakeEstablishments struct {
	items []*domain.Establishment
}

func (f *fakeEstablishments) Create(_ context.Context, e *domain.Establishment) error {
	f.items = append(f.items, e)
	return nil
}
func (f *fakeEstablishments) Update(_ context.Context, _ *domain.Establishment) error { return nil }
func (f *fakeEstablishments) Delete(_ context.Context, _ string) error                { return nil }
func (f *fakeEstablishments) GetByID(_ context.Context, id string) (*domain.Establishment, error) {
	for _, e := range f.items {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, &domain.EstablishmentNotFoundError{ID: id}
}
func (f *fakeEstablishments) List(_ context.Context) ([]*domain.Establishment, error) {
	return f.items, nil
}

type fakeFiches struct {
	mu    sync.Mutex
	items map[string]*domain.Fiche
}

func newFakeFiches(fiches ...*domain.Fiche) *fakeFiches {
	f := &fakeFiches{items: make(map[string]*domain.Fiche)}
	for _, fi := range fiches {
		f.items[fi.ID] = fi
	}
	return f
}

func (f *fakeFiches) Create(_ context.Context, fi *domain.Fiche) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[fi.ID] = fi
	return nil
}
func (f *fakeFiches) Update(_ context.Context, fi *domain.Fiche) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[fi.ID] = fi
	return nil
}
func (f *fakeFiches) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)
	return nil
}
func (f *fakeFiches) GetByID(_ context.Context, id string) (*domain.Fiche, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fi, ok := f.items[id]
	if !ok {
		return nil, &domain.FicheNotFoundError{FicheID: id}
	}
	cp := *fi
	return &cp, nil
}
func (f *fakeFiches) ListByEstablishment(_ context.Context, estID string) ([]*domain.Fiche, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Fiche
	for _, fi := range f.items {
		if fi.EstablishmentID == estID {
			out = append(out, fi)
		}
	}
	return out, nil
}
func (f *fakeFiches) ListDue(_ context.Context, estID string, asOf time.Time) ([]*domain.Fiche, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Fiche
	for _, fi := range f.items {
		if fi.EstablishmentID == estID && !fi.NextDue.After(asOf) {
			out = append(out, fi)
		}
	}
	return out, nil
}
func (f *fakeFiches) MarkNotified(_ context.Context, id string, sentAt, nextDue time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fi, ok := f.items[id]
	if !ok {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	fi.Status = domain.StatusNotified
	fi.LastSentAt = &sentAt
	fi.NextDue = nextDue
	return nil
}
func (f *fakeFiches) ApplyConfirmation(_ context.Context, id string, completedAt, nextDue time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	fi, ok := f.items[id]
	if !ok {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	fi.Status = domain.StatusCompleted
	fi.LastCompleted = &completedAt
	fi.NextDue = nextDue
	return nil
}

type fakeContacts struct {
	items map[string]*domain.Contact
}

func newFakeContacts(contacts ...*domain.Contact) *fakeContacts {
	f := &fakeContacts{items: make(map[string]*domain.Contact)}
	for _, c := range contacts {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeContacts) Create(_ context.Context, c *domain.Contact) error {
	f.items[c.ID] = c
	return nil
}
func (f *fakeContacts) Update(_ context.Context, _ *domain.Contact) error { return nil }
func (f *fakeContacts) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}
func (f *fakeContacts) GetByID(_ context.Context, id string) (*domain.Contact, error) {
	c, ok := f.items[id]
	if !ok {
		return nil, &domain.ContactNotFoundError{ContactID: id}
	}
	return c, nil
}
func (f *fakeContacts) ListByEstablishment(_ context.Context, estID string) ([]*domain.Contact, error) {
	var out []*domain.Contact
	for _, c := range f.items {
		if c.EstablishmentID == estID {
			out = append(out, c)
		}
	}
	return out, nil
}
func (f *fakeContacts) ListByIDs(_ context.Context, estID string, ids []string) ([]*domain.Contact, error) {
	var out []*domain.Contact
	for _, id := range ids {
		if c, ok := f.items[id]; ok && c.EstablishmentID == estID {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeTokens struct {
	mu    sync.Mutex
	items map[string]*domain.ConfirmationToken
}

func newFakeTokens(tokens ...*domain.ConfirmationToken) *fakeTokens {
	f := &fakeTokens{items: make(map[string]*domain.ConfirmationToken)}
	for _, t := range tokens {
		f.items[t.Token] = t
	}
	return f
}

func (f *fakeTokens) Create(_ context.Context, t *domain.ConfirmationToken) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[t.Token] = t
	return nil
}
func (f *fakeTokens) Get(_ context.Context, token string) (*domain.ConfirmationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[token]
	if !ok {
		return nil, &domain.TokenNotFoundError{Token: token}
	}
	return t, nil
}

// Consume mirrors the conditional DELETE ... RETURNING: under the lock,
// only one caller finds the entry and removes it.
func (f *fakeTokens) Consume(_ context.Context, token string) (*domain.ConfirmationToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.items[token]
	if !ok {
		return nil, &domain.TokenNotFoundError{Token: token}
	}
	delete(f.items, token)
	return t, nil
}
func (f *fakeTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for k, t := range f.items {
		if t.ExpiresAt.Before(now) {
			delete(f.items, k)
			n++
		}
	}
	return n, nil
}

func (f *fakeTokens) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

type fakeHistory struct {
	mu      sync.Mutex
	entries []*domain.HistoryEntry
}

func (f *fakeHistory) Append(_ context.Context, e *domain.HistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}
func (f *fakeHistory) ListByEstablishment(_ context.Context, _ string, _ int) ([]*domain.HistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entries, nil
}

type sentMail struct {
	to      string
	subject string
	body    string
}

type fakeMailer struct {
	mu       sync.Mutex
	sent     []sentMail
	failFor  map[string]error // recipient email → permanent error
	failOnce map[string]error // recipient email → error on first attempt only
}

func newFakeMailer() *fakeMailer {
	return &fakeMailer{
		failFor:  make(map[string]error),
		failOnce: make(map[string]error),
	}
}

func (m *fakeMailer) Send(_ context.Context, _ domain.EmailSettings, toEmail, _, subject, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failFor[toEmail]; ok {
		return err
	}
	if err, ok := m.failOnce[toEmail]; ok {
		delete(m.failOnce, toEmail)
		return err
	}
	m.sent = append(m.sent, sentMail{to: toEmail, subject: subject, body: body})
	return nil
}

// Compile-time interface checks.
var (
	_ postgres.EstablishmentRepository = (*fakeEstablishments)(nil)
	_ postgres.FicheRepository         = (*fakeFiches)(nil)
	_ postgres.ContactRepository       = (*fakeContacts)(nil)
	_ postgres.TokenRepository         = (*fakeTokens)(nil)
	_ postgres.HistoryRepository       = (*fakeHistory)(nil)
	_ mail.Mailer                      = (*fakeMailer)(nil)
)
