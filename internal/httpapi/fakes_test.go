package httpapi

import (
	"context"
	"time"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
	"github.com/u5732555133-stack/maintenance-app/internal/postgres"
	redisstore "github.com/u5732555133-stack/maintenance-app/internal/redis"
)

// Map-backed fakes standing in for the Postgres repositories.

type fakeEstablishments struct{ items map[string]*domain.Establishment }

func newFakeEstablishments(ests ...*domain.Establishment) *fakeEstablishments {
	f := &fakeEstablishments{items: make(map[string]*domain.Establishment)}
	for _, e := range ests {
		f.items[e.ID] = e
	}
	return f
}

func (f *fakeEstablishments) Create(_ context.Context, e *domain.Establishment) error {
	if e.ID == "" {
		e.ID = "est-gen"
	}
	f.items[e.ID] = e
	return nil
}
func (f *fakeEstablishments) Update(_ context.Context, e *domain.Establishment) error {
	if _, ok := f.items[e.ID]; !ok {
		return &domain.EstablishmentNotFoundError{ID: e.ID}
	}
	f.items[e.ID] = e
	return nil
}
func (f *fakeEstablishments) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return &domain.EstablishmentNotFoundError{ID: id}
	}
	delete(f.items, id)
	return nil
}
func (f *fakeEstablishments) GetByID(_ context.Context, id string) (*domain.Establishment, error) {
	e, ok := f.items[id]
	if !ok {
		return nil, &domain.EstablishmentNotFoundError{ID: id}
	}
	return e, nil
}
func (f *fakeEstablishments) List(_ context.Context) ([]*domain.Establishment, error) {
	var out []*domain.Establishment
	for _, e := range f.items {
		out = append(out, e)
	}
	return out, nil
}

type fakeFiches struct{ items map[string]*domain.Fiche }

func newFakeFiches(fiches ...*domain.Fiche) *fakeFiches {
	f := &fakeFiches{items: make(map[string]*domain.Fiche)}
	for _, fi := range fiches {
		f.items[fi.ID] = fi
	}
	return f
}

func (f *fakeFiches) Create(_ context.Context, fi *domain.Fiche) error {
	if fi.ID == "" {
		fi.ID = "fiche-gen"
	}
	f.items[fi.ID] = fi
	return nil
}
func (f *fakeFiches) Update(_ context.Context, fi *domain.Fiche) error {
	if _, ok := f.items[fi.ID]; !ok {
		return &domain.FicheNotFoundError{FicheID: fi.ID}
	}
	f.items[fi.ID] = fi
	return nil
}
func (f *fakeFiches) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	delete(f.items, id)
	return nil
}
func (f *fakeFiches) GetByID(_ context.Context, id string) (*domain.Fiche, error) {
	fi, ok := f.items[id]
	if !ok {
		return nil, &domain.FicheNotFoundError{FicheID: id}
	}
	cp := *fi
	return &cp, nil
}
func (f *fakeFiches) ListByEstablishment(_ context.Context, estID string) ([]*domain.Fiche, error) {
	var out []*domain.Fiche
	for _, fi := range f.items {
		if fi.EstablishmentID == estID {
			out = append(out, fi)
		}
	}
	return out, nil
}
func (f *fakeFiches) ListDue(_ context.Context, estID string, asOf time.Time) ([]*domain.Fiche, error) {
	var out []*domain.Fiche
	for _, fi := range f.items {
		if fi.EstablishmentID == estID && !fi.NextDue.After(asOf) {
			out = append(out, fi)
		}
	}
	return out, nil
}
func (f *fakeFiches) MarkNotified(_ context.Context, id string, sentAt, nextDue time.Time) error {
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
	fi, ok := f.items[id]
	if !ok {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	fi.Status = domain.StatusCompleted
	fi.LastCompleted = &completedAt
	fi.NextDue = nextDue
	return nil
}

type fakeContacts struct{ items map[string]*domain.Contact }

func newFakeContacts(contacts ...*domain.Contact) *fakeContacts {
	f := &fakeContacts{items: make(map[string]*domain.Contact)}
	for _, c := range contacts {
		f.items[c.ID] = c
	}
	return f
}

func (f *fakeContacts) Create(_ context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = "contact-gen"
	}
	f.items[c.ID] = c
	return nil
}
func (f *fakeContacts) Update(_ context.Context, c *domain.Contact) error {
	f.items[c.ID] = c
	return nil
}
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

type fakeUsers struct{ items map[string]*domain.User }

func newFakeUsers(users ...*domain.User) *fakeUsers {
	f := &fakeUsers{items: make(map[string]*domain.User)}
	for _, u := range users {
		f.items[u.ID] = u
	}
	return f
}

func (f *fakeUsers) Create(_ context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = "user-gen"
	}
	f.items[u.ID] = u
	return nil
}
func (f *fakeUsers) Delete(_ context.Context, id string) error {
	if _, ok := f.items[id]; !ok {
		return &domain.UserNotFoundError{Key: id}
	}
	delete(f.items, id)
	return nil
}
func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range f.items {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, &domain.UserNotFoundError{Key: email}
}
func (f *fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := f.items[id]
	if !ok {
		return nil, &domain.UserNotFoundError{Key: id}
	}
	return u, nil
}
func (f *fakeUsers) ListByEstablishment(_ context.Context, estID string) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.items {
		if u.EstablishmentID != nil && *u.EstablishmentID == estID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeMeetings struct{ items map[string]*domain.Meeting }

func newFakeMeetings(meetings ...*domain.Meeting) *fakeMeetings {
	f := &fakeMeetings{items: make(map[string]*domain.Meeting)}
	for _, m := range meetings {
		f.items[m.ID] = m
	}
	return f
}

func (f *fakeMeetings) Create(_ context.Context, m *domain.Meeting) error {
	if m.ID == "" {
		m.ID = "meeting-gen"
	}
	f.items[m.ID] = m
	return nil
}
func (f *fakeMeetings) Update(_ context.Context, m *domain.Meeting) error {
	f.items[m.ID] = m
	return nil
}
func (f *fakeMeetings) Delete(_ context.Context, id string) error {
	delete(f.items, id)
	return nil
}
func (f *fakeMeetings) GetByID(_ context.Context, id string) (*domain.Meeting, error) {
	m, ok := f.items[id]
	if !ok {
		return nil, &domain.MeetingNotFoundError{MeetingID: id}
	}
	return m, nil
}
func (f *fakeMeetings) ListByEstablishment(_ context.Context, estID string) ([]*domain.Meeting, error) {
	var out []*domain.Meeting
	for _, m := range f.items {
		if m.EstablishmentID == estID {
			out = append(out, m)
		}
	}
	return out, nil
}

type fakeTokens struct{ items map[string]*domain.ConfirmationToken }

func newFakeTokens(tokens ...*domain.ConfirmationToken) *fakeTokens {
	f := &fakeTokens{items: make(map[string]*domain.ConfirmationToken)}
	for _, t := range tokens {
		f.items[t.Token] = t
	}
	return f
}

func (f *fakeTokens) Create(_ context.Context, t *domain.ConfirmationToken) error {
	f.items[t.Token] = t
	return nil
}
func (f *fakeTokens) Get(_ context.Context, token string) (*domain.ConfirmationToken, error) {
	t, ok := f.items[token]
	if !ok {
		return nil, &domain.TokenNotFoundError{Token: token}
	}
	return t, nil
}
func (f *fakeTokens) Consume(_ context.Context, token string) (*domain.ConfirmationToken, error) {
	t, ok := f.items[token]
	if !ok {
		return nil, &domain.TokenNotFoundError{Token: token}
	}
	delete(f.items, token)
	return t, nil
}
func (f *fakeTokens) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, t := range f.items {
		if t.ExpiresAt.Before(now) {
			delete(f.items, k)
			n++
		}
	}
	return n, nil
}

type fakeHistory struct{ entries []*domain.HistoryEntry }

func (f *fakeHistory) Append(_ context.Context, e *domain.HistoryEntry) error {
	f.entries = append(f.entries, e)
	return nil
}
func (f *fakeHistory) ListByEstablishment(_ context.Context, _ string, _ int) ([]*domain.HistoryEntry, error) {
	return f.entries, nil
}

// denyLimiter rejects everything, for exercising the 429 path.
type denyLimiter struct{}

func (denyLimiter) Allow(_ context.Context, _ string) (bool, error) { return false, nil }
func (denyLimiter) Limit() int                                      { return 0 }

var (
	_ postgres.EstablishmentRepository = (*fakeEstablishments)(nil)
	_ postgres.FicheRepository         = (*fakeFiches)(nil)
	_ postgres.ContactRepository       = (*fakeContacts)(nil)
	_ postgres.UserRepository          = (*fakeUsers)(nil)
	_ postgres.MeetingRepository       = (*fakeMeetings)(nil)
	_ postgres.TokenRepository         = (*fakeTokens)(nil)
	_ postgres.HistoryRepository       = (*fakeHistory)(nil)
	_ redisstore.RateLimiter           = denyLimiter{}
)
