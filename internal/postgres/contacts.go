package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// ContactRepository abstracts database access for contacts.
type ContactRepository interface {
	Create(ctx context.Context, c *domain.Contact) error
	Update(ctx context.Context, c *domain.Contact) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Contact, error)
	ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.Contact, error)
	// ListByIDs resolves a fiche's contact references. IDs that no longer
	// exist are silently omitted; the caller decides what an empty result means.
	ListByIDs(ctx context.Context, establishmentID string, ids []string) ([]*domain.Contact, error)
}

type contactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository wraps a pgxpool with the ContactRepository interface.
func NewContactRepository(pool *pgxpool.Pool) ContactRepository {
	return &contactRepository{pool: pool}
}

const contactColumns = `
	id, establishment_id, last_name, first_name, role, email, phone, mobile, notes, created_at, updated_at`

func (r *contactRepository) Create(ctx context.Context, c *domain.Contact) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO contacts (`+contactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		c.ID, c.EstablishmentID, c.LastName, c.FirstName, c.Role,
		c.Email, c.Phone, c.Mobile, c.Notes, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create contact %s: %w", c.ID, err)
	}
	return nil
}

func (r *contactRepository) Update(ctx context.Context, c *domain.Contact) error {
	c.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET last_name = $1, first_name = $2, role = $3, email = $4,
		    phone = $5, mobile = $6, notes = $7, updated_at = $8
		WHERE id = $9
	`,
		c.LastName, c.FirstName, c.Role, c.Email,
		c.Phone, c.Mobile, c.Notes, c.UpdatedAt, c.ID,
	)
	if err != nil {
		return fmt.Errorf("update contact %s: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ContactNotFoundError{ContactID: c.ID}
	}
	return nil
}

func (r *contactRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete contact %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.ContactNotFoundError{ContactID: id}
	}
	return nil
}

func (r *contactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id)
	return scanContact(row, id)
}

func (r *contactRepository) ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.Contact, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE establishment_id = $1
		ORDER BY last_name, first_name
	`, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list contacts for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

func (r *contactRepository) ListByIDs(ctx context.Context, establishmentID string, ids []string) ([]*domain.Contact, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE establishment_id = $1 AND id = ANY($2)
		ORDER BY last_name, first_name
	`, establishmentID, ids)
	if err != nil {
		return nil, fmt.Errorf("list contacts by ids for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()
	return collectContacts(rows)
}

func collectContacts(rows pgx.Rows) ([]*domain.Contact, error) {
	var out []*domain.Contact
	for rows.Next() {
		c, err := scanContact(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanContact(row interface {
	Scan(...any) error
}, id string) (*domain.Contact, error) {
	var c domain.Contact
	err := row.Scan(
		&c.ID, &c.EstablishmentID, &c.LastName, &c.FirstName, &c.Role,
		&c.Email, &c.Phone, &c.Mobile, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.ContactNotFoundError{ContactID: id}
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	return &c, nil
}
