package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// EstablishmentRepository abstracts database access for tenants.
type EstablishmentRepository interface {
	Create(ctx context.Context, e *domain.Establishment) error
	Update(ctx context.Context, e *domain.Establishment) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Establishment, error)
	List(ctx context.Context) ([]*domain.Establishment, error)
}

type establishmentRepository struct {
	pool *pgxpool.Pool
}

// NewEstablishmentRepository wraps a pgxpool with the EstablishmentRepository interface.
func NewEstablishmentRepository(pool *pgxpool.Pool) EstablishmentRepository {
	return &establishmentRepository{pool: pool}
}

func (r *establishmentRepository) Create(ctx context.Context, e *domain.Establishment) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	emailCfg, err := json.Marshal(e.EmailCfg)
	if err != nil {
		return fmt.Errorf("marshal email settings: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO establishments
			(id, name, address, city, postal_code, country, phone, email, notes, email_settings, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`,
		e.ID, e.Name, e.Address, e.City, e.PostalCode, e.Country,
		e.Phone, e.Email, e.Notes, emailCfg, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create establishment %s: %w", e.ID, err)
	}
	return nil
}

func (r *establishmentRepository) Update(ctx context.Context, e *domain.Establishment) error {
	e.UpdatedAt = time.Now().UTC()
	emailCfg, err := json.Marshal(e.EmailCfg)
	if err != nil {
		return fmt.Errorf("marshal email settings: %w", err)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE establishments
		SET name = $1, address = $2, city = $3, postal_code = $4, country = $5,
		    phone = $6, email = $7, notes = $8, email_settings = $9, updated_at = $10
		WHERE id = $11
	`,
		e.Name, e.Address, e.City, e.PostalCode, e.Country,
		e.Phone, e.Email, e.Notes, emailCfg, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update establishment %s: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.EstablishmentNotFoundError{ID: e.ID}
	}
	return nil
}

func (r *establishmentRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM establishments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete establishment %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.EstablishmentNotFoundError{ID: id}
	}
	return nil
}

func (r *establishmentRepository) GetByID(ctx context.Context, id string) (*domain.Establishment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, address, city, postal_code, country, phone, email, notes, email_settings, created_at, updated_at
		FROM establishments
		WHERE id = $1
	`, id)
	return scanEstablishment(row, id)
}

func (r *establishmentRepository) List(ctx context.Context) ([]*domain.Establishment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, city, postal_code, country, phone, email, notes, email_settings, created_at, updated_at
		FROM establishments
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list establishments: %w", err)
	}
	defer rows.Close()

	var out []*domain.Establishment
	for rows.Next() {
		e, err := scanEstablishment(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEstablishment(row interface {
	Scan(...any) error
}, id string) (*domain.Establishment, error) {
	var e domain.Establishment
	var emailCfg []byte
	err := row.Scan(
		&e.ID, &e.Name, &e.Address, &e.City, &e.PostalCode, &e.Country,
		&e.Phone, &e.Email, &e.Notes, &emailCfg, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.EstablishmentNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("scan establishment: %w", err)
	}
	if len(emailCfg) > 0 {
		if err := json.Unmarshal(emailCfg, &e.EmailCfg); err != nil {
			return nil, fmt.Errorf("unmarshal email settings for %s: %w", e.ID, err)
		}
	}
	return &e, nil
}
