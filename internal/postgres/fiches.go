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

// FicheRepository abstracts all database access for maintenance fiches.
type FicheRepository interface {
	Create(ctx context.Context, fiche *domain.Fiche) error
	Update(ctx context.Context, fiche *domain.Fiche) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Fiche, error)
	ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.Fiche, error)
	ListDue(ctx context.Context, establishmentID string, asOf time.Time) ([]*domain.Fiche, error)
	MarkNotified(ctx context.Context, id string, sentAt, nextDue time.Time) error
	ApplyConfirmation(ctx context.Context, id string, completedAt, nextDue time.Time) error
}

type ficheRepository struct {
	pool *pgxpool.Pool
}

// NewFicheRepository wraps a pgxpool with the FicheRepository interface.
func NewFicheRepository(pool *pgxpool.Pool) FicheRepository {
	return &ficheRepository{pool: pool}
}

const ficheColumns = `
	id, establishment_id, name, pdf_url, periodicity_months, next_due,
	last_completed, last_sent_at, contact_ids, owner_name, owner_email,
	deputy_name, deputy_email, comment, status, created_at, updated_at`

func (r *ficheRepository) Create(ctx context.Context, fiche *domain.Fiche) error {
	if fiche.ID == "" {
		fiche.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if fiche.CreatedAt.IsZero() {
		fiche.CreatedAt = now
	}
	fiche.UpdatedAt = now
	if fiche.Status == "" {
		fiche.Status = domain.StatusPending
	}
	if fiche.ContactIDs == nil {
		fiche.ContactIDs = []string{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO fiches (`+ficheColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`,
		fiche.ID, fiche.EstablishmentID, fiche.Name, fiche.PDFURL,
		fiche.PeriodicityMonths, fiche.NextDue, fiche.LastCompleted, fiche.LastSentAt,
		fiche.ContactIDs, fiche.OwnerName, fiche.OwnerEmail,
		fiche.DeputyName, fiche.DeputyEmail, fiche.Comment,
		string(fiche.Status), fiche.CreatedAt, fiche.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create fiche %s: %w", fiche.ID, err)
	}
	return nil
}

func (r *ficheRepository) Update(ctx context.Context, fiche *domain.Fiche) error {
	fiche.UpdatedAt = time.Now().UTC()
	if fiche.ContactIDs == nil {
		fiche.ContactIDs = []string{}
	}
	tag, err := r.pool.Exec(ctx, `
		UPDATE fiches
		SET name = $1, pdf_url = $2, periodicity_months = $3, next_due = $4,
		    last_completed = $5, last_sent_at = $6, contact_ids = $7,
		    owner_name = $8, owner_email = $9, deputy_name = $10, deputy_email = $11,
		    comment = $12, status = $13, updated_at = $14
		WHERE id = $15
	`,
		fiche.Name, fiche.PDFURL, fiche.PeriodicityMonths, fiche.NextDue,
		fiche.LastCompleted, fiche.LastSentAt, fiche.ContactIDs,
		fiche.OwnerName, fiche.OwnerEmail, fiche.DeputyName, fiche.DeputyEmail,
		fiche.Comment, string(fiche.Status), fiche.UpdatedAt, fiche.ID,
	)
	if err != nil {
		return fmt.Errorf("update fiche %s: %w", fiche.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.FicheNotFoundError{FicheID: fiche.ID}
	}
	return nil
}

func (r *ficheRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM fiches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete fiche %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	return nil
}

func (r *ficheRepository) GetByID(ctx context.Context, id string) (*domain.Fiche, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+ficheColumns+` FROM fiches WHERE id = $1`, id)
	return scanFiche(row, id)
}

func (r *ficheRepository) ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.Fiche, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ficheColumns+`
		FROM fiches
		WHERE establishment_id = $1
		ORDER BY next_due ASC
	`, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list fiches for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()
	return collectFiches(rows)
}

// ListDue returns fiches eligible for notification: next_due on or
// before asOf. NOTIFIED fiches are filtered out by construction — their
// next_due sits one period in the future after the provisional advance.
func (r *ficheRepository) ListDue(ctx context.Context, establishmentID string, asOf time.Time) ([]*domain.Fiche, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+ficheColumns+`
		FROM fiches
		WHERE establishment_id = $1 AND next_due <= $2
		ORDER BY next_due ASC
	`, establishmentID, asOf)
	if err != nil {
		return nil, fmt.Errorf("list due fiches for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()
	return collectFiches(rows)
}

func (r *ficheRepository) MarkNotified(ctx context.Context, id string, sentAt, nextDue time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE fiches
		SET status = $1, last_sent_at = $2, next_due = $3, updated_at = $4
		WHERE id = $5
	`, string(domain.StatusNotified), sentAt, nextDue, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark fiche %s notified: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	return nil
}

func (r *ficheRepository) ApplyConfirmation(ctx context.Context, id string, completedAt, nextDue time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE fiches
		SET status = $1, last_completed = $2, next_due = $3, updated_at = $4
		WHERE id = $5
	`, string(domain.StatusCompleted), completedAt, nextDue, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("apply confirmation to fiche %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.FicheNotFoundError{FicheID: id}
	}
	return nil
}

func collectFiches(rows pgx.Rows) ([]*domain.Fiche, error) {
	var fiches []*domain.Fiche
	for rows.Next() {
		f, err := scanFiche(rows, "")
		if err != nil {
			return nil, err
		}
		fiches = append(fiches, f)
	}
	return fiches, rows.Err()
}

// scanFiche reads a fiche row from any pgx row type.
func scanFiche(row interface {
	Scan(...any) error
}, id string) (*domain.Fiche, error) {
	var f domain.Fiche
	var statusStr string
	err := row.Scan(
		&f.ID, &f.EstablishmentID, &f.Name, &f.PDFURL,
		&f.PeriodicityMonths, &f.NextDue, &f.LastCompleted, &f.LastSentAt,
		&f.ContactIDs, &f.OwnerName, &f.OwnerEmail,
		&f.DeputyName, &f.DeputyEmail, &f.Comment,
		&statusStr, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.FicheNotFoundError{FicheID: id}
		}
		return nil, fmt.Errorf("scan fiche: %w", err)
	}
	f.Status = domain.FicheStatus(statusStr)
	return &f, nil
}
