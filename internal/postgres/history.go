package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// HistoryRepository stores the append-only audit trail. There is no
// update or delete on purpose.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
	ListByEstablishment(ctx context.Context, establishmentID string, limit int) ([]*domain.HistoryEntry, error)
}

type historyRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository wraps a pgxpool with the HistoryRepository interface.
func NewHistoryRepository(pool *pgxpool.Pool) HistoryRepository {
	return &historyRepository{pool: pool}
}

func (r *historyRepository) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	if entry.ContactsNotified == nil {
		entry.ContactsNotified = []string{}
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO history
			(id, establishment_id, fiche_id, type, fiche_name, completion_date,
			 next_due, comment, contacts_notified, emails_sent, recorded_at)
		VALUES
			($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		entry.ID, entry.EstablishmentID, entry.FicheID, string(entry.Type),
		entry.FicheName, entry.CompletionDate, entry.NextDue, entry.Comment,
		entry.ContactsNotified, entry.EmailsSent, entry.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("append history entry for fiche %s: %w", entry.FicheID, err)
	}
	return nil
}

func (r *historyRepository) ListByEstablishment(ctx context.Context, establishmentID string, limit int) ([]*domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, establishment_id, fiche_id, type, fiche_name, completion_date,
		       next_due, comment, contacts_notified, emails_sent, recorded_at
		FROM history
		WHERE establishment_id = $1
		ORDER BY recorded_at DESC
		LIMIT $2
	`, establishmentID, limit)
	if err != nil {
		return nil, fmt.Errorf("list history for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()

	var out []*domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var typeStr string
		if err := rows.Scan(
			&e.ID, &e.EstablishmentID, &e.FicheID, &typeStr, &e.FicheName,
			&e.CompletionDate, &e.NextDue, &e.Comment, &e.ContactsNotified,
			&e.EmailsSent, &e.RecordedAt,
		); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		e.Type = domain.HistoryType(typeStr)
		out = append(out, &e)
	}
	return out, rows.Err()
}
