package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/u5732555133-stack/maintenance-app/internal/domain"
)

// TokenRepository abstracts storage of single-use confirmation tokens.
//
// Consume is the exclusivity point of the whole confirmation flow: it
// is a conditional DELETE ... RETURNING, so when two requests race on
// the same token exactly one gets the row back and the other sees
// TokenNotFoundError.
type TokenRepository interface {
	Create(ctx context.Context, token *domain.ConfirmationToken) error
	Get(ctx context.Context, token string) (*domain.ConfirmationToken, error)
	Consume(ctx context.Context, token string) (*domain.ConfirmationToken, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepository struct {
	pool *pgxpool.Pool
}

// NewTokenRepository wraps a pgxpool with the TokenRepository interface.
func NewTokenRepository(pool *pgxpool.Pool) TokenRepository {
	return &tokenRepository{pool: pool}
}

func (r *tokenRepository) Create(ctx context.Context, token *domain.ConfirmationToken) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO confirmation_tokens
			(token, fiche_id, establishment_id, fiche_name, created_at, expires_at)
		VALUES
			($1, $2, $3, $4, $5, $6)
	`,
		token.Token, token.FicheID, token.EstablishmentID,
		token.FicheName, token.CreatedAt, token.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("create confirmation token for fiche %s: %w", token.FicheID, err)
	}
	return nil
}

func (r *tokenRepository) Get(ctx context.Context, token string) (*domain.ConfirmationToken, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT token, fiche_id, establishment_id, fiche_name, created_at, expires_at
		FROM confirmation_tokens
		WHERE token = $1
	`, token)
	return scanToken(row, token)
}

// Consume atomically removes the token and returns it. Single-winner:
// the losing side of a race gets TokenNotFoundError.
func (r *tokenRepository) Consume(ctx context.Context, token string) (*domain.ConfirmationToken, error) {
	row := r.pool.QueryRow(ctx, `
		DELETE FROM confirmation_tokens
		WHERE token = $1
		RETURNING token, fiche_id, establishment_id, fiche_name, created_at, expires_at
	`, token)
	return scanToken(row, token)
}

// DeleteExpired removes every token past its expiry. Idempotent: a
// second run over a clean table deletes nothing.
func (r *tokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM confirmation_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanToken(row interface {
	Scan(...any) error
}, token string) (*domain.ConfirmationToken, error) {
	var t domain.ConfirmationToken
	err := row.Scan(
		&t.Token, &t.FicheID, &t.EstablishmentID,
		&t.FicheName, &t.CreatedAt, &t.ExpiresAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.TokenNotFoundError{Token: token}
		}
		return nil, fmt.Errorf("scan confirmation token: %w", err)
	}
	return &t, nil
}
