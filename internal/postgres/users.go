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

// UserRepository abstracts database access for accounts. Super-admins
// and establishment admins share one table; role tells them apart.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Delete(ctx context.Context, id string) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.User, error)
}

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository wraps a pgxpool with the UserRepository interface.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, establishment_id, email, password_hash, name, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, u.ID, u.EstablishmentID, u.Email, u.PasswordHash, u.Name, string(u.Role), u.CreatedAt)
	if err != nil {
		return fmt.Errorf("create user %s: %w", u.Email, err)
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.UserNotFoundError{Key: id}
	}
	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, establishment_id, email, password_hash, name, role, created_at
		FROM users
		WHERE email = $1
	`, email)
	return scanUser(row, email)
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, establishment_id, email, password_hash, name, role, created_at
		FROM users
		WHERE id = $1
	`, id)
	return scanUser(row, id)
}

func (r *userRepository) ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, establishment_id, email, password_hash, name, role, created_at
		FROM users
		WHERE establishment_id = $1
		ORDER BY name
	`, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list users for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row interface {
	Scan(...any) error
}, key string) (*domain.User, error) {
	var u domain.User
	var roleStr string
	err := row.Scan(&u.ID, &u.EstablishmentID, &u.Email, &u.PasswordHash, &u.Name, &roleStr, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.UserNotFoundError{Key: key}
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.Role = domain.Role(roleStr)
	return &u, nil
}
