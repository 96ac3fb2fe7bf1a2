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

// MeetingRepository abstracts database access for recurring meetings.
type MeetingRepository interface {
	Create(ctx context.Context, m *domain.Meeting) error
	Update(ctx context.Context, m *domain.Meeting) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Meeting, error)
	ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.Meeting, error)
}

type meetingRepository struct {
	pool *pgxpool.Pool
}

// NewMeetingRepository wraps a pgxpool with the MeetingRepository interface.
func NewMeetingRepository(pool *pgxpool.Pool) MeetingRepository {
	return &meetingRepository{pool: pool}
}

const meetingColumns = `
	id, establishment_id, name, description, weekday, start_time, end_time,
	frequency, location, video_url, active, created_at, updated_at`

func (r *meetingRepository) Create(ctx context.Context, m *domain.Meeting) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	_, err := r.pool.Exec(ctx, `
		INSERT INTO meetings (`+meetingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`,
		m.ID, m.EstablishmentID, m.Name, m.Description, m.Weekday,
		m.StartTime, m.EndTime, m.Frequency, m.Location, m.VideoURL,
		m.Active, m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create meeting %s: %w", m.ID, err)
	}
	return nil
}

func (r *meetingRepository) Update(ctx context.Context, m *domain.Meeting) error {
	m.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE meetings
		SET name = $1, description = $2, weekday = $3, start_time = $4, end_time = $5,
		    frequency = $6, location = $7, video_url = $8, active = $9, updated_at = $10
		WHERE id = $11
	`,
		m.Name, m.Description, m.Weekday, m.StartTime, m.EndTime,
		m.Frequency, m.Location, m.VideoURL, m.Active, m.UpdatedAt, m.ID,
	)
	if err != nil {
		return fmt.Errorf("update meeting %s: %w", m.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.MeetingNotFoundError{MeetingID: m.ID}
	}
	return nil
}

func (r *meetingRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM meetings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete meeting %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return &domain.MeetingNotFoundError{MeetingID: id}
	}
	return nil
}

func (r *meetingRepository) GetByID(ctx context.Context, id string) (*domain.Meeting, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+meetingColumns+` FROM meetings WHERE id = $1`, id)
	return scanMeeting(row, id)
}

func (r *meetingRepository) ListByEstablishment(ctx context.Context, establishmentID string) ([]*domain.Meeting, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+meetingColumns+`
		FROM meetings
		WHERE establishment_id = $1
		ORDER BY weekday, start_time
	`, establishmentID)
	if err != nil {
		return nil, fmt.Errorf("list meetings for establishment %s: %w", establishmentID, err)
	}
	defer rows.Close()

	var out []*domain.Meeting
	for rows.Next() {
		m, err := scanMeeting(rows, "")
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMeeting(row interface {
	Scan(...any) error
}, id string) (*domain.Meeting, error) {
	var m domain.Meeting
	err := row.Scan(
		&m.ID, &m.EstablishmentID, &m.Name, &m.Description, &m.Weekday,
		&m.StartTime, &m.EndTime, &m.Frequency, &m.Location, &m.VideoURL,
		&m.Active, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &domain.MeetingNotFoundError{MeetingID: id}
		}
		return nil, fmt.Errorf("scan meeting: %w", err)
	}
	return &m, nil
}
