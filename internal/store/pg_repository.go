package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanWindow(row pgx.Row) (*ProviderWindow, error) {
	var w ProviderWindow

	err := row.Scan(
		&w.ID,
		&w.StartTime,
		&w.EndTime,
		&w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWindowNotFound
		}
		return nil, err
	}

	return &w, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.StartTime,
		&a.EndTime,
		&a.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

// Interface methods

func (r *PgRepository) ListProviderWindows(ctx context.Context) ([]ProviderWindow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, start_time, end_time, created_at
		FROM provider_windows
		ORDER BY start_time
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ProviderWindow
	for rows.Next() {
		w, err := scanWindow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *w)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateProviderWindow(ctx context.Context, start, end time.Time) (*ProviderWindow, error) {
	var overlaps bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM provider_windows
			WHERE start_time < $2 AND end_time > $1
		)
	`, start, end).Scan(&overlaps)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, ErrWindowOverlap
	}

	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO provider_windows (id, start_time, end_time, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, start_time, end_time, created_at
	`, id, start, end)

	return scanWindow(row)
}

func (r *PgRepository) DeleteProviderWindow(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM provider_windows
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWindowNotFound
	}
	return nil
}

func (r *PgRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, start_time, end_time, created_at
		FROM appointments
		ORDER BY start_time
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateAppointment(ctx context.Context, start, end time.Time) (*Appointment, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE start_time < $2 AND end_time > $1
		)
	`, start, end).Scan(&taken)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrSlotTaken
	}

	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (id, start_time, end_time, created_at)
		VALUES ($1, $2, $3, now())
		RETURNING id, start_time, end_time, created_at
	`, id, start, end)

	return scanAppointment(row)
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) HasWindowCovering(ctx context.Context, start, end time.Time) (bool, error) {
	var covered bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM provider_windows
			WHERE start_time <= $1 AND end_time >= $2
		)
	`, start, end).Scan(&covered)
	if err != nil {
		return false, err
	}
	return covered, nil
}
