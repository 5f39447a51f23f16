package availability

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for availability storage and the
// booked-time lookups the resolver needs.
type Repository interface {
	SlotTimes(ctx context.Context, doctorID, date string) ([]string, error)
	BookedTimes(ctx context.Context, doctorID, date string) ([]string, error)
	SetForDate(ctx context.Context, doctorID, date string, times []string) error
	MonthSlotCounts(ctx context.Context, doctorID, fromDate, toDate string) (map[string]int, error)
	MonthBookedCounts(ctx context.Context, doctorID, fromDate, toDate string) (map[string]int, error)
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores availability slots in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("availability: pgx connection required")
	}
	return &PostgresRepository{db: db}
}

// SlotTimes returns the configured start times for (doctor, date).
func (r *PostgresRepository) SlotTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	return r.times(ctx, `
		SELECT start_time::text FROM availability_slots
		WHERE doctor_id = $1 AND date = $2::date`,
		doctorID, date)
}

// BookedTimes returns the distinct start times of active appointments for
// (doctor, date). Cancelled and refused bookings free their slot.
func (r *PostgresRepository) BookedTimes(ctx context.Context, doctorID, date string) ([]string, error) {
	return r.times(ctx, `
		SELECT DISTINCT start_time::text FROM appointments
		WHERE doctor_id = $1 AND date = $2::date
		  AND status NOT IN ('cancelled', 'refused')`,
		doctorID, date)
}

// SetForDate reconciles the stored slots for (doctor, date) against the
// requested set: missing times are inserted, removed times deleted,
// unchanged rows untouched. Running inside one transaction avoids the
// transient empty-availability window a delete-all-then-insert would open.
func (r *PostgresRepository) SetForDate(ctx context.Context, doctorID, date string, times []string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("availability: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT start_time::text FROM availability_slots
		WHERE doctor_id = $1 AND date = $2::date
		FOR UPDATE`,
		doctorID, date)
	if err != nil {
		return fmt.Errorf("availability: load current slots: %w", err)
	}
	have := map[string]bool{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return fmt.Errorf("availability: scan slot: %w", err)
		}
		have[t] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("availability: load current slots: %w", err)
	}

	want := map[string]bool{}
	for _, t := range times {
		want[t] = true
	}

	removed := []string{}
	for t := range have {
		if !want[t] {
			removed = append(removed, t)
		}
	}
	if len(removed) > 0 {
		if _, err := tx.Exec(ctx, `
			DELETE FROM availability_slots
			WHERE doctor_id = $1 AND date = $2::date AND start_time::text = ANY($3)`,
			doctorID, date, removed); err != nil {
			return fmt.Errorf("availability: delete removed slots: %w", err)
		}
	}

	for _, t := range times {
		if have[t] {
			continue
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO availability_slots (id, doctor_id, date, start_time)
			VALUES ($1, $2, $3::date, $4::time)
			ON CONFLICT (doctor_id, date, start_time) DO NOTHING`,
			uuid.NewString(), doctorID, date, t); err != nil {
			return fmt.Errorf("availability: insert slot: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("availability: commit: %w", err)
	}
	return nil
}

// MonthSlotCounts returns, per date string, how many slots are configured
// over [fromDate, toDate].
func (r *PostgresRepository) MonthSlotCounts(ctx context.Context, doctorID, fromDate, toDate string) (map[string]int, error) {
	return r.counts(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), count(*) FROM availability_slots
		WHERE doctor_id = $1 AND date BETWEEN $2::date AND $3::date
		GROUP BY date`,
		doctorID, fromDate, toDate)
}

// MonthBookedCounts returns, per date string, how many distinct active
// appointment times exist over [fromDate, toDate].
func (r *PostgresRepository) MonthBookedCounts(ctx context.Context, doctorID, fromDate, toDate string) (map[string]int, error) {
	return r.counts(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), count(DISTINCT start_time) FROM appointments
		WHERE doctor_id = $1 AND date BETWEEN $2::date AND $3::date
		  AND status NOT IN ('cancelled', 'refused')
		GROUP BY date`,
		doctorID, fromDate, toDate)
}

func (r *PostgresRepository) times(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("availability: query times: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("availability: scan time: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) counts(ctx context.Context, query string, args ...any) (map[string]int, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("availability: query counts: %w", err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var date string
		var n int
		if err := rows.Scan(&date, &n); err != nil {
			return nil, fmt.Errorf("availability: scan count: %w", err)
		}
		out[date] = n
	}
	return out, rows.Err()
}
