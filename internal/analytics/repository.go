package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// Repository aggregates appointment rows for reporting. It runs over
// database/sql rather than the pgx pool because the queries are
// read-only aggregates and sqlmock-friendly.
type Repository struct {
	db *sql.DB
}

// NewRepository creates an analytics repository.
func NewRepository(db *sql.DB) *Repository {
	if db == nil {
		panic("analytics: sql.DB required")
	}
	return &Repository{db: db}
}

// CountsByStatus returns appointment counts per status for one doctor
// over an inclusive date range, restricted to the given statuses.
func (r *Repository) CountsByStatus(ctx context.Context, doctorID, from, to string, statuses []string) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, count(*)
		FROM appointments
		WHERE doctor_id = $1 AND date BETWEEN $2::date AND $3::date
		  AND status = ANY($4)
		GROUP BY status
		ORDER BY status`,
		doctorID, from, to, pq.Array(statuses))
	if err != nil {
		return nil, fmt.Errorf("analytics: counts by status: %w", err)
	}
	defer rows.Close()

	out := []StatusCount{}
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("analytics: scan status count: %w", err)
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

// BookingsPerDay returns per-day appointment counts for one doctor over
// an inclusive date range. Days with no bookings are omitted.
func (r *Repository) BookingsPerDay(ctx context.Context, doctorID, from, to string) ([]DayCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), count(*)
		FROM appointments
		WHERE doctor_id = $1 AND date BETWEEN $2::date AND $3::date
		  AND status NOT IN ('cancelled', 'refused')
		GROUP BY date
		ORDER BY date`,
		doctorID, from, to)
	if err != nil {
		return nil, fmt.Errorf("analytics: bookings per day: %w", err)
	}
	defer rows.Close()

	out := []DayCount{}
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Date, &dc.Count); err != nil {
			return nil, fmt.Errorf("analytics: scan day count: %w", err)
		}
		out = append(out, dc)
	}
	return out, rows.Err()
}
