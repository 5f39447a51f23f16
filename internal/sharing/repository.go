package sharing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for shared-record storage.
type Repository interface {
	Share(ctx context.Context, fromDoctorID string, req *ShareRequest) (*SharedRecord, error)
	ListReceived(ctx context.Context, doctorID string) ([]*SharedRecord, error)
	ListSent(ctx context.Context, doctorID string) ([]*SharedRecord, error)
	Revoke(ctx context.Context, id, fromDoctorID string) error
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores shared records in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("sharing: pgx connection required")
	}
	return &PostgresRepository{db: db}
}

// Share inserts an active share row.
func (r *PostgresRepository) Share(ctx context.Context, fromDoctorID string, req *ShareRequest) (*SharedRecord, error) {
	rec := &SharedRecord{
		ID:           uuid.NewString(),
		FromDoctorID: fromDoctorID,
		ToDoctorID:   req.ToDoctorID,
		PatientID:    req.PatientID,
		Notes:        req.Notes,
		Active:       true,
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO shared_patient_records (id, from_doctor_id, to_doctor_id, patient_id, notes, active)
		VALUES ($1, $2, $3, $4, $5, true)
		RETURNING shared_at`,
		rec.ID, rec.FromDoctorID, rec.ToDoctorID, rec.PatientID, rec.Notes,
	).Scan(&rec.SharedAt)
	if err != nil {
		return nil, fmt.Errorf("sharing: insert failed: %w", err)
	}
	return rec, nil
}

const sharedColumns = `s.id, s.from_doctor_id, s.to_doctor_id, s.patient_id,
	       s.notes, s.active, s.shared_at, p.name, d.name
	FROM shared_patient_records s
	JOIN patients p ON p.id = s.patient_id
	JOIN doctors d ON d.id = s.from_doctor_id`

// ListReceived returns active shares granted to the doctor, newest first.
func (r *PostgresRepository) ListReceived(ctx context.Context, doctorID string) ([]*SharedRecord, error) {
	query := `SELECT ` + sharedColumns + `
		WHERE s.to_doctor_id = $1 AND s.active
		ORDER BY s.shared_at DESC`
	return r.list(ctx, query, doctorID)
}

// ListSent returns active shares the doctor granted, newest first.
func (r *PostgresRepository) ListSent(ctx context.Context, doctorID string) ([]*SharedRecord, error) {
	query := `SELECT ` + sharedColumns + `
		WHERE s.from_doctor_id = $1 AND s.active
		ORDER BY s.shared_at DESC`
	return r.list(ctx, query, doctorID)
}

// Revoke deactivates a share. Only the sharing doctor may revoke.
func (r *PostgresRepository) Revoke(ctx context.Context, id, fromDoctorID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE shared_patient_records
		SET active = false
		WHERE id = $1 AND from_doctor_id = $2 AND active`,
		id, fromDoctorID)
	if err != nil {
		return fmt.Errorf("sharing: revoke: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrShareNotFound
	}
	return nil
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*SharedRecord, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sharing: list failed: %w", err)
	}
	defer rows.Close()

	out := []*SharedRecord{}
	for rows.Next() {
		var rec SharedRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.FromDoctorID,
			&rec.ToDoctorID,
			&rec.PatientID,
			&rec.Notes,
			&rec.Active,
			&rec.SharedAt,
			&rec.PatientName,
			&rec.FromDoctorName,
		); err != nil {
			return nil, fmt.Errorf("sharing: scan failed: %w", err)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}
