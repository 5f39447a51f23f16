package files

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for file metadata storage.
type Repository interface {
	Create(ctx context.Context, f *PatientFile) error
	GetByID(ctx context.Context, id string) (*PatientFile, error)
	ListByPatient(ctx context.Context, patientID string) ([]*PatientFile, error)
	Delete(ctx context.Context, id string) error
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores file metadata in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("files: pgx connection required")
	}
	return &PostgresRepository{db: db}
}

const fileColumns = `id, patient_id, doctor_id, storage_path, filename,
	       content_type, category, description, size_bytes, created_at`

// Create inserts a metadata row for a stored object.
func (r *PostgresRepository) Create(ctx context.Context, f *PatientFile) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO patient_files (id, patient_id, doctor_id, storage_path, filename,
			content_type, category, description, size_bytes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at`,
		f.ID, f.PatientID, f.DoctorID, f.StoragePath, f.Filename,
		f.ContentType, f.Category, f.Description, f.SizeBytes,
	).Scan(&f.CreatedAt)
	if err != nil {
		return fmt.Errorf("files: insert failed: %w", err)
	}
	return nil
}

// GetByID fetches one metadata row.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*PatientFile, error) {
	query := `SELECT ` + fileColumns + ` FROM patient_files WHERE id = $1`
	f, err := scanFile(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrFileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("files: load failed: %w", err)
	}
	return f, nil
}

// ListByPatient returns a patient's files, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]*PatientFile, error) {
	query := `SELECT ` + fileColumns + ` FROM patient_files
		WHERE patient_id = $1
		ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("files: list failed: %w", err)
	}
	defer rows.Close()

	out := []*PatientFile{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("files: scan failed: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// Delete removes one metadata row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM patient_files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("files: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrFileNotFound
	}
	return nil
}

func scanFile(row pgx.Row) (*PatientFile, error) {
	var f PatientFile
	if err := row.Scan(
		&f.ID,
		&f.PatientID,
		&f.DoctorID,
		&f.StoragePath,
		&f.Filename,
		&f.ContentType,
		&f.Category,
		&f.Description,
		&f.SizeBytes,
		&f.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}
