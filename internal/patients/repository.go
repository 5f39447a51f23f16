package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for patient storage.
type Repository interface {
	Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error)
	GetByID(ctx context.Context, id string) (*Patient, error)
	GetByUserID(ctx context.Context, userID string) (*Patient, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Patient, error)
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("patients: pgx connection required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a new patient row. Guest rows carry no user id.
func (r *PostgresRepository) Create(ctx context.Context, req *CreatePatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.NewString()
	query := `
		INSERT INTO patients (id, user_id, name, email, phone, guest)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.UserID,
		req.Name,
		req.Email,
		req.Phone,
		req.Guest,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}

	return &Patient{
		ID:        id,
		UserID:    req.UserID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Guest:     req.Guest,
		CreatedAt: createdAt,
	}, nil
}

const patientColumns = `id, COALESCE(user_id, ''), name, email, phone, guest, created_at`

// GetByID fetches one patient.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByUserID fetches the patient profile owned by an authenticated user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients WHERE user_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

// ListByDoctor returns the distinct patients a doctor has seen, i.e. the
// patients referenced by the doctor's non-cancelled appointments.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Patient, error) {
	query := `
		SELECT DISTINCT p.id, COALESCE(p.user_id, ''), p.name, p.email, p.phone, p.guest, p.created_at
		FROM patients p
		JOIN appointments a ON a.patient_id = p.id
		WHERE a.doctor_id = $1 AND a.status <> 'cancelled'
		ORDER BY p.name
	`
	rows, err := r.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("patients: list by doctor: %w", err)
	}
	defer rows.Close()

	out := []*Patient{}
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Patient, error) {
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: load failed: %w", err)
	}
	return p, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.Name,
		&p.Email,
		&p.Phone,
		&p.Guest,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
