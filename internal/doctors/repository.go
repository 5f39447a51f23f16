package doctors

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for doctor storage.
type Repository interface {
	Upsert(ctx context.Context, req *UpsertDoctorRequest) (*Doctor, error)
	GetByID(ctx context.Context, id string) (*Doctor, error)
	GetByUserID(ctx context.Context, userID string) (*Doctor, error)
	Search(ctx context.Context, filter SearchFilter) ([]*Doctor, error)
	SetPhotoPath(ctx context.Context, id, photoPath string) error
}

// DB is the subset of pgxpool.Pool the repository uses. pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores doctor profiles in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("doctors: pgx connection required")
	}
	return &PostgresRepository{db: db}
}

const doctorColumns = `id, user_id, name, specialty, city, consultation_fee_cents,
	       appointment_duration_min, bio, photo_path, created_at, updated_at`

// Upsert creates the profile on first save and updates it afterwards,
// keyed by the owning user.
func (r *PostgresRepository) Upsert(ctx context.Context, req *UpsertDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	duration := req.AppointmentDuration
	if duration == 0 {
		duration = DefaultAppointmentDuration
	}

	query := `
		INSERT INTO doctors (id, user_id, name, specialty, city, consultation_fee_cents,
		    appointment_duration_min, bio)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
		    name = EXCLUDED.name,
		    specialty = EXCLUDED.specialty,
		    city = EXCLUDED.city,
		    consultation_fee_cents = EXCLUDED.consultation_fee_cents,
		    appointment_duration_min = EXCLUDED.appointment_duration_min,
		    bio = EXCLUDED.bio,
		    updated_at = now()
		RETURNING id, created_at, updated_at
	`
	var (
		id        string
		createdAt time.Time
		updatedAt time.Time
	)
	if err := r.db.QueryRow(ctx, query,
		uuid.NewString(),
		req.UserID,
		req.Name,
		req.Specialty,
		req.City,
		req.ConsultationFee,
		duration,
		req.Bio,
	).Scan(&id, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("doctors: upsert failed: %w", err)
	}

	return &Doctor{
		ID:                  id,
		UserID:              req.UserID,
		Name:                req.Name,
		Specialty:           req.Specialty,
		City:                req.City,
		ConsultationFee:     req.ConsultationFee,
		AppointmentDuration: duration,
		Bio:                 req.Bio,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

// GetByID fetches a doctor profile.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// GetByUserID fetches the profile owned by an authenticated user.
func (r *PostgresRepository) GetByUserID(ctx context.Context, userID string) (*Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors WHERE user_id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, userID))
}

// Search lists doctors filtered by specialty and/or city, newest first.
func (r *PostgresRepository) Search(ctx context.Context, filter SearchFilter) ([]*Doctor, error) {
	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	query := `
		SELECT ` + doctorColumns + `
		FROM doctors
		WHERE ($1 = '' OR specialty ILIKE $1)
		  AND ($2 = '' OR city ILIKE $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, filter.Specialty, filter.City, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("doctors: search failed: %w", err)
	}
	defer rows.Close()

	out := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// SetPhotoPath records the storage path of the profile photo.
func (r *PostgresRepository) SetPhotoPath(ctx context.Context, id, photoPath string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE doctors SET photo_path = $2, updated_at = now() WHERE id = $1`,
		id, photoPath)
	if err != nil {
		return fmt.Errorf("doctors: set photo path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

func (r *PostgresRepository) scanOne(row pgx.Row) (*Doctor, error) {
	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDoctorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("doctors: load failed: %w", err)
	}
	return d, nil
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	if err := row.Scan(
		&d.ID,
		&d.UserID,
		&d.Name,
		&d.Specialty,
		&d.City,
		&d.ConsultationFee,
		&d.AppointmentDuration,
		&d.Bio,
		&d.PhotoPath,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}
