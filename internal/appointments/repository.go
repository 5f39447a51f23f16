package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Repository defines the interface for appointment storage.
type Repository interface {
	Create(ctx context.Context, doctorID, patientID, date, startTime string, status Status, notes string) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	UpdateStatus(ctx context.Context, id string, from, to Status, notes string) error
	Reschedule(ctx context.Context, id, newDate, newTime string) error
	ListByDoctorDate(ctx context.Context, doctorID, date string) ([]*Appointment, error)
	ListByDoctorRange(ctx context.Context, doctorID, fromDate, toDate string) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListPendingForDoctor(ctx context.Context, doctorID string) ([]*Appointment, error)
}

// DB is the subset of pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores appointments in the relational database.
type PostgresRepository struct {
	db DB
}

// NewPostgresRepository initializes a repo backed by pgx.
func NewPostgresRepository(db DB) *PostgresRepository {
	if db == nil {
		panic("appointments: pgx connection required")
	}
	return &PostgresRepository{db: db}
}

// Create inserts a booking only when no active appointment already holds
// the same (doctor, date, time). A partial unique index backs the same
// invariant against concurrent writers; the conditional insert keeps the
// common case an ordinary ErrSlotTaken instead of a constraint error.
func (r *PostgresRepository) Create(ctx context.Context, doctorID, patientID, date, startTime string, status Status, notes string) (*Appointment, error) {
	id := uuid.NewString()
	query := `
		INSERT INTO appointments (id, doctor_id, patient_id, date, start_time, status, notes)
		SELECT $1, $2, $3, $4::date, $5::time, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM appointments
			WHERE doctor_id = $2 AND date = $4::date AND start_time = $5::time
			  AND status = ANY($8)
		)
		RETURNING created_at, updated_at
	`
	var createdAt, updatedAt time.Time
	err := r.db.QueryRow(ctx, query,
		id, doctorID, patientID, date, startTime, string(status), notes, blockingStatuses(),
	).Scan(&createdAt, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSlotTaken
	}
	if isUniqueViolation(err) {
		return nil, ErrSlotTaken
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return &Appointment{
		ID:        id,
		DoctorID:  doctorID,
		PatientID: patientID,
		Date:      date,
		StartTime: startTime,
		Status:    status,
		Notes:     notes,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

const appointmentColumns = `a.id, a.doctor_id, a.patient_id,
	       to_char(a.date, 'YYYY-MM-DD'), a.start_time::text, a.status,
	       a.notes, a.created_at, a.updated_at, p.name, COALESCE(p.email, '')`

const appointmentFrom = ` FROM appointments a JOIN patients p ON p.id = a.patient_id`

// GetByID fetches one appointment with the patient joined.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + ` WHERE a.id = $1`
	a, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load failed: %w", err)
	}
	return a, nil
}

// UpdateStatus writes the new status as a compare-and-set against the
// status the caller read. Transition legality is enforced by the
// service; the guard here only catches a concurrent transition winning
// the race between read and write.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, from, to Status, notes string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET status = $3, notes = COALESCE(NULLIF($4, ''), notes), updated_at = now()
		WHERE id = $1 AND status = $2`,
		id, string(from), string(to), notes)
	if err != nil {
		return fmt.Errorf("appointments: update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		err := r.db.QueryRow(ctx, `SELECT status FROM appointments WHERE id = $1`, id).Scan(&current)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAppointmentNotFound
		}
		if err != nil {
			return fmt.Errorf("appointments: update status: %w", err)
		}
		return fmt.Errorf("%w: now %s", ErrStatusConflict, current)
	}
	return nil
}

// Reschedule moves the appointment, refusing a target slot that already
// has an active booking for the same doctor. Status and patient reference
// are left untouched.
func (r *PostgresRepository) Reschedule(ctx context.Context, id, newDate, newTime string) error {
	query := `
		UPDATE appointments a
		SET date = $2::date, start_time = $3::time, updated_at = now()
		WHERE a.id = $1
		  AND NOT EXISTS (
			SELECT 1 FROM appointments b
			WHERE b.doctor_id = a.doctor_id
			  AND b.date = $2::date AND b.start_time = $3::time
			  AND b.id <> a.id
			  AND b.status = ANY($4)
		  )
	`
	tag, err := r.db.Exec(ctx, query, id, newDate, newTime, blockingStatuses())
	if isUniqueViolation(err) {
		return ErrSlotTaken
	}
	if err != nil {
		return fmt.Errorf("appointments: reschedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSlotTaken
	}
	return nil
}

// ListByDoctorDate returns a doctor's appointments for one day, ordered
// by start time.
func (r *PostgresRepository) ListByDoctorDate(ctx context.Context, doctorID, date string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + `
		WHERE a.doctor_id = $1 AND a.date = $2::date
		ORDER BY a.start_time`
	return r.list(ctx, query, doctorID, date)
}

// ListByDoctorRange returns appointments over [fromDate, toDate] for week
// and month views.
func (r *PostgresRepository) ListByDoctorRange(ctx context.Context, doctorID, fromDate, toDate string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + `
		WHERE a.doctor_id = $1 AND a.date BETWEEN $2::date AND $3::date
		ORDER BY a.date, a.start_time`
	return r.list(ctx, query, doctorID, fromDate, toDate)
}

// ListByPatient returns a patient's appointment history, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + `
		WHERE a.patient_id = $1
		ORDER BY a.date DESC, a.start_time DESC`
	return r.list(ctx, query, patientID)
}

// ListPendingForDoctor returns the doctor's confirmation queue.
func (r *PostgresRepository) ListPendingForDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + appointmentFrom + `
		WHERE a.doctor_id = $1 AND a.status = 'pending'
		ORDER BY a.date, a.start_time`
	return r.list(ctx, query, doctorID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	if err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Date,
		&a.StartTime,
		&status,
		&a.Notes,
		&a.CreatedAt,
		&a.UpdatedAt,
		&a.PatientName,
		&a.PatientEmail,
	); err != nil {
		return nil, err
	}
	a.Status = Status(status)
	return &a, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
