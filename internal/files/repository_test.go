package files

import (
	"context"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func TestCreateReturnsTimestamp(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO patient_files`).
		WithArgs("f-1", "pat-1", "doc-1", "patients/pat-1/f-1-scan.png", "scan.png",
			"image/png", "imaging", "", int64(9)).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(now))

	f := &PatientFile{
		ID: "f-1", PatientID: "pat-1", DoctorID: "doc-1",
		StoragePath: "patients/pat-1/f-1-scan.png", Filename: "scan.png",
		ContentType: "image/png", Category: "imaging", SizeBytes: 9,
	}
	require.NoError(t, repo.Create(context.Background(), f))
	assert.Equal(t, now, f.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT .* FROM patient_files WHERE id`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "doctor_id", "storage_path", "filename",
			"content_type", "category", "description", "size_bytes", "created_at",
		}))

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`DELETE FROM patient_files`).
		WithArgs("missing").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrFileNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
