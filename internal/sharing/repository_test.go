package sharing

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

func TestShareInsertsActiveRow(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`INSERT INTO shared_patient_records`).
		WithArgs(pgxmock.AnyArg(), "doc-1", "doc-2", "pat-1", "post-op notes").
		WillReturnRows(pgxmock.NewRows([]string{"shared_at"}).AddRow(now))

	rec, err := repo.Share(context.Background(), "doc-1", &ShareRequest{
		ToDoctorID: "doc-2",
		PatientID:  "pat-1",
		Notes:      "post-op notes",
	})
	require.NoError(t, err)
	assert.True(t, rec.Active)
	assert.Equal(t, "doc-1", rec.FromDoctorID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListReceivedScansJoinedRows(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT .* FROM shared_patient_records s`).
		WithArgs("doc-2").
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "from_doctor_id", "to_doctor_id", "patient_id",
			"notes", "active", "shared_at", "patient_name", "doctor_name",
		}).AddRow("sh-1", "doc-1", "doc-2", "pat-1", "", true, now, "Kofi Mensah", "Dr. Ada Osei"))

	shares, err := repo.ListReceived(context.Background(), "doc-2")
	require.NoError(t, err)
	require.Len(t, shares, 1)
	assert.Equal(t, "Kofi Mensah", shares[0].PatientName)
	assert.Equal(t, "Dr. Ada Osei", shares[0].FromDoctorName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeNotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(`UPDATE shared_patient_records`).
		WithArgs("missing", "doc-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Revoke(context.Background(), "missing", "doc-1")
	assert.ErrorIs(t, err, ErrShareNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestShareRequestValidation(t *testing.T) {
	assert.ErrorIs(t, (&ShareRequest{ToDoctorID: "doc-2"}).Validate("doc-1"), ErrMissingPatient)
	assert.ErrorIs(t, (&ShareRequest{PatientID: "pat-1"}).Validate("doc-1"), ErrMissingDoctor)
	assert.ErrorIs(t, (&ShareRequest{PatientID: "pat-1", ToDoctorID: "doc-1"}).Validate("doc-1"), ErrSelfShare)
	assert.NoError(t, (&ShareRequest{PatientID: "pat-1", ToDoctorID: "doc-2"}).Validate("doc-1"))
}
