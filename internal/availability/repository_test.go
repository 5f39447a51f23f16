package availability

import (
	"context"
	"testing"

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

func TestSlotTimes(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT start_time::text FROM availability_slots`).
		WithArgs("doc-1", "2026-09-01").
		WillReturnRows(pgxmock.NewRows([]string{"start_time"}).
			AddRow("09:00:00").
			AddRow("10:00:00"))

	times, err := repo.SlotTimes(context.Background(), "doc-1", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00:00", "10:00:00"}, times)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBookedTimesSkipsInactiveStatuses(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT DISTINCT start_time::text FROM appointments`).
		WithArgs("doc-1", "2026-09-01").
		WillReturnRows(pgxmock.NewRows([]string{"start_time"}).AddRow("11:00:00"))

	times, err := repo.BookedTimes(context.Background(), "doc-1", "2026-09-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00:00"}, times)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetForDateDiffsAgainstCurrentRows(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT start_time::text FROM availability_slots`).
		WithArgs("doc-1", "2026-09-01").
		WillReturnRows(pgxmock.NewRows([]string{"start_time"}).
			AddRow("09:00:00").
			AddRow("10:00:00"))
	// 10:00 removed, 11:00 added, 09:00 untouched.
	mock.ExpectExec(`DELETE FROM availability_slots`).
		WithArgs("doc-1", "2026-09-01", []string{"10:00:00"}).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectExec(`INSERT INTO availability_slots`).
		WithArgs(pgxmock.AnyArg(), "doc-1", "2026-09-01", "11:00:00").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	err := repo.SetForDate(context.Background(), "doc-1", "2026-09-01", []string{"09:00:00", "11:00:00"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSetForDateNoChanges(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT start_time::text FROM availability_slots`).
		WithArgs("doc-1", "2026-09-01").
		WillReturnRows(pgxmock.NewRows([]string{"start_time"}).AddRow("09:00:00"))
	mock.ExpectCommit()

	err := repo.SetForDate(context.Background(), "doc-1", "2026-09-01", []string{"09:00:00"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMonthSlotCounts(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(`SELECT to_char\(date, 'YYYY-MM-DD'\), count\(\*\) FROM availability_slots`).
		WithArgs("doc-1", "2026-09-01", "2026-09-30").
		WillReturnRows(pgxmock.NewRows([]string{"date", "count"}).
			AddRow("2026-09-15", 4).
			AddRow("2026-09-16", 2))

	counts, err := repo.MonthSlotCounts(context.Background(), "doc-1", "2026-09-01", "2026-09-30")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"2026-09-15": 4, "2026-09-16": 2}, counts)
	require.NoError(t, mock.ExpectationsWereMet())
}
