package analytics

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountsByStatusGroupsRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT status, count\(\*\)`).
		WithArgs("doc-1", "2026-08-01", "2026-08-31", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("completed", 12).
			AddRow("pending", 3))

	repo := NewRepository(db)
	counts, err := repo.CountsByStatus(context.Background(), "doc-1", "2026-08-01", "2026-08-31", reportStatuses)
	require.NoError(t, err)

	assert.Equal(t, []StatusCount{
		{Status: "completed", Count: 12},
		{Status: "pending", Count: 3},
	}, counts)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBookingsPerDaySkipsCancelled(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`to_char\(date, 'YYYY-MM-DD'\), count\(\*\)`).
		WithArgs("doc-1", "2026-08-01", "2026-08-31").
		WillReturnRows(sqlmock.NewRows([]string{"date", "count"}).
			AddRow("2026-08-03", 4).
			AddRow("2026-08-04", 1))

	repo := NewRepository(db)
	days, err := repo.BookingsPerDay(context.Background(), "doc-1", "2026-08-01", "2026-08-31")
	require.NoError(t, err)

	assert.Equal(t, []DayCount{
		{Date: "2026-08-03", Count: 4},
		{Date: "2026-08-04", Count: 1},
	}, days)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountsByStatusEmptyRange(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT status, count\(\*\)`).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}))

	repo := NewRepository(db)
	counts, err := repo.CountsByStatus(context.Background(), "doc-1", "2026-08-01", "2026-08-31", reportStatuses)
	require.NoError(t, err)
	assert.Empty(t, counts)
	assert.NotNil(t, counts)
}
