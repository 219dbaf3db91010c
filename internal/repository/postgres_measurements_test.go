package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mafius22/smart-fridge/internal/domain"
)

func setupMockMeasurementsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresMeasurementsRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresMeasurementsRepo(db)
	return db, mock, repo
}

func TestInsertMeasurement(t *testing.T) {
	db, mock, repo := setupMockMeasurementsDB(t)
	defer db.Close()

	recordedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := &domain.Measurement{
		DeviceID:    "devA",
		RecordedAt:  recordedAt,
		SourceTS:    1735689600,
		Temperature: 32.5,
		Pressure:    100000,
	}

	mock.ExpectQuery(`INSERT INTO measurements`).
		WithArgs("devA", recordedAt, int64(1735689600), 32.5, 100000.0).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	id, err := repo.Insert(context.Background(), m)

	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestForDevice(t *testing.T) {
	db, mock, repo := setupMockMeasurementsDB(t)
	defer db.Close()

	recordedAt := time.Now()
	rows := sqlmock.NewRows([]string{"id", "device_id", "recorded_at", "source_ts", "temperature", "pressure"}).
		AddRow(9, "devA", recordedAt, 1735689600, 4.5, 100000.0)
	mock.ExpectQuery(`SELECT`).WithArgs("devA").WillReturnRows(rows)

	m, err := repo.LatestForDevice(context.Background(), "devA")

	require.NoError(t, err)
	assert.Equal(t, int64(9), m.ID)
	assert.Equal(t, 4.5, m.Temperature)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestForDevice_NotFound(t *testing.T) {
	db, mock, repo := setupMockMeasurementsDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).WithArgs("devZ").WillReturnError(sql.ErrNoRows)

	_, err := repo.LatestForDevice(context.Background(), "devZ")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRange_DeviceFilter(t *testing.T) {
	db, mock, repo := setupMockMeasurementsDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	rows := sqlmock.NewRows([]string{"id", "device_id", "recorded_at", "source_ts", "temperature", "pressure"}).
		AddRow(1, "devA", start.Add(time.Hour), 1735689600, 4.5, 100000.0).
		AddRow(2, "devA", start.Add(2*time.Hour), 1735693200, 5.1, 100010.0)
	mock.ExpectQuery(`SELECT`).WithArgs(start, end, "devA").WillReturnRows(rows)

	measurements, err := repo.ListRange(context.Background(), "devA", start, end)

	require.NoError(t, err)
	require.Len(t, measurements, 2)
	assert.Equal(t, 4.5, measurements[0].Temperature)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListRange_AllDevices(t *testing.T) {
	db, mock, repo := setupMockMeasurementsDB(t)
	defer db.Close()

	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT`).WithArgs(start, end).
		WillReturnRows(sqlmock.NewRows([]string{"id", "device_id", "recorded_at", "source_ts", "temperature", "pressure"}))

	measurements, err := repo.ListRange(context.Background(), "", start, end)

	require.NoError(t, err)
	assert.Empty(t, measurements)
	require.NoError(t, mock.ExpectationsWereMet())
}
