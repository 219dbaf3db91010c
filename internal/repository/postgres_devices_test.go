package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

func setupMockDevicesDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresDevicesRepo) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := NewPostgresDevicesRepo(db, zap.NewNop())
	return db, mock, repo
}

func TestCreateDevice_Success(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO devices`).
		WithArgs("devA", "devA", "unknown", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO subscriber_device_settings`).
		WithArgs("devA", domain.DefaultThreshold).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.CreateDevice(context.Background(), domain.NewDevice("devA"))

	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDevice_UniqueViolationIsRace(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO devices`).
		WithArgs("devA", "devA", "unknown", true).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.CreateDevice(context.Background(), domain.NewDevice("devA"))

	// The expected provisioning race maps to ErrDeviceExists, never a
	// generic failure.
	assert.ErrorIs(t, err, ErrDeviceExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDevice_SettingsInsertFailureRollsBack(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO devices`).
		WithArgs("devA", "devA", "unknown", true).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO subscriber_device_settings`).
		WithArgs("devA", domain.DefaultThreshold).
		WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	err := repo.CreateDevice(context.Background(), domain.NewDevice("devA"))

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrDeviceExists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDevice_NotFound(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	mock.ExpectQuery(`SELECT`).
		WithArgs("devZ").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetDevice(context.Background(), "devZ")

	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListDeviceIDs(t *testing.T) {
	db, mock, repo := setupMockDevicesDB(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"device_id"}).
		AddRow("devA").
		AddRow("devB")
	mock.ExpectQuery(`SELECT device_id FROM devices`).WillReturnRows(rows)

	ids, err := repo.ListDeviceIDs(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"devA", "devB"}, ids)
	require.NoError(t, mock.ExpectationsWereMet())
}
