package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mafius22/smart-fridge/internal/domain"
)

type PostgresMeasurementsRepo struct {
	db *sql.DB
}

func NewPostgresMeasurementsRepo(db *sql.DB) *PostgresMeasurementsRepo {
	return &PostgresMeasurementsRepo{db: db}
}

var _ MeasurementsRepository = (*PostgresMeasurementsRepo)(nil)

// Insert appends one measurement. Pure insert; the caller guarantees the
// device row exists (or accepts the foreign-key failure).
func (r *PostgresMeasurementsRepo) Insert(ctx context.Context, m *domain.Measurement) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO measurements (device_id, recorded_at, source_ts, temperature, pressure)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, m.DeviceID, m.RecordedAt, m.SourceTS, m.Temperature, m.Pressure).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to insert measurement: %w", err)
	}
	return id, nil
}

func (r *PostgresMeasurementsRepo) LatestForDevice(ctx context.Context, deviceID string) (*domain.Measurement, error) {
	var m domain.Measurement
	err := r.db.QueryRowContext(ctx, `
		SELECT id, device_id, recorded_at, source_ts, temperature, pressure
		FROM measurements
		WHERE device_id = $1
		ORDER BY id DESC
		LIMIT 1
	`, deviceID).Scan(&m.ID, &m.DeviceID, &m.RecordedAt, &m.SourceTS, &m.Temperature, &m.Pressure)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest measurement: %w", err)
	}
	return &m, nil
}

func (r *PostgresMeasurementsRepo) ListRange(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.Measurement, error) {
	query := `
		SELECT id, device_id, recorded_at, source_ts, temperature, pressure
		FROM measurements
		WHERE recorded_at BETWEEN $1 AND $2
	`
	args := []interface{}{start, end}
	if deviceID != "" {
		query += ` AND device_id = $3`
		args = append(args, deviceID)
	}
	query += ` ORDER BY recorded_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query measurements: %w", err)
	}
	defer rows.Close()

	var measurements []*domain.Measurement
	for rows.Next() {
		var m domain.Measurement
		if err := rows.Scan(&m.ID, &m.DeviceID, &m.RecordedAt, &m.SourceTS, &m.Temperature, &m.Pressure); err != nil {
			return nil, fmt.Errorf("failed to scan measurement: %w", err)
		}
		measurements = append(measurements, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate measurements: %w", err)
	}
	return measurements, nil
}
