package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

const pgUniqueViolation = "23505"

type PostgresDevicesRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresDevicesRepo(db *sql.DB, logger *zap.Logger) *PostgresDevicesRepo {
	return &PostgresDevicesRepo{db: db, logger: logger}
}

var _ DevicesRepository = (*PostgresDevicesRepo)(nil)

func (r *PostgresDevicesRepo) ListDeviceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT device_id FROM devices`)
	if err != nil {
		return nil, fmt.Errorf("failed to list device ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan device id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate device ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresDevicesRepo) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	var d domain.Device
	err := r.db.QueryRowContext(ctx, `
		SELECT device_id, device_name, location, is_active, created_at
		FROM devices
		WHERE device_id = $1
	`, id).Scan(&d.ID, &d.Name, &d.Location, &d.IsActive, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query device: %w", err)
	}
	return &d, nil
}

func (r *PostgresDevicesRepo) ListDevices(ctx context.Context) ([]*domain.Device, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT device_id, device_name, location, is_active, created_at
		FROM devices
		ORDER BY device_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}
	defer rows.Close()

	var devices []*domain.Device
	for rows.Next() {
		var d domain.Device
		if err := rows.Scan(&d.ID, &d.Name, &d.Location, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan device: %w", err)
		}
		devices = append(devices, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate devices: %w", err)
	}
	return devices, nil
}

// CreateDevice inserts the device row plus one default-threshold setting per
// registered subscriber, all in one transaction so a provisioned device is
// immediately matchable for every current subscriber. The devices primary
// key is the arbiter of concurrent provisioning: a unique violation maps to
// ErrDeviceExists and the transaction is rolled back.
func (r *PostgresDevicesRepo) CreateDevice(ctx context.Context, device *domain.Device) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO devices (device_id, device_name, location, is_active, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`, device.ID, device.Name, device.Location, device.IsActive)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pgUniqueViolation {
			return ErrDeviceExists
		}
		return fmt.Errorf("failed to insert device: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscriber_device_settings (subscriber_id, device_id, custom_threshold)
		SELECT subscriber_id, $1, $2 FROM subscribers
	`, device.ID, domain.DefaultThreshold)
	if err != nil {
		return fmt.Errorf("failed to insert default settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit device creation: %w", err)
	}

	r.logger.Info("Provisioned new device",
		zap.String("device_id", device.ID),
	)
	return nil
}
