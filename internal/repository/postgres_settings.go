package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mafius22/smart-fridge/internal/domain"
)

type PostgresSettingsRepo struct {
	db *sql.DB
}

func NewPostgresSettingsRepo(db *sql.DB) *PostgresSettingsRepo {
	return &PostgresSettingsRepo{db: db}
}

var _ SettingsRepository = (*PostgresSettingsRepo)(nil)

// Match selects every globally active subscriber whose threshold for the
// device is strictly below the temperature. Ordered by subscriber id for
// determinism; fan-out itself is order-insensitive.
func (r *PostgresSettingsRepo) Match(ctx context.Context, deviceID string, temperature float64) ([]domain.AlertTarget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT s.subscriber_id, s.endpoint, s.p256dh, s.auth, s.is_active, s.created_at,
		       sds.custom_threshold
		FROM subscriber_device_settings sds
		JOIN subscribers s ON s.subscriber_id = sds.subscriber_id
		WHERE sds.device_id = $1
		  AND s.is_active
		  AND sds.custom_threshold < $2
		ORDER BY s.subscriber_id
	`, deviceID, temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to query alert targets: %w", err)
	}
	defer rows.Close()

	var targets []domain.AlertTarget
	for rows.Next() {
		var t domain.AlertTarget
		if err := rows.Scan(
			&t.Subscriber.ID, &t.Subscriber.Endpoint, &t.Subscriber.P256dh,
			&t.Subscriber.Auth, &t.Subscriber.IsActive, &t.Subscriber.CreatedAt,
			&t.Threshold,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alert target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate alert targets: %w", err)
	}
	return targets, nil
}

func (r *PostgresSettingsRepo) UpdateThreshold(ctx context.Context, endpoint, deviceID string, threshold float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscriber_device_settings
		SET custom_threshold = $1
		WHERE device_id = $2
		  AND subscriber_id = (SELECT subscriber_id FROM subscribers WHERE endpoint = $3)
	`, threshold, deviceID, endpoint)
	if err != nil {
		return fmt.Errorf("failed to update threshold: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresSettingsRepo) ListForSubscriber(ctx context.Context, subscriberID uuid.UUID) ([]domain.SubscriberDeviceSetting, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT subscriber_id, device_id, custom_threshold
		FROM subscriber_device_settings
		WHERE subscriber_id = $1
		ORDER BY device_id
	`, subscriberID)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	var settings []domain.SubscriberDeviceSetting
	for rows.Next() {
		var s domain.SubscriberDeviceSetting
		if err := rows.Scan(&s.SubscriberID, &s.DeviceID, &s.CustomThreshold); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings = append(settings, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}
	return settings, nil
}
