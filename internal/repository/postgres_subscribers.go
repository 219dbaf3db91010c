package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

type PostgresSubscribersRepo struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresSubscribersRepo(db *sql.DB, logger *zap.Logger) *PostgresSubscribersRepo {
	return &PostgresSubscribersRepo{db: db, logger: logger}
}

var _ SubscribersRepository = (*PostgresSubscribersRepo)(nil)

// Register inserts the subscriber plus one default-threshold setting per
// existing device in one transaction, keeping the (subscriber, device)
// cross-product complete from the moment the subscriber exists. Registering
// an endpoint that is already present is not an error.
func (r *PostgresSubscribersRepo) Register(ctx context.Context, endpoint, p256dh, auth string) (*domain.Subscriber, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existing domain.Subscriber
	err = tx.QueryRowContext(ctx, `
		SELECT subscriber_id, endpoint, p256dh, auth, is_active, created_at
		FROM subscribers
		WHERE endpoint = $1
	`, endpoint).Scan(&existing.ID, &existing.Endpoint, &existing.P256dh, &existing.Auth, &existing.IsActive, &existing.CreatedAt)
	if err == nil {
		return &existing, false, nil
	}
	if err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to query subscriber: %w", err)
	}

	sub := &domain.Subscriber{
		ID:       uuid.New(),
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
		IsActive: true,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO subscribers (subscriber_id, endpoint, p256dh, auth, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, NOW())
		RETURNING created_at
	`, sub.ID, sub.Endpoint, sub.P256dh, sub.Auth).Scan(&sub.CreatedAt)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert subscriber: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO subscriber_device_settings (subscriber_id, device_id, custom_threshold)
		SELECT $1, device_id, $2 FROM devices
	`, sub.ID, domain.DefaultThreshold)
	if err != nil {
		return nil, false, fmt.Errorf("failed to insert default settings: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit registration: %w", err)
	}

	r.logger.Info("Registered new subscriber",
		zap.String("subscriber_id", sub.ID.String()),
	)
	return sub, true, nil
}

func (r *PostgresSubscribersRepo) GetByEndpoint(ctx context.Context, endpoint string) (*domain.Subscriber, error) {
	var s domain.Subscriber
	err := r.db.QueryRowContext(ctx, `
		SELECT subscriber_id, endpoint, p256dh, auth, is_active, created_at
		FROM subscribers
		WHERE endpoint = $1
	`, endpoint).Scan(&s.ID, &s.Endpoint, &s.P256dh, &s.Auth, &s.IsActive, &s.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query subscriber: %w", err)
	}
	return &s, nil
}

func (r *PostgresSubscribersRepo) SetActive(ctx context.Context, endpoint string, active bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE subscribers SET is_active = $1 WHERE endpoint = $2
	`, active, endpoint)
	if err != nil {
		return fmt.Errorf("failed to update subscriber: %w", err)
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

// Delete removes the subscriber and all of its per-device settings in one
// transaction. This is the dead-endpoint cascade: after it commits the
// matcher can never select the subscriber again.
func (r *PostgresSubscribersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM subscriber_device_settings WHERE subscriber_id = $1
	`, id); err != nil {
		return fmt.Errorf("failed to delete subscriber settings: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM subscribers WHERE subscriber_id = $1
	`, id); err != nil {
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit subscriber deletion: %w", err)
	}

	r.logger.Info("Deleted subscriber",
		zap.String("subscriber_id", id.String()),
	)
	return nil
}
