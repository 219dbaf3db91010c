package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/mafius22/smart-fridge/internal/domain"
)

var (
	// ErrNotFound is returned when a lookup matches no row.
	ErrNotFound = errors.New("not found")
	// ErrDeviceExists signals the expected provisioning race: another caller
	// inserted the same device first. Callers treat it as success.
	ErrDeviceExists = errors.New("device already exists")
)

// DevicesRepository owns device rows and the settings rows created alongside
// a new device.
type DevicesRepository interface {
	// ListDeviceIDs returns every known device identifier (cache preload).
	ListDeviceIDs(ctx context.Context) ([]string, error)
	GetDevice(ctx context.Context, id string) (*domain.Device, error)
	ListDevices(ctx context.Context) ([]*domain.Device, error)

	// CreateDevice inserts the device and, in the same transaction, one
	// default-threshold setting row per currently registered subscriber.
	// Returns ErrDeviceExists on a uniqueness conflict.
	CreateDevice(ctx context.Context, device *domain.Device) error
}

// MeasurementsRepository appends and reads telemetry rows.
type MeasurementsRepository interface {
	Insert(ctx context.Context, m *domain.Measurement) (int64, error)
	LatestForDevice(ctx context.Context, deviceID string) (*domain.Measurement, error)
	// ListRange returns measurements in [start, end], oldest first.
	// deviceID == "" means all devices.
	ListRange(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.Measurement, error)
}

// SubscribersRepository owns subscriber rows and their lifecycle, including
// the explicit cascading delete of per-device settings.
type SubscribersRepository interface {
	// Register inserts a subscriber and, in the same transaction, one
	// default-threshold setting row per existing device. A duplicate
	// endpoint returns the existing row with created=false.
	Register(ctx context.Context, endpoint, p256dh, auth string) (sub *domain.Subscriber, created bool, err error)
	GetByEndpoint(ctx context.Context, endpoint string) (*domain.Subscriber, error)
	SetActive(ctx context.Context, endpoint string, active bool) error

	// Delete removes the subscriber and all of its settings transactionally.
	Delete(ctx context.Context, id uuid.UUID) error
}

// SettingsRepository reads and updates per-device thresholds.
type SettingsRepository interface {
	// Match returns every active subscriber whose threshold for the device
	// is strictly below the temperature. An empty result is the common case,
	// not an error.
	Match(ctx context.Context, deviceID string, temperature float64) ([]domain.AlertTarget, error)
	UpdateThreshold(ctx context.Context, endpoint, deviceID string, threshold float64) error
	ListForSubscriber(ctx context.Context, subscriberID uuid.UUID) ([]domain.SubscriberDeviceSetting, error)
}
