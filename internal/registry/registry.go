package registry

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
	"github.com/mafius22/smart-fridge/internal/repository"
)

// Registry resolves device identifiers to provisioned device rows, creating
// them on first sight. Safe for concurrent callers.
type Registry struct {
	cache   *DeviceCache
	devices repository.DevicesRepository
	logger  *zap.Logger
}

func NewRegistry(cache *DeviceCache, devices repository.DevicesRepository, logger *zap.Logger) *Registry {
	return &Registry{
		cache:   cache,
		devices: devices,
		logger:  logger,
	}
}

// Preload seeds the cache with every device identifier already in the store.
// A failure leaves the cache empty; EnsureDevice then falls back to a store
// lookup per identifier, which is slower but not incorrect.
func (r *Registry) Preload(ctx context.Context) error {
	ids, err := r.devices.ListDeviceIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to preload device cache: %w", err)
	}
	for _, id := range ids {
		r.cache.Insert(id)
	}
	r.logger.Info("Device cache preloaded", zap.Int("devices", len(ids)))
	return nil
}

// EnsureDevice guarantees a device row exists for the identifier. Idempotent
// under concurrency: two callers can both miss the cache and the store
// lookup, and both attempt the insert; the loser gets the store's uniqueness
// violation, which is reconciled silently rather than surfaced.
func (r *Registry) EnsureDevice(ctx context.Context, id string) error {
	if r.cache.Contains(id) {
		return nil
	}

	_, err := r.devices.GetDevice(ctx, id)
	if err == nil {
		r.cache.Insert(id)
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up device %s: %w", id, err)
	}

	err = r.devices.CreateDevice(ctx, domain.NewDevice(id))
	if errors.Is(err, repository.ErrDeviceExists) {
		// Lost the provisioning race; someone else just created it.
		r.cache.Insert(id)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to provision device %s: %w", id, err)
	}

	r.cache.Insert(id)
	r.logger.Info("New device discovered", zap.String("device_id", id))
	return nil
}
