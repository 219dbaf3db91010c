package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

// ErrMiss is returned when no cached reading exists for a device.
var ErrMiss = errors.New("cache miss")

const latestKeyPrefix = "smartfridge:device:"
const latestKeySuffix = ":latest"

// LatestCache keeps the newest reading per device in Redis so the status
// endpoint doesn't hit Postgres for every poll. Strictly a cache: a miss or
// a Redis failure falls back to the store.
type LatestCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewLatestCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *LatestCache {
	return &LatestCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func latestKey(deviceID string) string {
	return latestKeyPrefix + deviceID + latestKeySuffix
}

// Set stores the measurement as the device's latest reading.
func (c *LatestCache) Set(ctx context.Context, deviceID string, m *domain.Measurement) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to marshal measurement: %w", err)
	}
	if err := c.client.Set(ctx, latestKey(deviceID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set latest cache: %w", err)
	}
	return nil
}

// Get returns the cached latest reading, or ErrMiss.
func (c *LatestCache) Get(ctx context.Context, deviceID string) (*domain.Measurement, error) {
	val, err := c.client.Get(ctx, latestKey(deviceID)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrMiss
		}
		return nil, fmt.Errorf("failed to get latest cache: %w", err)
	}

	var m domain.Measurement
	if err := json.Unmarshal([]byte(val), &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached measurement: %w", err)
	}
	return &m, nil
}
