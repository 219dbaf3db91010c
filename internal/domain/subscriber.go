package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultThreshold is the alert threshold (°C) assigned to every new
// (subscriber, device) pair.
const DefaultThreshold = 8.0

// Subscriber is a registered web-push endpoint. The endpoint URL is unique;
// P256dh and Auth carry the browser's encryption key material.
type Subscriber struct {
	ID        uuid.UUID `json:"subscriber_id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// SubscriberDeviceSetting is the per-subscriber, per-device alert threshold.
// Exactly one row exists for every (subscriber, device) pair that has
// coexisted, unless removed by the dead-endpoint cascade.
type SubscriberDeviceSetting struct {
	SubscriberID    uuid.UUID `json:"subscriber_id"`
	DeviceID        string    `json:"device_id"`
	CustomThreshold float64   `json:"custom_threshold"`
}

// AlertTarget is one matcher result: a subscriber whose threshold was
// exceeded, with the threshold that matched.
type AlertTarget struct {
	Subscriber Subscriber
	Threshold  float64
}
