package domain

import "time"

// Device is a physical sensor unit, identified by the string key embedded in
// its MQTT topic. Devices are provisioned automatically on first sight and
// never deleted by this service.
type Device struct {
	ID        string    `json:"device_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// NewDevice returns a device with provisioning defaults: the name falls back
// to the identifier and the location is unknown until an operator sets it.
func NewDevice(id string) *Device {
	return &Device{
		ID:       id,
		Name:     id,
		Location: "unknown",
		IsActive: true,
	}
}
