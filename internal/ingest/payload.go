package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	errBadTopic        = errors.New("topic does not match esp32/smartfridge/{device_id}/data")
	errMissingTemp     = errors.New("payload has no temp field")
	errMissingPressure = errors.New("payload has no press field")
)

// telemetry is the flat record devices publish. ts is optional (devices
// without a synced clock omit it or send 0); press may be absent depending
// on the sensor board revision.
type telemetry struct {
	Ts    *int64   `json:"ts"`
	Temp  *float64 `json:"temp"`
	Press *float64 `json:"press"`
}

// deviceIDFromTopic extracts the device identifier from the third segment of
// the fixed topic shape esp32/smartfridge/{device_id}/data.
func deviceIDFromTopic(topic string) (string, error) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != "esp32" || parts[1] != "smartfridge" || parts[3] != "data" {
		return "", fmt.Errorf("%w: %s", errBadTopic, topic)
	}
	if parts[2] == "" {
		return "", fmt.Errorf("%w: %s", errBadTopic, topic)
	}
	return parts[2], nil
}

// decodeTelemetry parses and validates one payload. Temperature is always
// required; pressure only when requirePressure is set (older boards report
// temperature only, and a missing press persists as 0).
func decodeTelemetry(payload []byte, requirePressure bool) (*telemetry, error) {
	var t telemetry
	if err := json.Unmarshal(payload, &t); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry: %w", err)
	}
	if t.Temp == nil {
		return nil, errMissingTemp
	}
	if requirePressure && t.Press == nil {
		return nil, errMissingPressure
	}
	return &t, nil
}

func (t *telemetry) pressure() float64 {
	if t.Press == nil {
		return 0
	}
	return *t.Press
}
