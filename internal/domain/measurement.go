package domain

import "time"

// Measurement is one telemetry reading. RecordedAt is the server receipt
// time; SourceTS is the reconciled device-reported timestamp (seconds since
// epoch). Rows are immutable once written.
type Measurement struct {
	ID          int64     `json:"id"`
	DeviceID    string    `json:"device_id"`
	RecordedAt  time.Time `json:"recorded_at"`
	SourceTS    int64     `json:"source_ts"`
	Temperature float64   `json:"temperature"`
	Pressure    float64   `json:"pressure"`
}

// Reading is the wire shape the HTTP API returns for a single measurement,
// kept compatible with the frontend's expectations.
type Reading struct {
	DeviceID string  `json:"device_id"`
	Temp     float64 `json:"temp"`
	Press    float64 `json:"press"`
	Time     string  `json:"time"`
}

// ToReading converts a measurement to its API shape.
func (m *Measurement) ToReading() Reading {
	return Reading{
		DeviceID: m.DeviceID,
		Temp:     m.Temperature,
		Press:    m.Pressure,
		Time:     m.RecordedAt.UTC().Format(time.RFC3339),
	}
}
