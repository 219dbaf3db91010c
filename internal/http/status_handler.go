package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/cache"
	"github.com/mafius22/smart-fridge/internal/domain"
	"github.com/mafius22/smart-fridge/internal/repository"
)

// LatestGetter reads the cached newest reading per device.
type LatestGetter interface {
	Get(ctx context.Context, deviceID string) (*domain.Measurement, error)
}

// StatusHandler serves the dashboard overview: every device with its latest
// reading, plus the VAPID public key the frontend needs to subscribe.
type StatusHandler struct {
	devices        repository.DevicesRepository
	measurements   repository.MeasurementsRepository
	latest         LatestGetter
	vapidPublicKey string
	logger         *zap.Logger
}

func NewStatusHandler(
	devices repository.DevicesRepository,
	measurements repository.MeasurementsRepository,
	latest LatestGetter,
	vapidPublicKey string,
	logger *zap.Logger,
) *StatusHandler {
	return &StatusHandler{
		devices:        devices,
		measurements:   measurements,
		latest:         latest,
		vapidPublicKey: vapidPublicKey,
		logger:         logger,
	}
}

type deviceStatus struct {
	DeviceID    string          `json:"device_id"`
	Name        string          `json:"name"`
	Location    string          `json:"location"`
	LastReading *domain.Reading `json:"last_reading"`
}

type statusResponse struct {
	VAPIDPublicKey string         `json:"vapid_public_key"`
	Devices        []deviceStatus `json:"devices"`
}

func (h *StatusHandler) GetStatus(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	devices, err := h.devices.ListDevices(ctx)
	if err != nil {
		h.logger.Error("Failed to list devices", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to list devices")
		return
	}

	resp := statusResponse{
		VAPIDPublicKey: h.vapidPublicKey,
		Devices:        make([]deviceStatus, 0, len(devices)),
	}

	for _, dev := range devices {
		ds := deviceStatus{
			DeviceID: dev.ID,
			Name:     dev.Name,
			Location: dev.Location,
		}
		if m := h.latestReading(ctx, dev.ID); m != nil {
			reading := m.ToReading()
			ds.LastReading = &reading
		}
		resp.Devices = append(resp.Devices, ds)
	}

	writeJSON(w, http.StatusOK, resp)
}

// latestReading consults the Redis cache first and falls back to the store.
// Both failing just leaves the reading empty; the dashboard tolerates that.
func (h *StatusHandler) latestReading(ctx context.Context, deviceID string) *domain.Measurement {
	if h.latest != nil {
		m, err := h.latest.Get(ctx, deviceID)
		if err == nil {
			return m
		}
		if !errors.Is(err, cache.ErrMiss) {
			h.logger.Warn("Latest-reading cache lookup failed",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}
	}

	m, err := h.measurements.LatestForDevice(ctx, deviceID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			h.logger.Error("Failed to query latest measurement",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}
		return nil
	}
	return m
}
