package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
	"github.com/mafius22/smart-fridge/internal/repository"
)

// MeasurementHandler serves historical queries over persisted telemetry.
type MeasurementHandler struct {
	measurements repository.MeasurementsRepository
	logger       *zap.Logger
}

func NewMeasurementHandler(measurements repository.MeasurementsRepository, logger *zap.Logger) *MeasurementHandler {
	return &MeasurementHandler{
		measurements: measurements,
		logger:       logger,
	}
}

type historyResponse struct {
	Count        int              `json:"count"`
	Range        historyRange     `json:"range"`
	DeviceFilter string           `json:"device_filter"`
	Data         []domain.Reading `json:"data"`
}

type historyRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// parseRangeParam accepts RFC 3339 timestamps or bare dates. A bare date
// widens to the start or end of that day so "2025-01-01".."2025-01-02"
// covers both days fully.
func parseRangeParam(value string, endOfDay bool) (time.Time, error) {
	if len(value) == 10 {
		if endOfDay {
			value += "T23:59:59Z"
		} else {
			value += "T00:00:00Z"
		}
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date: %s", value)
	}
	return t, nil
}

func (h *MeasurementHandler) queryRange(req *http.Request) ([]*domain.Measurement, historyRange, string, error) {
	startStr := req.URL.Query().Get("start")
	endStr := req.URL.Query().Get("end")
	deviceID := req.URL.Query().Get("device_id")

	if startStr == "" || endStr == "" {
		return nil, historyRange{}, "", fmt.Errorf("start and end parameters are required")
	}

	start, err := parseRangeParam(startStr, false)
	if err != nil {
		return nil, historyRange{}, "", err
	}
	end, err := parseRangeParam(endStr, true)
	if err != nil {
		return nil, historyRange{}, "", err
	}

	measurements, err := h.measurements.ListRange(req.Context(), deviceID, start, end)
	if err != nil {
		return nil, historyRange{}, "", err
	}

	filter := deviceID
	if filter == "" {
		filter = "ALL"
	}
	return measurements, historyRange{Start: startStr, End: endStr}, filter, nil
}

func (h *MeasurementHandler) GetHistory(w http.ResponseWriter, req *http.Request) {
	measurements, rng, filter, err := h.queryRange(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := make([]domain.Reading, 0, len(measurements))
	for _, m := range measurements {
		data = append(data, m.ToReading())
	}

	writeJSON(w, http.StatusOK, historyResponse{
		Count:        len(data),
		Range:        rng,
		DeviceFilter: filter,
		Data:         data,
	})
}

// ExportHistory returns the same range as an Excel workbook.
func (h *MeasurementHandler) ExportHistory(w http.ResponseWriter, req *http.Request) {
	measurements, _, _, err := h.queryRange(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	content, err := generateMeasurementExport(measurements)
	if err != nil {
		h.logger.Error("Failed to generate export", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to generate export")
		return
	}

	filename := fmt.Sprintf("measurements_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}
