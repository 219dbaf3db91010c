package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

func TestParseRangeParam(t *testing.T) {
	start, err := parseRangeParam("2025-06-01", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), start)

	end, err := parseRangeParam("2025-06-01", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 23, 59, 59, 0, time.UTC), end)

	exact, err := parseRangeParam("2025-06-01T12:30:00Z", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC), exact)

	_, err = parseRangeParam("yesterday", false)
	assert.Error(t, err)
}

func TestGetHistory(t *testing.T) {
	repo := &fakeMeasurementsRepo{ranged: []*domain.Measurement{
		{DeviceID: "devA", RecordedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), Temperature: 4.5, Pressure: 100000},
		{DeviceID: "devA", RecordedAt: time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC), Temperature: 5.1, Pressure: 100010},
	}}
	h := NewMeasurementHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/measurements?start=2025-06-01&end=2025-06-02&device_id=devA", nil)
	rec := httptest.NewRecorder()
	h.GetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, "devA", resp.DeviceFilter)
	assert.Equal(t, "2025-06-01", resp.Range.Start)
	require.Len(t, resp.Data, 2)
	assert.Equal(t, 4.5, resp.Data[0].Temp)
	assert.Equal(t, "2025-06-01T10:00:00Z", resp.Data[0].Time)

	// A bare end date widens to the end of that day.
	assert.Equal(t, "devA", repo.rangeDeviceID)
	assert.Equal(t, time.Date(2025, 6, 2, 23, 59, 59, 0, time.UTC), repo.rangeEnd)
}

func TestGetHistory_AllDevices(t *testing.T) {
	repo := &fakeMeasurementsRepo{}
	h := NewMeasurementHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/measurements?start=2025-06-01&end=2025-06-02", nil)
	rec := httptest.NewRecorder()
	h.GetHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ALL", resp.DeviceFilter)
	assert.Equal(t, 0, resp.Count)
	assert.Empty(t, repo.rangeDeviceID)
}

func TestGetHistory_MissingRange(t *testing.T) {
	h := NewMeasurementHandler(&fakeMeasurementsRepo{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/measurements?start=2025-06-01", nil)
	rec := httptest.NewRecorder()
	h.GetHistory(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetHistory_BadDate(t *testing.T) {
	h := NewMeasurementHandler(&fakeMeasurementsRepo{}, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/measurements?start=junk&end=2025-06-02", nil)
	rec := httptest.NewRecorder()
	h.GetHistory(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportHistory(t *testing.T) {
	repo := &fakeMeasurementsRepo{ranged: []*domain.Measurement{
		{DeviceID: "devA", RecordedAt: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), SourceTS: 1748772000, Temperature: 4.5, Pressure: 100000},
	}}
	h := NewMeasurementHandler(repo, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/measurements/export?start=2025-06-01&end=2025-06-02", nil)
	rec := httptest.NewRecorder()
	h.ExportHistory(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.NotEmpty(t, rec.Body.Bytes())
}
