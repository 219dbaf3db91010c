package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/repository"
)

// SubscriptionHandler manages web-push subscriber registration and settings.
type SubscriptionHandler struct {
	subscribers repository.SubscribersRepository
	settings    repository.SettingsRepository
	logger      *zap.Logger
}

func NewSubscriptionHandler(
	subscribers repository.SubscribersRepository,
	settings repository.SettingsRepository,
	logger *zap.Logger,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscribers: subscribers,
		settings:    settings,
		logger:      logger,
	}
}

// subscribeRequest mirrors the PushSubscription JSON a browser produces.
type subscribeRequest struct {
	Endpoint string `json:"endpoint"`
	Keys     struct {
		P256dh string `json:"p256dh"`
		Auth   string `json:"auth"`
	} `json:"keys"`
}

type subscribeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, req *http.Request) {
	var body subscribeRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Endpoint == "" || body.Keys.P256dh == "" || body.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "endpoint and keys are required")
		return
	}

	_, created, err := h.subscribers.Register(req.Context(), body.Endpoint, body.Keys.P256dh, body.Keys.Auth)
	if err != nil {
		h.logger.Error("Failed to register subscriber", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to register subscriber")
		return
	}

	if created {
		writeJSON(w, http.StatusCreated, subscribeResponse{Success: true, Message: "subscribed"})
		return
	}
	writeJSON(w, http.StatusOK, subscribeResponse{Success: true, Message: "already subscribed"})
}

type updateSettingsRequest struct {
	Endpoint        string   `json:"endpoint"`
	IsActive        *bool    `json:"is_active"`
	DeviceID        string   `json:"device_id"`
	CustomThreshold *float64 `json:"custom_threshold"`
}

// UpdateSettings changes the global active flag and/or one per-device
// threshold. Only the fields present in the body are touched.
func (h *SubscriptionHandler) UpdateSettings(w http.ResponseWriter, req *http.Request) {
	var body updateSettingsRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	ctx := req.Context()

	if body.IsActive != nil {
		if err := h.subscribers.SetActive(ctx, body.Endpoint, *body.IsActive); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "subscription not found")
				return
			}
			h.logger.Error("Failed to update subscriber", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update subscriber")
			return
		}
	}

	if body.CustomThreshold != nil {
		if body.DeviceID == "" {
			writeError(w, http.StatusBadRequest, "device_id is required with custom_threshold")
			return
		}
		if err := h.settings.UpdateThreshold(ctx, body.Endpoint, body.DeviceID, *body.CustomThreshold); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "setting not found")
				return
			}
			h.logger.Error("Failed to update threshold", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to update threshold")
			return
		}
	}

	writeJSON(w, http.StatusOK, subscribeResponse{Success: true, Message: "settings updated"})
}

type settingsResponse struct {
	Endpoint string              `json:"endpoint"`
	IsActive bool                `json:"is_active"`
	Devices  []deviceSettingItem `json:"devices"`
}

type deviceSettingItem struct {
	DeviceID        string  `json:"device_id"`
	CustomThreshold float64 `json:"custom_threshold"`
}

func (h *SubscriptionHandler) GetSettings(w http.ResponseWriter, req *http.Request) {
	endpoint := req.URL.Query().Get("endpoint")
	if endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint parameter is required")
		return
	}

	ctx := req.Context()

	sub, err := h.subscribers.GetByEndpoint(ctx, endpoint)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "subscription not found")
			return
		}
		h.logger.Error("Failed to query subscriber", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to query subscriber")
		return
	}

	settings, err := h.settings.ListForSubscriber(ctx, sub.ID)
	if err != nil {
		h.logger.Error("Failed to query settings", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to query settings")
		return
	}

	resp := settingsResponse{
		Endpoint: sub.Endpoint,
		IsActive: sub.IsActive,
		Devices:  make([]deviceSettingItem, 0, len(settings)),
	}
	for _, s := range settings {
		resp.Devices = append(resp.Devices, deviceSettingItem{
			DeviceID:        s.DeviceID,
			CustomThreshold: s.CustomThreshold,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}
