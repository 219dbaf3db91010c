package httpapi

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mafius22/smart-fridge/internal/cache"
	"github.com/mafius22/smart-fridge/internal/domain"
	"github.com/mafius22/smart-fridge/internal/repository"
)

type fakeDevicesRepo struct {
	devices []*domain.Device
	listErr error
}

func (f *fakeDevicesRepo) ListDeviceIDs(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.devices))
	for _, d := range f.devices {
		ids = append(ids, d.ID)
	}
	return ids, f.listErr
}

func (f *fakeDevicesRepo) GetDevice(ctx context.Context, id string) (*domain.Device, error) {
	for _, d := range f.devices {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeDevicesRepo) ListDevices(ctx context.Context) ([]*domain.Device, error) {
	return f.devices, f.listErr
}

func (f *fakeDevicesRepo) CreateDevice(ctx context.Context, device *domain.Device) error {
	f.devices = append(f.devices, device)
	return nil
}

type fakeMeasurementsRepo struct {
	byDevice map[string]*domain.Measurement
	ranged   []*domain.Measurement

	rangeDeviceID string
	rangeStart    time.Time
	rangeEnd      time.Time
}

func (f *fakeMeasurementsRepo) Insert(ctx context.Context, m *domain.Measurement) (int64, error) {
	return 1, nil
}

func (f *fakeMeasurementsRepo) LatestForDevice(ctx context.Context, deviceID string) (*domain.Measurement, error) {
	if m, ok := f.byDevice[deviceID]; ok {
		return m, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeMeasurementsRepo) ListRange(ctx context.Context, deviceID string, start, end time.Time) ([]*domain.Measurement, error) {
	f.rangeDeviceID = deviceID
	f.rangeStart = start
	f.rangeEnd = end
	return f.ranged, nil
}

type fakeSubscribersRepo struct {
	subs    map[string]*domain.Subscriber
	created bool

	registerErr error
	deleted     []uuid.UUID
}

func (f *fakeSubscribersRepo) Register(ctx context.Context, endpoint, p256dh, auth string) (*domain.Subscriber, bool, error) {
	if f.registerErr != nil {
		return nil, false, f.registerErr
	}
	if sub, ok := f.subs[endpoint]; ok {
		return sub, false, nil
	}
	sub := &domain.Subscriber{
		ID:       uuid.New(),
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
		IsActive: true,
	}
	if f.subs == nil {
		f.subs = make(map[string]*domain.Subscriber)
	}
	f.subs[endpoint] = sub
	f.created = true
	return sub, true, nil
}

func (f *fakeSubscribersRepo) GetByEndpoint(ctx context.Context, endpoint string) (*domain.Subscriber, error) {
	if sub, ok := f.subs[endpoint]; ok {
		return sub, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeSubscribersRepo) SetActive(ctx context.Context, endpoint string, active bool) error {
	sub, ok := f.subs[endpoint]
	if !ok {
		return repository.ErrNotFound
	}
	sub.IsActive = active
	return nil
}

func (f *fakeSubscribersRepo) Delete(ctx context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeSettingsRepo struct {
	settings   []domain.SubscriberDeviceSetting
	thresholds map[string]float64 // endpoint+"/"+deviceID -> value
}

func (f *fakeSettingsRepo) Match(ctx context.Context, deviceID string, temperature float64) ([]domain.AlertTarget, error) {
	return nil, nil
}

func (f *fakeSettingsRepo) UpdateThreshold(ctx context.Context, endpoint, deviceID string, threshold float64) error {
	key := endpoint + "/" + deviceID
	if f.thresholds == nil {
		return repository.ErrNotFound
	}
	if _, ok := f.thresholds[key]; !ok {
		return repository.ErrNotFound
	}
	f.thresholds[key] = threshold
	return nil
}

func (f *fakeSettingsRepo) ListForSubscriber(ctx context.Context, subscriberID uuid.UUID) ([]domain.SubscriberDeviceSetting, error) {
	var out []domain.SubscriberDeviceSetting
	for _, s := range f.settings {
		if s.SubscriberID == subscriberID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeLatestGetter struct {
	byDevice map[string]*domain.Measurement
	err      error
}

func (f *fakeLatestGetter) Get(ctx context.Context, deviceID string) (*domain.Measurement, error) {
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.byDevice[deviceID]; ok {
		return m, nil
	}
	return nil, cache.ErrMiss
}
