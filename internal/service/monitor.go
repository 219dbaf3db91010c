package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/alert"
	"github.com/mafius22/smart-fridge/internal/cache"
	"github.com/mafius22/smart-fridge/internal/config"
	httpapi "github.com/mafius22/smart-fridge/internal/http"
	"github.com/mafius22/smart-fridge/internal/ingest"
	"github.com/mafius22/smart-fridge/internal/registry"
	"github.com/mafius22/smart-fridge/internal/repository"
	"github.com/mafius22/smart-fridge/pkg/database"
	mqttcommon "github.com/mafius22/smart-fridge/pkg/mqtt"
	rediscommon "github.com/mafius22/smart-fridge/pkg/redis"
)

// Monitor assembles the whole service: store, cache, MQTT ingestion and the
// HTTP API share one process. The ingestion consumer runs on the MQTT
// client's callback goroutine; HTTP handlers run on server goroutines. The
// known-device cache and the sql.DB pool are the shared state between them.
type Monitor struct {
	config      *config.Config
	logger      *zap.Logger
	db          *sql.DB
	redisClient *rediscommon.Client
	mqttClient  *mqttcommon.Client

	deviceRegistry *registry.Registry
	consumer       *ingest.Consumer
	server         *Server

	serverErr chan error
}

// NewMonitor connects to Postgres, Redis and the MQTT broker and wires every
// component. Redis being down is a warning, not a startup failure: the
// latest-reading cache degrades to store reads.
func NewMonitor(cfg *config.Config, logger *zap.Logger) (*Monitor, error) {
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	redisClient := rediscommon.NewRedisClient(&cfg.Redis)
	if err := rediscommon.Ping(context.Background(), redisClient); err != nil {
		logger.Warn("Redis unavailable, latest-reading cache disabled", zap.Error(err))
	}

	mqttClient, err := mqttcommon.NewClient(&cfg.MQTT, logger)
	if err != nil {
		database.Close(db)
		return nil, fmt.Errorf("failed to connect to MQTT: %w", err)
	}

	devicesRepo := repository.NewPostgresDevicesRepo(db, logger)
	measurementsRepo := repository.NewPostgresMeasurementsRepo(db)
	subscribersRepo := repository.NewPostgresSubscribersRepo(db, logger)
	settingsRepo := repository.NewPostgresSettingsRepo(db)

	deviceCache := registry.NewDeviceCache()
	deviceRegistry := registry.NewRegistry(deviceCache, devicesRepo, logger)

	latestCache := cache.NewLatestCache(redisClient, cfg.Cache.LatestTTL, logger)

	notifier := alert.NewWebPushNotifier(
		cfg.Push.VAPIDPublicKey,
		cfg.Push.VAPIDPrivateKey,
		cfg.Push.Subject,
		logger,
	)
	alerter := alert.NewAlerter(settingsRepo, subscribersRepo, notifier, logger)

	consumer := ingest.NewConsumer(cfg, mqttClient, deviceRegistry, measurementsRepo, latestCache, alerter, logger)

	statusHandler := httpapi.NewStatusHandler(devicesRepo, measurementsRepo, latestCache, cfg.Push.VAPIDPublicKey, logger)
	measurementHandler := httpapi.NewMeasurementHandler(measurementsRepo, logger)
	subscriptionHandler := httpapi.NewSubscriptionHandler(subscribersRepo, settingsRepo, logger)

	router := httpapi.NewRouter(logger)
	router.RegisterAPIRoutes(statusHandler, measurementHandler, subscriptionHandler)

	server := NewServer(cfg.HTTP.Addr, router, logger)

	return &Monitor{
		config:         cfg,
		logger:         logger,
		db:             db,
		redisClient:    redisClient,
		mqttClient:     mqttClient,
		deviceRegistry: deviceRegistry,
		consumer:       consumer,
		server:         server,
		serverErr:      make(chan error, 1),
	}, nil
}

// Start preloads the device cache, subscribes the consumer and launches the
// HTTP server. A preload failure only degrades the provisioning fast path.
func (m *Monitor) Start(ctx context.Context) error {
	if err := m.deviceRegistry.Preload(ctx); err != nil {
		m.logger.Warn("Device cache preload failed, continuing with empty cache", zap.Error(err))
	}

	if err := m.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}

	go func() {
		if err := m.server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.serverErr <- err
		}
	}()

	m.logger.Info("Smart-fridge monitor started")
	return nil
}

// ServerErr reports a fatal HTTP server failure, if any.
func (m *Monitor) ServerErr() <-chan error {
	return m.serverErr
}

// Stop shuts everything down in reverse order: stop accepting messages, let
// in-flight work drain, then release connections.
func (m *Monitor) Stop(ctx context.Context) error {
	m.logger.Info("Stopping smart-fridge monitor")

	if m.consumer != nil {
		if err := m.consumer.Stop(ctx); err != nil {
			m.logger.Error("Error stopping consumer", zap.Error(err))
		}
	}

	if m.mqttClient != nil {
		m.mqttClient.Disconnect()
	}

	if m.server != nil {
		if err := m.server.Stop(ctx); err != nil {
			m.logger.Error("Error stopping HTTP server", zap.Error(err))
		}
	}

	if m.redisClient != nil {
		rediscommon.Close(m.redisClient)
	}

	if m.db != nil {
		database.Close(m.db)
	}

	m.logger.Info("Smart-fridge monitor stopped")
	return nil
}
