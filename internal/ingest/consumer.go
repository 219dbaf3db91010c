package ingest

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/config"
	"github.com/mafius22/smart-fridge/internal/domain"
	"github.com/mafius22/smart-fridge/internal/registry"
	"github.com/mafius22/smart-fridge/internal/repository"
	mqttcommon "github.com/mafius22/smart-fridge/pkg/mqtt"
)

// MessageBus is the slice of the MQTT client the consumer needs.
type MessageBus interface {
	Subscribe(topic string, qos byte, handler mqttcommon.MessageHandler) error
	Unsubscribe(topics ...string) error
}

// Alerter evaluates a persisted temperature against subscriber thresholds
// and dispatches notifications.
type Alerter interface {
	Evaluate(ctx context.Context, deviceID string, temperature float64) error
}

// LatestSetter caches the newest reading per device.
type LatestSetter interface {
	Set(ctx context.Context, deviceID string, m *domain.Measurement) error
}

// Consumer subscribes to the telemetry topic and drives each message through
// reconcile -> provision -> persist -> alert. Messages are processed to
// completion one at a time on the MQTT client's callback goroutine; failures
// abandon the message and the consumer moves on (no retry queue).
type Consumer struct {
	cfg          *config.Config
	bus          MessageBus
	registry     *registry.Registry
	measurements repository.MeasurementsRepository
	latest       LatestSetter
	alerter      Alerter
	logger       *zap.Logger
	now          func() time.Time
}

func NewConsumer(
	cfg *config.Config,
	bus MessageBus,
	reg *registry.Registry,
	measurements repository.MeasurementsRepository,
	latest LatestSetter,
	alerter Alerter,
	logger *zap.Logger,
) *Consumer {
	return &Consumer{
		cfg:          cfg,
		bus:          bus,
		registry:     reg,
		measurements: measurements,
		latest:       latest,
		alerter:      alerter,
		logger:       logger,
		now:          time.Now,
	}
}

// Start subscribes to the data topic.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.bus.Subscribe(c.cfg.Ingest.Topic, c.cfg.MQTT.QoS, c.handleMessage); err != nil {
		return fmt.Errorf("failed to subscribe to data topic: %w", err)
	}

	c.logger.Info("Telemetry consumer started",
		zap.String("topic", c.cfg.Ingest.Topic),
	)
	return nil
}

// Stop unsubscribes. Any in-flight message finishes on the MQTT callback
// goroutine before the client disconnects.
func (c *Consumer) Stop(ctx context.Context) error {
	if err := c.bus.Unsubscribe(c.cfg.Ingest.Topic); err != nil {
		c.logger.Error("Failed to unsubscribe", zap.Error(err))
	}

	c.logger.Info("Telemetry consumer stopped")
	return nil
}

// handleMessage processes one inbound telemetry message. Returned errors are
// logged by the MQTT wrapper; they never stop the subscription.
func (c *Consumer) handleMessage(topic string, payload []byte) error {
	ctx := context.Background()

	deviceID, err := deviceIDFromTopic(topic)
	if err != nil {
		return err
	}

	data, err := decodeTelemetry(payload, c.cfg.Ingest.RequirePressure)
	if err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}

	now := c.now()
	sourceTS, substituted := ReconcileTimestamp(data.Ts, now)
	if substituted {
		c.logger.Debug("Substituted server time for implausible source timestamp",
			zap.String("device_id", deviceID),
			zap.Int64p("source_ts", data.Ts),
		)
	}

	// Provision before persisting. A failure here is not fatal for the
	// measurement: the insert is still attempted, and alerting is skipped
	// since no matchable device exists.
	provisioned := true
	if err := c.registry.EnsureDevice(ctx, deviceID); err != nil {
		provisioned = false
		c.logger.Error("Device provisioning failed",
			zap.String("device_id", deviceID),
			zap.Error(err),
		)
	}

	m := &domain.Measurement{
		DeviceID:    deviceID,
		RecordedAt:  now,
		SourceTS:    sourceTS,
		Temperature: *data.Temp,
		Pressure:    data.pressure(),
	}

	id, err := c.measurements.Insert(ctx, m)
	if err != nil {
		return fmt.Errorf("device %s: %w", deviceID, err)
	}
	m.ID = id

	c.logger.Debug("Measurement stored",
		zap.String("device_id", deviceID),
		zap.Float64("temperature", m.Temperature),
		zap.Int64("id", id),
	)

	if c.latest != nil {
		if err := c.latest.Set(ctx, deviceID, m); err != nil {
			c.logger.Warn("Failed to update latest-reading cache",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}
	}

	if provisioned {
		if err := c.alerter.Evaluate(ctx, deviceID, m.Temperature); err != nil {
			c.logger.Error("Alert evaluation failed",
				zap.String("device_id", deviceID),
				zap.Error(err),
			)
		}
	}

	return nil
}
