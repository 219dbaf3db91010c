package alert

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

// Matcher computes the subscribers whose alert condition a temperature meets.
type Matcher interface {
	Match(ctx context.Context, deviceID string, temperature float64) ([]domain.AlertTarget, error)
}

// SubscriberRemover deletes a subscriber and its settings transactionally.
type SubscriberRemover interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// Alerter fans one measurement out to every qualifying subscriber. There is
// no de-duplication window: a device oscillating around a threshold produces
// one alert per qualifying measurement, which is accepted behavior.
type Alerter struct {
	matcher     Matcher
	subscribers SubscriberRemover
	notifier    Notifier
	logger      *zap.Logger
}

func NewAlerter(matcher Matcher, subscribers SubscriberRemover, notifier Notifier, logger *zap.Logger) *Alerter {
	return &Alerter{
		matcher:     matcher,
		subscribers: subscribers,
		notifier:    notifier,
		logger:      logger,
	}
}

// Evaluate matches the temperature against per-subscriber thresholds and
// notifies each match sequentially. A dead endpoint triggers the cascade
// delete so later passes never re-select it; transient failures are logged
// and dropped.
func (a *Alerter) Evaluate(ctx context.Context, deviceID string, temperature float64) error {
	targets, err := a.matcher.Match(ctx, deviceID, temperature)
	if err != nil {
		return fmt.Errorf("failed to match subscribers: %w", err)
	}
	if len(targets) == 0 {
		return nil
	}

	for _, target := range targets {
		outcome := a.notifier.Notify(ctx, target.Subscriber, deviceID, temperature, target.Threshold)
		switch outcome {
		case Delivered:
			a.logger.Debug("Alert delivered",
				zap.String("device_id", deviceID),
				zap.String("subscriber_id", target.Subscriber.ID.String()),
				zap.Float64("temperature", temperature),
				zap.Float64("threshold", target.Threshold),
			)
		case PermanentlyGone:
			a.logger.Info("Removing subscriber with dead endpoint",
				zap.String("subscriber_id", target.Subscriber.ID.String()),
			)
			if err := a.subscribers.Delete(ctx, target.Subscriber.ID); err != nil {
				a.logger.Error("Failed to delete dead subscriber",
					zap.String("subscriber_id", target.Subscriber.ID.String()),
					zap.Error(err),
				)
			}
		case TransientFailure:
			// Already logged by the notifier; no retry in this design.
		}
	}

	return nil
}
