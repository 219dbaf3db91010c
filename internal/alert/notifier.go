package alert

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/mafius22/smart-fridge/internal/domain"
)

// Outcome classifies one delivery attempt.
type Outcome int

const (
	// Delivered means the push service accepted the message.
	Delivered Outcome = iota
	// TransientFailure means delivery failed but the endpoint may recover;
	// the alert is dropped (no retry in this design).
	TransientFailure
	// PermanentlyGone means the push service reported the endpoint dead
	// (HTTP 410/404); the subscriber must be removed.
	PermanentlyGone
)

func (o Outcome) String() string {
	switch o {
	case Delivered:
		return "delivered"
	case TransientFailure:
		return "transient_failure"
	case PermanentlyGone:
		return "permanently_gone"
	default:
		return "unknown"
	}
}

// Notifier delivers one alert to one subscriber endpoint.
type Notifier interface {
	Notify(ctx context.Context, sub domain.Subscriber, deviceID string, temperature, threshold float64) Outcome
}

// alertPayload matches what the frontend service worker displays.
type alertPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Icon  string `json:"icon"`
}

// WebPushNotifier sends VAPID-signed web-push notifications. Delivery is
// fire-and-forget: the only outcome that mutates state is a confirmed-dead
// endpoint, handled by the caller.
type WebPushNotifier struct {
	vapidPublicKey  string
	vapidPrivateKey string
	subject         string
	logger          *zap.Logger
}

func NewWebPushNotifier(vapidPublicKey, vapidPrivateKey, subject string, logger *zap.Logger) *WebPushNotifier {
	return &WebPushNotifier{
		vapidPublicKey:  vapidPublicKey,
		vapidPrivateKey: vapidPrivateKey,
		subject:         subject,
		logger:          logger,
	}
}

var _ Notifier = (*WebPushNotifier)(nil)

func (n *WebPushNotifier) Notify(ctx context.Context, sub domain.Subscriber, deviceID string, temperature, threshold float64) Outcome {
	payload, err := json.Marshal(alertPayload{
		Title: "Temperature alarm",
		Body:  fmt.Sprintf("Temperature reached %.1f°C in fridge %s", temperature, deviceID),
		Icon:  "/vite.svg",
	})
	if err != nil {
		n.logger.Error("Failed to marshal alert payload", zap.Error(err))
		return TransientFailure
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      n.subject,
		VAPIDPublicKey:  n.vapidPublicKey,
		VAPIDPrivateKey: n.vapidPrivateKey,
		TTL:             86400,
		Urgency:         webpush.UrgencyHigh,
	})
	if err != nil {
		n.logger.Error("Push delivery failed",
			zap.String("subscriber_id", sub.ID.String()),
			zap.Error(err),
		)
		return TransientFailure
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusGone || resp.StatusCode == http.StatusNotFound:
		return PermanentlyGone
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return Delivered
	default:
		n.logger.Error("Push service rejected delivery",
			zap.String("subscriber_id", sub.ID.String()),
			zap.Int("status", resp.StatusCode),
		)
		return TransientFailure
	}
}
