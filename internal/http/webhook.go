package http

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/metrics"
	"github.com/jmehdipour/paynotify/internal/service/queue"
	"github.com/jmehdipour/paynotify/internal/webhook"
)

// stripeWebhookHandler verifies the delivery on its raw body, then publishes
// recognized events. Stripe retries anything that is not 2xx.
func stripeWebhookHandler(svc *webhook.Service, pub queue.Publisher, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		body, err := io.ReadAll(c.Request().Body)
		if err != nil {
			metrics.WebhookEventsTotal.WithLabelValues("rejected").Inc()
			return c.String(http.StatusBadRequest, "Unable to read request body.")
		}

		res := svc.ProcessEvent(body, c.Request().Header.Get(webhook.SignatureHeader))
		if !res.Valid {
			metrics.WebhookEventsTotal.WithLabelValues("rejected").Inc()
			log.Warn("stripe webhook rejected", zap.String("error", res.Error))
			return c.String(http.StatusBadRequest, res.Error)
		}

		if res.QueueMessage == "" {
			metrics.WebhookEventsTotal.WithLabelValues("ignored").Inc()
			log.Info(res.LogMessage, zap.String("event_id", res.EventID))
			return c.String(http.StatusOK, "Webhook received.")
		}

		if err := pub.Publish(c.Request().Context(), res.EventID, res.QueueMessage); err != nil {
			metrics.WebhookEventsTotal.WithLabelValues("publish_failed").Inc()
			log.Error("publish stripe event",
				zap.String("event_id", res.EventID),
				zap.String("event_type", res.EventType),
				zap.Error(err),
			)
			return c.String(http.StatusInternalServerError, "Failed to queue event.")
		}

		metrics.WebhookEventsTotal.WithLabelValues("queued").Inc()
		log.Info(res.LogMessage, zap.String("event_id", res.EventID), zap.String("event_type", res.EventType))
		return c.String(http.StatusOK, "Webhook received.")
	}
}
