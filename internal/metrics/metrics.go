package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paynotify_webhook_events_total",
			Help: "Inbound Stripe webhook calls by outcome",
		},
		[]string{"outcome"}, // queued|ignored|rejected|publish_failed
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paynotify_notifications_total",
			Help: "Notification channel attempts by channel and result",
		},
		[]string{"channel", "result"}, // email|sms , sent|failed|skipped
	)

	MessagesProcessedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "paynotify_queue_messages_total",
			Help: "Queue messages consumed by the notifier, by terminal status",
		},
		[]string{"status"}, // sent|skipped|failed
	)
)

var once sync.Once

// MustRegister registers the collectors once per process.
func MustRegister(r prometheus.Registerer) {
	once.Do(func() {
		r.MustRegister(
			WebhookEventsTotal,
			NotificationsTotal,
			MessagesProcessedTotal,
		)
	})
}
