package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/jmehdipour/paynotify/internal/channel"
	"github.com/jmehdipour/paynotify/internal/metrics"
	"github.com/jmehdipour/paynotify/internal/model"
	"github.com/jmehdipour/paynotify/internal/service/queue"
)

// Outcome pairs a result with the contact it was dispatched to.
type Outcome struct {
	Contact model.ContactInfo
	Result  model.NotificationResult
}

// Service turns queue messages into customer notifications.
type Service struct {
	email channel.Sender
	sms   channel.Sender
	log   *zap.Logger
}

// NewService accepts nil senders; a nil sender disables its channel.
func NewService(email, sms channel.Sender, log *zap.Logger) *Service {
	if email == nil {
		email = channel.Disabled(channel.Email)
	}
	if sms == nil {
		sms = channel.Disabled(channel.SMS)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{email: email, sms: sms, log: log}
}

// Process handles one queue message. Failures are reported in the result, never returned.
func (s *Service) Process(ctx context.Context, queueMessage string) model.NotificationResult {
	return s.Handle(ctx, queueMessage).Result
}

// Handle is Process plus the extracted contact.
func (s *Service) Handle(ctx context.Context, queueMessage string) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("notification processing panicked", zap.Any("panic", r))
			out.Result.Success = false
			out.Result.Error = fmt.Sprintf("%v: panic: %v", ErrParse, r)
		}
	}()

	raw, err := queue.Decode(queueMessage)
	if err != nil {
		out.Result = model.NotificationResult{Error: err.Error()}
		return out
	}

	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		out.Result = model.NotificationResult{Error: fmt.Errorf("%w: %v", ErrParse, err).Error()}
		return out
	}
	if env.ID == "" {
		out.Result = model.NotificationResult{Error: fmt.Errorf("%w: missing event id", ErrParse).Error()}
		return out
	}

	out.Contact = Extract(raw)
	out.Result = Dispatch(ctx, out.Contact, s.email, s.sms)
	out.Result.EventID = env.ID
	out.Result.EventType = env.Type

	s.observe(out)
	return out
}

func (s *Service) observe(o Outcome) {
	count := func(ch, to, status string, enabled bool) {
		switch {
		case !enabled || to == "":
			metrics.NotificationsTotal.WithLabelValues(ch, "skipped").Inc()
		case status == "":
			metrics.NotificationsTotal.WithLabelValues(ch, "failed").Inc()
		default:
			metrics.NotificationsTotal.WithLabelValues(ch, "sent").Inc()
		}
	}
	count(channel.Email, o.Contact.Email, o.Result.EmailStatus, channel.IsEnabled(s.email))
	count(channel.SMS, o.Contact.Phone, o.Result.SMSStatus, channel.IsEnabled(s.sms))
}
