package webhook

import (
	"errors"

	"github.com/jmehdipour/paynotify/internal/model"
	"github.com/jmehdipour/paynotify/internal/service/queue"
)

// Service verifies, classifies and encodes inbound webhook deliveries.
type Service struct {
	secret   string
	verifier Verifier
}

// NewService builds a Service bound to the endpoint's signing secret.
func NewService(secret string, verifier Verifier) *Service {
	return &Service{secret: secret, verifier: verifier}
}

// ProcessEvent runs one delivery through verification and classification.
func (s *Service) ProcessEvent(payload []byte, signatureHeader string) model.WebhookResult {
	return process(s.verifier, payload, signatureHeader, s.secret)
}

// ProcessEvent is the stateless form of Service.ProcessEvent.
func ProcessEvent(payload []byte, signatureHeader, secret string) model.WebhookResult {
	return process(Verifier{}, payload, signatureHeader, secret)
}

func process(v Verifier, payload []byte, signatureHeader, secret string) model.WebhookResult {
	evt, err := v.Verify(payload, signatureHeader, secret)
	if err != nil {
		msg := err.Error()
		if errors.Is(err, ErrConfig) {
			msg = ErrConfig.Error() + "."
		}
		return model.WebhookResult{Valid: false, Error: msg}
	}

	res := model.WebhookResult{Valid: true, EventID: evt.ID, EventType: evt.Type}

	c := Classify(evt)
	res.LogMessage = c.LogMessage
	if !c.Queue {
		return res
	}

	msg, err := queue.Encode(evt)
	if err != nil {
		return model.WebhookResult{Valid: false, Error: err.Error(), EventID: evt.ID, EventType: evt.Type}
	}
	res.QueueMessage = msg
	return res
}
