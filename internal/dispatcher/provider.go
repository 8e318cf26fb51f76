package dispatcher

import (
	"context"
	"errors"
	"time"
)

// Client is a single upstream that can deliver a message (SendGrid, Twilio, an HTTP relay).
type Client interface {
	Name() string
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// Provider is a Client guarded by its own circuit breaker.
type Provider interface {
	Client
	Ready() bool
	Acquire() bool
}

type guardedProvider struct {
	Client
	br *MicroBreaker
}

// Guard wraps c with a breaker that opens after failThreshold consecutive failures.
func Guard(c Client, failThreshold, openForMs int) Provider {
	return &guardedProvider{
		Client: c,
		br:     NewMicroBreaker(failThreshold, time.Duration(openForMs)*time.Millisecond),
	}
}

func (p *guardedProvider) Ready() bool   { return p.br.Ready() }
func (p *guardedProvider) Acquire() bool { return p.br.TryAcquire() }

// Send counts transport errors, retryable statuses and panics as breaker
// failures. A permanent rejection proves the upstream is reachable.
func (p *guardedProvider) Send(ctx context.Context, to, subject, body string) (status string, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.br.OnFailure()
			panic(r)
		}
	}()

	status, err = p.Client.Send(ctx, to, subject, body)
	switch {
	case err == nil:
		p.br.OnSuccess()
		return status, nil
	case errors.Is(err, ErrPermanent):
		p.br.OnSuccess()
		return "", err
	default:
		p.br.OnFailure()
		return "", err
	}
}
