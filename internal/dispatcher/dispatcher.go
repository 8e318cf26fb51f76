package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	ErrNoHealthy = errors.New("no healthy providers")
	ErrNoAcquire = errors.New("provider not acquired")
	// ErrPermanent marks a rejection of the message itself (bad recipient, bad
	// request). It is not retried and does not count against the breaker.
	ErrPermanent = errors.New("permanent rejection")
)

// Permanent wraps err with ErrPermanent.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrPermanent, err)
}

// PermanentStatus reports whether an HTTP status rejects the request itself.
// 408 and 429 are retryable like 5xx.
func PermanentStatus(code int) bool {
	return code >= 400 && code < 500 &&
		code != http.StatusRequestTimeout && code != http.StatusTooManyRequests
}

// Dispatcher spreads one channel's sends across its providers round-robin,
// skipping providers whose breaker is open. It satisfies channel.Sender.
type Dispatcher struct {
	name              string
	providers         []Provider
	roundRobinCounter atomic.Uint64
	maxAttempts       int
}

func NewDispatcher(name string, provs []Provider, maxAttempts int) *Dispatcher {
	if maxAttempts < 1 {
		maxAttempts = 2
	}

	return &Dispatcher{name: name, providers: provs, maxAttempts: maxAttempts}
}

func (d *Dispatcher) Name() string { return d.name }

// Enabled is false when no provider is configured for the channel.
func (d *Dispatcher) Enabled() bool { return len(d.providers) > 0 }

func (d *Dispatcher) selectProvider() (Provider, error) {
	healthy := make([]Provider, 0, len(d.providers))
	for _, p := range d.providers {
		if p.Ready() {
			healthy = append(healthy, p)
		}
	}

	if len(healthy) == 0 {
		return nil, ErrNoHealthy
	}

	x := d.roundRobinCounter.Add(1)
	idx := int((x - 1) % uint64(len(healthy)))

	return healthy[idx], nil
}

func (d *Dispatcher) tryOnce(ctx context.Context, to, subject, body string) (string, error) {
	p, err := d.selectProvider()
	if err != nil {
		return "", err
	}

	if !p.Acquire() {
		return "", ErrNoAcquire
	}

	status, err := p.Send(ctx, to, subject, body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", p.Name(), err)
	}
	return status, nil
}

// Send tries up to maxAttempts providers and returns the first success.
// A permanent rejection is returned at once.
func (d *Dispatcher) Send(ctx context.Context, to, subject, body string) (string, error) {
	var last error
	for i := 0; i < d.maxAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		status, err := d.tryOnce(ctx, to, subject, body)
		if err == nil {
			return status, nil
		}
		if errors.Is(err, ErrPermanent) {
			return "", err
		}
		last = err
	}

	if last == nil {
		last = fmt.Errorf("send %s failed", d.name)
	}

	return "", last
}
