// Package channel defines the capability every notification channel implements.
package channel

import (
	"context"
	"errors"
)

const (
	Email = "email"
	SMS   = "sms"
)

// ErrDisabled is returned when a disabled sender is asked to send.
var ErrDisabled = errors.New("channel disabled")

// Sender delivers one message and returns a provider status or identifier.
// SMS senders ignore subject.
type Sender interface {
	Name() string
	Enabled() bool
	Send(ctx context.Context, to, subject, body string) (string, error)
}

// Disabled returns the no-op sender used when a channel has no credentials.
func Disabled(name string) Sender {
	return disabled{name: name}
}

// IsEnabled treats nil as disabled.
func IsEnabled(s Sender) bool {
	return s != nil && s.Enabled()
}

type disabled struct{ name string }

func (d disabled) Name() string  { return d.name }
func (d disabled) Enabled() bool { return false }

func (d disabled) Send(context.Context, string, string, string) (string, error) {
	return "", ErrDisabled
}
