package provider

import (
	"strings"

	"github.com/jmehdipour/paynotify/internal/channel"
	"github.com/jmehdipour/paynotify/internal/config"
	"github.com/jmehdipour/paynotify/internal/dispatcher"
)

// EmailSender builds the email channel. Without a SendGrid key the channel is disabled.
func EmailSender(cfg config.Config) channel.Sender {
	if !cfg.SendGrid.Enabled() {
		return channel.Disabled(channel.Email)
	}
	sg := cfg.SendGrid
	provs := []dispatcher.Provider{
		dispatcher.Guard(
			NewSendGrid(sg.APIKey, sg.BaseURL, sg.FromEmail, sg.FromName, sg.TimeoutMs),
			sg.Breaker.FailThreshold,
			sg.Breaker.OpenForMs,
		),
	}
	return dispatcher.NewDispatcher(channel.Email, provs, cfg.Dispatcher.MaxAttempts.Email)
}

// SMSSender builds the SMS channel from Twilio and any enabled relays, in that order.
func SMSSender(cfg config.Config) channel.Sender {
	var provs []dispatcher.Provider
	if tw := cfg.Twilio; tw.Enabled() {
		provs = append(provs, dispatcher.Guard(
			NewTwilio(tw.AccountSID, tw.AuthToken, tw.FromNumber),
			tw.Breaker.FailThreshold,
			tw.Breaker.OpenForMs,
		))
	}
	for _, rc := range cfg.SMSRelays {
		if !rc.Enabled || strings.TrimSpace(rc.BaseURL) == "" {
			continue
		}
		provs = append(provs, dispatcher.Guard(
			NewRelay(rc.Name, rc.BaseURL, rc.Path, rc.TimeoutMs),
			rc.Breaker.FailThreshold,
			rc.Breaker.OpenForMs,
		))
	}
	if len(provs) == 0 {
		return channel.Disabled(channel.SMS)
	}
	return dispatcher.NewDispatcher(channel.SMS, provs, cfg.Dispatcher.MaxAttempts.SMS)
}
