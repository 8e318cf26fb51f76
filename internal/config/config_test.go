package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
	if cfg.Queue.Mode != QueueModeKafka || cfg.Queue.Topic != "stripe-events" {
		t.Errorf("queue = %+v", cfg.Queue)
	}
	if cfg.Stripe.SignatureTolerance != 0 {
		t.Errorf("tolerance should default to disabled, got %s", cfg.Stripe.SignatureTolerance)
	}
	if cfg.Notifier.BatchWait != 300*time.Millisecond {
		t.Errorf("batch wait = %s", cfg.Notifier.BatchWait)
	}
	if cfg.Notifier.MetricsAddr != ":9102" {
		t.Errorf("notifier metrics addr = %q", cfg.Notifier.MetricsAddr)
	}
	if cfg.SendGrid.Enabled() || cfg.Twilio.Enabled() {
		t.Errorf("senders must be disabled without credentials")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STRIPE_WEBHOOK_SECRET", "whsec_legacy")
	t.Setenv("PAYNOTIFY_SENDGRID_API_KEY", "SG.key")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "token")
	t.Setenv("TWILIO_FROM_NUMBER", "+15550000000")
	t.Setenv("PAYNOTIFY_HTTP_ADDR", ":9090")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Stripe.WebhookSecret != "whsec_legacy" {
		t.Errorf("webhook secret = %q", cfg.Stripe.WebhookSecret)
	}
	if !cfg.SendGrid.Enabled() {
		t.Errorf("sendgrid should be enabled")
	}
	if !cfg.Twilio.Enabled() {
		t.Errorf("twilio should be enabled")
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("http addr = %q", cfg.HTTP.Addr)
	}
}

func TestLoad_MergesUserFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte(`
queue:
  mode: outbox
notifier:
  worker_count: 4
sms_relays:
  - name: relay-a
    enabled: true
    base_url: http://relay.local
    path: /send
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Queue.Mode != QueueModeOutbox {
		t.Errorf("queue mode = %q", cfg.Queue.Mode)
	}
	if cfg.Queue.Topic != "stripe-events" {
		t.Errorf("topic default lost: %q", cfg.Queue.Topic)
	}
	if cfg.Notifier.WorkerCount != 4 {
		t.Errorf("worker count = %d", cfg.Notifier.WorkerCount)
	}
	if len(cfg.SMSRelays) != 1 || cfg.SMSRelays[0].Name != "relay-a" {
		t.Errorf("relays = %+v", cfg.SMSRelays)
	}
}

func TestLoad_BadExplicitPath(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.yaml")
	if err := os.WriteFile(broken, []byte("queue: [mode: outbox\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	tests := map[string]string{
		"missing file": filepath.Join(dir, "nope.yaml"),
		"invalid yaml": broken,
	}
	for name, path := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Load(path); err == nil {
				t.Fatalf("Load(%q) succeeded, want error", path)
			}
		})
	}
}
