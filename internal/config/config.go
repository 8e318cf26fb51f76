package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

//go:embed defaults.yaml
var defaults []byte

// ---- Root ----

type Config struct {
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Queue      QueueConfig      `mapstructure:"queue"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	MySQL      DatabaseConfig   `mapstructure:"mysql"`
	ClickHouse DatabaseConfig   `mapstructure:"clickhouse"`
	Redis      RedisConfig      `mapstructure:"redis"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	SendGrid   SendGridConfig   `mapstructure:"sendgrid"`
	Twilio     TwilioConfig     `mapstructure:"twilio"`
	SMSRelays  []RelayConfig    `mapstructure:"sms_relays"`
	Dispatcher DispatcherConfig `mapstructure:"dispatcher"`
	Notifier   NotifierConfig   `mapstructure:"notifier"`
}

// ---- Leaf structs ----

type HTTPConfig struct {
	Addr        string `mapstructure:"addr"`
	AdminAPIKey string `mapstructure:"admin_api_key"`
	BodyLimit   string `mapstructure:"body_limit"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type StripeConfig struct {
	WebhookSecret      string        `mapstructure:"webhook_secret"`
	APIKey             string        `mapstructure:"api_key"`
	SignatureTolerance time.Duration `mapstructure:"signature_tolerance"`
}

const (
	QueueModeKafka  = "kafka"
	QueueModeOutbox = "outbox"
)

type QueueConfig struct {
	Mode  string `mapstructure:"mode"`
	Topic string `mapstructure:"topic"`
}

type KafkaConfig struct {
	Brokers        []string      `mapstructure:"brokers"`
	GroupID        string        `mapstructure:"group_id"`
	MinBytes       int           `mapstructure:"min_bytes"`
	MaxBytes       int           `mapstructure:"max_bytes"`
	CommitInterval int           `mapstructure:"commit_interval_ms"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idletime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

type RedisConfig struct {
	Addr        string        `mapstructure:"addr"`
	Password    string        `mapstructure:"password"`
	DB          int           `mapstructure:"db"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// RateLimitConfig limits webhook calls per client IP per minute. 0 disables it.
type RateLimitConfig struct {
	RPM int `mapstructure:"rpm"`
}

type BreakerConfig struct {
	FailThreshold int `mapstructure:"fail_threshold" yaml:"fail_threshold"`
	OpenForMs     int `mapstructure:"open_for_ms"    yaml:"open_for_ms"`
}

type SendGridConfig struct {
	APIKey    string        `mapstructure:"api_key"`
	FromEmail string        `mapstructure:"from_email"`
	FromName  string        `mapstructure:"from_name"`
	BaseURL   string        `mapstructure:"base_url"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

// Enabled reports whether the email channel has credentials.
func (c SendGridConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type TwilioConfig struct {
	AccountSID string        `mapstructure:"account_sid"`
	AuthToken  string        `mapstructure:"auth_token"`
	FromNumber string        `mapstructure:"from_number"`
	Breaker    BreakerConfig `mapstructure:"breaker"`
}

// Enabled reports whether every Twilio credential is present.
func (c TwilioConfig) Enabled() bool {
	return strings.TrimSpace(c.AccountSID) != "" &&
		strings.TrimSpace(c.AuthToken) != "" &&
		strings.TrimSpace(c.FromNumber) != ""
}

// RelayConfig is an HTTP SMS relay that accepts {"phone","text"} JSON.
type RelayConfig struct {
	Name      string        `mapstructure:"name"`
	Enabled   bool          `mapstructure:"enabled"`
	BaseURL   string        `mapstructure:"base_url"`
	Path      string        `mapstructure:"path"`
	TimeoutMs int           `mapstructure:"timeout_ms"`
	Breaker   BreakerConfig `mapstructure:"breaker"`
}

type DispatcherConfig struct {
	MaxAttempts MaxAttempts `mapstructure:"max_attempts"`
}

type MaxAttempts struct {
	Email int `mapstructure:"email"`
	SMS   int `mapstructure:"sms"`
}

// NotifierConfig tunes the notifier worker. An empty MetricsAddr disables its /metrics listener.
type NotifierConfig struct {
	WorkerCount int           `mapstructure:"worker_count"`
	BatchSize   int           `mapstructure:"batch_size"`
	BatchWait   time.Duration `mapstructure:"batch_wait"`
	MetricsAddr string        `mapstructure:"metrics_addr"`
}

// legacyEnv maps config keys to the unprefixed variable names used by older deployments.
var legacyEnv = map[string]string{
	"stripe.webhook_secret": "STRIPE_WEBHOOK_SECRET",
	"stripe.api_key":        "STRIPE_API_KEY",
	"sendgrid.api_key":      "SENDGRID_API_KEY",
	"twilio.account_sid":    "TWILIO_ACCOUNT_SID",
	"twilio.auth_token":     "TWILIO_AUTH_TOKEN",
	"twilio.from_number":    "TWILIO_FROM_NUMBER",
}

// Load reads embedded defaults, merges user YAML (if provided), and applies env overrides (PAYNOTIFY_*).
// A path that cannot be read or parsed is an error; an empty path uses defaults and env only.
func Load(path string) (Config, error) {
	v := viper.New()

	// embedded defaults
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// env override (PAYNOTIFY_STRIPE_WEBHOOK_SECRET, ...)
	v.SetEnvPrefix("PAYNOTIFY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		envKey := "PAYNOTIFY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
