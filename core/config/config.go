package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// DatabaseConfig holds database connection settings for the purchase journal.
// The journal is optional: an empty host disables it entirely.
// core/database aliases this type as database.Config; it lives here to keep
// the config package free of a dependency on core/database.
type DatabaseConfig struct {
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
}

// Enabled reports whether a database was configured at all.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// TelegramConfig holds Telegram bot related settings.
type TelegramConfig struct {
	Token   string `yaml:"token" envconfig:"BOT_TOKEN"`
	RunMode string `yaml:"run_mode" envconfig:"TELEGRAM_RUN_MODE"`
	// LongPollTimeoutSeconds defines long polling timeout; 0 -> default
	LongPollTimeoutSeconds int `yaml:"longpoll_timeout_seconds" envconfig:"TELEGRAM_LONGPOLL_TIMEOUT_SECONDS"`
}

// WebhookConfig specifies webhook settings.
type WebhookConfig struct {
	URL    string `yaml:"url" envconfig:"WEBHOOK_URL"`
	Listen string `yaml:"listen" envconfig:"WEBHOOK_LISTEN"`
	Port   int    `yaml:"port" envconfig:"WEBHOOK_PORT"`
}

// LoggingConfig defines logging related configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	Format      string `yaml:"format"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir"`
	BotFile     string `yaml:"bot_file"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile"`
}

// PaymentConfig describes the purchase flow: the single trusted operator,
// the UPI payee the QR codes point at, and the payment window policy.
type PaymentConfig struct {
	OperatorID     int64  `yaml:"operator_id" envconfig:"OPERATOR_ID"`
	UPIAddress     string `yaml:"upi_address" envconfig:"UPI_ADDRESS"`
	PayeeName      string `yaml:"payee_name" envconfig:"UPI_PAYEE_NAME"`
	WindowSeconds  int    `yaml:"window_seconds" envconfig:"PAYMENT_WINDOW_SECONDS"`
	HardCutoff     bool   `yaml:"hard_cutoff" envconfig:"PAYMENT_HARD_CUTOFF"`
	SupportContact string `yaml:"support_contact" envconfig:"SUPPORT_CONTACT"`
}

// Window returns the configured payment window duration.
func (p PaymentConfig) Window() time.Duration {
	return time.Duration(p.WindowSeconds) * time.Second
}

// HealthConfig configures the liveness HTTP endpoint.
type HealthConfig struct {
	Listen string `yaml:"listen" envconfig:"HEALTH_LISTEN"`
}

// SweepConfig controls the idle-session sweeper.
type SweepConfig struct {
	IntervalSeconds int `yaml:"interval_seconds" envconfig:"SWEEP_INTERVAL_SECONDS"`
	MaxIdleSeconds  int `yaml:"max_idle_seconds" envconfig:"SWEEP_MAX_IDLE_SECONDS"`
}

// Interval returns how often the sweeper runs.
func (s SweepConfig) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds) * time.Second
}

// MaxIdle returns how long a session may sit in a non-terminal state untouched.
func (s SweepConfig) MaxIdle() time.Duration {
	return time.Duration(s.MaxIdleSeconds) * time.Second
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// UpdateCallback identifies callback updates for rate limit exclusions.
	UpdateCallback = "callback"
	// UpdateMessage identifies message updates for rate limit exclusions.
	UpdateMessage = "message"
)

// RateLimitConfig holds settings for rate limiting.
// ExcludeUpdates accepts update types to bypass limiting:
// - "callback": Telegram callback button presses
// - "message": standard text messages
type RateLimitConfig struct {
	IntervalMS     int      `yaml:"interval_ms" envconfig:"RATE_LIMIT_INTERVAL_MS"`
	ExcludeUpdates []string `yaml:"exclude_updates" envconfig:"RATE_LIMIT_EXCLUDE_UPDATES"`
}

// Config aggregates application configuration.
type Config struct {
	Telegram  TelegramConfig      `yaml:"telegram"`
	Webhook   WebhookConfig       `yaml:"webhook"`
	Logging   LoggingConfig       `yaml:"logging"`
	RateLimit RateLimitConfig     `yaml:"rate_limit"`
	Payment   PaymentConfig       `yaml:"payment"`
	Health    HealthConfig        `yaml:"health"`
	Sweep     SweepConfig         `yaml:"sweep"`
	Database  DatabaseConfig      `yaml:"database"`
}

// Load reads configuration from a YAML file and environment variables.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required configuration fields and adjusts defaults.
// Missing token or operator identity is the only fatal condition in the app;
// it is caught here, at bootstrap.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	if strings.TrimSpace(cfg.Telegram.Token) == "" {
		return fmt.Errorf("telegram token is required")
	}
	if cfg.Payment.OperatorID == 0 {
		return fmt.Errorf("payment.operator_id is required")
	}
	if cfg.Payment.WindowSeconds <= 0 {
		cfg.Payment.WindowSeconds = 300
	}
	if strings.TrimSpace(cfg.Payment.PayeeName) == "" {
		cfg.Payment.PayeeName = "PremiumBot"
	}
	if strings.TrimSpace(cfg.Health.Listen) == "" {
		cfg.Health.Listen = ":10000"
	}
	if cfg.Sweep.IntervalSeconds <= 0 {
		cfg.Sweep.IntervalSeconds = 600
	}
	if cfg.Sweep.MaxIdleSeconds <= 0 {
		cfg.Sweep.MaxIdleSeconds = 3600
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" {
		rm = RunModeLongpoll
	}
	if rm == "polling" { // accept alias
		rm = RunModeLongpoll
	}
	switch rm {
	case RunModeWebhook:
		if strings.TrimSpace(cfg.Webhook.URL) == "" {
			return fmt.Errorf("webhook.url is required when telegram.run_mode is 'webhook'")
		}
		if strings.TrimSpace(cfg.Webhook.Listen) == "" {
			return fmt.Errorf("webhook.listen is required when telegram.run_mode is 'webhook'")
		}
		if cfg.Webhook.Port <= 0 {
			return fmt.Errorf("webhook.port must be > 0 when telegram.run_mode is 'webhook'")
		}
	case RunModeLongpoll:
		if cfg.Telegram.LongPollTimeoutSeconds < 0 {
			return fmt.Errorf("telegram.longpoll_timeout_seconds must be >= 0")
		}
	default:
		return fmt.Errorf("invalid telegram.run_mode %q; allowed: webhook, longpoll", cfg.Telegram.RunMode)
	}
	cfg.Telegram.RunMode = rm

	allowed := map[string]struct{}{
		UpdateCallback: {},
		UpdateMessage:  {},
	}
	for i, v := range cfg.RateLimit.ExcludeUpdates {
		key := strings.ToLower(strings.TrimSpace(v))
		if key == "" {
			continue
		}
		if _, ok := allowed[key]; !ok {
			return fmt.Errorf("invalid rate_limit.exclude_updates value %q; allowed: callback, message", v)
		}
		cfg.RateLimit.ExcludeUpdates[i] = key
	}
	return nil
}
