package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// TelegramConfig holds Telegram bot settings.
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
	Level       string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format      string `yaml:"format" envconfig:"LOG_FORMAT"`
	KeysOrder   string `yaml:"keys_order"`
	DebugSample string `yaml:"debug_sample"`
	Dir         string `yaml:"dir" envconfig:"LOG_DIR"`
	File        string `yaml:"file" envconfig:"LOG_FILE"`
	// Profile indicates environment profile such as "debug" or "prod".
	Profile string `yaml:"profile" envconfig:"LOG_PROFILE"`
}

// QuotesConfig controls where quotes come from.
type QuotesConfig struct {
	ProviderURL string `yaml:"provider_url" envconfig:"QUOTES_PROVIDER_URL"`
	// TimeoutMS bounds one remote fetch; 0 -> DefaultQuotesTimeoutMS.
	TimeoutMS     int  `yaml:"timeout_ms" envconfig:"QUOTES_TIMEOUT_MS"`
	DisableRemote bool `yaml:"disable_remote" envconfig:"QUOTES_DISABLE_REMOTE"`
	// CatalogPath optionally replaces the built-in curated quotes.
	CatalogPath string `yaml:"catalog_path" envconfig:"QUOTES_CATALOG_PATH"`
}

// SenderConfig tunes the asynchronous outbound queue.
type SenderConfig struct {
	QueueSize      int `yaml:"queue_size" envconfig:"SENDER_QUEUE_SIZE"`
	Workers        int `yaml:"workers" envconfig:"SENDER_WORKERS"`
	MaxRetries     int `yaml:"max_retries" envconfig:"SENDER_MAX_RETRIES"`
	RetryBackoffMS int `yaml:"retry_backoff_ms" envconfig:"SENDER_RETRY_BACKOFF_MS"`
}

const (
	// RunModeWebhook selects webhook mode for Telegram updates.
	RunModeWebhook = "webhook"
	// RunModeLongpoll selects long-polling mode for Telegram updates.
	RunModeLongpoll = "longpoll"
)

const (
	// DefaultProviderURL is the ZenQuotes random endpoint.
	DefaultProviderURL = "https://zenquotes.io/api/random"
	// DefaultQuotesTimeoutMS bounds a remote quote fetch.
	DefaultQuotesTimeoutMS = 6000
)

// Config aggregates the bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Webhook  WebhookConfig  `yaml:"webhook"`
	Logging  LoggingConfig  `yaml:"logging"`
	Quotes   QuotesConfig   `yaml:"quotes"`
	Sender   SenderConfig   `yaml:"sender"`
}

// Options controls Load.
type Options struct {
	// Path of the YAML file. Empty means environment only.
	Path string
	// EnvFiles are dotenv files loaded before environment processing. Missing files are ignored.
	// Variables already set in the process environment win.
	EnvFiles []string
}

// Load reads the YAML file at path (optional), then .env, then the process environment.
func Load(path string) (*Config, error) {
	return LoadWithOptions(Options{Path: path, EnvFiles: []string{".env"}})
}

// LoadWithOptions is Load with explicit dotenv files.
func LoadWithOptions(opts Options) (*Config, error) {
	var cfg Config

	if strings.TrimSpace(opts.Path) != "" {
		data, err := os.ReadFile(opts.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	for _, f := range opts.EnvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates required fields and fills defaults.
func Normalize(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("nil config")
	}

	cfg.Telegram.Token = strings.TrimSpace(cfg.Telegram.Token)
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("telegram token is required (set BOT_TOKEN)")
	}

	rm := strings.ToLower(strings.TrimSpace(cfg.Telegram.RunMode))
	if rm == "" || rm == "polling" {
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

	if err := normalizeQuotes(&cfg.Quotes); err != nil {
		return err
	}

	if cfg.Sender.QueueSize < 0 || cfg.Sender.Workers < 0 || cfg.Sender.MaxRetries < 0 || cfg.Sender.RetryBackoffMS < 0 {
		return fmt.Errorf("sender settings must be >= 0")
	}
	return nil
}

func normalizeQuotes(q *QuotesConfig) error {
	q.ProviderURL = strings.TrimSpace(q.ProviderURL)
	if q.ProviderURL == "" {
		q.ProviderURL = DefaultProviderURL
	}
	u, err := url.Parse(q.ProviderURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("quotes.provider_url must be an absolute http(s) URL, got %q", q.ProviderURL)
	}

	if q.TimeoutMS < 0 {
		return fmt.Errorf("quotes.timeout_ms must be >= 0")
	}
	if q.TimeoutMS == 0 {
		q.TimeoutMS = DefaultQuotesTimeoutMS
	}
	q.CatalogPath = strings.TrimSpace(q.CatalogPath)
	return nil
}
