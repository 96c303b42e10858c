package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone   = "America/Chicago"
	defaultConfigFile = "fieldops.yaml"
	configPathEnv     = "FIELDOPS_CONFIG"
	envPrefix         = "FIELDOPS"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Narrative     NarrativeConfig    `yaml:"narrative"`
	Gemini        GeminiConfig       `yaml:"gemini"`
	ChatGPT       ChatGPTConfig      `yaml:"chatgpt"`
	Dispatch      DispatchConfig     `yaml:"dispatch"`
	Ledger        LedgerConfig       `yaml:"ledger"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// DatabaseConfig selects the SQL driver and its connection string.
type DatabaseConfig struct {
	Driver string `yaml:"driver" envconfig:"DATABASE_DRIVER"`
	DSN    string `yaml:"dsn" envconfig:"DATABASE_DSN"`
}

// SchedulerConfig defines when the daily digest run fires.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cronExpression" envconfig:"DIGEST_CRON"`
	Timezone       string         `yaml:"timezone" envconfig:"DIGEST_TIMEZONE"`
	Concurrency    int            `yaml:"concurrency" envconfig:"DIGEST_CONCURRENCY"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, err := time.LoadLocation(defaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// NarrativeConfig bounds calls to the external text service.
type NarrativeConfig struct {
	Provider        string          `yaml:"provider" envconfig:"NARRATIVE_PROVIDER"`
	MaxAttempts     int             `yaml:"maxAttempts" envconfig:"NARRATIVE_MAX_ATTEMPTS"`
	BaseDelay       time.Duration   `yaml:"baseDelay" envconfig:"NARRATIVE_BASE_DELAY"`
	MaxDelay        time.Duration   `yaml:"maxDelay" envconfig:"NARRATIVE_MAX_DELAY"`
	AttemptTimeout  time.Duration   `yaml:"attemptTimeout" envconfig:"NARRATIVE_ATTEMPT_TIMEOUT"`
	FollowUpTimeout time.Duration   `yaml:"followUpTimeout" envconfig:"NARRATIVE_FOLLOWUP_TIMEOUT"`
	CacheTTL        time.Duration   `yaml:"cacheTTL" envconfig:"NARRATIVE_CACHE_TTL"`
	RateLimit       RateLimitConfig `yaml:"rateLimit" ignored:"true"`
}

// RateLimitConfig caps text-service calls per actor in a trailing window.
type RateLimitConfig struct {
	Window   time.Duration `yaml:"window" envconfig:"RATE_LIMIT_WINDOW"`
	MaxCalls int           `yaml:"maxCalls" envconfig:"RATE_LIMIT_MAX_CALLS"`
}

// GeminiConfig defines how to contact the Gemini API.
type GeminiConfig struct {
	APIKey  string `yaml:"apiKey" envconfig:"GEMINI_API_KEY"`
	Model   string `yaml:"model" envconfig:"GEMINI_MODEL"`
	BaseURL string `yaml:"baseUrl" envconfig:"GEMINI_BASE_URL"`
}

// ChatGPTConfig defines how to contact the ChatGPT API.
type ChatGPTConfig struct {
	Endpoint     string `yaml:"endpoint" envconfig:"CHATGPT_ENDPOINT"`
	Model        string `yaml:"model" envconfig:"CHATGPT_MODEL"`
	APIKey       string `yaml:"apiKey" envconfig:"CHATGPT_API_KEY"`
	SystemPrompt string `yaml:"systemPrompt" envconfig:"CHATGPT_SYSTEM_PROMPT"`
}

// DispatchConfig holds the coordinate used when an actor has no known position.
type DispatchConfig struct {
	DefaultLat float64 `yaml:"defaultLat" envconfig:"DISPATCH_DEFAULT_LAT"`
	DefaultLng float64 `yaml:"defaultLng" envconfig:"DISPATCH_DEFAULT_LNG"`
}

// LedgerConfig caps free-text interaction fields.
type LedgerConfig struct {
	MaxNoteLength        int `yaml:"maxNoteLength" envconfig:"LEDGER_MAX_NOTE_LENGTH"`
	MaxOpeningLineLength int `yaml:"maxOpeningLineLength" envconfig:"LEDGER_MAX_OPENING_LINE_LENGTH"`
	MaxOutcomeLength     int `yaml:"maxOutcomeLength" envconfig:"LEDGER_MAX_OUTCOME_LENGTH"`
	MaxMediaRefs         int `yaml:"maxMediaRefs" envconfig:"LEDGER_MAX_MEDIA_REFS"`
}

// NotificationConfig encapsulates outbound digest channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Slack    SlackConfig    `yaml:"slack"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken" envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID   string `yaml:"chatId" envconfig:"TELEGRAM_CHAT_ID"`
	BaseURL  string `yaml:"baseUrl" envconfig:"TELEGRAM_BASE_URL"`
}

// SlackConfig points at an incoming webhook.
type SlackConfig struct {
	WebhookURL string `yaml:"webhookUrl" envconfig:"SLACK_WEBHOOK_URL"`
}

// LoggingConfig selects level and handler format (text or json).
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	path := os.Getenv(configPathEnv)
	if path == "" {
		path = defaultConfigFile
	}
	return LoadFrom(afero.NewOsFs(), path)
}

// LoadFrom reads path from fsys; a missing or broken file leaves the defaults in place.
func LoadFrom(fsys afero.Fs, path string) Config {
	cfg := defaultConfig()

	if path != "" {
		raw, err := afero.ReadFile(fsys, path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			slog.Warn("config: cannot read file, falling back to defaults", "path", path, "error", err)
		default:
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("config: cannot parse file, falling back to defaults", "path", path, "error", err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()
	return cfg
}

// applyEnvOverrides reads FIELDOPS_<TAG> first and then the bare tag, so
// GEMINI_API_KEY or DATABASE_DSN work without the prefix.
func (c *Config) applyEnvOverrides() {
	sections := []any{
		&c.Database,
		&c.Scheduler,
		&c.Narrative,
		&c.Narrative.RateLimit,
		&c.Gemini,
		&c.ChatGPT,
		&c.Dispatch,
		&c.Ledger,
		&c.Notifications.Telegram,
		&c.Notifications.Slack,
		&c.Logging,
	}
	for _, section := range sections {
		if err := envconfig.Process(envPrefix, section); err != nil {
			slog.Warn("config: ignoring malformed environment override", "error", err)
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		slog.Warn("config: unknown timezone, reverting to default", "timezone", tz, "default", defaultTimezone)
		tz = defaultTimezone
		loc, err = time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}
	c.Scheduler.Timezone = tz
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Driver != "" {
		base.Database.Driver = override.Database.Driver
	}
	if override.Database.DSN != "" {
		base.Database.DSN = override.Database.DSN
	}

	if override.Scheduler.CronExpression != "" {
		base.Scheduler.CronExpression = override.Scheduler.CronExpression
	}
	if override.Scheduler.Timezone != "" {
		base.Scheduler.Timezone = override.Scheduler.Timezone
	}
	if override.Scheduler.Concurrency > 0 {
		base.Scheduler.Concurrency = override.Scheduler.Concurrency
	}

	n := override.Narrative
	if n.Provider != "" {
		base.Narrative.Provider = n.Provider
	}
	if n.MaxAttempts > 0 {
		base.Narrative.MaxAttempts = n.MaxAttempts
	}
	if n.BaseDelay > 0 {
		base.Narrative.BaseDelay = n.BaseDelay
	}
	if n.MaxDelay > 0 {
		base.Narrative.MaxDelay = n.MaxDelay
	}
	if n.AttemptTimeout > 0 {
		base.Narrative.AttemptTimeout = n.AttemptTimeout
	}
	if n.FollowUpTimeout > 0 {
		base.Narrative.FollowUpTimeout = n.FollowUpTimeout
	}
	if n.CacheTTL > 0 {
		base.Narrative.CacheTTL = n.CacheTTL
	}
	if n.RateLimit.Window > 0 {
		base.Narrative.RateLimit.Window = n.RateLimit.Window
	}
	if n.RateLimit.MaxCalls != 0 {
		base.Narrative.RateLimit.MaxCalls = n.RateLimit.MaxCalls
	}

	if override.Gemini.APIKey != "" {
		base.Gemini.APIKey = override.Gemini.APIKey
	}
	if override.Gemini.Model != "" {
		base.Gemini.Model = override.Gemini.Model
	}
	if override.Gemini.BaseURL != "" {
		base.Gemini.BaseURL = override.Gemini.BaseURL
	}

	if override.ChatGPT.Endpoint != "" {
		base.ChatGPT.Endpoint = override.ChatGPT.Endpoint
	}
	if override.ChatGPT.Model != "" {
		base.ChatGPT.Model = override.ChatGPT.Model
	}
	if override.ChatGPT.APIKey != "" {
		base.ChatGPT.APIKey = override.ChatGPT.APIKey
	}
	if override.ChatGPT.SystemPrompt != "" {
		base.ChatGPT.SystemPrompt = override.ChatGPT.SystemPrompt
	}

	if override.Dispatch.DefaultLat != 0 || override.Dispatch.DefaultLng != 0 {
		base.Dispatch = override.Dispatch
	}

	if override.Ledger.MaxNoteLength > 0 {
		base.Ledger.MaxNoteLength = override.Ledger.MaxNoteLength
	}
	if override.Ledger.MaxOpeningLineLength > 0 {
		base.Ledger.MaxOpeningLineLength = override.Ledger.MaxOpeningLineLength
	}
	if override.Ledger.MaxOutcomeLength > 0 {
		base.Ledger.MaxOutcomeLength = override.Ledger.MaxOutcomeLength
	}
	if override.Ledger.MaxMediaRefs > 0 {
		base.Ledger.MaxMediaRefs = override.Ledger.MaxMediaRefs
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}
	if override.Notifications.Telegram.BaseURL != "" {
		base.Notifications.Telegram.BaseURL = override.Notifications.Telegram.BaseURL
	}
	if override.Notifications.Slack.WebhookURL != "" {
		base.Notifications.Slack.WebhookURL = override.Notifications.Slack.WebhookURL
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database:  DatabaseConfig{Driver: "sqlite", DSN: "fieldops.db"},
		Scheduler: SchedulerConfig{CronExpression: "0 7 * * *", Timezone: defaultTimezone, Concurrency: 4},
		Narrative: NarrativeConfig{
			MaxAttempts:     3,
			BaseDelay:       time.Second,
			MaxDelay:        4 * time.Second,
			AttemptTimeout:  20 * time.Second,
			FollowUpTimeout: 15 * time.Second,
			RateLimit:       RateLimitConfig{Window: time.Hour, MaxCalls: 50},
		},
		Gemini: GeminiConfig{Model: "gemini-2.0-flash"},
		ChatGPT: ChatGPTConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You are a field sales coach. Always answer with a single JSON object.",
		},
		Dispatch: DispatchConfig{DefaultLat: 35.1495, DefaultLng: -90.0490},
		Ledger: LedgerConfig{
			MaxNoteLength:        5000,
			MaxOpeningLineLength: 500,
			MaxOutcomeLength:     64,
			MaxMediaRefs:         10,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
	}
}
