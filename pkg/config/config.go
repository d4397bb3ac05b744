package config

import "time"

// Config holds runtime configuration for the relay bot.
type Config struct {
	AppEnv   string         `mapstructure:"app_env"`
	Bot      BotConfig      `mapstructure:"bot" validate:"required"`
	Redis    RedisConfig    `mapstructure:"redis" validate:"required"`
	Store    StoreConfig    `mapstructure:"store"`
	Contact  ContactConfig  `mapstructure:"contact"`
	Greeting GreetingConfig `mapstructure:"greeting"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Log      LogConfig      `mapstructure:"log"`
	Sentry   SentryConfig   `mapstructure:"sentry"`
	Server   ServerConfig   `mapstructure:"server"`
}

// BotConfig configures the Telegram connection.
type BotConfig struct {
	Token      string        `mapstructure:"token" validate:"required"`
	Mode       string        `mapstructure:"mode" validate:"oneof=polling webhook"`
	Timeout    time.Duration `mapstructure:"timeout"`
	WebhookURL string        `mapstructure:"webhook_url" validate:"required_if=Mode webhook"`
	Listen     string        `mapstructure:"listen"`
}

// RedisConfig mirrors pkg/redis.Config.
type RedisConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db" validate:"gte=0"`
	PoolSize        int           `mapstructure:"pool_size"`
	MinIdleConns    int           `mapstructure:"min_idle_conns"`
	PoolTimeout     time.Duration `mapstructure:"pool_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MinRetryBackoff time.Duration `mapstructure:"min_retry_backoff"`
	MaxRetryBackoff time.Duration `mapstructure:"max_retry_backoff"`
}

// StoreConfig configures the key-value layout.
type StoreConfig struct {
	Root  string `mapstructure:"root" validate:"required,excludesall=:*"`
	Cache bool   `mapstructure:"cache"`
}

// ContactConfig configures contact routing.
type ContactConfig struct {
	SerializeTopics bool          `mapstructure:"serialize_topics"`
	LockTTL         time.Duration `mapstructure:"lock_ttl"`
	StatsInterval   time.Duration `mapstructure:"stats_interval"`
}

// GreetingConfig configures the /start reply.
type GreetingConfig struct {
	DefaultText string `mapstructure:"default_text"`
}

// LimitsConfig configures update deduplication and per-user rate limiting.
type LimitsConfig struct {
	DedupEnabled bool          `mapstructure:"dedup_enabled"`
	DedupTTL     time.Duration `mapstructure:"dedup_ttl"`
	RateEnabled  bool          `mapstructure:"rate_enabled"`
	RateLimit    int           `mapstructure:"rate_limit" validate:"gte=0"`
	RateWindow   time.Duration `mapstructure:"rate_window"`
	Whitelist    []int64       `mapstructure:"whitelist"`
}

// LogConfig configures pkg/logger.
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format     string `mapstructure:"format" validate:"oneof=json text"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SentryConfig configures error reporting.
type SentryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DSN     string `mapstructure:"dsn" validate:"required_if=Enabled true"`
}

// ServerConfig configures the metrics and health HTTP server.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

var defaults = map[string]any{
	"bot.token":                "",
	"bot.mode":                 "polling",
	"bot.timeout":              10 * time.Second,
	"bot.webhook_url":          "",
	"bot.listen":               ":8443",
	"redis.addr":               "localhost:6379",
	"redis.password":           "",
	"redis.db":                 0,
	"redis.pool_size":          10,
	"redis.min_idle_conns":     2,
	"redis.pool_timeout":       4 * time.Second,
	"redis.idle_timeout":       5 * time.Minute,
	"redis.max_retries":        3,
	"redis.min_retry_backoff":  8 * time.Millisecond,
	"redis.max_retry_backoff":  512 * time.Millisecond,
	"store.root":               "relay",
	"store.cache":              true,
	"contact.serialize_topics": false,
	"contact.lock_ttl":         5 * time.Second,
	"contact.stats_interval":   30 * time.Second,
	"greeting.default_text":    "",
	"limits.dedup_enabled":     true,
	"limits.dedup_ttl":         24 * time.Hour,
	"limits.rate_enabled":      false,
	"limits.rate_limit":        20,
	"limits.rate_window":       time.Minute,
	"limits.whitelist":         []int64{},
	"log.level":                "info",
	"log.format":               "json",
	"log.file":                 "",
	"log.max_size_mb":          50,
	"log.max_backups":          5,
	"log.max_age_days":         14,
	"sentry.enabled":           false,
	"sentry.dsn":               "",
	"server.addr":              ":9090",
	"server.shutdown_timeout":  10 * time.Second,
}
