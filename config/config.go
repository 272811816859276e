package config

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type WebServerConfig struct {
	Port            string `mapstructure:"port"`
	IP              string `mapstructure:"ip"`
	ReadTimeout     int    `mapstructure:"read_timeout"`
	WriteTimeout    int    `mapstructure:"write_timeout"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"`
	AllowedOrigin   string `mapstructure:"allowed_origin"`
}

type RedisConfig struct {
	Address          string `mapstructure:"address"`
	Password         string `mapstructure:"password"`
	DB               int    `mapstructure:"db"`
	PoolSize         int    `mapstructure:"pool_size"`
	MinIdleConns     int    `mapstructure:"min_idle_conns"`
	OperationTimeout int    `mapstructure:"operation_timeout"`
}

// StorageConfig selects the durable key/value store behind the state store.
type StorageConfig struct {
	Driver    string `mapstructure:"driver"` // "redis" or "memory"
	KeyPrefix string `mapstructure:"key_prefix"`
}

type CacheConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MaxSizeMB   int  `mapstructure:"max_size_mb"`
	TTLSeconds  int  `mapstructure:"ttl_seconds"`
	CounterSize int  `mapstructure:"counter_size"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type NotificationConfig struct {
	DismissAfterMS int `mapstructure:"dismiss_after_ms"`
}

type AnalyticsConfig struct {
	RefreshDelayMS int `mapstructure:"refresh_delay_ms"`
}

// GenAIConfig configures the Gemini models used by the content generators.
type GenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	FastModel      string `mapstructure:"fast_model"`
	StrategyModel  string `mapstructure:"strategy_model"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

type ReferralConfig struct {
	Link string `mapstructure:"link"`
}

type Config struct {
	LogLevel     string             `mapstructure:"log_level"`
	WebServer    WebServerConfig    `mapstructure:"webserver"`
	Redis        RedisConfig        `mapstructure:"redis"`
	Storage      StorageConfig      `mapstructure:"storage"`
	Cache        CacheConfig        `mapstructure:"cache"`
	RateLimit    RateLimitConfig    `mapstructure:"ratelimit"`
	Notification NotificationConfig `mapstructure:"notification"`
	Analytics    AnalyticsConfig    `mapstructure:"analytics"`
	GenAI        GenAIConfig        `mapstructure:"genai"`
	Referral     ReferralConfig     `mapstructure:"referral"`
}

// DismissAfter is how long a notification stays visible.
func (c NotificationConfig) DismissAfter() time.Duration {
	return time.Duration(c.DismissAfterMS) * time.Millisecond
}

// RefreshDelay is the simulated latency of an analytics refresh.
func (c AnalyticsConfig) RefreshDelay() time.Duration {
	return time.Duration(c.RefreshDelayMS) * time.Millisecond
}

// Timeout bounds a single redis round trip. Zero falls back to five seconds.
func (c RedisConfig) Timeout() time.Duration {
	if c.OperationTimeout <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.OperationTimeout) * time.Second
}

func LoadConfig() (Config, error) {
	var config Config

	v := viper.New()
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Enable environment variable overrides
	v.SetEnvPrefix("SOCIALDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Error().Err(err).Msg("Error reading config file")
			return config, err
		}
		log.Warn().Msg("No config file found, using defaults and environment")
	}

	if err := v.Unmarshal(&config); err != nil {
		log.Error().Err(err).Msg("Unable to decode into struct")
		return config, err
	}

	return config, nil
}

func MustLoadConfig() Config {
	config, err := LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	return config
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	// WebServer defaults
	v.SetDefault("webserver.port", "8080")
	v.SetDefault("webserver.ip", "127.0.0.1")
	v.SetDefault("webserver.read_timeout", 15)
	v.SetDefault("webserver.write_timeout", 120) // strategic plans can take a while
	v.SetDefault("webserver.shutdown_timeout", 30)
	v.SetDefault("webserver.allowed_origin", "*")

	// Redis defaults
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.operation_timeout", 5)

	// Storage defaults
	v.SetDefault("storage.driver", "redis")
	v.SetDefault("storage.key_prefix", "socialdash:")

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_size_mb", 16)
	v.SetDefault("cache.ttl_seconds", 300)
	v.SetDefault("cache.counter_size", 10000)

	// RateLimit defaults
	v.SetDefault("ratelimit.requests_per_second", 10.0)
	v.SetDefault("ratelimit.burst", 20)

	v.SetDefault("notification.dismiss_after_ms", 2500)
	v.SetDefault("analytics.refresh_delay_ms", 1000)

	// GenAI defaults
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.fast_model", "gemini-2.5-flash")
	v.SetDefault("genai.strategy_model", "gemini-2.5-pro")
	v.SetDefault("genai.timeout_seconds", 90)

	v.SetDefault("referral.link", "https://nexusgrowth.ai/join?ref=alexg24")
}
