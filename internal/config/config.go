package config

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent with all HTTP requests.
const DefaultUserAgent = "ShowFeed/1.0 (+https://github.com/Belphemur/ShowFeed)"

// DefaultCatalogDomain is the catalog API used when none is configured.
const DefaultCatalogDomain = "https://api.tvmaze.com"

type Config struct {
	ProxyConnectionString string `mapstructure:"proxy_connection_string"`
	CatalogDomain         string `mapstructure:"catalog_domain"`
	ClientTimeout         string `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string `mapstructure:"user_agent"`
	LogLevel              string `mapstructure:"log_level"`
	Retry                 struct {
		MaxRetries int    `mapstructure:"max_retries"`
		Delay      string `mapstructure:"delay"`
		MaxDelay   string `mapstructure:"max_delay"`
	} `mapstructure:"retry"`
	Cache struct {
		Provider string `mapstructure:"provider"`  // "memory", "redis" or "none"
		Size     int    `mapstructure:"size"`      // Maximum number of entries in the LRU cache
		TTL      string `mapstructure:"ttl"`       // Go duration string like "1h", "24h", etc.
		StaleTTL string `mapstructure:"stale_ttl"` // how long past ttl a response may be served while the catalog is unreachable
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
	Feed struct {
		Debounce    string `mapstructure:"debounce"`
		InitialLoad bool   `mapstructure:"initial_load"`
	} `mapstructure:"feed"`
	Favorites struct {
		Path string `mapstructure:"path"` // bbolt file, empty keeps favorites in memory
	} `mapstructure:"favorites"`
	Metrics struct {
		Enabled bool   `mapstructure:"enabled"`
		Address string `mapstructure:"address"`
		Port    int    `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stderr,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	level := zerolog.InfoLevel
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Debug().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")

	v.SetDefault("catalog_domain", DefaultCatalogDomain)
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("retry.max_retries", 2)
	v.SetDefault("retry.delay", "500ms")
	v.SetDefault("retry.max_delay", "5s")
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 256)
	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.stale_ttl", "1h")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("feed.debounce", "1s")
	v.SetDefault("feed.initial_load", true)
	v.SetDefault("favorites.path", "./showfeed.db")
	v.SetDefault("metrics.address", "localhost")
	v.SetDefault("metrics.port", 9090)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.CatalogDomain == "" {
		config.CatalogDomain = DefaultCatalogDomain
	}

	return &config, nil
}

// Duration parses a Go duration string, logging and returning fallback when
// the value is empty or invalid.
func Duration(value string, fallback time.Duration, key string) time.Duration {
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		logger.Warn().Err(err).Str("key", key).Str("value", value).Dur("fallback", fallback).Msg("Invalid duration, using default")
		return fallback
	}
	return parsed
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
