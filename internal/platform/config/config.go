// Package config loads application configuration from .env, environment variables and defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	DB         DBConfig         `mapstructure:"db"`
	Redis      RedisConfig      `mapstructure:"redis"`
	TwelveData TwelveDataConfig `mapstructure:"twelvedata"`
	Refresh    RefreshConfig    `mapstructure:"refresh"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Log        LogConfig        `mapstructure:"log"`
}

type AppConfig struct {
	Port string `mapstructure:"port"`
	Env  string `mapstructure:"env"` // e.g. "local", "prod"
}

type DBConfig struct {
	Driver         string        `mapstructure:"driver"` // "sqlite" or "postgres"
	Path           string        `mapstructure:"path"`   // sqlite file
	Host           string        `mapstructure:"host"`
	Port           string        `mapstructure:"port"`
	User           string        `mapstructure:"user"`
	Password       string        `mapstructure:"password"`
	Name           string        `mapstructure:"name"`
	SSLMode        string        `mapstructure:"sslmode"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	RunMigrations  bool          `mapstructure:"run_migrations"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type TwelveDataConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
}

type RefreshConfig struct {
	Period         time.Duration `mapstructure:"period"`
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	YearsOfHistory int           `mapstructure:"years_of_history"`
	DefaultSymbols []string      `mapstructure:"default_symbols"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json or console
}

// Load reads configuration from a .env file (if present), environment
// variables and defaults, in increasing order of precedence for env vars.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found; using system environment variables")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// "db.host" -> "DB_HOST"
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnv(v, "app.port", "app.env")
	bindEnv(v, "db.driver", "db.path", "db.host", "db.port", "db.user", "db.password",
		"db.name", "db.sslmode", "db.connect_timeout", "db.run_migrations")
	bindEnv(v, "redis.enabled", "redis.host", "redis.port", "redis.password", "redis.db")
	bindEnv(v, "twelvedata.api_key", "twelvedata.base_url", "twelvedata.timeout",
		"twelvedata.requests_per_minute")
	bindEnv(v, "refresh.period", "refresh.initial_backoff", "refresh.years_of_history",
		"refresh.default_symbols")
	bindEnv(v, "kafka.brokers", "kafka.topic")
	bindEnv(v, "jwt.secret", "jwt.expiration")
	bindEnv(v, "log.level", "log.format")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	cfg.Refresh.DefaultSymbols = splitList(cfg.Refresh.DefaultSymbols)
	cfg.Kafka.Brokers = splitList(cfg.Kafka.Brokers)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", ":8080")
	v.SetDefault("app.env", "local")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.path", "./stockwatch.db")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.connect_timeout", 60*time.Second)
	v.SetDefault("db.run_migrations", false)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", "6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("twelvedata.base_url", "https://api.twelvedata.com")
	v.SetDefault("twelvedata.timeout", 10*time.Second)
	v.SetDefault("twelvedata.requests_per_minute", 8)

	v.SetDefault("refresh.period", 5*time.Minute)
	v.SetDefault("refresh.initial_backoff", 10*time.Second)
	v.SetDefault("refresh.years_of_history", 2)
	v.SetDefault("refresh.default_symbols", []string{"AAPL", "FB", "GOOG", "MSFT", "YHOO"})

	v.SetDefault("kafka.topic", "stockwatch.data-updated")

	v.SetDefault("jwt.expiration", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// Validate reports configuration values the application cannot run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.DB.Driver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, fmt.Errorf("db.driver must be sqlite or postgres, got %q", c.DB.Driver))
	}
	if c.Refresh.Period <= 0 {
		errs = append(errs, errors.New("refresh.period must be positive"))
	}
	if c.Refresh.InitialBackoff <= 0 {
		errs = append(errs, errors.New("refresh.initial_backoff must be positive"))
	}
	if c.Refresh.YearsOfHistory <= 0 {
		errs = append(errs, errors.New("refresh.years_of_history must be positive"))
	}
	if c.TwelveData.BaseURL == "" {
		errs = append(errs, errors.New("twelvedata.base_url cannot be empty"))
	}
	return errors.Join(errs...)
}

// splitList accepts both real lists and a single comma separated env value.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// bindEnv is a helper to bind multiple keys at once.
func bindEnv(v *viper.Viper, keys ...string) {
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			slog.Warn("could not bind env var", "key", key, "error", err)
		}
	}
}
