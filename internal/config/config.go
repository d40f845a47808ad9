package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/hospital-dashboard/internal/repository/rest"
	"github.com/jwalitptl/hospital-dashboard/internal/service/calendar"
	"github.com/jwalitptl/hospital-dashboard/pkg/messaging/redis"

	// clinics may run on hosts without a zoneinfo database
	_ "time/tzdata"
)

// EnvPrefix prefixes every environment override, e.g. DASHBOARD_BACKEND_URL.
const EnvPrefix = "DASHBOARD"

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Cities    CitiesConfig    `mapstructure:"cities"`
	Search    SearchConfig    `mapstructure:"search"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

type BreakerConfig struct {
	MaxRequests uint32        `mapstructure:"max_requests"`
	Interval    time.Duration `mapstructure:"interval"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxFailures uint32        `mapstructure:"max_failures"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

type CalendarConfig struct {
	Timezone        string `mapstructure:"timezone"`
	FirstHour       int    `mapstructure:"first_hour"`
	LastHour        int    `mapstructure:"last_hour"`
	ReloadAfterBulk bool   `mapstructure:"reload_after_bulk"`

	location *time.Location
}

// Location is the clinic timezone, resolved by Load.
func (c CalendarConfig) Location() *time.Location {
	if c.location == nil {
		return calendar.IST
	}
	return c.location
}

type SessionConfig struct {
	Driver string        `mapstructure:"driver"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type CitiesConfig struct {
	SourceURL   string        `mapstructure:"source_url"`
	MaxResults  int           `mapstructure:"max_results"`
	Debounce    time.Duration `mapstructure:"debounce"`
	FallbackTTL time.Duration `mapstructure:"fallback_ttl"`
}

type SearchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps"`
	Burst   int     `mapstructure:"burst"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// overrides are the deployment knobs settable from the environment.
type overrides struct {
	Port            *int    `envconfig:"PORT"`
	BackendURL      *string `envconfig:"BACKEND_URL"`
	RedisURL        *string `envconfig:"REDIS_URL"`
	SessionDriver   *string `envconfig:"SESSION_DRIVER"`
	Timezone        *string `envconfig:"TIMEZONE"`
	LogLevel        *string `envconfig:"LOG_LEVEL"`
	CitySourceURL   *string `envconfig:"CITIES_SOURCE_URL"`
	ReloadAfterBulk *bool   `envconfig:"RELOAD_AFTER_BULK"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.request_timeout", 30*time.Second)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("backend.breaker.max_requests", 1)
	v.SetDefault("backend.breaker.interval", time.Minute)
	v.SetDefault("backend.breaker.timeout", 30*time.Second)
	v.SetDefault("backend.breaker.max_failures", 5)

	v.SetDefault("calendar.timezone", "Asia/Kolkata")
	v.SetDefault("calendar.first_hour", 8)
	v.SetDefault("calendar.last_hour", 20)
	v.SetDefault("calendar.reload_after_bulk", true)

	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.ttl", 12*time.Hour)

	v.SetDefault("redis.url", "redis://localhost:6379/0")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.pool_size", 10)

	v.SetDefault("cities.source_url", "")
	v.SetDefault("cities.max_results", 10)
	v.SetDefault("cities.debounce", 300*time.Millisecond)
	v.SetDefault("cities.fallback_ttl", time.Minute)
	v.SetDefault("search.debounce", 300*time.Millisecond)

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.rps", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads config.yml from path (or the usual locations when path is empty),
// applies DASHBOARD_* overrides and validates the result. A missing file is
// fine; defaults cover everything.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() error {
	var o overrides
	if err := envconfig.Process(EnvPrefix, &o); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	if o.Port != nil {
		c.Server.Port = *o.Port
	}
	if o.BackendURL != nil {
		c.Backend.BaseURL = *o.BackendURL
	}
	if o.RedisURL != nil {
		c.Redis.URL = *o.RedisURL
	}
	if o.SessionDriver != nil {
		c.Session.Driver = *o.SessionDriver
	}
	if o.Timezone != nil {
		c.Calendar.Timezone = *o.Timezone
	}
	if o.LogLevel != nil {
		c.Log.Level = *o.LogLevel
	}
	if o.CitySourceURL != nil {
		c.Cities.SourceURL = *o.CitySourceURL
	}
	if o.ReloadAfterBulk != nil {
		c.Calendar.ReloadAfterBulk = *o.ReloadAfterBulk
	}
	return nil
}

func (c *Config) validate() error {
	if c.Backend.BaseURL == "" {
		return errors.New("backend.base_url is required")
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return fmt.Errorf("invalid calendar.timezone %q: %w", c.Calendar.Timezone, err)
	}
	c.Calendar.location = loc

	if c.Calendar.FirstHour < 0 || c.Calendar.LastHour > 23 || c.Calendar.FirstHour > c.Calendar.LastHour {
		return fmt.Errorf("invalid calendar hours %d-%d", c.Calendar.FirstHour, c.Calendar.LastHour)
	}

	c.Session.Driver = strings.ToLower(strings.TrimSpace(c.Session.Driver))
	switch c.Session.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown session.driver %q", c.Session.Driver)
	}
	return nil
}

// UsesRedis reports whether sessions and invalidations go through Redis.
func (c *Config) UsesRedis() bool { return c.Session.Driver == "redis" }

func (c *BackendConfig) ToClientConfig() rest.Config {
	return rest.Config{
		Name:    "hospital-backend",
		BaseURL: c.BaseURL,
		Timeout: c.Timeout,
		Breaker: rest.BreakerConfig{
			MaxRequests: c.Breaker.MaxRequests,
			Interval:    c.Breaker.Interval,
			Timeout:     c.Breaker.Timeout,
			MaxFailures: c.Breaker.MaxFailures,
		},
	}
}

func (c *RedisConfig) ToBrokerConfig() redis.Config {
	return redis.Config{
		URL:          c.URL,
		MaxRetries:   c.MaxRetries,
		RetryBackoff: c.RetryBackoff,
		PoolSize:     c.PoolSize,
		MinIdleConns: c.MinIdleConns,
	}
}
