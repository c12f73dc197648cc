package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"StockScreener/internal/collector"
	"StockScreener/internal/model"
	"StockScreener/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	Screener struct {
		Provider   string        `yaml:"provider"` // yahoo, rest or static
		BaseURL    string        `yaml:"base_url"`
		APIKey     string        `yaml:"api_key"`
		Strategy   string        `yaml:"strategy"`
		Period     string        `yaml:"period"`
		Interval   string        `yaml:"interval"`
		Universe   string        `yaml:"universe"` // ticker file; empty uses the built-in list
		Retries    int           `yaml:"retries"`
		RetryDelay time.Duration `yaml:"retry_delay"`
		Timeout    time.Duration `yaml:"timeout"`
		Workers    int           `yaml:"warm_workers"` // cache warm-up concurrency, 0 disables
		Params     model.Params  `yaml:"params"`
	} `yaml:"screener"`
	Cache struct {
		Backend string        `yaml:"backend"` // file, redis or none
		Dir     string        `yaml:"dir"`
		MaxAge  time.Duration `yaml:"max_age"`
		Redis   struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`
	Schedule struct {
		ScanCron string `yaml:"scan_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// envOverrides lists the environment variables that override the file.
// Unset variables leave the pointer nil.
type envOverrides struct {
	Provider      *string        `envconfig:"SCREENER_PROVIDER"`
	BaseURL       *string        `envconfig:"SCREENER_BASE_URL"`
	APIKey        *string        `envconfig:"SCREENER_API_KEY"`
	Strategy      *string        `envconfig:"SCREENER_STRATEGY"`
	Period        *string        `envconfig:"SCREENER_PERIOD"`
	Universe      *string        `envconfig:"SCREENER_UNIVERSE"`
	CacheBackend  *string        `envconfig:"SCREENER_CACHE_BACKEND"`
	CacheMaxAge   *time.Duration `envconfig:"SCREENER_CACHE_MAX_AGE"`
	RedisAddr     *string        `envconfig:"REDIS_ADDR"`
	RedisPassword *string        `envconfig:"REDIS_PASSWORD"`
	BotToken      *string        `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatID        *int64         `envconfig:"TELEGRAM_CHAT_ID"`
	SQLitePath    *string        `envconfig:"SQLITE_PATH"`
	Proxy         *string        `envconfig:"HTTPS_PROXY"`
	HTTPAddr      *string        `envconfig:"HTTP_ADDR"`
	ScanCron      *string        `envconfig:"SCAN_CRON"`
	LogLevel      *string        `envconfig:"LOG_LEVEL"`
}

// Load reads .env, then the YAML file, then environment overrides, and
// finally fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{}
	cfg.Screener.Params = model.DefaultParams()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	var env envOverrides
	if err := envconfig.Process("", &env); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	cfg.applyEnv(env)
	cfg.applyDefaults()
	return cfg, nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func (c *Config) applyEnv(env envOverrides) {
	set(&c.Screener.Provider, env.Provider)
	set(&c.Screener.BaseURL, env.BaseURL)
	set(&c.Screener.APIKey, env.APIKey)
	set(&c.Screener.Strategy, env.Strategy)
	set(&c.Screener.Period, env.Period)
	set(&c.Screener.Universe, env.Universe)
	set(&c.Cache.Backend, env.CacheBackend)
	set(&c.Cache.MaxAge, env.CacheMaxAge)
	set(&c.Cache.Redis.Addr, env.RedisAddr)
	set(&c.Cache.Redis.Password, env.RedisPassword)
	set(&c.Telegram.BotToken, env.BotToken)
	set(&c.Telegram.ChatID, env.ChatID)
	set(&c.Database.SQLitePath, env.SQLitePath)
	set(&c.Proxy, env.Proxy)
	set(&c.HTTP.Addr, env.HTTPAddr)
	set(&c.Schedule.ScanCron, env.ScanCron)
	set(&c.Log.Level, env.LogLevel)
}

func (c *Config) applyDefaults() {
	if c.Screener.Provider == "" {
		c.Screener.Provider = "yahoo"
	}
	if c.Screener.Strategy == "" {
		c.Screener.Strategy = strategy.MomentumBreakout.Slug()
	}
	if c.Screener.Period == "" {
		c.Screener.Period = "2y"
	}
	if c.Screener.Interval == "" {
		c.Screener.Interval = "1d"
	}
	if c.Screener.Retries == 0 {
		c.Screener.Retries = 2
	}
	if c.Screener.RetryDelay == 0 {
		c.Screener.RetryDelay = 500 * time.Millisecond
	}
	if c.Screener.Timeout == 0 {
		c.Screener.Timeout = 30 * time.Second
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "file"
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = "data/cache"
	}
	if c.Cache.MaxAge == 0 {
		c.Cache.MaxAge = 12 * time.Hour
	}
	if c.Schedule.ScanCron == "" {
		c.Schedule.ScanCron = "0 30 16 * * 1-5"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/screener.db"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
}

// Kind returns the configured default strategy.
func (c *Config) Kind() (strategy.Kind, error) {
	return strategy.ParseKind(c.Screener.Strategy)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Screener.Provider {
	case "yahoo", "static":
	case "rest":
		if c.Screener.BaseURL == "" {
			return fmt.Errorf("screener.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("unknown screener.provider %q", c.Screener.Provider)
	}
	if _, err := c.Kind(); err != nil {
		return fmt.Errorf("screener.strategy: %w", err)
	}
	if _, err := collector.ParsePeriod(c.Screener.Period, time.Now()); err != nil {
		return fmt.Errorf("screener.period: %w", err)
	}
	if c.Screener.Retries < 1 {
		return fmt.Errorf("screener.retries must be at least 1")
	}
	if c.Screener.Workers < 0 {
		return fmt.Errorf("screener.warm_workers must not be negative")
	}
	if err := c.Screener.Params.Validate(); err != nil {
		return fmt.Errorf("screener.params: %w", err)
	}

	switch c.Cache.Backend {
	case "file", "none":
	case "redis":
		if c.Cache.Redis.Addr == "" {
			return fmt.Errorf("cache.redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("unknown cache.backend %q", c.Cache.Backend)
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log.format %q", c.Log.Format)
	}
	return nil
}
