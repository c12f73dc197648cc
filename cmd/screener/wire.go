package main

import (
	"fmt"

	"go.uber.org/zap"

	"StockScreener/internal/cache"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/metrics"
	"StockScreener/internal/notifier"
	"StockScreener/internal/recorder"
	"StockScreener/internal/screener"
	"StockScreener/internal/universe"
)

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	sc := cfg.Screener
	switch sc.Provider {
	case "yahoo":
		return collector.NewYahooFetcher(cfg.Proxy, sc.Timeout), nil
	case "rest":
		return collector.NewRESTFetcher(sc.BaseURL, sc.APIKey, cfg.Proxy, sc.Timeout), nil
	case "static":
		return &collector.StaticFetcher{Synthesize: 300}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", sc.Provider)
	}
}

// newCache falls back to no caching when the backend cannot be opened.
func newCache(cfg *config.Config) cache.Cache {
	switch cfg.Cache.Backend {
	case "file":
		c, err := cache.NewFileCache(cfg.Cache.Dir)
		if err != nil {
			zap.S().Warnf("init file cache failed, caching disabled: %v", err)
			return cache.NewNopCache()
		}
		return c
	case "redis":
		c, err := cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			TTL:      cfg.Cache.MaxAge,
		})
		if err != nil {
			zap.S().Warnf("init redis cache failed, caching disabled: %v", err)
			return cache.NewNopCache()
		}
		return c
	default:
		return cache.NewNopCache()
	}
}

func newUniverse(cfg *config.Config) universe.Source {
	if cfg.Screener.Universe != "" {
		return universe.File{Path: cfg.Screener.Universe}
	}
	return universe.SP500()
}

func newRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	if err != nil {
		zap.S().Warnf("init sqlite recorder failed, using noop: %v", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}

// newNotifier returns nil when Telegram is not configured or unreachable.
func newNotifier(cfg *config.Config) *notifier.TelegramNotifier {
	if cfg.Telegram.BotToken == "" {
		zap.S().Info("telegram not configured, notifications disabled")
		return nil
	}
	tn, err := notifier.NewTelegramNotifier(notifier.TelegramConfig{
		Token:    cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		ProxyURL: cfg.Proxy,
	})
	if err != nil {
		zap.S().Warnf("init telegram failed, notifications disabled: %v", err)
		return nil
	}
	return tn
}

func newScreener(cfg *config.Config, f collector.Fetcher, m *metrics.Metrics) *screener.Screener {
	sc := screener.New(f, newUniverse(cfg), cfg.Screener.Period)
	sc.Interval = cfg.Screener.Interval
	sc.Retrier = collector.Retrier{Attempts: cfg.Screener.Retries, Delay: cfg.Screener.RetryDelay}
	sc.Metrics = m
	return sc
}
