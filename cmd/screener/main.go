package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"StockScreener/internal/api"
	"StockScreener/internal/collector"
	"StockScreener/internal/config"
	"StockScreener/internal/logger"
	"StockScreener/internal/metrics"
	"StockScreener/internal/report"
	"StockScreener/internal/scheduler"
	"StockScreener/internal/strategy"
	"StockScreener/internal/universe"
)

const usage = `Usage: screener <command> [flags]

Commands:
  scan    run one screening pass and print the results
  serve   run scheduled scans, the HTTP API and Telegram commands

Run "screener <command> --help" for flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "scan":
		err = runScan(os.Args[2:])
	case "serve":
		err = runServe(os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "screener: %v\n", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "configs/config.yaml"
}

// setup loads and validates the configuration, then installs the logger.
func setup(cfgPath string, override func(*config.Config)) (*config.Config, func(), error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("config validation: %w", err)
	}
	flush, err := logger.Init(cfg.Log.Level, cfg.Log.Format, "screener")
	if err != nil {
		return nil, nil, err
	}
	return cfg, flush, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runScan(args []string) error {
	fs := pflag.NewFlagSet("scan", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", defaultConfigPath(), "config file")
	kindName := fs.StringP("strategy", "s", "", "strategy slug or name (see --list)")
	period := fs.StringP("period", "p", "", "history to fetch, e.g. 240d, 2y")
	provider := fs.String("provider", "", "data source: yahoo, rest or static")
	universeFile := fs.StringP("universe", "u", "", "ticker file (default: built-in S&P 500 subset)")
	tickers := fs.StringSliceP("tickers", "t", nil, "comma separated tickers to scan instead of the universe")
	csvPath := fs.StringP("output", "o", "", "write matches as CSV to this file or directory")
	all := fs.BoolP("all", "a", false, "print every evaluated ticker, not only matches")
	warm := fs.Int("warm", -1, "pre-fetch into the cache with this many workers (-1 uses the config)")
	list := fs.Bool("list", false, "list strategies and exit")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if *list {
		for _, k := range strategy.Kinds() {
			fmt.Printf("%-24s %s\n", k.Slug(), k)
		}
		return nil
	}

	cfg, flush, err := setup(*cfgPath, func(c *config.Config) {
		if *kindName != "" {
			c.Screener.Strategy = *kindName
		}
		if *period != "" {
			c.Screener.Period = *period
		}
		if *provider != "" {
			c.Screener.Provider = *provider
		}
		if *universeFile != "" {
			c.Screener.Universe = *universeFile
		}
		if *warm >= 0 {
			c.Screener.Workers = *warm
		}
	})
	if err != nil {
		return err
	}
	defer flush()

	ctx, cancel := signalContext()
	defer cancel()

	kind, _ := cfg.Kind()
	base, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	c := newCache(cfg)
	defer c.Close()
	fetcher := collector.NewCachedFetcher(base, c, cfg.Cache.MaxAge)

	sc := newScreener(cfg, fetcher, nil)
	if len(*tickers) > 0 {
		sc.Universe = universe.Static(*tickers)
	}
	if cfg.Screener.Workers > 0 {
		names, err := sc.Universe.Tickers(ctx)
		if err != nil {
			return err
		}
		n, err := collector.Warm(ctx, fetcher, names, cfg.Screener.Period, cfg.Screener.Interval, cfg.Screener.Workers)
		if err != nil {
			return fmt.Errorf("warm cache: %w", err)
		}
		zap.S().Infof("cache warmed: %d/%d tickers", n, len(names))
	}
	sc.OnProgress = func(done, total int, ticker string) {
		fmt.Fprintf(os.Stderr, "\r[%d/%d] %-8s", done, total, ticker)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}

	rep, err := sc.Run(ctx, kind, cfg.Screener.Params)
	if err != nil {
		return err
	}

	matches := rep.Matches()
	fmt.Printf("%s: found %d matches out of %d evaluated (%d without data)\n\n",
		kind, len(matches), len(rep.Rows), len(rep.Skipped))
	rows := matches
	if *all {
		rows = rep.Rows
	}
	if len(rows) > 0 {
		if err := report.WriteTable(os.Stdout, rows); err != nil {
			return err
		}
	}

	if *csvPath != "" && len(matches) > 0 {
		path := *csvPath
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			path = filepath.Join(path, report.CSVFileName(kind))
		}
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := report.WriteCSV(f, matches); err != nil {
			return err
		}
		zap.S().Infof("matches written to %s", path)
	}
	return nil
}

func runServe(args []string) error {
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	cfgPath := fs.StringP("config", "c", defaultConfigPath(), "config file")
	addr := fs.String("addr", "", "HTTP listen address (overrides http.addr)")
	runOnStart := fs.Bool("run-on-start", os.Getenv("RUN_ON_START") == "true", "run a scan immediately")
	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	cfg, flush, err := setup(*cfgPath, func(c *config.Config) {
		if *addr != "" {
			c.HTTP.Addr = *addr
		}
	})
	if err != nil {
		return err
	}
	defer flush()
	zap.S().Info("screener service starting...")

	ctx, cancel := signalContext()
	defer cancel()

	kind, _ := cfg.Kind()
	m := metrics.New()

	base, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	zap.S().Infof("data source: %s", base.Name())
	c := newCache(cfg)
	defer c.Close()
	fetcher := collector.NewCachedFetcher(base, c, cfg.Cache.MaxAge)
	sc := newScreener(cfg, fetcher, m)

	rec := newRecorder(cfg)
	defer rec.Close()

	tn := newNotifier(cfg)
	var n scheduler.Notifier
	if tn != nil {
		n = tn
	}

	sched := scheduler.NewScheduler(ctx, sc, n, rec, kind, cfg.Screener.Params)
	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		zap.S().Info("telegram polling started")
	}

	if *runOnStart {
		zap.S().Info("run-on-start enabled, scanning now")
		go func() {
			if _, err := sched.RunNow(ctx, kind, cfg.Screener.Params); err != nil {
				zap.S().Errorf("startup scan: %v", err)
			}
		}()
	}

	srv := &api.Server{
		Scanner:  sched,
		Recorder: rec,
		Metrics:  m,
		Strategy: kind,
		Params:   cfg.Screener.Params,
	}
	err = srv.ListenAndServe(ctx, cfg.HTTP.Addr)
	zap.S().Info("shutdown signal received, stopping...")
	return err
}
