package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"StockScreener/internal/model"
	"StockScreener/internal/recorder"
	"StockScreener/internal/report"
	"StockScreener/internal/strategy"
)

// ErrScanInProgress is returned when a scan is requested while another runs.
var ErrScanInProgress = errors.New("scan already in progress")

// Runner executes one screening pass.
type Runner interface {
	Run(ctx context.Context, kind strategy.Kind, p model.Params) (*model.Report, error)
}

// Notifier delivers scan summaries.
type Notifier interface {
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// Scheduler runs scans on a cron schedule and on demand, then records,
// notifies and publishes the latest report.
type Scheduler struct {
	Cron     *cron.Cron
	Screener Runner
	Notifier Notifier
	Recorder recorder.Recorder
	Strategy strategy.Kind
	Params   model.Params
	Ctx      context.Context

	running sync.Mutex
	mu      sync.RWMutex
	latest  *model.Report
}

// NewScheduler creates a new Scheduler. A nil notifier or recorder disables
// that step.
func NewScheduler(ctx context.Context, sc Runner, n Notifier, rec recorder.Recorder, kind strategy.Kind, p model.Params) *Scheduler {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Screener: sc,
		Notifier: n,
		Recorder: rec,
		Strategy: kind,
		Params:   p,
		Ctx:      ctx,
	}
}

// Register schedules the default strategy scan.
func (s *Scheduler) Register(scanCron string) error {
	if _, err := s.Cron.AddFunc(scanCron, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	zap.S().Info("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	zap.S().Info("scheduler stopped")
}

func (s *Scheduler) scanTask() {
	if _, err := s.RunNow(s.Ctx, s.Strategy, s.Params); err != nil {
		zap.S().Errorf("scheduled scan: %v", err)
	}
}

// Latest returns the most recent completed report, or nil.
func (s *Scheduler) Latest() *model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// RunNow runs one scan immediately. Only one scan runs at a time.
func (s *Scheduler) RunNow(ctx context.Context, kind strategy.Kind, p model.Params) (*model.Report, error) {
	if !s.running.TryLock() {
		return nil, ErrScanInProgress
	}
	defer s.running.Unlock()

	zap.S().Infof("running %s scan", kind)
	rep, err := s.Screener.Run(ctx, kind, p)
	if err != nil {
		s.trySend(ctx, fmt.Sprintf("❌ %s scan failed: %v", kind, err))
		return rep, fmt.Errorf("%s scan: %w", kind, err)
	}

	if err := s.Recorder.RecordRun(rep); err != nil {
		zap.S().Errorf("record run: %v", err)
	}
	s.mu.Lock()
	s.latest = rep
	s.mu.Unlock()

	s.trySend(ctx, report.FormatTelegram(rep))
	return rep, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help()
	}
	name, _, _ := strings.Cut(fields[0], "@")

	switch strings.ToLower(name) {
	case "/scan":
		kind := s.Strategy
		if len(fields) > 1 {
			k, err := strategy.ParseKind(strings.Join(fields[1:], " "))
			if err != nil {
				return fmt.Sprintf("⚠️ %v\n\n%s", err, report.FormatStrategies(s.Strategy))
			}
			kind = k
		}
		if _, err := s.RunNow(ctx, kind, s.Params); err != nil {
			if errors.Is(err, ErrScanInProgress) {
				return "⏳ A scan is already running."
			}
			zap.S().Errorf("command scan: %v", err)
		}
		// The summary or failure was already sent by RunNow.
		return ""
	case "/strategies":
		return report.FormatStrategies(s.Strategy)
	case "/last":
		return report.FormatTelegram(s.Latest())
	default:
		return help()
	}
}

func help() string {
	return "Commands:\n• /scan [strategy]\n• /strategies\n• /last"
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.SendWithRetry(ctx, text, 3); err != nil {
		zap.S().Errorf("send notification: %v", err)
	}
}
