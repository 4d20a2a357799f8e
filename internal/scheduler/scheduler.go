package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/config"
	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/metrics"
	"github.com/mamadbah2/linetrack/internal/service/notify"
	"github.com/mamadbah2/linetrack/internal/service/reporting"
	"github.com/mamadbah2/linetrack/pkg/logger"
)

// Outcome messages of RunSync.
const (
	MsgSyncInProgress = "Sync already in progress"
	MsgOffline        = "No internet connection"
	MsgNothingToSync  = "No offline entries to sync"
)

const reportTimeout = 2 * time.Minute

// Drainer replays the offline queue.
type Drainer interface {
	Drain(ctx context.Context) (int, error)
}

// Connectivity reports whether the backend is reachable.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// SettingsReader reads the current application settings.
type SettingsReader interface {
	Get(ctx context.Context) (models.AppSettings, error)
}

// Reporter exports the daily production report.
type Reporter interface {
	Export(ctx context.Context, day time.Time) (reporting.DailyReport, error)
}

// Scheduler owns the background sync schedule and the daily report job.
// At most one sync schedule exists at a time, and at most one sync runs.
type Scheduler struct {
	cron         *cron.Cron
	drainer      Drainer
	connectivity Connectivity
	settings     SettingsReader
	notifier     notify.Notifier
	reporter     Reporter
	location     *time.Location
	logger       *zap.Logger

	mu        sync.Mutex
	syncEntry cron.EntryID

	syncing atomic.Bool
}

// NewScheduler creates a scheduler. The report job is registered when cfg has a
// cron schedule and reporter is non-nil; it runs once Start is called.
func NewScheduler(cfg config.ReportingConfig, drainer Drainer, connectivity Connectivity, settings SettingsReader, notifier notify.Notifier, reporter Reporter, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if notifier == nil {
		notifier = notify.Nop{}
	}

	location := time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("load timezone %s: %w", cfg.Timezone, err)
		}
		location = loc
	}

	cronLogger := logger.NewCronLogger(log)
	c := cron.New(
		cron.WithLocation(location),
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
	)

	s := &Scheduler{
		cron:         c,
		drainer:      drainer,
		connectivity: connectivity,
		settings:     settings,
		notifier:     notifier,
		reporter:     reporter,
		location:     location,
		logger:       log,
	}

	if cfg.CronSchedule != "" && reporter != nil {
		if _, err := c.AddFunc(cfg.CronSchedule, s.exportDailyReport); err != nil {
			return nil, fmt.Errorf("schedule daily report %q: %w", cfg.CronSchedule, err)
		}
		log.Info("daily report scheduled", zap.String("schedule", cfg.CronSchedule), zap.String("timezone", location.String()))
	}

	return s, nil
}

// Start replaces any sync schedule with one built from the current settings.
// With autoSync off no schedule remains.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cron.Start()
	s.removeSyncLocked()

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("read sync settings: %w", err)
	}
	if !settings.AutoSync {
		s.logger.Info("auto sync disabled")
		return nil
	}

	period := settings.SyncPeriod()
	s.syncEntry = s.cron.Schedule(cron.Every(period), cron.FuncJob(s.syncJob))
	s.logger.Info("background sync started", zap.Duration("interval", period))
	return nil
}

// Stop removes the sync schedule. It is safe to call when nothing is scheduled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removeSyncLocked() {
		s.logger.Info("background sync stopped")
	}
}

// Interval reports the period of the active sync schedule, 0 when there is none.
func (s *Scheduler) Interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.syncEntry == 0 {
		return 0
	}
	if every, ok := s.cron.Entry(s.syncEntry).Schedule.(cron.ConstantDelaySchedule); ok {
		return every.Delay
	}
	return 0
}

// Close stops the cron engine and waits for running jobs until ctx is done.
func (s *Scheduler) Close(ctx context.Context) error {
	s.mu.Lock()
	s.removeSyncLocked()
	s.mu.Unlock()

	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// RunSync performs one sync pass. It never panics and never overlaps another pass.
// A started pass runs to completion even if ctx is cancelled; per-request
// gateway timeouts bound it.
func (s *Scheduler) RunSync(ctx context.Context) models.SyncOutcome {
	if !s.syncing.CompareAndSwap(false, true) {
		metrics.SyncRuns.WithLabelValues("busy").Inc()
		return models.SyncOutcome{Success: false, Message: MsgSyncInProgress}
	}
	defer s.syncing.Store(false)

	return s.runSync(context.WithoutCancel(ctx))
}

func (s *Scheduler) runSync(ctx context.Context) (out models.SyncOutcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("sync panicked", zap.Any("panic", r))
			metrics.SyncRuns.WithLabelValues("failed").Inc()
			out = models.SyncOutcome{Success: false, Message: fmt.Sprintf("Sync failed: %v", r)}
		}
	}()

	if !s.connectivity.Online(ctx) {
		metrics.SyncRuns.WithLabelValues("offline").Inc()
		return models.SyncOutcome{Success: false, Message: MsgOffline}
	}

	synced, err := s.drainer.Drain(ctx)
	if err != nil {
		s.logger.Error("sync failed", zap.Error(err))
		metrics.SyncRuns.WithLabelValues("failed").Inc()
		return models.SyncOutcome{Success: false, Message: "Sync failed: " + err.Error()}
	}

	if synced == 0 {
		metrics.SyncRuns.WithLabelValues("empty").Inc()
		return models.SyncOutcome{Success: true, Message: MsgNothingToSync}
	}

	metrics.SyncRuns.WithLabelValues("synced").Inc()
	message := fmt.Sprintf("%d entries synced", synced)
	s.notifySynced(ctx, message)
	return models.SyncOutcome{Success: true, Message: message, SyncedCount: synced}
}

func (s *Scheduler) notifySynced(ctx context.Context, message string) {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.logger.Warn("skip sync notification, settings unreadable", zap.Error(err))
		return
	}
	if !settings.Notifications {
		return
	}
	if err := s.notifier.Notify(ctx, message); err != nil {
		s.logger.Warn("failed to send sync notification", zap.Error(err))
	}
}

func (s *Scheduler) syncJob() {
	out := s.RunSync(context.Background())
	s.logger.Info("background sync finished", zap.Bool("success", out.Success), zap.String("message", out.Message))
}

func (s *Scheduler) exportDailyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), reportTimeout)
	defer cancel()

	yesterday := time.Now().In(s.location).AddDate(0, 0, -1)
	report, err := s.reporter.Export(ctx, yesterday)
	if err != nil {
		s.logger.Error("failed to export daily report", zap.Error(err))
		return
	}
	s.logger.Info("daily report job done", zap.String("day", report.Day), zap.Int("rows", len(report.Rows)))
}

func (s *Scheduler) removeSyncLocked() bool {
	if s.syncEntry == 0 {
		return false
	}
	s.cron.Remove(s.syncEntry)
	s.syncEntry = 0
	return true
}
