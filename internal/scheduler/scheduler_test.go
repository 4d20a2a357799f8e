package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/linetrack/internal/config"
	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/repository/store"
	"github.com/mamadbah2/linetrack/internal/service/reporting"
	"github.com/mamadbah2/linetrack/internal/service/settings"
)

type drainFunc func(ctx context.Context) (int, error)

func (f drainFunc) Drain(ctx context.Context) (int, error) { return f(ctx) }

type staticConnectivity bool

func (c staticConnectivity) Online(context.Context) bool { return bool(c) }

type recordingNotifier struct {
	mu    sync.Mutex
	texts []string
}

func (r *recordingNotifier) Notify(_ context.Context, text string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.texts = append(r.texts, text)
	return nil
}

type stubReporter struct {
	day time.Time
}

func (s *stubReporter) Export(_ context.Context, day time.Time) (reporting.DailyReport, error) {
	s.day = day
	return reporting.DailyReport{Day: day.Format("2006-01-02")}, nil
}

type harness struct {
	sched    *Scheduler
	settings *settings.Service
	notifier *recordingNotifier
}

func newHarness(t *testing.T, drainer Drainer, online bool) *harness {
	t.Helper()

	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })

	settingsSvc := settings.NewService(s, nil)
	notifier := &recordingNotifier{}

	sched, err := NewScheduler(config.ReportingConfig{Timezone: "UTC"}, drainer, staticConnectivity(online), settingsSvc, notifier, nil, nil)
	require.NoError(t, err)
	settingsSvc.SetSyncController(sched)

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = sched.Close(ctx)
	})

	return &harness{sched: sched, settings: settingsSvc, notifier: notifier}
}

func ptr[T any](v T) *T { return &v }

func noopDrain(context.Context) (int, error) { return 0, nil }

func TestStartTwiceKeepsOneSchedule(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, drainFunc(noopDrain), true)

	require.NoError(t, h.sched.Start(ctx))
	require.NoError(t, h.sched.Start(ctx))

	assert.Len(t, h.sched.cron.Entries(), 1)
	assert.Equal(t, 30*time.Minute, h.sched.Interval())
}

func TestStartWithAutoSyncOff(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, drainFunc(noopDrain), true)

	require.NoError(t, h.sched.Start(ctx))
	_, err := h.settings.Update(ctx, models.SettingsPatch{AutoSync: ptr(false)})
	require.NoError(t, err)

	assert.Empty(t, h.sched.cron.Entries())
	assert.Zero(t, h.sched.Interval())

	require.NoError(t, h.sched.Start(ctx))
	assert.Empty(t, h.sched.cron.Entries())
}

func TestStopIsIdempotent(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, drainFunc(noopDrain), true)

	h.sched.Stop()
	require.NoError(t, h.sched.Start(ctx))
	h.sched.Stop()
	h.sched.Stop()

	assert.Empty(t, h.sched.cron.Entries())
	assert.Zero(t, h.sched.Interval())
}

func TestIntervalChangeReschedules(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, drainFunc(noopDrain), true)
	require.NoError(t, h.sched.Start(ctx))

	_, err := h.settings.Update(ctx, models.SettingsPatch{SyncInterval: ptr(5)})
	require.NoError(t, err)

	assert.Len(t, h.sched.cron.Entries(), 1)
	assert.Equal(t, 5*time.Minute, h.sched.Interval())

	entry := h.sched.cron.Entries()[0]
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), entry.Next, 5*time.Second)

	_, err = h.settings.Update(ctx, models.SettingsPatch{AutoSync: ptr(false)})
	require.NoError(t, err)
	_, err = h.settings.Update(ctx, models.SettingsPatch{AutoSync: ptr(true)})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, h.sched.Interval())
}

func TestRunSyncOffline(t *testing.T) {
	drained := false
	h := newHarness(t, drainFunc(func(context.Context) (int, error) {
		drained = true
		return 1, nil
	}), false)

	out := h.sched.RunSync(context.Background())
	assert.Equal(t, models.SyncOutcome{Success: false, Message: "No internet connection"}, out)
	assert.False(t, drained)
}

func TestRunSyncNothingToSync(t *testing.T) {
	h := newHarness(t, drainFunc(noopDrain), true)

	out := h.sched.RunSync(context.Background())
	assert.Equal(t, models.SyncOutcome{Success: true, Message: "No offline entries to sync"}, out)
	assert.Empty(t, h.notifier.texts)
}

func TestRunSyncReportsCountAndNotifies(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, drainFunc(func(context.Context) (int, error) { return 3, nil }), true)

	out := h.sched.RunSync(ctx)
	assert.Equal(t, models.SyncOutcome{Success: true, Message: "3 entries synced", SyncedCount: 3}, out)
	assert.Equal(t, []string{"3 entries synced"}, h.notifier.texts)

	_, err := h.settings.Update(ctx, models.SettingsPatch{Notifications: ptr(false)})
	require.NoError(t, err)

	h.sched.RunSync(ctx)
	assert.Len(t, h.notifier.texts, 1)
}

func TestRunSyncOutlivesCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h := newHarness(t, drainFunc(func(drainCtx context.Context) (int, error) {
		cancel()
		if err := drainCtx.Err(); err != nil {
			return 0, err
		}
		return 2, nil
	}), true)

	out := h.sched.RunSync(ctx)
	assert.Equal(t, models.SyncOutcome{Success: true, Message: "2 entries synced", SyncedCount: 2}, out)
}

func TestRunSyncDrainFailure(t *testing.T) {
	h := newHarness(t, drainFunc(func(context.Context) (int, error) {
		return 0, errors.New("load offline queue: disk full")
	}), true)

	out := h.sched.RunSync(context.Background())
	assert.Equal(t, models.SyncOutcome{Success: false, Message: "Sync failed: load offline queue: disk full"}, out)
}

func TestRunSyncRecoversPanic(t *testing.T) {
	h := newHarness(t, drainFunc(func(context.Context) (int, error) {
		panic("corrupt entry")
	}), true)

	out := h.sched.RunSync(context.Background())
	assert.Equal(t, models.SyncOutcome{Success: false, Message: "Sync failed: corrupt entry"}, out)

	// The guard is released after a panic.
	assert.False(t, h.sched.syncing.Load())
}

func TestRunSyncRejectsConcurrentPass(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int
	var mu sync.Mutex

	h := newHarness(t, drainFunc(func(context.Context) (int, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		close(entered)
		<-release
		return 2, nil
	}), true)

	first := make(chan models.SyncOutcome, 1)
	go func() { first <- h.sched.RunSync(context.Background()) }()

	<-entered
	out := h.sched.RunSync(context.Background())
	assert.Equal(t, models.SyncOutcome{Success: false, Message: "Sync already in progress"}, out)

	close(release)
	assert.Equal(t, 2, (<-first).SyncedCount)

	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()
}

func TestDailyReportJob(t *testing.T) {
	reporter := &stubReporter{}
	sched, err := NewScheduler(config.ReportingConfig{CronSchedule: "0 7 * * *", Timezone: "Asia/Dhaka"},
		drainFunc(noopDrain), staticConnectivity(true), nil, nil, reporter, nil)
	require.NoError(t, err)
	assert.Len(t, sched.cron.Entries(), 1)

	sched.exportDailyReport()

	loc, err := time.LoadLocation("Asia/Dhaka")
	require.NoError(t, err)
	want := time.Now().In(loc).AddDate(0, 0, -1).Format("2006-01-02")
	assert.Equal(t, want, reporter.day.Format("2006-01-02"))
	assert.Equal(t, "Asia/Dhaka", reporter.day.Location().String())
}

func TestNewSchedulerRejectsBadConfig(t *testing.T) {
	_, err := NewScheduler(config.ReportingConfig{CronSchedule: "not a schedule"}, nil, nil, nil, nil, &stubReporter{}, nil)
	assert.Error(t, err)

	_, err = NewScheduler(config.ReportingConfig{Timezone: "Mars/Olympus"}, nil, nil, nil, nil, nil, nil)
	assert.Error(t, err)
}
