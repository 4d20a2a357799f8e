// Package app builds the object graph shared by the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/config"
	"github.com/mamadbah2/linetrack/internal/repository/sheets"
	"github.com/mamadbah2/linetrack/internal/repository/store"
	"github.com/mamadbah2/linetrack/internal/scheduler"
	"github.com/mamadbah2/linetrack/internal/server/handlers"
	"github.com/mamadbah2/linetrack/internal/service/connectivity"
	"github.com/mamadbah2/linetrack/internal/service/notify"
	"github.com/mamadbah2/linetrack/internal/service/offline"
	"github.com/mamadbah2/linetrack/internal/service/production"
	"github.com/mamadbah2/linetrack/internal/service/reporting"
	"github.com/mamadbah2/linetrack/internal/service/session"
	"github.com/mamadbah2/linetrack/internal/service/settings"
	"github.com/mamadbah2/linetrack/pkg/clients/api"
	"github.com/mamadbah2/linetrack/pkg/logger"
)

// App owns every long-lived component.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Store       store.Store
	Client      *api.Client
	Session     *session.Service
	Production  *production.Service
	Submissions *offline.Service
	Settings    *settings.Service
	Reports     *reporting.Service
	Scheduler   *scheduler.Scheduler
}

// New opens the store, resolves the backend address and wires the services.
// The sync schedule is not started; call Scheduler.Start for that.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}

	st, err := store.Open(ctx, cfg.Store, cfg.MongoDB)
	if err != nil {
		return nil, err
	}

	a, err := wire(ctx, cfg, log, st)
	if err != nil {
		_ = st.Close(ctx)
		return nil, err
	}
	return a, nil
}

func wire(ctx context.Context, cfg *config.Config, log *zap.Logger, st store.Store) (*App, error) {
	sessionSvc := session.NewService(st, logger.Named(log, "svc.session"))

	candidates := cfg.API.BaseURLCandidates()
	baseURL := api.ResolveBaseURL(ctx, candidates, cfg.API.ProbeTimeout, logger.Named(log, "api.resolve"))
	client := api.NewClient(baseURL, cfg.API.Timeout, sessionSvc)

	productionSvc := production.NewService(client, st, logger.Named(log, "svc.production"))
	submissions := offline.NewService(client, productionSvc, offline.NewQueue(st), cfg.Sync.DrainPolicy, logger.Named(log, "svc.offline"))
	settingsSvc := settings.NewService(st, logger.Named(log, "svc.settings"))
	probe := connectivity.NewProbe(client, cfg.API.ProbeTimeout, logger.Named(log, "svc.connectivity"))
	if len(candidates) > 1 {
		probe.SetRebaser(api.NewRebaser(client, candidates, cfg.API.ProbeTimeout, logger.Named(log, "api.resolve")))
	}
	notifier := notify.New(cfg.WhatsApp, logger.Named(log, "svc.notify"))

	var sheetRepo sheets.Repository
	if cfg.Sheets.SpreadsheetID != "" {
		repo, err := sheets.NewGoogleSheetRepository(ctx, cfg.Sheets, logger.Named(log, "repo.sheets"))
		if err != nil {
			return nil, err
		}
		sheetRepo = repo
	}
	reports := reporting.NewService(productionSvc, sheetRepo, notifier, logger.Named(log, "svc.reporting"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, submissions, probe, settingsSvc, notifier, reports, logger.Named(log, "scheduler"))
	if err != nil {
		return nil, fmt.Errorf("init scheduler: %w", err)
	}
	settingsSvc.SetSyncController(sched)

	log.Info("application wired",
		zap.String("base_url", baseURL),
		zap.String("store", cfg.Store.Driver),
		zap.String("drain_policy", cfg.Sync.DrainPolicy),
	)

	return &App{
		Config:      cfg,
		Logger:      log,
		Store:       st,
		Client:      client,
		Session:     sessionSvc,
		Production:  productionSvc,
		Submissions: submissions,
		Settings:    settingsSvc,
		Reports:     reports,
		Scheduler:   sched,
	}, nil
}

// Handler builds the HTTP handler over the app's services.
func (a *App) Handler() *handlers.Handler {
	return handlers.New(a.Production, a.Submissions, a.Scheduler, a.Settings, a.Session, a.Reports, logger.Named(a.Logger, "handlers"))
}

// Close stops the scheduler and closes the store.
func (a *App) Close(ctx context.Context) error {
	return errors.Join(a.Scheduler.Close(ctx), a.Store.Close(ctx))
}
