// Package settings persists the application settings record and keeps the
// background sync schedule in step with it.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/repository/store"
)

// ErrInvalidSettings is returned when an update carries an unusable value.
var ErrInvalidSettings = errors.New("invalid settings")

// SyncController is the part of the sync scheduler that follows settings changes.
type SyncController interface {
	Start(ctx context.Context) error
	Stop()
}

// Service reads and updates AppSettings.
type Service struct {
	store  store.Store
	logger *zap.Logger

	mu         sync.Mutex
	controller SyncController
}

// NewService builds the settings service.
func NewService(s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger}
}

// SetSyncController registers the scheduler restarted on sync setting changes.
func (s *Service) SetSyncController(c SyncController) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller = c
}

// Get returns the stored settings. On first use, or when the record cannot be
// decoded, the defaults are stored and returned.
func (s *Service) Get(ctx context.Context) (models.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// Update applies patch and persists the result. When autoSync or syncInterval
// changed, the sync schedule is stopped and started again if autoSync is on.
func (s *Service) Update(ctx context.Context, patch models.SettingsPatch) (models.AppSettings, error) {
	current, next, controller, err := s.apply(ctx, patch)
	if err != nil {
		return current, err
	}

	if next.AutoSync == current.AutoSync && next.SyncInterval == current.SyncInterval {
		return next, nil
	}

	s.logger.Info("sync settings changed",
		zap.Bool("auto_sync", next.AutoSync),
		zap.Int("sync_interval_minutes", next.SyncInterval),
	)

	// The controller reads settings back, so it runs outside the lock.
	if controller == nil {
		return next, nil
	}

	controller.Stop()
	if next.AutoSync {
		if err := controller.Start(ctx); err != nil {
			return next, fmt.Errorf("restart sync: %w", err)
		}
	}
	return next, nil
}

func (s *Service) apply(ctx context.Context, patch models.SettingsPatch) (current, next models.AppSettings, controller SyncController, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err = s.load(ctx)
	if err != nil {
		return models.AppSettings{}, models.AppSettings{}, nil, err
	}

	next = patch.Apply(current)
	if err := validate(next); err != nil {
		return current, current, nil, err
	}

	if err := store.SetJSON(ctx, s.store, store.KeyAppSettings, next); err != nil {
		return current, current, nil, fmt.Errorf("save settings: %w", err)
	}
	return current, next, s.controller, nil
}

func (s *Service) load(ctx context.Context) (models.AppSettings, error) {
	var out models.AppSettings
	err := store.GetJSON(ctx, s.store, store.KeyAppSettings, &out)
	switch {
	case err == nil:
		return out, nil
	case errors.Is(err, store.ErrCorrupt):
		s.logger.Warn("stored settings unreadable, resetting to defaults", zap.Error(err))
	case !errors.Is(err, store.ErrNotFound):
		return models.AppSettings{}, fmt.Errorf("load settings: %w", err)
	}

	out = models.DefaultAppSettings()
	if err := store.SetJSON(ctx, s.store, store.KeyAppSettings, out); err != nil {
		return models.AppSettings{}, fmt.Errorf("save default settings: %w", err)
	}
	return out, nil
}

func validate(s models.AppSettings) error {
	if s.SyncInterval <= 0 {
		return fmt.Errorf("%w: syncInterval must be positive", ErrInvalidSettings)
	}
	switch s.Theme {
	case "auto", "light", "dark":
	default:
		return fmt.Errorf("%w: unknown theme %q", ErrInvalidSettings, s.Theme)
	}
	if s.DefaultLine < 0 {
		return fmt.Errorf("%w: defaultLine must not be negative", ErrInvalidSettings)
	}
	return nil
}
