// Package production is the cached data access layer over the backend gateway.
//
// Reads never fail: each one tries the backend, then the last snapshot kept in
// the local store, then a built-in dataset, and reports which tier answered.
// Writes other than hourly entries go straight to the backend and surface its
// errors.
package production

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/metrics"
	"github.com/mamadbah2/linetrack/internal/repository/store"
)

// Source tells which tier produced a read result.
type Source string

const (
	SourceFresh   Source = "fresh"
	SourceCached  Source = "cached"
	SourceDefault Source = "default"
)

// Result is a read value together with its provenance.
type Result[T any] struct {
	Data   T      `json:"data"`
	Source Source `json:"source"`
}

// Gateway is the subset of the backend client used by the service.
type Gateway interface {
	GetProductionLines(ctx context.Context) ([]models.ProductionLine, error)
	CreateProductionLine(ctx context.Context, line models.ProductionLine) (models.ProductionLine, error)
	GetBuyers(ctx context.Context) ([]models.Buyer, error)
	CreateBuyer(ctx context.Context, buyer models.Buyer) (models.Buyer, error)
	GetStyles(ctx context.Context, buyerID int) ([]models.Style, error)
	CreateStyle(ctx context.Context, style models.Style) (models.Style, error)
	GetProductionOrders(ctx context.Context, status string) ([]models.ProductionOrder, error)
	CreateProductionOrder(ctx context.Context, order models.ProductionOrder) (models.ProductionOrder, error)
	CreateLineSetup(ctx context.Context, setup models.LineSetup) (models.LineSetup, error)
	GetLineSetups(ctx context.Context, date string) ([]models.LineSetup, error)
	GetHourlyProduction(ctx context.Context, lineSetupID int) ([]models.HourlyProduction, error)
	SubmitQualityDefect(ctx context.Context, defect models.QualityDefect) (models.QualityDefect, error)
	GetDefects(ctx context.Context, hourlyProductionID int) ([]models.QualityDefect, error)
	GetProductionSummary(ctx context.Context, startDate, endDate string, lineID int) ([]models.ProductionSummary, error)
	ExportReport(ctx context.Context, req models.ExportRequest) (models.ExportResult, error)
	GetDashboardMetrics(ctx context.Context, date string) (models.DashboardMetrics, error)
}

type entity struct {
	name     string
	cacheKey string
}

var (
	entityLines     = entity{name: "production_lines", cacheKey: store.KeyCacheLines}
	entityBuyers    = entity{name: "buyers", cacheKey: store.KeyCacheBuyers}
	entityStyles    = entity{name: "styles", cacheKey: store.KeyCacheStyles}
	entityOrders    = entity{name: "orders", cacheKey: store.KeyCacheOrders}
	entityDashboard = entity{name: "dashboard_metrics", cacheKey: store.KeyCacheDashboard}

	// Entities without a snapshot: they degrade straight to defaults.
	entitySummary    = entity{name: "production_summary"}
	entityLineSetups = entity{name: "line_setups"}
	entityHourly     = entity{name: "hourly_entries"}
	entityDefects    = entity{name: "quality_defects"}
)

// Service implements the fallback reads and the plain writes.
type Service struct {
	gateway Gateway
	store   store.Store
	logger  *zap.Logger

	hourlyMu sync.Mutex
}

// NewService wires the data access layer.
func NewService(gateway Gateway, s store.Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{gateway: gateway, store: s, logger: logger}
}

// GetProductionLines returns all production lines.
func (s *Service) GetProductionLines(ctx context.Context) Result[[]models.ProductionLine] {
	return fetch(ctx, s, entityLines, s.gateway.GetProductionLines, defaultLines, nil)
}

// GetBuyers returns all buyers.
func (s *Service) GetBuyers(ctx context.Context) Result[[]models.Buyer] {
	return fetch(ctx, s, entityBuyers, s.gateway.GetBuyers, defaultBuyers, nil)
}

// GetStyles returns styles, for one buyer when buyerID is non-zero. Snapshots
// and defaults are filtered locally since they may hold every buyer's styles.
func (s *Service) GetStyles(ctx context.Context, buyerID int) Result[[]models.Style] {
	remote := func(ctx context.Context) ([]models.Style, error) {
		return s.gateway.GetStyles(ctx, buyerID)
	}
	var filter func([]models.Style) []models.Style
	if buyerID != 0 {
		filter = func(in []models.Style) []models.Style {
			return filterSlice(in, func(st models.Style) bool { return st.BuyerID == buyerID })
		}
	}
	return fetch(ctx, s, entityStyles, remote, defaultStyles, filter)
}

// GetProductionOrders returns orders, for one status when status is set.
func (s *Service) GetProductionOrders(ctx context.Context, status string) Result[[]models.ProductionOrder] {
	remote := func(ctx context.Context) ([]models.ProductionOrder, error) {
		return s.gateway.GetProductionOrders(ctx, status)
	}
	var filter func([]models.ProductionOrder) []models.ProductionOrder
	if status != "" {
		filter = func(in []models.ProductionOrder) []models.ProductionOrder {
			return filterSlice(in, func(o models.ProductionOrder) bool { return strings.EqualFold(o.Status, status) })
		}
	}
	return fetch(ctx, s, entityOrders, remote, defaultOrders, filter)
}

// GetDashboardMetrics returns floor metrics for date (today when empty).
func (s *Service) GetDashboardMetrics(ctx context.Context, date string) Result[models.DashboardMetrics] {
	remote := func(ctx context.Context) (models.DashboardMetrics, error) {
		return s.gateway.GetDashboardMetrics(ctx, date)
	}
	return fetch(ctx, s, entityDashboard, remote, defaultDashboard, nil)
}

// GetProductionSummary returns the summary report or a sample row.
func (s *Service) GetProductionSummary(ctx context.Context, startDate, endDate string, lineID int) Result[[]models.ProductionSummary] {
	remote := func(ctx context.Context) ([]models.ProductionSummary, error) {
		return s.gateway.GetProductionSummary(ctx, startDate, endDate, lineID)
	}
	return fetch(ctx, s, entitySummary, remote, defaultSummary, nil)
}

// GetLineSetups returns line setups for date, or none when unreachable.
func (s *Service) GetLineSetups(ctx context.Context, date string) Result[[]models.LineSetup] {
	remote := func(ctx context.Context) ([]models.LineSetup, error) {
		return s.gateway.GetLineSetups(ctx, date)
	}
	return fetch(ctx, s, entityLineSetups, remote, emptyList[models.LineSetup], nil)
}

// GetHourlyEntriesByLineSetup returns hourly records of a line setup, or none when unreachable.
func (s *Service) GetHourlyEntriesByLineSetup(ctx context.Context, lineSetupID int) Result[[]models.HourlyProduction] {
	remote := func(ctx context.Context) ([]models.HourlyProduction, error) {
		return s.gateway.GetHourlyProduction(ctx, lineSetupID)
	}
	return fetch(ctx, s, entityHourly, remote, emptyList[models.HourlyProduction], nil)
}

// GetDefectsByProductionEntry returns defects of an hourly record, or none when unreachable.
func (s *Service) GetDefectsByProductionEntry(ctx context.Context, hourlyProductionID int) Result[[]models.QualityDefect] {
	remote := func(ctx context.Context) ([]models.QualityDefect, error) {
		return s.gateway.GetDefects(ctx, hourlyProductionID)
	}
	return fetch(ctx, s, entityDefects, remote, emptyList[models.QualityDefect], nil)
}

// CreateProductionLine registers a line on the backend.
func (s *Service) CreateProductionLine(ctx context.Context, line models.ProductionLine) (models.ProductionLine, error) {
	out, err := s.gateway.CreateProductionLine(ctx, line)
	if err != nil {
		return models.ProductionLine{}, fmt.Errorf("create production line: %w", err)
	}
	return out, nil
}

// CreateBuyer registers a buyer on the backend.
func (s *Service) CreateBuyer(ctx context.Context, buyer models.Buyer) (models.Buyer, error) {
	out, err := s.gateway.CreateBuyer(ctx, buyer)
	if err != nil {
		return models.Buyer{}, fmt.Errorf("create buyer: %w", err)
	}
	return out, nil
}

// CreateStyle registers a style on the backend.
func (s *Service) CreateStyle(ctx context.Context, style models.Style) (models.Style, error) {
	out, err := s.gateway.CreateStyle(ctx, style)
	if err != nil {
		return models.Style{}, fmt.Errorf("create style: %w", err)
	}
	return out, nil
}

// CreateProductionOrder registers an order on the backend.
func (s *Service) CreateProductionOrder(ctx context.Context, order models.ProductionOrder) (models.ProductionOrder, error) {
	out, err := s.gateway.CreateProductionOrder(ctx, order)
	if err != nil {
		return models.ProductionOrder{}, fmt.Errorf("create production order: %w", err)
	}
	return out, nil
}

// CreateLineSetup assigns an order to a line on the backend.
func (s *Service) CreateLineSetup(ctx context.Context, setup models.LineSetup) (models.LineSetup, error) {
	out, err := s.gateway.CreateLineSetup(ctx, setup)
	if err != nil {
		return models.LineSetup{}, fmt.Errorf("create line setup: %w", err)
	}
	return out, nil
}

// SubmitQualityDefect records a defect on the backend.
func (s *Service) SubmitQualityDefect(ctx context.Context, defect models.QualityDefect) (models.QualityDefect, error) {
	out, err := s.gateway.SubmitQualityDefect(ctx, defect)
	if err != nil {
		return models.QualityDefect{}, fmt.Errorf("submit quality defect: %w", err)
	}
	return out, nil
}

// ExportReport asks the backend to render a report.
func (s *Service) ExportReport(ctx context.Context, req models.ExportRequest) (models.ExportResult, error) {
	out, err := s.gateway.ExportReport(ctx, req)
	if err != nil {
		return models.ExportResult{}, fmt.Errorf("export report: %w", err)
	}
	return out, nil
}

// AppendHourly adds an accepted hourly record to the local hourly cache.
func (s *Service) AppendHourly(ctx context.Context, rec models.HourlyProduction) error {
	s.hourlyMu.Lock()
	defer s.hourlyMu.Unlock()

	entries, err := s.cachedHourly(ctx)
	if err != nil {
		return err
	}
	entries = append(entries, rec)
	return store.SetJSON(ctx, s.store, store.KeyCacheHourlyEntries, entries)
}

// CachedHourlyEntries returns hourly records accepted through this agent.
func (s *Service) CachedHourlyEntries(ctx context.Context) ([]models.HourlyProduction, error) {
	s.hourlyMu.Lock()
	defer s.hourlyMu.Unlock()
	return s.cachedHourly(ctx)
}

func (s *Service) cachedHourly(ctx context.Context) ([]models.HourlyProduction, error) {
	entries := []models.HourlyProduction{}
	err := store.GetJSON(ctx, s.store, store.KeyCacheHourlyEntries, &entries)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	return entries, nil
}

// ClearCache drops every cache_ and temp_ key and reports how many were removed.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	keys, err := s.store.ListKeys(ctx)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}

	var doomed []string
	for _, key := range keys {
		if strings.HasPrefix(key, store.CachePrefix) || strings.HasPrefix(key, store.TempPrefix) {
			doomed = append(doomed, key)
		}
	}

	if err := s.store.RemoveMany(ctx, doomed); err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}

	s.logger.Info("cache cleared", zap.Int("keys", len(doomed)))
	return len(doomed), nil
}

func fetch[T any](ctx context.Context, s *Service, e entity, remote func(context.Context) (T, error), defaults func() T, filter func(T) T) Result[T] {
	if filter == nil {
		filter = func(v T) T { return v }
	}

	data, err := remote(ctx)
	if err == nil {
		if e.cacheKey != "" {
			if cacheErr := store.SetJSON(ctx, s.store, e.cacheKey, data); cacheErr != nil {
				s.logger.Warn("failed to refresh cache", zap.String("entity", e.name), zap.Error(cacheErr))
			}
		}
		metrics.FetchTotal.WithLabelValues(e.name, string(SourceFresh)).Inc()
		return Result[T]{Data: data, Source: SourceFresh}
	}

	s.logger.Warn("backend fetch failed", zap.String("entity", e.name), zap.Error(err))

	if e.cacheKey != "" {
		var cached T
		cacheErr := store.GetJSON(ctx, s.store, e.cacheKey, &cached)
		switch {
		case cacheErr == nil:
			s.logger.Debug("serving cached snapshot", zap.String("entity", e.name))
			metrics.FetchTotal.WithLabelValues(e.name, string(SourceCached)).Inc()
			return Result[T]{Data: filter(cached), Source: SourceCached}
		case errors.Is(cacheErr, store.ErrNotFound):
			s.logger.Debug("no cached snapshot", zap.String("entity", e.name))
		default:
			s.logger.Warn("cached snapshot unreadable", zap.String("entity", e.name), zap.Error(cacheErr))
		}
	}

	metrics.FetchTotal.WithLabelValues(e.name, string(SourceDefault)).Inc()
	return Result[T]{Data: filter(defaults()), Source: SourceDefault}
}

func filterSlice[T any](in []T, keep func(T) bool) []T {
	out := make([]T, 0, len(in))
	for _, v := range in {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out
}

func emptyList[T any]() []T {
	return []T{}
}
