// Package offline owns the hourly entry write path: submissions that cannot
// reach the backend are kept in a durable queue and replayed later.
package offline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/linetrack/internal/config"
	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/metrics"
)

// ErrQueuedOffline marks a submission that was stored locally instead of sent.
var ErrQueuedOffline = errors.New("stored offline - will sync when connection is available")

// QueuedOfflineError is returned by Submit when the entry was queued. The data
// is safe; callers should report it as pending rather than failed.
type QueuedOfflineError struct {
	Entry models.QueuedEntry
	Cause error
}

func (e *QueuedOfflineError) Error() string { return ErrQueuedOffline.Error() }

func (e *QueuedOfflineError) Is(target error) bool { return target == ErrQueuedOffline }

func (e *QueuedOfflineError) Unwrap() error { return e.Cause }

// Gateway submits hourly entries to the backend.
type Gateway interface {
	SubmitHourlyProduction(ctx context.Context, entry models.HourlyEntry) (models.HourlyProduction, error)
}

// HourlyCache records entries the backend accepted.
type HourlyCache interface {
	AppendHourly(ctx context.Context, rec models.HourlyProduction) error
}

// Service submits hourly entries and drains the offline queue.
type Service struct {
	gateway Gateway
	cache   HourlyCache
	queue   *Queue
	policy  string
	logger  *zap.Logger
}

// NewService wires the submission path. An empty policy means clear-all.
func NewService(gateway Gateway, cache HourlyCache, queue *Queue, policy string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = config.DrainPolicyClearAll
	}
	return &Service{
		gateway: gateway,
		cache:   cache,
		queue:   queue,
		policy:  policy,
		logger:  logger,
	}
}

// Submit sends entry to the backend. Any failure queues the entry and returns a
// *QueuedOfflineError; only a failure to queue is returned as a plain error.
func (s *Service) Submit(ctx context.Context, entry models.HourlyEntry) (models.HourlyProduction, error) {
	rec, err := s.submitRemote(ctx, entry)
	if err == nil {
		return rec, nil
	}

	queued, qErr := s.queue.Append(ctx, entry)
	if qErr != nil {
		s.logger.Error("failed to queue hourly entry",
			zap.Int("line_setup_id", entry.LineSetupID),
			zap.String("hour_slot", entry.HourSlot),
			zap.NamedError("submit_error", err),
			zap.Error(qErr),
		)
		return models.HourlyProduction{}, fmt.Errorf("queue hourly entry: %w", qErr)
	}

	metrics.EntriesQueued.Inc()
	s.logger.Warn("hourly entry stored offline",
		zap.String("queue_id", queued.QueueID),
		zap.Int("line_setup_id", entry.LineSetupID),
		zap.String("hour_slot", entry.HourSlot),
		zap.Error(err),
	)
	return models.HourlyProduction{}, &QueuedOfflineError{Entry: queued, Cause: err}
}

// Drain replays the queue in insertion order and returns how many entries the
// backend accepted. Nothing is removed unless at least one entry was accepted.
// Then the clear-all policy removes every replayed entry, accepted or not, while
// retain-failed removes only the accepted ones. If ctx ends mid-pass the entries
// not yet replayed, and the one in flight, stay queued.
func (s *Service) Drain(ctx context.Context) (int, error) {
	entries, err := s.queue.Entries(ctx)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}

	var accepted, rejected []string
	for _, e := range entries {
		if ctx.Err() != nil {
			s.logger.Warn("drain interrupted, remaining entries kept", zap.Error(ctx.Err()))
			break
		}
		if _, err := s.submitRemote(ctx, e.HourlyEntry); err != nil {
			if ctx.Err() != nil {
				s.logger.Warn("drain interrupted, remaining entries kept", zap.Error(ctx.Err()))
				break
			}
			s.logger.Warn("replay failed",
				zap.String("queue_id", e.QueueID),
				zap.Time("captured_at", e.CapturedAt()),
				zap.Error(err),
			)
			rejected = append(rejected, e.QueueID)
			continue
		}
		accepted = append(accepted, e.QueueID)
	}

	if len(accepted) == 0 {
		s.logger.Info("no offline entry accepted, queue kept", zap.Int("pending", len(entries)))
		return 0, nil
	}

	remove := accepted
	if s.policy == config.DrainPolicyClearAll {
		remove = append(remove, rejected...)
	}

	remaining, err := s.queue.Remove(context.WithoutCancel(ctx), remove)
	if err != nil {
		return len(accepted), err
	}

	metrics.EntriesReplayed.Add(float64(len(accepted)))
	if s.policy == config.DrainPolicyClearAll && len(rejected) > 0 {
		metrics.EntriesDiscarded.Add(float64(len(rejected)))
		s.logger.Warn("discarded offline entries that failed replay", zap.Int("count", len(rejected)))
	}

	s.logger.Info("offline queue drained",
		zap.Int("replayed", len(accepted)),
		zap.Int("failed", len(rejected)),
		zap.Int("remaining", remaining),
		zap.String("policy", s.policy),
	)
	return len(accepted), nil
}

// Pending returns the number of queued entries.
func (s *Service) Pending(ctx context.Context) (int, error) {
	return s.queue.Len(ctx)
}

// Entries lists queued entries in replay order.
func (s *Service) Entries(ctx context.Context) ([]models.QueuedEntry, error) {
	return s.queue.Entries(ctx)
}

func (s *Service) submitRemote(ctx context.Context, entry models.HourlyEntry) (models.HourlyProduction, error) {
	rec, err := s.gateway.SubmitHourlyProduction(ctx, entry)
	if err != nil {
		return models.HourlyProduction{}, err
	}
	if s.cache != nil {
		if err := s.cache.AppendHourly(ctx, rec); err != nil {
			s.logger.Warn("failed to cache accepted hourly entry", zap.Int("id", rec.ID), zap.Error(err))
		}
	}
	return rec, nil
}
