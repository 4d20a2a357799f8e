package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mamadbah2/linetrack/internal/domain/models"
	"github.com/mamadbah2/linetrack/internal/metrics"
	"github.com/mamadbah2/linetrack/internal/repository/store"
)

// Queue is the durable FIFO of hourly entries awaiting replay, kept as a JSON
// array under offline_entries.
type Queue struct {
	store store.Store
	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

// NewQueue returns a queue persisted in s.
func NewQueue(s store.Store) *Queue {
	return &Queue{
		store: s,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Append stamps entry with a queue id and the capture time and adds it to the tail.
func (q *Queue) Append(ctx context.Context, entry models.HourlyEntry) (models.QueuedEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(ctx)
	if err != nil {
		return models.QueuedEntry{}, err
	}

	queued := models.QueuedEntry{
		HourlyEntry: entry,
		QueueID:     q.newID(),
		Timestamp:   q.now().UnixMilli(),
	}
	entries = append(entries, queued)

	if err := q.save(ctx, entries); err != nil {
		return models.QueuedEntry{}, err
	}
	return queued, nil
}

// Entries returns a snapshot of the queue in insertion order.
func (q *Queue) Entries(ctx context.Context) ([]models.QueuedEntry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load(ctx)
}

// Len returns the number of queued entries.
func (q *Queue) Len(ctx context.Context) (int, error) {
	entries, err := q.Entries(ctx)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

// Remove drops the entries with the given queue ids and returns how many remain.
// Entries appended after the ids were read are kept.
func (q *Queue) Remove(ctx context.Context, ids []string) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	entries, err := q.load(ctx)
	if err != nil {
		return 0, err
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	kept := entries[:0]
	for _, e := range entries {
		if _, ok := drop[e.QueueID]; !ok {
			kept = append(kept, e)
		}
	}

	if err := q.save(ctx, kept); err != nil {
		return 0, err
	}
	return len(kept), nil
}

func (q *Queue) load(ctx context.Context) ([]models.QueuedEntry, error) {
	entries := []models.QueuedEntry{}
	err := store.GetJSON(ctx, q.store, store.KeyOfflineEntries, &entries)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("load offline queue: %w", err)
	}
	return entries, nil
}

func (q *Queue) save(ctx context.Context, entries []models.QueuedEntry) error {
	var err error
	if len(entries) == 0 {
		err = q.store.Remove(ctx, store.KeyOfflineEntries)
	} else {
		err = store.SetJSON(ctx, q.store, store.KeyOfflineEntries, entries)
	}
	if err != nil {
		return fmt.Errorf("save offline queue: %w", err)
	}
	metrics.QueueDepth.Set(float64(len(entries)))
	return nil
}
