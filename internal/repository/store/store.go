// Package store is the local durable key/value store. Values are strings,
// usually JSON encoded by the caller; keys are independent of each other.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("store: key not found")

// ErrCorrupt is returned by GetJSON when the stored value cannot be decoded.
var ErrCorrupt = errors.New("store: value not decodable")

// Well-known keys.
const (
	KeyUserToken      = "userToken"
	KeyRefreshToken   = "refreshToken"
	KeyUser           = "user"
	KeyPermissions    = "permissions"
	KeyAppSettings    = "appSettings"
	KeyOfflineEntries = "offline_entries"

	KeyCacheLines         = "cache_production_lines"
	KeyCacheBuyers        = "cache_buyers"
	KeyCacheStyles        = "cache_styles"
	KeyCacheOrders        = "cache_orders"
	KeyCacheHourlyEntries = "cache_hourly_entries"
	KeyCacheDashboard     = "cache_dashboard_metrics"

	CachePrefix = "cache_"
	TempPrefix  = "temp_"
)

// Store is a persistent string key/value store safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	RemoveMany(ctx context.Context, keys []string) error
	ListKeys(ctx context.Context) ([]string, error)
	Close(ctx context.Context) error
}

// GetJSON decodes the value stored under key into out.
func GetJSON(ctx context.Context, s Store, key string, out any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode %s: %w: %w", key, ErrCorrupt, err)
	}
	return nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, string(raw))
}
