package iocache

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/huangsam/datacompare/internal/contract"
	"github.com/jonboulle/clockwork"
)

// Cache entry settings for metric name mappings.
const (
	metricMappingKey     = "metric_mapping"
	metricMappingVersion = 1
)

// CachedRegistry keeps a registry's mapping in the key/value cache for a TTL.
type CachedRegistry struct {
	Base  contract.MetricRegistry
	Cache contract.CacheStore
	TTL   time.Duration
	Clock clockwork.Clock
}

var _ contract.MetricRegistry = &CachedRegistry{} // Compile-time check

// NewCachedRegistry wraps base with a cache lookup.
func NewCachedRegistry(base contract.MetricRegistry, cache contract.CacheStore, ttl time.Duration) *CachedRegistry {
	return &CachedRegistry{Base: base, Cache: cache, TTL: ttl, Clock: clockwork.NewRealClock()}
}

// GetMapping serves a fresh cached mapping, or loads it from the base registry and caches it.
// Cache failures are logged and never fail the lookup.
func (cr *CachedRegistry) GetMapping(ctx context.Context) (map[string]string, error) {
	now := cr.Clock.Now()
	if mapping, ok := cr.cached(now); ok {
		return mapping, nil
	}

	mapping, err := cr.Base.GetMapping(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metric mapping: %w", err)
	}
	if err := cr.Cache.Set(metricMappingKey, data, metricMappingVersion, now.Unix()); err != nil {
		contract.LogWarn("Failed to cache metric mapping", err)
	}
	return maps.Clone(mapping), nil
}

// cached returns the stored mapping when it is present, current and not expired.
func (cr *CachedRegistry) cached(now time.Time) (map[string]string, bool) {
	data, version, ts, err := cr.Cache.Get(metricMappingKey)
	if err != nil || version != metricMappingVersion {
		return nil, false
	}
	if now.Sub(time.Unix(ts, 0)) >= cr.TTL {
		return nil, false
	}
	var mapping map[string]string
	if err := json.Unmarshal(data, &mapping); err != nil {
		contract.Logger().Debug("Ignoring unreadable metric mapping cache entry", "error", err)
		return nil, false
	}
	return mapping, true
}
