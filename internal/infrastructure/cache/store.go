// Package cache holds analyzed products in a fixed-capacity, in-process store
// that evicts the least valuable entry when full.
package cache

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/stats"
)

// Defaults used by the lookup flow
const (
	DefaultCapacity        = 1000
	DefaultFreshnessWindow = 7 * 24 * time.Hour
	DefaultFreshnessBonus  = 5
)

// Config holds the store bounds and eviction scoring
type Config struct {
	Capacity        int
	FreshnessWindow time.Duration
	FreshnessBonus  int64
}

// DefaultConfig returns the default store configuration
func DefaultConfig() Config {
	return Config{
		Capacity:        DefaultCapacity,
		FreshnessWindow: DefaultFreshnessWindow,
		FreshnessBonus:  DefaultFreshnessBonus,
	}
}

type entry struct {
	payload    domain.ProductAnalysis
	hitCount   int64
	lastAccess time.Time
}

// Store is a thread-safe bounded map from product key to analysis.
// Its size never exceeds the configured capacity.
type Store struct {
	mu      sync.Mutex
	entries map[string]*entry

	capacity int
	policy   domain.FreshnessPolicy
	now      func() time.Time
	stats    stats.Collector
	logger   *zap.Logger

	hits      int64
	misses    int64
	evictions int64
}

var _ domain.ResultCache = (*Store)(nil)

// New creates a store. It fails with domain.ErrInvalidCapacity when
// config.Capacity is below one.
func New(config Config, opts ...Option) (*Store, error) {
	if config.Capacity < 1 {
		return nil, fmt.Errorf("cache: %w (got %d)", domain.ErrInvalidCapacity, config.Capacity)
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt.apply(&o)
	}

	return &Store{
		entries:  make(map[string]*entry, config.Capacity),
		capacity: config.Capacity,
		policy:   domain.FreshnessPolicy{Window: config.FreshnessWindow, Bonus: config.FreshnessBonus},
		now:      o.clock,
		stats:    o.stats,
		logger:   o.logger.Named("cache"),
	}, nil
}

// Get returns the entry stored under key. A hit increments its hit count and
// refreshes its last access time; a miss has no side effects.
func (s *Store) Get(key string) (domain.CacheEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		s.misses++
		s.stats.IncCounter(stats.MetricCacheMisses, 1)
		return domain.CacheEntry{}, false
	}

	e.hitCount++
	e.lastAccess = s.now()
	s.hits++
	s.stats.IncCounter(stats.MetricCacheHits, 1)
	return snapshot(key, e), true
}

// Put stores a copy of payload under key. Overwriting an existing key
// replaces only the payload. A new key evicts the least valuable entry first
// when the store is full, then starts with a hit count of one.
func (s *Store) Put(key string, payload domain.ProductAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload = payload.Clone()
	if e, ok := s.entries[key]; ok {
		e.payload = payload
		return
	}

	for len(s.entries) >= s.capacity {
		if _, ok := s.evictLocked(); !ok {
			break
		}
	}

	s.entries[key] = &entry{
		payload:    payload,
		hitCount:   1,
		lastAccess: s.now(),
	}
	s.stats.SetGauge(stats.MetricCacheSize, int64(len(s.entries)))
}

// Touch refreshes the last access time of key without counting a hit.
func (s *Store) Touch(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if ok {
		e.lastAccess = s.now()
	}
	return ok
}

// EvictLeastValuable removes the entry with the lowest effective score,
// preferring the oldest last access and then the smallest key on ties.
// It reports the evicted key, or false when the store is empty.
func (s *Store) EvictLeastValuable() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked()
}

func (s *Store) evictLocked() (string, bool) {
	if len(s.entries) == 0 {
		return "", false
	}

	now := s.now()
	var (
		victim      string
		victimEntry *entry
		victimScore int64
	)
	for key, e := range s.entries {
		score := s.policy.EffectiveScore(e.hitCount, e.lastAccess, now)
		if victimEntry == nil || lessValuable(score, e.lastAccess, key, victimScore, victimEntry.lastAccess, victim) {
			victim, victimEntry, victimScore = key, e, score
		}
	}

	delete(s.entries, victim)
	s.evictions++
	s.stats.IncCounter(stats.MetricCacheEvictions, 1)
	s.stats.SetGauge(stats.MetricCacheSize, int64(len(s.entries)))
	s.logger.Debug("evicted entry",
		zap.String("key", victim),
		zap.Int64("effective_score", victimScore),
		zap.Int64("hit_count", victimEntry.hitCount),
		zap.Time("last_access", victimEntry.lastAccess),
	)
	return victim, true
}

func lessValuable(score int64, last time.Time, key string, otherScore int64, otherLast time.Time, otherKey string) bool {
	if score != otherScore {
		return score < otherScore
	}
	if !last.Equal(otherLast) {
		return last.Before(otherLast)
	}
	return key < otherKey
}

// Count returns the number of entries.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stats is a point-in-time summary of store usage
type Stats struct {
	Size            int    `json:"size"`
	Capacity        int    `json:"capacity"`
	Hits            int64  `json:"hits"`
	Misses          int64  `json:"misses"`
	Evictions       int64  `json:"evictions"`
	FreshnessWindow string `json:"freshnessWindow"`
	FreshnessBonus  int64  `json:"freshnessBonus"`
}

// Stats returns usage counters since the store was created.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Size:            len(s.entries),
		Capacity:        s.capacity,
		Hits:            s.hits,
		Misses:          s.misses,
		Evictions:       s.evictions,
		FreshnessWindow: s.policy.Window.String(),
		FreshnessBonus:  s.policy.Bonus,
	}
}

func snapshot(key string, e *entry) domain.CacheEntry {
	return domain.CacheEntry{
		Key:        key,
		Payload:    e.payload.Clone(),
		HitCount:   e.hitCount,
		LastAccess: e.lastAccess,
	}
}
