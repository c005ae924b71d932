package cache

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtrust/backend/internal/domain"
	"github.com/foodtrust/backend/internal/stats"
	promstats "github.com/foodtrust/backend/internal/stats/prometheus"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, capacity int, clock *fakeClock, opts ...Option) *Store {
	t.Helper()
	config := DefaultConfig()
	config.Capacity = capacity
	s, err := New(config, append([]Option{WithClock(clock.Now)}, opts...)...)
	require.NoError(t, err)
	return s
}

func analysis(gtin string) domain.ProductAnalysis {
	return domain.ProductAnalysis{GTIN: gtin, Description: "product " + gtin}
}

func TestNew_InvalidCapacity(t *testing.T) {
	for _, capacity := range []int{0, -1} {
		t.Run(fmt.Sprint(capacity), func(t *testing.T) {
			s, err := New(Config{Capacity: capacity})
			if !errors.Is(err, domain.ErrInvalidCapacity) {
				t.Fatalf("New() error = %v, want ErrInvalidCapacity", err)
			}
			if s != nil {
				t.Error("New() returned a store alongside an error")
			}
		})
	}
}

func TestStore_GetMissHasNoSideEffects(t *testing.T) {
	s := newTestStore(t, 2, newFakeClock())

	if _, ok := s.Get("missing"); ok {
		t.Fatal("Get() on empty store reported a hit")
	}
	if got := s.Count(); got != 0 {
		t.Errorf("Count() = %d, want 0", got)
	}
	assert.Equal(t, int64(1), s.Stats().Misses)
}

func TestStore_PutThenGet(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 2, clock)

	s.Put("A", analysis("A"))
	clock.Advance(time.Hour)

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, "A", got.Key)
	assert.Equal(t, "product A", got.Payload.Description)
	assert.Equal(t, int64(2), got.HitCount, "insert starts at one, the hit adds one")
	assert.Equal(t, clock.Now(), got.LastAccess)
}

func TestStore_OverwriteKeepsCounters(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 2, clock)

	s.Put("A", analysis("A"))
	s.Get("A")
	s.Get("A")

	updated := analysis("A")
	updated.Description = "reformulated"
	s.Put("A", updated)

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, "reformulated", got.Payload.Description)
	assert.Equal(t, int64(4), got.HitCount)
	assert.Equal(t, 1, s.Count())
}

func TestStore_EvictsStaleLowUsageEntry(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 2, clock)

	s.Put("B", analysis("B"))
	clock.Advance(30 * 24 * time.Hour)

	s.Put("A", analysis("A"))
	for i := 0; i < 4; i++ {
		s.Get("A")
	}

	s.Put("C", analysis("C"))

	assert.Equal(t, 2, s.Count())
	_, ok := s.Get("B")
	assert.False(t, ok, "B should have been evicted")
	_, ok = s.Get("A")
	assert.True(t, ok)
	_, ok = s.Get("C")
	assert.True(t, ok)
}

func TestStore_FreshnessBonusIsStrict(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 3, clock)

	s.Put("X", analysis("X"))
	s.Get("X")
	s.Get("X")
	clock.Advance(DefaultFreshnessWindow)
	s.Put("Y", analysis("Y"))

	// X scores 3 with no bonus at exactly the window; Y scores 1+5
	key, ok := s.EvictLeastValuable()
	require.True(t, ok)
	assert.Equal(t, "X", key)
}

func TestStore_EvictionTieBreaks(t *testing.T) {
	t.Run("oldest last access first", func(t *testing.T) {
		clock := newFakeClock()
		s := newTestStore(t, 3, clock)

		s.Put("P", analysis("P"))
		clock.Advance(time.Minute)
		s.Put("Q", analysis("Q"))

		key, ok := s.EvictLeastValuable()
		require.True(t, ok)
		assert.Equal(t, "P", key)
	})

	t.Run("smallest key when access times match", func(t *testing.T) {
		s := newTestStore(t, 3, newFakeClock())

		s.Put("b", analysis("b"))
		s.Put("a", analysis("a"))

		key, ok := s.EvictLeastValuable()
		require.True(t, ok)
		assert.Equal(t, "a", key)
	})

	t.Run("empty store", func(t *testing.T) {
		s := newTestStore(t, 1, newFakeClock())
		key, ok := s.EvictLeastValuable()
		assert.False(t, ok)
		assert.Empty(t, key)
	})
}

func TestStore_EvictsMinimumEffectiveScore(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 4, clock)

	// old but heavily used: 9 hits, no bonus
	s.Put("old-popular", analysis("1"))
	for i := 0; i < 8; i++ {
		s.Get("old-popular")
	}
	clock.Advance(10 * 24 * time.Hour)

	// fresh and barely used: 1 + 5
	s.Put("fresh", analysis("2"))

	// old and barely used: 2 hits, no bonus
	clock.Advance(-9 * 24 * time.Hour)
	s.Put("old-rare", analysis("3"))
	s.Get("old-rare")
	clock.Advance(9 * 24 * time.Hour)

	key, ok := s.EvictLeastValuable()
	require.True(t, ok)
	assert.Equal(t, "old-rare", key)

	key, _ = s.EvictLeastValuable()
	assert.Equal(t, "fresh", key)
}

func TestStore_TouchRefreshesWithoutHit(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 2, clock)

	assert.False(t, s.Touch("A"))

	s.Put("A", analysis("A"))
	clock.Advance(30 * 24 * time.Hour)
	s.Put("B", analysis("B"))
	require.True(t, s.Touch("A"))
	clock.Advance(time.Second)

	// both fresh with one hit each, A has the older access
	s.Touch("B")
	key, _ := s.EvictLeastValuable()
	assert.Equal(t, "A", key)

	s.Put("A", analysis("A"))
	got, _ := s.Get("A")
	assert.Equal(t, int64(2), got.HitCount)
}

func TestStore_NeverExceedsCapacity(t *testing.T) {
	clock := newFakeClock()
	s := newTestStore(t, 3, clock)

	for i := 0; i < 50; i++ {
		key := fmt.Sprintf("gtin-%02d", i%7)
		s.Put(key, analysis(key))
		if i%3 == 0 {
			s.Get(fmt.Sprintf("gtin-%02d", i%5))
		}
		clock.Advance(time.Duration(i) * time.Hour)

		if got := s.Count(); got > 3 {
			t.Fatalf("after put %d Count() = %d, exceeds capacity 3", i, got)
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s, err := New(Config{Capacity: 10, FreshnessWindow: time.Hour, FreshnessBonus: 5})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("%d-%d", w, i%20)
				s.Put(key, analysis(key))
				s.Get(key)
				if i%50 == 0 {
					s.EvictLeastValuable()
				}
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Count(), 10)
}

func TestStore_ReportsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestStore(t, 1, newFakeClock(), WithStats(promstats.New(reg)))

	s.Put("A", analysis("A"))
	s.Get("A")
	s.Get("missing")
	s.Put("B", analysis("B"))

	values := map[string]float64{}
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, f := range families {
		m := f.GetMetric()[0]
		switch {
		case m.GetCounter() != nil:
			values[f.GetName()] = m.GetCounter().GetValue()
		case m.GetGauge() != nil:
			values[f.GetName()] = m.GetGauge().GetValue()
		}
	}

	assert.Equal(t, 1.0, values[stats.MetricCacheHits])
	assert.Equal(t, 1.0, values[stats.MetricCacheMisses])
	assert.Equal(t, 1.0, values[stats.MetricCacheEvictions])
	assert.Equal(t, 1.0, values[stats.MetricCacheSize])

	st := s.Stats()
	assert.Equal(t, Stats{
		Size:            1,
		Capacity:        1,
		Hits:            1,
		Misses:          1,
		Evictions:       1,
		FreshnessWindow: DefaultFreshnessWindow.String(),
		FreshnessBonus:  DefaultFreshnessBonus,
	}, st)
}

func TestStore_EntriesDoNotShareSlicesWithCallers(t *testing.T) {
	s := newTestStore(t, 2, newFakeClock())

	payload := analysis("A")
	payload.Result.CommonOnly = []string{"Water"}
	payload.Result.Substances = []domain.SubstanceDetail{{Name: "Citric acid", OtherNames: []string{"E330"}}}
	s.Put("A", payload)
	payload.Result.CommonOnly[0] = "changed by caller"

	got, ok := s.Get("A")
	require.True(t, ok)
	assert.Equal(t, []string{"Water"}, got.Payload.Result.CommonOnly)

	got.Payload.Result.CommonOnly[0] = "changed by reader"
	got.Payload.Result.Substances[0].OtherNames[0] = "changed by reader"
	got.Payload.Result.Unidentified = append(got.Payload.Result.Unidentified, "extra")

	again, _ := s.Get("A")
	assert.Equal(t, []string{"Water"}, again.Payload.Result.CommonOnly)
	assert.Equal(t, []string{"E330"}, again.Payload.Result.Substances[0].OtherNames)
	assert.Empty(t, again.Payload.Result.Unidentified)
}
