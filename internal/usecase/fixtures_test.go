package usecase

import (
	"sync"

	"github.com/foodtrust/backend/internal/reference"
)

func testIndex() *reference.Index {
	return reference.Build(reference.Sources{
		Substances: []reference.SubstanceRecord{
			{Name: "Citric acid", UsedFor: "SEQUESTRANT, FLAVORING AGENT"},
			{Name: "FD&C Red No. 40", UsedFor: "COLOR OR COLORING ADJUNCT"},
			{Name: "Sodium chloride", UsedFor: "FLAVOR ENHANCER"},
			{Name: "Sodium benzoate", UsedFor: "PRESERVATIVE"},
		},
		CommonIngredients: []string{
			"Water", "Sugar", "Citric Acid", "Whole Wheat Flour", "Wheat Flour",
			"Paprika", "Turmeric", "Olive Oil", "Rolled Oats", "Niacin",
		},
		CommonRegulated: []string{"salt"},
	})
}

type staticIndex struct{ idx *reference.Index }

func (s staticIndex) Current() *reference.Index { return s.idx }

// recordingCollector keeps counter totals for assertions.
type recordingCollector struct {
	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]int64
	observed map[string]int
}

func newRecordingCollector() *recordingCollector {
	return &recordingCollector{
		counters: make(map[string]int64),
		gauges:   make(map[string]int64),
		observed: make(map[string]int),
	}
}

func (c *recordingCollector) IncCounter(name string, delta int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counters[name] += delta
}

func (c *recordingCollector) SetGauge(name string, value int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gauges[name] = value
}

func (c *recordingCollector) ObserveHistogram(name string, _ float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observed[name]++
}

func (c *recordingCollector) counter(name string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[name]
}
