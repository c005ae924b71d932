package cache

import (
	"time"

	"go.uber.org/zap"

	"github.com/foodtrust/backend/internal/stats"
)

type options struct {
	clock  func() time.Time
	stats  stats.Collector
	logger *zap.Logger
}

func defaultOptions() options {
	return options{
		clock:  time.Now,
		stats:  stats.NewNoop(),
		logger: zap.NewNop(),
	}
}

// Option configures a Store.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithClock replaces time.Now, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return optionFunc(func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	})
}

// WithStats sets the metrics collector.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		if c != nil {
			o.stats = c
		}
	})
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return optionFunc(func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	})
}
