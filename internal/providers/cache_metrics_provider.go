package providers

import "github.com/lockedloop/tempus-fugit/internal/structures"

// MetricsCacheProvider counts hit/miss outcomes of the rendered-view cache.
// Writes and evictions pass through untouched; only Get outcomes are
// interesting because the hit ratio tells whether the tick-interval TTL
// actually pays off.
type MetricsCacheProvider struct {
	inner   CacheProviderInterface
	metrics MetricsProviderInterface
}

func (c *MetricsCacheProvider) Get(key string) ([]byte, bool) {
	val, ok := c.inner.Get(key)
	if ok {
		c.metrics.IncCacheHits()
	} else {
		c.metrics.IncCacheMisses()
	}
	return val, ok
}

func (c *MetricsCacheProvider) Set(key string, value []byte) {
	c.inner.Set(key, value)
}

func (c *MetricsCacheProvider) Del(key string) {
	c.inner.Del(key)
}

// NewInstrumentedCacheProvider wires the hit/miss counters around the real
// cache. A disabled cache stays unwrapped: every Get on the noop would be a
// miss and would poison the ratio.
func NewInstrumentedCacheProvider(conf *structures.Config, logger Logger, metrics MetricsProviderInterface) CacheProviderInterface {
	inner := NewCacheProvider(conf, logger)
	if !conf.Cache.Enabled {
		return inner
	}
	return &MetricsCacheProvider{
		inner:   inner,
		metrics: metrics,
	}
}
