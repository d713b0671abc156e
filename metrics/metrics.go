// Package metrics collects request latency and throughput samples in memory.
package metrics

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/baatcheet/server/domain"
)

// windowSize bounds the rolling windows used for aggregate stats.
const windowSize = 100

// Collector records request outcomes. Detail samples are pruned by wall-clock
// age; the lifetime counters are never pruned. All methods are safe for
// concurrent use.
type Collector struct {
	mu sync.Mutex

	enabled   bool
	retention time.Duration

	samples       []domain.MetricSample
	latencies     []float64
	tokensPerSec  []float64
	errorCount    int64
	totalRequests int64
}

// Stats is an aggregate view over the recorded samples.
type Stats struct {
	TotalRequests   int64   `json:"total_requests"`
	ErrorCount      int64   `json:"error_count"`
	ErrorRate       float64 `json:"error_rate"`
	AvgLatency      float64 `json:"avg_latency"`
	AvgTokensPerSec float64 `json:"avg_tokens_per_sec"`
	RecentSamples   int     `json:"recent_samples"`
}

// NewCollector creates a collector. A disabled collector ignores all records.
func NewCollector(enabled bool, retention time.Duration) *Collector {
	return &Collector{
		enabled:   enabled,
		retention: retention,
	}
}

// Record registers one completed request.
func (c *Collector) Record(latency float64, tokens int, tokensPerSec float64, model string, success bool) {
	c.record(time.Now().UTC(), latency, tokens, tokensPerSec, model, success)
}

func (c *Collector) record(at time.Time, latency float64, tokens int, tokensPerSec float64, model string, success bool) {
	if !c.enabled {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.totalRequests++
	if !success {
		c.errorCount++
	}

	c.samples = append(c.samples, domain.MetricSample{
		Timestamp:    at,
		Latency:      latency,
		Tokens:       tokens,
		TokensPerSec: tokensPerSec,
		Model:        model,
		Success:      success,
	})
	c.latencies = appendWindow(c.latencies, latency)
	c.tokensPerSec = appendWindow(c.tokensPerSec, tokensPerSec)

	c.prune(at)
}

// prune drops detail samples older than the retention window. Caller holds mu.
func (c *Collector) prune(now time.Time) {
	cutoff := now.Add(-c.retention)
	i := 0
	for ; i < len(c.samples); i++ {
		if c.samples[i].Timestamp.After(cutoff) {
			break
		}
	}
	if i > 0 {
		c.samples = append(c.samples[:0:0], c.samples[i:]...)
	}
}

// Stats returns the current aggregates. Averages cover the rolling windows
// only, not the full retention list.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats := Stats{
		TotalRequests: c.totalRequests,
		ErrorCount:    c.errorCount,
	}

	if !c.enabled || len(c.latencies) == 0 {
		return stats
	}

	stats.AvgLatency = mean(c.latencies)
	stats.AvgTokensPerSec = mean(c.tokensPerSec)
	stats.RecentSamples = len(c.latencies)
	if c.totalRequests > 0 {
		stats.ErrorRate = float64(c.errorCount) / float64(c.totalRequests)
	}

	return stats
}

// Reset clears all state, counters included. Provided for test isolation.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.samples = nil
	c.latencies = nil
	c.tokensPerSec = nil
	c.errorCount = 0
	c.totalRequests = 0

	log.Info().Msg("metrics reset")
}

func appendWindow(w []float64, v float64) []float64 {
	w = append(w, v)
	if len(w) > windowSize {
		w = append(w[:0:0], w[len(w)-windowSize:]...)
	}
	return w
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
