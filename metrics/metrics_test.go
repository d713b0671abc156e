package metrics

import (
	"testing"
	"time"
)

func TestStatsEmpty(t *testing.T) {
	c := NewCollector(true, time.Hour)

	stats := c.Stats()
	if stats.TotalRequests != 0 || stats.ErrorCount != 0 || stats.ErrorRate != 0 ||
		stats.AvgLatency != 0 || stats.AvgTokensPerSec != 0 || stats.RecentSamples != 0 {
		t.Fatalf("expected all-zero stats, got %+v", stats)
	}
}

func TestRecordAndStats(t *testing.T) {
	c := NewCollector(true, time.Hour)

	c.Record(1.0, 10, 10.0, "llama-3.1-8b-instant", true)
	c.Record(3.0, 30, 30.0, "llama-3.1-8b-instant", true)

	stats := c.Stats()
	if stats.TotalRequests != 2 {
		t.Fatalf("expected 2 requests, got %d", stats.TotalRequests)
	}
	if stats.AvgLatency != 2.0 {
		t.Fatalf("expected avg latency 2.0, got %f", stats.AvgLatency)
	}
	if stats.AvgTokensPerSec != 20.0 {
		t.Fatalf("expected avg tokens/s 20.0, got %f", stats.AvgTokensPerSec)
	}
	if stats.RecentSamples != 2 {
		t.Fatalf("expected 2 recent samples, got %d", stats.RecentSamples)
	}
}

func TestRecordFailure(t *testing.T) {
	c := NewCollector(true, time.Hour)

	c.Record(1.0, 10, 10.0, "llama-3.1-8b-instant", true)
	c.Record(0.5, 0, 0, "unknown", false)

	stats := c.Stats()
	if stats.ErrorCount != 1 {
		t.Fatalf("expected 1 error, got %d", stats.ErrorCount)
	}
	if stats.ErrorRate != 0.5 {
		t.Fatalf("expected error rate 0.5, got %f", stats.ErrorRate)
	}
}

func TestDisabledCollector(t *testing.T) {
	c := NewCollector(false, time.Hour)

	c.Record(1.0, 10, 10.0, "llama-3.1-8b-instant", true)

	stats := c.Stats()
	if stats.TotalRequests != 0 {
		t.Fatalf("disabled collector recorded a request: %+v", stats)
	}
}

func TestRetentionPrunesDetailOnly(t *testing.T) {
	c := NewCollector(true, time.Hour)

	old := time.Now().UTC().Add(-2 * time.Hour)
	c.record(old, 1.0, 10, 10.0, "llama-3.1-8b-instant", true)
	c.Record(2.0, 20, 20.0, "llama-3.1-8b-instant", true)

	c.mu.Lock()
	remaining := len(c.samples)
	c.mu.Unlock()
	if remaining != 1 {
		t.Fatalf("expected 1 sample after prune, got %d", remaining)
	}

	// Lifetime counters survive the prune.
	if stats := c.Stats(); stats.TotalRequests != 2 {
		t.Fatalf("expected lifetime total 2, got %d", stats.TotalRequests)
	}
}

func TestRollingWindowCap(t *testing.T) {
	c := NewCollector(true, time.Hour)

	for i := 0; i < windowSize+50; i++ {
		c.Record(1.0, 1, 1.0, "llama-3.1-8b-instant", true)
	}

	stats := c.Stats()
	if stats.RecentSamples != windowSize {
		t.Fatalf("expected window capped at %d, got %d", windowSize, stats.RecentSamples)
	}
	if stats.TotalRequests != int64(windowSize+50) {
		t.Fatalf("expected lifetime total %d, got %d", windowSize+50, stats.TotalRequests)
	}
}

func TestReset(t *testing.T) {
	c := NewCollector(true, time.Hour)

	c.Record(1.0, 10, 10.0, "llama-3.1-8b-instant", false)
	c.Reset()

	stats := c.Stats()
	if stats.TotalRequests != 0 || stats.ErrorCount != 0 || stats.RecentSamples != 0 {
		t.Fatalf("expected cleared stats after reset, got %+v", stats)
	}
}
