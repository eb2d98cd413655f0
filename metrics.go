package facetgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like
// Prometheus.
type MetricsCollector interface {
	// RecordSample is called after the sampling pass.
	// sampleSize is the number of values drawn, duration the time taken,
	// err is nil if successful.
	RecordSample(sampleSize int, duration time.Duration, err error)

	// RecordRangeBuild is called after the range-building pass.
	// numRanges includes the two outlier buckets.
	RecordRangeBuild(numRanges int, duration time.Duration, err error)

	// RecordCount is called after the exact counting pass.
	RecordCount(duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSample(int, time.Duration, error)     {}
func (NoopMetricsCollector) RecordRangeBuild(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCount(time.Duration, error)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SampleCount      atomic.Int64
	SampleErrors     atomic.Int64
	SampleTotalNanos atomic.Int64
	RangeBuildCount  atomic.Int64
	RangeBuildErrors atomic.Int64
	RangesProduced   atomic.Int64
	CountCount       atomic.Int64
	CountErrors      atomic.Int64
	CountTotalNanos  atomic.Int64
}

// RecordSample implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSample(sampleSize int, duration time.Duration, err error) {
	b.SampleCount.Add(1)
	b.SampleTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SampleErrors.Add(1)
	}
}

// RecordRangeBuild implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRangeBuild(numRanges int, duration time.Duration, err error) {
	b.RangeBuildCount.Add(1)
	b.RangesProduced.Add(int64(numRanges))
	if err != nil {
		b.RangeBuildErrors.Add(1)
	}
}

// RecordCount implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCount(duration time.Duration, err error) {
	b.CountCount.Add(1)
	b.CountTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.CountErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SampleCount:      b.SampleCount.Load(),
		SampleErrors:     b.SampleErrors.Load(),
		SampleAvgNanos:   avgNanos(b.SampleTotalNanos.Load(), b.SampleCount.Load()),
		RangeBuildCount:  b.RangeBuildCount.Load(),
		RangeBuildErrors: b.RangeBuildErrors.Load(),
		RangesProduced:   b.RangesProduced.Load(),
		CountCount:       b.CountCount.Load(),
		CountErrors:      b.CountErrors.Load(),
		CountAvgNanos:    avgNanos(b.CountTotalNanos.Load(), b.CountCount.Load()),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SampleCount      int64
	SampleErrors     int64
	SampleAvgNanos   int64
	RangeBuildCount  int64
	RangeBuildErrors int64
	RangesProduced   int64
	CountCount       int64
	CountErrors      int64
	CountAvgNanos    int64
}
