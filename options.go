package facetgo

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/hupe1980/facetgo/index"
)

// Default tuning constants for dynamic range computation.
const (
	// DefaultSampleCap is the maximum number of documents sampled per
	// facet computation.
	DefaultSampleCap = 1000

	// DefaultTopNBins is the hard ceiling on the number of interior
	// (non-outlier) buckets.
	DefaultTopNBins = 100
)

// DegeneratePolicy controls what happens when the match volume is too small
// to form any interior bucket.
type DegeneratePolicy uint8

const (
	// DegenerateError surfaces ErrEmptyDomain. This is the default:
	// failing fast beats returning a misleading bucket layout.
	DegenerateError DegeneratePolicy = iota

	// DegenerateCollapse returns a single catch-all range spanning the
	// whole int64 domain instead of failing.
	DegenerateCollapse
)

type options struct {
	sampleCap        int
	topNBins         int
	seed             *int64
	degenerate       DegeneratePolicy
	parallelism      int
	fastMatch        index.Query
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures a dynamic range computation.
type Option func(*options)

// WithSampleCap sets the maximum number of documents sampled to estimate
// bucket boundaries. Larger caps give steadier boundaries at the cost of
// more value lookups. Values below 1 fall back to DefaultSampleCap.
func WithSampleCap(cap int) Option {
	return func(o *options) {
		if cap > 0 {
			o.sampleCap = cap
		}
	}
}

// WithTopNBins sets the ceiling on interior bucket count. The effective
// count is still bounded by totalMatches/10 so sparse result sets do not
// produce near-empty buckets. Values below 1 fall back to DefaultTopNBins.
func WithTopNBins(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.topNBins = n
		}
	}
}

// WithSeed fixes the random seed of the sampling pass, making the computed
// boundaries reproducible. Without it every computation derives a fresh
// seed from the clock.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = &seed
	}
}

// WithDegeneratePolicy selects the behavior when too few matches exist to
// form interior buckets. See DegeneratePolicy.
func WithDegeneratePolicy(p DegeneratePolicy) Option {
	return func(o *options) {
		o.degenerate = p
	}
}

// WithParallelism bounds the number of goroutines extracting values from
// independent document groups. Defaults to GOMAXPROCS.
func WithParallelism(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.parallelism = n
		}
	}
}

// WithFastMatch sets a pre-filter query for the counting pass: only
// documents also matching q are attributed to ranges. Mirrors the fast-match
// optimization of static range faceting.
func WithFastMatch(q index.Query) Option {
	return func(o *options) {
		o.fastMatch = q
	}
}

// WithLogger configures structured logging for facet computations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// facet computations.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc != nil {
			o.metricsCollector = mc
		}
	}
}

func applyOptions(optFns []Option) *options {
	o := &options{
		sampleCap:        DefaultSampleCap,
		topNBins:         DefaultTopNBins,
		parallelism:      runtime.GOMAXPROCS(0),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(o)
		}
	}
	return o
}

// effectiveSeed returns the configured seed or a clock-derived one.
func (o *options) effectiveSeed() int64 {
	if o.seed != nil {
		return *o.seed
	}
	return time.Now().UnixNano()
}
