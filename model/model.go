// Package model defines the shared value types of facetgo: document
// identifiers, numeric ranges, and per-computation match statistics.
//
// All types are plain values. Nothing in this package is mutated after
// construction; a produced []Range is safe to share between goroutines.
package model

import (
	"fmt"
	"math"
)

// DocID is a dense, segment-local document identifier.
// It is only meaningful together with a segment ordinal.
type DocID uint32

// Range is a labelled interval over int64 values.
//
// Invariants:
//   - Lower <= Upper
//   - a non-empty singleton (Lower == Upper) has both bounds inclusive
//   - Lower == Upper with an exclusive bound denotes an empty range; these
//     occur when sample ties collapse a bucket or when an outlier bucket
//     touches a domain extreme
//
// A range list produced by the dynamic range builder is ordered by lower
// bound, pairwise disjoint, and covers all of [math.MinInt64, math.MaxInt64]:
// every representable value belongs to exactly one range.
type Range struct {
	Label          string
	Lower          int64
	LowerInclusive bool
	Upper          int64
	UpperInclusive bool
}

// Contains reports whether v falls inside the range.
func (r Range) Contains(v int64) bool {
	if v < r.Lower || (v == r.Lower && !r.LowerInclusive) {
		return false
	}
	if v > r.Upper || (v == r.Upper && !r.UpperInclusive) {
		return false
	}
	return true
}

// Empty reports whether no value can fall inside the range.
func (r Range) Empty() bool {
	if r.Lower > r.Upper {
		return true
	}
	if r.Lower == r.Upper {
		return !(r.LowerInclusive && r.UpperInclusive)
	}
	return false
}

// Validate checks the structural invariant Lower <= Upper.
func (r Range) Validate() error {
	if r.Lower > r.Upper {
		return fmt.Errorf("range %q: lower bound %d above upper bound %d", r.Label, r.Lower, r.Upper)
	}
	return nil
}

// String returns a compact interval notation, e.g. "Dynamic_range_3[10,20)".
// Domain extremes render as "min" and "max" to keep logs readable.
func (r Range) String() string {
	lb, ub := "(", ")"
	if r.LowerInclusive {
		lb = "["
	}
	if r.UpperInclusive {
		ub = "]"
	}
	lo := fmt.Sprintf("%d", r.Lower)
	if r.Lower == math.MinInt64 {
		lo = "min"
	}
	hi := fmt.Sprintf("%d", r.Upper)
	if r.Upper == math.MaxInt64 {
		hi = "max"
	}
	return fmt.Sprintf("%s%s%s,%s%s", r.Label, lb, lo, hi, ub)
}

// MatchStatistics describes the sampling pass of one facet computation.
type MatchStatistics struct {
	// TotalMatches is the exact number of documents matching the query,
	// not an estimate and not the sample size.
	TotalMatches int64

	// SampleSize is the number of values drawn from the match set. At most
	// the sample cap documents are drawn; for multi-valued fields every
	// value of a sampled document enters the sample, so SampleSize can
	// exceed the document count.
	SampleSize int
}
