// Package facetgo computes data-driven numeric range buckets for faceted
// search.
//
// Instead of hand-picked static boundaries, bucket edges are derived from
// the actual value distribution of the current result set: a bounded
// uniform sample of matching documents is drawn, the numeric field values
// are sorted, and the domain is partitioned into equi-depth buckets plus
// two open-ended outlier buckets. Exact per-bucket counts are then computed
// over the full (unsampled) match set.
//
// # Quick Start
//
//	ix := memindex.New()
//	for _, p := range products {
//	    ix.Add(map[string]any{"price": p.Cents, "category": p.Category})
//	}
//
//	result, err := facetgo.Dynamic(ix, "price").
//	    Query(memindex.Term("category", "books")).
//	    Seed(42).
//	    Execute(ctx)
//
//	for _, r := range result.Ranges {
//	    fmt.Println(r, result.Counts[r.Label])
//	}
//
// Any engine can back a computation by implementing index.Searcher and
// index.ValueSource; index/memindex is a reference implementation.
//
// # Bucket Layout
//
// For a sample of n values and a true match count of t, the builder forms
// min(topNBins, t/10) interior buckets of n/bins consecutive sorted sample
// values each. Interior buckets are half-open [lower, upper) with the last
// closed on both ends; the outlier buckets Dynamic_range_min and
// Dynamic_range_max absorb the open-ended tails. The produced list is
// ordered, gap-free, and attributes every int64 value to exactly one
// bucket.
//
// When fewer than ten documents match, no meaningful buckets exist; the
// computation fails with ErrEmptyDomain by default, or collapses to a
// single catch-all bucket under WithDegeneratePolicy(DegenerateCollapse).
//
// # Determinism
//
// Sampling uses an explicit seed (WithSeed) so facet boundaries are
// reproducible; without one, each computation seeds from the clock.
//
// # Key Properties
//
//   - Equi-depth buckets adapt to skewed distributions
//   - Exact counts: sampling only estimates boundaries, never counts
//   - O(n log n) in the sample size, independent of the match volume
//     beyond the counting pass
//   - Stateless: every call is an independent computation, safe for
//     concurrent use against a read-only index snapshot
package facetgo
