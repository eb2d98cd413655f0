package facetgo

import (
	"context"

	"github.com/hupe1980/facetgo/index"
)

// Dynamic creates a fluent builder for a dynamic range facet over field.
//
// Example:
//
//	result, err := facetgo.Dynamic(searcher, "price").
//	    Query(memindex.Term("category", "books")).
//	    SampleCap(500).
//	    Bins(20).
//	    Seed(42).
//	    Execute(ctx)
func Dynamic(searcher index.Searcher, field string) *DynamicBuilder {
	return &DynamicBuilder{
		searcher: searcher,
		field:    field,
	}
}

// DynamicBuilder is a fluent builder for dynamic range facet computations.
type DynamicBuilder struct {
	searcher index.Searcher
	field    string
	query    index.Query
	src      index.ValueSource
	hits     []index.MatchingDocs
	opts     []Option
}

// Query sets the query scoping the facet. Defaults to whatever the
// searcher treats as match-all when left nil.
func (b *DynamicBuilder) Query(q index.Query) *DynamicBuilder {
	b.query = q
	return b
}

// ValueSource overrides the field value source. Without it the searcher's
// backing index resolves the field directly.
func (b *DynamicBuilder) ValueSource(src index.ValueSource) *DynamicBuilder {
	b.src = src
	return b
}

// Hits supplies a previously collected full match set for the counting
// pass, avoiding a second query execution.
func (b *DynamicBuilder) Hits(hits []index.MatchingDocs) *DynamicBuilder {
	b.hits = hits
	return b
}

// SampleCap bounds the number of sampled documents.
func (b *DynamicBuilder) SampleCap(cap int) *DynamicBuilder {
	b.opts = append(b.opts, WithSampleCap(cap))
	return b
}

// Bins bounds the number of interior buckets.
func (b *DynamicBuilder) Bins(n int) *DynamicBuilder {
	b.opts = append(b.opts, WithTopNBins(n))
	return b
}

// Seed fixes the sampling seed for reproducible boundaries.
func (b *DynamicBuilder) Seed(seed int64) *DynamicBuilder {
	b.opts = append(b.opts, WithSeed(seed))
	return b
}

// FastMatch sets a pre-filter query for the counting pass.
func (b *DynamicBuilder) FastMatch(q index.Query) *DynamicBuilder {
	b.opts = append(b.opts, WithFastMatch(q))
	return b
}

// CollapseDegenerate switches the degenerate-input policy from failing
// with ErrEmptyDomain to returning a single catch-all bucket.
func (b *DynamicBuilder) CollapseDegenerate() *DynamicBuilder {
	b.opts = append(b.opts, WithDegeneratePolicy(DegenerateCollapse))
	return b
}

// Options appends raw options, for settings without a dedicated method.
func (b *DynamicBuilder) Options(optFns ...Option) *DynamicBuilder {
	b.opts = append(b.opts, optFns...)
	return b
}

// Execute runs the facet computation.
func (b *DynamicBuilder) Execute(ctx context.Context) (*Result, error) {
	return ComputeDynamicRanges(ctx, b.field, b.src, b.hits, b.searcher, b.query, b.opts...)
}

// MustExecute runs the computation, panicking on error.
// Use this only in tests or when you're certain the inputs are valid.
func (b *DynamicBuilder) MustExecute(ctx context.Context) *Result {
	result, err := b.Execute(ctx)
	if err != nil {
		panic(err)
	}
	return result
}
