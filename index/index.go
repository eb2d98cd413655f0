// Package index defines the retrieval-side contracts facetgo consumes:
// query execution, per-segment match collection, and numeric value access.
//
// facetgo never talks to document storage directly. Any engine that can
// execute a query and stream per-segment match bitmaps into a Collector can
// back a dynamic range facet computation. A reference in-memory
// implementation lives in index/memindex.
package index

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/facetgo/model"
)

// Query is an opaque query executed by a Searcher. Implementations are
// engine-specific; facetgo only threads queries through and logs them.
type Query interface {
	String() string
}

// SegmentContext exposes the matches of a single segment during collection.
//
// The bitmap is owned by the searcher and only valid for the duration of the
// CollectSegment call; collectors that retain matches must clone it.
type SegmentContext interface {
	// Ord returns the segment ordinal, stable for the lifetime of the
	// index snapshot being searched.
	Ord() int

	// Matches returns the document IDs in this segment matching the query.
	Matches() *roaring.Bitmap
}

// Collector receives per-segment match sets from a Searcher.
type Collector interface {
	CollectSegment(ctx context.Context, seg SegmentContext) error
}

// Searcher executes queries against a read-only index snapshot.
//
// Search must visit every segment exactly once and must propagate collector
// errors unchanged. Implementations are expected to be safe for concurrent
// use by independent callers.
type Searcher interface {
	Search(ctx context.Context, q Query, c Collector) error
}

// MatchingDocs is one collected group of matching documents, typically one
// per index segment.
type MatchingDocs struct {
	// SegmentOrd identifies the segment the documents belong to.
	SegmentOrd int

	// Bits holds the collected document IDs. For a sampling collector this
	// is the sampled subset, not the full match set.
	Bits *roaring.Bitmap

	// TotalHits is the true number of query matches seen in this segment,
	// independent of how many documents the collector kept.
	TotalHits int64
}

// ValueSource yields the stored numeric values of a document.
//
// A single interface covers both single-valued and multi-valued fields:
// implementations append however many values the document carries. Values
// must be appended to dst so callers can reuse one buffer across documents.
//
// A document with no value for the field is an error (*ValueError), not an
// empty append; facetgo treats missing values as fatal for the whole
// computation.
type ValueSource interface {
	Values(segmentOrd int, doc model.DocID, dst []int64) ([]int64, error)
}

// FieldValueProvider is an optional capability of a Searcher whose backing
// index can resolve a field name to a ValueSource directly.
type FieldValueProvider interface {
	FieldValueSource(field string) (ValueSource, error)
}
