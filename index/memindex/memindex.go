// Package memindex provides a reference in-memory index for facetgo: a
// multi-segment, columnar document store that implements index.Searcher and
// index.FieldValueProvider.
//
// Architecture:
//   - Documents append into fixed-size segments; a new segment is cut every
//     segmentSize documents, so even small corpora exercise multi-group
//     collection paths.
//   - Per-field columnar storage: aligned docs/values arrays per segment.
//     Numeric columns get a sorted (value, doc) view on Seal for O(log n)
//     range queries; string columns keep raw values and exercise the
//     parse-on-read path of value extraction.
//   - Query results are roaring bitmaps of segment-local document IDs.
//
// The index is append-then-seal: Add is cheap, Seal (implicit on the first
// Search after a write) sorts numeric columns. Searches run against the
// sealed snapshot and are safe for concurrent use.
package memindex

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/hupe1980/facetgo/index"
	"github.com/hupe1980/facetgo/model"
)

// DefaultSegmentSize is the number of documents per segment.
const DefaultSegmentSize = 1024

type kind uint8

const (
	kindNumeric kind = iota + 1 // single int64 per document
	kindMultiNumeric            // multiple int64 per document
	kindString                  // raw string, parsed on read
)

// Index is an in-memory, segmented, columnar document index.
type Index struct {
	mu          sync.RWMutex
	segmentSize int
	segments    []*segment
	sealed      bool
}

// Option configures an Index.
type Option func(*Index)

// WithSegmentSize sets the number of documents per segment.
// Values below 1 fall back to DefaultSegmentSize.
func WithSegmentSize(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.segmentSize = n
		}
	}
}

// New creates an empty index.
func New(optFns ...Option) *Index {
	ix := &Index{segmentSize: DefaultSegmentSize}
	for _, fn := range optFns {
		if fn != nil {
			fn(ix)
		}
	}
	return ix
}

// segment holds the columns for one contiguous slice of documents.
type segment struct {
	ord     int
	numDocs int
	columns map[string]*column
}

// column stores the values of one field within one segment.
// Invariant: docs is ascending and aligned with the kind-specific value
// slice (ints, multi, or strs).
type column struct {
	kind kind
	docs []uint32

	ints  []int64
	multi [][]int64
	strs  []string

	// Sorted (value, doc) view for numeric kinds, built on Seal.
	// Multi-valued columns expand to one entry per value.
	sortedVals []int64
	sortedDocs []uint32
}

// Add indexes one document and returns its global document number.
// Supported field value types: int, int32, int64, uint32, []int64, string.
func (ix *Index) Add(doc map[string]any) (int64, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	// Validate before touching any column so a bad document is not
	// partially indexed.
	for field, v := range doc {
		k, err := kindOf(v)
		if err != nil {
			return 0, fmt.Errorf("memindex: field %q: %w", field, err)
		}
		seg := ix.currentSegmentLocked()
		if col, ok := seg.columns[field]; ok && col.kind != k {
			return 0, fmt.Errorf("memindex: field %q: value kind conflicts with earlier documents", field)
		}
	}

	seg := ix.currentSegmentLocked()
	local := uint32(seg.numDocs)

	for field, v := range doc {
		col, ok := seg.columns[field]
		if !ok {
			k, _ := kindOf(v)
			col = &column{kind: k}
			seg.columns[field] = col
		}
		col.docs = append(col.docs, local)
		switch val := v.(type) {
		case int:
			col.ints = append(col.ints, int64(val))
		case int32:
			col.ints = append(col.ints, int64(val))
		case int64:
			col.ints = append(col.ints, val)
		case uint32:
			col.ints = append(col.ints, int64(val))
		case []int64:
			vals := make([]int64, len(val))
			copy(vals, val)
			col.multi = append(col.multi, vals)
		case string:
			col.strs = append(col.strs, val)
		}
	}

	seg.numDocs++
	ix.sealed = false
	return int64(seg.ord)*int64(ix.segmentSize) + int64(local), nil
}

func kindOf(v any) (kind, error) {
	switch v.(type) {
	case int, int32, int64, uint32:
		return kindNumeric, nil
	case []int64:
		return kindMultiNumeric, nil
	case string:
		return kindString, nil
	default:
		return 0, fmt.Errorf("unsupported value type %T", v)
	}
}

// currentSegmentLocked returns the segment accepting new documents,
// cutting a new one when the last is full.
func (ix *Index) currentSegmentLocked() *segment {
	if n := len(ix.segments); n > 0 && ix.segments[n-1].numDocs < ix.segmentSize {
		return ix.segments[n-1]
	}
	seg := &segment{
		ord:     len(ix.segments),
		columns: make(map[string]*column),
	}
	ix.segments = append(ix.segments, seg)
	return seg
}

// Seal sorts the numeric columns of every segment. Search seals implicitly;
// call Seal explicitly to front-load the work after bulk loading.
func (ix *Index) Seal() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.sealLocked()
}

func (ix *Index) sealLocked() {
	if ix.sealed {
		return
	}
	for _, seg := range ix.segments {
		for _, col := range seg.columns {
			col.buildSortedView()
		}
	}
	ix.sealed = true
}

// buildSortedView expands the column into an aligned (value, doc) pair list
// sorted by value. Indirect sort keeps the pairs aligned.
func (c *column) buildSortedView() {
	switch c.kind {
	case kindNumeric:
		c.sortedVals = append(c.sortedVals[:0], c.ints...)
		c.sortedDocs = append(c.sortedDocs[:0], c.docs...)
	case kindMultiNumeric:
		c.sortedVals = c.sortedVals[:0]
		c.sortedDocs = c.sortedDocs[:0]
		for i, vals := range c.multi {
			for _, v := range vals {
				c.sortedVals = append(c.sortedVals, v)
				c.sortedDocs = append(c.sortedDocs, c.docs[i])
			}
		}
	default:
		return
	}

	indices := make([]int, len(c.sortedVals))
	for i := range indices {
		indices[i] = i
	}
	sort.Slice(indices, func(a, b int) bool {
		va, vb := c.sortedVals[indices[a]], c.sortedVals[indices[b]]
		if va != vb {
			return va < vb
		}
		return c.sortedDocs[indices[a]] < c.sortedDocs[indices[b]]
	})

	newVals := make([]int64, len(c.sortedVals))
	newDocs := make([]uint32, len(c.sortedDocs))
	for i, idx := range indices {
		newVals[i] = c.sortedVals[idx]
		newDocs[i] = c.sortedDocs[idx]
	}
	c.sortedVals = newVals
	c.sortedDocs = newDocs
}

// NumDocs returns the total number of indexed documents.
func (ix *Index) NumDocs() int64 {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	var total int64
	for _, seg := range ix.segments {
		total += int64(seg.numDocs)
	}
	return total
}

// NumSegments returns the number of segments.
func (ix *Index) NumSegments() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.segments)
}

// FieldValueSource implements index.FieldValueProvider. The returned source
// reads the named field's stored values, parsing string columns as base-10
// int64 on access.
func (ix *Index) FieldValueSource(field string) (index.ValueSource, error) {
	return &fieldValueSource{ix: ix, field: field}, nil
}

type fieldValueSource struct {
	ix    *Index
	field string
}

// Values implements index.ValueSource.
func (f *fieldValueSource) Values(segmentOrd int, doc model.DocID, dst []int64) ([]int64, error) {
	f.ix.mu.RLock()
	defer f.ix.mu.RUnlock()

	if segmentOrd < 0 || segmentOrd >= len(f.ix.segments) {
		return dst, fmt.Errorf("memindex: unknown segment ordinal %d", segmentOrd)
	}
	seg := f.ix.segments[segmentOrd]

	col, ok := seg.columns[f.field]
	if !ok {
		return dst, &index.ValueError{Field: f.field, SegmentOrd: segmentOrd, Doc: uint32(doc)}
	}

	d := uint32(doc)
	idx := sort.Search(len(col.docs), func(i int) bool { return col.docs[i] >= d })
	if idx >= len(col.docs) || col.docs[idx] != d {
		return dst, &index.ValueError{Field: f.field, SegmentOrd: segmentOrd, Doc: d}
	}

	switch col.kind {
	case kindNumeric:
		return append(dst, col.ints[idx]), nil
	case kindMultiNumeric:
		return append(dst, col.multi[idx]...), nil
	default:
		raw := col.strs[idx]
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return dst, &index.ValueError{Field: f.field, SegmentOrd: segmentOrd, Doc: d, Raw: raw, Err: err}
		}
		return append(dst, v), nil
	}
}
