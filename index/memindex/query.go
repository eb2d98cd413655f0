package memindex

import (
	"context"
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/facetgo/index"
)

// All matches every document.
func All() index.Query { return allQuery{} }

// Term matches documents whose string field equals value exactly.
func Term(field, value string) index.Query {
	return termQuery{field: field, value: value}
}

// NumericRange matches documents with at least one numeric value of field
// inside the given interval.
func NumericRange(field string, min, max int64, includeMin, includeMax bool) index.Query {
	return numericRangeQuery{field: field, min: min, max: max, incMin: includeMin, incMax: includeMax}
}

type allQuery struct{}

func (allQuery) String() string { return "*:*" }

type termQuery struct {
	field string
	value string
}

func (q termQuery) String() string { return fmt.Sprintf("%s:%s", q.field, q.value) }

type numericRangeQuery struct {
	field      string
	min, max   int64
	incMin     bool
	incMax     bool
}

func (q numericRangeQuery) String() string {
	lb, ub := "(", ")"
	if q.incMin {
		lb = "["
	}
	if q.incMax {
		ub = "]"
	}
	return fmt.Sprintf("%s:%s%d,%d%s", q.field, lb, q.min, q.max, ub)
}

// Search implements index.Searcher. The index is sealed on first use after
// a write; segments are then visited in ordinal order. A nil query matches
// all documents.
func (ix *Index) Search(ctx context.Context, q index.Query, c index.Collector) error {
	if q == nil {
		q = All()
	}
	ix.mu.Lock()
	ix.sealLocked()
	segs := ix.segments
	ix.mu.Unlock()

	for _, seg := range segs {
		if err := ctx.Err(); err != nil {
			return err
		}
		bm, err := seg.eval(q)
		if err != nil {
			return err
		}
		if err := c.CollectSegment(ctx, &segmentContext{ord: seg.ord, bits: bm}); err != nil {
			return err
		}
	}
	return nil
}

type segmentContext struct {
	ord  int
	bits *roaring.Bitmap
}

func (s *segmentContext) Ord() int                 { return s.ord }
func (s *segmentContext) Matches() *roaring.Bitmap { return s.bits }

// eval computes the segment-local match bitmap for a query.
func (s *segment) eval(q index.Query) (*roaring.Bitmap, error) {
	bm := roaring.New()

	switch q := q.(type) {
	case allQuery:
		if s.numDocs > 0 {
			bm.AddRange(0, uint64(s.numDocs))
		}

	case termQuery:
		col, ok := s.columns[q.field]
		if !ok || col.kind != kindString {
			break // unknown field or wrong type matches nothing
		}
		for i, v := range col.strs {
			if v == q.value {
				bm.Add(col.docs[i])
			}
		}

	case numericRangeQuery:
		col, ok := s.columns[q.field]
		if !ok || (col.kind != kindNumeric && col.kind != kindMultiNumeric) {
			break
		}
		// Binary search the sealed sorted view for the boundary slice.
		vals := col.sortedVals
		lo := sort.Search(len(vals), func(i int) bool {
			if q.incMin {
				return vals[i] >= q.min
			}
			return vals[i] > q.min
		})
		hi := sort.Search(len(vals), func(i int) bool {
			if q.incMax {
				return vals[i] > q.max
			}
			return vals[i] >= q.max
		})
		if hi > lo {
			// Multi-valued columns can repeat a doc; the bitmap dedupes.
			bm.AddMany(col.sortedDocs[lo:hi])
		}

	default:
		return nil, fmt.Errorf("memindex: unsupported query type %T", q)
	}

	return bm, nil
}
