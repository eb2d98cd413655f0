package facetgo

import (
	"context"
	"slices"
	"sort"

	"github.com/hupe1980/facetgo/index"
	"github.com/hupe1980/facetgo/model"
)

// CountRanges attributes every document in the given match groups to exactly
// one range and returns the per-label counts. It is the exact counting pass:
// groups should hold the full match set, not a sample.
//
// A single-valued source contributes one count per document. A multi-valued
// source counts a document at most once per range, however many of its
// values fall inside. Counting is deterministic and side-effect free;
// running it twice over the same inputs yields identical results, and for
// single-valued sources the counts sum to the number of matched documents.
//
// The ranges must be an ordered, disjoint list as produced by BuildRanges.
func CountRanges(ctx context.Context, ranges []model.Range, groups []index.MatchingDocs, src index.ValueSource) (map[string]int64, error) {
	counts := make(map[string]int64, len(ranges))
	for _, r := range ranges {
		counts[r.Label] = 0
	}

	var vals []int64
	for _, group := range groups {
		it := group.Bits.Iterator()
		for it.HasNext() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			doc := model.DocID(it.Next())

			var err error
			vals, err = src.Values(group.SegmentOrd, doc, vals[:0])
			if err != nil {
				return nil, err
			}

			if len(vals) == 1 {
				if idx := findRange(ranges, vals[0]); idx >= 0 {
					counts[ranges[idx].Label]++
				}
				continue
			}

			// Multi-valued: sorted values yield non-decreasing range
			// indices, so a previous-index check dedupes per document.
			slices.Sort(vals)
			prev := -1
			for _, v := range vals {
				idx := findRange(ranges, v)
				if idx >= 0 && idx != prev {
					counts[ranges[idx].Label]++
					prev = idx
				}
			}
		}
	}

	return counts, nil
}

// findRange locates the unique range containing v, or -1.
//
// Binary search over the effective upper bounds: the first range that does
// not end before v is the only candidate, since the list is ordered and
// disjoint. Empty collapsed buckets share bounds with their neighbors but
// can never contain v, so the candidate check settles them.
func findRange(ranges []model.Range, v int64) int {
	idx := sort.Search(len(ranges), func(i int) bool {
		r := ranges[i]
		return v < r.Upper || (v == r.Upper && r.UpperInclusive)
	})
	if idx < len(ranges) && ranges[idx].Contains(v) {
		return idx
	}
	return -1
}
