package sampling

import (
	"context"

	"github.com/hupe1980/facetgo/index"
)

// MatchCollector collects the complete match set of a query, one group per
// segment. It backs the exact counting pass of a facet computation.
type MatchCollector struct {
	groups []index.MatchingDocs
}

// NewMatchCollector creates an empty exhaustive collector.
func NewMatchCollector() *MatchCollector {
	return &MatchCollector{}
}

// CollectSegment implements index.Collector.
// The segment bitmap is cloned; collected groups stay valid after the search.
func (mc *MatchCollector) CollectSegment(ctx context.Context, seg index.SegmentContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bits := seg.Matches().Clone()
	mc.groups = append(mc.groups, index.MatchingDocs{
		SegmentOrd: seg.Ord(),
		Bits:       bits,
		TotalHits:  int64(bits.GetCardinality()),
	})
	return nil
}

// MatchingDocs returns the collected groups in segment collection order.
func (mc *MatchCollector) MatchingDocs() []index.MatchingDocs {
	return mc.groups
}

// TotalHits returns the total number of matches across all segments.
func (mc *MatchCollector) TotalHits() int64 {
	var total int64
	for _, g := range mc.groups {
		total += g.TotalHits
	}
	return total
}
