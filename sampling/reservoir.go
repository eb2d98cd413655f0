package sampling

import (
	"context"
	"math/rand"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/facetgo/index"
)

// ReservoirCollector draws a bounded uniform sample from the stream of
// query matches while counting every hit it sees.
//
// Sampling is single-pass Algorithm R over the logical concatenation of all
// segment match sets: the i-th match replaces a random reservoir slot with
// probability cap/i. Every document in the match set therefore has the same
// probability of ending up in the sample, regardless of segment sizes.
//
// The random source is seeded explicitly so facet computations are
// reproducible; callers that want fresh randomness pass a clock-derived seed.
type ReservoirCollector struct {
	cap       int
	rng       *rand.Rand
	seen      int64
	reservoir []sampledDoc

	segOrds []int           // segment ordinals in collection order
	segHits map[int]int64   // per-segment true hit counts
}

type sampledDoc struct {
	ord int
	doc uint32
}

// NewReservoirCollector creates a collector keeping at most sampleCap
// documents, using a deterministic random source derived from seed.
func NewReservoirCollector(sampleCap int, seed int64) *ReservoirCollector {
	if sampleCap < 0 {
		sampleCap = 0
	}
	return &ReservoirCollector{
		cap:       sampleCap,
		rng:       rand.New(rand.NewSource(seed)),
		reservoir: make([]sampledDoc, 0, sampleCap),
		segHits:   make(map[int]int64),
	}
}

// CollectSegment implements index.Collector.
func (rc *ReservoirCollector) CollectSegment(ctx context.Context, seg index.SegmentContext) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ord := seg.Ord()
	bits := seg.Matches()

	if _, ok := rc.segHits[ord]; !ok {
		rc.segOrds = append(rc.segOrds, ord)
	}
	rc.segHits[ord] += int64(bits.GetCardinality())

	it := bits.Iterator()
	for it.HasNext() {
		rc.observe(ord, it.Next())
	}
	return nil
}

// observe feeds one match into the reservoir.
func (rc *ReservoirCollector) observe(ord int, doc uint32) {
	rc.seen++
	if rc.cap == 0 {
		return
	}
	if len(rc.reservoir) < rc.cap {
		rc.reservoir = append(rc.reservoir, sampledDoc{ord: ord, doc: doc})
		return
	}
	if j := rc.rng.Int63n(rc.seen); j < int64(rc.cap) {
		rc.reservoir[j] = sampledDoc{ord: ord, doc: doc}
	}
}

// TotalHits returns the exact number of matches seen across all segments.
func (rc *ReservoirCollector) TotalHits() int64 {
	return rc.seen
}

// SampleSize returns the number of documents currently in the reservoir.
func (rc *ReservoirCollector) SampleSize() int {
	return len(rc.reservoir)
}

// MatchingDocs returns the sampled documents grouped by segment, in the
// order segments were collected. TotalHits on each group is the segment's
// true match count, not its sampled count.
func (rc *ReservoirCollector) MatchingDocs() []index.MatchingDocs {
	bySeg := make(map[int]*roaring.Bitmap, len(rc.segOrds))
	for _, sd := range rc.reservoir {
		bm, ok := bySeg[sd.ord]
		if !ok {
			bm = roaring.New()
			bySeg[sd.ord] = bm
		}
		bm.Add(sd.doc)
	}

	groups := make([]index.MatchingDocs, 0, len(rc.segOrds))
	for _, ord := range rc.segOrds {
		bm, ok := bySeg[ord]
		if !ok {
			bm = roaring.New()
		}
		groups = append(groups, index.MatchingDocs{
			SegmentOrd: ord,
			Bits:       bm,
			TotalHits:  rc.segHits[ord],
		})
	}
	return groups
}
