package facetgo

import (
	"context"
	"slices"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/facetgo/index"
	"github.com/hupe1980/facetgo/model"
	"github.com/hupe1980/facetgo/sampling"
)

// Result is the outcome of one dynamic range facet computation.
type Result struct {
	// Ranges is the ordered, disjoint bucket list derived from the sample.
	Ranges []model.Range

	// Counts maps each range label to the exact number of matching
	// documents attributed to it.
	Counts map[string]int64

	// Stats describes the sampling pass the buckets were derived from.
	Stats model.MatchStatistics
}

// ComputeDynamicRanges computes data-driven range buckets for a numeric
// field and exact per-bucket counts.
//
// The computation samples at most the configured cap of documents matching
// q (uniformly, via reservoir sampling), derives equi-depth bucket
// boundaries from the sorted sampled values of field, then counts ALL
// matching documents per bucket.
//
// hits supplies the full match set for the counting pass; pass nil to have
// the query re-executed. src supplies the field values; pass nil to resolve
// it from the searcher (which must then implement index.FieldValueProvider).
//
// Each call is an independent computation over freshly sampled data;
// concurrent calls against the same read-only index snapshot are safe.
func ComputeDynamicRanges(ctx context.Context, field string, src index.ValueSource, hits []index.MatchingDocs, searcher index.Searcher, q index.Query, optFns ...Option) (*Result, error) {
	o := applyOptions(optFns)

	if searcher == nil {
		return nil, ErrNilSearcher
	}
	if src == nil {
		provider, ok := searcher.(index.FieldValueProvider)
		if !ok {
			return nil, ErrNoValueSource
		}
		var err error
		src, err = provider.FieldValueSource(field)
		if err != nil {
			return nil, err
		}
	}

	// Sampling pass.
	start := time.Now()
	rc := sampling.NewReservoirCollector(o.sampleCap, o.effectiveSeed())
	if err := searcher.Search(ctx, q, rc); err != nil {
		qerr := newQueryError("sample", q, err)
		o.metricsCollector.RecordSample(0, time.Since(start), qerr)
		o.logger.LogSample(ctx, field, 0, 0, qerr)
		return nil, qerr
	}
	sampled := rc.MatchingDocs()
	totalMatches := rc.TotalHits()

	values, err := extractValues(ctx, src, sampled, o.parallelism)
	o.metricsCollector.RecordSample(len(values), time.Since(start), err)
	o.logger.LogSample(ctx, field, len(values), totalMatches, err)
	if err != nil {
		return nil, err
	}

	// Boundary estimation.
	start = time.Now()
	ranges, err := buildRanges(values, totalMatches, o)
	o.metricsCollector.RecordRangeBuild(len(ranges), time.Since(start), err)
	o.logger.LogRanges(ctx, field, len(ranges), err)
	if err != nil {
		return nil, err
	}

	// Exact counting pass over the full match set.
	start = time.Now()
	if hits == nil {
		mc := sampling.NewMatchCollector()
		if err := searcher.Search(ctx, q, mc); err != nil {
			qerr := newQueryError("match", q, err)
			o.metricsCollector.RecordCount(time.Since(start), qerr)
			o.logger.LogCount(ctx, field, 0, qerr)
			return nil, qerr
		}
		hits = mc.MatchingDocs()
	}
	if o.fastMatch != nil {
		hits, err = applyFastMatch(ctx, searcher, o.fastMatch, hits)
		if err != nil {
			o.metricsCollector.RecordCount(time.Since(start), err)
			o.logger.LogCount(ctx, field, 0, err)
			return nil, err
		}
	}

	counts, err := CountRanges(ctx, ranges, hits, src)
	o.metricsCollector.RecordCount(time.Since(start), err)

	var counted int64
	for _, c := range counts {
		counted += c
	}
	o.logger.LogCount(ctx, field, counted, err)
	if err != nil {
		return nil, err
	}

	return &Result{
		Ranges: ranges,
		Counts: counts,
		Stats: model.MatchStatistics{
			TotalMatches: totalMatches,
			SampleSize:   len(values),
		},
	}, nil
}

// ComputeDynamicRangesForField is the common-case entry point: the value
// source is resolved from the searcher's backing index, and the full match
// set is collected by re-running the query.
func ComputeDynamicRangesForField(ctx context.Context, field string, searcher index.Searcher, q index.Query, optFns ...Option) (*Result, error) {
	return ComputeDynamicRanges(ctx, field, nil, nil, searcher, q, optFns...)
}

// extractValues reads the field value of every sampled document and returns
// the values sorted ascending. Groups are independent, so extraction fans
// out across them with bounded parallelism and concatenates the per-group
// buffers before sorting.
func extractValues(ctx context.Context, src index.ValueSource, groups []index.MatchingDocs, parallelism int) ([]int64, error) {
	parts := make([][]int64, len(groups))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for i, group := range groups {
		g.Go(func() error {
			var vals []int64
			it := group.Bits.Iterator()
			for it.HasNext() {
				if err := gctx.Err(); err != nil {
					return err
				}
				doc := model.DocID(it.Next())
				var err error
				vals, err = src.Values(group.SegmentOrd, doc, vals)
				if err != nil {
					return err
				}
			}
			parts[i] = vals
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	values := make([]int64, 0, total)
	for _, p := range parts {
		values = append(values, p...)
	}
	slices.Sort(values)
	return values, nil
}

// applyFastMatch intersects the match groups with the result of a
// pre-filter query, so only documents matching both take part in counting.
func applyFastMatch(ctx context.Context, searcher index.Searcher, fq index.Query, hits []index.MatchingDocs) ([]index.MatchingDocs, error) {
	mc := sampling.NewMatchCollector()
	if err := searcher.Search(ctx, fq, mc); err != nil {
		return nil, newQueryError("fastmatch", fq, err)
	}

	bySeg := make(map[int]*roaring.Bitmap)
	for _, g := range mc.MatchingDocs() {
		bySeg[g.SegmentOrd] = g.Bits
	}

	out := make([]index.MatchingDocs, 0, len(hits))
	for _, g := range hits {
		bits := g.Bits.Clone()
		if fm, ok := bySeg[g.SegmentOrd]; ok {
			bits.And(fm)
		} else {
			bits.Clear()
		}
		out = append(out, index.MatchingDocs{
			SegmentOrd: g.SegmentOrd,
			Bits:       bits,
			TotalHits:  int64(bits.GetCardinality()),
		})
	}
	return out, nil
}
