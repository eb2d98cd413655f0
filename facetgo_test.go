package facetgo_test

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/facetgo"
	"github.com/hupe1980/facetgo/index"
	"github.com/hupe1980/facetgo/index/memindex"
	"github.com/hupe1980/facetgo/sampling"
	"github.com/hupe1980/facetgo/testutil"
)

func newPriceIndex(t *testing.T, prices []int64, segmentSize int) *memindex.Index {
	t.Helper()
	ix := memindex.New(memindex.WithSegmentSize(segmentSize))
	for _, p := range prices {
		_, err := ix.Add(map[string]any{"price": p})
		require.NoError(t, err)
	}
	return ix
}

func sumCounts(counts map[string]int64) int64 {
	var sum int64
	for _, c := range counts {
		sum += c
	}
	return sum
}

func TestComputeDynamicRanges_FullSample(t *testing.T) {
	// 100 matches against the default cap of 1000: the sample is the full
	// match set, so boundaries are exact regardless of seed.
	ix := newPriceIndex(t, sequentialValues(100), 32)

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil, facetgo.WithSeed(1))
	require.NoError(t, err)

	require.Len(t, result.Ranges, 12)
	assert.EqualValues(t, 100, result.Stats.TotalMatches)
	assert.Equal(t, 100, result.Stats.SampleSize)

	// Equi-depth: ten interior buckets of exactly ten documents each.
	for b := 1; b <= 10; b++ {
		label := result.Ranges[b].Label
		assert.EqualValues(t, 10, result.Counts[label], label)
	}
	assert.EqualValues(t, 0, result.Counts[facetgo.LabelMin])
	assert.EqualValues(t, 0, result.Counts[facetgo.LabelMax])
	assert.EqualValues(t, 100, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_SmallMatchSet(t *testing.T) {
	// 50 matches fit entirely inside the sample cap, so the boundaries are
	// exact; volume clamping leaves 50/10 = 5 interior buckets.
	ix := newPriceIndex(t, sequentialValues(50), 16)

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil, facetgo.WithSeed(9))
	require.NoError(t, err)

	assert.EqualValues(t, 50, result.Stats.TotalMatches)
	assert.Equal(t, 50, result.Stats.SampleSize)
	assert.Len(t, result.Ranges, 7)
	assert.EqualValues(t, 50, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_SampledCountsSum(t *testing.T) {
	// 5000 matches against a cap of 200: boundaries are estimated from a
	// sample, but counts stay exact and sum to the full match volume.
	rng := testutil.NewRNG(11)
	ix := newPriceIndex(t, rng.SkewedPrices(5000), 512)

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil,
		facetgo.WithSeed(42),
		facetgo.WithSampleCap(200),
	)
	require.NoError(t, err)

	assert.EqualValues(t, 5000, result.Stats.TotalMatches)
	assert.Equal(t, 200, result.Stats.SampleSize)
	assert.EqualValues(t, 5000, sumCounts(result.Counts))
	// 200 sampled values against topNBins=100 and volume 5000: the sample
	// size never caps below topNBins here.
	assert.Len(t, result.Ranges, 102)
}

func TestComputeDynamicRanges_Deterministic(t *testing.T) {
	rng := testutil.NewRNG(3)
	ix := newPriceIndex(t, rng.SkewedPrices(5000), 512)

	run := func(seed int64) *facetgo.Result {
		result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil,
			facetgo.WithSeed(seed),
			facetgo.WithSampleCap(100),
		)
		require.NoError(t, err)
		return result
	}

	first, second := run(42), run(42)
	assert.Equal(t, first.Ranges, second.Ranges)
	assert.Equal(t, first.Counts, second.Counts)

	assert.NotEqual(t, first.Ranges, run(99).Ranges, "different seeds should sample different boundaries")
}

func TestComputeDynamicRanges_QueryScoped(t *testing.T) {
	ix := memindex.New(memindex.WithSegmentSize(16))
	for i := range 200 {
		category := "books"
		if i%2 == 1 {
			category = "games"
		}
		_, err := ix.Add(map[string]any{"price": i, "category": category})
		require.NoError(t, err)
	}

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix,
		memindex.Term("category", "books"), facetgo.WithSeed(1))
	require.NoError(t, err)

	assert.EqualValues(t, 100, result.Stats.TotalMatches)
	assert.EqualValues(t, 100, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_Degenerate(t *testing.T) {
	ix := newPriceIndex(t, []int64{10, 20, 30, 40, 50}, 1024)

	t.Run("ErrorByDefault", func(t *testing.T) {
		_, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil, facetgo.WithSeed(1))
		require.ErrorIs(t, err, facetgo.ErrEmptyDomain)
	})

	t.Run("Collapse", func(t *testing.T) {
		result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil,
			facetgo.WithSeed(1),
			facetgo.WithDegeneratePolicy(facetgo.DegenerateCollapse),
		)
		require.NoError(t, err)
		require.Len(t, result.Ranges, 1)
		assert.Equal(t, facetgo.LabelAll, result.Ranges[0].Label)
		assert.EqualValues(t, 5, result.Counts[facetgo.LabelAll])
	})

	t.Run("NoMatches", func(t *testing.T) {
		_, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix,
			memindex.Term("category", "none"), facetgo.WithSeed(1))
		require.ErrorIs(t, err, facetgo.ErrEmptyDomain)
	})
}

func TestComputeDynamicRanges_StringColumn(t *testing.T) {
	ix := memindex.New()
	for i := range 100 {
		_, err := ix.Add(map[string]any{"price": strconv.Itoa(i + 1)})
		require.NoError(t, err)
	}

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil, facetgo.WithSeed(1))
	require.NoError(t, err)
	assert.Len(t, result.Ranges, 12)
	assert.EqualValues(t, 100, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_UnparsableValue(t *testing.T) {
	ix := memindex.New()
	for i := range 99 {
		_, err := ix.Add(map[string]any{"price": strconv.Itoa(i + 1)})
		require.NoError(t, err)
	}
	_, err := ix.Add(map[string]any{"price": "not-a-number"})
	require.NoError(t, err)

	_, err = facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil, facetgo.WithSeed(1))
	require.Error(t, err)
	assert.True(t, facetgo.IsValueError(err))
}

func TestComputeDynamicRanges_MultiValuedField(t *testing.T) {
	ix := memindex.New(memindex.WithSegmentSize(64))
	for i := range 100 {
		// Two values per document, far apart.
		_, err := ix.Add(map[string]any{"sizes": []int64{int64(i + 1), int64(i + 100_000)}})
		require.NoError(t, err)
	}

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "sizes", ix, nil, facetgo.WithSeed(1))
	require.NoError(t, err)

	// A document counts once per bucket it lands in, so the sum can exceed
	// the match volume but never 2x it here.
	sum := sumCounts(result.Counts)
	assert.GreaterOrEqual(t, sum, int64(100))
	assert.LessOrEqual(t, sum, int64(200))
	assert.EqualValues(t, 100, result.Stats.TotalMatches)
	assert.Equal(t, 200, result.Stats.SampleSize, "every value of a sampled document enters the sample")
}

func TestComputeDynamicRanges_FastMatch(t *testing.T) {
	ix := memindex.New(memindex.WithSegmentSize(16))
	books := 0
	for i := range 200 {
		category := "games"
		if i%4 == 0 {
			category = "books"
			books++
		}
		_, err := ix.Add(map[string]any{"price": i, "category": category})
		require.NoError(t, err)
	}

	result, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil,
		facetgo.WithSeed(1),
		facetgo.WithFastMatch(memindex.Term("category", "books")),
	)
	require.NoError(t, err)

	// Boundaries come from all 200 matches; counting is restricted to the
	// pre-filtered subset.
	assert.EqualValues(t, 200, result.Stats.TotalMatches)
	assert.EqualValues(t, books, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_ProvidedHits(t *testing.T) {
	// A pipeline that already ran the query hands over its match set; the
	// counting pass must not re-execute the query.
	ix := newPriceIndex(t, sequentialValues(100), 32)

	mc := sampling.NewMatchCollector()
	require.NoError(t, ix.Search(context.Background(), nil, mc))

	result, err := facetgo.ComputeDynamicRanges(context.Background(), "price", nil, mc.MatchingDocs(), ix, nil, facetgo.WithSeed(1))
	require.NoError(t, err)
	assert.EqualValues(t, 100, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_NilSearcher(t *testing.T) {
	_, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", nil, nil)
	require.ErrorIs(t, err, facetgo.ErrNilSearcher)
}

// searcherOnly hides memindex's FieldValueProvider capability.
type searcherOnly struct {
	ix *memindex.Index
}

func (s searcherOnly) Search(ctx context.Context, q index.Query, c index.Collector) error {
	return s.ix.Search(ctx, q, c)
}

func TestComputeDynamicRanges_NoValueSource(t *testing.T) {
	ix := newPriceIndex(t, sequentialValues(100), 32)

	_, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", searcherOnly{ix: ix}, nil)
	require.ErrorIs(t, err, facetgo.ErrNoValueSource)
}

func TestComputeDynamicRanges_ExplicitValueSource(t *testing.T) {
	ix := newPriceIndex(t, sequentialValues(100), 32)
	src, err := ix.FieldValueSource("price")
	require.NoError(t, err)

	result, err := facetgo.ComputeDynamicRanges(context.Background(), "price", src, nil, searcherOnly{ix: ix}, nil, facetgo.WithSeed(1))
	require.NoError(t, err)
	assert.EqualValues(t, 100, sumCounts(result.Counts))
}

func TestComputeDynamicRanges_QueryError(t *testing.T) {
	ix := newPriceIndex(t, sequentialValues(100), 32)

	_, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, badQuery{}, facetgo.WithSeed(1))
	require.Error(t, err)

	var qerr *facetgo.QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Equal(t, "sample", qerr.Op)
	assert.Equal(t, "bad", qerr.Query)
}

func TestComputeDynamicRanges_Metrics(t *testing.T) {
	ix := newPriceIndex(t, sequentialValues(100), 32)
	mc := &facetgo.BasicMetricsCollector{}

	_, err := facetgo.ComputeDynamicRangesForField(context.Background(), "price", ix, nil,
		facetgo.WithSeed(1),
		facetgo.WithMetricsCollector(mc),
	)
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.EqualValues(t, 1, stats.SampleCount)
	assert.EqualValues(t, 0, stats.SampleErrors)
	assert.EqualValues(t, 1, stats.RangeBuildCount)
	assert.EqualValues(t, 12, stats.RangesProduced)
	assert.EqualValues(t, 1, stats.CountCount)
	assert.EqualValues(t, 0, stats.CountErrors)
}

func TestComputeDynamicRanges_ContextCanceled(t *testing.T) {
	ix := newPriceIndex(t, sequentialValues(100), 32)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := facetgo.ComputeDynamicRangesForField(ctx, "price", ix, nil, facetgo.WithSeed(1))
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

type badQuery struct{}

func (badQuery) String() string { return "bad" }

func sequentialValues(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

