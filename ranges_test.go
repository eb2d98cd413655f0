package facetgo

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/facetgo/model"
	"github.com/hupe1980/facetgo/testutil"
)

func sortedCopy(vals []int64) []int64 {
	out := slices.Clone(vals)
	slices.Sort(out)
	return out
}

func sequentialSample(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

// assertPartition checks the structural invariants of a produced range
// list: ordered, contiguous, and attributing each probe value to exactly
// one range.
func assertPartition(t *testing.T, ranges []model.Range, probes []int64) {
	t.Helper()

	require.NotEmpty(t, ranges)
	first, last := ranges[0], ranges[len(ranges)-1]
	assert.EqualValues(t, math.MinInt64, first.Lower)
	assert.True(t, first.LowerInclusive)
	assert.EqualValues(t, math.MaxInt64, last.Upper)
	assert.True(t, last.UpperInclusive)

	for k := 0; k < len(ranges)-1; k++ {
		cur, next := ranges[k], ranges[k+1]
		require.NoError(t, cur.Validate())
		assert.Equal(t, cur.Upper, next.Lower, "adjacent ranges %q/%q must share a boundary", cur.Label, next.Label)
		assert.Equal(t, cur.UpperInclusive, !next.LowerInclusive, "boundary %d must belong to exactly one of %q/%q", cur.Upper, cur.Label, next.Label)
	}

	probes = append(probes, math.MinInt64, math.MinInt64+1, -1, 0, 1, math.MaxInt64-1, math.MaxInt64)
	for _, v := range probes {
		owners := 0
		for _, r := range ranges {
			if r.Contains(v) {
				owners++
			}
		}
		assert.Equalf(t, 1, owners, "value %d must belong to exactly one range", v)
	}
}

func TestBuildRanges_EquiDepth(t *testing.T) {
	// 100 sampled values 1..100 with 100 true matches: 10 interior
	// buckets of 10 values each plus the two outliers.
	sample := sequentialSample(100)

	ranges, err := BuildRanges(sample, 100)
	require.NoError(t, err)
	require.Len(t, ranges, 12)

	assert.Equal(t, LabelMin, ranges[0].Label)
	assert.Equal(t, LabelMax, ranges[11].Label)
	assert.EqualValues(t, 1, ranges[0].Upper)
	assert.False(t, ranges[0].UpperInclusive)

	for b := 1; b <= 10; b++ {
		r := ranges[b]
		assert.Equal(t, interiorLabel(b), r.Label)
		assert.EqualValues(t, (b-1)*10+1, r.Lower)
		assert.True(t, r.LowerInclusive)
		if b < 10 {
			assert.EqualValues(t, b*10+1, r.Upper)
			assert.False(t, r.UpperInclusive)
		} else {
			assert.EqualValues(t, 100, r.Upper)
			assert.True(t, r.UpperInclusive)
		}
	}

	assert.EqualValues(t, 100, ranges[11].Lower)
	assert.False(t, ranges[11].LowerInclusive)

	assertPartition(t, ranges, sample)
}

func TestBuildRanges_Degenerate(t *testing.T) {
	sample := []int64{10, 20, 30, 40, 50}

	t.Run("ErrorByDefault", func(t *testing.T) {
		// Five true matches cannot fill a single interior bucket.
		_, err := BuildRanges(sample, 5)
		require.ErrorIs(t, err, ErrEmptyDomain)
	})

	t.Run("EmptySample", func(t *testing.T) {
		_, err := BuildRanges(nil, 1000)
		require.ErrorIs(t, err, ErrEmptyDomain)
	})

	t.Run("Collapse", func(t *testing.T) {
		ranges, err := BuildRanges(sample, 5, WithDegeneratePolicy(DegenerateCollapse))
		require.NoError(t, err)
		require.Len(t, ranges, 1)
		assert.Equal(t, LabelAll, ranges[0].Label)
		assertPartition(t, ranges, sample)
	})
}

func TestBuildRanges_AllValuesIdentical(t *testing.T) {
	// Ties collapse every interior bucket onto the same boundary; the
	// partition must still attribute 42 to exactly one bucket.
	sample := make([]int64, 1000)
	for i := range sample {
		sample[i] = 42
	}

	ranges, err := BuildRanges(sample, 1000)
	require.NoError(t, err)
	require.Len(t, ranges, 102)

	assertPartition(t, ranges, []int64{41, 42, 43})

	owners := 0
	for _, r := range ranges {
		if r.Contains(42) {
			owners++
		}
	}
	assert.Equal(t, 1, owners)
}

func TestBuildRanges_BucketCap(t *testing.T) {
	tests := []struct {
		name         string
		sampleSize   int
		totalMatches int64
		topNBins     int
		wantInterior int
	}{
		{"CappedByTopN", 1000, 100_000, 100, 100},
		{"CappedByVolume", 1000, 300, 100, 30},
		{"CappedBySample", 5, 100_000, 100, 5},
		{"SmallTopN", 1000, 100_000, 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := testutil.NewRNG(1)
			sample := rng.UniformInts(tt.sampleSize, 0, 1_000_000)
			ranges, err := BuildRanges(sortedCopy(sample), tt.totalMatches, WithTopNBins(tt.topNBins))
			require.NoError(t, err)
			assert.Len(t, ranges, tt.wantInterior+2)
		})
	}
}

func TestBuildRanges_DomainExtremesInSample(t *testing.T) {
	sample := []int64{math.MinInt64, -5, 0, 1, 2, 3, 7, 100, 10_000, math.MaxInt64}

	ranges, err := BuildRanges(sample, 100)
	require.NoError(t, err)

	// Both outliers are empty: the sample already touches the extremes.
	assert.True(t, ranges[0].Empty())
	assert.True(t, ranges[len(ranges)-1].Empty())
	assertPartition(t, ranges, sample)
}

func TestBuildRanges_RandomizedPartition(t *testing.T) {
	rng := testutil.NewRNG(99)

	for range 25 {
		n := 1 + rng.Intn(500)
		total := int64(1+rng.Intn(100)) * 10
		sample := sortedCopy(rng.UniformInts(n, -1000, 1000))

		ranges, err := BuildRanges(sample, total)
		require.NoError(t, err)
		assertPartition(t, ranges, sample)
	}
}

func TestBuildRanges_SkewedDistribution(t *testing.T) {
	rng := testutil.NewRNG(7)
	sample := sortedCopy(rng.SkewedPrices(1000))

	ranges, err := BuildRanges(sample, 50_000)
	require.NoError(t, err)
	require.Len(t, ranges, 102)
	assertPartition(t, ranges, sample)
}
