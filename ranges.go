package facetgo

import (
	"fmt"
	"math"

	"github.com/hupe1980/facetgo/model"
)

// Labels of the buckets that exist in every produced range list.
const (
	// LabelMin is the lower outlier bucket, covering everything strictly
	// below the smallest sampled value.
	LabelMin = "Dynamic_range_min"

	// LabelMax is the upper outlier bucket, covering everything strictly
	// above the largest sampled value.
	LabelMax = "Dynamic_range_max"

	// LabelAll is the catch-all bucket produced under DegenerateCollapse.
	LabelAll = "Dynamic_range_all"
)

// interiorLabel names the b-th interior bucket, 1-based.
func interiorLabel(b int) string {
	return fmt.Sprintf("Dynamic_range_%d", b)
}

// BuildRanges partitions the int64 domain into equi-depth buckets derived
// from a sorted sample plus two open-ended outlier buckets.
//
// sorted must be ascending (duplicates allowed); totalMatches is the true
// match count of the query the sample was drawn from, not the sample size.
//
// The interior bucket count is min(topNBins, totalMatches/10), further
// clamped to the sample size; each interior bucket spans the same number of
// consecutive sample values (equi-depth, not equi-width). Interior buckets
// are half-open [lower, upper) except the last, which is closed on both ends
// and absorbs the integer-division remainder up to the sample maximum. The
// result is ordered, gap-free, and attributes every int64 value to exactly
// one bucket; adjacent buckets share their boundary value with complementary
// inclusivity, so boundary values are never double counted.
//
// Sample ties can collapse a bucket to an empty half-open interval; such
// buckets stay in the list (the list shape is always interiorBins+2) and
// simply count nothing.
func BuildRanges(sorted []int64, totalMatches int64, optFns ...Option) ([]model.Range, error) {
	return buildRanges(sorted, totalMatches, applyOptions(optFns))
}

func buildRanges(sorted []int64, totalMatches int64, o *options) ([]model.Range, error) {
	n := len(sorted)

	interior := int64(o.topNBins)
	if byVolume := totalMatches / 10; byVolume < interior {
		interior = byVolume
	}
	if int64(n) < interior {
		// The sampler returned fewer values than the volume allows;
		// never build a bucket with no sample value in it.
		interior = int64(n)
	}

	if interior <= 0 || n == 0 {
		switch o.degenerate {
		case DegenerateCollapse:
			return []model.Range{{
				Label:          LabelAll,
				Lower:          math.MinInt64,
				LowerInclusive: true,
				Upper:          math.MaxInt64,
				UpperInclusive: true,
			}}, nil
		default:
			return nil, ErrEmptyDomain
		}
	}

	m := int(interior)
	countPerBin := n / m

	ranges := make([]model.Range, 0, m+2)
	ranges = append(ranges, model.Range{
		Label:          LabelMin,
		Lower:          math.MinInt64,
		LowerInclusive: true,
		Upper:          sorted[0],
		UpperInclusive: false,
	})

	for b := 1; b <= m; b++ {
		lower := sorted[(b-1)*countPerBin]
		if b < m {
			ranges = append(ranges, model.Range{
				Label:          interiorLabel(b),
				Lower:          lower,
				LowerInclusive: true,
				Upper:          sorted[b*countPerBin],
				UpperInclusive: false,
			})
			continue
		}
		// Final interior bucket: closed on both ends, extended to the
		// sample maximum so remainder values keep full coverage.
		ranges = append(ranges, model.Range{
			Label:          interiorLabel(b),
			Lower:          lower,
			LowerInclusive: true,
			Upper:          sorted[n-1],
			UpperInclusive: true,
		})
	}

	ranges = append(ranges, model.Range{
		Label:          LabelMax,
		Lower:          sorted[n-1],
		LowerInclusive: false,
		Upper:          math.MaxInt64,
		UpperInclusive: true,
	})

	return ranges, nil
}
