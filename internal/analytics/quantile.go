package analytics

import (
	"math"
	"sort"
)

// Threshold is a percentile cut-point. An empty sub-population yields an
// invalid threshold; every comparison against an invalid threshold is false,
// which keeps segment assignment total.
type Threshold struct {
	Value float64
	Valid bool
}

// Quantile computes the q-th quantile (0..1) of values with standard linear
// interpolation over the sorted data: position q*(n-1), interpolated between
// neighbors. This matches the convention the preparation pipeline has always
// used for threshold cut-points.
func Quantile(values []float64, q float64) Threshold {
	if len(values) == 0 || math.IsNaN(q) {
		return Threshold{}
	}
	if q < 0 {
		q = 0
	}
	if q > 1 {
		q = 1
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return Threshold{Value: sorted[lo], Valid: true}
	}
	frac := pos - float64(lo)
	return Threshold{
		Value: sorted[lo] + frac*(sorted[hi]-sorted[lo]),
		Valid: true,
	}
}

// Threshold comparison helpers. Invalid thresholds compare false so that
// rules depending on an empty sub-population simply never fire.

func atLeast(v float64, t Threshold) bool {
	return t.Valid && v >= t.Value
}

func above(v float64, t Threshold) bool {
	return t.Valid && v > t.Value
}

func below(v float64, t Threshold) bool {
	return t.Valid && v < t.Value
}

func atMost(v float64, t Threshold) bool {
	return t.Valid && v <= t.Value
}
