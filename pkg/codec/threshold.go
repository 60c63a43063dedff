package codec

import (
	"math"
	"math/cmplx"
	"sort"
)

// Threshold zeroes, in place, every coefficient of spectrum whose magnitude
// is strictly below the rate-th percentile of all magnitudes, and returns
// that percentile. rate must be within [0, 100].
//
// The percentile interpolates linearly between the two sorted magnitudes
// around position rate/100*(n-1), so for distinct magnitudes rate% of the
// coefficients are discarded whenever n*rate/100 is a whole number.
func Threshold(spectrum []complex128, rate int) float64 {
	if len(spectrum) == 0 {
		return 0
	}

	magnitudes := make([]float64, len(spectrum))
	for i, v := range spectrum {
		magnitudes[i] = cmplx.Abs(v)
	}

	sorted := make([]float64, len(magnitudes))
	copy(sorted, magnitudes)
	sort.Float64s(sorted)

	cut := percentile(sorted, float64(rate)/100)

	for i, m := range magnitudes {
		if m < cut {
			spectrum[i] = 0
		}
	}
	return cut
}

// percentile returns the p-quantile of sorted (p in [0, 1]) by linear
// interpolation at position p*(n-1).
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	pos := p * float64(n-1)
	lo := int(math.Floor(pos))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := pos - float64(lo)
	if frac == 0 {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
