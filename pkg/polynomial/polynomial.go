// Package polynomial multiplies real-coefficient polynomials through the
// convolution theorem:
//
//	a * b = FFT⁻¹(FFT(a) · FFT(b))
//
// Coefficients are stored lowest order first, so coeffs[i] multiplies X^i.
package polynomial

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"fftcodec/pkg/fft"
)

// Multiply returns the product of a and b.
//
// Both operands are zero-padded to m = CeilPow2(2*max(len(a), len(b))) so the
// circular convolution computed by the transform cannot wrap around. The
// result has length m; coefficients at index len(a)+len(b)-1 and above are
// zero up to rounding error.
func Multiply(a, b []float64) ([]float64, error) {
	m := fft.CeilPow2(2 * max(len(a), len(b)))

	plan, err := fft.NewPlan(m)
	if err != nil {
		return nil, fmt.Errorf("polynomial: %w", err)
	}

	ftA := make([]complex128, m)
	ftB := make([]complex128, m)
	plan.Forward(ftA, pad(a, m))
	plan.Forward(ftB, pad(b, m))

	// Pointwise product in frequency space
	for i := range ftA {
		ftA[i] *= ftB[i]
	}

	// ftB is free again and holds the result
	plan.Inverse(ftB, ftA)

	result := make([]float64, m)
	for i, v := range ftB {
		result[i] = real(v)
	}
	return result, nil
}

// BruteForceMultiply computes the product of a and b by direct O(n²)
// convolution. It is the reference Multiply is checked against.
func BruteForceMultiply(a, b []float64) []float64 {
	if len(a) == 0 || len(b) == 0 {
		return []float64{}
	}

	c := make([]float64, len(a)+len(b)-1)
	for i, x := range a {
		for j, y := range b {
			c[i+j] += x * y
		}
	}
	return c
}

func pad(coeffs []float64, m int) []complex128 {
	out := make([]complex128, m)
	for i, v := range coeffs {
		out[i] = complex(v, 0)
	}
	return out
}

// Round rounds every coefficient to the nearest integer. It is meant for
// products of integral polynomials, where the transform leaves tiny errors.
func Round(coeffs []float64) []float64 {
	out := make([]float64, len(coeffs))
	for i, v := range coeffs {
		out[i] = math.Round(v)
		if out[i] == 0 {
			out[i] = 0 // drop negative zero
		}
	}
	return out
}

// Trim drops trailing coefficients whose magnitude does not exceed eps.
// At least one coefficient is kept for a non-empty input.
func Trim(coeffs []float64, eps float64) []float64 {
	n := len(coeffs)
	for n > 1 && math.Abs(coeffs[n-1]) <= eps {
		n--
	}
	return coeffs[:n]
}

// String renders coeffs as "c0 + c1X^1 + c2X^2 ...", omitting zero terms.
func String(coeffs []float64) string {
	var terms []string
	for i, c := range coeffs {
		if c == 0 {
			continue
		}
		s := strconv.FormatFloat(c, 'g', -1, 64)
		if i > 0 {
			s += "X^" + strconv.Itoa(i)
		}
		terms = append(terms, s)
	}
	if len(terms) == 0 {
		return "0"
	}
	return strings.Join(terms, " + ")
}
