// Package fft implements a radix-2 Cooley-Tukey Fast Fourier Transform over
// complex128 sequences whose length is a power of two.
//
// The forward transform uses the e^(-2πik/n) convention and is unnormalized.
// The inverse transform halves every output at each level of the recursion,
// which compounds to the usual 1/n normalization, so that
//
//	Transform(Transform(x, false), true) ≈ x
package fft

import (
	"fmt"
	"math"
)

// InvalidLengthError is returned when a sequence handed to the transform does
// not have a power-of-two length.
type InvalidLengthError struct {
	Length int
}

func (e *InvalidLengthError) Error() string {
	return fmt.Sprintf("fft: sequence length %d is not a power of two", e.Length)
}

// Transform computes the discrete Fourier transform of seq, or its inverse
// when inverse is true. The input is not modified; a new slice is returned.
func Transform(seq []complex128, inverse bool) ([]complex128, error) {
	p, err := NewPlan(len(seq))
	if err != nil {
		return nil, err
	}

	dst := make([]complex128, len(seq))
	if inverse {
		p.Inverse(dst, seq)
	} else {
		p.Forward(dst, seq)
	}
	return dst, nil
}

// Plan holds the twiddle factors for transforms of a single length.
// A Plan is read-only after construction and may be shared between goroutines.
type Plan struct {
	n       int
	twiddle []complex128
}

// NewPlan prepares a transform of length n.
func NewPlan(n int) (*Plan, error) {
	if !IsPowerOfTwo(n) {
		return nil, &InvalidLengthError{Length: n}
	}

	p := &Plan{
		n:       n,
		twiddle: make([]complex128, n/2),
	}
	for k := range p.twiddle {
		angle := -2 * math.Pi * float64(k) / float64(n)
		p.twiddle[k] = complex(math.Cos(angle), math.Sin(angle))
	}
	return p, nil
}

// Len returns the transform length of the plan.
func (p *Plan) Len() int { return p.n }

// Forward writes the DFT of src into dst. dst and src must both have length
// Len() and must not overlap.
func (p *Plan) Forward(dst, src []complex128) {
	p.check(dst, src)
	p.recurse(dst, src, 1, false)
}

// Inverse writes the inverse DFT of src into dst. dst and src must both have
// length Len() and must not overlap.
func (p *Plan) Inverse(dst, src []complex128) {
	p.check(dst, src)
	p.recurse(dst, src, 1, true)
}

func (p *Plan) check(dst, src []complex128) {
	if len(dst) != p.n || len(src) != p.n {
		panic(fmt.Sprintf("fft: length mismatch: plan %d, dst %d, src %d", p.n, len(dst), len(src)))
	}
}

// recurse transforms the sub-sequence src[0], src[stride], src[2*stride], ...
// of length len(dst) into dst.
func (p *Plan) recurse(dst, src []complex128, stride int, inverse bool) {
	n := len(dst)
	if n == 1 {
		dst[0] = src[0]
		return
	}

	half := n / 2

	// Even samples land in the lower half, odd samples in the upper half.
	p.recurse(dst[:half], src, 2*stride, inverse)
	p.recurse(dst[half:], src[stride:], 2*stride, inverse)

	// ω_n^k == ω_N^(k*N/n) for the full plan length N.
	step := p.n / n
	for k := 0; k < half; k++ {
		w := p.twiddle[k*step]
		if inverse {
			w = complex(real(w), -imag(w))
		}

		even := dst[k]
		t := w * dst[k+half]
		dst[k] = even + t
		dst[k+half] = even - t

		if inverse {
			dst[k] *= 0.5
			dst[k+half] *= 0.5
		}
	}
}

// IsPowerOfTwo reports whether n == 2^k for some k >= 0.
func IsPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// CeilPow2 returns the smallest power of two that is not smaller than n.
// CeilPow2(0) is 1.
func CeilPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
