package fft

import (
	"math/rand"
	"testing"
)

// TestTransform2DSeparable checks rows-then-columns against transforming each
// axis by hand
func TestTransform2DSeparable(t *testing.T) {
	rows, cols := 4, 8
	rng := rand.New(rand.NewSource(11))
	data := randomSequence(rng, rows*cols)

	// Reference: transform rows, then columns, using the 1D entry point
	want := make([]complex128, len(data))
	for i := 0; i < rows; i++ {
		out, err := Transform(data[i*cols:(i+1)*cols], false)
		if err != nil {
			t.Fatalf("row %d: %v", i, err)
		}
		copy(want[i*cols:], out)
	}
	for j := 0; j < cols; j++ {
		col := make([]complex128, rows)
		for i := range col {
			col[i] = want[i*cols+j]
		}
		out, err := Transform(col, false)
		if err != nil {
			t.Fatalf("column %d: %v", j, err)
		}
		for i := range out {
			want[i*cols+j] = out[i]
		}
	}

	for _, workers := range []int{0, 1, 3, 16} {
		got := append([]complex128(nil), data...)
		if err := Transform2D(got, rows, cols, false, workers); err != nil {
			t.Fatalf("workers=%d: Transform2D failed: %v", workers, err)
		}
		assertClose(t, got, want, 1e-12)
	}
}

// TestTransform2DRoundTrip verifies the inverse 2D pass restores the input
func TestTransform2DRoundTrip(t *testing.T) {
	rows, cols := 16, 32
	rng := rand.New(rand.NewSource(5))
	data := randomSequence(rng, rows*cols)
	work := append([]complex128(nil), data...)

	if err := Transform2D(work, rows, cols, false, 4); err != nil {
		t.Fatalf("forward failed: %v", err)
	}
	if err := Columns(work, rows, cols, true, 4); err != nil {
		t.Fatalf("inverse columns failed: %v", err)
	}
	if err := Rows(work, rows, cols, true, 4); err != nil {
		t.Fatalf("inverse rows failed: %v", err)
	}
	assertClose(t, work, data, 1e-9)
}

func TestRowsRejectsBadShape(t *testing.T) {
	if err := Rows(make([]complex128, 12), 3, 4, false, 1); err != nil {
		t.Errorf("3x4 rows should be accepted, got %v", err)
	}
	if err := Rows(make([]complex128, 12), 4, 3, false, 1); err == nil {
		t.Errorf("Expected error for non power-of-two row length")
	}
	if err := Columns(make([]complex128, 12), 3, 4, false, 1); err == nil {
		t.Errorf("Expected error for non power-of-two column length")
	}
	if err := Rows(make([]complex128, 10), 4, 4, false, 1); err == nil {
		t.Errorf("Expected error for mismatched data length")
	}
}
