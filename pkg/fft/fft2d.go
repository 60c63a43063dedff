package fft

import (
	"fmt"
	"sync"
)

// Rows transforms every row of the row-major rows×cols matrix stored in data,
// in place. cols must be a power of two.
//
// The rows are divided among up to workers goroutines; each goroutine owns a
// contiguous block of rows so no two goroutines touch the same element.
func Rows(data []complex128, rows, cols int, inverse bool, workers int) error {
	if err := checkMatrix(data, rows, cols); err != nil {
		return err
	}
	p, err := NewPlan(cols)
	if err != nil {
		return err
	}

	parallel(rows, workers, func(start, end int) {
		out := make([]complex128, cols)
		for i := start; i < end; i++ {
			row := data[i*cols : (i+1)*cols]
			if inverse {
				p.Inverse(out, row)
			} else {
				p.Forward(out, row)
			}
			copy(row, out)
		}
	})
	return nil
}

// Columns transforms every column of the row-major rows×cols matrix stored in
// data, in place. rows must be a power of two.
func Columns(data []complex128, rows, cols int, inverse bool, workers int) error {
	if err := checkMatrix(data, rows, cols); err != nil {
		return err
	}
	p, err := NewPlan(rows)
	if err != nil {
		return err
	}

	parallel(cols, workers, func(start, end int) {
		col := make([]complex128, rows)
		out := make([]complex128, rows)
		for j := start; j < end; j++ {
			// Extract column
			for i := 0; i < rows; i++ {
				col[i] = data[i*cols+j]
			}

			if inverse {
				p.Inverse(out, col)
			} else {
				p.Forward(out, col)
			}

			// Store column
			for i := 0; i < rows; i++ {
				data[i*cols+j] = out[i]
			}
		}
	})
	return nil
}

// Transform2D applies a forward (or inverse) 2D transform to data: rows first,
// then columns. Both dimensions must be powers of two.
func Transform2D(data []complex128, rows, cols int, inverse bool, workers int) error {
	if err := Rows(data, rows, cols, inverse, workers); err != nil {
		return err
	}
	return Columns(data, rows, cols, inverse, workers)
}

func checkMatrix(data []complex128, rows, cols int) error {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return fmt.Errorf("fft: matrix data has %d elements, want %dx%d", len(data), rows, cols)
	}
	return nil
}

// parallel splits [0, n) into contiguous blocks and runs fn on each block in
// its own goroutine, waiting for all of them to finish.
func parallel(n, workers int, fn func(start, end int)) {
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		fn(0, n)
		return
	}

	perWorker := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * perWorker
		end := start + perWorker
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}
