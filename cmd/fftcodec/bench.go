package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"math/rand"
	"os"
	"time"

	"gonum.org/v1/gonum/dsp/fourier"

	"fftcodec/internal/timing"
	"fftcodec/pkg/fft"
	"fftcodec/pkg/polynomial"
)

func runBench(args []string) {
	fs := flag.NewFlagSet("bench", flag.ExitOnError)
	count := fs.Int("n", 0, "Coefficients per random polynomial (default from config)")
	fftSize := fs.Int("fft", 0, "Length of the timed transform, rounded up to a power of two (default from config)")
	brute := fs.Bool("brute", false, "Also time brute-force multiplication")
	seed := fs.Int64("seed", 0, "Random seed (default from config)")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	cfg := loadConfig(*configPath)
	set := setFlags(fs)
	if set["n"] {
		cfg.Bench.Count = *count
	}
	if set["fft"] {
		cfg.Bench.FFTSize = *fftSize
	}
	if set["brute"] {
		cfg.Bench.BruteForce = *brute
	}
	if set["seed"] {
		cfg.Bench.Seed = *seed
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := newLogger(true)
	rng := rand.New(rand.NewSource(cfg.Bench.Seed))

	fmt.Println("================================")
	fmt.Println("FFT BENCHMARK")
	fmt.Println("================================")

	// Small products, printed in full
	for _, pair := range [][2][]float64{
		{{1, 1}, {1, 1}},
		{{4, 1, -4, 1, 1}, {4, 5, 0, -2}},
	} {
		a, b := pair[0], pair[1]
		product, err := polynomial.Multiply(a, b)
		if err != nil {
			log.Fatalf("Multiplication failed: %v", err)
		}
		fmt.Printf("(%s) * (%s) =\n", polynomial.String(a), polynomial.String(b))
		fmt.Printf("\t%s VS\n", polynomial.String(polynomial.Trim(polynomial.Round(product), 0)))
		fmt.Printf("\t%s\n", polynomial.String(polynomial.Round(polynomial.BruteForceMultiply(a, b))))
	}

	a := randomFloats(rng, cfg.Bench.Count)
	b := randomFloats(rng, cfg.Bench.Count)

	product, elapsed, err := timing.Run(logger, "fft multiply", func() ([]float64, error) {
		return polynomial.Multiply(a, b)
	}, "count", cfg.Bench.Count)
	if err != nil {
		log.Fatalf("Multiplication failed: %v", err)
	}
	fmt.Printf("\nFFT multiply of %d coefficients: %s\n", cfg.Bench.Count, elapsed.Round(time.Microsecond))
	fmt.Printf("Error in constant term: %g\n", product[0]-a[0]*b[0])

	if cfg.Bench.BruteForce {
		product, elapsed, _ = timing.Run(logger, "brute force multiply", func() ([]float64, error) {
			return polynomial.BruteForceMultiply(a, b), nil
		}, "count", cfg.Bench.Count)
		fmt.Printf("Brute-force multiply of %d coefficients: %s\n", cfg.Bench.Count, elapsed.Round(time.Microsecond))
		fmt.Printf("Error in constant term: %g\n", product[0]-a[0]*b[0])
	}

	n := fft.CeilPow2(cfg.Bench.FFTSize)
	seq := make([]complex128, n)
	for i := range seq {
		seq[i] = complex(rng.Float64(), 0)
	}

	var spectrum []complex128
	spectrum, elapsed, err = timing.Run(logger, "fft", func() ([]complex128, error) {
		return fft.Transform(seq, false)
	}, "n", n)
	if err != nil {
		log.Fatalf("Transform failed: %v", err)
	}
	fmt.Printf("\nTransform of length %d: %s\n", n, elapsed.Round(time.Microsecond))

	// gonum's mixed-radix transform as a reference point
	var reference []complex128
	reference, elapsed, _ = timing.Run(logger, "gonum fft", func() ([]complex128, error) {
		return fourier.NewCmplxFFT(n).Coefficients(nil, seq), nil
	}, "n", n)
	fmt.Printf("gonum transform of length %d: %s\n", n, elapsed.Round(time.Microsecond))

	var maxDiff float64
	for i := range spectrum {
		maxDiff = math.Max(maxDiff, cmplx.Abs(spectrum[i]-reference[i]))
	}
	fmt.Printf("Largest difference from gonum: %g\n", maxDiff)

	if maxDiff > 1e-6*float64(n) {
		fmt.Fprintln(os.Stderr, "Warning: transforms disagree")
	}
}

func randomFloats(rng *rand.Rand, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.Float64()
	}
	return out
}
