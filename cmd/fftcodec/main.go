package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"fftcodec/pkg/codec"
	"fftcodec/pkg/config"
	"fftcodec/pkg/imageio"
	"fftcodec/pkg/pipeline"
	"fftcodec/pkg/polynomial"
)

const usage = `Usage: fftcodec <command> [flags]

Commands:
  compress   encode an image at several rates and report quality
  encode     compress an image into a .fftc container
  decode     restore an image from a .fftc container
  multiply   multiply two polynomials
  bench      time FFT against brute-force multiplication
  config     write a default configuration file

Run "fftcodec <command> -h" for the flags of a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd, args := os.Args[1], os.Args[2:]
	switch cmd {
	case "compress":
		runCompress(args)
	case "encode":
		runEncode(args)
	case "decode":
		runDecode(args)
	case "multiply":
		runMultiply(args)
	case "bench":
		runBench(args)
	case "config":
		runConfig(args)
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(1)
	}
}

// loadConfig reads the YAML configuration named by path, or the defaults when
// the file does not exist.
func loadConfig(path string) *config.Config {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	return cfg
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// setFlags reports which flags were given explicitly on the command line.
func setFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

func runCompress(args []string) {
	fs := flag.NewFlagSet("compress", flag.ExitOnError)
	input := fs.String("input", "", "Image to compress (JPEG or PNG)")
	rates := fs.String("rates", "", "Comma-separated compression rates (default from config)")
	outDir := fs.String("out", "", "Output directory (default from config)")
	format := fs.String("format", "", "Output image format, jpg or png (default from config)")
	workers := fs.Int("workers", 0, "Goroutines per transform pass (0 = all CPUs)")
	concurrency := fs.Int("concurrency", 1, "Rates processed at the same time (default from config)")
	spectrum := fs.Bool("spectrum", false, "Also save a picture of each thresholded spectrum")
	container := fs.Bool("container", false, "Also save the compressed container")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	if *input == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	set := setFlags(fs)
	if set["rates"] {
		parsed, err := parseInts(*rates)
		if err != nil {
			log.Fatalf("Invalid -rates: %v", err)
		}
		cfg.Codec.Rates = parsed
	}
	if set["out"] {
		cfg.Output.Dir = *outDir
	}
	if set["format"] {
		cfg.Output.Format = *format
	}
	if set["workers"] {
		cfg.Codec.Workers = *workers
	}
	if set["concurrency"] {
		cfg.Codec.Concurrency = *concurrency
	}
	if set["spectrum"] {
		cfg.Output.SaveSpectrum = *spectrum
	}
	if set["container"] {
		cfg.Output.SaveContainer = *container
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	outFormat, _ := imageio.ParseFormat(cfg.Output.Format)

	fmt.Println("================================")
	fmt.Println("FFT IMAGE COMPRESSION")
	fmt.Println("================================")

	p := pipeline.NewPipeline(&pipeline.Params{
		InputFile:     *input,
		OutputDir:     cfg.Output.Dir,
		Rates:         cfg.Codec.Rates,
		Format:        outFormat,
		JPEGQuality:   cfg.Output.JPEGQuality,
		Workers:       cfg.Codec.Workers,
		Concurrency:   cfg.Codec.Concurrency,
		SaveSpectrum:  cfg.Output.SaveSpectrum,
		SaveContainer: cfg.Output.SaveContainer,
		Logger:        newLogger(cfg.Output.Verbose),
	})

	startTime := time.Now()
	if err := p.Process(context.Background()); err != nil {
		log.Fatalf("Compression failed: %v", err)
	}
	processingTime := time.Since(startTime)

	original := p.GetOriginal()
	fmt.Printf("\nCompressed %s (%dx%d) at %d rates in %.2f seconds\n",
		*input, original.Width, original.Height, len(cfg.Codec.Rates), processingTime.Seconds())
	fmt.Printf("Output saved to: %s\n\n", cfg.Output.Dir)

	fmt.Printf("%5s %9s %8s %8s %7s %8s %10s %10s\n",
		"rate", "kept", "density", "RMSE", "PSNR", "SSIM", "encode", "decode")
	for _, r := range p.GetResults() {
		fmt.Printf("%5d %9d %7.2f%% %8.3f %7.2f %8.4f %10s %10s\n",
			r.Rate, r.Kept, 100*r.Density(), r.RMSE, r.PSNR, r.SSIM,
			r.EncodeTime.Round(time.Microsecond), r.DecodeTime.Round(time.Microsecond))
	}
}

func runEncode(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	input := fs.String("input", "", "Image to compress (JPEG or PNG)")
	rate := fs.Int("rate", 0, "Compression rate in [0, 100] (default from config)")
	output := fs.String("out", "", "Container file to write (default <input>.fftc)")
	workers := fs.Int("workers", 0, "Goroutines per transform pass (0 = all CPUs)")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	if *input == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	*rate = encodeRate(fs, *rate, cfg)
	if setFlags(fs)["workers"] {
		cfg.Codec.Workers = *workers
	}
	if *output == "" {
		*output = strings.TrimSuffix(*input, filepath.Ext(*input)) + ".fftc"
	}

	img, err := imageio.LoadImage(*input)
	if err != nil {
		log.Fatalf("Failed to load image: %v", err)
	}

	startTime := time.Now()
	enc, err := codec.New(cfg.Codec.Workers).Encode(codec.GridFromImage(img), *rate)
	if err != nil {
		log.Fatalf("Encoding failed: %v", err)
	}
	elapsed := time.Since(startTime)

	file, err := os.Create(*output)
	if err != nil {
		log.Fatalf("Failed to create %s: %v", *output, err)
	}
	n, err := enc.WriteTo(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Fatalf("Failed to write container: %v", err)
	}

	fmt.Printf("Encoded %dx%d image at rate %d in %s\n", enc.Width, enc.Height, enc.Rate, elapsed.Round(time.Microsecond))
	fmt.Printf("Kept %d of %d coefficients (%.2f%%)\n",
		enc.NonZero(), codec.NumChannels*enc.FFTHeight*enc.FFTWidth, 100*enc.Density())
	fmt.Printf("Container saved to: %s (%d bytes)\n", *output, n)
}

// encodeRate returns the -rate flag when it was given, out-of-range values
// included, and the configured rate otherwise.
func encodeRate(fs *flag.FlagSet, rate int, cfg *config.Config) int {
	if setFlags(fs)["rate"] {
		return rate
	}
	return cfg.Codec.CompressionRate
}

func runDecode(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	input := fs.String("input", "", "Container file to decode")
	output := fs.String("out", "", "Image to write; the extension selects jpg or png")
	workers := fs.Int("workers", 0, "Goroutines per transform pass (0 = all CPUs)")
	configPath := fs.String("config", "config.yaml", "Configuration file")
	fs.Parse(args)

	if *input == "" || *output == "" {
		fs.Usage()
		os.Exit(1)
	}

	cfg := loadConfig(*configPath)
	if setFlags(fs)["workers"] {
		cfg.Codec.Workers = *workers
	}

	format, err := imageio.FormatFromPath(*output)
	if err != nil {
		log.Fatalf("Invalid output file: %v", err)
	}

	file, err := os.Open(*input)
	if err != nil {
		log.Fatalf("Failed to open container: %v", err)
	}
	enc, err := codec.ReadCompressed(file)
	file.Close()
	if err != nil {
		log.Fatalf("Failed to read container: %v", err)
	}

	startTime := time.Now()
	img, err := codec.New(cfg.Codec.Workers).Decode(enc)
	if err != nil {
		log.Fatalf("Decoding failed: %v", err)
	}
	elapsed := time.Since(startTime)

	if err := imageio.SaveImage(img.Image(), *output, format, cfg.Output.JPEGQuality); err != nil {
		log.Fatalf("Failed to save image: %v", err)
	}

	fmt.Printf("Decoded %dx%d image (rate %d) in %s\n", img.Width, img.Height, enc.Rate, elapsed.Round(time.Microsecond))
	fmt.Printf("Output saved to: %s\n", *output)
}

func runMultiply(args []string) {
	fs := flag.NewFlagSet("multiply", flag.ExitOnError)
	a := fs.String("a", "1,1", "Coefficients of the first polynomial, lowest order first")
	b := fs.String("b", "1,1", "Coefficients of the second polynomial, lowest order first")
	exact := fs.Bool("round", true, "Round the product to integers")
	fs.Parse(args)

	polyA, err := parseFloats(*a)
	if err != nil {
		log.Fatalf("Invalid -a: %v", err)
	}
	polyB, err := parseFloats(*b)
	if err != nil {
		log.Fatalf("Invalid -b: %v", err)
	}

	product, err := polynomial.Multiply(polyA, polyB)
	if err != nil {
		log.Fatalf("Multiplication failed: %v", err)
	}
	if *exact {
		product = polynomial.Round(product)
	}
	product = polynomial.Trim(product, 1e-9)

	fmt.Printf("(%s) * (%s) =\n", polynomial.String(polyA), polynomial.String(polyB))
	fmt.Printf("%s\n", polynomial.String(product))
}

func runConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("out", "config.yaml", "Configuration file to write")
	fs.Parse(args)

	if err := config.CreateDefaultConfigFile(*output); err != nil {
		log.Fatalf("Failed to write configuration: %v", err)
	}
	fmt.Printf("Default configuration saved to: %s\n", *output)
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
