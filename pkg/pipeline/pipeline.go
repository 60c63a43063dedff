// Package pipeline runs a compression sweep over one image: the image is
// encoded at each requested rate, decoded, written out and scored against the
// original.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"fftcodec/internal/models"
	"fftcodec/internal/timing"
	"fftcodec/pkg/codec"
	"fftcodec/pkg/imageio"
)

// Params holds the sweep parameters.
type Params struct {
	// InputFile is the JPEG or PNG image to compress.
	InputFile string

	// OutputDir is where decoded images (and optional artefacts) are written.
	OutputDir string

	// Rates lists the compression rates to try, each within [0, 100].
	Rates []int

	// Format and JPEGQuality control how decoded images are saved.
	Format      imageio.Format
	JPEGQuality int

	// Workers is the number of goroutines per transform pass (0 = all CPUs).
	Workers int

	// Concurrency is the number of rates processed at the same time (0 = 1).
	Concurrency int

	// SaveSpectrum writes a picture of each thresholded channel spectrum.
	SaveSpectrum bool

	// SaveContainer writes the serialized compressed representation.
	SaveContainer bool

	// Logger receives progress records. Nil discards them.
	Logger *slog.Logger
}

// Pipeline handles one compression sweep.
//
// The sweep consists of several steps:
// 1. Loading the input image
// 2. Encoding it at every rate
// 3. Decoding and saving each result
// 4. Scoring each result against the original
type Pipeline struct {
	params *Params
	logger *slog.Logger
	codec  *codec.Codec

	// original is the input image as an RGB grid
	original codec.Grid

	// results holds one entry per rate, sorted by rate
	results []models.RateResult
}

// NewPipeline creates a new pipeline instance with the provided parameters.
func NewPipeline(params *Params) *Pipeline {
	logger := params.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Pipeline{
		params: params,
		logger: logger,
		codec:  codec.New(params.Workers),
	}
}

// Process runs the complete sweep.
func (p *Pipeline) Process(ctx context.Context) error {
	if len(p.params.Rates) == 0 {
		return fmt.Errorf("no compression rates given")
	}
	for _, rate := range p.params.Rates {
		if rate < 0 || rate > 100 {
			return fmt.Errorf("%w: got %d", codec.ErrInvalidRate, rate)
		}
	}

	if err := os.MkdirAll(p.params.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Step 1: Load the input image
	p.logger.Info("Step 1: Loading input image", "file", p.params.InputFile)
	if err := p.loadImage(); err != nil {
		return fmt.Errorf("failed to load image: %w", err)
	}
	p.logger.Info("Loaded image", "width", p.original.Width, "height", p.original.Height)

	// Steps 2-4 run per rate; each rate writes its own files, so run it once
	rates := uniqueRates(p.params.Rates)
	p.logger.Info("Step 2: Compressing", "rates", rates)
	results := make([]models.RateResult, len(rates))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(p.params.Concurrency, 1))
	for i, rate := range rates {
		i, rate := i, rate
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := p.processRate(rate)
			if err != nil {
				return fmt.Errorf("rate %d: %w", rate, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.SliceStable(results, func(i, j int) bool { return results[i].Rate < results[j].Rate })
	p.results = results

	p.logger.Info("Sweep completed", "results", len(results))
	return nil
}

// uniqueRates returns rates without repeats, in first-seen order.
func uniqueRates(rates []int) []int {
	seen := make(map[int]bool, len(rates))
	out := make([]int, 0, len(rates))
	for _, r := range rates {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	return out
}

func (p *Pipeline) loadImage() error {
	img, err := imageio.LoadImage(p.params.InputFile)
	if err != nil {
		return err
	}
	p.original = codec.GridFromImage(img)
	return nil
}

// processRate encodes, decodes, saves and scores the image at one rate.
func (p *Pipeline) processRate(rate int) (models.RateResult, error) {
	res := models.RateResult{Rate: rate}

	enc, encodeTime, err := timing.Run(p.logger, "encode", func() (*codec.Compressed, error) {
		return p.codec.Encode(p.original, rate)
	}, "rate", rate)
	if err != nil {
		return res, fmt.Errorf("failed to encode: %w", err)
	}
	res.EncodeTime = encodeTime
	res.Kept = enc.NonZero()
	res.Total = codec.NumChannels * enc.FFTHeight * enc.FFTWidth

	dec, decodeTime, err := timing.Run(p.logger, "decode", func() (codec.Grid, error) {
		return p.codec.Decode(enc)
	}, "rate", rate)
	if err != nil {
		return res, fmt.Errorf("failed to decode: %w", err)
	}
	res.DecodeTime = decodeTime

	// Step 3: Save the decoded image and optional artefacts
	res.OutputPath = p.outputPath(rate, "", string(p.params.Format))
	if err := imageio.SaveImage(dec.Image(), res.OutputPath, p.params.Format, p.params.JPEGQuality); err != nil {
		return res, fmt.Errorf("failed to save image: %w", err)
	}

	if p.params.SaveSpectrum {
		for _, ch := range models.Channels {
			path := p.outputPath(rate, "_"+ch.String()+"_spectrum", "png")
			if err := imageio.SaveSpectrum(enc.Channels[ch], path); err != nil {
				return res, fmt.Errorf("failed to save %s spectrum: %w", ch, err)
			}
			res.SpectrumPaths = append(res.SpectrumPaths, path)
		}
	}

	if p.params.SaveContainer {
		res.ContainerPath = p.outputPath(rate, "", "fftc")
		n, err := writeContainer(enc, res.ContainerPath)
		if err != nil {
			return res, fmt.Errorf("failed to save container: %w", err)
		}
		res.ContainerBytes = n
	}

	// Step 4: Score against the original
	q, err := codec.Compare(p.original, dec)
	if err != nil {
		return res, fmt.Errorf("failed to score: %w", err)
	}
	res.RMSE = q.RMSE
	res.PSNR = q.PSNR
	res.SSIM = q.SSIM
	res.MaxAbsDiff = q.MaxAbsDiff

	p.logger.Info("Compressed", "rate", rate, "kept", res.Kept, "total", res.Total,
		"psnr", q.PSNR, "output", res.OutputPath)
	return res, nil
}

// outputPath builds "<dir>/<input base>_q<rate><suffix>.<ext>".
func (p *Pipeline) outputPath(rate int, suffix, ext string) string {
	base := filepath.Base(p.params.InputFile)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(p.params.OutputDir, fmt.Sprintf("%s_q%d%s.%s", base, rate, suffix, ext))
}

// writeContainer serializes c to path.
func writeContainer(c *codec.Compressed, path string) (int64, error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := c.WriteTo(file)
	if err != nil {
		file.Close()
		return n, err
	}
	return n, file.Close()
}

// GetResults returns one result per distinct rate, sorted by rate.
func (p *Pipeline) GetResults() []models.RateResult {
	return p.results
}

// GetOriginal returns the loaded input image.
func (p *Pipeline) GetOriginal() codec.Grid {
	return p.original
}
