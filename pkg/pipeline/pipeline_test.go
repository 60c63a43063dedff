package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fftcodec/pkg/codec"
	"fftcodec/pkg/imageio"
)

// writeTestImage saves a small gradient PNG and returns its path
func writeTestImage(t *testing.T, dir string, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x * 255 / (width - 1)),
				G: uint8(y * 255 / (height - 1)),
				B: uint8((x + y) % 64 * 4),
				A: 255,
			})
		}
	}

	path := filepath.Join(dir, "cat.png")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(file, img))
	require.NoError(t, file.Close())
	return path
}

func TestProcessWritesOneImagePerRate(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 20, 12)
	outDir := filepath.Join(dir, "out")

	p := NewPipeline(&Params{
		InputFile:     input,
		OutputDir:     outDir,
		Rates:         []int{90, 0, 50},
		Format:        imageio.PNG,
		Workers:       2,
		Concurrency:   2,
		SaveSpectrum:  true,
		SaveContainer: true,
	})
	require.NoError(t, p.Process(context.Background()))

	results := p.GetResults()
	require.Len(t, results, 3)
	assert.Equal(t, 0, results[0].Rate)
	assert.Equal(t, 50, results[1].Rate)
	assert.Equal(t, 90, results[2].Rate)

	for _, res := range results {
		assert.Equal(t, filepath.Join(outDir, "cat_q"+strconv.Itoa(res.Rate)+".png"), res.OutputPath)
		assert.FileExists(t, res.OutputPath)
		assert.Len(t, res.SpectrumPaths, codec.NumChannels)
		for _, path := range res.SpectrumPaths {
			assert.FileExists(t, path)
		}
		assert.FileExists(t, res.ContainerPath)
		assert.Positive(t, res.ContainerBytes)

		// 32x16 padded spectrum per channel
		assert.Equal(t, 3*32*16, res.Total)
		assert.LessOrEqual(t, res.Kept, res.Total)

		decoded, err := imageio.LoadImage(res.OutputPath)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 20, 12), decoded.Bounds())
	}

	// Fewer coefficients survive as the rate rises
	assert.GreaterOrEqual(t, results[0].Kept, results[1].Kept)
	assert.GreaterOrEqual(t, results[1].Kept, results[2].Kept)

	// Rate 0 is lossless up to rounding
	assert.LessOrEqual(t, results[0].MaxAbsDiff, 2)
	assert.False(t, math.IsNaN(results[2].SSIM))
}

func TestProcessContainerDecodesToSameImage(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 16, 16)

	p := NewPipeline(&Params{
		InputFile:     input,
		OutputDir:     dir,
		Rates:         []int{70},
		Format:        imageio.PNG,
		SaveContainer: true,
	})
	require.NoError(t, p.Process(context.Background()))
	res := p.GetResults()[0]

	file, err := os.Open(res.ContainerPath)
	require.NoError(t, err)
	defer file.Close()

	enc, err := codec.ReadCompressed(file)
	require.NoError(t, err)
	fromContainer, err := codec.Decode(enc)
	require.NoError(t, err)

	saved, err := imageio.LoadImage(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, codec.GridFromImage(saved), fromContainer)
}

func TestProcessRejectsBadParams(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 8, 8)

	tests := map[string]*Params{
		"no rates":     {InputFile: input, OutputDir: dir, Format: imageio.PNG},
		"rate too big": {InputFile: input, OutputDir: dir, Format: imageio.PNG, Rates: []int{101}},
		"missing file": {InputFile: filepath.Join(dir, "nope.png"), OutputDir: dir, Format: imageio.PNG, Rates: []int{10}},
	}
	for name, params := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, NewPipeline(params).Process(context.Background()))
		})
	}
}

func TestProcessHonoursCancelledContext(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 8, 8)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewPipeline(&Params{
		InputFile: input,
		OutputDir: dir,
		Format:    imageio.PNG,
		Rates:     []int{10, 20},
	}).Process(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProcessRunsRepeatedRatesOnce(t *testing.T) {
	dir := t.TempDir()
	input := writeTestImage(t, dir, 8, 8)

	p := NewPipeline(&Params{
		InputFile:     input,
		OutputDir:     dir,
		Format:        imageio.PNG,
		Rates:         []int{50, 10, 50, 50},
		Concurrency:   4,
		SaveContainer: true,
	})
	require.NoError(t, p.Process(context.Background()))

	results := p.GetResults()
	require.Len(t, results, 2)
	assert.Equal(t, 10, results[0].Rate)
	assert.Equal(t, 50, results[1].Rate)
	assert.FileExists(t, results[1].ContainerPath)
}

func TestUniqueRates(t *testing.T) {
	assert.Equal(t, []int{30, 10, 20}, uniqueRates([]int{30, 10, 30, 20, 10}))
	assert.Empty(t, uniqueRates(nil))
}
