// Package codec implements lossy image compression in the 2D frequency domain.
//
// Each RGB channel is zero-padded to power-of-two dimensions and transformed
// row by row and then column by column. Spectral coefficients whose magnitude
// falls below the chosen percentile are discarded. Decoding inverts the
// transform and crops back to the original size.
package codec

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"fftcodec/pkg/fft"
)

var (
	// ErrInvalidRate is returned when the compression rate is outside [0, 100].
	ErrInvalidRate = errors.New("codec: compression rate must be within [0, 100]")

	// ErrInvalidInput is returned for empty or malformed images and representations.
	ErrInvalidInput = errors.New("codec: invalid input")

	// ErrCorrupt is returned when a serialized representation cannot be parsed.
	ErrCorrupt = errors.New("codec: corrupt container")

	// ErrTooLarge is returned when a spectrum exceeds what a container can hold.
	ErrTooLarge = errors.New("codec: spectrum too large for container")
)

// Compressed is the frequency-domain representation of an image produced by
// Encode. It must be treated as read-only once returned.
type Compressed struct {
	// Height and Width are the dimensions of the original image.
	Height int
	Width  int

	// FFTHeight and FFTWidth are the padded power-of-two dimensions of the spectra.
	FFTHeight int
	FFTWidth  int

	// Rate is the compression rate the spectra were thresholded with.
	Rate int

	// Channels holds the thresholded spectra for R, G and B, each FFTHeight×FFTWidth.
	Channels [NumChannels]*mat.CDense
}

// NonZero returns the number of spectral coefficients kept across all channels.
func (c *Compressed) NonZero() int {
	count := 0
	for _, ch := range c.Channels {
		forEach(ch, func(_, _ int, v complex128) {
			if v != 0 {
				count++
			}
		})
	}
	return count
}

// Density returns the fraction of spectral coefficients kept, in [0, 1].
func (c *Compressed) Density() float64 {
	total := NumChannels * c.FFTHeight * c.FFTWidth
	if total == 0 {
		return 0
	}
	return float64(c.NonZero()) / float64(total)
}

func (c *Compressed) validate() error {
	if c == nil {
		return fmt.Errorf("%w: nil representation", ErrInvalidInput)
	}
	if c.Height <= 0 || c.Width <= 0 {
		return fmt.Errorf("%w: image is %dx%d", ErrInvalidInput, c.Width, c.Height)
	}
	if !fft.IsPowerOfTwo(c.FFTHeight) || !fft.IsPowerOfTwo(c.FFTWidth) ||
		c.FFTHeight < c.Height || c.FFTWidth < c.Width {
		return fmt.Errorf("%w: spectrum %dx%d cannot hold a %dx%d image",
			ErrInvalidInput, c.FFTWidth, c.FFTHeight, c.Width, c.Height)
	}
	for i, ch := range c.Channels {
		if ch == nil {
			return fmt.Errorf("%w: channel %d is missing", ErrInvalidInput, i)
		}
		if r, cols := ch.Dims(); r != c.FFTHeight || cols != c.FFTWidth {
			return fmt.Errorf("%w: channel %d is %dx%d, want %dx%d",
				ErrInvalidInput, i, cols, r, c.FFTWidth, c.FFTHeight)
		}
	}
	return nil
}

// Codec encodes and decodes images. Workers bounds the number of goroutines
// used per row or column pass of each channel.
type Codec struct {
	Workers int
}

// New returns a codec using the given number of workers per pass.
// A non-positive value selects runtime.NumCPU().
func New(workers int) *Codec {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Codec{Workers: workers}
}

var defaultCodec = New(0)

// Encode compresses img with the default codec. See (*Codec).Encode.
func Encode(img Grid, rate int) (*Compressed, error) {
	return defaultCodec.Encode(img, rate)
}

// Decode reconstructs an image with the default codec. See (*Codec).Decode.
func Decode(c *Compressed) (Grid, error) {
	return defaultCodec.Decode(c)
}

// Encode transforms each channel of img into a 2D spectrum and zeroes the
// coefficients whose magnitude lies below the rate-th percentile.
// Rate 0 keeps every coefficient; rate 100 keeps only the largest.
func (cd *Codec) Encode(img Grid, rate int) (*Compressed, error) {
	if rate < 0 || rate > 100 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidRate, rate)
	}
	if err := img.validate(); err != nil {
		return nil, err
	}

	out := &Compressed{
		Height:    img.Height,
		Width:     img.Width,
		FFTHeight: fft.CeilPow2(img.Height),
		FFTWidth:  fft.CeilPow2(img.Width),
		Rate:      rate,
	}

	var g errgroup.Group
	for ch := 0; ch < NumChannels; ch++ {
		ch := ch
		g.Go(func() error {
			spectrum, err := cd.encodeChannel(img.channel(ch), out)
			if err != nil {
				return fmt.Errorf("encode channel %d: %w", ch, err)
			}
			out.Channels[ch] = spectrum
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (cd *Codec) encodeChannel(samples []float64, c *Compressed) (*mat.CDense, error) {
	fh, fw := c.FFTHeight, c.FFTWidth

	// Pad the channel to power-of-two dimensions
	data := make([]complex128, fh*fw)
	for i := 0; i < c.Height; i++ {
		for j := 0; j < c.Width; j++ {
			data[i*fw+j] = complex(samples[i*c.Width+j], 0)
		}
	}

	if err := fft.Rows(data, fh, fw, false, cd.Workers); err != nil {
		return nil, err
	}
	if err := fft.Columns(data, fh, fw, false, cd.Workers); err != nil {
		return nil, err
	}

	Threshold(data, c.Rate)
	return mat.NewCDense(fh, fw, data), nil
}

// Decode inverts Encode: columns are inverse-transformed and cropped to the
// original height, then rows are inverse-transformed and cropped to the
// original width. Samples are rounded and clamped to [0, 255].
func (cd *Codec) Decode(c *Compressed) (Grid, error) {
	if err := c.validate(); err != nil {
		return Grid{}, err
	}

	img := NewGrid(c.Height, c.Width)

	var g errgroup.Group
	for ch := 0; ch < NumChannels; ch++ {
		ch := ch
		g.Go(func() error {
			if err := cd.decodeChannel(c, ch, img); err != nil {
				return fmt.Errorf("decode channel %d: %w", ch, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Grid{}, err
	}
	return img, nil
}

func (cd *Codec) decodeChannel(c *Compressed, ch int, img Grid) error {
	fh, fw := c.FFTHeight, c.FFTWidth

	// Work on a copy; the representation stays untouched
	data := make([]complex128, fh*fw)
	forEach(c.Channels[ch], func(i, j int, v complex128) {
		data[i*fw+j] = v
	})

	if err := fft.Columns(data, fh, fw, true, cd.Workers); err != nil {
		return err
	}

	// Only the first Height rows carry image data
	data = data[:c.Height*fw]
	if err := fft.Rows(data, c.Height, fw, true, cd.Workers); err != nil {
		return err
	}

	for i := 0; i < c.Height; i++ {
		for j := 0; j < c.Width; j++ {
			img.Set(i, j, ch, toSample(real(data[i*fw+j])))
		}
	}
	return nil
}

// toSample rounds v to the nearest integer and clamps it to the 8-bit range.
func toSample(v float64) uint8 {
	v = math.Round(v)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}

// forEach calls fn for every element of m in row-major order.
func forEach(m *mat.CDense, fn func(i, j int, v complex128)) {
	if m == nil {
		return
	}
	raw := m.RawCMatrix()
	for i := 0; i < raw.Rows; i++ {
		row := raw.Data[i*raw.Stride : i*raw.Stride+raw.Cols]
		for j, v := range row {
			fn(i, j, v)
		}
	}
}
