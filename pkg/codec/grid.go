package codec

import (
	"fmt"
	"image"
	"image/color"
)

// NumChannels is the number of color channels (R, G, B) in a Grid.
const NumChannels = 3

// Grid is an RGB image stored as 8-bit samples indexed by (row, column,
// channel). Pix holds Height*Width*NumChannels samples in that order.
type Grid struct {
	Height int
	Width  int
	Pix    []uint8
}

// NewGrid allocates a zeroed grid of the given size.
func NewGrid(height, width int) Grid {
	return Grid{
		Height: height,
		Width:  width,
		Pix:    make([]uint8, height*width*NumChannels),
	}
}

// At returns the sample at (row, col) in channel ch.
func (g Grid) At(row, col, ch int) uint8 {
	return g.Pix[g.offset(row, col, ch)]
}

// Set stores the sample at (row, col) in channel ch.
func (g Grid) Set(row, col, ch int, v uint8) {
	g.Pix[g.offset(row, col, ch)] = v
}

func (g Grid) offset(row, col, ch int) int {
	return (row*g.Width+col)*NumChannels + ch
}

// validate checks that the grid is non-empty and Pix matches its dimensions.
func (g Grid) validate() error {
	if g.Height <= 0 || g.Width <= 0 {
		return fmt.Errorf("%w: image is %dx%d", ErrInvalidInput, g.Width, g.Height)
	}
	if len(g.Pix) != g.Height*g.Width*NumChannels {
		return fmt.Errorf("%w: %d samples for a %dx%d image", ErrInvalidInput, len(g.Pix), g.Width, g.Height)
	}
	return nil
}

// GridFromImage converts any image to an RGB grid, dropping alpha.
func GridFromImage(img image.Image) Grid {
	bounds := img.Bounds()
	g := NewGrid(bounds.Dy(), bounds.Dx())

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := color.NRGBAModel.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			g.Set(y, x, 0, c.R)
			g.Set(y, x, 1, c.G)
			g.Set(y, x, 2, c.B)
		}
	}
	return g
}

// Image returns the grid as an opaque RGBA image.
func (g Grid) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: g.At(y, x, 0),
				G: g.At(y, x, 1),
				B: g.At(y, x, 2),
				A: 255,
			})
		}
	}
	return img
}

// channel returns one channel of the grid as float64 samples in row-major order.
func (g Grid) channel(ch int) []float64 {
	out := make([]float64, g.Height*g.Width)
	for i := range out {
		out[i] = float64(g.Pix[i*NumChannels+ch])
	}
	return out
}
