// Package imageio loads and saves the images the codec works on, and renders
// spectra as viewable pictures.
package imageio

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"math/cmplx"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Format is an image file format supported for output.
type Format string

const (
	JPEG Format = "jpg"
	PNG  Format = "png"
)

// ParseFormat maps a format name or file extension to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "jpg", "jpeg":
		return JPEG, nil
	case "png":
		return PNG, nil
	default:
		return "", fmt.Errorf("unsupported image format: %q (must be jpg or png)", s)
	}
}

// FormatFromPath returns the format implied by the file extension of path.
func FormatFromPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// LoadImage decodes a JPEG or PNG image from a file
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img to path in the given format. quality is only used
// for JPEG output.
func SaveImage(img image.Image, path string, format Format, quality int) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}

	switch format {
	case JPEG:
		err = jpeg.Encode(file, img, &jpeg.Options{Quality: quality})
	case PNG:
		err = png.Encode(file, img)
	default:
		err = fmt.Errorf("unsupported image format: %q", format)
	}
	if err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// SpectrumImage renders the log-magnitude of a spectrum as a grayscale image,
// with the zero frequency shifted to the centre. Brightness is normalised to
// the largest magnitude; zeroed coefficients are black.
func SpectrumImage(spectrum *mat.CDense) *image.Gray {
	rows, cols := spectrum.Dims()
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	logMag := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			logMag[i*cols+j] = math.Log1p(cmplx.Abs(spectrum.At(i, j)))
		}
	}

	maxVal := floats.Max(logMag)
	if maxVal == 0 {
		return img
	}

	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			y := (i + rows/2) % rows
			x := (j + cols/2) % cols
			grayVal := uint8(math.Round(logMag[i*cols+j] / maxVal * 255))
			img.SetGray(x, y, color.Gray{Y: grayVal})
		}
	}
	return img
}

// SaveSpectrum writes SpectrumImage(spectrum) to path as a PNG.
func SaveSpectrum(spectrum *mat.CDense, path string) error {
	return SaveImage(SpectrumImage(spectrum), path, PNG, 0)
}
