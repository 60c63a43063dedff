package codec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Quality holds reconstruction metrics comparing a decoded image to its original.
type Quality struct {
	// RMSE is the root mean square error in 8-bit sample units.
	RMSE float64

	// PSNR is the peak signal-to-noise ratio in dB. It is +Inf for identical images.
	PSNR float64

	// SSIM is the global structural similarity index over all samples,
	// computed on samples scaled to [0, 1]. 1 means identical structure.
	SSIM float64

	// MaxAbsDiff is the largest per-sample difference.
	MaxAbsDiff int
}

// Compare computes quality metrics between two grids of the same shape.
func Compare(original, decoded Grid) (Quality, error) {
	if err := original.validate(); err != nil {
		return Quality{}, err
	}
	if err := decoded.validate(); err != nil {
		return Quality{}, err
	}
	if original.Height != decoded.Height || original.Width != decoded.Width {
		return Quality{}, fmt.Errorf("%w: comparing %dx%d with %dx%d", ErrInvalidInput,
			original.Width, original.Height, decoded.Width, decoded.Height)
	}

	x := normalize(original.Pix)
	y := normalize(decoded.Pix)

	var q Quality
	q.RMSE = calculateRMSE(original.Pix, decoded.Pix)
	if q.RMSE == 0 {
		q.PSNR = math.Inf(1)
	} else {
		q.PSNR = 20 * math.Log10(255/q.RMSE)
	}
	q.SSIM = calculateSSIM(x, y)

	q.MaxAbsDiff = int(math.Round(floats.Distance(x, y, math.Inf(1)) * 255))

	return q, nil
}

func normalize(pix []uint8) []float64 {
	out := make([]float64, len(pix))
	for i, v := range pix {
		out[i] = float64(v) / 255
	}
	return out
}

// calculateRMSE computes the root mean square error
func calculateRMSE(original, reconstructed []uint8) float64 {
	mse := 0.0
	for i := range original {
		diff := float64(original[i]) - float64(reconstructed[i])
		mse += diff * diff
	}
	mse /= float64(len(original))
	return math.Sqrt(mse)
}

// calculateSSIM computes the Structural Similarity Index
func calculateSSIM(original, reconstructed []float64) float64 {
	const L = 1.0 // Dynamic range
	const k1 = 0.01
	const k2 = 0.03

	c1 := (k1 * L) * (k1 * L)
	c2 := (k2 * L) * (k2 * L)

	muX := stat.Mean(original, nil)
	muY := stat.Mean(reconstructed, nil)

	sigmaX := stat.Variance(original, nil)
	sigmaY := stat.Variance(reconstructed, nil)
	sigmaXY := stat.Covariance(original, reconstructed, nil)

	num := (2*muX*muY + c1) * (2*sigmaXY + c2)
	den := (muX*muX + muY*muY + c1) * (sigmaX + sigmaY + c2)

	if den > 0 {
		return num / den
	}
	return 0
}
