package models

import (
	"time"
)

// Channel identifies one color channel of an image
type Channel int

const (
	Red Channel = iota
	Green
	Blue
)

// Channels lists the channels in storage order
var Channels = []Channel{Red, Green, Blue}

func (c Channel) String() string {
	switch c {
	case Red:
		return "red"
	case Green:
		return "green"
	case Blue:
		return "blue"
	default:
		return "unknown"
	}
}

// RateResult records the outcome of compressing one image at one rate
type RateResult struct {
	// Rate is the compression rate (percentile of discarded magnitudes)
	Rate int

	// OutputPath is where the decoded image was written
	OutputPath string

	// SpectrumPaths holds the per-channel spectrum pictures, if saved
	SpectrumPaths []string

	// ContainerPath and ContainerBytes describe the serialized representation, if saved
	ContainerPath  string
	ContainerBytes int64

	// Kept is the number of spectral coefficients retained out of Total
	Kept  int
	Total int

	// Quality of the decoded image against the original
	RMSE       float64
	PSNR       float64
	SSIM       float64
	MaxAbsDiff int

	// EncodeTime and DecodeTime are the wall-clock durations of each step
	EncodeTime time.Duration
	DecodeTime time.Duration
}

// Density returns the fraction of spectral coefficients retained
func (r RateResult) Density() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Kept) / float64(r.Total)
}
