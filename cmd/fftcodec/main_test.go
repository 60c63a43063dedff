package main

import (
	"errors"
	"flag"
	"io"
	"testing"

	"fftcodec/pkg/codec"
	"fftcodec/pkg/config"
)

func newEncodeFlags(t *testing.T, args ...string) (*flag.FlagSet, *int) {
	t.Helper()
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rate := fs.Int("rate", 0, "")
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Failed to parse %v: %v", args, err)
	}
	return fs, rate
}

// TestEncodeRateFallsBackToConfig checks that the configured rate is used
// only when -rate is absent.
func TestEncodeRateFallsBackToConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Codec.CompressionRate = 65

	fs, rate := newEncodeFlags(t)
	if got := encodeRate(fs, *rate, cfg); got != 65 {
		t.Errorf("Expected config rate 65, got %d", got)
	}

	fs, rate = newEncodeFlags(t, "-rate", "0")
	if got := encodeRate(fs, *rate, cfg); got != 0 {
		t.Errorf("Expected explicit rate 0, got %d", got)
	}
}

// TestEncodeRateKeepsInvalidValues checks that an out-of-range -rate reaches
// the codec and is rejected there instead of being replaced.
func TestEncodeRateKeepsInvalidValues(t *testing.T) {
	cfg := config.DefaultConfig()

	for _, arg := range []string{"-5", "101"} {
		fs, rate := newEncodeFlags(t, "-rate", arg)
		got := encodeRate(fs, *rate, cfg)
		if got == cfg.Codec.CompressionRate {
			t.Errorf("Expected -rate %s to be kept, got config rate %d", arg, got)
		}

		_, err := codec.Encode(codec.NewGrid(2, 2), got)
		if !errors.Is(err, codec.ErrInvalidRate) {
			t.Errorf("Expected ErrInvalidRate for -rate %s, got %v", arg, err)
		}
	}
}

func TestParseInts(t *testing.T) {
	got, err := parseInts("10, 20,,30")
	if err != nil {
		t.Fatalf("parseInts failed: %v", err)
	}
	if len(got) != 3 || got[0] != 10 || got[1] != 20 || got[2] != 30 {
		t.Errorf("Expected [10 20 30], got %v", got)
	}

	if _, err := parseInts("10,x"); err == nil {
		t.Errorf("Expected error for non-numeric rate")
	}
}
