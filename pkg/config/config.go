// Package config provides configuration loading and management for fftcodec.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fftcodec/pkg/imageio"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Codec parameters
	Codec struct {
		// CompressionRate is the percentile of spectral magnitudes discarded by encode
		CompressionRate int `yaml:"compressionRate"`

		// Rates lists the compression rates tried by a compression sweep
		Rates []int `yaml:"rates"`

		// Workers is the number of goroutines per transform pass (0 = all CPUs)
		Workers int `yaml:"workers"`

		// Concurrency is the number of rates a sweep processes at the same time
		Concurrency int `yaml:"concurrency"`
	} `yaml:"codec"`

	// Output parameters
	Output struct {
		// Dir is the directory decoded images are written to
		Dir string `yaml:"dir"`

		// Format is the image format of decoded images (jpg or png)
		Format string `yaml:"format"`

		// JPEGQuality is the quality used when Format is jpg
		JPEGQuality int `yaml:"jpegQuality"`

		// SaveSpectrum writes a log-magnitude picture of each thresholded spectrum
		SaveSpectrum bool `yaml:"saveSpectrum"`

		// SaveContainer writes the serialized compressed representation
		SaveContainer bool `yaml:"saveContainer"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`

	// Bench parameters
	Bench struct {
		// Count is the number of coefficients of each random polynomial
		Count int `yaml:"count"`

		// FFTSize is the length of the sequence timed by the transform benchmark
		FFTSize int `yaml:"fftSize"`

		// BruteForce also times the O(n²) multiplication
		BruteForce bool `yaml:"bruteForce"`

		// Seed seeds the random input
		Seed int64 `yaml:"seed"`
	} `yaml:"bench"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default codec parameters
	cfg.Codec.CompressionRate = 80
	cfg.Codec.Rates = []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	cfg.Codec.Workers = 0
	cfg.Codec.Concurrency = 1

	// Set default output parameters
	cfg.Output.Dir = "compressed"
	cfg.Output.Format = string(imageio.JPEG)
	cfg.Output.JPEGQuality = 90
	cfg.Output.SaveSpectrum = false
	cfg.Output.SaveContainer = false
	cfg.Output.Verbose = true

	// Set default bench parameters
	cfg.Bench.Count = 10000
	cfg.Bench.FFTSize = 1 << 20
	cfg.Bench.BruteForce = true
	cfg.Bench.Seed = 42

	return cfg
}

// Validate checks the configuration for values the codec cannot use
func (c *Config) Validate() error {
	if err := validateRate(c.Codec.CompressionRate); err != nil {
		return err
	}
	if len(c.Codec.Rates) == 0 {
		return fmt.Errorf("codec.rates must not be empty")
	}
	for _, r := range c.Codec.Rates {
		if err := validateRate(r); err != nil {
			return err
		}
	}
	if c.Codec.Workers < 0 {
		return fmt.Errorf("codec.workers must be non-negative, got %d", c.Codec.Workers)
	}
	if c.Codec.Concurrency < 1 {
		return fmt.Errorf("codec.concurrency must be positive, got %d", c.Codec.Concurrency)
	}

	format, err := imageio.ParseFormat(c.Output.Format)
	if err != nil {
		return fmt.Errorf("output.format: %w", err)
	}
	if format == imageio.JPEG && (c.Output.JPEGQuality < 1 || c.Output.JPEGQuality > 100) {
		return fmt.Errorf("output.jpegQuality must be within [1, 100], got %d", c.Output.JPEGQuality)
	}

	if c.Bench.Count < 1 {
		return fmt.Errorf("bench.count must be positive, got %d", c.Bench.Count)
	}
	if c.Bench.FFTSize < 1 {
		return fmt.Errorf("bench.fftSize must be positive, got %d", c.Bench.FFTSize)
	}
	return nil
}

func validateRate(rate int) error {
	if rate < 0 || rate > 100 {
		return fmt.Errorf("compression rate %d outside [0, 100]", rate)
	}
	return nil
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
