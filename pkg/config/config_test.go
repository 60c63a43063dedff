package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 80, cfg.Codec.CompressionRate)
	assert.Equal(t, []int{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}, cfg.Codec.Rates)
	assert.Equal(t, "jpg", cfg.Output.Format)
	assert.Equal(t, int64(42), cfg.Bench.Seed)
	assert.Equal(t, 1, cfg.Codec.Concurrency)
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
codec:
  compressionRate: 95
  rates: [0, 50]
  concurrency: 4
output:
  format: png
  saveSpectrum: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 95, cfg.Codec.CompressionRate)
	assert.Equal(t, []int{0, 50}, cfg.Codec.Rates)
	assert.Equal(t, 4, cfg.Codec.Concurrency)
	assert.Equal(t, "png", cfg.Output.Format)
	assert.True(t, cfg.Output.SaveSpectrum)

	// Untouched keys keep their defaults
	assert.Equal(t, 90, cfg.Output.JPEGQuality)
	assert.Equal(t, 10000, cfg.Bench.Count)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"rate too high":  "codec:\n  compressionRate: 101\n",
		"negative rate":  "codec:\n  rates: [10, -1]\n",
		"empty rates":    "codec:\n  rates: []\n",
		"no concurrency": "codec:\n  concurrency: 0\n",
		"bad format":     "output:\n  format: gif\n",
		"bad quality":    "output:\n  jpegQuality: 0\n",
		"no bench count": "bench:\n  count: 0\n",
		"broken yaml":    "codec: [\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(content), 0644))

			_, err := LoadConfig(path)
			assert.Error(t, err)
		})
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Codec.Workers = 3
	cfg.Output.Dir = "out"
	require.NoError(t, SaveConfig(cfg, path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestCreateDefaultConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, CreateDefaultConfigFile(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), loaded)
}
