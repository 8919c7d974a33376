package server

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ironsheep/sticker-slicer-mcp/internal/imaging"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvLogLevel     = "STICKER_MCP_LOG_LEVEL"
	EnvOutputDir    = "STICKER_MCP_OUTPUT_DIR"
	EnvPreviewLimit = "STICKER_MCP_PREVIEW_LIMIT"
)

// Config holds server settings.
type Config struct {
	// Debug enables per-request logging on stderr.
	Debug bool

	// OutputDir is where sticker_slice writes archives when the caller does
	// not give an output_path.
	OutputDir string

	// PreviewLimit is the default number of tiles rendered by sticker_preview.
	PreviewLimit int
}

// DefaultConfig returns the settings used when no environment overrides are set.
func DefaultConfig() Config {
	return Config{
		OutputDir:    os.TempDir(),
		PreviewLimit: imaging.DefaultPreviewLimit,
	}
}

// ConfigFromEnv builds a Config from DefaultConfig and the STICKER_MCP_*
// environment variables.
func ConfigFromEnv() (Config, error) {
	return configFrom(os.Getenv)
}

func configFrom(getenv func(string) string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Debug = getenv(EnvLogLevel) == "debug"

	if dir := getenv(EnvOutputDir); dir != "" {
		cfg.OutputDir = dir
	}
	if v := getenv(EnvPreviewLimit); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return Config{}, fmt.Errorf("%s must be a positive integer, got %q", EnvPreviewLimit, v)
		}
		cfg.PreviewLimit = n
	}
	return cfg, nil
}
