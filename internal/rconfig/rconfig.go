// Package rconfig loads TOML-configured defaults for the assembler and
// emulator CLIs, following the teacher's config-file layout and fallback
// behavior reduced to the settings this system actually has (SPEC_FULL.md §3).
package rconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable the CLIs read at startup.
type Config struct {
	Execution struct {
		MaxCycles     uint64 `toml:"max_cycles"`
		CompliantMode bool   `toml:"compliant_mode"`
		EntryAddress  uint32 `toml:"entry_address"`
	} `toml:"execution"`

	Display struct {
		NumberFormat string `toml:"number_format"` // hex, dec, both
		BytesPerLine int    `toml:"bytes_per_line"`
	} `toml:"display"`

	Assembler struct {
		LiteralPoolLabel string `toml:"literal_pool_label"`
		MaxLiteralPool   int    `toml:"max_literal_pool"`
	} `toml:"assembler"`
}

// Default returns the built-in configuration used when no config file
// is present.
func Default() *Config {
	cfg := &Config{}
	cfg.Execution.MaxCycles = 1000000
	cfg.Execution.CompliantMode = true
	cfg.Execution.EntryAddress = 0

	cfg.Display.NumberFormat = "hex"
	cfg.Display.BytesPerLine = 16

	cfg.Assembler.LiteralPoolLabel = "__pool"
	cfg.Assembler.MaxLiteralPool = 256

	return cfg
}

// Path returns the platform-specific config file location, matching the
// teacher's per-OS convention.
func Path() string {
	var dir string
	switch runtime.GOOS {
	case "windows":
		dir = os.Getenv("APPDATA")
		if dir == "" {
			dir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		dir = filepath.Join(dir, "r2asm")
	case "darwin", "linux":
		home, err := os.UserHomeDir()
		if err != nil {
			return "r2asm.toml"
		}
		dir = filepath.Join(home, ".config", "r2asm")
	default:
		return "r2asm.toml"
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "r2asm.toml"
	}
	return filepath.Join(dir, "r2asm.toml")
}

// Load reads the default config path, falling back to Default() when no
// file exists there.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads path, falling back to Default() if it doesn't exist.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("rconfig: failed to parse %s: %w", path, err)
	}
	return cfg, nil
}
