// Package config holds the marketplace deployment configuration: the
// operator account, the initial listing fee, the royalty policy and
// where state and logs live. The configuration file is a plain
// key = value format with # comments; unknown keys are ignored so old
// binaries can read newer files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// DefaultListingFee is the fee charged per listing until the operator
// changes it.
const DefaultListingFee uint64 = 1000

// Config is the marketplace deployment configuration.
type Config struct {
	// DataDir is where the marketplace database lives.
	DataDir string

	// Operator is the hex address allowed to change the listing fee
	// and withdraw commission. Immutable after deployment.
	Operator string

	// ListingFee is the initial listing fee, applied on first open only.
	ListingFee uint64

	// RoyaltySplit pays creators their royalty share on resale.
	RoyaltySplit bool

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFile, when set, redirects log output from stderr to a file.
	LogFile string
}

// DefaultDataDir returns the default data directory under the user's
// home directory.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".market"
	}
	return filepath.Join(home, ".market")
}

// DefaultConfig returns a configuration with defaults for everything
// except the operator, which has no sensible default and must be set
// before the configuration validates.
func DefaultConfig() Config {
	return Config{
		DataDir:    DefaultDataDir(),
		ListingFee: DefaultListingFee,
		LogLevel:   "info",
	}
}

// ConfigPath returns the configuration file path within a data directory.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// LoadConfig reads a configuration file. Missing keys keep their
// defaults; unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, err := parseKeyValue(line)
		if err != nil {
			return cfg, fmt.Errorf("%w: line %d", ErrInvalidConfigLine, i+1)
		}

		switch key {
		case "datadir":
			cfg.DataDir = value
		case "operator":
			cfg.Operator = value
		case "listingfee":
			fee, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return cfg, fmt.Errorf("%w: line %d: %v", ErrInvalidConfigLine, i+1, err)
			}
			cfg.ListingFee = fee
		case "royaltysplit":
			split, err := strconv.ParseBool(value)
			if err != nil {
				return cfg, fmt.Errorf("%w: line %d: %v", ErrInvalidConfigLine, i+1, err)
			}
			cfg.RoyaltySplit = split
		case "loglevel":
			cfg.LogLevel = value
		case "logfile":
			cfg.LogFile = value
		}
	}

	return cfg, nil
}

// parseKeyValue splits a "key = value" line on the first '='.
func parseKeyValue(line string) (string, string, error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return "", "", fmt.Errorf("no '=' in line")
	}
	key := strings.ToLower(strings.TrimSpace(line[:idx]))
	value := strings.TrimSpace(line[idx+1:])
	if key == "" {
		return "", "", fmt.Errorf("empty key")
	}
	return key, value, nil
}

// SaveConfig writes a configuration file, creating parent directories
// as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Marketplace Configuration\n\n")
	fmt.Fprintf(&b, "datadir = %s\n", cfg.DataDir)
	fmt.Fprintf(&b, "operator = %s\n", cfg.Operator)
	fmt.Fprintf(&b, "listingfee = %d\n", cfg.ListingFee)
	fmt.Fprintf(&b, "royaltysplit = %t\n", cfg.RoyaltySplit)
	fmt.Fprintf(&b, "loglevel = %s\n", cfg.LogLevel)
	fmt.Fprintf(&b, "logfile = %s\n", cfg.LogFile)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
