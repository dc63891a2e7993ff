// Package config loads decy.toml, the analysis settings shared by the CLI and
// the driver.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the manifest looked up from the working directory upwards.
const FileName = "decy.toml"

// Config is the decoded decy.toml.
type Config struct {
	Analysis Analysis `toml:"analysis"`
	Trace    Trace    `toml:"trace"`
	Cache    Cache    `toml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Analysis holds [analysis].
type Analysis struct {
	Threshold  float64 `toml:"threshold"`
	Classifier string  `toml:"classifier"`
	Jobs       int     `toml:"jobs"`
}

// Trace holds [trace].
type Trace struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
}

// Cache holds [cache].
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

var (
	// ErrThresholdRange indicates [analysis].threshold outside (0, 1].
	ErrThresholdRange = errors.New("threshold must be in (0, 1]")
	// ErrUnknownClassifier indicates an unsupported [analysis].classifier.
	ErrUnknownClassifier = errors.New("unknown classifier")
)

// Default returns the settings used when no decy.toml exists.
func Default() Config {
	return Config{
		Analysis: Analysis{Threshold: 0.65, Classifier: "rules"},
		Trace:    Trace{Level: "off", Output: "-"},
	}
}

// Load decodes path over the defaults. Keys absent from the file keep their
// default values.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("analysis", "classifier") {
		cfg.Analysis.Classifier = strings.TrimSpace(cfg.Analysis.Classifier)
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Analysis.Threshold <= 0 || c.Analysis.Threshold > 1 {
		return fmt.Errorf("[analysis].threshold %v: %w", c.Analysis.Threshold, ErrThresholdRange)
	}
	switch c.Analysis.Classifier {
	case "rules", "ensemble":
	default:
		return fmt.Errorf("[analysis].classifier %q: %w", c.Analysis.Classifier, ErrUnknownClassifier)
	}
	if c.Analysis.Jobs < 0 {
		return fmt.Errorf("[analysis].jobs %d: must not be negative", c.Analysis.Jobs)
	}
	return nil
}

// Find walks up from startDir looking for decy.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Resolve loads the explicit path when given, otherwise the nearest decy.toml
// above startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (Config, error) {
	if explicit != "" {
		return Load(explicit)
	}
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}
