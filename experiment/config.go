// Package experiment wires the full model-selection pipeline: load a
// dataset, hold out a test split, sample hyperparameter candidates, run a
// cross-validated grid search, and score the winner on the held-out data.
package experiment

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// Config controls one experiment run.
type Config struct {
	// LogLevel controls verbosity: DEBUG, INFO, WARN, ERROR.
	LogLevel string `koanf:"log_level"`

	// DataPath is the CSV file holding the labeled dataset.
	DataPath string `koanf:"data_path"`

	// TargetColumn names the column to predict.
	TargetColumn string `koanf:"target_column"`

	// SplitFraction is the share of records kept for training, in (0, 1).
	SplitFraction float64 `koanf:"split_fraction"`

	// RandomSeed drives the split, the sampler, and fold shuffling.
	RandomSeed int64 `koanf:"random_seed"`

	// Folds is the cross-validation fold count.
	Folds int `koanf:"folds"`

	// SampleCount is the number of values drawn per hyperparameter; the
	// grid is their Cartesian product.
	SampleCount int `koanf:"sample_count"`

	// TreesLo and TreesHi bound the log-uniform range for the forest size.
	TreesLo int `koanf:"trees_lo"`
	TreesHi int `koanf:"trees_hi"`

	// DepthLo and DepthHi bound the log-uniform range for the tree depth.
	DepthLo int `koanf:"depth_lo"`
	DepthHi int `koanf:"depth_hi"`

	// Workers caps the goroutines used to fit ensemble members.
	Workers int `koanf:"workers"`
}

// Defaults returns a Config with the stock experiment settings.
func Defaults() *Config {
	return &Config{
		LogLevel:      "INFO",
		SplitFraction: 0.75,
		RandomSeed:    123,
		Folds:         5,
		SampleCount:   3,
		TreesLo:       10,
		TreesHi:       200,
		DepthLo:       2,
		DepthHi:       20,
		Workers:       0,
	}
}

// Load builds a Config by layering defaults, an optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (Defaults())
//  2. file (YAML) if FORETUNE_CONFIG is set
//  3. env (prefix FORETUNE_)
func Load() (*Config, error) {
	base := Defaults()

	k := koanf.New(".")

	if path := os.Getenv("FORETUNE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrap(err, "loading config file")
		}
	}

	// Environment variables: FORETUNE_DATA_PATH, FORETUNE_FOLDS, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("FORETUNE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "foretune_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "loading environment")
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "unmarshaling config")
	}

	// Validation happens at Run time, after callers have had a chance to
	// fill in remaining fields (e.g. from CLI flags).
	return &cfg, nil
}

// Validate checks the run parameters.
func (c *Config) Validate() error {
	if c.DataPath == "" {
		return errors.NewValidationError("data_path", "must not be empty", c.DataPath)
	}
	if c.TargetColumn == "" {
		return errors.NewValidationError("target_column", "must not be empty", c.TargetColumn)
	}
	if c.SplitFraction <= 0 || c.SplitFraction >= 1 {
		return errors.NewValidationError("split_fraction", "must be in (0, 1)", c.SplitFraction)
	}
	if c.Folds < 2 {
		return errors.NewValidationError("folds", "must be at least 2", c.Folds)
	}
	if c.SampleCount < 1 {
		return errors.NewValidationError("sample_count", "must be at least 1", c.SampleCount)
	}
	if c.TreesLo < 1 || c.TreesHi < c.TreesLo {
		return errors.NewValidationError("trees_lo/trees_hi", "must satisfy 1 <= lo <= hi", c.TreesLo)
	}
	if c.DepthLo < 1 || c.DepthHi < c.DepthLo {
		return errors.NewValidationError("depth_lo/depth_hi", "must satisfy 1 <= lo <= hi", c.DepthLo)
	}
	return nil
}
