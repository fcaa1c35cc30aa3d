// Command foretune runs a reproducible model-selection experiment: a seeded
// train/test split, log-uniform hyperparameter sampling, a cross-validated
// grid search over the sampled combinations, and held-out scoring of the
// winner. Configuration layers defaults, an optional YAML file named by
// FORETUNE_CONFIG, FORETUNE_-prefixed environment variables, and flags.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/YuminosukeSato/foretune/experiment"
	"github.com/YuminosukeSato/foretune/pkg/log"
)

var (
	dataPath = flag.String("data", "", "CSV file holding the labeled dataset")
	target   = flag.String("target", "", "Name of the column to predict")
	fraction = flag.Float64("fraction", 0, "Training share of the split, in (0, 1)")
	seed     = flag.Int64("seed", 0, "Random seed for the split, sampler, and folds")
	folds    = flag.Int("folds", 0, "Cross-validation fold count")
	samples  = flag.Int("samples", 0, "Values drawn per hyperparameter")
	logLevel = flag.String("log-level", "", "Log level: DEBUG, INFO, WARN, ERROR")
)

// applyFlags copies flag values into cfg. Flags win over file and
// environment values, but only flags the user actually passed count;
// zero is a legitimate seed, so defaults are not treated as sentinels.
func applyFlags(cfg *experiment.Config, passed map[string]bool) {
	if passed["data"] {
		cfg.DataPath = *dataPath
	}
	if passed["target"] {
		cfg.TargetColumn = *target
	}
	if passed["fraction"] {
		cfg.SplitFraction = *fraction
	}
	if passed["seed"] {
		cfg.RandomSeed = *seed
	}
	if passed["folds"] {
		cfg.Folds = *folds
	}
	if passed["samples"] {
		cfg.SampleCount = *samples
	}
	if passed["log-level"] {
		cfg.LogLevel = *logLevel
	}
}

func main() {
	flag.Parse()

	cfg, err := experiment.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "foretune: %v\n", err)
		os.Exit(1)
	}

	passed := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { passed[f.Name] = true })
	applyFlags(cfg, passed)

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "foretune: %v\n", err)
		os.Exit(1)
	}
	log.SetupLogger(cfg.LogLevel)
	log.SetLevel(level)

	report, err := experiment.Run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "foretune: %v\n", err)
		os.Exit(1)
	}

	fmt.Print(report.String())
}
