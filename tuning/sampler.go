// Package tuning provides hyperparameter sampling and cross-validated
// grid search for regression models.
package tuning

import (
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// LogUniform is a sampling range whose draws are uniform in log-space,
// so each decade of [Lo, Hi] is equally likely.
type LogUniform struct {
	Lo float64
	Hi float64
}

// validate checks the range bounds.
func (r LogUniform) validate() error {
	if r.Lo <= 0 {
		return errors.NewValidationError("lo", "must be positive", r.Lo)
	}
	if r.Hi < r.Lo {
		return errors.NewValidationError("hi", "must be at least lo", r.Hi)
	}
	return nil
}

// Sample draws k values uniform in log-space over [Lo, Hi]. The same seed
// always yields the same sequence.
func (r LogUniform) Sample(k int, seed int64) ([]float64, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, errors.NewValidationError("k", "must be at least 1", k)
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	logLo := math.Log(r.Lo)
	logHi := math.Log(r.Hi)

	values := make([]float64, k)
	for i := range values {
		values[i] = math.Exp(logLo + rng.Float64()*(logHi-logLo))
	}
	return values, nil
}

// SampleInts draws k log-uniform values and rounds each to the nearest
// integer. Rounding keeps every value inside [Lo, Hi] because the bounds
// themselves are expected to be integral ranges.
func (r LogUniform) SampleInts(k int, seed int64) ([]int, error) {
	values, err := r.Sample(k, seed)
	if err != nil {
		return nil, err
	}

	ints := make([]int, k)
	for i, v := range values {
		n := int(math.Round(v))
		// Clamp against rounding past the bounds at the extremes.
		if float64(n) < r.Lo {
			n = int(math.Ceil(r.Lo))
		}
		if float64(n) > r.Hi {
			n = int(math.Floor(r.Hi))
		}
		ints[i] = n
	}
	return ints, nil
}
