// Package inspection provides model interpretation helpers: gain-based and
// permutation feature importance, and partial dependence.
package inspection

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/metrics"
	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// GainReporter is implemented by fitted tree models that track the total
// impurity reduction contributed by each feature.
type GainReporter interface {
	FeatureGains() []float64
}

// FeatureImportance returns the per-feature split gains normalized to sum
// to 1. A model whose splits carry no gain yields all zeros.
func FeatureImportance(m GainReporter) ([]float64, error) {
	if m == nil {
		return nil, errors.NewValueError("FeatureImportance", "model is nil")
	}

	gains := m.FeatureGains()
	if len(gains) == 0 {
		return nil, errors.NewValueError("FeatureImportance", "model reports no features")
	}

	var total float64
	for _, g := range gains {
		total += g
	}

	importance := make([]float64, len(gains))
	if total == 0 {
		return importance, nil
	}
	for i, g := range gains {
		importance[i] = g / total
	}
	return importance, nil
}

// PermutationImportance measures how much the model's RMSE worsens when one
// feature column is shuffled, repeated nRepeats times per feature with a
// seeded permutation. The result is the mean RMSE increase over the
// baseline, per feature; uninformative features score near zero.
func PermutationImportance(m model.Predictor, X, y mat.Matrix, nRepeats int, seed int64) ([]float64, error) {
	if m == nil {
		return nil, errors.NewValueError("PermutationImportance", "model is nil")
	}
	if nRepeats < 1 {
		return nil, errors.NewValidationError("n_repeats", "must be at least 1", nRepeats)
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	basePred, err := m.Predict(X)
	if err != nil {
		return nil, err
	}
	baseline, err := metrics.RMSEMatrix(y, basePred)
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	work := mat.DenseCopyOf(X)
	column := make([]float64, rows)
	perm := make([]float64, rows)

	importance := make([]float64, cols)
	for j := 0; j < cols; j++ {
		mat.Col(column, j, X)

		var sum float64
		for r := 0; r < nRepeats; r++ {
			copy(perm, column)
			rng.Shuffle(rows, func(a, b int) {
				perm[a], perm[b] = perm[b], perm[a]
			})
			work.SetCol(j, perm)

			pred, err := m.Predict(work)
			if err != nil {
				return nil, err
			}
			rmse, err := metrics.RMSEMatrix(y, pred)
			if err != nil {
				return nil, err
			}
			sum += rmse - baseline
		}
		importance[j] = sum / float64(nRepeats)

		work.SetCol(j, column)
	}

	return importance, nil
}
