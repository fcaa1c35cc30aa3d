// Package ensemble implements bagged tree ensembles for regression.
package ensemble

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/core/parallel"
	"github.com/YuminosukeSato/foretune/metrics"
	"github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/pkg/log"
	"github.com/YuminosukeSato/foretune/tree"
)

// RandomForestRegressor averages the predictions of bootstrap-trained
// regression trees. Each tree draws its own bootstrap sample and a random
// feature subset per split, seeded from RandomState plus the tree index so a
// fit is reproducible regardless of worker count.
type RandomForestRegressor struct {
	model.BaseEstimator

	// Hyperparameters
	NEstimators    int  // Number of trees
	MaxDepth       int  // Maximum depth per tree (<= 0 means no limit)
	MinSamplesLeaf int  // Minimum samples at a leaf
	MaxFeatures    int  // Features per split (<= 0 means all)
	Bootstrap      bool // Draw bootstrap samples per tree
	RandomState    int  // Base seed
	NumWorkers     int  // Goroutines for fitting/prediction (<= 0 means NumCPU)

	// Internal state
	trees      []*tree.Regressor
	nFeatures_ int
}

// NewRandomForestRegressor creates a forest with default parameters.
func NewRandomForestRegressor() *RandomForestRegressor {
	return &RandomForestRegressor{
		NEstimators:    100,
		MaxDepth:       -1,
		MinSamplesLeaf: 1,
		MaxFeatures:    0,
		Bootstrap:      true,
		RandomState:    42,
		NumWorkers:     0,
	}
}

// WithNEstimators sets the number of trees.
func (f *RandomForestRegressor) WithNEstimators(n int) *RandomForestRegressor {
	f.NEstimators = n
	return f
}

// WithMaxDepth sets the maximum depth per tree.
func (f *RandomForestRegressor) WithMaxDepth(d int) *RandomForestRegressor {
	f.MaxDepth = d
	return f
}

// WithMinSamplesLeaf sets the minimum samples per leaf.
func (f *RandomForestRegressor) WithMinSamplesLeaf(n int) *RandomForestRegressor {
	f.MinSamplesLeaf = n
	return f
}

// WithMaxFeatures sets the features considered per split.
func (f *RandomForestRegressor) WithMaxFeatures(n int) *RandomForestRegressor {
	f.MaxFeatures = n
	return f
}

// WithRandomState sets the base random seed.
func (f *RandomForestRegressor) WithRandomState(seed int) *RandomForestRegressor {
	f.RandomState = seed
	return f
}

// WithNumWorkers sets the number of goroutines used for training.
func (f *RandomForestRegressor) WithNumWorkers(n int) *RandomForestRegressor {
	f.NumWorkers = n
	return f
}

// Fit trains the forest.
func (f *RandomForestRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "ensemble.RandomForestRegressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if rows != yRows {
		return errors.NewDimensionError("Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("Fit", 1, yCols, 1)
	}
	if f.NEstimators < 1 {
		return errors.NewValidationError("n_estimators", "must be at least 1", f.NEstimators)
	}

	f.nFeatures_ = cols
	f.trees = make([]*tree.Regressor, f.NEstimators)
	fitErrs := make([]error, f.NEstimators)

	parallel.ForEach(f.NEstimators, f.NumWorkers, func(i int) {
		seed := f.RandomState + i

		t := tree.NewRegressor().
			WithMaxDepth(f.MaxDepth).
			WithMinSamplesLeaf(f.MinSamplesLeaf).
			WithMaxFeatures(f.MaxFeatures).
			WithRandomState(seed)

		tX, tY := X, y
		if f.Bootstrap {
			tX, tY = bootstrapSample(X, y, seed)
		}

		fitErrs[i] = t.Fit(tX, tY)
		f.trees[i] = t
	})

	for _, e := range fitErrs {
		if e != nil {
			return errors.Wrap(e, "fitting ensemble member")
		}
	}

	f.SetFitted()

	logger := log.GetLoggerWithName("ensemble.forest")
	logger.Debug("random forest fitted",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"n_estimators", f.NEstimators,
		log.RandomSeedKey, f.RandomState,
	)

	return nil
}

// bootstrapSample draws rows of X and y with replacement, seeded per tree.
func bootstrapSample(X, y mat.Matrix, seed int) (mat.Matrix, mat.Matrix) {
	rows, cols := X.Dims()
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))

	sX := mat.NewDense(rows, cols, nil)
	sY := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		src := rng.IntN(rows)
		for j := 0; j < cols; j++ {
			sX.Set(i, j, X.At(src, j))
		}
		sY.Set(i, 0, y.At(src, 0))
	}
	return sX, sY
}

// Predict averages the member tree predictions.
func (f *RandomForestRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !f.IsFitted() {
		return nil, errors.NewNotFittedError("ensemble.RandomForestRegressor", "Predict")
	}

	rows, cols := X.Dims()
	if cols != f.nFeatures_ {
		return nil, errors.NewDimensionError("Predict", f.nFeatures_, cols, 1)
	}

	memberPreds := make([]mat.Matrix, len(f.trees))
	predErrs := make([]error, len(f.trees))
	parallel.ForEachWithThreshold(len(f.trees), 4, f.NumWorkers, func(i int) {
		memberPreds[i], predErrs[i] = f.trees[i].Predict(X)
	})
	for _, e := range predErrs {
		if e != nil {
			return nil, e
		}
	}

	out := mat.NewDense(rows, 1, nil)
	inv := 1.0 / float64(len(f.trees))
	for _, p := range memberPreds {
		for i := 0; i < rows; i++ {
			out.Set(i, 0, out.At(i, 0)+p.At(i, 0)*inv)
		}
	}

	return out, nil
}

// Score returns the coefficient of determination R^2 of the prediction.
func (f *RandomForestRegressor) Score(X, y mat.Matrix) (float64, error) {
	if !f.IsFitted() {
		return 0, errors.NewNotFittedError("ensemble.RandomForestRegressor", "Score")
	}

	predictions, err := f.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	yVec := mat.NewVecDense(rows, nil)
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, predictions.At(i, 0))
	}
	return metrics.R2Score(yVec, predVec)
}

// NumFeatures returns the number of features seen during fitting.
func (f *RandomForestRegressor) NumFeatures() int {
	return f.nFeatures_
}

// Trees returns the fitted ensemble members.
func (f *RandomForestRegressor) Trees() []*tree.Regressor {
	return f.trees
}

// FeatureGains sums the split gains of every member tree per feature.
func (f *RandomForestRegressor) FeatureGains() []float64 {
	gains := make([]float64, f.nFeatures_)
	for _, t := range f.trees {
		for i, g := range t.FeatureGains() {
			gains[i] += g
		}
	}
	return gains
}

// GetParams returns the hyperparameters of the forest.
func (f *RandomForestRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"n_estimators":     f.NEstimators,
		"max_depth":        f.MaxDepth,
		"min_samples_leaf": f.MinSamplesLeaf,
		"max_features":     f.MaxFeatures,
		"bootstrap":        f.Bootstrap,
		"random_state":     f.RandomState,
	}
}

// SetParams updates hyperparameters from a map, used by grid search to
// configure candidate models.
func (f *RandomForestRegressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "n_estimators":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			f.NEstimators = v
		case "max_depth":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			f.MaxDepth = v
		case "min_samples_leaf":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			f.MinSamplesLeaf = v
		case "max_features":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			f.MaxFeatures = v
		case "bootstrap":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			f.Bootstrap = v
		case "random_state":
			v, ok := toInt(value)
			if !ok {
				return errors.NewValidationError(key, "must be an integer", value)
			}
			f.RandomState = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
