package tuning

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/metrics"
	"github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/split"
)

// Estimator is the model contract grid search tunes: fit, predict, and
// accept a hyperparameter combination before fitting.
type Estimator interface {
	model.Fitter
	model.Predictor
	model.ParameterSetter
}

// CVResult holds the per-fold and averaged errors of one cross-validation
// run.
type CVResult struct {
	FoldRMSEs []float64
	MeanRMSE  float64
}

// CrossValidate evaluates one hyperparameter combination with k-fold
// cross-validation: for each fold, a fresh model from factory is configured
// with params, trained on the other folds, and scored with RMSE on the
// held-out fold. Folds run in goroutines; each writes only its own result
// slot so the output is deterministic.
func CrossValidate(factory func() Estimator, params map[string]interface{}, X, y mat.Matrix, kf *split.KFold) (CVResult, error) {
	if factory == nil {
		return CVResult{}, errors.NewValueError("CrossValidate", "model factory is nil")
	}
	if kf == nil {
		return CVResult{}, errors.NewValueError("CrossValidate", "fold splitter is nil")
	}

	folds := kf.Split(X, y)
	foldRMSEs := make([]float64, len(folds))
	foldErrs := make([]error, len(folds))

	done := make(chan int, len(folds))
	for i, fold := range folds {
		go func(i int, fold split.Fold) {
			defer func() { done <- i }()

			est := factory()
			if err := est.SetParams(params); err != nil {
				foldErrs[i] = err
				return
			}

			trainX, trainY := split.Take(X, y, fold.TrainIndices)
			testX, testY := split.Take(X, y, fold.TestIndices)

			if err := est.Fit(trainX, trainY); err != nil {
				foldErrs[i] = err
				return
			}

			pred, err := est.Predict(testX)
			if err != nil {
				foldErrs[i] = err
				return
			}

			rmse, err := metrics.RMSEMatrix(testY, pred)
			if err != nil {
				foldErrs[i] = err
				return
			}
			foldRMSEs[i] = rmse
		}(i, fold)
	}
	for range folds {
		<-done
	}

	for i, err := range foldErrs {
		if err != nil {
			return CVResult{}, errors.Wrapf(err, "fold %d", i)
		}
	}

	var sum float64
	for _, rmse := range foldRMSEs {
		sum += rmse
	}

	return CVResult{
		FoldRMSEs: foldRMSEs,
		MeanRMSE:  sum / float64(len(foldRMSEs)),
	}, nil
}
