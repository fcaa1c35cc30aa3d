package tuning

import (
	"sort"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/pkg/log"
	"github.com/YuminosukeSato/foretune/split"
)

// CandidateResult is the cross-validated outcome of one hyperparameter
// combination.
type CandidateResult struct {
	// Rank is the 1-based position after sorting, 1 being the best.
	Rank int
	// Params is the evaluated combination.
	Params map[string]interface{}
	// MeanRMSE is the combination's cross-validated score.
	MeanRMSE float64
	// FoldRMSEs are the per-fold errors behind the mean.
	FoldRMSEs []float64
}

// GridSearch evaluates every combination of a ParamGrid with k-fold
// cross-validation and refits the best combination on the full training
// set. Ranking is ascending by mean RMSE; ties keep enumeration order.
type GridSearch struct {
	model.BaseEstimator

	// Grid holds the candidate values per hyperparameter.
	Grid ParamGrid
	// Factory builds a fresh model per fold and for the final refit.
	Factory func() Estimator
	// NSplits is the fold count (default 5).
	NSplits int
	// RandomSeed seeds the fold shuffling.
	RandomSeed int

	// Results is the full ranking after Fit, best first.
	Results []CandidateResult
	// BestParams is the winning combination.
	BestParams map[string]interface{}
	// BestScore is the winning combination's mean RMSE.
	BestScore float64
	// BestModel is the winner refit on the full training data.
	BestModel Estimator
}

// NewGridSearch creates a grid search over grid for models built by factory.
func NewGridSearch(factory func() Estimator, grid ParamGrid, nSplits, randomSeed int) *GridSearch {
	if nSplits < 2 {
		nSplits = 5
	}
	return &GridSearch{
		Grid:       grid,
		Factory:    factory,
		NSplits:    nSplits,
		RandomSeed: randomSeed,
	}
}

// Fit runs the search against the training data.
func (gs *GridSearch) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "tuning.GridSearch.Fit")

	if gs.Factory == nil {
		return errors.NewValueError("Fit", "model factory is nil")
	}
	rows, _ := X.Dims()
	if rows == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if rows < gs.NSplits {
		return errors.NewValidationError("n_splits", "exceeds the number of records", gs.NSplits)
	}

	combos, err := gs.Grid.Combinations()
	if err != nil {
		return err
	}

	logger := log.GetLoggerWithName("tuning.gridsearch")
	logger.Info("grid search started",
		log.CandidatesKey, len(combos),
		log.FoldsKey, gs.NSplits,
		log.SamplesKey, rows,
		log.RandomSeedKey, gs.RandomSeed,
	)
	started := time.Now()

	kf := split.NewKFold(gs.NSplits, true, gs.RandomSeed)

	results := make([]CandidateResult, len(combos))
	for i, combo := range combos {
		cv, cvErr := CrossValidate(gs.Factory, combo, X, y, kf)
		if cvErr != nil {
			return errors.Wrapf(cvErr, "evaluating candidate %s", FormatParams(combo))
		}
		results[i] = CandidateResult{
			Params:    combo,
			MeanRMSE:  cv.MeanRMSE,
			FoldRMSEs: cv.FoldRMSEs,
		}
		logger.Debug("candidate evaluated",
			"params", FormatParams(combo),
			log.RMSEKey, cv.MeanRMSE,
		)
	}

	// Ascending by mean RMSE; SliceStable keeps enumeration order on ties.
	sort.SliceStable(results, func(a, b int) bool {
		return results[a].MeanRMSE < results[b].MeanRMSE
	})
	for i := range results {
		results[i].Rank = i + 1
	}

	best := results[0]
	bestModel := gs.Factory()
	if err := bestModel.SetParams(best.Params); err != nil {
		return err
	}
	if err := bestModel.Fit(X, y); err != nil {
		return errors.Wrap(err, "refitting the best candidate")
	}

	gs.Results = results
	gs.BestParams = best.Params
	gs.BestScore = best.MeanRMSE
	gs.BestModel = bestModel
	gs.SetFitted()

	logger.Info("grid search finished",
		"best_params", FormatParams(best.Params),
		log.RMSEKey, best.MeanRMSE,
		log.DurationMsKey, time.Since(started).Milliseconds(),
	)

	return nil
}

// Predict delegates to the refit best model.
func (gs *GridSearch) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !gs.IsFitted() {
		return nil, errors.NewNotFittedError("tuning.GridSearch", "Predict")
	}
	return gs.BestModel.Predict(X)
}
