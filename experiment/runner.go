package experiment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/dataset"
	"github.com/YuminosukeSato/foretune/ensemble"
	"github.com/YuminosukeSato/foretune/inspection"
	"github.com/YuminosukeSato/foretune/linear"
	"github.com/YuminosukeSato/foretune/metrics"
	"github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/pkg/log"
	"github.com/YuminosukeSato/foretune/preprocessing"
	"github.com/YuminosukeSato/foretune/split"
	"github.com/YuminosukeSato/foretune/tuning"
)

// Report is the outcome of one experiment run.
type Report struct {
	// RunID uniquely identifies the run.
	RunID string
	// StartedAt is when the run began.
	StartedAt time.Time
	// Duration is the total wall time of the run.
	Duration time.Duration

	// TrainSize and TestSize are the record counts of the two splits.
	TrainSize int
	TestSize  int

	// Ranking lists every candidate ascending by cross-validated RMSE.
	Ranking []tuning.CandidateResult
	// BestParams is the winning hyperparameter combination.
	BestParams map[string]interface{}
	// CVScore is the winner's cross-validated RMSE on the training split.
	CVScore float64
	// TestRMSE is the refit winner's RMSE on the held-out test split.
	TestRMSE float64
	// BaselineRMSE is a standardized ordinary-least-squares fit scored on
	// the same test split, for judging whether the forest earns its keep.
	BaselineRMSE float64

	// FeatureNames and Importance pair feature columns with their
	// normalized split-gain importance in the final model.
	FeatureNames []string
	Importance   []float64
}

// String renders the report as plain text.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "run %s\n", r.RunID)
	fmt.Fprintf(&b, "train/test: %d/%d records\n", r.TrainSize, r.TestSize)
	fmt.Fprintf(&b, "best params: %s\n", tuning.FormatParams(r.BestParams))
	fmt.Fprintf(&b, "cv rmse: %.6f\n", r.CVScore)
	fmt.Fprintf(&b, "test rmse: %.6f\n", r.TestRMSE)
	fmt.Fprintf(&b, "baseline rmse (ols): %.6f\n", r.BaselineRMSE)
	b.WriteString("ranking:\n")
	for _, c := range r.Ranking {
		fmt.Fprintf(&b, "  %2d. %-40s rmse=%.6f\n", c.Rank, tuning.FormatParams(c.Params), c.MeanRMSE)
	}
	b.WriteString("feature importance:\n")
	for i, name := range r.FeatureNames {
		fmt.Fprintf(&b, "  %-24s %.4f\n", name, r.Importance[i])
	}
	fmt.Fprintf(&b, "elapsed: %s\n", r.Duration.Round(time.Millisecond))
	return b.String()
}

// Run loads the configured dataset and executes the full pipeline.
func Run(cfg *Config) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	ds, err := dataset.FromCSV(cfg.DataPath)
	if err != nil {
		return nil, errors.Wrap(err, "loading dataset")
	}
	return RunDataset(cfg, ds)
}

// RunDataset executes the pipeline against an already-loaded dataset:
// train/test split, candidate sampling, grid search with k-fold
// cross-validation, refit, and held-out scoring. Every stage is seeded
// from cfg.RandomSeed so a run is fully reproducible.
func RunDataset(cfg *Config, ds *dataset.Dataset) (rep *Report, err error) {
	defer errors.Recover(&err, "experiment.RunDataset")

	runID := uuid.NewString()
	started := time.Now()

	logger := log.GetLoggerWithName("experiment").With(log.RunIDKey, runID)
	logger.Info("experiment started",
		log.SamplesKey, ds.Len(),
		log.RandomSeedKey, cfg.RandomSeed,
	)

	X, y, featureNames, err := ds.FeaturesTarget(cfg.TargetColumn)
	if err != nil {
		return nil, err
	}

	XTrain, XTest, yTrain, yTest, err := split.Partition(X, y, cfg.SplitFraction, cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	trainRows, _ := XTrain.Dims()
	testRows, _ := XTest.Dims()
	logger.Info("dataset partitioned",
		log.TrainSizeKey, trainRows,
		log.TestSizeKey, testRows,
		log.FractionKey, cfg.SplitFraction,
	)

	// Each hyperparameter draws its own independent sequence; offsetting
	// the seed keeps the two sequences uncorrelated but reproducible.
	treeCounts, err := tuning.LogUniform{Lo: float64(cfg.TreesLo), Hi: float64(cfg.TreesHi)}.
		SampleInts(cfg.SampleCount, cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	depths, err := tuning.LogUniform{Lo: float64(cfg.DepthLo), Hi: float64(cfg.DepthHi)}.
		SampleInts(cfg.SampleCount, cfg.RandomSeed+1)
	if err != nil {
		return nil, err
	}

	grid := tuning.ParamGrid{
		"n_estimators": tuning.IntGrid(treeCounts),
		"max_depth":    tuning.IntGrid(depths),
	}

	factory := func() tuning.Estimator {
		return ensemble.NewRandomForestRegressor().
			WithRandomState(int(cfg.RandomSeed)).
			WithMaxFeatures(maxFeaturesFor(len(featureNames))).
			WithNumWorkers(cfg.Workers)
	}

	search := tuning.NewGridSearch(factory, grid, cfg.Folds, int(cfg.RandomSeed))
	if err := search.Fit(XTrain, yTrain); err != nil {
		return nil, err
	}

	pred, err := search.Predict(XTest)
	if err != nil {
		return nil, err
	}
	testRMSE, err := metrics.RMSEMatrix(yTest, pred)
	if err != nil {
		return nil, err
	}

	baselineRMSE, err := baseline(XTrain, yTrain, XTest, yTest)
	if err != nil {
		return nil, errors.Wrap(err, "fitting the baseline")
	}

	forest, ok := search.BestModel.(*ensemble.RandomForestRegressor)
	if !ok {
		return nil, errors.NewModelError("RunDataset", "unexpected best model type", nil)
	}
	importance, err := inspection.FeatureImportance(forest)
	if err != nil {
		return nil, err
	}

	rep = &Report{
		RunID:        runID,
		StartedAt:    started,
		Duration:     time.Since(started),
		TrainSize:    trainRows,
		TestSize:     testRows,
		Ranking:      search.Results,
		BestParams:   search.BestParams,
		CVScore:      search.BestScore,
		TestRMSE:     testRMSE,
		BaselineRMSE: baselineRMSE,
		FeatureNames: featureNames,
		Importance:   importance,
	}

	logger.Info("experiment finished",
		log.RMSEKey, testRMSE,
		log.CandidatesKey, len(search.Results),
		log.DurationMsKey, rep.Duration.Milliseconds(),
	)

	return rep, nil
}

// baseline fits standardized ordinary least squares on the training split
// and scores it on the test split.
func baseline(XTrain, yTrain, XTest, yTest *mat.Dense) (float64, error) {
	scaler := preprocessing.NewStandardScaler()
	trainScaled, err := scaler.FitTransform(XTrain)
	if err != nil {
		return 0, err
	}
	testScaled, err := scaler.Transform(XTest)
	if err != nil {
		return 0, err
	}

	lr := linear.NewRegression()
	if err := lr.Fit(trainScaled, yTrain); err != nil {
		return 0, err
	}
	pred, err := lr.Predict(testScaled)
	if err != nil {
		return 0, err
	}
	return metrics.RMSEMatrix(yTest, pred)
}

// maxFeaturesFor picks the per-split feature subset size, roughly a third
// of the feature count as is customary for regression forests.
func maxFeaturesFor(nFeatures int) int {
	k := nFeatures / 3
	if k < 1 {
		k = 1
	}
	return k
}
