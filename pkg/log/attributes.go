// Package log defines standard attribute keys for machine learning workflow
// operations.
//
// Using these standard keys keeps log output consistent across packages and
// enables structured log analysis of tuning runs. The keys follow a
// hierarchical naming convention (e.g. "model.name", "data.samples").
package log

// Model and Operation Context
// These attributes identify the model type, instance, and operation being performed.
const (
	// ModelNameKey identifies the type of machine learning model.
	// Examples: "DecisionTreeRegressor", "RandomForestRegressor"
	ModelNameKey = "model.name"

	// EstimatorIDKey provides a unique identifier for a specific model instance.
	EstimatorIDKey = "estimator.id"

	// OperationKey specifies the machine learning operation being performed.
	// Standard values: "fit", "predict", "score", "tune"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component or package is performing the operation.
	// Examples: "split", "tuning", "ensemble"
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the workflow.
	// Examples: "training", "validation", "testing"
	PhaseKey = "ml.phase"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// TrainSizeKey and TestSizeKey record the sizes of a train/test partition.
	TrainSizeKey = "split.train_size"
	TestSizeKey  = "split.test_size"

	// FractionKey records the train fraction of a partition.
	FractionKey = "split.fraction"
)

// Tuning and Evaluation Context
const (
	// FoldsKey records the fold count of a cross-validation run.
	FoldsKey = "cv.folds"

	// CandidatesKey records the number of hyperparameter combinations evaluated.
	CandidatesKey = "tune.candidates"

	// RMSEKey records root-mean-squared error for an evaluation.
	RMSEKey = "metrics.rmse"

	// R2ScoreKey records the coefficient of determination for regression.
	R2ScoreKey = "metrics.r2_score"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"

	// RunIDKey identifies one experiment run end to end.
	RunIDKey = "run.id"
)

// Standard attribute value constants for common operations.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationTune    = "tune"
	OperationSplit   = "split"

	PhaseTraining   = "training"
	PhaseValidation = "validation"
	PhaseTesting    = "testing"
)
