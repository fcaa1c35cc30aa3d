// Package foretune provides reproducible model selection for regression in
// Go: seeded dataset partitioning, log-uniform hyperparameter sampling,
// cross-validated grid search, and model inspection.
//
// Every source of randomness (the train/test split, the candidate sampler,
// fold shuffling, bootstrap draws, and per-split feature subsets) is driven
// by an explicit seed, so a run can be repeated bit for bit.
//
// # Quick Start
//
// Split a dataset, search a hyperparameter grid, and score the winner:
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/foretune/ensemble"
//	    "github.com/YuminosukeSato/foretune/metrics"
//	    "github.com/YuminosukeSato/foretune/split"
//	    "github.com/YuminosukeSato/foretune/tuning"
//	)
//
//	func main() {
//	    XTrain, XTest, yTrain, yTest, err := split.Partition(X, y, 0.75, 123)
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//
//	    grid := tuning.ParamGrid{
//	        "n_estimators": tuning.IntGrid([]int{50, 100}),
//	        "max_depth":    tuning.IntGrid([]int{4, 8}),
//	    }
//	    search := tuning.NewGridSearch(func() tuning.Estimator {
//	        return ensemble.NewRandomForestRegressor()
//	    }, grid, 5, 123)
//	    if err := search.Fit(XTrain, yTrain); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    pred, _ := search.Predict(XTest)
//	    rmse, _ := metrics.RMSEMatrix(yTest, pred)
//	    fmt.Printf("best %v, test rmse %.4f\n", search.BestParams, rmse)
//	}
//
// # Packages
//
// - dataset: immutable tabular data with CSV loading and label encoding
// - split: seeded train/test partitioning and k-fold splitting
// - tuning: log-uniform sampling, parameter grids, grid search
// - tree, ensemble, linear: regression models sharing one contract
// - metrics: regression error metrics
// - inspection: feature importance and partial dependence
// - experiment: the whole pipeline behind one config
package foretune
