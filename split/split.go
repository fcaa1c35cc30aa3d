// Package split provides deterministic dataset partitioning for
// train/test separation and cross-validation.
package split

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/pkg/log"
)

// TrainTestSplit partitions the index set {0,...,n-1} into disjoint train and
// test index slices using a seeded pseudo-random permutation. The train side
// receives floor(fraction*n) indices; the rest go to test. The same seed and
// inputs always produce the same split.
func TrainTestSplit(n int, fraction float64, seed int64) (trainIdx, testIdx []int, err error) {
	if n <= 0 {
		return nil, nil, errors.WithStack(errors.ErrEmptySplit)
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, errors.NewValueError("TrainTestSplit", "fraction must be in (0, 1)")
	}

	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	r := rand.New(rand.NewPCG(uint64(seed), uint64(seed)))
	r.Shuffle(n, func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	nTrain := int(math.Floor(fraction * float64(n)))
	if nTrain == 0 || nTrain == n {
		return nil, nil, errors.NewValueError("TrainTestSplit", "fraction leaves one side of the split empty")
	}
	trainIdx = indices[:nTrain:nTrain]
	testIdx = indices[nTrain:]

	logger := log.GetLoggerWithName("split")
	logger.Debug("train/test split computed",
		log.SamplesKey, n,
		log.FractionKey, fraction,
		log.TrainSizeKey, len(trainIdx),
		log.TestSizeKey, len(testIdx),
		log.RandomSeedKey, seed,
	)

	return trainIdx, testIdx, nil
}

// Partition materializes a train/test split of X and y into four matrices.
// X must be n×d and y n×1 with matching row counts.
func Partition(X, y mat.Matrix, fraction float64, seed int64) (XTrain, XTest, yTrain, yTest *mat.Dense, err error) {
	n, _ := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != n {
		return nil, nil, nil, nil, errors.NewDimensionError("Partition", n, yRows, 0)
	}
	if yCols != 1 {
		return nil, nil, nil, nil, errors.NewDimensionError("Partition", 1, yCols, 1)
	}

	trainIdx, testIdx, err := TrainTestSplit(n, fraction, seed)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	XTrain, yTrain = Take(X, y, trainIdx)
	XTest, yTest = Take(X, y, testIdx)
	return XTrain, XTest, yTrain, yTest, nil
}

// Take extracts the rows of X and y named by indices, preserving index order.
func Take(X, y mat.Matrix, indices []int) (*mat.Dense, *mat.Dense) {
	_, xCols := X.Dims()
	_, yCols := y.Dims()
	rows := len(indices)

	xSubset := mat.NewDense(rows, xCols, nil)
	ySubset := mat.NewDense(rows, yCols, nil)

	for i, idx := range indices {
		for j := 0; j < xCols; j++ {
			xSubset.Set(i, j, X.At(idx, j))
		}
		for j := 0; j < yCols; j++ {
			ySubset.Set(i, j, y.At(idx, j))
		}
	}

	return xSubset, ySubset
}
