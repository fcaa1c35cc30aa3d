// Package tree implements a CART-style regression tree with a
// scikit-learn compatible API.
package tree

import (
	"math"
	"math/rand/v2"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/metrics"
	foretuneErrors "github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/pkg/log"
)

// Node represents a single node in a regression tree.
type Node struct {
	// Node identification
	NodeID     int // Unique identifier for the node
	LeftChild  int // Left child node ID (-1 if leaf)
	RightChild int // Right child node ID (-1 if leaf)

	// Split information (for non-leaf nodes)
	SplitFeature int     // Feature index used for splitting
	Threshold    float64 // Threshold value; rows with value <= Threshold go left
	Gain         float64 // Impurity (sum of squared error) reduction from the split

	// Leaf information (for leaf nodes)
	LeafValue   float64 // Mean target value at the leaf
	SampleCount int     // Number of training samples at the node
}

// IsLeaf returns true if the node is a leaf node.
func (n *Node) IsLeaf() bool {
	return n.LeftChild == -1 && n.RightChild == -1
}

// splitInfo holds a candidate split during training.
type splitInfo struct {
	feature    int
	threshold  float64
	gain       float64
	leftCount  int
	rightCount int
}

// Regressor is a decision tree regressor using variance reduction splits.
type Regressor struct {
	model.BaseEstimator

	// Hyperparameters
	MaxDepth        int // Maximum tree depth (<= 0 means no limit)
	MinSamplesLeaf  int // Minimum number of samples at a leaf
	MinSamplesSplit int // Minimum number of samples required to split a node
	MaxFeatures     int // Features considered per split (<= 0 means all)
	RandomState     int // Seed for feature subsampling

	// Nodes holds the fitted tree in a flat array; index 0 is the root.
	Nodes []Node

	// Internal state
	nFeatures_ int
	rng        *rand.Rand
}

// NewRegressor creates a new regression tree with default parameters.
func NewRegressor() *Regressor {
	return &Regressor{
		MaxDepth:        -1, // No limit
		MinSamplesLeaf:  1,
		MinSamplesSplit: 2,
		MaxFeatures:     0, // All features
		RandomState:     42,
	}
}

// WithMaxDepth sets the maximum depth.
func (t *Regressor) WithMaxDepth(d int) *Regressor {
	t.MaxDepth = d
	return t
}

// WithMinSamplesLeaf sets the minimum number of samples at a leaf.
func (t *Regressor) WithMinSamplesLeaf(n int) *Regressor {
	t.MinSamplesLeaf = n
	return t
}

// WithMaxFeatures sets the number of features considered per split.
func (t *Regressor) WithMaxFeatures(n int) *Regressor {
	t.MaxFeatures = n
	return t
}

// WithRandomState sets the random seed.
func (t *Regressor) WithRandomState(seed int) *Regressor {
	t.RandomState = seed
	return t
}

// Fit trains the regression tree.
func (t *Regressor) Fit(X, y mat.Matrix) (err error) {
	defer foretuneErrors.Recover(&err, "tree.Regressor.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 {
		return foretuneErrors.WithStack(foretuneErrors.ErrEmptyData)
	}
	if rows != yRows {
		return foretuneErrors.NewDimensionError("Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return foretuneErrors.NewDimensionError("Fit", 1, yCols, 1)
	}
	if t.MinSamplesLeaf < 1 {
		return foretuneErrors.NewValidationError("min_samples_leaf", "must be at least 1", t.MinSamplesLeaf)
	}

	t.nFeatures_ = cols
	t.rng = rand.New(rand.NewPCG(uint64(t.RandomState), uint64(t.RandomState)))
	t.Nodes = t.Nodes[:0]

	// Materialize the training columns once.
	xDense := toDense(X)
	targets := make([]float64, rows)
	for i := 0; i < rows; i++ {
		targets[i] = y.At(i, 0)
	}

	rootIndices := make([]int, rows)
	for i := range rootIndices {
		rootIndices[i] = i
	}

	t.buildNode(xDense, targets, rootIndices, 0)

	t.SetFitted()

	logger := log.GetLoggerWithName("tree.regressor")
	logger.Debug("regression tree fitted",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		"nodes", len(t.Nodes),
	)

	return nil
}

// buildNode recursively grows the tree and returns the new node's index.
func (t *Regressor) buildNode(X *mat.Dense, y []float64, indices []int, depth int) int {
	nodeIdx := len(t.Nodes)

	leaf := Node{
		NodeID:      nodeIdx,
		LeftChild:   -1,
		RightChild:  -1,
		LeafValue:   meanOf(y, indices),
		SampleCount: len(indices),
	}

	// Stopping conditions
	if (t.MaxDepth > 0 && depth >= t.MaxDepth) ||
		len(indices) < t.MinSamplesSplit ||
		len(indices) < 2*t.MinSamplesLeaf {
		t.Nodes = append(t.Nodes, leaf)
		return nodeIdx
	}

	best := t.findBestSplit(X, y, indices)
	if best.gain <= 0 {
		t.Nodes = append(t.Nodes, leaf)
		return nodeIdx
	}

	t.Nodes = append(t.Nodes, Node{
		NodeID:       nodeIdx,
		LeftChild:    -1,
		RightChild:   -1,
		SplitFeature: best.feature,
		Threshold:    best.threshold,
		Gain:         best.gain,
		LeafValue:    leaf.LeafValue,
		SampleCount:  len(indices),
	})

	var leftIndices, rightIndices []int
	for _, idx := range indices {
		if X.At(idx, best.feature) <= best.threshold {
			leftIndices = append(leftIndices, idx)
		} else {
			rightIndices = append(rightIndices, idx)
		}
	}

	leftChild := t.buildNode(X, y, leftIndices, depth+1)
	rightChild := t.buildNode(X, y, rightIndices, depth+1)

	t.Nodes[nodeIdx].LeftChild = leftChild
	t.Nodes[nodeIdx].RightChild = rightChild

	return nodeIdx
}

// findBestSplit searches the candidate features for the split with the
// largest reduction in sum of squared error.
func (t *Regressor) findBestSplit(X *mat.Dense, y []float64, indices []int) splitInfo {
	best := splitInfo{gain: -math.MaxFloat64}

	for _, feature := range t.candidateFeatures() {
		split := t.findBestSplitForFeature(X, y, indices, feature)
		if split.gain > best.gain {
			best = split
		}
	}

	return best
}

// candidateFeatures returns the feature indices considered for one split.
// With MaxFeatures in (0, nFeatures) a random subset is drawn without
// replacement; the draw order comes from the seeded generator so fits are
// reproducible.
func (t *Regressor) candidateFeatures() []int {
	all := make([]int, t.nFeatures_)
	for i := range all {
		all[i] = i
	}

	k := t.MaxFeatures
	if k <= 0 || k >= t.nFeatures_ {
		return all
	}

	t.rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})
	subset := all[:k]
	sort.Ints(subset)
	return subset
}

// findBestSplitForFeature scans the sorted feature values for the best
// threshold, using running sums so the scan is a single pass.
func (t *Regressor) findBestSplitForFeature(X *mat.Dense, y []float64, indices []int, feature int) splitInfo {
	sorted := make([]int, len(indices))
	copy(sorted, indices)
	sort.Slice(sorted, func(a, b int) bool {
		return X.At(sorted[a], feature) < X.At(sorted[b], feature)
	})

	var totalSum, totalSqSum float64
	for _, idx := range sorted {
		totalSum += y[idx]
		totalSqSum += y[idx] * y[idx]
	}
	n := float64(len(sorted))
	parentSSE := totalSqSum - totalSum*totalSum/n

	best := splitInfo{feature: feature, gain: -math.MaxFloat64}

	var leftSum, leftSqSum float64
	for i := 0; i < len(sorted)-1; i++ {
		idx := sorted[i]
		leftSum += y[idx]
		leftSqSum += y[idx] * y[idx]

		// Thresholds only exist between distinct values
		cur := X.At(idx, feature)
		next := X.At(sorted[i+1], feature)
		if cur == next {
			continue
		}

		leftCount := i + 1
		rightCount := len(sorted) - leftCount
		if leftCount < t.MinSamplesLeaf || rightCount < t.MinSamplesLeaf {
			continue
		}

		rightSum := totalSum - leftSum
		rightSqSum := totalSqSum - leftSqSum

		leftSSE := leftSqSum - leftSum*leftSum/float64(leftCount)
		rightSSE := rightSqSum - rightSum*rightSum/float64(rightCount)

		gain := parentSSE - leftSSE - rightSSE

		if gain > best.gain {
			best.gain = gain
			best.threshold = (cur + next) / 2
			best.leftCount = leftCount
			best.rightCount = rightCount
		}
	}

	return best
}

// Predict makes predictions for input samples.
func (t *Regressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !t.IsFitted() {
		return nil, foretuneErrors.NewNotFittedError("tree.Regressor", "Predict")
	}

	rows, cols := X.Dims()
	if cols != t.nFeatures_ {
		return nil, foretuneErrors.NewDimensionError("Predict", t.nFeatures_, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		features := mat.Row(nil, i, X)
		predictions.Set(i, 0, t.predictRow(features))
	}

	return predictions, nil
}

// predictRow walks one sample from the root to a leaf.
func (t *Regressor) predictRow(features []float64) float64 {
	nodeIdx := 0
	for nodeIdx >= 0 && nodeIdx < len(t.Nodes) {
		node := &t.Nodes[nodeIdx]
		if node.IsLeaf() {
			return node.LeafValue
		}
		if features[node.SplitFeature] <= node.Threshold {
			nodeIdx = node.LeftChild
		} else {
			nodeIdx = node.RightChild
		}
	}
	return 0.0
}

// Score returns the coefficient of determination R^2 of the prediction.
func (t *Regressor) Score(X, y mat.Matrix) (float64, error) {
	if !t.IsFitted() {
		return 0, foretuneErrors.NewNotFittedError("tree.Regressor", "Score")
	}

	predictions, err := t.Predict(X)
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
func (t *Regressor) NumFeatures() int {
	return t.nFeatures_
}

// FeatureGains returns the summed split gain per feature for the fitted tree.
func (t *Regressor) FeatureGains() []float64 {
	gains := make([]float64, t.nFeatures_)
	for _, node := range t.Nodes {
		if !node.IsLeaf() {
			gains[node.SplitFeature] += node.Gain
		}
	}
	return gains
}

// SetParams updates hyperparameters from a map, used by grid search to
// configure candidate models.
func (t *Regressor) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		n, ok := paramInt(value)
		if !ok {
			return foretuneErrors.NewValidationError(key, "must be an integer", value)
		}
		switch key {
		case "max_depth":
			t.MaxDepth = n
		case "min_samples_leaf":
			t.MinSamplesLeaf = n
		case "min_samples_split":
			t.MinSamplesSplit = n
		case "max_features":
			t.MaxFeatures = n
		case "random_state":
			t.RandomState = n
		default:
			return foretuneErrors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

func paramInt(v interface{}) (int, bool) {
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

// GetParams returns the hyperparameters of the tree.
func (t *Regressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         t.MaxDepth,
		"min_samples_leaf":  t.MinSamplesLeaf,
		"min_samples_split": t.MinSamplesSplit,
		"max_features":      t.MaxFeatures,
		"random_state":      t.RandomState,
	}
}

func meanOf(y []float64, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	var sum float64
	for _, idx := range indices {
		sum += y[idx]
	}
	return sum / float64(len(indices))
}

func toDense(X mat.Matrix) *mat.Dense {
	if d, ok := X.(*mat.Dense); ok {
		return d
	}
	rows, cols := X.Dims()
	d := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			d.Set(i, j, X.At(i, j))
		}
	}
	return d
}
