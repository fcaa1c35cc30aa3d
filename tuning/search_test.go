package tuning

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/split"
	"github.com/YuminosukeSato/foretune/tree"
)

// shiftEstimator predicts the training mean plus a constant shift. The best
// shift is 0, which cross-validation should recover.
type shiftEstimator struct {
	shift  float64
	mean   float64
	fitted bool
}

func (s *shiftEstimator) SetParams(params map[string]interface{}) error {
	if v, ok := params["shift"]; ok {
		s.shift = float64(v.(int))
	}
	return nil
}

func (s *shiftEstimator) Fit(_, y mat.Matrix) error {
	rows, _ := y.Dims()
	var sum float64
	for i := 0; i < rows; i++ {
		sum += y.At(i, 0)
	}
	s.mean = sum / float64(rows)
	s.fitted = true
	return nil
}

func (s *shiftEstimator) Predict(X mat.Matrix) (mat.Matrix, error) {
	rows, _ := X.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, s.mean+s.shift)
	}
	return out, nil
}

// stepData has y fully determined by the first feature.
func stepData(n int) (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(n, 1, nil)
	y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		if i < n/2 {
			y.Set(i, 0, 1)
		} else {
			y.Set(i, 0, 9)
		}
	}
	return X, y
}

func TestGridSearchRanksByError(t *testing.T) {
	X, y := stepData(40)

	grid := ParamGrid{"shift": IntGrid([]int{-4, 0, 4})}
	gs := NewGridSearch(func() Estimator { return &shiftEstimator{} }, grid, 4, 1)

	if err := gs.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if gs.BestParams["shift"] != 0 {
		t.Errorf("expected shift=0 to win, got %v", gs.BestParams)
	}
	if len(gs.Results) != 3 {
		t.Fatalf("expected 3 ranked results, got %d", len(gs.Results))
	}
	for i := 1; i < len(gs.Results); i++ {
		if gs.Results[i].MeanRMSE < gs.Results[i-1].MeanRMSE {
			t.Errorf("ranking not ascending at position %d", i)
		}
	}
	for i, r := range gs.Results {
		if r.Rank != i+1 {
			t.Errorf("result %d: expected rank %d, got %d", i, i+1, r.Rank)
		}
	}
}

func TestGridSearchStableRanking(t *testing.T) {
	X, y := stepData(60)
	grid := ParamGrid{"shift": IntGrid([]int{-2, -1, 0, 1, 2})}

	run := func() []CandidateResult {
		gs := NewGridSearch(func() Estimator { return &shiftEstimator{} }, grid, 3, 99)
		if err := gs.Fit(X, y); err != nil {
			t.Fatalf("Fit failed: %v", err)
		}
		return gs.Results
	}

	a := run()
	b := run()
	if !reflect.DeepEqual(a, b) {
		t.Error("identical runs with the same seed produced different rankings")
	}
}

func TestGridSearchNearZeroRMSEWhenLearnable(t *testing.T) {
	// 完全に学習可能な関係なら十分な容量でCV誤差はほぼ0になる
	X, y := stepData(60)

	grid := ParamGrid{"max_depth": IntGrid([]int{1, 4})}
	gs := NewGridSearch(func() Estimator { return tree.NewRegressor() }, grid, 2, 5)

	if err := gs.Fit(X, y); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if gs.BestScore > 1.0 {
		t.Errorf("expected near-zero CV RMSE on learnable data, got %v", gs.BestScore)
	}

	pred, err := gs.Predict(X)
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	rows, _ := pred.Dims()
	if rows != 60 {
		t.Errorf("expected 60 predictions, got %d", rows)
	}
}

func TestGridSearchValidation(t *testing.T) {
	X, y := stepData(10)

	gs := NewGridSearch(nil, ParamGrid{"shift": IntGrid([]int{0})}, 2, 1)
	if err := gs.Fit(X, y); err == nil {
		t.Error("nil factory should be rejected")
	}

	gs = NewGridSearch(func() Estimator { return &shiftEstimator{} }, ParamGrid{}, 2, 1)
	if err := gs.Fit(X, y); err == nil {
		t.Error("empty grid should be rejected")
	}

	gs = NewGridSearch(func() Estimator { return &shiftEstimator{} }, ParamGrid{"shift": IntGrid([]int{0})}, 20, 1)
	if err := gs.Fit(X, y); err == nil {
		t.Error("more folds than records should be rejected")
	}
}

func TestGridSearchPredictBeforeFit(t *testing.T) {
	gs := NewGridSearch(func() Estimator { return &shiftEstimator{} }, ParamGrid{"shift": IntGrid([]int{0})}, 2, 1)
	if _, err := gs.Predict(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Predict before Fit should return an error")
	}
}

func TestCrossValidatePerFoldErrors(t *testing.T) {
	X, y := stepData(20)
	kf := split.NewKFold(4, true, 3)

	cv, err := CrossValidate(func() Estimator { return &shiftEstimator{} }, map[string]interface{}{"shift": 0}, X, y, kf)
	if err != nil {
		t.Fatalf("CrossValidate failed: %v", err)
	}

	if len(cv.FoldRMSEs) != 4 {
		t.Fatalf("expected 4 fold errors, got %d", len(cv.FoldRMSEs))
	}
	var sum float64
	for _, rmse := range cv.FoldRMSEs {
		sum += rmse
	}
	if math.Abs(cv.MeanRMSE-sum/4) > 1e-12 {
		t.Errorf("mean %v does not match fold average %v", cv.MeanRMSE, sum/4)
	}
}
