package inspection

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// PartialDependenceResult holds the grid of values evaluated for one feature
// and the model's average prediction at each.
type PartialDependenceResult struct {
	Feature  int
	Values   []float64
	Averages []float64
}

// PartialDependence evaluates the marginal effect of one feature: for each
// of gridSize values spanning the observed range of the column, the column
// is set to that value for every record and the predictions are averaged.
func PartialDependence(m model.Predictor, X mat.Matrix, feature, gridSize int) (PartialDependenceResult, error) {
	var out PartialDependenceResult

	if m == nil {
		return out, errors.NewValueError("PartialDependence", "model is nil")
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return out, errors.WithStack(errors.ErrEmptyData)
	}
	if feature < 0 || feature >= cols {
		return out, errors.NewValidationError("feature", "index out of range", feature)
	}
	if gridSize < 2 {
		return out, errors.NewValidationError("grid_size", "must be at least 2", gridSize)
	}

	lo := X.At(0, feature)
	hi := lo
	for i := 1; i < rows; i++ {
		v := X.At(i, feature)
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out.Feature = feature
	out.Values = make([]float64, gridSize)
	out.Averages = make([]float64, gridSize)

	work := mat.DenseCopyOf(X)
	original := make([]float64, rows)
	mat.Col(original, feature, X)
	filled := make([]float64, rows)

	step := (hi - lo) / float64(gridSize-1)
	for g := 0; g < gridSize; g++ {
		value := lo + float64(g)*step
		out.Values[g] = value

		for i := range filled {
			filled[i] = value
		}
		work.SetCol(feature, filled)

		pred, err := m.Predict(work)
		if err != nil {
			return PartialDependenceResult{}, err
		}

		var sum float64
		for i := 0; i < rows; i++ {
			sum += pred.At(i, 0)
		}
		out.Averages[g] = sum / float64(rows)
	}
	work.SetCol(feature, original)

	return out, nil
}
