// Package linear は正規方程式による線形回帰モデルを提供する
package linear

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/core/model"
	"github.com/YuminosukeSato/foretune/metrics"
	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// Regression は最小二乗法による線形回帰モデル
// ベースラインモデルとして木系モデルの比較対象に使う
type Regression struct {
	model.BaseEstimator

	// Weights は学習された係数ベクトル
	Weights *mat.VecDense
	// Intercept は切片
	Intercept float64
	// FitIntercept は切片を学習するかどうか
	FitIntercept bool

	nFeatures int
}

// NewRegression は新しい線形回帰モデルを作成する
func NewRegression() *Regression {
	return &Regression{FitIntercept: true}
}

// Fit はモデルを訓練データで学習させる
// 正規方程式 w = (X^T X)^(-1) X^T y を解く
func (lr *Regression) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "linear.Regression.Fit")

	rows, cols := X.Dims()
	yRows, yCols := y.Dims()

	if rows == 0 || cols == 0 {
		return errors.WithStack(errors.ErrEmptyData)
	}
	if yRows != rows {
		return errors.NewDimensionError("Fit", rows, yRows, 0)
	}
	if yCols != 1 {
		return errors.NewDimensionError("Fit", 1, yCols, 1)
	}

	// 切片項を設計行列の先頭列として追加する
	width := cols
	offset := 0
	if lr.FitIntercept {
		width++
		offset = 1
	}
	design := mat.NewDense(rows, width, nil)
	for i := 0; i < rows; i++ {
		if lr.FitIntercept {
			design.Set(i, 0, 1)
		}
		for j := 0; j < cols; j++ {
			design.Set(i, offset+j, X.At(i, j))
		}
	}

	var solution mat.Dense
	if solveErr := solution.Solve(design, y); solveErr != nil {
		return errors.NewModelError("Fit", "solving the normal equations", solveErr)
	}

	lr.Weights = mat.NewVecDense(cols, nil)
	for j := 0; j < cols; j++ {
		lr.Weights.SetVec(j, solution.At(offset+j, 0))
	}
	if lr.FitIntercept {
		lr.Intercept = solution.At(0, 0)
	} else {
		lr.Intercept = 0
	}

	lr.nFeatures = cols
	lr.SetFitted()
	return nil
}

// Predict は入力データに対する予測を行う
func (lr *Regression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !lr.IsFitted() {
		return nil, errors.NewNotFittedError("linear.Regression", "Predict")
	}

	rows, cols := X.Dims()
	if cols != lr.nFeatures {
		return nil, errors.NewDimensionError("Predict", lr.nFeatures, cols, 1)
	}

	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		v := lr.Intercept
		for j := 0; j < cols; j++ {
			v += X.At(i, j) * lr.Weights.AtVec(j)
		}
		out.Set(i, 0, v)
	}
	return out, nil
}

// Score は決定係数R^2を返す
func (lr *Regression) Score(X, y mat.Matrix) (float64, error) {
	if !lr.IsFitted() {
		return 0, errors.NewNotFittedError("linear.Regression", "Score")
	}

	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}

	rows, _ := y.Dims()
	yVec := mat.NewVecDense(rows, nil)
	predVec := mat.NewVecDense(rows, nil)
	for i := 0; i < rows; i++ {
		yVec.SetVec(i, y.At(i, 0))
		predVec.SetVec(i, pred.At(i, 0))
	}
	return metrics.R2Score(yVec, predVec)
}

// SetParams はハイパーパラメータを設定する
func (lr *Regression) SetParams(params map[string]interface{}) error {
	for key, value := range params {
		switch key {
		case "fit_intercept":
			v, ok := value.(bool)
			if !ok {
				return errors.NewValidationError(key, "must be a bool", value)
			}
			lr.FitIntercept = v
		default:
			return errors.NewValidationError(key, "unknown parameter", value)
		}
	}
	return nil
}

// GetParams はハイパーパラメータを返す
func (lr *Regression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"fit_intercept": lr.FitIntercept,
	}
}
