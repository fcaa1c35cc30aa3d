package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

func TestMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "perfect prediction",
			yTrue:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			yPred:     mat.NewVecDense(5, []float64{1.0, 2.0, 3.0, 4.0, 5.0}),
			want:      0.0,
			tolerance: 1e-10,
			wantErr:   false,
		},
		{
			name:      "simple case",
			yTrue:     mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0}),
			yPred:     mat.NewVecDense(4, []float64{1.5, 2.5, 2.5, 3.5}),
			want:      0.25, // ((0.5)^2 + (0.5)^2 + (-0.5)^2 + (-0.5)^2) / 4 = 1.0/4 = 0.25
			tolerance: 1e-10,
			wantErr:   false,
		},
		{
			name:      "dimension mismatch",
			yTrue:     mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:     mat.NewVecDense(2, []float64{1.0, 2.0}),
			want:      0.0,
			tolerance: 1e-10,
			wantErr:   true,
		},
		{
			name:      "empty vectors",
			yTrue:     &mat.VecDense{},
			yPred:     &mat.VecDense{},
			want:      0.0,
			tolerance: 1e-10,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("MSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if math.Abs(got-tt.want) > tt.tolerance {
					t.Errorf("MSE() = %v, want %v (tolerance: %v)", got, tt.want, tt.tolerance)
				}
			}
		})
	}
}

func TestRMSE(t *testing.T) {
	tests := []struct {
		name      string
		yTrue     *mat.VecDense
		yPred     *mat.VecDense
		want      float64
		tolerance float64
		wantErr   bool
	}{
		{
			name:      "identical sequences give exactly zero",
			yTrue:     mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			yPred:     mat.NewVecDense(3, []float64{1.0, 2.0, 3.0}),
			want:      0.0,
			tolerance: 0,
			wantErr:   false,
		},
		{
			name:      "3-4-5 case is exactly 2.5",
			yTrue:     mat.NewVecDense(2, []float64{0.0, 0.0}),
			yPred:     mat.NewVecDense(2, []float64{3.0, 4.0}),
			want:      2.5, // sqrt((9+16)/2)
			tolerance: 0,
			wantErr:   false,
		},
		{
			name:    "empty input",
			yTrue:   &mat.VecDense{},
			yPred:   &mat.VecDense{},
			wantErr: true,
		},
		{
			name:    "length mismatch",
			yTrue:   mat.NewVecDense(3, []float64{1, 2, 3}),
			yPred:   mat.NewVecDense(4, []float64{1, 2, 3, 4}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RMSE(tt.yTrue, tt.yPred)

			if (err != nil) != tt.wantErr {
				t.Errorf("RMSE() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if math.Abs(got-tt.want) > tt.tolerance {
					t.Errorf("RMSE() = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

// RMSE is symmetric under negation of all differences.
func TestRMSESymmetry(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})
	above := mat.NewVecDense(4, []float64{1.5, 2.5, 3.5, 4.5})
	below := mat.NewVecDense(4, []float64{0.5, 1.5, 2.5, 3.5})

	a, err := RMSE(yTrue, above)
	if err != nil {
		t.Fatalf("RMSE(above) error: %v", err)
	}
	b, err := RMSE(yTrue, below)
	if err != nil {
		t.Fatalf("RMSE(below) error: %v", err)
	}

	if a != b {
		t.Errorf("RMSE not symmetric under negated differences: %v vs %v", a, b)
	}
}

func TestRMSESlice(t *testing.T) {
	got, err := RMSESlice([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatalf("RMSESlice() error: %v", err)
	}
	if got != 2.5 {
		t.Errorf("RMSESlice() = %v, want exactly 2.5", got)
	}

	if _, err := RMSESlice(nil, nil); err == nil {
		t.Error("RMSESlice() should fail on empty input")
	}
	if _, err := RMSESlice([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("RMSESlice() should fail on mismatched lengths")
	}
}

func TestMSEMatrix(t *testing.T) {
	yTrue := mat.NewDense(4, 1, []float64{1.0, 2.0, 3.0, 4.0})
	yPred := mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5})

	got, err := MSEMatrix(yTrue, yPred)
	if err != nil {
		t.Fatalf("MSEMatrix() error: %v", err)
	}
	if math.Abs(got-0.25) > 1e-10 {
		t.Errorf("MSEMatrix() = %v, want 0.25", got)
	}

	// 複数列はエラー
	wide := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	if _, err := MSEMatrix(wide, wide); err == nil {
		t.Error("MSEMatrix() should reject multi-column input")
	}
}

func TestMAE(t *testing.T) {
	yTrue := mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})
	yPred := mat.NewVecDense(3, []float64{2.0, 2.0, 1.0})

	got, err := MAE(yTrue, yPred)
	if err != nil {
		t.Fatalf("MAE() error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-10 {
		t.Errorf("MAE() = %v, want 1.0", got)
	}
}

func TestR2Score(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1.0, 2.0, 3.0, 4.0})

	perfect, err := R2Score(yTrue, yTrue)
	if err != nil {
		t.Fatalf("R2Score() error: %v", err)
	}
	if math.Abs(perfect-1.0) > 1e-10 {
		t.Errorf("R2Score(perfect) = %v, want 1.0", perfect)
	}

	// 分散のない目的変数では警告付きで定義値を返す
	var warned error
	errors.SetWarningHandler(func(w error) { warned = w })
	defer errors.SetWarningHandler(nil)

	constant := mat.NewVecDense(3, []float64{2.0, 2.0, 2.0})
	got, err := R2Score(constant, constant)
	if err != nil {
		t.Fatalf("R2Score() error: %v", err)
	}
	if got != 1.0 {
		t.Errorf("R2Score(constant, exact) = %v, want 1.0", got)
	}
	var undefined *errors.UndefinedMetricWarning
	if !errors.As(warned, &undefined) {
		t.Errorf("expected an UndefinedMetricWarning, got %v", warned)
	}

	off := mat.NewVecDense(3, []float64{1.0, 2.0, 3.0})
	got, err = R2Score(constant, off)
	if err != nil {
		t.Fatalf("R2Score() error: %v", err)
	}
	if got != 0.0 {
		t.Errorf("R2Score(constant, off) = %v, want 0.0", got)
	}
}
