package preprocessing

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestStandardScaler(t *testing.T) {
	X := mat.NewDense(4, 2, []float64{
		1, 10,
		2, 20,
		3, 30,
		4, 40,
	})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}

	// 各列が平均0、標準偏差1になる
	rows, cols := scaled.Dims()
	for j := 0; j < cols; j++ {
		var sum float64
		for i := 0; i < rows; i++ {
			sum += scaled.At(i, j)
		}
		mean := sum / float64(rows)
		if math.Abs(mean) > 1e-10 {
			t.Errorf("column %d: expected zero mean, got %v", j, mean)
		}

		var sqSum float64
		for i := 0; i < rows; i++ {
			sqSum += scaled.At(i, j) * scaled.At(i, j)
		}
		std := math.Sqrt(sqSum / float64(rows))
		if math.Abs(std-1) > 1e-10 {
			t.Errorf("column %d: expected unit std, got %v", j, std)
		}
	}
}

func TestStandardScalerRoundTrip(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 5, 2, 7, 3, 9})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	restored, err := scaler.InverseTransform(scaled)
	if err != nil {
		t.Fatalf("InverseTransform failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		for j := 0; j < 2; j++ {
			if math.Abs(restored.At(i, j)-X.At(i, j)) > 1e-10 {
				t.Errorf("(%d,%d): expected %v, got %v", i, j, X.At(i, j), restored.At(i, j))
			}
		}
	}
}

func TestStandardScalerConstantColumn(t *testing.T) {
	// 定数列はゼロ除算にならず、そのまま0に写る
	X := mat.NewDense(3, 1, []float64{5, 5, 5})

	scaler := NewStandardScaler()
	scaled, err := scaler.FitTransform(X)
	if err != nil {
		t.Fatalf("FitTransform failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if scaled.At(i, 0) != 0 {
			t.Errorf("row %d: expected 0, got %v", i, scaled.At(i, 0))
		}
	}
}

func TestStandardScalerNotFitted(t *testing.T) {
	scaler := NewStandardScaler()
	if _, err := scaler.Transform(mat.NewDense(1, 1, []float64{1})); err == nil {
		t.Error("Transform before Fit should return an error")
	}
}

func TestStandardScalerDimensionMismatch(t *testing.T) {
	scaler := NewStandardScaler()
	if err := scaler.Fit(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, err := scaler.Transform(mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})); err == nil {
		t.Error("wrong feature count should be rejected")
	}
}
