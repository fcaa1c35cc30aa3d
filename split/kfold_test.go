package split

import (
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

func TestKFoldPartition(t *testing.T) {
	tests := []struct {
		name     string
		nSamples int
		nSplits  int
	}{
		{name: "even division", nSamples: 20, nSplits: 5},
		{name: "uneven division", nSamples: 22, nSplits: 5},
		{name: "two folds", nSamples: 9, nSplits: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			X := mat.NewDense(tt.nSamples, 1, nil)
			kf := NewKFold(tt.nSplits, true, 42)
			folds := kf.Split(X, nil)

			if len(folds) != tt.nSplits {
				t.Fatalf("fold count = %d, want %d", len(folds), tt.nSplits)
			}

			base := tt.nSamples / tt.nSplits
			totalTest := 0
			for i, fold := range folds {
				if len(fold.TestIndices) != base && len(fold.TestIndices) != base+1 {
					t.Errorf("fold %d test size = %d, want %d or %d",
						i, len(fold.TestIndices), base, base+1)
				}
				if len(fold.TrainIndices)+len(fold.TestIndices) != tt.nSamples {
					t.Errorf("fold %d does not cover all samples", i)
				}

				inTest := make(map[int]bool, len(fold.TestIndices))
				for _, idx := range fold.TestIndices {
					inTest[idx] = true
				}
				for _, idx := range fold.TrainIndices {
					if inTest[idx] {
						t.Errorf("fold %d: index %d in both train and test", i, idx)
					}
				}
				totalTest += len(fold.TestIndices)
			}

			// Each sample is held out exactly once across folds
			if totalTest != tt.nSamples {
				t.Errorf("total held-out size = %d, want %d", totalTest, tt.nSamples)
			}
		})
	}
}

func TestKFoldDeterminism(t *testing.T) {
	X := mat.NewDense(17, 1, nil)

	first := NewKFold(4, true, 7).Split(X, nil)
	second := NewKFold(4, true, 7).Split(X, nil)

	for i := range first {
		for j := range first[i].TestIndices {
			if first[i].TestIndices[j] != second[i].TestIndices[j] {
				t.Fatalf("fold %d differs between identical runs", i)
			}
		}
	}
}

func TestKFoldImbalanceWarning(t *testing.T) {
	var captured error
	errors.SetWarningHandler(func(w error) { captured = w })
	defer errors.SetWarningHandler(func(error) {})

	X := mat.NewDense(10, 1, nil)
	NewKFold(3, false, 0).Split(X, nil)

	var foldWarn *errors.FoldImbalanceWarning
	if captured == nil || !errors.As(captured, &foldWarn) {
		t.Fatalf("expected FoldImbalanceWarning, got %v", captured)
	}
	if foldWarn.Remainder != 1 {
		t.Errorf("Remainder = %d, want 1", foldWarn.Remainder)
	}
}

func TestNewKFoldDefaults(t *testing.T) {
	kf := NewKFold(1, false, 0)
	if kf.GetNSplits() != 5 {
		t.Errorf("NSplits = %d, want default 5", kf.GetNSplits())
	}
}
