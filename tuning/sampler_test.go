package tuning

import (
	"testing"
)

func TestLogUniformSampleInts(t *testing.T) {
	r := LogUniform{Lo: 10, Hi: 1000}

	values, err := r.SampleInts(50, 42)
	if err != nil {
		t.Fatalf("SampleInts failed: %v", err)
	}
	if len(values) != 50 {
		t.Fatalf("expected 50 values, got %d", len(values))
	}

	// すべての値が範囲内に収まる
	for i, v := range values {
		if v < 10 || v > 1000 {
			t.Errorf("value %d out of range [10, 1000]: %d", i, v)
		}
	}
}

func TestLogUniformDeterminism(t *testing.T) {
	r := LogUniform{Lo: 2, Hi: 64}

	a, err := r.SampleInts(20, 7)
	if err != nil {
		t.Fatalf("SampleInts failed: %v", err)
	}
	b, err := r.SampleInts(20, 7)
	if err != nil {
		t.Fatalf("SampleInts failed: %v", err)
	}

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("index %d: same seed produced %d and %d", i, a[i], b[i])
		}
	}

	c, err := r.SampleInts(20, 8)
	if err != nil {
		t.Fatalf("SampleInts failed: %v", err)
	}
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical sequences")
	}
}

func TestLogUniformSpreadsAcrossDecades(t *testing.T) {
	// 対数空間で一様なら下側の10倍区間にも相応の数が落ちる
	r := LogUniform{Lo: 1, Hi: 100}
	values, err := r.SampleInts(400, 1)
	if err != nil {
		t.Fatalf("SampleInts failed: %v", err)
	}

	low := 0
	for _, v := range values {
		if v <= 10 {
			low++
		}
	}
	if low < 100 {
		t.Errorf("expected roughly half the draws at or below 10, got %d of 400", low)
	}
}

func TestLogUniformValidation(t *testing.T) {
	tests := []struct {
		name string
		r    LogUniform
		k    int
	}{
		{"lo is zero", LogUniform{Lo: 0, Hi: 10}, 5},
		{"lo is negative", LogUniform{Lo: -1, Hi: 10}, 5},
		{"hi below lo", LogUniform{Lo: 10, Hi: 5}, 5},
		{"k is zero", LogUniform{Lo: 1, Hi: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.r.SampleInts(tt.k, 1); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
