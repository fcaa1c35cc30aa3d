package tuning

import (
	"reflect"
	"testing"
)

func TestParamGridCombinations(t *testing.T) {
	grid := ParamGrid{
		"n_estimators": IntGrid([]int{10, 20}),
		"max_depth":    IntGrid([]int{2, 4, 6}),
	}

	if grid.Size() != 6 {
		t.Errorf("expected 6 combinations, got %d", grid.Size())
	}

	combos, err := grid.Combinations()
	if err != nil {
		t.Fatalf("Combinations failed: %v", err)
	}
	if len(combos) != 6 {
		t.Fatalf("expected 6 combinations, got %d", len(combos))
	}

	// 名前のソート順で展開され、末尾の名前が最も速く変わる
	expected := []map[string]interface{}{
		{"max_depth": 2, "n_estimators": 10},
		{"max_depth": 2, "n_estimators": 20},
		{"max_depth": 4, "n_estimators": 10},
		{"max_depth": 4, "n_estimators": 20},
		{"max_depth": 6, "n_estimators": 10},
		{"max_depth": 6, "n_estimators": 20},
	}
	for i, want := range expected {
		if !reflect.DeepEqual(combos[i], want) {
			t.Errorf("combination %d: expected %v, got %v", i, want, combos[i])
		}
	}
}

func TestParamGridErrors(t *testing.T) {
	if _, err := (ParamGrid{}).Combinations(); err == nil {
		t.Error("empty grid should be rejected")
	}
	grid := ParamGrid{"max_depth": nil}
	if _, err := grid.Combinations(); err == nil {
		t.Error("empty value list should be rejected")
	}
}

func TestFormatParams(t *testing.T) {
	got := FormatParams(map[string]interface{}{"n_estimators": 10, "max_depth": 3})
	want := "max_depth=3, n_estimators=10"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
