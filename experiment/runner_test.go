package experiment

import (
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/dataset"
)

// syntheticDataset builds 200 records where the target is a noisy step
// function of the first feature.
func syntheticDataset(t *testing.T) *dataset.Dataset {
	t.Helper()

	rng := rand.New(rand.NewPCG(9, 9))
	n := 200
	data := mat.NewDense(n, 4, nil)
	for i := 0; i < n; i++ {
		x0 := rng.Float64()
		data.Set(i, 0, x0)
		data.Set(i, 1, rng.Float64())
		data.Set(i, 2, rng.Float64())
		base := 10.0
		if x0 >= 0.5 {
			base = 40.0
		}
		data.Set(i, 3, base+rng.Float64())
	}

	ds, err := dataset.New([]dataset.Column{
		{Name: "sqft", Type: dataset.Numeric},
		{Name: "age", Type: dataset.Numeric},
		{Name: "lot", Type: dataset.Numeric},
		{Name: "price", Type: dataset.Numeric},
	}, data)
	if err != nil {
		t.Fatalf("dataset.New failed: %v", err)
	}
	return ds
}

func smallConfig() *Config {
	cfg := Defaults()
	cfg.DataPath = "in-memory"
	cfg.TargetColumn = "price"
	cfg.Folds = 2
	cfg.SampleCount = 2
	cfg.TreesLo = 5
	cfg.TreesHi = 15
	cfg.DepthLo = 1
	cfg.DepthHi = 6
	cfg.Workers = 2
	return cfg
}

func TestRunDataset(t *testing.T) {
	ds := syntheticDataset(t)
	cfg := smallConfig()

	rep, err := RunDataset(cfg, ds)
	if err != nil {
		t.Fatalf("RunDataset failed: %v", err)
	}

	// 200レコード、f=0.75、seed=123 → 150/50
	if rep.TrainSize != 150 || rep.TestSize != 50 {
		t.Errorf("expected 150/50 split, got %d/%d", rep.TrainSize, rep.TestSize)
	}
	if rep.RunID == "" {
		t.Error("report should carry a run ID")
	}
	if len(rep.Ranking) != 4 {
		t.Errorf("expected 4 ranked candidates (2x2 grid), got %d", len(rep.Ranking))
	}
	if math.IsNaN(rep.TestRMSE) || rep.TestRMSE < 0 {
		t.Errorf("invalid test RMSE: %v", rep.TestRMSE)
	}
	// ステップ振幅30に対しノイズは1なので誤差は小さいはず
	if rep.TestRMSE > 10 {
		t.Errorf("test RMSE unexpectedly large: %v", rep.TestRMSE)
	}
	// 線形ベースラインはステップ関数を完全には表せないため誤差が残る
	if rep.BaselineRMSE <= 0 || math.IsNaN(rep.BaselineRMSE) {
		t.Errorf("invalid baseline RMSE: %v", rep.BaselineRMSE)
	}
	if len(rep.FeatureNames) != 3 || len(rep.Importance) != 3 {
		t.Fatalf("expected 3 features, got %d/%d", len(rep.FeatureNames), len(rep.Importance))
	}
	if rep.FeatureNames[0] != "sqft" {
		t.Errorf("unexpected feature order: %v", rep.FeatureNames)
	}
	if rep.Importance[0] <= rep.Importance[1] || rep.Importance[0] <= rep.Importance[2] {
		t.Errorf("signal feature should dominate importance: %v", rep.Importance)
	}
}

func TestRunDatasetReproducible(t *testing.T) {
	ds := syntheticDataset(t)
	cfg := smallConfig()

	a, err := RunDataset(cfg, ds)
	if err != nil {
		t.Fatalf("RunDataset failed: %v", err)
	}
	b, err := RunDataset(cfg, ds)
	if err != nil {
		t.Fatalf("RunDataset failed: %v", err)
	}

	if a.TestRMSE != b.TestRMSE {
		t.Errorf("same seed gave different test RMSE: %v vs %v", a.TestRMSE, b.TestRMSE)
	}
	if !reflect.DeepEqual(a.BestParams, b.BestParams) {
		t.Errorf("same seed gave different winners: %v vs %v", a.BestParams, b.BestParams)
	}
	if !reflect.DeepEqual(a.Ranking, b.Ranking) {
		t.Error("same seed gave a different ranking")
	}
	if a.RunID == b.RunID {
		t.Error("run IDs should be unique per run")
	}
}

func TestRunFromCSV(t *testing.T) {
	ds := syntheticDataset(t)

	// Round-trip through a CSV file to exercise the loading path.
	dir := t.TempDir()
	path := filepath.Join(dir, "houses.csv")

	var b strings.Builder
	b.WriteString("sqft,age,lot,price\n")
	X, y, _, err := ds.FeaturesTarget("price")
	if err != nil {
		t.Fatalf("FeaturesTarget failed: %v", err)
	}
	rows, _ := X.Dims()
	for i := 0; i < rows; i++ {
		fmt.Fprintf(&b, "%g,%g,%g,%g\n", X.At(i, 0), X.At(i, 1), X.At(i, 2), y.At(i, 0))
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		t.Fatalf("writing CSV: %v", err)
	}

	cfg := smallConfig()
	cfg.DataPath = path

	rep, err := Run(cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if rep.TrainSize != 150 || rep.TestSize != 50 {
		t.Errorf("expected 150/50 split, got %d/%d", rep.TrainSize, rep.TestSize)
	}

	text := rep.String()
	for _, want := range []string{"best params:", "test rmse:", "feature importance:", "sqft"} {
		if !strings.Contains(text, want) {
			t.Errorf("report text missing %q", want)
		}
	}
}

func TestRunInvalidConfig(t *testing.T) {
	cfg := Defaults()
	if _, err := Run(cfg); err == nil {
		t.Error("missing data path should be rejected")
	}
}
