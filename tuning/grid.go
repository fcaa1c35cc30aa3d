package tuning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// ParamGrid maps hyperparameter names to the candidate values tried for
// each. Grid search expands it into the full Cartesian product.
type ParamGrid map[string][]interface{}

// Names returns the hyperparameter names in sorted order. Combinations are
// enumerated in this order so a grid expands identically on every run.
func (g ParamGrid) Names() []string {
	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Size returns the number of combinations in the Cartesian product.
func (g ParamGrid) Size() int {
	if len(g) == 0 {
		return 0
	}
	size := 1
	for _, values := range g {
		size *= len(values)
	}
	return size
}

// Combinations expands the grid into the Cartesian product of all value
// lists. Names are iterated in sorted order with the last name varying
// fastest, so the output order is deterministic.
func (g ParamGrid) Combinations() ([]map[string]interface{}, error) {
	if len(g) == 0 {
		return nil, errors.NewValueError("Combinations", "parameter grid is empty")
	}
	names := g.Names()
	for _, name := range names {
		if len(g[name]) == 0 {
			return nil, errors.NewValidationError(name, "has no candidate values", nil)
		}
	}

	combos := make([]map[string]interface{}, 0, g.Size())
	indices := make([]int, len(names))

	for {
		combo := make(map[string]interface{}, len(names))
		for i, name := range names {
			combo[name] = g[name][indices[i]]
		}
		combos = append(combos, combo)

		// Advance the odometer, last name fastest.
		pos := len(names) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(g[names[pos]]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}

	return combos, nil
}

// IntGrid builds a ParamGrid entry from sampled integer values.
func IntGrid(values []int) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

// FormatParams renders a combination as "name=value, ..." with names sorted,
// for logs and reports.
func FormatParams(params map[string]interface{}) string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%v", name, params[name])
	}
	return strings.Join(parts, ", ")
}
