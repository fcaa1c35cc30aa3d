// Package dataset provides an immutable tabular dataset with named columns,
// loaded once and shared by value through the rest of the workflow.
package dataset

import (
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/pkg/errors"
)

// ColumnType describes how a column's raw values are interpreted.
type ColumnType int

const (
	// Numeric columns hold float64 values parsed directly from input.
	Numeric ColumnType = iota
	// Categorical columns hold label-encoded codes; the original string
	// levels are kept on the column for decoding.
	Categorical
)

// Column describes one column of a Dataset.
type Column struct {
	Name string
	Type ColumnType

	// Levels holds the category labels for Categorical columns, indexed by
	// their encoded value. Empty for Numeric columns.
	Levels []string
}

// Dataset is an ordered collection of records sharing one schema.
// All values are stored as float64; categorical values are label-encoded
// at load time. Datasets are immutable after construction.
type Dataset struct {
	columns []Column
	data    *mat.Dense
}

// New builds a Dataset from a schema and an n×d value matrix.
func New(columns []Column, data *mat.Dense) (*Dataset, error) {
	if data == nil {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	rows, cols := data.Dims()
	if rows == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}
	if cols != len(columns) {
		return nil, errors.NewDimensionError("dataset.New", len(columns), cols, 1)
	}

	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		if c.Name == "" {
			return nil, errors.NewValidationError("columns", "column name must not be empty", c.Name)
		}
		if seen[c.Name] {
			return nil, errors.NewValidationError("columns", "duplicate column name", c.Name)
		}
		seen[c.Name] = true
	}

	return &Dataset{columns: columns, data: data}, nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	rows, _ := d.data.Dims()
	return rows
}

// Columns returns the column names in schema order.
func (d *Dataset) Columns() []string {
	names := make([]string, len(d.columns))
	for i, c := range d.columns {
		names[i] = c.Name
	}
	return names
}

// Schema returns a copy of the column descriptors.
func (d *Dataset) Schema() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// ColumnIndex returns the position of the named column, or an error when the
// column does not exist.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	for i, c := range d.columns {
		if c.Name == name {
			return i, nil
		}
	}
	return 0, errors.NewValidationError("column", "unknown column", name)
}

// Column returns the named column as an n×1 matrix.
func (d *Dataset) Column(name string) (*mat.Dense, error) {
	j, err := d.ColumnIndex(name)
	if err != nil {
		return nil, err
	}

	rows, _ := d.data.Dims()
	out := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		out.Set(i, 0, d.data.At(i, j))
	}
	return out, nil
}

// Matrix returns the named columns as an n×len(names) matrix, in the order
// given. With no names it returns a copy of the full value matrix.
func (d *Dataset) Matrix(names ...string) (*mat.Dense, error) {
	rows, cols := d.data.Dims()
	if len(names) == 0 {
		out := mat.NewDense(rows, cols, nil)
		out.Copy(d.data)
		return out, nil
	}

	idx := make([]int, len(names))
	for k, name := range names {
		j, err := d.ColumnIndex(name)
		if err != nil {
			return nil, err
		}
		idx[k] = j
	}

	out := mat.NewDense(rows, len(names), nil)
	for i := 0; i < rows; i++ {
		for k, j := range idx {
			out.Set(i, k, d.data.At(i, j))
		}
	}
	return out, nil
}

// FeaturesTarget splits the dataset into a feature matrix X (all columns except
// target, in schema order) and a target column y.
func (d *Dataset) FeaturesTarget(target string) (X, y *mat.Dense, featureNames []string, err error) {
	if _, err := d.ColumnIndex(target); err != nil {
		return nil, nil, nil, err
	}

	for _, c := range d.columns {
		if c.Name != target {
			featureNames = append(featureNames, c.Name)
		}
	}
	if len(featureNames) == 0 {
		return nil, nil, nil, errors.NewValueError("FeaturesTarget", "dataset has no feature columns besides the target")
	}

	X, err = d.Matrix(featureNames...)
	if err != nil {
		return nil, nil, nil, err
	}
	y, err = d.Column(target)
	if err != nil {
		return nil, nil, nil, err
	}
	return X, y, featureNames, nil
}

// Subset returns a new Dataset containing the records named by indices, in
// index order. The schema is shared; values are copied.
func (d *Dataset) Subset(indices []int) (*Dataset, error) {
	rows, cols := d.data.Dims()
	if len(indices) == 0 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	out := mat.NewDense(len(indices), cols, nil)
	for i, idx := range indices {
		if idx < 0 || idx >= rows {
			return nil, errors.NewValidationError("indices", "record index out of range", idx)
		}
		for j := 0; j < cols; j++ {
			out.Set(i, j, d.data.At(idx, j))
		}
	}
	return &Dataset{columns: d.columns, data: out}, nil
}
