package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/foretune/pkg/errors"
	"github.com/YuminosukeSato/foretune/pkg/log"
)

// FromCSV loads a Dataset from a CSV file with a header row.
func FromCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	d, err := FromReader(f)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return d, nil
}

// FromReader loads a Dataset from CSV content with a header row.
//
// Every record must have the same number of fields as the header; a ragged
// record is a schema violation and fails the load. A column parses as
// Numeric when every value is a float literal; otherwise the whole column is
// label-encoded as Categorical, levels numbered in order of first
// appearance, and a DataConversionWarning is emitted.
func FromReader(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	// Ragged records must fail loudly, not be skipped.
	reader.FieldsPerRecord = 0

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	if len(records) < 2 {
		return nil, errors.WithStack(errors.ErrEmptyData)
	}

	header := records[0]
	body := records[1:]
	nRows := len(body)
	nCols := len(header)

	// First pass: decide per-column type.
	numeric := make([]bool, nCols)
	for j := 0; j < nCols; j++ {
		numeric[j] = true
		for i := 0; i < nRows; i++ {
			if _, err := strconv.ParseFloat(body[i][j], 64); err != nil {
				numeric[j] = false
				break
			}
		}
	}

	// Second pass: build columns, encoding categoricals.
	columns := make([]Column, nCols)
	data := mat.NewDense(nRows, nCols, nil)
	for j := 0; j < nCols; j++ {
		if numeric[j] {
			columns[j] = Column{Name: header[j], Type: Numeric}
			for i := 0; i < nRows; i++ {
				v, _ := strconv.ParseFloat(body[i][j], 64)
				data.Set(i, j, v)
			}
			continue
		}

		codes := make(map[string]int)
		var levels []string
		for i := 0; i < nRows; i++ {
			raw := body[i][j]
			code, ok := codes[raw]
			if !ok {
				code = len(levels)
				codes[raw] = code
				levels = append(levels, raw)
			}
			data.Set(i, j, float64(code))
		}
		columns[j] = Column{Name: header[j], Type: Categorical, Levels: levels}
		errors.Warn(errors.NewDataConversionWarning(
			"string", "float64", "categorical column '"+header[j]+"' label-encoded"))
	}

	logger := log.GetLoggerWithName("dataset")
	logger.Debug("csv loaded",
		log.SamplesKey, nRows,
		log.FeaturesKey, nCols,
	)

	return New(columns, data)
}
