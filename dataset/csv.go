package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitree/pkg/errors"
	"github.com/YuminosukeSato/scitree/pkg/log"
)

// LoadCSV reads comma separated numeric rows. The last column is the target
// and every other column is a feature.
//
// The first record is treated as a header when any of its fields is not a
// number. Quoted fields and surrounding spaces are accepted, blank lines are
// skipped. All records must have the same number of fields.
func LoadCSV(r io.Reader) (*Dataset, error) {
	const op = "dataset.LoadCSV"

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		header []string
		width  int
		values []float64
		target []float64
		first  = true
	)

	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, op)
		}
		line, _ := cr.FieldPos(0)

		if first {
			first = false
			width = len(record)
			if width < 2 {
				return nil, errors.NewValueError(op,
					fmt.Sprintf("line %d: need at least one feature and a target column, got %d column(s)", line, width))
			}
			if !numericRecord(record) {
				header = trimAll(record)
				continue
			}
		}

		if len(record) != width {
			return nil, errors.Wrapf(errors.NewDimensionError(op, width, len(record), 1), "line %d", line)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, errors.NewValueError(op,
					fmt.Sprintf("line %d: column %d: %q is not a number", line, j+1, field))
			}
			if j == width-1 {
				target = append(target, v)
			} else {
				values = append(values, v)
			}
		}
	}

	if len(target) == 0 {
		return nil, errors.NewModelError(op, "no data rows", errors.ErrEmptyData)
	}

	ds := &Dataset{
		X: mat.NewDense(len(target), width-1, values),
		Y: mat.NewDense(len(target), 1, target),
	}
	if header != nil {
		ds.FeatureNames = header[:width-1]
		ds.TargetName = header[width-1]
	}
	return ds, nil
}

// LoadCSVFile opens path and reads it with LoadCSV.
func LoadCSVFile(path string) (*Dataset, error) {
	start := time.Now()
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSVFile: open %s", path)
	}
	defer f.Close()

	ds, err := LoadCSV(f)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadCSVFile: %s", path)
	}

	rows, cols := ds.Dims()
	log.GetLoggerWithName("dataset").Debug("Dataset loaded",
		log.SourceKey, path,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return ds, nil
}

func numericRecord(record []string) bool {
	for _, field := range record {
		if _, err := strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
			return false
		}
	}
	return true
}

func trimAll(record []string) []string {
	out := make([]string, len(record))
	for i, field := range record {
		out[i] = strings.TrimSpace(field)
	}
	return out
}
