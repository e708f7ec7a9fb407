package dataset

import (
	"fmt"
	"io"
	"os"

	"github.com/sbinet/npyio"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitree/pkg/errors"
	"github.com/YuminosukeSato/scitree/pkg/log"
)

// LoadNpy reads a float64 NumPy feature array of shape (n, m) and a target
// array of shape (n,) or (n, 1).
func LoadNpy(features, target io.Reader) (*Dataset, error) {
	const op = "dataset.LoadNpy"

	xData, xShape, err := readNpy(features)
	if err != nil {
		return nil, errors.Wrap(err, op+": features")
	}
	if len(xShape) != 2 {
		return nil, errors.NewValueError(op, fmt.Sprintf("features must be 2-D, got shape %v", xShape))
	}

	yData, yShape, err := readNpy(target)
	if err != nil {
		return nil, errors.Wrap(err, op+": target")
	}
	if !(len(yShape) == 1 || len(yShape) == 2 && yShape[1] == 1) {
		return nil, errors.NewValueError(op, fmt.Sprintf("target must have shape (n,) or (n, 1), got %v", yShape))
	}

	rows, cols := xShape[0], xShape[1]
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError(op, "empty features", errors.ErrEmptyData)
	}
	if yShape[0] != rows {
		return nil, errors.NewDimensionError(op, rows, yShape[0], 0)
	}

	return &Dataset{
		X: mat.NewDense(rows, cols, xData),
		Y: mat.NewDense(rows, 1, yData),
	}, nil
}

// LoadNpyFiles opens both paths and reads them with LoadNpy.
func LoadNpyFiles(featurePath, targetPath string) (*Dataset, error) {
	xf, err := os.Open(featurePath)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadNpyFiles: open %s", featurePath)
	}
	defer xf.Close()

	yf, err := os.Open(targetPath)
	if err != nil {
		return nil, errors.Wrapf(err, "dataset.LoadNpyFiles: open %s", targetPath)
	}
	defer yf.Close()

	ds, err := LoadNpy(xf, yf)
	if err != nil {
		return nil, err
	}

	rows, cols := ds.Dims()
	log.GetLoggerWithName("dataset").Debug("Dataset loaded",
		log.SourceKey, featurePath,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
	)
	return ds, nil
}

// readNpy returns the array in row-major order together with its shape.
func readNpy(r io.Reader) ([]float64, []int, error) {
	nr, err := npyio.NewReader(r)
	if err != nil {
		return nil, nil, err
	}

	var data []float64
	if err := nr.Read(&data); err != nil {
		return nil, nil, err
	}

	shape := nr.Header.Descr.Shape
	if nr.Header.Descr.Fortran && len(shape) == 2 {
		data = fromColumnMajor(data, shape[0], shape[1])
	}
	return data, shape, nil
}

func fromColumnMajor(data []float64, rows, cols int) []float64 {
	out := make([]float64, len(data))
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = data[j*rows+i]
		}
	}
	return out
}
