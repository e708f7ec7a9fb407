// Package dataset loads tabular regression data and splits it into training
// and test sets.
//
// Every loader produces a Dataset whose feature matrix is a *mat.Dense and
// whose target is an n×1 *mat.Dense, the shapes DecisionTreeRegressor.Fit
// expects.
package dataset

import (
	"gonum.org/v1/gonum/mat"
)

// Dataset is a feature matrix with one target value per row.
type Dataset struct {
	X *mat.Dense
	Y *mat.Dense // n×1

	// FeatureNames and TargetName come from a CSV header. They are nil and
	// empty when the source had none.
	FeatureNames []string
	TargetName   string
}

// Dims returns the number of rows and features.
func (d *Dataset) Dims() (rows, features int) {
	if d == nil || d.X == nil {
		return 0, 0
	}
	return d.X.Dims()
}

// Target returns a copy of the target column.
func (d *Dataset) Target() []float64 {
	rows, _ := d.Dims()
	out := make([]float64, rows)
	for i := range out {
		out[i] = d.Y.At(i, 0)
	}
	return out
}

// Subset copies the given rows, in order, into a new Dataset. It returns nil
// for an empty row list.
func (d *Dataset) Subset(rows []int) *Dataset {
	if len(rows) == 0 {
		return nil
	}
	_, cols := d.Dims()
	X := mat.NewDense(len(rows), cols, nil)
	Y := mat.NewDense(len(rows), 1, nil)
	for i, r := range rows {
		X.SetRow(i, d.X.RawRowView(r))
		Y.Set(i, 0, d.Y.At(r, 0))
	}
	return &Dataset{
		X:            X,
		Y:            Y,
		FeatureNames: d.FeatureNames,
		TargetName:   d.TargetName,
	}
}
