// Package scitree provides regression trees for Go with a scikit-learn-like
// API, designed for backend services that train and serve small tabular
// models.
//
// # Features
//
// - Exact greedy CART regression on float64 features
// - scikit-learn-like API: Fit, Predict, Score, GetParams, SetParams
// - Concurrent tree building and batch prediction
// - Model persistence on local disk, in memory or in S3-compatible storage
// - Structured logging and typed errors
//
// # Installation
//
//	go get github.com/YuminosukeSato/scitree
//
// # Quick Start
//
//	package main
//
//	import (
//	    "fmt"
//	    "log"
//
//	    "github.com/YuminosukeSato/scitree/sklearn/tree"
//	    "gonum.org/v1/gonum/mat"
//	)
//
//	func main() {
//	    X := mat.NewDense(6, 1, []float64{1, 2, 3, 4, 5, 6})
//	    y := mat.NewDense(6, 1, []float64{1, 1, 1, 5, 5, 5})
//
//	    reg := tree.NewDecisionTreeRegressor(tree.WithMinSamplesSplit(1))
//	    if err := reg.Fit(X, y); err != nil {
//	        log.Fatal(err)
//	    }
//
//	    yhat, _ := reg.PredictOne([]float64{4.5})
//	    fmt.Println(yhat) // 5
//	}
//
// # Packages
//
//   - sklearn/tree: DecisionTreeRegressor, the split finder and tree builder
//   - dataset: CSV and NumPy loaders, train/test split
//   - modelstore: versioned, compressed model persistence
//   - metrics: Evaluation metrics (MSE, RMSE, MAE, R²)
//   - report: Prediction and feature importance charts
//   - core/model: Core interfaces and base types
//   - core/parallel: Parallel processing utilities
//   - pkg/errors, pkg/log: Error types and structured logging
//
// The scitree command in cmd/scitree fits a tree on a CSV file and prints
// train and test scores.
//
// # Error Handling
//
// Errors carry stack traces and can be inspected with errors.As:
//
//	var derr *errors.DimensionError
//	if errors.As(err, &derr) {
//	    fmt.Println("expected", derr.Expected, "columns, got", derr.Got)
//	}
//
// # License
//
// scitree is released under the MIT License.
package scitree
