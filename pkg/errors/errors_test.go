package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"
)

func TestNewModelError(t *testing.T) {
	tests := []struct {
		name     string
		op       string
		kind     string
		err      error
		wantMsg  string
		hasStack bool
	}{
		{
			name:     "with original error",
			op:       "Fit",
			kind:     "empty dataset",
			err:      ErrEmptyData,
			wantMsg:  "scitree: Fit: empty dataset: empty data",
			hasStack: true,
		},
		{
			name:     "without original error",
			op:       "Predict",
			kind:     "not fitted",
			err:      nil,
			wantMsg:  "scitree: Predict: not fitted",
			hasStack: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewModelError(tt.op, tt.kind, tt.err)

			// 基本的なエラーメッセージの確認
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			// スタックトレースの存在確認
			if tt.hasStack {
				formatted := fmt.Sprintf("%+v", err)
				if !strings.Contains(formatted, "errors_test.go") {
					t.Error("Expected stack trace to contain test file name")
				}
			}

			var modelErr *ModelError
			if !As(err, &modelErr) {
				t.Error("Error should be castable to *ModelError")
			}

			if tt.err != nil && !Is(err, tt.err) {
				t.Error("ModelError should unwrap to the original error")
			}
		})
	}
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("Fit", 10, 9, 0)

	want := "scitree: Fit: dimension mismatch on axis 0 (rows). Expected 10, got 9"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var dimErr *DimensionError
	if !As(err, &dimErr) {
		t.Fatal("Error should be castable to *DimensionError")
	}
	if dimErr.Expected != 10 || dimErr.Got != 9 {
		t.Errorf("unexpected fields: %+v", dimErr)
	}
}

func TestNewPredictionDimensionError(t *testing.T) {
	err := NewPredictionDimensionError(3, 2, 1)

	want := "scitree: predict: node at depth 1 tests feature 3 but the input has only 2 values"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var predErr *PredictionDimensionError
	if !As(err, &predErr) {
		t.Fatal("Error should be castable to *PredictionDimensionError")
	}
	if predErr.Feature != 3 {
		t.Errorf("Feature = %d, want 3", predErr.Feature)
	}
}

func TestNewNotFittedError(t *testing.T) {
	err := NewNotFittedError("DecisionTreeRegressor", "Predict")

	want := "scitree: DecisionTreeRegressor: this model is not fitted yet. Call Fit() before using Predict()"
	if err.Error() != want {
		t.Errorf("Error() = %v, want %v", err.Error(), want)
	}

	var notFittedErr *NotFittedError
	if !As(err, &notFittedErr) {
		t.Error("Error should be castable to *NotFittedError")
	}
}

func TestNewValidationError(t *testing.T) {
	tests := []struct {
		name    string
		param   string
		reason  string
		value   interface{}
		wantMsg string
	}{
		{
			name:    "negative depth",
			param:   "max_depth",
			reason:  "must be >= 0",
			value:   -1,
			wantMsg: "scitree: validation failed for parameter 'max_depth': must be >= 0 (got: -1)",
		},
		{
			name:    "zero min samples",
			param:   "min_samples_split",
			reason:  "must be >= 1",
			value:   0,
			wantMsg: "scitree: validation failed for parameter 'min_samples_split': must be >= 1 (got: 0)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewValidationError(tt.param, tt.reason, tt.value)
			if err.Error() != tt.wantMsg {
				t.Errorf("Error() = %v, want %v", err.Error(), tt.wantMsg)
			}

			var valErr *ValidationError
			if !As(err, &valErr) {
				t.Error("Error should be castable to *ValidationError")
			}
		})
	}
}

func TestDegenerateTreeWarning(t *testing.T) {
	warn := NewDegenerateTreeWarning(4, 10, 3, "fewer than 2*min_samples_split rows")

	want := "tree has a single leaf (samples=4, max_depth=10, min_samples_split=3): fewer than 2*min_samples_split rows"
	if warn.Error() != want {
		t.Errorf("Error() = %v, want %v", warn.Error(), want)
	}

	var got error
	SetWarningHandler(func(w error) { got = w })
	defer SetWarningHandler(nil)

	Warn(warn)
	if got != warn {
		t.Errorf("warning handler received %v, want %v", got, warn)
	}
}

func TestCheckMatrix(t *testing.T) {
	m := fakeMatrix{
		{1, 2},
		{3, math.NaN()},
	}

	err := CheckMatrix("fit_features", m, 2, 2)
	if err == nil {
		t.Fatal("expected error for NaN input")
	}

	var numErr *NumericalInstabilityError
	if !As(err, &numErr) {
		t.Fatalf("expected *NumericalInstabilityError, got %T", err)
	}
	if numErr.Iteration != 1 {
		t.Errorf("Iteration = %d, want row 1", numErr.Iteration)
	}

	if err := CheckMatrix("fit_features", fakeMatrix{{1, 2}}, 1, 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := CheckNumericalStability("fit_target", []float64{1, math.Inf(1)}); err == nil {
		t.Error("expected error for Inf target")
	}
}

func TestWrapf(t *testing.T) {
	wrapped := Wrapf(ErrEmptyData, "in %s: expected %d, got %d", "Fit", 10, 0)

	if !Is(wrapped, ErrEmptyData) {
		t.Error("Expected Is(wrapped, ErrEmptyData) to be true")
	}

	expectedMsg := "in Fit: expected 10, got 0"
	if !strings.Contains(wrapped.Error(), expectedMsg) {
		t.Errorf("Expected wrapped error to contain %q", expectedMsg)
	}
}

type fakeMatrix [][]float64

func (m fakeMatrix) At(i, j int) float64 { return m[i][j] }
