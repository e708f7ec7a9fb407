package metrics

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestRegressionMetrics(t *testing.T) {
	yTrue := mat.NewVecDense(4, []float64{1, 1, 5, 5})
	yPred := mat.NewVecDense(4, []float64{1, 2, 4, 5})

	tests := []struct {
		name string
		fn   func(a, b *mat.VecDense) (float64, error)
		want float64
	}{
		// (0 + 1 + 1 + 0) / 4
		{"MSE", MSE, 0.5},
		{"RMSE", RMSE, math.Sqrt(0.5)},
		{"MAE", MAE, 0.5},
		// 1 - 2/16
		{"R2Score", R2Score, 0.875},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn(yTrue, yPred)
			if err != nil {
				t.Fatalf("%s() unexpected error: %v", tt.name, err)
			}
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("%s() = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRegressionMetricsErrors(t *testing.T) {
	tests := []struct {
		name  string
		yTrue *mat.VecDense
		yPred *mat.VecDense
	}{
		{"dimension mismatch", mat.NewVecDense(3, []float64{1, 2, 3}), mat.NewVecDense(2, []float64{1, 2})},
		{"empty vectors", &mat.VecDense{}, &mat.VecDense{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := MSE(tt.yTrue, tt.yPred); err == nil {
				t.Error("MSE() expected error")
			}
			if _, err := MAE(tt.yTrue, tt.yPred); err == nil {
				t.Error("MAE() expected error")
			}
			if _, err := R2Score(tt.yTrue, tt.yPred); err == nil {
				t.Error("R2Score() expected error")
			}
		})
	}

	constant := mat.NewVecDense(3, []float64{2, 2, 2})
	if _, err := R2Score(constant, mat.NewVecDense(3, []float64{1, 2, 3})); err == nil {
		t.Error("R2Score() expected error when yTrue has no variance")
	}
}

func TestMSEMatrix(t *testing.T) {
	got, err := MSEMatrix(
		mat.NewDense(4, 1, []float64{1, 2, 3, 4}),
		mat.NewDense(4, 1, []float64{1.5, 2.5, 2.5, 3.5}),
	)
	if err != nil {
		t.Fatalf("MSEMatrix() unexpected error: %v", err)
	}
	if math.Abs(got-0.25) > 1e-12 {
		t.Errorf("MSEMatrix() = %v, want 0.25", got)
	}

	_, err = MSEMatrix(mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil))
	if err == nil {
		t.Error("MSEMatrix() expected error for multi-column input")
	}
}

func TestColumnVectorReusesVecDense(t *testing.T) {
	v := mat.NewVecDense(2, []float64{1, 2})
	got, err := ColumnVector("test", v)
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Error("ColumnVector() should return the VecDense itself")
	}
}

func BenchmarkMSE(b *testing.B) {
	size := 10000
	yTrue := mat.NewVecDense(size, nil)
	yPred := mat.NewVecDense(size, nil)
	for i := 0; i < size; i++ {
		yTrue.SetVec(i, float64(i))
		yPred.SetVec(i, float64(i)+0.1*float64(i%10))
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = MSE(yTrue, yPred)
	}
}
