package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sbinet/npyio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

func TestLoadCSV(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantX      []float64
		wantY      []float64
		wantNames  []string
		wantTarget string
	}{
		{
			name:  "no header",
			input: "1,2,3\n4,5,6\n",
			wantX: []float64{1, 2, 4, 5},
			wantY: []float64{3, 6},
		},
		{
			name:       "header",
			input:      "a,b,y\n1,2,3\n4,5,6\n",
			wantX:      []float64{1, 2, 4, 5},
			wantY:      []float64{3, 6},
			wantNames:  []string{"a", "b"},
			wantTarget: "y",
		},
		{
			name:       "quoted fields, spaces and blank lines",
			input:      "\"p 1\", \"p 2\", perf\n\n\"1.5\", 2, -3e2\n\n4, \"5\", 6\n",
			wantX:      []float64{1.5, 2, 4, 5},
			wantY:      []float64{-300, 6},
			wantNames:  []string{"p 1", "p 2"},
			wantTarget: "perf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := LoadCSV(strings.NewReader(tt.input))
			require.NoError(t, err)

			rows, cols := ds.Dims()
			assert.Equal(t, 2, rows)
			assert.Equal(t, 2, cols)
			assert.Equal(t, tt.wantX, ds.X.RawMatrix().Data)
			assert.Equal(t, tt.wantY, ds.Target())
			assert.Equal(t, tt.wantNames, ds.FeatureNames)
			assert.Equal(t, tt.wantTarget, ds.TargetName)
		})
	}
}

func TestLoadCSVErrors(t *testing.T) {
	t.Run("ragged row", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader("1,2,3\n4,5\n"))
		var derr *errors.DimensionError
		require.True(t, errors.As(err, &derr))
		assert.Equal(t, 3, derr.Expected)
		assert.Equal(t, 2, derr.Got)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("non-numeric data row", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader("x,y\n1,2\n3,abc\n"))
		var verr *errors.ValueError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Message, "line 3")
		assert.Contains(t, verr.Message, `"abc"`)
	})

	t.Run("single column", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader("1\n2\n"))
		assert.Error(t, err)
	})

	t.Run("header only", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader("a,b,y\n"))
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := LoadCSV(strings.NewReader(""))
		assert.True(t, errors.Is(err, errors.ErrEmptyData))
	})
}

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,y\n1,10\n2,20\n3,30\n"), 0o644))

	ds, err := LoadCSVFile(path)
	require.NoError(t, err)
	rows, cols := ds.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 1, cols)

	_, err = LoadCSVFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func writeNpy(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, npyio.Write(&buf, v))
	return &buf
}

func TestLoadNpy(t *testing.T) {
	X := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})

	t.Run("vector target", func(t *testing.T) {
		ds, err := LoadNpy(writeNpy(t, X), writeNpy(t, []float64{7, 8, 9}))
		require.NoError(t, err)
		assert.True(t, mat.Equal(X, ds.X))
		assert.Equal(t, []float64{7, 8, 9}, ds.Target())
	})

	t.Run("column target", func(t *testing.T) {
		y := mat.NewDense(3, 1, []float64{7, 8, 9})
		ds, err := LoadNpy(writeNpy(t, X), writeNpy(t, y))
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 8, 9}, ds.Target())
	})

	t.Run("row mismatch", func(t *testing.T) {
		_, err := LoadNpy(writeNpy(t, X), writeNpy(t, []float64{7, 8}))
		var derr *errors.DimensionError
		assert.True(t, errors.As(err, &derr))
	})

	t.Run("one dimensional features", func(t *testing.T) {
		_, err := LoadNpy(writeNpy(t, []float64{1, 2, 3}), writeNpy(t, []float64{7, 8, 9}))
		assert.Error(t, err)
	})

	t.Run("not an npy stream", func(t *testing.T) {
		_, err := LoadNpy(strings.NewReader("1,2,3"), writeNpy(t, []float64{1}))
		assert.Error(t, err)
	})
}

func TestFromColumnMajor(t *testing.T) {
	// [[1 2 3] [4 5 6]] stored column by column.
	got := fromColumnMajor([]float64{1, 4, 2, 5, 3, 6}, 2, 3)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, got)
}

func sequentialDataset(n int) *Dataset {
	X := mat.NewDense(n, 1, nil)
	Y := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		X.Set(i, 0, float64(i))
		Y.Set(i, 0, float64(10*i))
	}
	return &Dataset{X: X, Y: Y}
}

func TestTrainTestSplit(t *testing.T) {
	ds := sequentialDataset(10)

	train, test, err := TrainTestSplit(ds, DefaultTestSize, DefaultSeed)
	require.NoError(t, err)

	trainRows, _ := train.Dims()
	testRows, _ := test.Dims()
	assert.Equal(t, 8, trainRows)
	assert.Equal(t, 2, testRows)

	// Every row lands in exactly one side and keeps its target.
	seen := make(map[float64]bool)
	for _, part := range []*Dataset{train, test} {
		rows, _ := part.Dims()
		for i := 0; i < rows; i++ {
			x := part.X.At(i, 0)
			assert.False(t, seen[x], "row %v duplicated", x)
			seen[x] = true
			assert.Equal(t, 10*x, part.Y.At(i, 0))
		}
	}
	assert.Len(t, seen, 10)

	again, _, err := TrainTestSplit(ds, DefaultTestSize, DefaultSeed)
	require.NoError(t, err)
	assert.True(t, mat.Equal(train.X, again.X), "same seed must give the same split")
}

func TestTrainTestSplitEdgeCases(t *testing.T) {
	train, test, err := TrainTestSplit(sequentialDataset(1), 0.2, 1)
	require.NoError(t, err)
	rows, _ := train.Dims()
	assert.Equal(t, 1, rows)
	assert.Nil(t, test)

	train, test, err = TrainTestSplit(sequentialDataset(4), 0, 1)
	require.NoError(t, err)
	rows, _ = train.Dims()
	assert.Equal(t, 4, rows)
	assert.Nil(t, test)

	for _, bad := range []float64{-0.1, 1, 1.5} {
		_, _, err := TrainTestSplit(sequentialDataset(4), bad, 1)
		var verr *errors.ValidationError
		assert.True(t, errors.As(err, &verr), "test_size=%v", bad)
	}

	_, _, err = TrainTestSplit(&Dataset{}, 0.2, 1)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
