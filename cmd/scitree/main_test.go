package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/scitree/modelstore"
)

func writeStepCSV(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("x,noise,y\n")
	for i := 0; i < n; i++ {
		y := 1.0
		if i >= n/2 {
			y = 5
		}
		fmt.Fprintf(&b, "%d,%d,%g\n", i, (i*7)%11, y)
	}
	path := filepath.Join(dir, "step.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	data := writeStepCSV(t, dir, 100)
	storeDir := filepath.Join(dir, "models")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		"-data", data,
		"-export-text",
		"-dot", filepath.Join(dir, "tree.dot"),
		"-plot", filepath.Join(dir, "pred.png"),
		"-save", "step",
		"-store-dir", storeDir,
		"-log-level", "error",
	}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "train: rmse=0 r2=1")
	assert.Contains(t, out, "test: rmse=")
	assert.Contains(t, out, "|--- x <= ")
	assert.Equal(t, previewRows, strings.Count(out, " -> "))

	for _, name := range []string{"tree.dot", "pred.png"} {
		info, err := os.Stat(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Positive(t, info.Size(), name)
	}

	blobs, err := modelstore.NewLocalStore(storeDir)
	require.NoError(t, err)
	reg, err := modelstore.NewStore(blobs).Load(context.Background(), "step")
	require.NoError(t, err)
	got, err := reg.PredictOne([]float64{90, 0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, got)
}

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	data := writeStepCSV(t, dir, 20)

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, []byte("a,y\n"), 0o644))

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"missing data flag", []string{}, exitUsage},
		{"unknown flag", []string{"-data", data, "-bogus"}, exitUsage},
		{"bad codec", []string{"-data", data, "-codec", "gzip"}, exitUsage},
		{"bad log level", []string{"-data", data, "-log-level", "loud"}, exitUsage},
		{"missing file", []string{"-data", filepath.Join(dir, "nope.csv")}, exitLoad},
		{"npy without target", []string{"-data", filepath.Join(dir, "x.npy")}, exitLoad},
		{"header only", []string{"-data", empty}, exitEmpty},
		{"invalid config", []string{"-data", data, "-max-depth", "-1"}, exitFit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			assert.Equal(t, tt.want, run(context.Background(), tt.args, &stdout, &stderr))
		})
	}
}

func TestRunWithoutTestRows(t *testing.T) {
	dir := t.TempDir()
	data := writeStepCSV(t, dir, 20)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-data", data, "-test-size", "0", "-log-level", "error"}, &stdout, &stderr)
	require.Equal(t, exitOK, code)
	assert.Contains(t, stdout.String(), "test: no rows held out")
}

func TestRunSavesGobFile(t *testing.T) {
	dir := t.TempDir()
	data := writeStepCSV(t, dir, 40)
	path := filepath.Join(dir, "step.gob")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-data", data, "-save", path, "-log-level", "error"}, &stdout, &stderr)
	require.Equal(t, exitOK, code, stderr.String())

	reg, err := modelstore.LoadFile(path)
	require.NoError(t, err)
	yhat, err := reg.PredictOne([]float64{39, 0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, yhat)
}
