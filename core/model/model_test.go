package model

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type snapshot struct {
	BaseEstimator
	Name   string
	Values []float64
}

func TestBaseEstimator(t *testing.T) {
	var e BaseEstimator
	assert.False(t, e.IsFitted())
	assert.Equal(t, "not_fitted", e.State.String())

	e.SetFitted()
	assert.True(t, e.IsFitted())
	assert.Equal(t, "fitted", e.State.String())

	e.Reset()
	assert.False(t, e.IsFitted())
}

func TestSaveLoadModel(t *testing.T) {
	in := snapshot{Name: "tree", Values: []float64{1, 2.5}}
	in.SetFitted()

	path := filepath.Join(t.TempDir(), "model.gob")
	require.NoError(t, SaveModel(&in, path))

	var out snapshot
	require.NoError(t, LoadModel(&out, path))
	assert.Equal(t, in, out)
	assert.True(t, out.IsFitted())
}

func TestLoadModelMissingFile(t *testing.T) {
	var out snapshot
	err := LoadModel(&out, filepath.Join(t.TempDir(), "missing.gob"))
	assert.Error(t, err)
}

func TestSKLearnEnvelope(t *testing.T) {
	type params struct {
		MaxDepth int `json:"max_depth"`
	}

	var buf bytes.Buffer
	require.NoError(t, WriteSKLearnModel(&buf, "DecisionTreeRegressor", "1.0", params{MaxDepth: 4}))
	assert.Contains(t, buf.String(), `"format_version": "1.0"`)

	var got params
	spec, err := ReadSKLearnModel(bytes.NewReader(buf.Bytes()), "DecisionTreeRegressor", &got)
	require.NoError(t, err)
	assert.Equal(t, "1.0", spec.FormatVersion)
	assert.Equal(t, 4, got.MaxDepth)

	_, err = ReadSKLearnModel(strings.NewReader(buf.String()), "LinearRegression", &got)
	assert.Error(t, err)
}
