package tree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fittedStepTree(t *testing.T) *Tree {
	t.Helper()
	X, y := stepData()
	cfg := DefaultConfig()
	cfg.MinSamplesSplit = 1
	tr, err := Fit(X, y, cfg)
	require.NoError(t, err)
	return tr
}

func TestExportText(t *testing.T) {
	tr := fittedStepTree(t)

	got, err := ExportText(tr, nil)
	require.NoError(t, err)
	want := "|--- feature_0 <= 2.50\n" +
		"|   |--- value: [1.00]\n" +
		"|--- feature_0 >  2.50\n" +
		"|   |--- value: [5.00]\n"
	assert.Equal(t, want, got)

	got, err = ExportText(tr, []string{"x"})
	require.NoError(t, err)
	assert.Contains(t, got, "|--- x <= 2.50\n")

	_, err = ExportText(tr, []string{"x", "y"})
	assert.Error(t, err)

	_, err = ExportText(nil, nil)
	assert.Error(t, err)
}

func TestExportTextSingleLeaf(t *testing.T) {
	tr := &Tree{NFeatures: 1, Root: &Node{Kind: LeafNode, Value: 2, Samples: 3}}
	got, err := ExportText(tr, nil)
	require.NoError(t, err)
	assert.Equal(t, "|--- value: [2.00]\n", got)
}

func TestExportGraphviz(t *testing.T) {
	tr := fittedStepTree(t)

	var buf bytes.Buffer
	require.NoError(t, ExportGraphviz(tr, &buf, graphviz.XDOT))

	out := buf.String()
	assert.Contains(t, out, "f_0")
	assert.Contains(t, out, "value = 5")
	// One box per leaf; the split node keeps the default shape.
	assert.Equal(t, 2, strings.Count(out, "shape=box"), out)
}

func TestExportGraphvizSingleLeaf(t *testing.T) {
	tr := &Tree{NFeatures: 1, Root: &Node{Kind: LeafNode, Value: 2, Samples: 3}}

	var buf bytes.Buffer
	require.NoError(t, ExportGraphviz(tr, &buf, graphviz.XDOT))
	assert.Equal(t, 1, strings.Count(buf.String(), "shape=box"), buf.String())

	assert.Error(t, ExportGraphviz(nil, &buf, graphviz.XDOT))
}
