package tree

import (
	"fmt"
	"strings"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// ExportText renders the tree as an indented rule listing in the layout of
// scikit-learn's export_text:
//
//	|--- feature_0 <= 2.50
//	|   |--- value: [1.00]
//	|--- feature_0 >  2.50
//	|   |--- value: [5.00]
//
// featureNames may be nil, otherwise it must hold one name per feature.
func ExportText(t *Tree, featureNames []string) (string, error) {
	if t == nil || t.Root == nil {
		return "", errors.NewNotFittedError("Tree", "ExportText")
	}
	if featureNames != nil && len(featureNames) != t.NFeatures {
		return "", errors.NewDimensionError("tree.ExportText", t.NFeatures, len(featureNames), 0)
	}

	name := func(f int) string {
		if featureNames != nil {
			return featureNames[f]
		}
		return fmt.Sprintf("feature_%d", f)
	}

	var sb strings.Builder
	var write func(n *Node, depth int)
	write = func(n *Node, depth int) {
		indent := strings.Repeat("|   ", depth) + "|--- "
		if n.IsLeaf() {
			fmt.Fprintf(&sb, "%svalue: [%.2f]\n", indent, n.Value)
			return
		}
		fmt.Fprintf(&sb, "%s%s <= %.2f\n", indent, name(n.Feature), n.Threshold)
		write(n.Left, depth+1)
		fmt.Fprintf(&sb, "%s%s >  %.2f\n", indent, name(n.Feature), n.Threshold)
		write(n.Right, depth+1)
	}

	// A lone leaf is printed at depth 0 like any other leaf.
	write(t.Root, 0)
	return sb.String(), nil
}
