package tree

import (
	"fmt"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// NodeKind tells leaves and split nodes apart.
type NodeKind uint8

const (
	// LeafNode carries a prediction.
	LeafNode NodeKind = iota
	// SplitNode routes x[Feature] <= Threshold to Left, everything else to Right.
	SplitNode
)

func (k NodeKind) String() string {
	if k == SplitNode {
		return "split"
	}
	return "leaf"
}

// Node is one node of a regression tree. Every node owns its children
// exclusively and is never mutated once Fit has returned.
type Node struct {
	Kind NodeKind

	// Value is the mean target of the training rows reaching the node.
	// It is the prediction of a leaf.
	Value float64
	// Samples is the number of training rows reaching the node.
	Samples int
	// Impurity is the MSE of those rows around Value.
	Impurity float64

	Feature   int
	Threshold float64
	Left      *Node
	Right     *Node
}

// IsLeaf reports whether n is a leaf.
func (n *Node) IsLeaf() bool {
	return n.Kind == LeafNode
}

// Tree is a fitted regression tree.
type Tree struct {
	Root      *Node
	NFeatures int
	Config    Config
}

// PredictOne walks from the root to a leaf and returns its value.
//
// Only the features tested along the walked path are read, so x may be
// shorter than NFeatures as long as the path never looks past its end.
func (t *Tree) PredictOne(x []float64) (float64, error) {
	n := t.Root
	depth := 0
	for !n.IsLeaf() {
		if n.Feature >= len(x) {
			return 0, errors.NewPredictionDimensionError(n.Feature, len(x), depth)
		}
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
		depth++
	}
	return n.Value, nil
}

// Walk visits the nodes in pre-order. Returning false from fn skips the
// subtree below the node.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !fn(n, depth) || n.IsLeaf() {
			return
		}
		visit(n.Left, depth+1)
		visit(n.Right, depth+1)
	}
	visit(t.Root, 0)
}

// Depth returns the length of the longest root-to-leaf path. A single leaf
// has depth 0.
func (t *Tree) Depth() int {
	d := 0
	t.Walk(func(_ *Node, depth int) bool {
		d = max(d, depth)
		return true
	})
	return d
}

// NLeaves returns the number of leaves.
func (t *Tree) NLeaves() int {
	leaves := 0
	t.Walk(func(n *Node, _ int) bool {
		if n.IsLeaf() {
			leaves++
		}
		return true
	})
	return leaves
}

// NNodes returns the number of nodes, leaves included.
func (t *Tree) NNodes() int {
	nodes := 0
	t.Walk(func(*Node, int) bool {
		nodes++
		return true
	})
	return nodes
}

// FeatureImportances returns the total SSE reduction contributed by each
// feature, normalised to sum to 1. A single-leaf tree yields all zeros.
func (t *Tree) FeatureImportances() []float64 {
	imp := make([]float64, t.NFeatures)
	t.Walk(func(n *Node, _ int) bool {
		if !n.IsLeaf() {
			imp[n.Feature] += float64(n.Samples)*n.Impurity -
				float64(n.Left.Samples)*n.Left.Impurity -
				float64(n.Right.Samples)*n.Right.Impurity
		}
		return true
	})

	var total float64
	for _, v := range imp {
		total += v
	}
	if total <= 0 {
		clear(imp)
		return imp
	}
	for i := range imp {
		imp[i] /= total
	}
	return imp
}

// FlatNode is one entry of the pre-order encoding of a tree. Split nodes
// are followed by their left subtree and then their right subtree.
type FlatNode struct {
	Leaf      bool    `json:"leaf"`
	Value     float64 `json:"value"`
	Samples   int     `json:"samples"`
	Impurity  float64 `json:"impurity"`
	Feature   int     `json:"feature,omitempty"`
	Threshold float64 `json:"threshold,omitempty"`
}

// Flatten returns the pre-order encoding of the tree.
func (t *Tree) Flatten() []FlatNode {
	flat := make([]FlatNode, 0, t.NNodes())
	t.Walk(func(n *Node, _ int) bool {
		fn := FlatNode{
			Leaf:     n.IsLeaf(),
			Value:    n.Value,
			Samples:  n.Samples,
			Impurity: n.Impurity,
		}
		if !n.IsLeaf() {
			fn.Feature = n.Feature
			fn.Threshold = n.Threshold
		}
		flat = append(flat, fn)
		return true
	})
	return flat
}

// Unflatten rebuilds a tree from its pre-order encoding. The encoding must
// describe exactly one complete binary tree whose split features are below
// nFeatures and whose children sample counts add up to their parent's.
func Unflatten(flat []FlatNode, nFeatures int, cfg Config) (*Tree, error) {
	if len(flat) == 0 {
		return nil, errors.NewValueError("tree.Unflatten", "empty node list")
	}
	if nFeatures < 1 {
		return nil, errors.NewValidationError("n_features", "must be positive", nFeatures)
	}

	pos := 0
	var decode func() (*Node, error)
	decode = func() (*Node, error) {
		if pos >= len(flat) {
			return nil, errors.NewValueError("tree.Unflatten", "truncated node list")
		}
		fn := flat[pos]
		pos++

		n := &Node{Value: fn.Value, Samples: fn.Samples, Impurity: fn.Impurity}
		if fn.Leaf {
			n.Kind = LeafNode
			return n, nil
		}
		if fn.Feature < 0 || fn.Feature >= nFeatures {
			return nil, errors.NewValueError("tree.Unflatten",
				fmt.Sprintf("node %d splits on feature %d of %d", pos-1, fn.Feature, nFeatures))
		}

		n.Kind = SplitNode
		n.Feature = fn.Feature
		n.Threshold = fn.Threshold

		var err error
		if n.Left, err = decode(); err != nil {
			return nil, err
		}
		if n.Right, err = decode(); err != nil {
			return nil, err
		}
		if n.Left.Samples+n.Right.Samples != n.Samples {
			return nil, errors.NewValueError("tree.Unflatten",
				fmt.Sprintf("children of node with %d samples hold %d and %d",
					n.Samples, n.Left.Samples, n.Right.Samples))
		}
		return n, nil
	}

	root, err := decode()
	if err != nil {
		return nil, err
	}
	if pos != len(flat) {
		return nil, errors.NewValueError("tree.Unflatten", "trailing nodes after the root subtree")
	}
	return &Tree{Root: root, NFeatures: nFeatures, Config: cfg}, nil
}
