package tree

import (
	"fmt"
	"io"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// ExportGraphviz renders the tree with graphviz in the given format
// (graphviz.XDOT, graphviz.SVG, graphviz.PNG, ...). Split nodes are labelled
// "f_<feature> <= <threshold>", leaves are boxes labelled with their value.
func ExportGraphviz(t *Tree, w io.Writer, format graphviz.Format) (err error) {
	if t == nil || t.Root == nil {
		return errors.NewNotFittedError("Tree", "ExportGraphviz")
	}

	g := graphviz.New()
	defer g.Close()

	graph, err := g.Graph()
	if err != nil {
		return errors.Wrap(err, "tree.ExportGraphviz: create graph")
	}
	defer func() {
		if cerr := graph.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "tree.ExportGraphviz: close graph")
		}
	}()

	next := 0
	var draw func(n *Node, parent *cgraph.Node) error
	draw = func(n *Node, parent *cgraph.Node) error {
		gn, err := graph.CreateNode(strconv.Itoa(next))
		if err != nil {
			return err
		}
		next++

		if parent != nil {
			if _, err := graph.CreateEdge("", parent, gn); err != nil {
				return err
			}
		}

		if n.IsLeaf() {
			if err := setAttr(gn, "label", fmt.Sprintf("value = %.4g\nsamples = %d", n.Value, n.Samples), ""); err != nil {
				return err
			}
			return setAttr(gn, "shape", "box", "ellipse")
		}
		if err := setAttr(gn, "label", fmt.Sprintf("f_%d <= %.4g\nsamples = %d", n.Feature, n.Threshold, n.Samples), ""); err != nil {
			return err
		}
		if err := draw(n.Left, gn); err != nil {
			return err
		}
		return draw(n.Right, gn)
	}

	if err := draw(t.Root, nil); err != nil {
		return errors.Wrap(err, "tree.ExportGraphviz: build graph")
	}
	if err := g.Render(graph, format, w); err != nil {
		return errors.Wrap(err, "tree.ExportGraphviz: render")
	}
	return nil
}

// setAttr declares the node attribute with its graph-wide default when it
// is missing, then sets it on n. Plain Set ignores undeclared attributes.
func setAttr(n *cgraph.Node, name, value, def string) error {
	if rc := n.SafeSet(name, value, def); rc != 0 {
		return errors.Newf("graphviz: set %s=%q failed (%d)", name, value, rc)
	}
	return nil
}
