package tree

import (
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitree/core/parallel"
	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// parallelMinSamples is the smallest node whose left subtree may be built
// on another goroutine.
const parallelMinSamples = 2048

// builder grows a tree top-down. The training data is shared read-only and
// every recursive call owns its index slice.
type builder struct {
	cfg      Config
	data     *samples
	splitter *splitter
	sem      *semaphore.Weighted // nil for a sequential build
}

func newBuilder(data *samples, cfg Config) *builder {
	b := &builder{
		cfg:      cfg,
		data:     data,
		splitter: newSplitter(data, cfg),
	}
	// The calling goroutine is one of the workers.
	if extra := parallel.Workers(cfg.NJobs) - 1; extra > 0 && cfg.NJobs != 1 {
		b.sem = semaphore.NewWeighted(int64(extra))
	}
	return b
}

// build returns the subtree for indices. Stopping rules are checked in
// order: depth, node size, node MSE. A node the splitter cannot improve
// becomes a leaf too.
func (b *builder) build(indices []int, depth int) (*Node, error) {
	n := len(indices)
	mean, sse := b.data.meanSSE(indices)
	mse := sse / float64(n)

	leaf := &Node{Kind: LeafNode, Value: mean, Samples: n, Impurity: mse}
	switch {
	case depth >= b.cfg.MaxDepth:
		return leaf, nil
	case n < 2*b.cfg.MinSamplesSplit:
		return leaf, nil
	case mse < b.cfg.MinMSE:
		return leaf, nil
	}

	split, ok := b.splitter.bestSplit(indices)
	if !ok {
		return leaf, nil
	}

	node := &Node{
		Kind:      SplitNode,
		Value:     mean,
		Samples:   n,
		Impurity:  mse,
		Feature:   split.Feature,
		Threshold: split.Threshold,
	}

	if b.sem == nil || n < parallelMinSamples || !b.sem.TryAcquire(1) {
		var err error
		if node.Left, err = b.build(split.Left, depth+1); err != nil {
			return nil, err
		}
		if node.Right, err = b.build(split.Right, depth+1); err != nil {
			return nil, err
		}
		return node, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		defer b.sem.Release(1)
		return errors.SafeExecute("tree.build", func() (err error) {
			node.Left, err = b.build(split.Left, depth+1)
			return err
		})
	})
	right, err := b.build(split.Right, depth+1)
	if werr := g.Wait(); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	node.Right = right
	return node, nil
}

// Fit grows a regression tree on X (rows × features) and the n×1 target y.
func Fit(X, y *mat.Dense, cfg Config) (*Tree, error) {
	if X == nil || y == nil {
		return nil, errors.NewModelError("tree.Fit", "empty data", errors.ErrEmptyData)
	}
	target, err := targetValues("tree.Fit", y)
	if err != nil {
		return nil, err
	}
	return fit(X, target, cfg)
}

func fit(X mat.Matrix, y []float64, cfg Config) (*Tree, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError("tree.Fit", "empty data", errors.ErrEmptyData)
	}
	if len(y) != rows {
		return nil, errors.NewDimensionError("tree.Fit", rows, len(y), 0)
	}
	if err := errors.CheckMatrix("fit_features", X, rows, cols); err != nil {
		return nil, err
	}
	if err := errors.CheckNumericalStability("fit_target", y); err != nil {
		return nil, err
	}

	data := &samples{
		x:    rowMajor(X, rows, cols),
		y:    y,
		rows: rows,
		cols: cols,
	}
	if cfg.Presort {
		data.presort()
	}

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}

	root, err := newBuilder(data, cfg).build(indices, 0)
	if err != nil {
		return nil, err
	}
	return &Tree{Root: root, NFeatures: cols, Config: cfg}, nil
}

// targetValues copies an n×1 matrix into a slice.
func targetValues(op string, y mat.Matrix) ([]float64, error) {
	if y == nil {
		return nil, errors.NewModelError(op, "empty target", errors.ErrEmptyData)
	}
	rows, cols := y.Dims()
	if rows == 0 || cols == 0 {
		return nil, errors.NewModelError(op, "empty target", errors.ErrEmptyData)
	}
	if cols != 1 {
		return nil, errors.NewDimensionError(op, 1, cols, 1)
	}
	values := make([]float64, rows)
	for i := range values {
		values[i] = y.At(i, 0)
	}
	return values, nil
}

// rowMajor copies X into a contiguous row-major slice.
func rowMajor(X mat.Matrix, rows, cols int) []float64 {
	out := make([]float64, rows*cols)
	if d, ok := X.(*mat.Dense); ok {
		raw := d.RawMatrix()
		for i := 0; i < rows; i++ {
			copy(out[i*cols:(i+1)*cols], raw.Data[i*raw.Stride:i*raw.Stride+cols])
		}
		return out
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = X.At(i, j)
		}
	}
	return out
}
