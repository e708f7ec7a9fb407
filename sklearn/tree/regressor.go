package tree

import (
	"fmt"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/scitree/core/model"
	"github.com/YuminosukeSato/scitree/core/parallel"
	"github.com/YuminosukeSato/scitree/metrics"
	"github.com/YuminosukeSato/scitree/pkg/errors"
	"github.com/YuminosukeSato/scitree/pkg/log"
)

// predictParallelThreshold は並列予測に切り替える行数
const predictParallelThreshold = 1000

var (
	_ model.Regressor       = (*DecisionTreeRegressor)(nil)
	_ model.ParameterGetter = (*DecisionTreeRegressor)(nil)
	_ model.ParameterSetter = (*DecisionTreeRegressor)(nil)
)

// DecisionTreeRegressor は二乗誤差を最小化する回帰木
// scikit-learn の DecisionTreeRegressor と同じ使い方ができる
type DecisionTreeRegressor struct {
	model.BaseEstimator

	cfg    Config
	tree   *Tree
	logger log.Logger
}

// NewDecisionTreeRegressor は新しい回帰木を作成する
//
// 使用例:
//
//	reg := tree.NewDecisionTreeRegressor(
//	    tree.WithMaxDepth(5),
//	    tree.WithMinSamplesSplit(2),
//	)
//	if err := reg.Fit(X, y); err != nil {
//	    return err
//	}
//	pred, err := reg.Predict(XTest)
func NewDecisionTreeRegressor(opts ...Option) *DecisionTreeRegressor {
	r := &DecisionTreeRegressor{cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.GetLoggerWithName("tree").With(log.ModelNameKey, "DecisionTreeRegressor")
	}
	return r
}

// FromTree は学習済みの木を包んだ回帰木を返す（保存済みモデルの復元用）
func FromTree(t *Tree, opts ...Option) *DecisionTreeRegressor {
	r := NewDecisionTreeRegressor(append([]Option{WithConfig(t.Config)}, opts...)...)
	r.tree = t
	r.SetFitted()
	return r
}

// Fit は訓練データで木を学習する
// y は n×1 の行列
func (r *DecisionTreeRegressor) Fit(X, y mat.Matrix) (err error) {
	defer errors.Recover(&err, "DecisionTreeRegressor.Fit")

	r.Reset()
	r.tree = nil

	if X == nil || y == nil {
		return errors.NewModelError("DecisionTreeRegressor.Fit", "empty data", errors.ErrEmptyData)
	}
	target, err := targetValues("DecisionTreeRegressor.Fit", y)
	if err != nil {
		return err
	}

	rows, cols := X.Dims()
	r.logger.Debug("Training started",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.MaxDepthKey, r.cfg.MaxDepth,
		log.MinSamplesSplitKey, r.cfg.MinSamplesSplit,
	)
	start := time.Now()

	t, err := fit(X, target, r.cfg)
	if err != nil {
		r.logger.Error("Training failed", err, log.OperationKey, log.OperationFit)
		return err
	}

	r.tree = t
	r.SetFitted()

	r.logger.Debug("Training completed",
		log.OperationKey, log.OperationFit,
		log.DepthKey, t.Depth(),
		log.LeavesKey, t.NLeaves(),
		log.NodesKey, t.NNodes(),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if t.Root.IsLeaf() && r.cfg.MaxDepth > 0 {
		errors.Warn(errors.NewDegenerateTreeWarning(rows, r.cfg.MaxDepth, r.cfg.MinSamplesSplit, degenerateReason(t.Root, r.cfg)))
	}
	return nil
}

func degenerateReason(root *Node, cfg Config) string {
	switch {
	case root.Samples < 2*cfg.MinSamplesSplit:
		return "too few samples to split"
	case root.Impurity < cfg.MinMSE:
		return "target is constant"
	default:
		return "no split reduces the squared error"
	}
}

// Predict は各行の予測値を n×1 の行列で返す
func (r *DecisionTreeRegressor) Predict(X mat.Matrix) (mat.Matrix, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "Predict")
	}
	if X == nil {
		return nil, errors.NewModelError("DecisionTreeRegressor.Predict", "empty data", errors.ErrEmptyData)
	}

	rows, cols := X.Dims()
	if rows == 0 {
		return nil, errors.NewModelError("DecisionTreeRegressor.Predict", "empty data", errors.ErrEmptyData)
	}
	if cols != r.tree.NFeatures {
		return nil, errors.NewDimensionError("DecisionTreeRegressor.Predict", r.tree.NFeatures, cols, 1)
	}

	predictions := mat.NewDense(rows, 1, nil)
	var (
		mu       sync.Mutex
		firstErr error
	)
	parallel.ParallelizeWithThreshold(rows, predictParallelThreshold, parallel.Workers(r.cfg.NJobs), func(start, end int) {
		x := make([]float64, cols)
		for i := start; i < end; i++ {
			mat.Row(x, i, X)
			v, err := r.tree.PredictOne(x)
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}
			predictions.Set(i, 0, v)
		}
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return predictions, nil
}

// PredictOne は1サンプルの予測値を返す
// 辿った経路上の特徴量だけを参照する
func (r *DecisionTreeRegressor) PredictOne(x []float64) (float64, error) {
	if !r.IsFitted() {
		return 0, errors.NewNotFittedError("DecisionTreeRegressor", "PredictOne")
	}
	return r.tree.PredictOne(x)
}

// Score は決定係数（R²）を返す
func (r *DecisionTreeRegressor) Score(X, y mat.Matrix) (float64, error) {
	pred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	yTrue, err := metrics.ColumnVector("DecisionTreeRegressor.Score", y)
	if err != nil {
		return 0, err
	}
	yPred, err := metrics.ColumnVector("DecisionTreeRegressor.Score", pred)
	if err != nil {
		return 0, err
	}
	return metrics.R2Score(yTrue, yPred)
}

// Tree は学習済みの木を返す（未学習なら nil）
func (r *DecisionTreeRegressor) Tree() *Tree {
	return r.tree
}

// Config は現在のハイパーパラメータを返す
func (r *DecisionTreeRegressor) Config() Config {
	return r.cfg
}

// FeatureImportances は特徴量ごとの正規化された重要度を返す
func (r *DecisionTreeRegressor) FeatureImportances() ([]float64, error) {
	if !r.IsFitted() {
		return nil, errors.NewNotFittedError("DecisionTreeRegressor", "FeatureImportances")
	}
	return r.tree.FeatureImportances(), nil
}

// String はモデルの概要を返す
func (r *DecisionTreeRegressor) String() string {
	if !r.IsFitted() {
		return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, min_samples_split=%d)",
			r.cfg.MaxDepth, r.cfg.MinSamplesSplit)
	}
	return fmt.Sprintf("DecisionTreeRegressor(max_depth=%d, min_samples_split=%d, depth=%d, leaves=%d)",
		r.cfg.MaxDepth, r.cfg.MinSamplesSplit, r.tree.Depth(), r.tree.NLeaves())
}
