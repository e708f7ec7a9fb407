package tree

import (
	"math"

	"github.com/YuminosukeSato/scitree/pkg/errors"
	"github.com/YuminosukeSato/scitree/pkg/log"
)

// Option は DecisionTreeRegressor の設定オプション
type Option func(*DecisionTreeRegressor)

// WithMaxDepth は木の最大深さを設定（0 で単一の葉）
func WithMaxDepth(depth int) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg.MaxDepth = depth
	}
}

// WithMinSamplesSplit は分割の各側に必要な最小サンプル数を設定
func WithMinSamplesSplit(n int) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg.MinSamplesSplit = n
	}
}

// WithMinMSE はノードを葉にするMSEの閾値を設定（0 で無効）
func WithMinMSE(mse float64) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg.MinMSE = mse
	}
}

// WithMinGain は分割が上回るべき二乗誤差の減少量を設定
func WithMinGain(gain float64) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg.MinGain = gain
	}
}

// WithPresort は特徴量ごとの事前ソートを有効にする
func WithPresort(presort bool) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg.Presort = presort
	}
}

// WithNJobs は並列ジョブ数を設定（0 以下で全CPU）
func WithNJobs(n int) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg.NJobs = n
	}
}

// WithLogger はロガーを差し替える
func WithLogger(logger log.Logger) Option {
	return func(r *DecisionTreeRegressor) {
		r.logger = logger
	}
}

// WithConfig は設定をまとめて置き換える
func WithConfig(cfg Config) Option {
	return func(r *DecisionTreeRegressor) {
		r.cfg = cfg
	}
}

// GetParams はハイパーパラメータを scikit-learn の名前で返す
func (r *DecisionTreeRegressor) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"max_depth":         r.cfg.MaxDepth,
		"min_samples_split": r.cfg.MinSamplesSplit,
		"min_mse":           r.cfg.MinMSE,
		"min_gain":          r.cfg.MinGain,
		"presort":           r.cfg.Presort,
		"n_jobs":            r.cfg.NJobs,
	}
}

// SetParams はハイパーパラメータを設定する
// 変更は次の Fit から有効になり、学習済みの木はそのまま残る
func (r *DecisionTreeRegressor) SetParams(params map[string]interface{}) error {
	cfg := r.cfg
	for name, value := range params {
		var err error
		switch name {
		case "max_depth":
			cfg.MaxDepth, err = intParam(name, value)
		case "min_samples_split":
			cfg.MinSamplesSplit, err = intParam(name, value)
		case "n_jobs":
			cfg.NJobs, err = intParam(name, value)
		case "min_mse":
			cfg.MinMSE, err = floatParam(name, value)
		case "min_gain":
			cfg.MinGain, err = floatParam(name, value)
		case "presort":
			b, ok := value.(bool)
			if !ok {
				err = errors.NewValidationError(name, "must be a bool", value)
			}
			cfg.Presort = b
		default:
			err = errors.NewValidationError(name, "unknown parameter", value)
		}
		if err != nil {
			return err
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg = cfg
	return nil
}

// intParam accepts Go integers and integral float64 values as decoded from JSON.
func intParam(name string, value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v == math.Trunc(v) {
			return int(v), nil
		}
	}
	return 0, errors.NewValidationError(name, "must be an integer", value)
}

func floatParam(name string, value interface{}) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	}
	return 0, errors.NewValidationError(name, "must be a number", value)
}
