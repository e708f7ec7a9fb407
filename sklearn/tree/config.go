package tree

import (
	"math"

	"github.com/YuminosukeSato/scitree/pkg/errors"
)

// Default hyper-parameters.
const (
	DefaultMaxDepth        = 10
	DefaultMinSamplesSplit = 5
	DefaultMinMSE          = 1e-6
)

// Config holds the hyper-parameters of a regression tree. A Config is
// copied into the tree at Fit time and never mutated afterwards.
type Config struct {
	// MaxDepth is the depth at which nodes are forced to be leaves.
	// 0 yields a single-leaf tree.
	MaxDepth int `json:"max_depth"`

	// MinSamplesSplit is the minimum number of rows on each side of a
	// split. A node with fewer than 2*MinSamplesSplit rows becomes a leaf.
	MinSamplesSplit int `json:"min_samples_split"`

	// MinMSE stops splitting once the node MSE falls below it. 0 disables
	// the rule.
	MinMSE float64 `json:"min_mse"`

	// MinGain is the SSE reduction a split must strictly exceed.
	MinGain float64 `json:"min_gain"`

	// Presort sorts every feature once per Fit and filters the global
	// order at each node instead of sorting the node's rows.
	Presort bool `json:"presort"`

	// NJobs bounds the number of subtrees built concurrently.
	// 1 builds sequentially, values <= 0 use every CPU.
	NJobs int `json:"n_jobs"`
}

// DefaultConfig returns the configuration used by NewDecisionTreeRegressor.
func DefaultConfig() Config {
	return Config{
		MaxDepth:        DefaultMaxDepth,
		MinSamplesSplit: DefaultMinSamplesSplit,
		MinMSE:          DefaultMinMSE,
		NJobs:           1,
	}
}

// Validate reports the first invalid hyper-parameter as a ValidationError.
func (c Config) Validate() error {
	if c.MaxDepth < 0 {
		return errors.NewValidationError("max_depth", "must be non-negative", c.MaxDepth)
	}
	if c.MinSamplesSplit < 1 {
		return errors.NewValidationError("min_samples_split", "must be at least 1", c.MinSamplesSplit)
	}
	if c.MinMSE < 0 || math.IsNaN(c.MinMSE) {
		return errors.NewValidationError("min_mse", "must be a non-negative number", c.MinMSE)
	}
	if c.MinGain < 0 || math.IsNaN(c.MinGain) {
		return errors.NewValidationError("min_gain", "must be a non-negative number", c.MinGain)
	}
	return nil
}
