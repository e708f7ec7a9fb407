// Standard attribute keys for logging scitree operations.
//
// Keys follow a hierarchical naming convention (e.g. "model.name",
// "data.samples") so that logs can be filtered by category.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the type of model, e.g. "DecisionTreeRegressor".
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "score", "save", "load"
	OperationKey = "ml.operation"

	// ComponentKey identifies which component is logging, e.g. "tree", "modelstore".
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the model lifecycle.
	PhaseKey = "ml.phase"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// DataSizeKey indicates a payload size in bytes.
	DataSizeKey = "data.size_bytes"

	// SourceKey names where a dataset or model was read from.
	SourceKey = "data.source"
)

// Tree Structure
const (
	// DepthKey records the depth of a fitted tree.
	DepthKey = "tree.depth"

	// LeavesKey records the number of leaves of a fitted tree.
	LeavesKey = "tree.leaves"

	// NodesKey records the total number of nodes of a fitted tree.
	NodesKey = "tree.nodes"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records a loss value such as MSE or RMSE.
	LossKey = "metrics.loss"

	// R2ScoreKey records the R² coefficient of determination.
	R2ScoreKey = "metrics.r2_score"
)

// Hyperparameters and Configuration
const (
	// MaxDepthKey records the max_depth hyperparameter.
	MaxDepthKey = "hyperparams.max_depth"

	// MinSamplesSplitKey records the min_samples_split hyperparameter.
	MinSamplesSplitKey = "hyperparams.min_samples_split"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationFit     = "fit"
	OperationPredict = "predict"
	OperationScore   = "score"
	OperationSave    = "save"
	OperationLoad    = "load"

	PhaseTraining   = "training"
	PhaseTesting    = "testing"
	PhaseInference  = "inference"
	PhaseValidation = "validation"
)
