// Package log defines standard attribute keys for estimator operations.
//
// Using the same keys everywhere keeps fit / predict / transform records
// filterable across estimators ("model.name", "ml.operation", "data.samples").

package log

// Model and operation context.
const (
	// ModelNameKey identifies the estimator class, e.g. "LinReg", "Scaler".
	ModelNameKey = "model.name"

	// EstimatorIDKey identifies one estimator instance (a uuid).
	EstimatorIDKey = "estimator.id"

	// OperationKey is one of the Operation* values below.
	OperationKey = "ml.operation"

	// ComponentKey names the package doing the work: "linear", "pipeline", ...
	ComponentKey = "ml.component"

	// StepKey names a pipeline step.
	StepKey = "pipeline.step"
)

// Data shape.
const (
	SamplesKey  = "data.samples"
	FeaturesKey = "data.features"
	TargetsKey  = "data.targets"
)

// Performance and scores.
const (
	DurationMsKey = "perf.duration_ms"
	R2ScoreKey    = "metrics.r2_score"
	MSEKey        = "metrics.mse"
)

// Error context.
const (
	ErrorCodeKey  = "error.code"
	ErrorTypeKey  = "error.type"
	StacktraceKey = "error.stacktrace"
)

// Hyperparameters and configuration.
const (
	HyperParamsKey = "model.hyperparams"
	ReturnTypeKey  = "config.return_type"
)

// Standard attribute values.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationScore        = "score"
	OperationCheck        = "check"

	ErrorNotFitted         = "NOT_FITTED"
	ErrorDimensionMismatch = "DIMENSION_MISMATCH"
	ErrorColumnMismatch    = "COLUMN_MISMATCH"
	ErrorEmptyData         = "EMPTY_DATA"
	ErrorInvalidInput      = "INVALID_INPUT"
)
