package model

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
)

// RegressorImpl は回帰器固有の学習・予測処理
type RegressorImpl interface {
	// FitFrame は検査済みの X, y で学習する。行数は一致している
	FitFrame(X, y *frame.Frame) error

	// PredictFrame は検査済みの X（列ラベルは学習時と同一）に対して
	// 行数 = X の行数、列数 = 学習時の y の列数 の予測値を返す
	PredictFrame(X *frame.Frame) (*mat.Dense, error)
}

// TransformerImpl は変換器固有の学習・変換処理
type TransformerImpl interface {
	// FitFrame は検査済みの X で学習する
	FitFrame(X *frame.Frame) error

	// TransformFrame は検査済みの X を変換する。行数と行ラベルは保持する
	TransformFrame(X *frame.Frame) (*frame.Frame, error)
}

// BaseRegressor は回帰器の共通処理（入力検査、学習状態、出力形式、ログ）。
// 具体的な回帰器はポインタとして埋め込む:
//
//	type LinReg struct {
//	    *model.BaseRegressor
//	    shrink float64
//	}
//
//	func NewLinReg() *LinReg {
//	    r := &LinReg{}
//	    r.BaseRegressor = model.NewBaseRegressor("LinReg", r)
//	    return r
//	}
type BaseRegressor struct {
	*StateManager
	configHolder

	name string
	impl RegressorImpl
}

// NewBaseRegressor は impl に学習・予測を委譲する BaseRegressor を作成する
func NewBaseRegressor(name string, impl RegressorImpl) *BaseRegressor {
	return &BaseRegressor{
		StateManager: NewStateManager(),
		name:         name,
		impl:         impl,
	}
}

// Name は推定器のクラス名を返す
func (b *BaseRegressor) Name() string {
	return b.name
}

// CopyConfigTo は推定器ごとの設定上書きを other に引き継ぐ（Clone用）
func (b *BaseRegressor) CopyConfigTo(other *BaseRegressor) {
	b.copyConfigTo(&other.configHolder)
}

func (b *BaseRegressor) logger() log.Logger {
	return log.GetLoggerWithName(b.name).With(
		log.ModelNameKey, b.name,
		log.EstimatorIDKey, b.ID(),
	)
}

// Fit は X, y で学習する。行数が異なる場合は DimensionError を返す。
// 学習に失敗した場合、推定器は未学習の状態になる。
func (b *BaseRegressor) Fit(X, y mat.Matrix) (err error) {
	op := b.name + ".Fit"
	defer errors.Recover(&err, op)
	start := time.Now()

	xf, err := frame.FromMatrix(X)
	if err != nil {
		return errors.Wrapf(err, "%s: X", op)
	}
	yf, err := frame.FromMatrix(y)
	if err != nil {
		return errors.Wrapf(err, "%s: y", op)
	}
	if xf.Len() != yf.Len() {
		return errors.NewDimensionError(op, xf.Len(), yf.Len(), 0)
	}

	logger := b.logger()
	logger.Debug("fit started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, xf.Len(),
		log.FeaturesKey, xf.Width(),
		log.TargetsKey, yf.Width(),
	)

	b.Reset()
	if err := b.impl.FitFrame(xf, yf); err != nil {
		logger.Debug("fit failed", log.OperationKey, log.OperationFit, "error", err)
		return err
	}
	b.SetFitted(xf.Columns(), yf.Columns(), xf.Len())

	logger.Debug("fit finished",
		log.OperationKey, log.OperationFit,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}

// Predict は X に対する予測を返す。未学習の場合は NotFittedError、
// 列ラベルが学習時と異なる場合は ColumnMismatchError を返す。
// 出力は X の行ラベルと学習時の y の列ラベルを持つ。
func (b *BaseRegressor) Predict(X mat.Matrix) (_ mat.Matrix, err error) {
	op := b.name + ".Predict"
	defer errors.Recover(&err, op)

	xf, err := b.CheckInput(X, "Predict")
	if err != nil {
		return nil, err
	}

	b.logger().Debug("predict",
		log.OperationKey, log.OperationPredict,
		log.SamplesKey, xf.Len(),
	)

	out, err := b.impl.PredictFrame(xf)
	if err != nil {
		return nil, err
	}
	targets := b.TargetNames()
	r, c := out.Dims()
	if r != xf.Len() {
		return nil, errors.NewDimensionError(op, xf.Len(), r, 0)
	}
	if c != len(targets) {
		return nil, errors.NewDimensionError(op, len(targets), c, 1)
	}

	yf, err := frame.New(out, targets, xf.Index())
	if err != nil {
		return nil, errors.Wrap(err, op)
	}
	return Render(yf, b.GetConfig())
}

// CheckInput は学習済みであることと X の列ラベルを検査し、X を Frame として返す
func (b *BaseRegressor) CheckInput(X mat.Matrix, method string) (*frame.Frame, error) {
	op := b.name + "." + method
	if err := b.RequireFitted(b.name, method); err != nil {
		return nil, err
	}
	xf, err := frame.FromMatrix(X)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: X", op)
	}
	if expected := b.FeatureNames(); !frame.ColumnsEqual(expected, xf.Columns()) {
		return nil, errors.NewColumnMismatchError(op, expected, xf.Columns())
	}
	return xf, nil
}

// BaseTransformer は変換器の共通処理。BaseRegressor と同様に埋め込んで使う。
type BaseTransformer struct {
	*StateManager
	configHolder

	name string
	impl TransformerImpl
}

// NewBaseTransformer は impl に学習・変換を委譲する BaseTransformer を作成する
func NewBaseTransformer(name string, impl TransformerImpl) *BaseTransformer {
	return &BaseTransformer{
		StateManager: NewStateManager(),
		name:         name,
		impl:         impl,
	}
}

// Name は推定器のクラス名を返す
func (b *BaseTransformer) Name() string {
	return b.name
}

// CopyConfigTo は推定器ごとの設定上書きを other に引き継ぐ（Clone用）
func (b *BaseTransformer) CopyConfigTo(other *BaseTransformer) {
	b.copyConfigTo(&other.configHolder)
}

func (b *BaseTransformer) logger() log.Logger {
	return log.GetLoggerWithName(b.name).With(
		log.ModelNameKey, b.name,
		log.EstimatorIDKey, b.ID(),
	)
}

// Fit は X で変換パラメータを学習する
func (b *BaseTransformer) Fit(X mat.Matrix) (err error) {
	op := b.name + ".Fit"
	defer errors.Recover(&err, op)

	xf, err := frame.FromMatrix(X)
	if err != nil {
		return errors.Wrapf(err, "%s: X", op)
	}

	logger := b.logger()
	logger.Debug("fit started",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, xf.Len(),
		log.FeaturesKey, xf.Width(),
	)

	b.Reset()
	if err := b.impl.FitFrame(xf); err != nil {
		logger.Debug("fit failed", log.OperationKey, log.OperationFit, "error", err)
		return err
	}
	b.SetFitted(xf.Columns(), nil, xf.Len())
	return nil
}

// Transform は X を変換する。検査は BaseRegressor.Predict と同じ
func (b *BaseTransformer) Transform(X mat.Matrix) (_ mat.Matrix, err error) {
	op := b.name + ".Transform"
	defer errors.Recover(&err, op)

	xf, err := b.CheckInput(X, "Transform")
	if err != nil {
		return nil, err
	}

	b.logger().Debug("transform",
		log.OperationKey, log.OperationTransform,
		log.SamplesKey, xf.Len(),
	)

	out, err := b.impl.TransformFrame(xf)
	if err != nil {
		return nil, err
	}
	if out.Len() != xf.Len() {
		return nil, errors.NewDimensionError(op, xf.Len(), out.Len(), 0)
	}
	return Render(out, b.GetConfig())
}

// FitTransform は Fit の後に同じ X で Transform を行う
func (b *BaseTransformer) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := b.Fit(X); err != nil {
		return nil, err
	}
	return b.Transform(X)
}

// CheckInput は学習済みであることと X の列ラベルを検査し、X を Frame として返す
func (b *BaseTransformer) CheckInput(X mat.Matrix, method string) (*frame.Frame, error) {
	op := b.name + "." + method
	if err := b.RequireFitted(b.name, method); err != nil {
		return nil, err
	}
	xf, err := frame.FromMatrix(X)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: X", op)
	}
	if expected := b.FeatureNames(); !frame.ColumnsEqual(expected, xf.Columns()) {
		return nil, errors.NewColumnMismatchError(op, expected, xf.Columns())
	}
	return xf, nil
}

// Render は設定に従って出力を Frame または *mat.Dense で返す
func Render(f *frame.Frame, c Config) (mat.Matrix, error) {
	switch c.ReturnType {
	case ReturnFrame:
		return f, nil
	case ReturnMatrix:
		return f.Dense(), nil
	default:
		return nil, errors.NewValueError("Render",
			fmt.Sprintf("return_type must be one of %q or %q, but found %q", ReturnFrame, ReturnMatrix, c.ReturnType))
	}
}
