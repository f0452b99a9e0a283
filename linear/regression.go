// Package linear は切片なしの線形回帰モデル LinReg と、その数値計算
// （FitOLS / FitRidge / PredictOLS）を提供します。
package linear

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/metrics"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// ModelName はレジストリ上の LinReg の名前
const ModelName = "LinReg"

// LinReg は擬似逆行列による線形回帰モデル（切片なし、多出力対応）
//
// パラメータ:
//   - shrink: L2 正則化の強さ（0 以上、デフォルト 0 = 最小二乗法）
//
// 学習済み属性:
//   - Coef(): 特徴量 × 目的変数 の係数表
//
// 使用例:
//
//	reg, err := linear.NewLinReg(linear.WithShrink(0.1))
//	if err != nil {
//	    return err
//	}
//	if err := reg.Fit(X, y); err != nil {
//	    return err
//	}
//	yPred, err := reg.Predict(Xtest)
type LinReg struct {
	*model.BaseRegressor

	shrink float64
	coef   *Coef
}

var (
	_ model.Regressor      = (*LinReg)(nil)
	_ model.Scorer         = (*LinReg)(nil)
	_ model.WeightExporter = (*LinReg)(nil)
)

// NewLinReg は新しい線形回帰モデルを作成する。shrink が負の場合は ValidationError を返す。
func NewLinReg(opts ...Option) (*LinReg, error) {
	r := &LinReg{}
	r.BaseRegressor = model.NewBaseRegressor(ModelName, r)
	for _, opt := range opts {
		opt(r)
	}
	if err := validateShrink(r.shrink); err != nil {
		return nil, err
	}
	return r, nil
}

func validateShrink(shrink float64) error {
	if shrink < 0 || math.IsNaN(shrink) || math.IsInf(shrink, 0) {
		return errors.NewValidationError("shrink", "must be a finite number >= 0", shrink)
	}
	return nil
}

// FitFrame は係数を求める（BaseRegressor.Fit から呼ばれる）
func (r *LinReg) FitFrame(X, y *frame.Frame) error {
	coef, err := FitRidge(X, y, r.shrink)
	if err != nil {
		return errors.Wrap(err, "LinReg.Fit")
	}
	r.coef = coef
	return nil
}

// PredictFrame は X · beta を返す（BaseRegressor.Predict から呼ばれる）
func (r *LinReg) PredictFrame(X *frame.Frame) (*mat.Dense, error) {
	_, t := r.coef.Beta.Dims()
	out := mat.NewDense(X.Len(), t, nil)
	out.Mul(X.RawDense(), r.coef.Beta)
	return out, nil
}

// Shrink は L2 正則化の強さを返す
func (r *LinReg) Shrink() float64 {
	return r.shrink
}

// Coef は学習済みの係数表のコピーを返す
func (r *LinReg) Coef() (*Coef, error) {
	if err := r.RequireFitted(ModelName, "Coef"); err != nil {
		return nil, err
	}
	return &Coef{
		Features: append([]string(nil), r.coef.Features...),
		Targets:  append([]string(nil), r.coef.Targets...),
		Beta:     mat.DenseCopyOf(r.coef.Beta),
	}, nil
}

// Score はモデルの決定係数（R²）を計算する。多出力の場合は列平均。
func (r *LinReg) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := r.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// GetParams はハイパーパラメータを返す
func (r *LinReg) GetParams(deep bool) map[string]interface{} {
	return map[string]interface{}{"shrink": r.shrink}
}

// SetParams はハイパーパラメータを設定し、学習状態をリセットする
func (r *LinReg) SetParams(params map[string]interface{}) error {
	shrink := r.shrink
	for name, value := range params {
		switch name {
		case "shrink":
			v, err := model.ParamFloat(name, value)
			if err != nil {
				return err
			}
			shrink = v
		default:
			return model.UnknownParam(ModelName, name, []string{"shrink"})
		}
	}
	if err := validateShrink(shrink); err != nil {
		return err
	}
	r.shrink = shrink
	r.coef = nil
	r.Reset()
	return nil
}

// Clone は同じハイパーパラメータを持つ未学習のモデルを返す
func (r *LinReg) Clone() model.Estimator {
	clone, err := NewLinReg(WithShrink(r.shrink))
	if err != nil {
		// shrink は構築時と SetParams で検証済み
		panic(err)
	}
	r.CopyConfigTo(clone.BaseRegressor)
	return clone
}

// Tags は推定器クラスのタグを返す
func (r *LinReg) Tags() model.Tags {
	return model.RegressorTags().Merge(model.Tags{model.TagRegressorType: "linear"})
}

func (r *LinReg) String() string {
	return model.FormatRepr(ModelName, r.GetParams(false))
}

// ExportWeights は学習済みパラメータをエクスポートする
func (r *LinReg) ExportWeights() (*model.ModelWeights, error) {
	if err := r.RequireFitted(ModelName, "ExportWeights"); err != nil {
		return nil, err
	}
	w := model.NewModelWeights(ModelName, r.GetParams(false))
	w.FeatureNames = r.FeatureNames()
	w.TargetNames = r.TargetNames()
	w.SetAttribute("beta", r.coef.Beta)
	_, nSamples := r.GetDimensions()
	w.Metadata["n_samples"] = nSamples
	w.IsFitted = true
	return w, nil
}

// ImportWeights はエクスポートされたパラメータから学習済み状態を復元する
func (r *LinReg) ImportWeights(w *model.ModelWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != ModelName {
		return errors.NewValidationError("model_type", "expected "+ModelName, w.ModelType)
	}
	if err := r.SetParams(w.Hyperparameters); err != nil {
		return err
	}
	if !w.IsFitted {
		return nil
	}

	beta, err := w.Attribute("beta")
	if err != nil {
		return err
	}
	rows, cols := beta.Dims()
	if rows != len(w.FeatureNames) {
		return errors.NewDimensionError("LinReg.ImportWeights", len(w.FeatureNames), rows, 0)
	}
	if cols != len(w.TargetNames) {
		return errors.NewDimensionError("LinReg.ImportWeights", len(w.TargetNames), cols, 1)
	}

	nSamples := 0
	if v, ok := w.Metadata["n_samples"]; ok {
		if f, err := model.ParamFloat("n_samples", v); err == nil {
			nSamples = int(f)
		}
	}
	r.coef = &Coef{
		Features: append([]string(nil), w.FeatureNames...),
		Targets:  append([]string(nil), w.TargetNames...),
		Beta:     beta,
	}
	r.SetFitted(w.FeatureNames, w.TargetNames, nSamples)
	return nil
}

// TestParams は適合性テストで使うパラメータの組を返す
func (r *LinReg) TestParams() []map[string]interface{} {
	return []map[string]interface{}{{"shrink": 0.0}, {"shrink": 0.5}}
}
