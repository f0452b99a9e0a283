// Package pipeline は変換器と1つの回帰器を連結する RegressorPipeline を提供します。
package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/metrics"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
	"github.com/YuminosukeSato/minisk/registry"
)

// ModelName はレジストリ上の名前
const ModelName = "RegressorPipeline"

// Step はパイプラインの名前付き要素
type Step struct {
	Name      string
	Estimator model.Estimator
}

// RegressorPipeline は変換器と1つの回帰器を順に適用する回帰器です。
//
// Fit は回帰器より前の変換器を X に順番に FitTransform し、その結果で回帰器を学習します。
// 回帰器より後の変換器は回帰器の学習データ上の予測値で学習します。
// Predict は学習済みのステップを同じ順序で適用します。
//
// パイプラインは渡された推定器のクローンを保持するため、呼び出し側の推定器は変更されません。
type RegressorPipeline struct {
	*model.BaseRegressor

	steps    []Step
	fitted   []Step
	regIndex int
}

var (
	_ model.Regressor          = (*RegressorPipeline)(nil)
	_ model.Scorer             = (*RegressorPipeline)(nil)
	_ model.Composite          = (*RegressorPipeline)(nil)
	_ model.WeightExporter     = (*RegressorPipeline)(nil)
	_ model.TestParamsProvider = (*RegressorPipeline)(nil)
)

// NewRegressorPipeline はステップを検証し、未学習のパイプラインを作成します。
//
// 空のステップ名は推定器名になり、重複した名前には "_1", "_2", ... が付きます。
// 各推定器は model.Regressor か model.Transformer でなければならず（違反時は ValidationError）、
// 回帰器はちょうど1つでなければなりません（違反時は ValueError）。
func NewRegressorPipeline(steps []Step) (*RegressorPipeline, error) {
	p := &RegressorPipeline{}
	p.BaseRegressor = model.NewBaseRegressor(ModelName, p)
	if err := p.setSteps(steps); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *RegressorPipeline) setSteps(steps []Step) error {
	cloned, regIndex, err := validateSteps(steps)
	if err != nil {
		return err
	}
	p.steps = cloned
	p.regIndex = regIndex
	p.fitted = nil
	p.Reset()
	return nil
}

// validateSteps はステップを検証し、一意な名前を付けたクローンと回帰器の位置を返す
func validateSteps(steps []Step) ([]Step, int, error) {
	const op = "RegressorPipeline"
	if len(steps) == 0 {
		return nil, 0, errors.NewValueError(op, "steps must not be empty")
	}

	names := make([]string, len(steps))
	for i, s := range steps {
		if s.Estimator == nil {
			return nil, 0, errors.NewValidationError("steps", "estimator is nil", s.Name)
		}
		switch s.Estimator.(type) {
		case model.Regressor, model.Transformer:
		default:
			return nil, 0, errors.NewValidationError("steps",
				"estimator must be a regressor or a transformer", fmt.Sprintf("%s (%T)", s.Name, s.Estimator))
		}
		names[i] = s.Name
		if names[i] == "" {
			names[i] = s.Estimator.Name()
		}
		if strings.Contains(names[i], "__") {
			return nil, 0, errors.NewValidationError("steps", "step names must not contain \"__\"", names[i])
		}
	}
	names = uniqueNames(names)

	regIndex := -1
	var regressors []string
	cloned := make([]Step, len(steps))
	for i, s := range steps {
		if _, ok := s.Estimator.(model.Regressor); ok {
			regressors = append(regressors, names[i])
			regIndex = i
		}
		cloned[i] = Step{Name: names[i], Estimator: s.Estimator.Clone()}
	}
	if len(regressors) != 1 {
		return nil, 0, errors.NewValueError(op, fmt.Sprintf(
			"pipeline must contain exactly one regressor, but found %d: [%s]",
			len(regressors), strings.Join(regressors, ", ")))
	}
	return cloned, regIndex, nil
}

// chainConfig は学習済みステップの出力設定。プロセス既定値に関わらずステップ間は
// フレームで受け渡し、列ラベルを保つ。
var chainConfig = model.Config{ReturnType: model.ReturnFrame}

func withChainConfig(est model.Estimator) model.Estimator {
	if c, ok := est.(model.Configurable); ok {
		// chainConfig は常に妥当
		_ = c.SetConfig(chainConfig)
	}
	return est
}

// uniqueNames は重複した名前のすべての出現に _1, _2, ... を付ける
func uniqueNames(names []string) []string {
	count := make(map[string]int, len(names))
	for _, n := range names {
		count[n]++
	}
	seen := make(map[string]int, len(names))
	out := make([]string, len(names))
	for i, n := range names {
		if count[n] == 1 {
			out[i] = n
			continue
		}
		seen[n]++
		out[i] = fmt.Sprintf("%s_%d", n, seen[n])
	}
	return out
}

func (p *RegressorPipeline) logger() log.Logger {
	return log.GetLoggerWithName("Pipeline").With(log.ModelNameKey, ModelName, log.EstimatorIDKey, p.ID())
}

// FitFrame はステップの新しいクローンを学習する（BaseRegressor.Fit から呼ばれる）
func (p *RegressorPipeline) FitFrame(X, y *frame.Frame) error {
	logger := p.logger()
	fitted := make([]Step, len(p.steps))
	for i, s := range p.steps {
		fitted[i] = Step{Name: s.Name, Estimator: withChainConfig(s.Estimator.Clone())}
	}

	var Xt mat.Matrix = X
	for _, s := range fitted[:p.regIndex] {
		out, err := s.Estimator.(model.Transformer).FitTransform(Xt)
		if err != nil {
			return errors.Wrapf(err, "failed to fit step '%s'", s.Name)
		}
		logger.Debug("step fitted", log.StepKey, s.Name, log.OperationKey, log.OperationFitTransform)
		Xt = out
	}

	reg := fitted[p.regIndex]
	if err := reg.Estimator.(model.Regressor).Fit(Xt, y); err != nil {
		return errors.Wrapf(err, "failed to fit step '%s'", reg.Name)
	}
	logger.Debug("step fitted", log.StepKey, reg.Name, log.OperationKey, log.OperationFit)

	if p.regIndex < len(fitted)-1 {
		yt, err := reg.Estimator.(model.Regressor).Predict(Xt)
		if err != nil {
			return errors.Wrapf(err, "failed to predict at step '%s'", reg.Name)
		}
		for _, s := range fitted[p.regIndex+1:] {
			out, err := s.Estimator.(model.Transformer).FitTransform(yt)
			if err != nil {
				return errors.Wrapf(err, "failed to fit step '%s'", s.Name)
			}
			logger.Debug("step fitted", log.StepKey, s.Name, log.OperationKey, log.OperationFitTransform)
			yt = out
		}
	}

	p.fitted = fitted
	return nil
}

// PredictFrame は学習済みステップに X を通す（BaseRegressor.Predict から呼ばれる）
func (p *RegressorPipeline) PredictFrame(X *frame.Frame) (*mat.Dense, error) {
	var Xt mat.Matrix = X
	var err error
	for _, s := range p.fitted[:p.regIndex] {
		Xt, err = s.Estimator.(model.Transformer).Transform(Xt)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to transform at step '%s'", s.Name)
		}
	}

	reg := p.fitted[p.regIndex]
	yt, err := reg.Estimator.(model.Regressor).Predict(Xt)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to predict at step '%s'", reg.Name)
	}

	for _, s := range p.fitted[p.regIndex+1:] {
		yt, err = s.Estimator.(model.Transformer).Transform(yt)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to transform at step '%s'", s.Name)
		}
	}
	return mat.DenseCopyOf(yt), nil
}

// Steps は設定されたステップの未学習クローンを返す
func (p *RegressorPipeline) Steps() []Step {
	out := make([]Step, len(p.steps))
	for i, s := range p.steps {
		out[i] = Step{Name: s.Name, Estimator: s.Estimator.Clone()}
	}
	return out
}

// FittedSteps は学習済みステップを返す
func (p *RegressorPipeline) FittedSteps() ([]Step, error) {
	if err := p.RequireFitted(ModelName, "FittedSteps"); err != nil {
		return nil, err
	}
	return append([]Step(nil), p.fitted...), nil
}

// GetStep は名前でステップを返す。学習済みなら学習済みの推定器を返す
func (p *RegressorPipeline) GetStep(name string) (model.Estimator, error) {
	source := p.steps
	if p.IsFitted() {
		source = p.fitted
	}
	for _, s := range source {
		if s.Name == name {
			return s.Estimator, nil
		}
	}
	return nil, errors.NewValueError(ModelName+".GetStep", fmt.Sprintf("no step named %q", name))
}

// Regressor は回帰器ステップの名前を返す
func (p *RegressorPipeline) Regressor() string {
	return p.steps[p.regIndex].Name
}

// Components は model.Composite の実装
func (p *RegressorPipeline) Components() []model.NamedEstimator {
	source := p.steps
	if p.IsFitted() {
		source = p.fitted
	}
	out := make([]model.NamedEstimator, len(source))
	for i, s := range source {
		out[i] = model.NamedEstimator{Name: s.Name, Estimator: s.Estimator}
	}
	return out
}

// Score は予測の決定係数 R² を目的変数で平均して返す
func (p *RegressorPipeline) Score(X, y mat.Matrix) (float64, error) {
	yPred, err := p.Predict(X)
	if err != nil {
		return 0, err
	}
	return metrics.R2ScoreMatrix(y, yPred)
}

// GetParams は "steps" を返し、deep の場合は各ステップのパラメータを "<step>__<param>" として加える
func (p *RegressorPipeline) GetParams(deep bool) map[string]interface{} {
	params := map[string]interface{}{"steps": p.Steps()}
	if !deep {
		return params
	}
	for _, s := range p.steps {
		for k, v := range s.Estimator.GetParams(true) {
			params[s.Name+"__"+k] = v
		}
	}
	return params
}

// SetParams は "steps" ([]Step) と "<step>__<param>" を受け付ける。
// 更新は作業用のクローンに適用され、すべて成功した場合のみ反映してリセットする。
func (p *RegressorPipeline) SetParams(params map[string]interface{}) error {
	const op = ModelName + ".SetParams"

	var (
		work     []Step
		regIndex int
	)
	if v, ok := params["steps"]; ok {
		steps, ok := v.([]Step)
		if !ok {
			return errors.NewValidationError("steps", "must be []pipeline.Step", fmt.Sprintf("%T", v))
		}
		var err error
		if work, regIndex, err = validateSteps(steps); err != nil {
			return err
		}
	} else {
		work = make([]Step, len(p.steps))
		for i, s := range p.steps {
			work[i] = Step{Name: s.Name, Estimator: s.Estimator.Clone()}
		}
		regIndex = p.regIndex
	}

	nested := make(map[string]map[string]interface{})
	for key, value := range params {
		if key == "steps" {
			continue
		}
		stepName, param, ok := strings.Cut(key, "__")
		if !ok {
			return model.UnknownParam(ModelName, key, []string{"steps", "<step>__<param>"})
		}
		if nested[stepName] == nil {
			nested[stepName] = make(map[string]interface{})
		}
		nested[stepName][param] = value
	}

	stepNames := make([]string, 0, len(nested))
	for name := range nested {
		stepNames = append(stepNames, name)
	}
	sort.Strings(stepNames)
	for _, name := range stepNames {
		idx := -1
		for i, s := range work {
			if s.Name == name {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errors.NewValueError(op, fmt.Sprintf("no step named %q", name))
		}
		if err := work[idx].Estimator.SetParams(nested[name]); err != nil {
			return errors.Wrapf(err, "step '%s'", name)
		}
	}

	p.steps = work
	p.regIndex = regIndex
	p.fitted = nil
	p.Reset()
	return nil
}

// ExportWeights は学習済みの各ステップをコンポーネントとして順番にエクスポートする。
// 各ステップは model.WeightExporter を実装している必要がある。
func (p *RegressorPipeline) ExportWeights() (*model.ModelWeights, error) {
	if err := p.RequireFitted(ModelName, "ExportWeights"); err != nil {
		return nil, err
	}
	names := make([]interface{}, len(p.fitted))
	for i, s := range p.fitted {
		names[i] = s.Name
	}
	w := model.NewModelWeights(ModelName, map[string]interface{}{"steps": names})
	w.FeatureNames = p.FeatureNames()
	w.TargetNames = p.TargetNames()
	for _, s := range p.fitted {
		exporter, ok := s.Estimator.(model.WeightExporter)
		if !ok {
			return nil, errors.NewModelError(ModelName+".ExportWeights",
				fmt.Sprintf("step '%s' (%s) cannot export weights", s.Name, s.Estimator.Name()), nil)
		}
		cw, err := exporter.ExportWeights()
		if err != nil {
			return nil, errors.Wrapf(err, "step '%s'", s.Name)
		}
		w.Components = append(w.Components, model.ComponentWeights{Name: s.Name, Weights: cw})
	}
	_, nSamples := p.GetDimensions()
	w.Metadata["n_samples"] = nSamples
	w.IsFitted = true
	return w, nil
}

// ImportWeights はレジストリからステップを再構築し、学習済み状態を復元する
func (p *RegressorPipeline) ImportWeights(w *model.ModelWeights) error {
	const op = ModelName + ".ImportWeights"
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != ModelName {
		return errors.NewValidationError("model_type", "expected "+ModelName, w.ModelType)
	}
	if !w.IsFitted {
		return errors.NewValueError(op, "weights are not fitted")
	}

	steps := make([]Step, len(w.Components))
	for i, c := range w.Components {
		est, err := registry.New(c.Weights.ModelType)
		if err != nil {
			return errors.Wrapf(err, "step '%s'", c.Name)
		}
		importer, ok := est.(model.WeightExporter)
		if !ok {
			return errors.NewModelError(op, fmt.Sprintf("step '%s' (%s) cannot import weights", c.Name, est.Name()), nil)
		}
		if err := importer.ImportWeights(c.Weights); err != nil {
			return errors.Wrapf(err, "step '%s'", c.Name)
		}
		steps[i] = Step{Name: c.Name, Estimator: withChainConfig(est)}
	}
	if err := p.setSteps(steps); err != nil {
		return err
	}

	nSamples := 0
	if v, ok := w.Metadata["n_samples"]; ok {
		if f, err := model.ParamFloat("n_samples", v); err == nil {
			nSamples = int(f)
		}
	}
	p.fitted = steps
	p.SetFitted(w.FeatureNames, w.TargetNames, nSamples)
	return nil
}

// Clone は同じステップのクローンを持つ未学習のパイプラインを返す
func (p *RegressorPipeline) Clone() model.Estimator {
	clone, err := NewRegressorPipeline(p.steps)
	if err != nil {
		// steps は構築時に検証済み
		panic(err)
	}
	p.CopyConfigTo(clone.BaseRegressor)
	return clone
}

// Tags はクラスタグを返す
func (p *RegressorPipeline) Tags() model.Tags {
	return model.RegressorTags().Merge(model.Tags{
		model.TagRegressorType:               "compositor",
		model.TagNamedObjectParameters:       "steps",
		model.TagFittedNamedObjectParameters: "steps_",
	})
}

// TestParams は適合性テスト用のパラメータを返す。
// キーは登録済みのテストインスタンス（ステップ "scaler" と "linreg"）を前提とする。
func (p *RegressorPipeline) TestParams() []map[string]interface{} {
	return []map[string]interface{}{
		{},
		{"scaler__strategy": "minmax", "linreg__shrink": 0.5},
	}
}

func (p *RegressorPipeline) String() string {
	parts := make([]string, len(p.steps))
	for i, s := range p.steps {
		parts[i] = s.Name + ": " + repr(s.Estimator)
	}
	return ModelName + "(steps=[" + strings.Join(parts, ", ") + "])"
}

func repr(e model.Estimator) string {
	if s, ok := e.(fmt.Stringer); ok {
		return s.String()
	}
	return model.FormatRepr(e.Name(), e.GetParams(false))
}
