// Package preprocessing はデータの前処理を行う変換器を提供します。
package preprocessing

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/core/parallel"
	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// ModelName はレジストリ上の Scaler の名前
const ModelName = "Scaler"

// スケーリング方式
const (
	// StrategyStd は列ごとに平均を引き、標本標準偏差で割る
	StrategyStd = "std"
	// StrategyMinMax は列ごとに最小値0、最大値1へ線形変換する
	StrategyMinMax = "minmax"
)

// ScalerOption は Scaler を設定する関数
type ScalerOption func(*Scaler)

// WithStrategy はスケーリング方式を設定する
func WithStrategy(strategy string) ScalerOption {
	return func(s *Scaler) {
		s.strategy = strategy
	}
}

// Scaler は列ごとの min-max 正規化または標準化を行う変換器
//
// パラメータ:
//   - strategy: "std"（デフォルト）または "minmax"
//
// 学習済み属性（どちらの方式でも学習時に全て計算する）:
//   - XMin, XMax, XSpan: 列ごとの最小値、最大値、最大値 - 最小値
//   - XMean, XStd: 列ごとの平均、標本標準偏差（ddof=1）
//
// 分母（XSpan または XStd）が0の列は1で割り、ConstantFeatureWarning を出す。
// そのような列は変換後すべて0になる。
//
// 使用例:
//
//	scaler, err := preprocessing.NewScaler(preprocessing.WithStrategy("minmax"))
//	if err != nil {
//	    return err
//	}
//	XScaled, err := scaler.FitTransform(X)
type Scaler struct {
	*model.BaseTransformer

	strategy string

	xMin, xMax, xSpan []float64
	xMean, xStd       []float64

	// 変換: (X - offset) / divisor
	offset, divisor []float64
}

var (
	_ model.InverseTransformer = (*Scaler)(nil)
	_ model.WeightExporter     = (*Scaler)(nil)
)

// NewScaler は新しい Scaler を作成する。未対応の strategy は ValidationError を返す。
func NewScaler(opts ...ScalerOption) (*Scaler, error) {
	s := &Scaler{strategy: StrategyStd}
	s.BaseTransformer = model.NewBaseTransformer(ModelName, s)
	for _, opt := range opts {
		opt(s)
	}
	if err := validateStrategy(s.strategy); err != nil {
		return nil, err
	}
	return s, nil
}

func validateStrategy(strategy string) error {
	switch strategy {
	case StrategyStd, StrategyMinMax:
		return nil
	default:
		return errors.NewValidationError("strategy",
			fmt.Sprintf("must be one of %q or %q", StrategyStd, StrategyMinMax), strategy)
	}
}

// FitFrame は列ごとの統計量を計算する（BaseTransformer.Fit から呼ばれる）
func (s *Scaler) FitFrame(X *frame.Frame) error {
	r, c := X.Dims()
	if err := errors.CheckMatrix(ModelName+".Fit", X); err != nil {
		return err
	}

	s.xMin = make([]float64, c)
	s.xMax = make([]float64, c)
	s.xSpan = make([]float64, c)
	s.xMean = make([]float64, c)
	s.xStd = make([]float64, c)
	s.offset = make([]float64, c)
	s.divisor = make([]float64, c)

	columns := X.Columns()
	col := make([]float64, r)
	for j := 0; j < c; j++ {
		mat.Col(col, j, X.RawDense())
		s.xMin[j] = floats.Min(col)
		s.xMax[j] = floats.Max(col)
		s.xSpan[j] = s.xMax[j] - s.xMin[j]
		if r > 1 {
			s.xMean[j], s.xStd[j] = stat.MeanStdDev(col, nil)
		} else {
			s.xMean[j] = col[0]
		}

		var offset, divisor float64
		var statistic string
		switch s.strategy {
		case StrategyMinMax:
			offset, divisor, statistic = s.xMin[j], s.xSpan[j], "span"
		default:
			offset, divisor, statistic = s.xMean[j], s.xStd[j], "standard deviation"
		}
		if isConstant(divisor, offset) {
			errors.Warn(errors.NewConstantFeatureWarning(ModelName, columns[j], statistic))
			divisor = 1
		}
		s.offset[j] = offset
		s.divisor[j] = divisor
	}
	return nil
}

// isConstant は分母が0、または基準値 ref（最小値または平均）の 10 ulp 未満かを判定する。
// 例えば 0.1 だけの列の標準偏差は丸め誤差で 1e-17 程度になるが、これも定数列として扱う。
func isConstant(divisor, ref float64) bool {
	return divisor == 0 || divisor < 10*epsilon*math.Abs(ref)
}

var epsilon = math.Nextafter(1, 2) - 1

// TransformFrame は (X - offset) / divisor を返す（BaseTransformer.Transform から呼ばれる）
func (s *Scaler) TransformFrame(X *frame.Frame) (*frame.Frame, error) {
	return s.apply(X, func(v float64, j int) float64 {
		return (v - s.offset[j]) / s.divisor[j]
	})
}

// InverseTransform は変換を逆方向に適用する: X * divisor + offset
func (s *Scaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	xf, err := s.CheckInput(X, "InverseTransform")
	if err != nil {
		return nil, err
	}
	out, err := s.apply(xf, func(v float64, j int) float64 {
		return v*s.divisor[j] + s.offset[j]
	})
	if err != nil {
		return nil, err
	}
	return model.Render(out, s.GetConfig())
}

// apply は要素ごとの変換を行う。行数が多い場合は行単位で並列化する。
func (s *Scaler) apply(X *frame.Frame, fn func(v float64, j int) float64) (*frame.Frame, error) {
	r, c := X.Dims()
	src := X.RawDense()
	out := mat.NewDense(r, c, nil)

	parallel.ParallelizeWithThreshold(r, parallel.DefaultThreshold, func(start, end int) {
		for i := start; i < end; i++ {
			row := out.RawRowView(i)
			for j, v := range src.RawRowView(i) {
				row[j] = fn(v, j)
			}
		}
	})
	return X.WithData(out)
}

// Strategy はスケーリング方式を返す
func (s *Scaler) Strategy() string {
	return s.strategy
}

// XMin は列ごとの最小値を返す（未学習の場合は nil）
func (s *Scaler) XMin() []float64 { return copyFloats(s.xMin) }

// XMax は列ごとの最大値を返す（未学習の場合は nil）
func (s *Scaler) XMax() []float64 { return copyFloats(s.xMax) }

// XSpan は列ごとの最大値 - 最小値を返す（未学習の場合は nil）
func (s *Scaler) XSpan() []float64 { return copyFloats(s.xSpan) }

// XMean は列ごとの平均を返す（未学習の場合は nil）
func (s *Scaler) XMean() []float64 { return copyFloats(s.xMean) }

// XStd は列ごとの標本標準偏差を返す（未学習の場合は nil）
func (s *Scaler) XStd() []float64 { return copyFloats(s.xStd) }

func copyFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	return append([]float64(nil), v...)
}

// GetParams はハイパーパラメータを返す
func (s *Scaler) GetParams(deep bool) map[string]interface{} {
	return map[string]interface{}{"strategy": s.strategy}
}

// SetParams はハイパーパラメータを設定し、学習状態をリセットする
func (s *Scaler) SetParams(params map[string]interface{}) error {
	strategy := s.strategy
	for name, value := range params {
		switch name {
		case "strategy":
			v, err := model.ParamString(name, value)
			if err != nil {
				return err
			}
			strategy = v
		default:
			return model.UnknownParam(ModelName, name, []string{"strategy"})
		}
	}
	if err := validateStrategy(strategy); err != nil {
		return err
	}
	s.strategy = strategy
	s.clearFitted()
	return nil
}

func (s *Scaler) clearFitted() {
	s.xMin, s.xMax, s.xSpan, s.xMean, s.xStd = nil, nil, nil, nil, nil
	s.offset, s.divisor = nil, nil
	s.Reset()
}

// Clone は同じハイパーパラメータを持つ未学習の Scaler を返す
func (s *Scaler) Clone() model.Estimator {
	clone, err := NewScaler(WithStrategy(s.strategy))
	if err != nil {
		// strategy は構築時と SetParams で検証済み
		panic(err)
	}
	s.CopyConfigTo(clone.BaseTransformer)
	return clone
}

// Tags は推定器クラスのタグを返す
func (s *Scaler) Tags() model.Tags {
	return model.TransformerTags().Merge(model.Tags{model.TagTransformerType: "preprocessing"})
}

func (s *Scaler) String() string {
	return model.FormatRepr(ModelName, s.GetParams(false))
}

var scalerAttributes = []string{"x_min", "x_max", "x_span", "x_mean", "x_std", "offset", "divisor"}

func (s *Scaler) attributeSlices() [][]float64 {
	return [][]float64{s.xMin, s.xMax, s.xSpan, s.xMean, s.xStd, s.offset, s.divisor}
}

// ExportWeights は学習済み統計量をエクスポートする（各属性は 1 × 列数 の行列）
func (s *Scaler) ExportWeights() (*model.ModelWeights, error) {
	if err := s.RequireFitted(ModelName, "ExportWeights"); err != nil {
		return nil, err
	}
	w := model.NewModelWeights(ModelName, s.GetParams(false))
	w.FeatureNames = s.FeatureNames()
	for k, values := range s.attributeSlices() {
		w.SetAttribute(scalerAttributes[k], mat.NewDense(1, len(values), copyFloats(values)))
	}
	_, nSamples := s.GetDimensions()
	w.Metadata["n_samples"] = nSamples
	w.IsFitted = true
	return w, nil
}

// ImportWeights はエクスポートされた統計量から学習済み状態を復元する
func (s *Scaler) ImportWeights(w *model.ModelWeights) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if w.ModelType != ModelName {
		return errors.NewValidationError("model_type", "expected "+ModelName, w.ModelType)
	}
	if err := s.SetParams(w.Hyperparameters); err != nil {
		return err
	}
	if !w.IsFitted {
		return nil
	}

	c := len(w.FeatureNames)
	values := make([][]float64, len(scalerAttributes))
	for k, name := range scalerAttributes {
		m, err := w.Attribute(name)
		if err != nil {
			return err
		}
		rows, cols := m.Dims()
		if rows != 1 || cols != c {
			return errors.NewDimensionError("Scaler.ImportWeights", c, cols, 1)
		}
		values[k] = mat.Row(nil, 0, m)
	}
	s.xMin, s.xMax, s.xSpan, s.xMean, s.xStd = values[0], values[1], values[2], values[3], values[4]
	s.offset, s.divisor = values[5], values[6]

	nSamples := 0
	if v, ok := w.Metadata["n_samples"]; ok {
		if f, err := model.ParamFloat("n_samples", v); err == nil {
			nSamples = int(f)
		}
	}
	s.SetFitted(w.FeatureNames, nil, nSamples)
	return nil
}

// ScaleData は X を strategy で学習・変換した結果を返す
//
// 使用例:
//
//	XScaled, err := preprocessing.ScaleData(X, "minmax")
func ScaleData(X mat.Matrix, strategy string) (*frame.Frame, error) {
	s, err := NewScaler(WithStrategy(strategy))
	if err != nil {
		return nil, err
	}
	xf, err := frame.FromMatrix(X)
	if err != nil {
		return nil, errors.Wrap(err, "ScaleData")
	}
	if err := s.FitFrame(xf); err != nil {
		return nil, err
	}
	return s.TransformFrame(xf)
}

// TestParams は適合性テストで使うパラメータの組を返す
func (s *Scaler) TestParams() []map[string]interface{} {
	return []map[string]interface{}{{"strategy": StrategyStd}, {"strategy": StrategyMinMax}}
}
