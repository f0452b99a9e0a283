package model

import (
	"encoding/json"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// WeightsVersion はエクスポート形式のバージョン
const WeightsVersion = "1"

// MatrixData は行列のシリアライズ形式（行優先）
type MatrixData struct {
	Rows int       `json:"rows"`
	Cols int       `json:"cols"`
	Data []float64 `json:"data"`
}

// NewMatrixData は m をコピーして MatrixData を作成する
func NewMatrixData(m mat.Matrix) *MatrixData {
	r, c := m.Dims()
	data := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			data = append(data, m.At(i, j))
		}
	}
	return &MatrixData{Rows: r, Cols: c, Data: data}
}

// Dense は MatrixData を *mat.Dense に変換する
func (md *MatrixData) Dense() (*mat.Dense, error) {
	if md.Rows <= 0 || md.Cols <= 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "MatrixData.Dense")
	}
	if len(md.Data) != md.Rows*md.Cols {
		return nil, errors.NewDimensionError("MatrixData.Dense", md.Rows*md.Cols, len(md.Data), 1)
	}
	return mat.NewDense(md.Rows, md.Cols, append([]float64(nil), md.Data...)), nil
}

// ComponentWeights は複合推定器の子推定器の重み
type ComponentWeights struct {
	Name    string        `json:"name"`
	Weights *ModelWeights `json:"weights"`
}

// ModelWeights は学習済みモデルの重みを表す構造体（シリアライゼーション用）
type ModelWeights struct {
	// ModelType はレジストリ上の推定器名（LinReg, Scaler 等）
	ModelType string `json:"model_type"`

	// Version はエクスポート形式のバージョン（互換性チェック用）
	Version string `json:"version"`

	// Hyperparameters はモデルのハイパーパラメータ
	Hyperparameters map[string]interface{} `json:"hyperparameters"`

	// FeatureNames は学習時の X の列ラベル
	FeatureNames []string `json:"feature_names,omitempty"`

	// TargetNames は学習時の y の列ラベル（回帰器のみ）
	TargetNames []string `json:"target_names,omitempty"`

	// Attributes は名前付きの学習済み属性（"beta", "x_mean" 等）
	Attributes map[string]*MatrixData `json:"attributes,omitempty"`

	// Components は複合推定器の子推定器の重み（順序を保持）
	Components []ComponentWeights `json:"components,omitempty"`

	// Metadata は追加のメタデータ（学習時の統計等）
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// IsFitted はモデルが学習済みかどうか
	IsFitted bool `json:"is_fitted"`
}

// NewModelWeights は空の ModelWeights を作成する
func NewModelWeights(modelType string, hyperparameters map[string]interface{}) *ModelWeights {
	hp := make(map[string]interface{}, len(hyperparameters))
	for k, v := range hyperparameters {
		hp[k] = v
	}
	return &ModelWeights{
		ModelType:       modelType,
		Version:         WeightsVersion,
		Hyperparameters: hp,
		Attributes:      make(map[string]*MatrixData),
		Metadata:        make(map[string]interface{}),
	}
}

// SetAttribute は学習済み属性を設定する
func (mw *ModelWeights) SetAttribute(name string, m mat.Matrix) {
	if mw.Attributes == nil {
		mw.Attributes = make(map[string]*MatrixData)
	}
	mw.Attributes[name] = NewMatrixData(m)
}

// Attribute は学習済み属性を *mat.Dense として返す
func (mw *ModelWeights) Attribute(name string) (*mat.Dense, error) {
	md, ok := mw.Attributes[name]
	if !ok || md == nil {
		return nil, errors.NewValueError("ModelWeights.Attribute", fmt.Sprintf("missing attribute %q for %s", name, mw.ModelType))
	}
	return md.Dense()
}

// ToJSON はModelWeightsをJSON形式にシリアライズ
func (mw *ModelWeights) ToJSON() ([]byte, error) {
	return json.MarshalIndent(mw, "", "  ")
}

// FromJSON はJSON形式からModelWeightsをデシリアライズ
func (mw *ModelWeights) FromJSON(data []byte) error {
	if err := json.Unmarshal(data, mw); err != nil {
		return errors.Wrap(err, "failed to decode model weights")
	}
	return nil
}

// Validate はModelWeightsの妥当性を検証
func (mw *ModelWeights) Validate() error {
	if mw.ModelType == "" {
		return errors.NewValidationError("model_type", "is required", mw.ModelType)
	}
	if mw.Version != WeightsVersion {
		return errors.NewValidationError("version", "unsupported weights version", mw.Version)
	}

	if !mw.IsFitted && (len(mw.Attributes) > 0 || len(mw.Components) > 0) {
		return errors.NewValidationError("is_fitted", "unfitted model should not have attributes", mw.IsFitted)
	}
	if mw.IsFitted && len(mw.Attributes) == 0 && len(mw.Components) == 0 {
		return errors.NewValidationError("is_fitted", "fitted model must have attributes or components", mw.IsFitted)
	}

	for name, md := range mw.Attributes {
		if md == nil || len(md.Data) != md.Rows*md.Cols {
			return errors.NewValidationError("attributes."+name, "data length does not match shape", md)
		}
	}
	for _, c := range mw.Components {
		if c.Weights == nil {
			return errors.NewValidationError("components."+c.Name, "is nil", nil)
		}
		if err := c.Weights.Validate(); err != nil {
			return errors.Wrapf(err, "component %q", c.Name)
		}
	}
	return nil
}

// Clone はModelWeightsのディープコピーを作成
func (mw *ModelWeights) Clone() *ModelWeights {
	clone := &ModelWeights{
		ModelType:       mw.ModelType,
		Version:         mw.Version,
		IsFitted:        mw.IsFitted,
		FeatureNames:    append([]string(nil), mw.FeatureNames...),
		TargetNames:     append([]string(nil), mw.TargetNames...),
		Hyperparameters: make(map[string]interface{}, len(mw.Hyperparameters)),
		Attributes:      make(map[string]*MatrixData, len(mw.Attributes)),
		Metadata:        make(map[string]interface{}, len(mw.Metadata)),
	}

	for k, v := range mw.Hyperparameters {
		clone.Hyperparameters[k] = v
	}
	for k, v := range mw.Metadata {
		clone.Metadata[k] = v
	}
	for k, md := range mw.Attributes {
		if md == nil {
			continue
		}
		clone.Attributes[k] = &MatrixData{Rows: md.Rows, Cols: md.Cols, Data: append([]float64(nil), md.Data...)}
	}
	for _, c := range mw.Components {
		var w *ModelWeights
		if c.Weights != nil {
			w = c.Weights.Clone()
		}
		clone.Components = append(clone.Components, ComponentWeights{Name: c.Name, Weights: w})
	}

	return clone
}
