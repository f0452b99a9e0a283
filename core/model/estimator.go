// Package model はminiskの推定器規約（Estimator / Regressor / Transformer）と、
// 入力検証を共通化する基底型 BaseRegressor / BaseTransformer を提供します。
//
// 具体的な推定器は基底型を埋め込み、FitFrame / PredictFrame / TransformFrame
// だけを実装します。行数・列ラベル・学習状態の検査は基底型が行います。
package model

import "gonum.org/v1/gonum/mat"

// Estimator は全ての推定器が満たすインターフェース
type Estimator interface {
	// Name は推定器のクラス名を返す（"LinReg", "Scaler" 等）
	Name() string

	// GetParams はハイパーパラメータを返す。deep が true の場合、
	// 入れ子の推定器のパラメータを "<名前>__<パラメータ>" として含める
	GetParams(deep bool) map[string]interface{}

	// SetParams はハイパーパラメータを設定し、学習状態をリセットする
	SetParams(params map[string]interface{}) error

	// Clone は同じハイパーパラメータを持つ未学習の新しいインスタンスを返す
	Clone() Estimator

	// Tags は推定器クラスのタグを返す
	Tags() Tags

	// IsFitted はモデルが学習済みかどうかを返す
	IsFitted() bool
}

// Fitter は教師あり学習可能なモデルのインターフェース
type Fitter interface {
	// Fit はモデルを訓練データで学習させる
	Fit(X, y mat.Matrix) error
}

// Predictor は予測可能なモデルのインターフェース
type Predictor interface {
	// Predict は入力データに対する予測を行う
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Regressor は回帰器のインターフェース
type Regressor interface {
	Estimator
	Fitter
	Predictor
}

// Scorer はスコアを計算できるモデルのインターフェース
type Scorer interface {
	// Score は決定係数R²を返す
	Score(X, y mat.Matrix) (float64, error)
}
