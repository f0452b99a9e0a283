package model

// Configurable は実行時設定を持つ推定器のインターフェース
type Configurable interface {
	GetConfig() Config
	SetConfig(c Config) error
}

// WeightExporter は学習済みパラメータをエクスポート・インポートできるモデルのインターフェース
type WeightExporter interface {
	// ExportWeights は学習済みパラメータをエクスポートする
	ExportWeights() (*ModelWeights, error)

	// ImportWeights はエクスポートされたパラメータから学習済み状態を復元する
	ImportWeights(weights *ModelWeights) error
}

// Composite は名前付きの子推定器を持つ推定器のインターフェース
type Composite interface {
	// Components は子推定器を順序通りに返す
	Components() []NamedEstimator
}

// NamedEstimator は名前付きの推定器
type NamedEstimator struct {
	Name      string
	Estimator Estimator
}

// TestParamsProvider は適合性テストで使うパラメータの組を提供する推定器のインターフェース。
// 返す各マップは Clone した推定器に SetParams で適用される。
type TestParamsProvider interface {
	TestParams() []map[string]interface{}
}
