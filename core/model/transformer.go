package model

import "gonum.org/v1/gonum/mat"

// Transformer はデータ変換器のインターフェース。
// Fit のシグネチャが Regressor と異なるため、両方を満たす型は存在しない。
type Transformer interface {
	Estimator

	// Fit は変換に必要なパラメータを学習する
	Fit(X mat.Matrix) error

	// Transform はデータを変換する
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform はFitとTransformを同時に実行する
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// InverseTransformer は逆変換可能な変換器のインターフェース
type InverseTransformer interface {
	Transformer

	// InverseTransform は変換を逆方向に適用する
	InverseTransform(X mat.Matrix) (mat.Matrix, error)
}

// KindOf は推定器の種類（EstimatorTypeRegressor / EstimatorTypeTransformer /
// EstimatorTypeEstimator）を返す
func KindOf(e Estimator) string {
	switch e.(type) {
	case Regressor:
		return EstimatorTypeRegressor
	case Transformer:
		return EstimatorTypeTransformer
	default:
		return EstimatorTypeEstimator
	}
}
