package model

import "sort"

// Tags は推定器クラスのメタデータ（文字列のキーと値）
type Tags map[string]string

// タグ名
const (
	TagEstimatorType               = "estimator_type"
	TagRegressorType               = "regressor_type"
	TagTransformerType             = "transformer_type"
	TagNamedObjectParameters       = "named_object_parameters"
	TagFittedNamedObjectParameters = "fitted_named_object_parameters"
)

// estimator_type の値
const (
	EstimatorTypeEstimator   = "estimator"
	EstimatorTypeRegressor   = "regressor"
	EstimatorTypeTransformer = "transformer"
)

// Merge は t をコピーし、others を順に上書きしたタグを返す（後勝ち）
func (t Tags) Merge(others ...Tags) Tags {
	out := make(Tags, len(t))
	for k, v := range t {
		out[k] = v
	}
	for _, o := range others {
		for k, v := range o {
			out[k] = v
		}
	}
	return out
}

// Get はタグの値と存在有無を返す
func (t Tags) Get(name string) (string, bool) {
	v, ok := t[name]
	return v, ok
}

// Keys はタグ名をソートして返す
func (t Tags) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EstimatorTags は全推定器に共通の基底タグ
func EstimatorTags() Tags {
	return Tags{TagEstimatorType: EstimatorTypeEstimator}
}

// RegressorTags は回帰器の基底タグ
func RegressorTags() Tags {
	return EstimatorTags().Merge(Tags{TagEstimatorType: EstimatorTypeRegressor})
}

// TransformerTags は変換器の基底タグ
func TransformerTags() Tags {
	return EstimatorTags().Merge(Tags{TagEstimatorType: EstimatorTypeTransformer})
}
