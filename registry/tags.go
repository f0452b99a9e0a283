package registry

import "github.com/YuminosukeSato/minisk/core/model"

// TagInfo describes a tag that estimators may carry.
type TagInfo struct {
	Name string
	// Types lists the estimator types the tag applies to.
	Types       []string
	ValueType   string
	Description string
}

var validTags = []TagInfo{
	{
		Name:        model.TagEstimatorType,
		Types:       []string{model.EstimatorTypeRegressor, model.EstimatorTypeTransformer},
		ValueType:   "str",
		Description: "type of estimator: estimator, regressor or transformer",
	},
	{
		Name:        model.TagRegressorType,
		Types:       []string{model.EstimatorTypeRegressor},
		ValueType:   "str",
		Description: "kind of regressor: linear or compositor",
	},
	{
		Name:        model.TagTransformerType,
		Types:       []string{model.EstimatorTypeTransformer},
		ValueType:   "str",
		Description: "kind of transformer, e.g. preprocessing",
	},
	{
		Name:        model.TagNamedObjectParameters,
		Types:       []string{model.EstimatorTypeRegressor, model.EstimatorTypeTransformer},
		ValueType:   "str",
		Description: "name of the parameter holding named component estimators",
	},
	{
		Name:        model.TagFittedNamedObjectParameters,
		Types:       []string{model.EstimatorTypeRegressor, model.EstimatorTypeTransformer},
		ValueType:   "str",
		Description: "name of the attribute holding fitted named component estimators",
	},
}

// AllTags lists the valid tags, restricted to those applying to at least one
// of types when types is not empty.
func AllTags(types ...string) ([]TagInfo, error) {
	if err := checkTypes("registry.AllTags", types); err != nil {
		return nil, err
	}
	var out []TagInfo
	for _, info := range validTags {
		if len(types) > 0 && !overlaps(info.Types, types) {
			continue
		}
		info.Types = append([]string(nil), info.Types...)
		out = append(out, info)
	}
	return out, nil
}

// IsValidTag reports whether name is a known tag.
func IsValidTag(name string) bool {
	for _, info := range validTags {
		if info.Name == name {
			return true
		}
	}
	return false
}

func overlaps(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}
