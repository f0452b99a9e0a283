package pipeline

import (
	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/linear"
	"github.com/YuminosukeSato/minisk/preprocessing"
	"github.com/YuminosukeSato/minisk/registry"
)

// NewScaledLinReg はパイプライン [scaler: Scaler(std), linreg: LinReg()] を作成します。
func NewScaledLinReg() (*RegressorPipeline, error) {
	scaler, err := preprocessing.NewScaler(preprocessing.WithStrategy(preprocessing.StrategyStd))
	if err != nil {
		return nil, err
	}
	reg, err := linear.NewLinReg()
	if err != nil {
		return nil, err
	}
	return NewRegressorPipeline([]Step{
		{Name: "scaler", Estimator: scaler},
		{Name: "linreg", Estimator: reg},
	})
}

func init() {
	registry.Register(ModelName, func() model.Estimator {
		p, err := NewScaledLinReg()
		if err != nil {
			panic(err)
		}
		return p
	})
}
