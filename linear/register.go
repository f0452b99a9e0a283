package linear

import (
	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/registry"
)

func init() {
	registry.Register(ModelName, func() model.Estimator {
		r, err := NewLinReg()
		if err != nil {
			panic(err)
		}
		return r
	})
}
