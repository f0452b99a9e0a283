package preprocessing

import (
	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/registry"
)

func init() {
	registry.Register(ModelName, func() model.Estimator {
		s, err := NewScaler()
		if err != nil {
			panic(err)
		}
		return s
	})
}
