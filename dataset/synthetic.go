package dataset

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// MakeRegression generates y = X·coef + noise with standard normal
// features, coefficients drawn uniformly from [0, 100) and Gaussian noise
// of the given standard deviation. Columns are named x0.. and y0..; coef
// has shape nFeatures x nTargets. The same seed always gives the same data.
func MakeRegression(nSamples, nFeatures, nTargets int, noise float64, seed uint64) (X, y *frame.Frame, coef *mat.Dense, err error) {
	switch {
	case nSamples < 1:
		return nil, nil, nil, errors.NewValidationError("n_samples", "must be positive", nSamples)
	case nFeatures < 1:
		return nil, nil, nil, errors.NewValidationError("n_features", "must be positive", nFeatures)
	case nTargets < 1:
		return nil, nil, nil, errors.NewValidationError("n_targets", "must be positive", nTargets)
	case !(noise >= 0):
		return nil, nil, nil, errors.NewValidationError("noise", "must be non-negative", noise)
	}

	src := rand.NewPCG(seed, seed)
	normal := distuv.Normal{Mu: 0, Sigma: 1, Src: src}
	uniform := distuv.Uniform{Min: 0, Max: 100, Src: src}

	xData := mat.NewDense(nSamples, nFeatures, nil)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nFeatures; j++ {
			xData.Set(i, j, normal.Rand())
		}
	}
	coef = mat.NewDense(nFeatures, nTargets, nil)
	for i := 0; i < nFeatures; i++ {
		for j := 0; j < nTargets; j++ {
			coef.Set(i, j, uniform.Rand())
		}
	}

	var yData mat.Dense
	yData.Mul(xData, coef)
	if noise > 0 {
		for i := 0; i < nSamples; i++ {
			for j := 0; j < nTargets; j++ {
				yData.Set(i, j, yData.At(i, j)+noise*normal.Rand())
			}
		}
	}

	if X, err = frame.New(xData, names("x", nFeatures), nil); err != nil {
		return nil, nil, nil, err
	}
	if y, err = frame.New(&yData, names("y", nTargets), nil); err != nil {
		return nil, nil, nil, err
	}
	return X, y, coef, nil
}

func names(prefix string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("%s%d", prefix, i)
	}
	return out
}
