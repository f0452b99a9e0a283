package linear

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// Coef は線形モデルの係数表。行が特徴量、列が目的変数に対応する。
type Coef struct {
	Features []string
	Targets  []string
	Beta     *mat.Dense
}

// At は特徴量 feature から目的変数 target への係数を返す
func (c *Coef) At(feature, target string) (float64, error) {
	i := indexOf(c.Features, feature)
	if i < 0 {
		return 0, errors.NewValueError("Coef.At", fmt.Sprintf("unknown feature %q", feature))
	}
	j := indexOf(c.Targets, target)
	if j < 0 {
		return 0, errors.NewValueError("Coef.At", fmt.Sprintf("unknown target %q", target))
	}
	return c.Beta.At(i, j), nil
}

// Frame は係数を目的変数名の列ラベルを持つ Frame として返す（行は Features の順）
func (c *Coef) Frame() (*frame.Frame, error) {
	return frame.New(mat.DenseCopyOf(c.Beta), c.Targets, nil)
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}

// FitOLS は最小二乗法で係数を求める: beta = pinv(X) · y
//
// 擬似逆行列は特異値分解で計算し、max(m, n)·eps·σmax 以下の特異値は0とみなす。
// そのためランク落ちした X でも最小ノルム解を返す。切片は含まない。
//
// 使用例:
//
//	coef, err := linear.FitOLS(X, y)
//	if err != nil {
//	    return err
//	}
//	b, _ := coef.At("x1", "y")
func FitOLS(X, y mat.Matrix) (*Coef, error) {
	return FitRidge(X, y, 0)
}

// FitRidge は L2 正則化付き最小二乗法で係数を求める:
// beta = V · diag(σ/(σ²+shrink)) · Uᵀ · y。shrink = 0 のとき FitOLS と同じ。
func FitRidge(X, y mat.Matrix, shrink float64) (coef *Coef, err error) {
	const op = "linear.FitRidge"
	defer errors.Recover(&err, op)

	if shrink < 0 || math.IsNaN(shrink) || math.IsInf(shrink, 0) {
		return nil, errors.NewValidationError("shrink", "must be a finite number >= 0", shrink)
	}
	xf, err := frame.FromMatrix(X)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: X", op)
	}
	yf, err := frame.FromMatrix(y)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: y", op)
	}
	m, n := xf.Dims()
	if yf.Len() != m {
		return nil, errors.NewDimensionError(op, m, yf.Len(), 0)
	}
	if err := errors.CheckMatrix(op, xf); err != nil {
		return nil, err
	}
	if err := errors.CheckMatrix(op, yf); err != nil {
		return nil, err
	}

	var svd mat.SVD
	if ok := svd.Factorize(xf.RawDense(), mat.SVDThin); !ok {
		return nil, errors.NewModelError(op, "SVD did not converge", errors.ErrSingularMatrix)
	}
	s := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	cutoff := float64(max(m, n)) * eps * s[0]
	d := make([]float64, len(s))
	for k, sigma := range s {
		if sigma > cutoff {
			d[k] = sigma / (sigma*sigma + shrink)
		}
	}

	// Uᵀ·y の各行を d でスケールしてから V を掛ける
	var uty mat.Dense
	uty.Mul(u.T(), yf.RawDense())
	_, t := uty.Dims()
	for k := range d {
		for j := 0; j < t; j++ {
			uty.Set(k, j, uty.At(k, j)*d[k])
		}
	}
	beta := mat.NewDense(n, t, nil)
	beta.Mul(&v, &uty)

	if err := errors.CheckMatrix(op, beta); err != nil {
		return nil, err
	}
	return &Coef{Features: xf.Columns(), Targets: yf.Columns(), Beta: beta}, nil
}

// eps は float64 の計算機イプシロン（numpy.finfo(float64).eps）
var eps = math.Nextafter(1, 2) - 1

// PredictOLS は X · beta を返す。X の列ラベルは coef.Features と一致する必要がある。
// 出力は X の行ラベルと coef.Targets の列ラベルを持つ。
func PredictOLS(X mat.Matrix, coef *Coef) (*frame.Frame, error) {
	const op = "linear.PredictOLS"
	if coef == nil || coef.Beta == nil {
		return nil, errors.NewValueError(op, "coefficients are nil")
	}
	xf, err := frame.FromMatrix(X)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: X", op)
	}
	if !frame.ColumnsEqual(coef.Features, xf.Columns()) {
		return nil, errors.NewColumnMismatchError(op, coef.Features, xf.Columns())
	}

	out := mat.NewDense(xf.Len(), len(coef.Targets), nil)
	out.Mul(xf.RawDense(), coef.Beta)
	return frame.New(out, coef.Targets, xf.Index())
}
