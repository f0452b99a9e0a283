// Package metrics は回帰モデルの評価指標を提供します。
//
// ベクトル版（*mat.VecDense）と、多出力の行列版（列ごとに計算し単純平均）があります。
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

func checkVectors(op string, yTrue, yPred *mat.VecDense) (int, error) {
	if yTrue == nil || yPred == nil || yTrue.IsEmpty() {
		return 0, errors.NewValueError(op, "empty vector")
	}
	n := yTrue.Len()
	if yPred.IsEmpty() || yPred.Len() != n {
		got := 0
		if !yPred.IsEmpty() {
			got = yPred.Len()
		}
		return 0, errors.NewDimensionError(op, n, got, 0)
	}
	return n, nil
}

// MSE は平均二乗誤差（Mean Squared Error）を計算する
func MSE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	// MSE = (1/n) * Σ(yTrue - yPred)²
	var sum float64
	for i := 0; i < n; i++ {
		diff := yTrue.AtVec(i) - yPred.AtVec(i)
		sum += diff * diff
	}
	return sum / float64(n), nil
}

// RMSE は平方根平均二乗誤差（Root Mean Squared Error）を計算する
func RMSE(yTrue, yPred *mat.VecDense) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return math.Sqrt(mse), nil
}

// MAE は平均絶対誤差（Mean Absolute Error）を計算する
func MAE(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += math.Abs(yTrue.AtVec(i) - yPred.AtVec(i))
	}
	return sum / float64(n), nil
}

// R2Score は決定係数（R²）を計算する。
// yTrue に分散がない場合、完全一致なら 1、そうでなければ 0 を返す。
func R2Score(yTrue, yPred *mat.VecDense) (float64, error) {
	n, err := checkVectors("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}

	yMean := stat.Mean(mat.Col(nil, 0, yTrue), nil)

	// 全変動（TSS）と残差変動（RSS）
	var tss, rss float64
	for i := 0; i < n; i++ {
		t, p := yTrue.AtVec(i), yPred.AtVec(i)
		tss += (t - yMean) * (t - yMean)
		rss += (t - p) * (t - p)
	}

	if tss == 0 {
		if rss == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - rss/tss, nil
}

// columnScore は列ごとに score を計算し、単純平均を返す
func columnScore(op string, yTrue, yPred mat.Matrix, score func(t, p *mat.VecDense) (float64, error)) (float64, error) {
	if yTrue == nil || yPred == nil {
		return 0, errors.NewValueError(op, "empty matrix")
	}
	rTrue, cTrue := yTrue.Dims()
	rPred, cPred := yPred.Dims()
	if rTrue == 0 || cTrue == 0 {
		return 0, errors.NewValueError(op, "empty matrix")
	}
	if rTrue != rPred {
		return 0, errors.NewDimensionError(op, rTrue, rPred, 0)
	}
	if cTrue != cPred {
		return 0, errors.NewDimensionError(op, cTrue, cPred, 1)
	}

	scores := make([]float64, cTrue)
	for j := 0; j < cTrue; j++ {
		t := mat.NewVecDense(rTrue, mat.Col(nil, j, yTrue))
		p := mat.NewVecDense(rPred, mat.Col(nil, j, yPred))
		s, err := score(t, p)
		if err != nil {
			return 0, errors.Wrapf(err, "%s: column %d", op, j)
		}
		scores[j] = s
	}
	return stat.Mean(scores, nil), nil
}

// MSEMatrix は行列形式の入力に対してMSEを計算する（多出力は列平均）
func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	return columnScore("MSEMatrix", yTrue, yPred, MSE)
}

// MAEMatrix は行列形式の入力に対してMAEを計算する（多出力は列平均）
func MAEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	return columnScore("MAEMatrix", yTrue, yPred, MAE)
}

// R2ScoreMatrix は行列形式の入力に対してR²を計算する（多出力は列平均）
func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	return columnScore("R2ScoreMatrix", yTrue, yPred, R2Score)
}
