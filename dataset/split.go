package dataset

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// SplitXY separates the target columns from f. X keeps the remaining
// columns in their original order.
func SplitXY(f *frame.Frame, targets []string) (X, y *frame.Frame, err error) {
	if len(targets) == 0 {
		return nil, nil, errors.NewValueError("dataset.SplitXY", "no target columns given")
	}
	y, err = f.Select(targets)
	if err != nil {
		return nil, nil, err
	}
	X, err = f.Drop(targets)
	if err != nil {
		return nil, nil, errors.Wrap(err, "dataset.SplitXY: no feature columns left")
	}
	return X, y, nil
}

// TrainTestSplit shuffles the rows of X and y with the given seed and
// holds out ceil(testSize*n) of them for testing. Row labels travel with
// their rows.
func TrainTestSplit(X, y *frame.Frame, testSize float64, seed uint64) (XTrain, XTest, yTrain, yTest *frame.Frame, err error) {
	const op = "dataset.TrainTestSplit"
	if X.Len() != y.Len() {
		return nil, nil, nil, nil, errors.NewDimensionError(op, X.Len(), y.Len(), 0)
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, nil, nil, nil, errors.NewValidationError("test_size", "must be in (0, 1)", testSize)
	}

	n := X.Len()
	nTest := int(math.Ceil(testSize * float64(n)))
	if nTest >= n {
		return nil, nil, nil, nil, errors.NewValueError(op,
			fmt.Sprintf("test_size=%g with %d samples leaves no training rows", testSize, n))
	}

	r := rand.New(rand.NewPCG(seed, seed))
	perm := r.Perm(n)
	testPos, trainPos := perm[:nTest], perm[nTest:]

	if XTrain, err = X.Rows(trainPos); err != nil {
		return nil, nil, nil, nil, err
	}
	if XTest, err = X.Rows(testPos); err != nil {
		return nil, nil, nil, nil, err
	}
	if yTrain, err = y.Rows(trainPos); err != nil {
		return nil, nil, nil, nil, err
	}
	if yTest, err = y.Rows(testPos); err != nil {
		return nil, nil, nil, nil, err
	}
	return XTrain, XTest, yTrain, yTest, nil
}
