package check

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/dataset"
	"github.com/YuminosukeSato/minisk/frame"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/registry"
)

const dataSeed = 42

// data は小さな合成データをシャッフルして学習用とテスト用に分割する
func data() (XTrain, XTest, yTrain, yTest *frame.Frame, err error) {
	X, y, _, err := dataset.MakeRegression(60, 4, 1, 0.5, dataSeed)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return dataset.TrainTestSplit(X, y, 0.25, dataSeed)
}

// scalarParams は == で比較できるパラメータだけを残す
func scalarParams(params map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		switch v.(type) {
		case string, bool, int, int64, float64, float32:
			out[k] = v
		}
	}
	return out
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func compareScalars(what string, want, got map[string]interface{}) error {
	for _, k := range sortedKeys(want) {
		if g, ok := got[k]; !ok || g != want[k] {
			return errors.Newf("%s: parameter %q changed from %v to %v", what, k, want[k], got[k])
		}
	}
	return nil
}

func asFrame(what string, m mat.Matrix) (*frame.Frame, error) {
	f, ok := m.(*frame.Frame)
	if !ok {
		return nil, errors.Newf("%s returned %T, want *frame.Frame", what, m)
	}
	return f, nil
}

// forceFrame はプロセス既定値に関わらず est がフレームを返すようにする
func forceFrame(est model.Estimator) error {
	if c, ok := est.(model.Configurable); ok {
		return c.SetConfig(model.Config{ReturnType: model.ReturnFrame})
	}
	return nil
}

func checkGetParams(newEstimator func() model.Estimator) error {
	est := newEstimator()
	shallow := est.GetParams(false)
	deep := est.GetParams(true)
	if shallow == nil || deep == nil {
		return errors.New("GetParams returned nil")
	}
	for k := range shallow {
		if _, ok := deep[k]; !ok {
			return errors.Newf("GetParams(true) is missing shallow parameter %q", k)
		}
	}
	for k := range deep {
		if _, ok := shallow[k]; !ok && !strings.Contains(k, "__") {
			return errors.Newf("GetParams(true) has non-nested parameter %q missing from GetParams(false)", k)
		}
	}
	return compareScalars("GetParams", scalarParams(shallow), scalarParams(est.GetParams(false)))
}

func checkSetParams(newEstimator func() model.Estimator) error {
	est := newEstimator()
	params := est.GetParams(false)
	if err := est.SetParams(params); err != nil {
		return errors.Wrap(err, "SetParams(GetParams(false)) failed")
	}
	if err := compareScalars("SetParams", scalarParams(params), scalarParams(est.GetParams(false))); err != nil {
		return err
	}
	if err := est.SetParams(map[string]interface{}{"not_a_parameter": 1.0}); err == nil {
		return errors.New("SetParams accepted an unknown parameter")
	}
	if est.IsFitted() {
		return errors.New("estimator is fitted after SetParams")
	}
	return nil
}

func checkClone(newEstimator func() model.Estimator) error {
	est := newEstimator()
	if err := fitFresh(est); err != nil {
		return err
	}
	clone := est.Clone()
	if clone == est {
		return errors.New("Clone returned the same instance")
	}
	if clone.Name() != est.Name() {
		return errors.Newf("Clone changed the name from %q to %q", est.Name(), clone.Name())
	}
	if model.KindOf(est) != model.EstimatorTypeEstimator && clone.IsFitted() {
		return errors.New("Clone of a fitted estimator is fitted")
	}
	if err := compareScalars("Clone", scalarParams(est.GetParams(true)), scalarParams(clone.GetParams(true))); err != nil {
		return err
	}
	if s, ok := est.(fmt.Stringer); ok && s.String() != clone.(fmt.Stringer).String() {
		return errors.Newf("Clone repr %q differs from %q", clone.(fmt.Stringer).String(), s.String())
	}
	return nil
}

// fitFresh は est が回帰器か変換器ならスイートのデータで学習する
func fitFresh(est model.Estimator) error {
	XTrain, _, yTrain, _, err := data()
	if err != nil {
		return err
	}
	switch e := est.(type) {
	case model.Regressor:
		return e.Fit(XTrain, yTrain)
	case model.Transformer:
		return e.Fit(XTrain)
	}
	return nil
}

func checkValidTags(newEstimator func() model.Estimator) error {
	est := newEstimator()
	tags := est.Tags()
	for _, k := range tags.Keys() {
		if !registry.IsValidTag(k) {
			return errors.Newf("tag %q is not a valid tag", k)
		}
	}
	kind, ok := tags.Get(model.TagEstimatorType)
	if !ok {
		return errors.Newf("missing tag %q", model.TagEstimatorType)
	}
	if want := model.KindOf(est); kind != want {
		return errors.Newf("tag %s=%q but the estimator implements %s", model.TagEstimatorType, kind, want)
	}
	return nil
}

func checkRepr(newEstimator func() model.Estimator) error {
	est := newEstimator()
	s, ok := est.(fmt.Stringer)
	if !ok {
		return nil
	}
	repr := s.String()
	if !strings.HasPrefix(repr, est.Name()+"(") || !strings.HasSuffix(repr, ")") {
		return errors.Newf("repr %q is not of the form %s(...)", repr, est.Name())
	}
	return nil
}

func checkNotFittedError(newEstimator func() model.Estimator) error {
	_, XTest, _, _, err := data()
	if err != nil {
		return err
	}
	var callErr error
	switch e := newEstimator().(type) {
	case model.Regressor:
		_, callErr = e.Predict(XTest)
	case model.Transformer:
		_, callErr = e.Transform(XTest)
	default:
		return nil
	}
	var nf *errors.NotFittedError
	if !errors.As(callErr, &nf) {
		return errors.Newf("expected NotFittedError before Fit, got %v", callErr)
	}
	return nil
}

func checkInputOutputContract(newEstimator func() model.Estimator) error {
	reg := newEstimator().(model.Regressor)
	if err := forceFrame(reg); err != nil {
		return err
	}
	XTrain, XTest, yTrain, _, err := data()
	if err != nil {
		return err
	}
	if err := reg.Fit(XTrain, yTrain); err != nil {
		return errors.Wrap(err, "Fit failed")
	}
	pred, err := reg.Predict(XTest)
	if err != nil {
		return errors.Wrap(err, "Predict failed")
	}
	yPred, err := asFrame("Predict", pred)
	if err != nil {
		return err
	}
	if yPred.Len() != XTest.Len() {
		return errors.Newf("Predict returned %d rows for %d inputs", yPred.Len(), XTest.Len())
	}
	if !equalInts(yPred.Index(), XTest.Index()) {
		return errors.Newf("Predict index %v differs from X index %v", yPred.Index(), XTest.Index())
	}
	if !frame.ColumnsEqual(yPred.Columns(), yTrain.Columns()) {
		return errors.Newf("Predict columns %v differ from y columns %v", yPred.Columns(), yTrain.Columns())
	}
	return nil
}

func checkColumnMismatch(newEstimator func() model.Estimator) error {
	reg := newEstimator().(model.Regressor)
	XTrain, XTest, yTrain, _, err := data()
	if err != nil {
		return err
	}
	if err := reg.Fit(XTrain, yTrain); err != nil {
		return errors.Wrap(err, "Fit failed")
	}

	renamed := make([]string, XTest.Width())
	for i, c := range XTest.Columns() {
		renamed[i] = "renamed_" + c
	}
	wrong, err := frame.New(XTest.Dense(), renamed, XTest.Index())
	if err != nil {
		return err
	}
	cols := XTest.Columns()
	reversed := make([]string, len(cols))
	for i, c := range cols {
		reversed[len(cols)-1-i] = c
	}
	reordered, err := XTest.Select(reversed)
	if err != nil {
		return err
	}

	for _, X := range []*frame.Frame{wrong, reordered} {
		_, err := reg.Predict(X)
		var cm *errors.ColumnMismatchError
		if !errors.As(err, &cm) {
			return errors.Newf("expected ColumnMismatchError for columns %v, got %v", X.Columns(), err)
		}
	}
	return nil
}

func checkFitRowsMismatch(newEstimator func() model.Estimator) error {
	reg := newEstimator().(model.Regressor)
	XTrain, _, yTrain, _, err := data()
	if err != nil {
		return err
	}
	positions := make([]int, yTrain.Len()-1)
	for i := range positions {
		positions[i] = i
	}
	short, err := yTrain.Rows(positions)
	if err != nil {
		return err
	}

	err = reg.Fit(XTrain, short)
	var de *errors.DimensionError
	if !errors.As(err, &de) || de.Axis != 0 {
		return errors.Newf("expected a row DimensionError, got %v", err)
	}
	if reg.IsFitted() {
		return errors.New("estimator is fitted after a failed Fit")
	}
	return nil
}

func checkFitDoesNotMutateParams(newEstimator func() model.Estimator) error {
	reg := newEstimator().(model.Regressor)
	before := scalarParams(reg.GetParams(true))
	XTrain, _, yTrain, _, err := data()
	if err != nil {
		return err
	}
	if err := reg.Fit(XTrain, yTrain); err != nil {
		return errors.Wrap(err, "Fit failed")
	}
	return compareScalars("Fit", before, scalarParams(reg.GetParams(true)))
}

func checkTransformShape(newEstimator func() model.Estimator) error {
	tr := newEstimator().(model.Transformer)
	if err := forceFrame(tr); err != nil {
		return err
	}
	XTrain, XTest, _, _, err := data()
	if err != nil {
		return err
	}
	out, err := tr.FitTransform(XTrain)
	if err != nil {
		return errors.Wrap(err, "FitTransform failed")
	}
	Xt, err := asFrame("FitTransform", out)
	if err != nil {
		return err
	}
	if Xt.Len() != XTrain.Len() || !equalInts(Xt.Index(), XTrain.Index()) {
		return errors.Newf("FitTransform changed the rows: %v -> %v", XTrain.Index(), Xt.Index())
	}

	out, err = tr.Transform(XTest)
	if err != nil {
		return errors.Wrap(err, "Transform failed")
	}
	Xt, err = asFrame("Transform", out)
	if err != nil {
		return err
	}
	if Xt.Len() != XTest.Len() || !equalInts(Xt.Index(), XTest.Index()) {
		return errors.Newf("Transform changed the rows: %v -> %v", XTest.Index(), Xt.Index())
	}
	return nil
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
