// Package check は推定器の適合性テストスイートを提供します。
//
// オブジェクトのチェックはすべての推定器に、回帰器・変換器のチェックは該当する種類の推定器に実行されます。
// 各チェックは model.TestParamsProvider のパラメータごとに（なければ既定値で1回）実行され、
// 結果のキーは "test_clone[LinReg-0]" の形式になります。
package check

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/pkg/log"
	"github.com/YuminosukeSato/minisk/registry"
)

// Passed は成功したチェックの結果値
const Passed = "PASSED"

// Results は "test_name[fixture]" を Passed または失敗メッセージに対応付ける
type Results map[string]string

// OK はすべてのチェックが成功したかを返す
func (r Results) OK() bool {
	for _, v := range r {
		if v != Passed {
			return false
		}
	}
	return true
}

// Failed は失敗したチェックのキーをソートして返す
func (r Results) Failed() []string {
	var out []string
	for k, v := range r {
		if v != Passed {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// Keys はすべての結果キーをソートして返す
func (r Results) Keys() []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

type options struct {
	raise   bool
	run     []string
	exclude []string
}

// Option は Estimator と All の設定
type Option func(*options)

// WithRaiseExceptions は最初に失敗したチェックで停止し、Results に記録せずエラーとして返す
func WithRaiseExceptions() Option {
	return func(o *options) { o.raise = true }
}

// WithTestsToRun は実行するチェックを指定した名前に限定する
func WithTestsToRun(names ...string) Option {
	return func(o *options) { o.run = append(o.run, names...) }
}

// WithTestsToExclude は指定したチェックを除外する（WithTestsToRun の後に適用）
func WithTestsToExclude(names ...string) Option {
	return func(o *options) { o.exclude = append(o.exclude, names...) }
}

type checkFunc func(newEstimator func() model.Estimator) error

type check struct {
	name string
	// kind は対象の推定器の種類。空ならすべて
	kind string
	fn   checkFunc
}

var suite = []check{
	{name: "test_get_params", fn: checkGetParams},
	{name: "test_set_params", fn: checkSetParams},
	{name: "test_clone", fn: checkClone},
	{name: "test_valid_estimator_tags", fn: checkValidTags},
	{name: "test_repr", fn: checkRepr},
	{name: "test_not_fitted_error", fn: checkNotFittedError},
	{name: "test_input_output_contract", kind: model.EstimatorTypeRegressor, fn: checkInputOutputContract},
	{name: "test_column_mismatch", kind: model.EstimatorTypeRegressor, fn: checkColumnMismatch},
	{name: "test_fit_rows_mismatch", kind: model.EstimatorTypeRegressor, fn: checkFitRowsMismatch},
	{name: "test_fit_does_not_mutate_params", kind: model.EstimatorTypeRegressor, fn: checkFitDoesNotMutateParams},
	{name: "test_transform_shape", kind: model.EstimatorTypeTransformer, fn: checkTransformShape},
}

// Names はすべてのチェック名を実行順に返す
func Names() []string {
	out := make([]string, len(suite))
	for i, c := range suite {
		out[i] = c.name
	}
	return out
}

func (o *options) selected(name string) bool {
	if len(o.run) > 0 && !contains(o.run, name) {
		return false
	}
	return !contains(o.exclude, name)
}

func (o *options) validate() error {
	known := Names()
	for _, name := range append(append([]string(nil), o.run...), o.exclude...) {
		if !contains(known, name) {
			return errors.NewValueError("check.Estimator",
				fmt.Sprintf("unknown test %q, valid tests are [%s]", name, strings.Join(known, ", ")))
		}
	}
	return nil
}

type fixture struct {
	name string
	new  func() model.Estimator
}

// fixtures は est のパラメータの組ごとにファクトリを返す
func fixtures(est model.Estimator) ([]fixture, error) {
	paramSets := []map[string]interface{}{nil}
	if p, ok := est.(model.TestParamsProvider); ok {
		if sets := p.TestParams(); len(sets) > 0 {
			paramSets = sets
		}
	}

	out := make([]fixture, len(paramSets))
	for i, params := range paramSets {
		base := est.Clone()
		if len(params) > 0 {
			if err := base.SetParams(params); err != nil {
				return nil, errors.Wrapf(err, "%s: test parameter set %d", est.Name(), i)
			}
		}
		out[i] = fixture{
			name: fmt.Sprintf("%s-%d", est.Name(), i),
			new:  base.Clone,
		}
	}
	return out, nil
}

// Estimator は est に対してスイートを実行します。
// 各チェックは新しいクローン上で動作し、est 自体は学習されません。
func Estimator(est model.Estimator, opts ...Option) (Results, error) {
	if est == nil {
		return nil, errors.NewValueError("check.Estimator", "estimator is nil")
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := o.validate(); err != nil {
		return nil, err
	}

	fxs, err := fixtures(est)
	if err != nil {
		return nil, err
	}

	logger := log.GetLoggerWithName("check").With(log.ModelNameKey, est.Name())
	kind := model.KindOf(est)
	results := make(Results)
	for _, c := range suite {
		if c.kind != "" && c.kind != kind {
			continue
		}
		if !o.selected(c.name) {
			continue
		}
		for _, fx := range fxs {
			key := c.name + "[" + fx.name + "]"
			err := errors.SafeExecute(c.name, func() error { return c.fn(fx.new) })
			if err == nil {
				results[key] = Passed
				logger.Debug("check passed", log.OperationKey, log.OperationCheck, "test", key)
				continue
			}
			if o.raise {
				return results, errors.Wrap(err, key)
			}
			results[key] = err.Error()
			logger.Warn("check failed", log.OperationKey, log.OperationCheck, "test", key, "error", err.Error())
		}
	}

	logger.Info("checks finished",
		log.OperationKey, log.OperationCheck,
		"total", len(results),
		"failed", len(results.Failed()),
	)
	return results, nil
}

// All は各エントリの新しいインスタンスに対して Estimator を並行に実行し、
// 結果をエントリ名ごとに返します。Estimator が返した最初のエラー
// （WithRaiseExceptions の場合は最初に失敗したチェック）で停止します。
func All(ctx context.Context, entries []registry.Entry, opts ...Option) (map[string]Results, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var mu sync.Mutex
	out := make(map[string]Results, len(entries))
	for _, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := Estimator(entry.New(), opts...)
			if err != nil {
				return errors.Wrapf(err, "check %s", entry.Name)
			}
			mu.Lock()
			out[entry.Name] = res
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
