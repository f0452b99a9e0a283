// Package registry enumerates the estimators of the module.
//
// Estimator packages register a factory from init, so importing a package
// makes its estimators discoverable:
//
//	import (
//	    _ "github.com/YuminosukeSato/minisk/linear"
//	    _ "github.com/YuminosukeSato/minisk/preprocessing"
//	)
//
//	entries, err := registry.AllEstimators(registry.WithTypes("regressor"))
//
// Base types and templates are never registered.
package registry

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/YuminosukeSato/minisk/core/model"
	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// Factory returns a new, unfitted estimator with default (or test) parameters.
type Factory func() model.Estimator

var (
	mu        sync.RWMutex
	factories = make(map[string]Factory)
)

// Register makes an estimator available by name. It panics if factory is
// nil or if Register is called twice with the same name.
func Register(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if factory == nil {
		panic("registry: Register factory is nil for " + name)
	}
	if _, dup := factories[name]; dup {
		panic("registry: Register called twice for estimator " + name)
	}
	factories[name] = factory
}

// Names returns the registered names in sorted order.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New returns a fresh estimator registered under name.
func New(name string) (model.Estimator, error) {
	mu.RLock()
	factory, ok := factories[name]
	mu.RUnlock()
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnknownEstimator, "%q (registered: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Entry describes one registered estimator.
type Entry struct {
	Name string
	// Type is the estimator_type tag: regressor, transformer or estimator.
	Type string
	New  Factory
	// Tags holds the tags requested with WithReturnTags, nil otherwise.
	Tags model.Tags
}

type options struct {
	types      []string
	filterTags map[string][]string
	exclude    map[string]struct{}
	returnTags []string
}

// Option configures AllEstimators.
type Option func(*options)

// WithTypes keeps estimators whose estimator_type is one of types
// ("regressor", "transformer").
func WithTypes(types ...string) Option {
	return func(o *options) {
		o.types = append(o.types, types...)
	}
}

// WithFilterTags keeps estimators that, for every key, carry the tag with one
// of the listed values.
func WithFilterTags(tags map[string][]string) Option {
	return func(o *options) {
		if o.filterTags == nil {
			o.filterTags = make(map[string][]string, len(tags))
		}
		for k, v := range tags {
			o.filterTags[k] = append([]string(nil), v...)
		}
	}
}

// WithExclude drops the named estimators.
func WithExclude(names ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]struct{}, len(names))
		}
		for _, n := range names {
			o.exclude[n] = struct{}{}
		}
	}
}

// WithReturnTags fills Entry.Tags with the given tags. Missing tags are
// returned as empty strings.
func WithReturnTags(tags ...string) Option {
	return func(o *options) {
		o.returnTags = append(o.returnTags, tags...)
	}
}

// ValidTypes lists the values accepted by WithTypes and AllTags.
var ValidTypes = []string{model.EstimatorTypeRegressor, model.EstimatorTypeTransformer}

func checkTypes(op string, types []string) error {
	for _, t := range types {
		if !contains(ValidTypes, t) {
			return errors.NewValueError(op,
				fmt.Sprintf("estimator type must be one of [%s], but found %q", strings.Join(ValidTypes, ", "), t))
		}
	}
	return nil
}

// AllEstimators lists registered estimators sorted by name.
func AllEstimators(opts ...Option) ([]Entry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := checkTypes("registry.AllEstimators", o.types); err != nil {
		return nil, err
	}

	mu.RLock()
	names := make([]string, 0, len(factories))
	snapshot := make(map[string]Factory, len(factories))
	for name, f := range factories {
		names = append(names, name)
		snapshot[name] = f
	}
	mu.RUnlock()
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		if _, skip := o.exclude[name]; skip {
			continue
		}
		factory := snapshot[name]
		tags := factory().Tags()
		kind := tags[model.TagEstimatorType]

		if len(o.types) > 0 && !contains(o.types, kind) {
			continue
		}
		if !matchTags(tags, o.filterTags) {
			continue
		}

		entry := Entry{Name: name, Type: kind, New: factory}
		if len(o.returnTags) > 0 {
			entry.Tags = make(model.Tags, len(o.returnTags))
			for _, t := range o.returnTags {
				entry.Tags[t] = tags[t]
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func matchTags(tags model.Tags, filter map[string][]string) bool {
	for key, values := range filter {
		v, ok := tags[key]
		if !ok || !contains(values, v) {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
