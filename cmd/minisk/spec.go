package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/YuminosukeSato/minisk/pipeline"
	"github.com/YuminosukeSato/minisk/pkg/errors"
	"github.com/YuminosukeSato/minisk/registry"
)

// PipelineSpec is the TOML description of a model to fit.
//
//	targets = ["price"]
//	test_size = 0.25
//	seed = 42
//
//	[[steps]]
//	name = "scaler"
//	estimator = "Scaler"
//	[steps.params]
//	strategy = "minmax"
//
//	[[steps]]
//	name = "linreg"
//	estimator = "LinReg"
type PipelineSpec struct {
	Targets  []string   `toml:"targets"`
	TestSize float64    `toml:"test_size"`
	Seed     uint64     `toml:"seed"`
	Steps    []StepSpec `toml:"steps"`
}

// StepSpec names a registered estimator and its parameters.
type StepSpec struct {
	Name      string                 `toml:"name"`
	Estimator string                 `toml:"estimator"`
	Params    map[string]interface{} `toml:"params"`
}

const defaultTestSize = 0.25

// LoadSpec decodes and validates a pipeline spec. Unknown keys are rejected.
func LoadSpec(path string) (*PipelineSpec, error) {
	var spec PipelineSpec
	md, err := toml.DecodeFile(path, &spec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.NewValueError("LoadSpec", fmt.Sprintf("unknown keys in %s: %s", path, strings.Join(keys, ", ")))
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate fills defaults and checks the pipeline definition.
func (s *PipelineSpec) Validate() error {
	if len(s.Targets) == 0 {
		return errors.NewValidationError("targets", "at least one target column is required", s.Targets)
	}
	if s.TestSize == 0 {
		s.TestSize = defaultTestSize
	}
	if !(s.TestSize > 0 && s.TestSize < 1) {
		return errors.NewValidationError("test_size", "must be in (0, 1)", s.TestSize)
	}
	if len(s.Steps) == 0 {
		return errors.NewValidationError("steps", "at least one step is required", len(s.Steps))
	}
	for i, step := range s.Steps {
		if step.Estimator == "" {
			return errors.NewValidationError(fmt.Sprintf("steps[%d].estimator", i), "is required", step.Estimator)
		}
	}
	return nil
}

// Build instantiates the steps from the registry and wraps them in a
// RegressorPipeline.
func (s *PipelineSpec) Build() (*pipeline.RegressorPipeline, error) {
	steps := make([]pipeline.Step, len(s.Steps))
	for i, st := range s.Steps {
		est, err := registry.New(st.Estimator)
		if err != nil {
			return nil, err
		}
		if len(st.Params) > 0 {
			if err := est.SetParams(st.Params); err != nil {
				return nil, errors.Wrapf(err, "step %d (%s)", i, st.Estimator)
			}
		}
		steps[i] = pipeline.Step{Name: st.Name, Estimator: est}
	}
	return pipeline.NewRegressorPipeline(steps)
}
