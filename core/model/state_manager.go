package model

import (
	"sync"

	"github.com/google/uuid"

	"github.com/YuminosukeSato/minisk/pkg/errors"
)

// StateManager manages the fitted state of an estimator in a thread-safe
// manner: the fitted flag and the labels and shape seen during fitting.
type StateManager struct {
	mu sync.RWMutex

	id           string
	fitted       bool
	featureNames []string
	targetNames  []string
	nSamples     int
}

// NewStateManager creates an unfitted StateManager with a fresh instance id.
func NewStateManager() *StateManager {
	return &StateManager{id: uuid.New().String()}
}

// ID identifies the estimator instance in logs.
func (s *StateManager) ID() string {
	return s.id
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// SetFitted marks the model as fitted on data with the given labels.
// targetNames is nil for transformers.
func (s *StateManager) SetFitted(featureNames, targetNames []string, nSamples int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = true
	s.featureNames = append([]string(nil), featureNames...)
	s.targetNames = append([]string(nil), targetNames...)
	s.nSamples = nSamples
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.featureNames = nil
	s.targetNames = nil
	s.nSamples = 0
}

// FeatureNames returns the column labels of X seen in fit.
func (s *StateManager) FeatureNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.featureNames...)
}

// TargetNames returns the column labels of y seen in fit.
func (s *StateManager) TargetNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.targetNames...)
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.featureNames), s.nSamples
}

// RequireFitted returns a NotFittedError if the model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return errors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState is the serialisable part of a StateManager.
type ModelState struct {
	Fitted       bool     `json:"fitted"`
	FeatureNames []string `json:"feature_names,omitempty"`
	TargetNames  []string `json:"target_names,omitempty"`
	NSamples     int      `json:"n_samples,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Fitted:       s.fitted,
		FeatureNames: append([]string(nil), s.featureNames...),
		TargetNames:  append([]string(nil), s.targetNames...),
		NSamples:     s.nSamples,
	}
}

// SetState restores the state from a ModelState struct.
func (s *StateManager) SetState(state ModelState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = state.Fitted
	s.featureNames = append([]string(nil), state.FeatureNames...)
	s.targetNames = append([]string(nil), state.TargetNames...)
	s.nSamples = state.NSamples
}
