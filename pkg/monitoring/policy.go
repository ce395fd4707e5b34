package monitoring

import (
	"errors"
	"fmt"
)

// Comparison is the direction an alarm compares its signal to the threshold.
type Comparison string

const (
	GreaterThan Comparison = "greater-than"
	LessThan    Comparison = "less-than"
)

// Threshold is one environment's entry in a ThresholdPolicy.
type Threshold struct {
	Value             float64
	Comparison        Comparison
	EvaluationPeriods int
}

// ThresholdPolicy maps each environment to its threshold.
//
// A missing entry for the active environment is a specification bug, not a
// runtime condition: Resolve hard-fails instead of falling back to a default.
type ThresholdPolicy map[Environment]Threshold

// ErrMissingEnvironment marks a threshold policy with no entry for the
// environment being synthesized.
var ErrMissingEnvironment = errors.New("monitoring: threshold policy has no entry for environment")

// Resolve looks up the threshold for one environment.
func (p ThresholdPolicy) Resolve(env Environment) (Threshold, error) {
	t, ok := p[env]
	if !ok {
		return Threshold{}, fmt.Errorf("%w: %s", ErrMissingEnvironment, env)
	}
	return t, nil
}

// Validate checks that the policy covers every supported environment.
func (p ThresholdPolicy) Validate() error {
	for _, env := range SupportedEnvironments() {
		if _, ok := p[env]; !ok {
			return fmt.Errorf("%w: %s", ErrMissingEnvironment, env)
		}
	}
	return nil
}

// uniform builds a policy with the same threshold in every environment.
func uniform(t Threshold) ThresholdPolicy {
	policy := make(ThresholdPolicy, len(SupportedEnvironments()))
	for _, env := range SupportedEnvironments() {
		policy[env] = t
	}
	return policy
}

// split builds the common two-way policy: one production value, one value
// shared by everything else.
func split(production, nonProduction Threshold) ThresholdPolicy {
	policy := make(ThresholdPolicy, len(SupportedEnvironments()))
	for _, env := range SupportedEnvironments() {
		if env == Production {
			policy[env] = production
		} else {
			policy[env] = nonProduction
		}
	}
	return policy
}
