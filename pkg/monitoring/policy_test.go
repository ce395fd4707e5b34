package monitoring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestThresholdPolicyResolve(t *testing.T) {
	t.Parallel()

	policy := split(
		Threshold{Value: 80, Comparison: GreaterThan, EvaluationPeriods: 3},
		Threshold{Value: 70, Comparison: GreaterThan, EvaluationPeriods: 3},
	)

	prod, err := policy.Resolve(Production)
	require.NoError(t, err)
	require.Equal(t, float64(80), prod.Value)

	stg, err := policy.Resolve(Staging)
	require.NoError(t, err)
	require.Equal(t, float64(70), stg.Value)
}

func TestThresholdPolicyResolveMissingEnvironmentFails(t *testing.T) {
	t.Parallel()

	policy := ThresholdPolicy{
		Staging: {Value: 1, Comparison: GreaterThan, EvaluationPeriods: 1},
	}

	_, err := policy.Resolve(Production)
	require.ErrorIs(t, err, ErrMissingEnvironment)
}

func TestThresholdPolicyValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, uniform(Threshold{Value: 1, Comparison: GreaterThan, EvaluationPeriods: 1}).Validate())

	partial := ThresholdPolicy{
		Production: {Value: 1, Comparison: GreaterThan, EvaluationPeriods: 1},
	}
	require.ErrorIs(t, partial.Validate(), ErrMissingEnvironment)
}

func TestCatalogPoliciesCoverEveryEnvironment(t *testing.T) {
	t.Parallel()

	for _, spec := range catalog() {
		require.NoError(t, spec.Policy.Validate(), "alarm %s", spec.Kind)
	}
}

func TestParseEnvironment(t *testing.T) {
	t.Parallel()

	env, err := ParseEnvironment("production")
	require.NoError(t, err)
	require.Equal(t, Production, env)

	_, err = ParseEnvironment("qa")
	require.Error(t, err)
}
