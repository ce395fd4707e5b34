package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMergeFields(t *testing.T) {
	t.Parallel()

	require.Nil(t, MergeFields())
	require.Nil(t, MergeFields(nil, map[string]any{}))

	merged := MergeFields(
		map[string]any{"a": 1, "b": 1},
		map[string]any{"b": 2},
	)
	require.Equal(t, map[string]any{"a": 1, "b": 2}, merged)
}

func TestTestLogger_CapturesDerivedLoggers(t *testing.T) {
	t.Parallel()

	logger := NewTestLogger()
	derived := logger.WithField("component", "monitoring")
	derived.Warn("composite skipped")

	require.True(t, logger.HasMessage("warn", "composite skipped"))

	entries := logger.Entries()
	require.Len(t, entries, 1)
	require.Equal(t, "monitoring", entries[0].Fields["component"])

	logger.Reset()
	require.Empty(t, logger.Entries())
}

func TestNoOpLogger_DoesNothing(t *testing.T) {
	t.Parallel()

	logger := NewNoOpLogger()
	logger.Info("ignored")
	require.NotNil(t, logger.WithField("k", "v"))
}
