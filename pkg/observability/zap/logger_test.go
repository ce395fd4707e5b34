package zap

import (
	"testing"

	"github.com/stretchr/testify/require"
	ubzap "go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_RejectsBadFormatAndLevel(t *testing.T) {
	t.Parallel()

	_, err := NewLogger(Config{Format: "xml"})
	require.Error(t, err)

	_, err = NewLogger(Config{Level: "loud"})
	require.Error(t, err)
}

func TestLogger_FieldsReachZap(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	logger, err := NewLogger(Config{}, WithZapLogger(ubzap.New(core)))
	require.NoError(t, err)

	logger.WithField("environment", "staging").Warn("geo blocking enabled with no countries", map[string]any{
		"rule": "GeoBlock",
	})

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Equal(t, "geo blocking enabled with no countries", entries[0].Message)

	fields := entries[0].ContextMap()
	require.Equal(t, "staging", fields["environment"])
	require.Equal(t, "GeoBlock", fields["rule"])
}

func TestLogger_WithFieldsDoesNotMutateParent(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.DebugLevel)
	logger, err := NewLogger(Config{}, WithZapLogger(ubzap.New(core)))
	require.NoError(t, err)

	_ = logger.WithField("a", 1)
	logger.Info("plain")

	entries := observed.All()
	require.Len(t, entries, 1)
	require.Empty(t, entries[0].ContextMap())
}
