package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestFromContextFallsBackToGlobal verifies that a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestContextHelpers verifies that scoped loggers travel through the context
// and that names and fields end up on emitted entries.
func TestContextHelpers(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "packager")
	ctx = WithKV(ctx, "stage", "build")
	ctx = WithFields(ctx, zap.String("app", "KaTrain"))

	Infof(ctx, "finished in %s", "1s")

	entries := logs.All()
	require.Len(t, entries, 1)

	entry := entries[0]
	require.Equal(t, "packager", entry.LoggerName)
	require.Equal(t, "finished in 1s", entry.Message)

	fields := entry.ContextMap()
	require.Equal(t, "build", fields["stage"])
	require.Equal(t, "KaTrain", fields["app"])
}

// TestWithLevel verifies that the option overrides the level of an existing core.
func TestWithLevel(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	l := zap.New(core).WithOptions(WithLevel(zapcore.ErrorLevel)).Sugar()

	l.Info("quiet")
	l.Error("loud")

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "loud", entries[0].Message)
}
