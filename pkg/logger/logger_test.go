package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Levels(t *testing.T) {
	l, err := New("debug", "json")
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))

	l, err = New("", "console")
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))

	_, err = New("loud", "json")
	assert.Error(t, err)
}

func TestContextMethods_AttachRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := &Logger{Logger: zap.New(core)}

	ctx := WithRequestID(context.Background(), "req-1")
	l.ErrorContext(ctx, "boom", StringField("topic_id", "t1"))
	l.DebugContext(context.Background(), "quiet")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, "t1", entries[0].ContextMap()["topic_id"])
	_, ok := entries[1].ContextMap()["request_id"]
	assert.False(t, ok)
}
