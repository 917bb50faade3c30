package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorder(t *testing.T) {
	rec := &Recorder{}
	_, ok := rec.Last()
	assert.False(t, ok)

	Info(rec, "loading")
	Success(rec, "created")
	Error(rec, "failed")

	assert.Len(t, rec.All(), 3)
	assert.Equal(t, []string{"failed"}, rec.Messages(LevelError))
	last, ok := rec.Last()
	require.True(t, ok)
	assert.Equal(t, Notification{Level: LevelError, Message: "failed"}, last)

	rec.Reset()
	assert.Empty(t, rec.All())
}

func TestLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	n := NewLogger(zap.New(core))

	Success(n, "Folder created")
	Error(n, "Move failed")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "Folder created", entries[0].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "error", entries[1].ContextMap()["level"])
}

func TestMulti(t *testing.T) {
	a, b := &Recorder{}, &Recorder{}
	Info(Multi(a, b, Nop), "hi")

	assert.Len(t, a.All(), 1)
	assert.Len(t, b.All(), 1)
}
