package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestTestObserved_RecordsNamedEntries(t *testing.T) {
	lggr, logs := TestObserved(t, zapcore.InfoLevel)

	lggr.Named("dispatch").Infow("sequence finished", "status", "Delivered")
	lggr.Debugf("dropped below level")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "sequence finished", entries[0].Message)
	assert.Equal(t, "dispatch", entries[0].LoggerName)
	assert.Equal(t, "Delivered", entries[0].ContextMap()["status"])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("loud")
	assert.Error(t, err)

	lggr, err := New("warn")
	require.NoError(t, err)
	assert.NotNil(t, lggr)
}
