package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	t.Run("console output", func(t *testing.T) {
		err := Initialize(false)
		require.NoError(t, err)
		require.NotNil(t, Logger)
		assert.False(t, JSONOutput)
	})

	t.Run("json output", func(t *testing.T) {
		err := Initialize(true)
		require.NoError(t, err)
		require.NotNil(t, Logger)
		assert.True(t, JSONOutput)
	})
}

func TestHelpersSafeBeforeInitialize(t *testing.T) {
	// The package-level nop logger must absorb calls without panicking
	assert.NotPanics(t, func() {
		Info("hello")
		Infof("hello %s", "world")
		Infow("hello", "key", "value")
		Warnw("warn", "key", "value")
		Errorw("error", "key", "value")
		Debugw("debug", "key", "value")
		Cleanup()
	})
}
