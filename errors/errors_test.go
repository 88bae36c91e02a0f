package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelClassification(t *testing.T) {
	t.Run("validation errors are marked", func(t *testing.T) {
		err := NewValidationError("forbidden keyword: %s", "DROP")
		assert.True(t, IsValidationError(err))
		assert.False(t, IsTransportError(err))
		assert.False(t, IsConfigurationError(err))
		assert.Contains(t, err.Error(), "DROP")
	})

	t.Run("transport errors are marked", func(t *testing.T) {
		err := NewTransportError("connection refused")
		assert.True(t, IsTransportError(err))
		assert.False(t, IsValidationError(err))
	})

	t.Run("configuration errors are marked", func(t *testing.T) {
		err := NewConfigurationError("dataset id is empty")
		assert.True(t, IsConfigurationError(err))
		assert.False(t, IsTransportError(err))
	})

	t.Run("nil is never classified", func(t *testing.T) {
		assert.False(t, IsValidationError(nil))
		assert.False(t, IsTransportError(nil))
		assert.False(t, IsConfigurationError(nil))
		assert.False(t, IsNotFoundError(nil))
	})
}

func TestWrapTransport(t *testing.T) {
	cause := New("dial tcp: connection refused")
	err := WrapTransport(cause, "execute statement")

	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	// Original cause remains reachable through the wrap chain
	assert.True(t, Is(err, cause))
	assert.Contains(t, err.Error(), "execute statement")
}

func TestWrapPreservesSentinel(t *testing.T) {
	err := Wrap(NewValidationError("empty"), "checking statement 3")
	assert.True(t, IsValidationError(err))
}
