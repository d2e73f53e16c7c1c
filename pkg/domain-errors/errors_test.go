package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches direct error", func(t *testing.T) {
		err := New(CodeNotFound, "User not found")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("matches through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", New(CodeConflict, "exists"))
		assert.True(t, HasCode(err, CodeConflict))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load user")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load user: connection reset", err.Error())
}

func TestNewField(t *testing.T) {
	err := NewField("Age", "Age must be between 18 and 100")

	de, ok := As(err)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Equal(t, "Age", de.Field)
	assert.True(t, de.Code.IsClientError())
	assert.False(t, CodeInternal.IsClientError())
}
