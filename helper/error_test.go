package helper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewError(t *testing.T) {
	t.Run("Message contains operation and cause", func(t *testing.T) {
		err := NewError("load gold standard", errors.New("file not found"))
		assert.EqualError(t, err, "load gold standard: file not found")
	})

	t.Run("Cause is reachable with errors.Is", func(t *testing.T) {
		sentinel := errors.New("sentinel")
		err := NewError("outer", NewError("inner", sentinel))
		assert.ErrorIs(t, err, sentinel)

		var helperErr *Error
		assert.ErrorAs(t, err, &helperErr)
		assert.Equal(t, "outer", helperErr.Operation)
	})

	t.Run("Nil cause prints the operation only", func(t *testing.T) {
		err := NewError("noop", nil)
		assert.EqualError(t, err, "noop")
	})
}
