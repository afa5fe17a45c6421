package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	err := New(CodePaused, "registry is paused")
	assert.True(t, HasCode(err, CodePaused))
	assert.False(t, HasCode(err, CodeInvalidInvoice))
	assert.False(t, HasCode(errors.New("plain"), CodePaused))
	assert.False(t, HasCode(nil, CodePaused))
}

func TestWrapKeepsCauseAndOuterCode(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeInternal, "failed to load invoice")

	require.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load invoice: connection reset", err.Error())

	outer := fmt.Errorf("handler: %w", err)
	code, ok := CodeOf(outer)
	require.True(t, ok)
	assert.Equal(t, CodeInternal, code)
}
