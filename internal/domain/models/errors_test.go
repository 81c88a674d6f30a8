package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodeOfWrapped(t *testing.T) {
	base := NewError(ErrCodeInvalidMode, "mode %q", "LIVE")
	wrapped := fmt.Errorf("run canary: %w", base)

	assert.Equal(t, ErrCodeInvalidMode, CodeOf(wrapped))
	assert.True(t, errors.Is(wrapped, &CodedError{Code: ErrCodeInvalidMode}))
	assert.False(t, errors.Is(wrapped, &CodedError{Code: ErrCodeInvalidScenario}))
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}

func TestWrapErrorUnwrap(t *testing.T) {
	inner := errors.New("dial tcp: refused")
	err := WrapError(ErrCodeNetworkDisabled, inner, "clickhouse")
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "NETWORK_DISABLED")
}
