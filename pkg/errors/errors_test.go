package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndIsCode(t *testing.T) {
	base := errors.New("boom")
	err := Wrap("store_error", "save failed", base)
	require.EqualError(t, err, "save failed: boom")
	require.True(t, IsCode(err, "store_error"))
	require.False(t, IsCode(err, "invalid_input"))
	require.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("outer: %w", err)
	require.True(t, IsCode(wrapped, "store_error"))
}

func TestWithDetails(t *testing.T) {
	problems := []string{"Age is required", "Weight is required"}
	err := WithDetails("invalid_input", "form has errors", problems)
	problems[0] = "mutated"

	require.True(t, IsCode(err, "invalid_input"))
	require.Equal(t, []string{"Age is required", "Weight is required"}, DetailsOf(err))
	require.Nil(t, DetailsOf(errors.New("plain")))
}
