package fetch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult(t *testing.T) {
	ok := Ok(42)
	require.True(t, ok.IsOk())
	require.Nil(t, ok.Failure())
	value, err := ok.Unwrap()
	require.NoError(t, err)
	require.Equal(t, 42, value)

	cause := errors.New("connection refused")
	failed := Err[int](Fail(ReasonConnection, "esearch", cause))
	require.False(t, failed.IsOk())
	value, err = failed.Unwrap()
	require.Zero(t, value)
	require.ErrorIs(t, err, ErrConnection)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Equal(t, "connection error: esearch: connection refused", err.Error())

	require.Panics(t, func() { Err[int](nil) })
}
