package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIntDefault(t *testing.T) {
	require.Equal(t, 1, ParseIntDefault("", 1))
	require.Equal(t, 7, ParseIntDefault("7", 1))
	require.Equal(t, 1, ParseIntDefault("seven", 1))
}

func TestCalculate(t *testing.T) {
	offset, limit := Calculate(1, 20)
	require.Equal(t, 0, offset)
	require.Equal(t, 20, limit)

	offset, limit = Calculate(3, 10)
	require.Equal(t, 20, offset)
	require.Equal(t, 10, limit)

	offset, limit = Calculate(0, 0)
	require.Equal(t, 0, offset)
	require.Equal(t, DefaultPageSize, limit)

	offset, limit = Calculate(-2, 10_000)
	require.Equal(t, 0, offset)
	require.Equal(t, DefaultPageSize, limit)
}
