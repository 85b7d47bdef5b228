package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange_OpenEnded(t *testing.T) {
	start, end, err := parseRange("bytes=0-", 100)

	require.NoError(t, err)
	assert.Equal(t, int64(0), start)
	assert.Equal(t, int64(99), end)
}

func TestParseRange_Explicit(t *testing.T) {
	start, end, err := parseRange("bytes=10-49", 100)

	require.NoError(t, err)
	assert.Equal(t, int64(10), start)
	assert.Equal(t, int64(49), end)
}

func TestParseRange_MidfileOpenEnded(t *testing.T) {
	start, end, err := parseRange("bytes=50-", 100)

	require.NoError(t, err)
	assert.Equal(t, int64(50), start)
	assert.Equal(t, int64(99), end)
}

func TestParseRange_EndClampedToSize(t *testing.T) {
	start, end, err := parseRange("bytes=10-5000", 100)

	require.NoError(t, err)
	assert.Equal(t, int64(10), start)
	assert.Equal(t, int64(99), end)
}

func TestParseRange_StartAtSize(t *testing.T) {
	_, _, err := parseRange("bytes=100-", 100)

	require.Error(t, err)
	assert.True(t, IsBadRange(err))
}

func TestParseRange_StartBeyondSize(t *testing.T) {
	_, _, err := parseRange("bytes=500-600", 100)

	require.Error(t, err)
	assert.True(t, IsBadRange(err))
}

func TestParseRange_StartAfterEnd(t *testing.T) {
	_, _, err := parseRange("bytes=50-10", 100)

	require.Error(t, err)
	assert.True(t, IsBadRange(err))
}

func TestParseRange_Malformed(t *testing.T) {
	cases := []string{
		"bytes=",
		"bytes=-",
		"bytes=abc-",
		"bytes=10-xyz",
		"bytes=-50",
		"bytes=--10",
		"items=0-10",
		"0-10",
		"bytes=0-10,20-30",
	}

	for _, header := range cases {
		_, _, err := parseRange(header, 100)
		require.Error(t, err, "header %q should be rejected", header)
		assert.True(t, IsBadRange(err), "header %q should be a bad range error", header)
	}
}
