package util

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeRFC3339(t *testing.T) {
	s := "2024-10-10T10:10:10Z"
	got, ok := ParseTime(s)
	require.True(t, ok)
	assert.Equal(t, s, got.UTC().Format(time.RFC3339))
}

func TestParseTimeUnix(t *testing.T) {
	ts := time.Date(2024, 10, 10, 10, 10, 10, 0, time.UTC).Unix()
	got, ok := ParseTime(strconv.FormatInt(ts, 10))
	require.True(t, ok)
	assert.Equal(t, ts, got.Unix())
}

func TestParseMillis(t *testing.T) {
	ms := time.Date(2024, 10, 10, 10, 10, 10, 250_000_000, time.UTC).UnixMilli()
	got, ok := ParseMillis(strconv.FormatInt(ms, 10))
	require.True(t, ok)
	assert.Equal(t, ms, got)

	_, ok = ParseMillis("yesterday")
	assert.False(t, ok)
}

func TestParseUint32(t *testing.T) {
	v, ok := ParseUint32("5201")
	require.True(t, ok)
	assert.Equal(t, uint32(5201), v)

	_, ok = ParseUint32("-1")
	assert.False(t, ok)
	_, ok = ParseUint32("4294967296")
	assert.False(t, ok)
}
