package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	assert.Error(t, err)
}

func TestNewWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.log")
	l, err := New(&Config{Level: "info", Format: "json", Output: path})
	require.NoError(t, err)

	l.With(String("run", "r-1")).Info("canary run finished",
		String("fingerprint", "abc"),
		Float64("reality_gap", 0.57),
		Int("pause_events", 2),
		Bool("stopped", false),
		Error(errors.New("none")),
	)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, `"fingerprint":"abc"`)
	assert.Contains(t, out, `"reality_gap":0.57`)
	assert.Contains(t, out, `"run":"r-1"`)
	assert.Contains(t, out, `"message":"canary run finished"`)
}

func TestFieldKeyValues(t *testing.T) {
	k, v := Strings("symbols", []string{"BTC", "ETH"}).GetKeyValue()
	assert.Equal(t, "symbols", k)
	assert.Equal(t, "BTC, ETH", v)

	k, v = Error(errors.New("boom")).GetKeyValue()
	assert.Equal(t, "error", k)
	assert.Equal(t, "boom", v)
}

func TestNewWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, &Config{Level: "warn", Format: "json"})
	require.NoError(t, err)

	l.Info("dropped")
	l.Warn("kept", Duration("elapsed", 1500*time.Millisecond), Int64("ts_ms", 42))

	out := buf.String()
	assert.NotContains(t, out, "dropped")
	assert.Contains(t, out, `"message":"kept"`)
	assert.Contains(t, out, `"elapsed":1500`)
	assert.Contains(t, out, `"ts_ms":42`)
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Info("ignored")
	l.Error("ignored", Int("n", 1))
}
