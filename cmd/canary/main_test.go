package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"TreasureEngine/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeReplay(t *testing.T, dir string) string {
	t.Helper()
	var b strings.Builder
	price := 100.0
	for i := 0; i < 12; i++ {
		if i%2 == 1 {
			price *= 1.002
		} else if i > 0 {
			price *= 0.998
		}
		line, err := json.Marshal(models.PriceTick{TsMs: 1_700_006_400_000 + int64(i)*60_000, Symbol: "BTCUSDT", Price: price, Volume: 100})
		require.NoError(t, err)
		b.Write(line)
		b.WriteByte('\n')
	}
	path := filepath.Join(dir, "replay.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func TestRunPrintsReport(t *testing.T) {
	dir := t.TempDir()
	replay := writeReplay(t, dir)
	runCfg := filepath.Join(dir, "run.yaml")
	require.NoError(t, os.WriteFile(runCfg, []byte("mode: PAPER\nscenario: gap_down\nseed: 7\n"), 0o644))

	var out, errOut bytes.Buffer
	code := run(context.Background(), []string{
		"-replay", replay,
		"-config", runCfg,
		"-archive", filepath.Join(dir, "archive.db"),
	}, &out, &errOut)
	require.Equal(t, 0, code, errOut.String())

	var first models.CanaryRun
	require.NoError(t, json.Unmarshal(out.Bytes(), &first))
	assert.Equal(t, models.ModePaper, first.Report.Mode)
	assert.NotEmpty(t, first.Report.Fingerprint)

	// same inputs, same report
	out.Reset()
	require.Equal(t, 0, run(context.Background(), []string{"-replay", replay, "-config", runCfg}, &out, &errOut))
	var second models.CanaryRun
	require.NoError(t, json.Unmarshal(out.Bytes(), &second))
	assert.Equal(t, first.Report.Fingerprint, second.Report.Fingerprint)
}

func TestRunFatalErrors(t *testing.T) {
	dir := t.TempDir()
	replay := writeReplay(t, dir)
	badCfg := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badCfg, []byte("mode: LIVE\n"), 0o644))

	cases := map[string][]string{
		"missing replay flag": {},
		"replay not found":    {"-replay", filepath.Join(dir, "nope.jsonl")},
		"invalid mode":        {"-replay", replay, "-config", badCfg},
		"invalid seed":        {"-replay", replay, "-seed", "-3"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			var out, errOut bytes.Buffer
			assert.Equal(t, exitFatal, run(context.Background(), args, &out, &errOut))
			assert.Empty(t, out.String())
			assert.NotEmpty(t, errOut.String())
		})
	}
}
