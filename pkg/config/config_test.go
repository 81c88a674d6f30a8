package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"TreasureEngine/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsApplied(t *testing.T) {
	c, err := Parse([]byte("environment: test\n"))
	require.NoError(t, err)

	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Server.ReadTimeout)
	assert.Equal(t, "0.0.0.0", c.Server.Host)
	assert.True(t, c.Server.CORS)
	assert.Equal(t, "info", c.Logger.Level)
	assert.False(t, c.Capabilities.NetworkEnabled)
	assert.True(t, c.Capabilities.KillSwitchEnabled)
	assert.Equal(t, "canary.run.requests", c.Kafka.RequestTopic)
	assert.Equal(t, "canary.reports", c.Kafka.ReportTopic)
	assert.Equal(t, models.DefaultCanaryRunConfig(), c.Canary)
	assert.Equal(t, 168*time.Hour, c.Redis.ReportTTL)
	assert.Equal(t, 2, c.Queue.Workers)
	assert.Equal(t, 10*time.Second, c.Queue.RetryDelay)
}

func TestExplicitFalseOverridesDefault(t *testing.T) {
	c, err := Parse([]byte("capabilities:\n  kill_switch_enabled: false\n"))
	require.NoError(t, err)
	assert.False(t, c.Capabilities.KillSwitchEnabled)
}

func TestCanarySectionMergesOverDefaults(t *testing.T) {
	yml := `
canary:
  mode: PAPER
  scenario: gap_down
  seed: 5201
  thresholds:
    max_reality_gap: 0.5
`
	c, err := Parse([]byte(yml))
	require.NoError(t, err)
	assert.Equal(t, models.ModePaper, c.Canary.Mode)
	assert.Equal(t, uint32(5201), c.Canary.Seed)
	assert.Equal(t, 0.5, c.Canary.Thresholds.MaxRealityGap)
	// Thresholds the file omits keep their defaults.
	assert.Equal(t, 3, c.Canary.Thresholds.MaxRiskEvents)
}

func TestValidateCrossSection(t *testing.T) {
	tests := []struct {
		name string
		yml  string
	}{
		{"kafka without brokers", "kafka:\n  enabled: true\n"},
		{"queue without redis", "queue:\n  enabled: true\n"},
		{"recorder without clickhouse", "recorder:\n  enabled: true\n  api_key: k\n  symbols: [AAPL]\n"},
		{"clickhouse replay disabled", "sources:\n  replay: clickhouse\n"},
		{"http overfit without url", "sources:\n  overfit: http\n"},
		{"bad log level", "logger:\n  level: loud\n"},
		{"bad source", "sources:\n  replay: s3\n"},
		{"unknown key", "servr:\n  port: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yml))
			assert.Error(t, err)
		})
	}
}

func TestApplyEnv(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)
	env := map[string]string{
		"TREASURE_NETWORK_ENABLED": "true",
		"KAFKA_BROKERS":            "a:9092,b:9092",
		"REDIS_ADDR":               "redis:6379",
		"TREASURE_HTTP_PORT":       "not-a-port",
	}
	require.NoError(t, c.applyEnv(func(k string) string { return env[k] }))
	assert.True(t, c.Capabilities.NetworkEnabled)
	assert.Equal(t, []string{"a:9092", "b:9092"}, c.Kafka.Brokers)
	assert.Equal(t, "redis:6379", c.Redis.Addr)
	assert.Equal(t, 8080, c.Server.Port)

	env["TREASURE_NETWORK_ENABLED"] = "maybe"
	assert.Error(t, c.applyEnv(func(k string) string { return env[k] }))
}

func TestLoadRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mode: GUARDED_LIVE\nscenario: whipsaw\nstrict: true\n"), 0o644))

	cfg, err := LoadRunConfig(path)
	require.NoError(t, err)
	assert.Equal(t, models.ModeGuardedLive, cfg.Mode)
	assert.Equal(t, "whipsaw", cfg.Scenario)
	assert.True(t, cfg.Strict)
	assert.True(t, cfg.KillSwitch.Enabled)

	_, err = LoadRunConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestShippedConfigLoads(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "config", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, uint32(1337), c.Canary.Seed)
	assert.True(t, c.Archive.Enabled)
	assert.False(t, c.Queue.Enabled)
}
