package clickhouse

import (
	"testing"
	"time"

	ch "github.com/ClickHouse/clickhouse-go/v2"
	"github.com/stretchr/testify/assert"
)

func TestBuildOptions(t *testing.T) {
	opts := buildOptions(ClientConfig{
		Host:         "ch.local",
		Port:         8123,
		Database:     "treasure",
		User:         "canary",
		Password:     "secret",
		UseHTTP:      true,
		AsyncInsert:  true,
		WaitForAsync: true,
		MaxExecTime:  30 * time.Second,
		DialTimeout:  time.Second,
	})

	assert.Equal(t, ch.HTTP, opts.Protocol)
	assert.Equal(t, []string{"ch.local:8123"}, opts.Addr)
	assert.Equal(t, "treasure", opts.Auth.Database)
	assert.Equal(t, "canary", opts.Auth.Username)
	assert.Equal(t, 30, opts.Settings["max_execution_time"])
	assert.Equal(t, 1, opts.Settings["async_insert"])
	assert.Equal(t, 1, opts.Settings["wait_for_async_insert"])
	assert.Equal(t, time.Second, opts.DialTimeout)
}

func TestBuildOptionsNativeDefaults(t *testing.T) {
	opts := buildOptions(ClientConfig{Host: "h", Port: 9000})
	assert.Equal(t, ch.Native, opts.Protocol)
	assert.Empty(t, opts.Settings)
}

func TestOptions(t *testing.T) {
	cfg := ClientConfig{Port: 9000, MaxOpenConns: 10}
	for _, opt := range []ClientOption{
		WithAddr("ch", 0),
		WithPool(0, 3, 0),
		WithTickInserts(false, true, time.Minute),
	} {
		opt(&cfg)
	}
	assert.Equal(t, "ch", cfg.Host)
	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, 10, cfg.MaxOpenConns)
	assert.Equal(t, 3, cfg.MaxIdleConns)
	// waiting only makes sense for async inserts
	assert.False(t, cfg.WaitForAsync)
	assert.Equal(t, time.Minute, cfg.MaxExecTime)
}

func TestNewClientRequiresHost(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}
