package di

import (
	"path/filepath"
	"testing"

	"TreasureEngine/internal/domain/models"
	internalrepo "TreasureEngine/internal/repository"
	"TreasureEngine/pkg/config"
	applogger "TreasureEngine/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func offlineConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	cfg.Environment = "test"
	cfg.Archive.Path = filepath.Join(t.TempDir(), "canary.db")
	return cfg
}

func TestInitializeAppOffline(t *testing.T) {
	app, err := InitializeApp(offlineConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, app)
}

func TestNetworkedAdaptersFailClosed(t *testing.T) {
	cfg := offlineConfig(t)
	cfg.ClickHouse.Enabled = true
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.Recorder.Enabled = true
	cfg.Sources.Overfit = "http"
	cfg.Overfit.URL = "http://localhost:1"
	gate := ProvideNetworkGate(models.RunCapabilities{})

	_, err := ProvideClickHouseClient(cfg, gate)
	assert.Equal(t, models.ErrCodeNetworkDisabled, models.CodeOf(err))
	_, err = ProvideRedisClient(cfg, gate)
	assert.Equal(t, models.ErrCodeNetworkDisabled, models.CodeOf(err))
	_, err = ProvideKafkaProducer(cfg, gate)
	assert.Equal(t, models.ErrCodeNetworkDisabled, models.CodeOf(err))
	_, err = ProvideKafkaConsumer(cfg, gate, nil, applogger.Nop())
	assert.Equal(t, models.ErrCodeNetworkDisabled, models.CodeOf(err))
	_, err = ProvideOverfitSource(cfg, gate)
	assert.Equal(t, models.ErrCodeNetworkDisabled, models.CodeOf(err))
	_, err = ProvideTickRecorder(cfg, gate, nil, nil, applogger.Nop())
	assert.Equal(t, models.ErrCodeNetworkDisabled, models.CodeOf(err))
}

func TestSourceSelection(t *testing.T) {
	cfg := offlineConfig(t)

	replays, err := ProvideReplaySource(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &internalrepo.JSONLReplaySource{}, replays)

	cfg.Sources.Fills = "none"
	fills, err := ProvideFillSource(cfg, nil)
	require.NoError(t, err)
	assert.Nil(t, fills)

	cfg.Sources.Replay = "clickhouse"
	_, err = ProvideReplaySource(cfg, nil)
	assert.Error(t, err)

	// disabled adapters are simply absent
	cfg.ClickHouse.Enabled = false
	client, err := ProvideClickHouseClient(cfg, ProvideNetworkGate(models.RunCapabilities{}))
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestReportStoreWithoutRedisOrArchive(t *testing.T) {
	cfg := offlineConfig(t)
	cache := ProvideReportCache(cfg, nil)
	defer cache.Close()
	store := ProvideReportStore(cfg, cache, nil)
	assert.NotNil(t, store)
	assert.IsType(t, internalrepo.NopReportPublisher{}, ProvideReportPublisher(cfg, nil))
}
