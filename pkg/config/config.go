package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"TreasureEngine/internal/domain/models"
	applogger "TreasureEngine/pkg/logger"
	"TreasureEngine/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment  string                 `yaml:"environment" default:"development" validate:"oneof=development staging production test"`
	Server       ServerConfig           `yaml:"server"`
	Logger       applogger.Config       `yaml:"logger"`
	Capabilities CapabilitiesConfig     `yaml:"capabilities"`
	Canary       models.CanaryRunConfig `yaml:"canary"`
	Sources      SourcesConfig          `yaml:"sources"`
	Kafka        KafkaConfig            `yaml:"kafka"`
	ClickHouse   ClickHouseConfig       `yaml:"clickhouse"`
	Redis        RedisConfig            `yaml:"redis"`
	Queue        QueueConfig            `yaml:"queue"`
	Archive      ArchiveConfig          `yaml:"archive"`
	Recorder     RecorderConfig         `yaml:"recorder"`
	Overfit      OverfitConfig          `yaml:"overfit"`
	Paper        PaperConfig            `yaml:"paper"`
	RateLimit    RateLimitConfig        `yaml:"ratelimit"`
}

type ServerConfig struct {
	Host            string        `yaml:"host" default:"0.0.0.0"`
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	MetricsPath     string        `yaml:"metrics_path" default:"/metrics"`
	CORS            bool          `yaml:"cors" default:"true"`
}

// CapabilitiesConfig is what the host grants every run.
type CapabilitiesConfig struct {
	NetworkEnabled    bool `yaml:"network_enabled" default:"false"`
	KillSwitchEnabled bool `yaml:"kill_switch_enabled" default:"true"`
}

// Capabilities converts the section into the value handed to runs.
func (c CapabilitiesConfig) Capabilities() models.RunCapabilities {
	return models.RunCapabilities{
		NetworkEnabled:    c.NetworkEnabled,
		KillSwitchEnabled: c.KillSwitchEnabled,
	}
}

// SourcesConfig selects where replays, fills and overfit reports are loaded from.
type SourcesConfig struct {
	Replay      string `yaml:"replay" default:"file" validate:"oneof=file clickhouse"`
	ReplayPath  string `yaml:"replay_path" default:"data/replay.jsonl"`
	Fills       string `yaml:"fills" default:"file" validate:"oneof=none file clickhouse"`
	FillsPath   string `yaml:"fills_path" default:"data/fills.jsonl"`
	Overfit     string `yaml:"overfit" default:"file" validate:"oneof=none file http"`
	OverfitPath string `yaml:"overfit_path" default:"data/overfit.json"`
}

type KafkaConfig struct {
	Enabled      bool     `yaml:"enabled"`
	Brokers      []string `yaml:"brokers"`
	RequestTopic string   `yaml:"request_topic" default:"canary.run.requests"`
	ReportTopic  string   `yaml:"report_topic" default:"canary.reports"`
	RequiredAcks int      `yaml:"required_acks" default:"-1"`
	Compression  string   `yaml:"compression" default:"snappy" validate:"oneof=none gzip snappy lz4 zstd"`
	Producer     struct {
		MaxAttempts  int           `yaml:"max_attempts" default:"5"`
		Linger       time.Duration `yaml:"linger" default:"10ms"`
		BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
		BatchSize    int           `yaml:"batch_size" default:"100"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
	} `yaml:"producer"`
	Consumer struct {
		GroupID    string        `yaml:"group_id" default:"treasure-canary"`
		Workers    int           `yaml:"workers" default:"2" validate:"gte=1"`
		BufferSize int           `yaml:"buffer_size" default:"16"`
		RetryMax   int           `yaml:"retry_max" default:"3"`
		BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
		BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
		DLQTopic   string        `yaml:"dlq_topic" default:"canary.run.requests.dlq"`
		MinBytes   int           `yaml:"min_bytes" default:"1"`
		MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
	} `yaml:"consumer"`
}

type ClickHouseConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Host             string        `yaml:"host" default:"localhost"`
	Port             int           `yaml:"port" default:"9000"`
	Database         string        `yaml:"database" default:"treasure"`
	User             string        `yaml:"user" default:"default"`
	Password         string        `yaml:"password"`
	UseHTTP          bool          `yaml:"use_http"`
	AsyncInsert      bool          `yaml:"async_insert" default:"true"`
	WaitForAsync     bool          `yaml:"wait_for_async_insert"`
	DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
	MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
}

type RedisConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Addr      string        `yaml:"addr" default:"localhost:6379"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	Prefix    string        `yaml:"prefix" default:"treasure"`
	ReportTTL time.Duration `yaml:"report_ttl" default:"168h"`
}

// QueueConfig drives the Redis work queue behind asynchronous run submissions.
type QueueConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Workers      int           `yaml:"workers" default:"2" validate:"gte=1"`
	RetryLimit   int           `yaml:"retry_limit" default:"3" validate:"gte=0"`
	RetryDelay   time.Duration `yaml:"retry_delay" default:"10s"`
	PollInterval time.Duration `yaml:"poll_interval" default:"5s"`
}

// ArchiveConfig points at the local SQLite archive of finished runs.
type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	Path    string `yaml:"path" default:"data/canary.db"`
}

// RecorderConfig drives the websocket trade recorder that feeds ClickHouse replays.
type RecorderConfig struct {
	Enabled        bool          `yaml:"enabled"`
	APIKey         string        `yaml:"api_key"`
	WebSocketURL   string        `yaml:"websocket_url" default:"wss://ws.finnhub.io"`
	Symbols        []string      `yaml:"symbols"`
	ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
	PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	BatchSize      int           `yaml:"batch_size" default:"500" validate:"gte=1"`
	FlushInterval  time.Duration `yaml:"flush_interval" default:"1s"`
}

type OverfitConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout" default:"5s"`
}

type PaperConfig struct {
	InitialBalanceUSD float64 `yaml:"initial_balance_usd" default:"10000" validate:"gt=0"`
	BaseNotionalUSD   float64 `yaml:"base_notional_usd" default:"1000" validate:"gt=0"`
	FeeBps            float64 `yaml:"fee_bps" default:"5" validate:"gte=0"`
	MinTradeUSD       float64 `yaml:"min_trade_usd" default:"1" validate:"gt=0"`
}

// RateLimitConfig bounds run submissions per client on the HTTP API.
type RateLimitConfig struct {
	Capacity     float64 `yaml:"capacity" default:"10" validate:"gt=0"`
	RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5" validate:"gt=0"`
}

var validate = validator.New()

// Default returns a configuration with every default tag applied.
func Default() (*Config, error) {
	c := &Config{Canary: models.DefaultCanaryRunConfig()}
	if err := defaults.Set(c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	return c, nil
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(b []byte) (*Config, error) {
	c, err := Default()
	if err != nil {
		return nil, err
	}
	if err := decodeStrict(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("TREASURE_NETWORK_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TREASURE_NETWORK_ENABLED: %w", err)
		}
		c.Capabilities.NetworkEnabled = b
	}
	if v := getenv("TREASURE_KILL_SWITCH_ENABLED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("TREASURE_KILL_SWITCH_ENABLED: %w", err)
		}
		c.Capabilities.KillSwitchEnabled = b
	}
	if v := getenv("TREASURE_HTTP_PORT"); v != "" {
		c.Server.Port = util.ParseIntDefault(v, c.Server.Port)
	}
	if v := getenv("TREASURE_LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Recorder.APIKey = v
	}
	if v := getenv("SYMBOLS"); v != "" {
		c.Recorder.Symbols = strings.Split(v, ",")
	}
	if v := getenv("TREASURE_ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
	if v := getenv("OVERFIT_URL"); v != "" {
		c.Overfit.URL = v
	}
	return nil
}

// Validate runs tag validation and the cross-section rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Queue.Enabled && !c.Redis.Enabled {
		return errors.New("queue requires redis.enabled")
	}
	if c.Recorder.Enabled {
		if len(c.Recorder.Symbols) == 0 {
			return errors.New("recorder.symbols cannot be empty when the recorder is enabled")
		}
		if c.Recorder.APIKey == "" {
			return errors.New("recorder.api_key is required when the recorder is enabled")
		}
		if !c.ClickHouse.Enabled {
			return errors.New("recorder requires clickhouse.enabled")
		}
	}
	if c.Sources.Replay == "clickhouse" && !c.ClickHouse.Enabled {
		return errors.New("sources.replay=clickhouse requires clickhouse.enabled")
	}
	if c.Sources.Fills == "clickhouse" && !c.ClickHouse.Enabled {
		return errors.New("sources.fills=clickhouse requires clickhouse.enabled")
	}
	if c.Sources.Overfit == "http" && c.Overfit.URL == "" {
		return errors.New("overfit.url is required when sources.overfit=http")
	}
	return nil
}

// LoadRunConfig reads a canary run config file. Fields it omits keep their defaults;
// semantic validation is left to the controller.
func LoadRunConfig(path string) (models.CanaryRunConfig, error) {
	cfg := models.DefaultCanaryRunConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read run config: %w", err)
	}
	if err := decodeStrict(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse run config: %w", err)
	}
	return cfg, nil
}

func decodeStrict(b []byte, out interface{}) error {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
