package di

import (
	"context"
	"fmt"
	"time"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	"TreasureEngine/internal/handler/api"
	internalrepo "TreasureEngine/internal/repository"
	"TreasureEngine/internal/service/ratelimit"
	"TreasureEngine/internal/service/recorder"
	"TreasureEngine/internal/services/paper"
	"TreasureEngine/internal/usecase"
	"TreasureEngine/pkg/cache"
	pkgch "TreasureEngine/pkg/clickhouse"
	"TreasureEngine/pkg/config"
	xhttp "TreasureEngine/pkg/http"
	"TreasureEngine/pkg/http/middleware"
	pkgkafka "TreasureEngine/pkg/kafka"
	applogger "TreasureEngine/pkg/logger"
	"TreasureEngine/pkg/metrics"
	"TreasureEngine/pkg/queue"
	"TreasureEngine/pkg/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

// ProvideLogger builds the process logger from the logger section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideCapabilities returns what the host grants every run.
func ProvideCapabilities(cfg *config.Config) models.RunCapabilities {
	return cfg.Capabilities.Capabilities()
}

// ProvideNetworkGate guards every networked adapter below.
func ProvideNetworkGate(caps models.RunCapabilities) internalrepo.NetworkGate {
	return internalrepo.NewNetworkGate(caps)
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient opens ClickHouse when enabled. Nil when disabled.
func ProvideClickHouseClient(cfg *config.Config, gate internalrepo.NetworkGate) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	if err := gate.Allow("clickhouse"); err != nil {
		return nil, err
	}
	client, err := pkgch.NewClient(
		pkgch.WithAddr(cfg.ClickHouse.Host, cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithPool(10, 5, 0),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithTickInserts(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync, cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	return client, nil
}

// ProvideMarketStore wraps the ClickHouse client and creates its tables. Nil without a client.
func ProvideMarketStore(client *pkgch.Client, cfg *config.Config, l *applogger.Logger) (*internalrepo.ClickHouseMarketStore, error) {
	if client == nil {
		return nil, nil
	}
	store := internalrepo.NewClickHouseMarketStore(client, cfg.ClickHouse.Database, "recorder")
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, store.SchemaStatements()); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideReplaySource selects the replay source named by sources.replay.
func ProvideReplaySource(cfg *config.Config, store *internalrepo.ClickHouseMarketStore) (domrepo.MarketReplaySource, error) {
	switch cfg.Sources.Replay {
	case "clickhouse":
		if store == nil {
			return nil, fmt.Errorf("replay source clickhouse: no clickhouse client")
		}
		return store, nil
	default:
		return internalrepo.NewJSONLReplaySource(cfg.Sources.ReplayPath), nil
	}
}

// ProvideFillSource selects the fill history source. Nil for "none".
func ProvideFillSource(cfg *config.Config, store *internalrepo.ClickHouseMarketStore) (domrepo.FillHistorySource, error) {
	switch cfg.Sources.Fills {
	case "none":
		return nil, nil
	case "clickhouse":
		if store == nil {
			return nil, fmt.Errorf("fill source clickhouse: no clickhouse client")
		}
		return store, nil
	default:
		return internalrepo.NewJSONLFillSource(cfg.Sources.FillsPath), nil
	}
}

// ProvideOverfitSource selects the overfit report source. Nil for "none".
func ProvideOverfitSource(cfg *config.Config, gate internalrepo.NetworkGate) (domrepo.OverfitReportSource, error) {
	switch cfg.Sources.Overfit {
	case "none":
		return nil, nil
	case "http":
		if err := gate.Allow("overfit http source"); err != nil {
			return nil, err
		}
		client := xhttp.NewClient(
			xhttp.WithBaseURL(cfg.Overfit.URL),
			xhttp.WithTimeout(cfg.Overfit.Timeout),
		)
		return internalrepo.NewHTTPOverfitSource(client), nil
	default:
		return internalrepo.NewJSONOverfitSource(cfg.Sources.OverfitPath), nil
	}
}

// ProvideRedisClient connects to Redis when enabled. Nil when disabled.
func ProvideRedisClient(cfg *config.Config, gate internalrepo.NetworkGate) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	if err := gate.Allow("redis"); err != nil {
		return nil, err
	}
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// ProvideReportArchive opens the SQLite archive when enabled. Nil when disabled.
func ProvideReportArchive(cfg *config.Config) (*internalrepo.SQLiteReportArchive, error) {
	if !cfg.Archive.Enabled {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a, err := internalrepo.OpenSQLiteReportArchive(ctx, cfg.Archive.Path)
	if err != nil {
		return nil, fmt.Errorf("report archive: %w", err)
	}
	return a, nil
}

// ProvideReportCache caches reports in Redis, or in process memory without Redis.
func ProvideReportCache(cfg *config.Config, client *redis.Client) cache.Service {
	if client != nil {
		return cache.NewRedisCache(client, cfg.Redis.Prefix)
	}
	return cache.NewMemoryCache(
		cache.WithMemoryMaxSize(1000),
		cache.WithMemoryDefaultTTL(cfg.Redis.ReportTTL),
	)
}

// ProvideReportStore layers the cache over the archive.
func ProvideReportStore(cfg *config.Config, c cache.Service, archive *internalrepo.SQLiteReportArchive) domrepo.ReportStore {
	tiers := []domrepo.ReportStore{internalrepo.NewCacheReportStore(c, cfg.Redis.ReportTTL)}
	if archive != nil {
		tiers = append(tiers, archive)
	}
	return internalrepo.NewTieredReportStore(tiers...)
}

// ProvideKafkaProducer creates a Kafka producer when Kafka is enabled. Nil when disabled.
func ProvideKafkaProducer(cfg *config.Config, gate internalrepo.NetworkGate) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	if err := gate.Allow("kafka producer"); err != nil {
		return nil, err
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers...),
		pkgkafka.WithDelivery(cfg.Kafka.RequiredAcks, cfg.Kafka.Producer.MaxAttempts, cfg.Kafka.Compression),
		pkgkafka.WithBatching(cfg.Kafka.Producer.BatchSize, cfg.Kafka.Producer.BatchBytes, cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithKeyHashing(),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportPublisher publishes finished runs to Kafka, or nowhere without a producer.
func ProvideReportPublisher(cfg *config.Config, producer *pkgkafka.Producer) domrepo.ReportPublisher {
	if producer == nil {
		return internalrepo.NopReportPublisher{}
	}
	return internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.ReportTopic)
}

// ProvidePaperSession builds the fill simulator for PAPER runs.
func ProvidePaperSession(cfg *config.Config) *paper.Session {
	return paper.NewSession(paper.Config{
		InitialBalanceUSD: cfg.Paper.InitialBalanceUSD,
		BaseNotionalUSD:   cfg.Paper.BaseNotionalUSD,
		FeeBps:            cfg.Paper.FeeBps,
		MinTradeUSD:       cfg.Paper.MinTradeUSD,
	})
}

func ProvideCanaryController(session *paper.Session, l *applogger.Logger) *usecase.CanaryController {
	c := usecase.NewCanaryController(session)
	c.SetLogger(l.With(applogger.String("component", "canary")))
	return c
}

func ProvideCanaryService(
	cfg *config.Config,
	controller *usecase.CanaryController,
	replays domrepo.MarketReplaySource,
	fills domrepo.FillHistorySource,
	overfit domrepo.OverfitReportSource,
	store domrepo.ReportStore,
	publisher domrepo.ReportPublisher,
	m domrepo.Metrics,
	caps models.RunCapabilities,
	l *applogger.Logger,
) *usecase.CanaryService {
	svc := usecase.NewCanaryService(controller, replays, fills, overfit, store, publisher, m, caps)
	svc.SetDefaultConfig(cfg.Canary)
	svc.SetLogger(l.With(applogger.String("component", "canary_service")))
	return svc
}

// ProvideKafkaConsumer creates the run request consumer. Nil when Kafka is disabled.
func ProvideKafkaConsumer(cfg *config.Config, gate internalrepo.NetworkGate, svc *usecase.CanaryService, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	if err := gate.Allow("kafka consumer"); err != nil {
		return nil, err
	}
	consumer, err := pkgkafka.NewConsumer(
		pkgkafka.WithGroup(cfg.Kafka.Consumer.GroupID, cfg.Kafka.Brokers...),
		pkgkafka.WithWorkers(cfg.Kafka.Consumer.Workers, cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithDeadLetterTopic(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.SetLogger(l.With(applogger.String("component", "kafka")))
	consumer.WithConsumerHook(pkgkafka.NewHookChain(pkgkafka.RequestIDHook{}))

	h := usecase.NewKafkaRunHandler(cfg.Kafka.RequestTopic, svc)
	h.SetLogger(l)
	consumer.RegisterHandler(h)
	return consumer, nil
}

// ProvideQueue builds the Redis work queue and registers the run job. Nil when disabled.
func ProvideQueue(cfg *config.Config, client *redis.Client, svc *usecase.CanaryService, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || client == nil {
		return nil
	}
	q := queue.NewRedisQueue(l.With(applogger.String("component", "queue")), queue.QueueConfig{
		Workers:      cfg.Queue.Workers,
		RetryLimit:   cfg.Queue.RetryLimit,
		RetryDelay:   cfg.Queue.RetryDelay,
		PollInterval: cfg.Queue.PollInterval,
	}, client, queue.ModeProducerConsumer, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))

	job := usecase.NewCanaryRunJob(svc)
	job.SetLogger(l)
	q.RegisterJob(job)
	return q
}

// ProvideTickRecorder builds the websocket recorder feeding ClickHouse. Nil when disabled.
func ProvideTickRecorder(cfg *config.Config, gate internalrepo.NetworkGate, store *internalrepo.ClickHouseMarketStore, m domrepo.Metrics, l *applogger.Logger) (*usecase.TickRecorder, error) {
	if !cfg.Recorder.Enabled {
		return nil, nil
	}
	if err := gate.Allow("trade recorder"); err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("trade recorder: no clickhouse client")
	}
	stream := recorder.NewStream(recorder.Config{
		APIKey:         cfg.Recorder.APIKey,
		URL:            cfg.Recorder.WebSocketURL,
		Symbols:        cfg.Recorder.Symbols,
		ReconnectDelay: cfg.Recorder.ReconnectDelay,
		PingInterval:   cfg.Recorder.PingInterval,
	})
	rl := l.With(applogger.String("component", "recorder"))
	stream.SetLogger(rl)

	r := usecase.NewTickRecorder(stream, store, m, cfg.Recorder.BatchSize, cfg.Recorder.FlushInterval)
	r.SetLogger(rl)
	return r, nil
}

func ProvideRateLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.Capacity, cfg.RateLimit.RefillPerSec)
}

func ProvideHTTPHandler(
	l *applogger.Logger,
	svc *usecase.CanaryService,
	archive *internalrepo.SQLiteReportArchive,
	limiter *ratelimit.Limiter,
	q *queue.RedisQueue,
) *api.CanaryEchoHandler {
	var lister api.RunLister
	if archive != nil {
		lister = archive
	}
	h := api.NewCanaryEchoHandler(l.With(applogger.String("component", "http")), svc, lister, limiter)
	if q != nil {
		h.SetQueue(q)
	}
	return h
}

// ProvideApp assembles the application and hands it every client it must close.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	h *api.CanaryEchoHandler,
	consumer *pkgkafka.Consumer,
	q *queue.RedisQueue,
	rec *usecase.TickRecorder,
	chClient *pkgch.Client,
	redisClient *redis.Client,
	archive *internalrepo.SQLiteReportArchive,
	publisher domrepo.ReportPublisher,
	reportCache cache.Service,
) *server.App {
	app := server.New(cfg, l, h,
		xhttp.WithMetrics(cfg.Server.MetricsPath, prometheus.DefaultGatherer, middleware.NewHTTPMetrics(prometheus.DefaultRegisterer)),
	)
	if rec != nil {
		app.AddService("recorder", rec)
	}
	if consumer != nil {
		app.AddWorker("kafka", consumer)
	}
	if q != nil {
		app.AddWorker("queue", q)
	}

	// closed in reverse order
	if chClient != nil {
		app.AddCloser("clickhouse", chClient)
	}
	if archive != nil {
		app.AddCloser("archive", archive)
	}
	if redisClient != nil {
		app.AddCloser("redis", redisClient)
	}
	app.AddCloser("report cache", reportCache)
	app.AddCloser("publisher", publisher)
	return app
}
