package repository

import (
	"context"

	"TreasureEngine/internal/domain/models"
)

// MarketReplaySource loads a replay sorted by (ts_ms, fingerprint).
type MarketReplaySource interface {
	LoadReplay(ctx context.Context, q models.ReplayQuery) (*models.MarketReplay, error)
}

// FillHistorySource loads historical fills. A nil history with a nil error means no source.
type FillHistorySource interface {
	LoadFills(ctx context.Context, q models.ReplayQuery) (*models.FillHistory, error)
}

// OverfitReportSource returns the overfit report for a strategy, or an unknown report.
type OverfitReportSource interface {
	LoadOverfitReport(ctx context.Context, strategy string) (models.OverfitReport, error)
}

// ReportStore keeps finished runs addressable by their fingerprint.
type ReportStore interface {
	Save(ctx context.Context, run *models.CanaryRun) error
	Get(ctx context.Context, fingerprint string) (*models.CanaryRun, error)
}

// ReportPublisher announces finished runs to downstream consumers.
type ReportPublisher interface {
	PublishReport(ctx context.Context, run *models.CanaryRun) error
	Close() error
}

// MarketStream is a live trade feed used by the tick recorder.
type MarketStream interface {
	Connect(ctx context.Context) error
	Subscribe(ctx context.Context) error
	Read(ctx context.Context) (<-chan models.PriceTick, <-chan error)
	Reconnect(ctx context.Context) error
	Close() error
	IsConnected() bool
}

// TickStore persists recorded ticks so they can be replayed later.
type TickStore interface {
	Init(ctx context.Context) error
	StoreBatch(ctx context.Context, ticks []models.PriceTick) error
	Health(ctx context.Context) error
}

type Metrics interface {
	RecordRun(mode, status string, seconds float64)
	RecordPauseEvent(code string)
	RecordRiskEvent(reason string)
	RecordSizeFactor(scenario string, v float64)
	RecordError(kind string)
	RecordLatency(op string, seconds float64)
}

// ReportArchive is a durable ReportStore that can also list what it holds.
type ReportArchive interface {
	ReportStore
	List(ctx context.Context, limit int) ([]models.ReportSummary, error)
	Close() error
}
