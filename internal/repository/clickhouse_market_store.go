package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	pkgch "TreasureEngine/pkg/clickhouse"
	applogger "TreasureEngine/pkg/logger"
)

const insertChunkSize = 2000

// ClickHouseMarketStore keeps recorded ticks and historical fills in ClickHouse and serves them
// back as replays.
type ClickHouseMarketStore struct {
	client   *pkgch.Client
	db       *sql.DB
	database string
	source   string
	l        *applogger.Logger
}

var (
	_ domrepo.MarketReplaySource = (*ClickHouseMarketStore)(nil)
	_ domrepo.FillHistorySource  = (*ClickHouseMarketStore)(nil)
	_ domrepo.TickStore          = (*ClickHouseMarketStore)(nil)
)

func NewClickHouseMarketStore(client *pkgch.Client, database, source string) *ClickHouseMarketStore {
	if database == "" {
		database = "treasure"
	}
	if source == "" {
		source = "recorder"
	}
	return &ClickHouseMarketStore{client: client, db: client.DB(), database: database, source: source}
}

// SetLogger injects a structured logger.
func (s *ClickHouseMarketStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *ClickHouseMarketStore) ticksTable() string { return s.database + ".ticks" }
func (s *ClickHouseMarketStore) fillsTable() string { return s.database + ".fills" }

// SchemaStatements returns the DDL for the store's tables.
func (s *ClickHouseMarketStore) SchemaStatements() []string {
	return []string{
		fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", s.database),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    ts      DateTime64(3, 'UTC'),
    symbol  LowCardinality(String),
    price   Float64,
    volume  Float64,
    source  LowCardinality(String),
    fp      String
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, ts, fp)`, s.ticksTable()),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
    fill_id    String,
    ts         DateTime64(3, 'UTC'),
    symbol     LowCardinality(String),
    qty        Float64,
    price      Float64,
    fee        Float64,
    latency_ms Float64
) ENGINE = ReplacingMergeTree
ORDER BY (symbol, ts, fill_id)`, s.fillsTable()),
	}
}

func (s *ClickHouseMarketStore) Init(ctx context.Context) error {
	return s.client.InitSchema(ctx, s.SchemaStatements())
}

func (s *ClickHouseMarketStore) Health(ctx context.Context) error {
	return s.client.Health(ctx)
}

// StoreBatch inserts ticks with multi-row VALUES in fixed-size chunks.
func (s *ClickHouseMarketStore) StoreBatch(ctx context.Context, ticks []models.PriceTick) error {
	if len(ticks) == 0 {
		return nil
	}
	start := time.Now()
	stored := 0
	for lo := 0; lo < len(ticks); lo += insertChunkSize {
		hi := lo + insertChunkSize
		if hi > len(ticks) {
			hi = len(ticks)
		}
		q, args := buildTickInsert(s.ticksTable(), s.source, ticks[lo:hi])
		if len(args) == 0 {
			continue
		}
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			s.logError("clickhouse insert ticks failed", err, applogger.Int("rows", hi-lo))
			return fmt.Errorf("insert ticks: %w", err)
		}
		stored += len(args) / tickInsertCols
	}
	if s.l != nil {
		s.l.Debug("clickhouse ticks stored",
			applogger.Int("rows", stored),
			applogger.Duration("duration", time.Since(start)),
		)
	}
	return nil
}

const tickInsertCols = 6

func buildTickInsert(table, source string, ticks []models.PriceTick) (string, []interface{}) {
	values := make([]string, 0, len(ticks))
	args := make([]interface{}, 0, len(ticks)*tickInsertCols)
	for _, t := range ticks {
		if t.Symbol == "" || t.TsMs <= 0 || !(t.Price > 0) {
			continue
		}
		fp := t.Fingerprint
		if fp == "" {
			fp = TickFingerprint(t)
		}
		values = append(values, "(?, ?, ?, ?, ?, ?)")
		args = append(args, time.UnixMilli(t.TsMs).UTC(), t.Symbol, t.Price, t.Volume, source, fp)
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, symbol, price, volume, source, fp) VALUES %s", table, strings.Join(values, ","))
	return q, args
}

// buildWindowQuery renders the SELECT for a replay window. Zero bounds are open.
func buildWindowQuery(table, columns string, q models.ReplayQuery) (string, []interface{}) {
	var where []string
	var args []interface{}
	if q.Symbol != "" {
		where = append(where, "symbol = ?")
		args = append(args, q.Symbol)
	}
	if q.FromMs > 0 {
		where = append(where, "ts >= ?")
		args = append(args, time.UnixMilli(q.FromMs).UTC())
	}
	if q.ToMs > 0 {
		where = append(where, "ts <= ?")
		args = append(args, time.UnixMilli(q.ToMs).UTC())
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "SELECT %s FROM %s FINAL", columns, table)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ts ASC")
	if q.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}
	return sb.String(), args
}

func (s *ClickHouseMarketStore) LoadReplay(ctx context.Context, q models.ReplayQuery) (*models.MarketReplay, error) {
	start := time.Now()
	query, args := buildWindowQuery(s.ticksTable(), "ts, symbol, price, volume, fp", q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logError("clickhouse load_replay query error", err, applogger.String("symbol", q.Symbol))
		return nil, models.WrapError(models.ErrCodeSourceUnavailable, err, "load replay")
	}
	defer rows.Close()

	ticks := make([]models.PriceTick, 0, 1024)
	for rows.Next() {
		var t models.PriceTick
		var ts time.Time
		if err := rows.Scan(&ts, &t.Symbol, &t.Price, &t.Volume, &t.Fingerprint); err != nil {
			return nil, fmt.Errorf("scan tick: %w", err)
		}
		t.TsMs = ts.UnixMilli()
		ticks = append(ticks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	SortReplay(ticks)
	if s.l != nil {
		s.l.Info("clickhouse load_replay ok",
			applogger.String("symbol", q.Symbol),
			applogger.Int("rows", len(ticks)),
			applogger.Duration("duration", time.Since(start)),
		)
	}
	return &models.MarketReplay{Source: models.ReplaySourceClickHouse, Ticks: ticks}, nil
}

// LoadFills returns a non-nil history even when the window holds no fills.
func (s *ClickHouseMarketStore) LoadFills(ctx context.Context, q models.ReplayQuery) (*models.FillHistory, error) {
	query, args := buildWindowQuery(s.fillsTable(), "fill_id, qty, price, fee, latency_ms", q)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		s.logError("clickhouse load_fills query error", err, applogger.String("symbol", q.Symbol))
		return nil, models.WrapError(models.ErrCodeSourceUnavailable, err, "load fills")
	}
	defer rows.Close()

	h := &models.FillHistory{Records: []models.FillRecord{}}
	for rows.Next() {
		var f models.FillRecord
		if err := rows.Scan(&f.FillID, &f.Qty, &f.Price, &f.Fee, &f.LatencyMs); err != nil {
			return nil, fmt.Errorf("scan fill: %w", err)
		}
		h.Records = append(h.Records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return h, nil
}

func (s *ClickHouseMarketStore) logError(msg string, err error, fields ...applogger.Field) {
	if s.l == nil {
		return
	}
	s.l.Error(msg, append(fields, applogger.Error(err))...)
}
