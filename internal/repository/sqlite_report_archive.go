package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"

	_ "modernc.org/sqlite"
)

// SQLiteReportArchive is a local, offline archive of finished runs.
type SQLiteReportArchive struct {
	db *sql.DB
}

var _ domrepo.ReportArchive = (*SQLiteReportArchive)(nil)

// OpenSQLiteReportArchive opens (and migrates) the archive at path. ":memory:" is accepted.
func OpenSQLiteReportArchive(ctx context.Context, path string) (*SQLiteReportArchive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("mkdir archive dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	a := &SQLiteReportArchive{db: db}
	if err := a.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return a, nil
}

func (a *SQLiteReportArchive) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS canary_runs (
  fingerprint  TEXT PRIMARY KEY,
  seq          INTEGER NOT NULL,
  mode         TEXT NOT NULL,
  scenario     TEXT NOT NULL,
  seed         INTEGER NOT NULL,
  status       TEXT NOT NULL,
  verdict      TEXT NOT NULL,
  pause_events INTEGER NOT NULL,
  risk_events  INTEGER NOT NULL,
  body         TEXT NOT NULL
);`,
		`CREATE INDEX IF NOT EXISTS idx_canary_runs_seq ON canary_runs(seq);`,
	}
	for _, stmt := range stmts {
		if _, err := a.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate archive: %w", err)
		}
	}
	return nil
}

// Save upserts a run. Saving the same fingerprint twice keeps one row.
func (a *SQLiteReportArchive) Save(ctx context.Context, run *models.CanaryRun) error {
	if run == nil || run.Report.Fingerprint == "" {
		return fmt.Errorf("archive report: run has no fingerprint")
	}
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("archive report: %w", err)
	}
	r := run.Report
	_, err = a.db.ExecContext(ctx, `
INSERT INTO canary_runs (fingerprint, seq, mode, scenario, seed, status, verdict, pause_events, risk_events, body)
VALUES (?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM canary_runs), ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(fingerprint) DO UPDATE SET body = excluded.body`,
		r.Fingerprint, string(r.Mode), r.Scenario, int64(r.Seed), string(r.Status), string(r.Verdict),
		len(r.PauseEvents), len(r.RiskEvents), string(body),
	)
	if err != nil {
		return fmt.Errorf("archive report: %w", err)
	}
	return nil
}

func (a *SQLiteReportArchive) Get(ctx context.Context, fp string) (*models.CanaryRun, error) {
	var body string
	err := a.db.QueryRowContext(ctx, `SELECT body FROM canary_runs WHERE fingerprint = ?`, fp).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewError(models.ErrCodeReportNotFound, "no report with fingerprint %s", fp)
	}
	if err != nil {
		return nil, fmt.Errorf("get archived report: %w", err)
	}
	var run models.CanaryRun
	if err := json.Unmarshal([]byte(body), &run); err != nil {
		return nil, fmt.Errorf("decode archived report: %w", err)
	}
	return &run, nil
}

// List returns the most recently archived runs first.
func (a *SQLiteReportArchive) List(ctx context.Context, limit int) ([]models.ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := a.db.QueryContext(ctx, `
SELECT fingerprint, mode, scenario, seed, status, verdict, pause_events, risk_events
FROM canary_runs ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list archived reports: %w", err)
	}
	defer rows.Close()

	out := []models.ReportSummary{}
	for rows.Next() {
		var s models.ReportSummary
		var seed int64
		if err := rows.Scan(&s.Fingerprint, &s.Mode, &s.Scenario, &seed, &s.Status, &s.Verdict, &s.PauseEvents, &s.RiskEvents); err != nil {
			return nil, fmt.Errorf("scan archived report: %w", err)
		}
		s.Seed = uint32(seed)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (a *SQLiteReportArchive) Close() error {
	return a.db.Close()
}
