package repository

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
)

const maxLineBytes = 1 << 20

// JSONLReplaySource reads one PriceTick per line.
type JSONLReplaySource struct {
	path string
	// HeuristicDedup marks replays whose file was produced by heuristic deduplication.
	HeuristicDedup bool
}

var _ domrepo.MarketReplaySource = (*JSONLReplaySource)(nil)

func NewJSONLReplaySource(path string) *JSONLReplaySource {
	return &JSONLReplaySource{path: path}
}

func (s *JSONLReplaySource) LoadReplay(ctx context.Context, q models.ReplayQuery) (*models.MarketReplay, error) {
	ticks := []models.PriceTick{}
	err := readJSONLines(ctx, s.path, func(line int, raw []byte) error {
		var t models.PriceTick
		if err := json.Unmarshal(raw, &t); err != nil {
			return models.WrapError(models.ErrCodeInvalidMarketData, err, "%s:%d", s.path, line)
		}
		if matchTick(q, t) {
			ticks = append(ticks, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	SortReplay(ticks)
	if q.Limit > 0 && len(ticks) > q.Limit {
		ticks = ticks[:q.Limit]
	}
	return &models.MarketReplay{
		Source:             models.ReplaySourceFile,
		Ticks:              ticks,
		HeuristicDedupUsed: s.HeuristicDedup,
	}, nil
}

// JSONLFillSource reads one FillRecord per line. A missing file means no fill source.
type JSONLFillSource struct {
	path string
}

var _ domrepo.FillHistorySource = (*JSONLFillSource)(nil)

func NewJSONLFillSource(path string) *JSONLFillSource {
	return &JSONLFillSource{path: path}
}

func (s *JSONLFillSource) LoadFills(ctx context.Context, _ models.ReplayQuery) (*models.FillHistory, error) {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	h := &models.FillHistory{Records: []models.FillRecord{}}
	err := readJSONLines(ctx, s.path, func(line int, raw []byte) error {
		var f models.FillRecord
		if err := json.Unmarshal(raw, &f); err != nil {
			return models.WrapError(models.ErrCodeInvalidFillRecord, err, "%s:%d", s.path, line)
		}
		h.Records = append(h.Records, f)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return h, nil
}

// NoFillSource always reports an absent fill history.
type NoFillSource struct{}

func (NoFillSource) LoadFills(context.Context, models.ReplayQuery) (*models.FillHistory, error) {
	return nil, nil
}

// JSONOverfitSource reads a single overfit report document. A missing file is an unknown report.
type JSONOverfitSource struct {
	path string
}

var _ domrepo.OverfitReportSource = (*JSONOverfitSource)(nil)

func NewJSONOverfitSource(path string) *JSONOverfitSource {
	return &JSONOverfitSource{path: path}
}

func (s *JSONOverfitSource) LoadOverfitReport(_ context.Context, _ string) (models.OverfitReport, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return models.OverfitReport{Status: models.OverfitUnknown}, nil
	}
	if err != nil {
		return models.OverfitReport{}, fmt.Errorf("read overfit report: %w", err)
	}
	return decodeOverfitReport(b)
}

// NoOverfitSource always reports unknown.
type NoOverfitSource struct{}

func (NoOverfitSource) LoadOverfitReport(context.Context, string) (models.OverfitReport, error) {
	return models.OverfitReport{Status: models.OverfitUnknown}, nil
}

func decodeOverfitReport(b []byte) (models.OverfitReport, error) {
	var r models.OverfitReport
	if err := json.Unmarshal(b, &r); err != nil {
		return models.OverfitReport{}, fmt.Errorf("decode overfit report: %w", err)
	}
	return r.Normalized()
}

func readJSONLines(ctx context.Context, path string, fn func(line int, raw []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return models.WrapError(models.ErrCodeSourceUnavailable, err, "open %s", path)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		raw := strings.TrimSpace(sc.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}
		if err := fn(line, []byte(raw)); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", path, err)
	}
	return nil
}
