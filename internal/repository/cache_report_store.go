package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	"TreasureEngine/pkg/cache"
)

const reportKeyPrefix = "canary:report"

// CacheReportStore keeps runs in a cache.Service (Redis in production, memory otherwise).
type CacheReportStore struct {
	cache cache.Service
	ttl   time.Duration
}

var _ domrepo.ReportStore = (*CacheReportStore)(nil)

// NewCacheReportStore stores runs for ttl. A zero ttl keeps them until evicted.
func NewCacheReportStore(c cache.Service, ttl time.Duration) *CacheReportStore {
	return &CacheReportStore{cache: c, ttl: ttl}
}

func (s *CacheReportStore) Save(ctx context.Context, run *models.CanaryRun) error {
	if run == nil || run.Report.Fingerprint == "" {
		return fmt.Errorf("save report: run has no fingerprint")
	}
	if err := s.cache.Set(ctx, cache.GenerateKey(reportKeyPrefix, run.Report.Fingerprint), run, s.ttl); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

func (s *CacheReportStore) Get(ctx context.Context, fp string) (*models.CanaryRun, error) {
	var run models.CanaryRun
	err := s.cache.Get(ctx, cache.GenerateKey(reportKeyPrefix, fp), &run)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, models.NewError(models.ErrCodeReportNotFound, "no report with fingerprint %s", fp)
	}
	if err != nil {
		return nil, fmt.Errorf("get report: %w", err)
	}
	return &run, nil
}
