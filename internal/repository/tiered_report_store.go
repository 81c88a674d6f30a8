package repository

import (
	"context"
	"errors"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
)

// TieredReportStore writes through to every tier and reads from the first tier that has
// the run. A hit in a lower tier is copied back into the tiers above it.
type TieredReportStore struct {
	tiers []domrepo.ReportStore
}

var _ domrepo.ReportStore = (*TieredReportStore)(nil)

// NewTieredReportStore orders tiers fastest first. Nil tiers are skipped.
func NewTieredReportStore(tiers ...domrepo.ReportStore) *TieredReportStore {
	t := &TieredReportStore{}
	for _, s := range tiers {
		if s != nil {
			t.tiers = append(t.tiers, s)
		}
	}
	return t
}

func (t *TieredReportStore) Save(ctx context.Context, run *models.CanaryRun) error {
	var errs []error
	for _, s := range t.tiers {
		if err := s.Save(ctx, run); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (t *TieredReportStore) Get(ctx context.Context, fp string) (*models.CanaryRun, error) {
	var lastErr error
	for i, s := range t.tiers {
		run, err := s.Get(ctx, fp)
		if err == nil {
			for _, up := range t.tiers[:i] {
				_ = up.Save(ctx, run)
			}
			return run, nil
		}
		if models.CodeOf(err) != models.ErrCodeReportNotFound {
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, models.NewError(models.ErrCodeReportNotFound, "no report with fingerprint %s", fp)
}
