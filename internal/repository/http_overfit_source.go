package repository

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	xhttp "TreasureEngine/pkg/http"
)

// HTTPOverfitSource fetches overfit reports from the overfitting-defense service.
// A 404 means no report exists for the strategy.
type HTTPOverfitSource struct {
	client *xhttp.Client
}

var _ domrepo.OverfitReportSource = (*HTTPOverfitSource)(nil)

func NewHTTPOverfitSource(client *xhttp.Client) *HTTPOverfitSource {
	return &HTTPOverfitSource{client: client}
}

func (s *HTTPOverfitSource) LoadOverfitReport(ctx context.Context, strategy string) (models.OverfitReport, error) {
	var r models.OverfitReport
	err := s.client.GetJSON(ctx, "/api/overfit/"+url.PathEscape(strategy), nil, &r)
	var se *xhttp.StatusError
	if errors.As(err, &se) && se.Status == http.StatusNotFound {
		return models.OverfitReport{Status: models.OverfitUnknown}, nil
	}
	if err != nil {
		return models.OverfitReport{}, models.WrapError(models.ErrCodeSourceUnavailable, err, "overfit report for %q", strategy)
	}
	return r.Normalized()
}
