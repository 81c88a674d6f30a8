package usecase

import (
	"context"
	"time"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	"TreasureEngine/pkg/clock"
	pkgkafka "TreasureEngine/pkg/kafka"
	applogger "TreasureEngine/pkg/logger"
)

// RunRequest asks for one canary run. Inline Replay, Fills and Overfit take precedence over
// the configured sources.
type RunRequest struct {
	RequestID string                 `json:"request_id,omitempty"`
	Config    models.CanaryRunConfig `json:"config"`
	Query     models.ReplayQuery     `json:"query"`
	Strategy  string                 `json:"strategy,omitempty"`
	Replay    *models.MarketReplay   `json:"replay,omitempty"`
	Fills     *models.FillHistory    `json:"fills,omitempty"`
	Overfit   *models.OverfitReport  `json:"overfit,omitempty"`
}

// CanaryService loads run inputs from the configured sources, runs the controller and
// stores and announces the result.
type CanaryService struct {
	controller *CanaryController
	replays    domrepo.MarketReplaySource
	fills      domrepo.FillHistorySource
	overfit    domrepo.OverfitReportSource
	store      domrepo.ReportStore
	publisher  domrepo.ReportPublisher
	metrics    domrepo.Metrics
	caps       models.RunCapabilities
	defaults   models.CanaryRunConfig
	l          *applogger.Logger
}

// NewCanaryService wires a service. Only controller is required.
func NewCanaryService(
	controller *CanaryController,
	replays domrepo.MarketReplaySource,
	fills domrepo.FillHistorySource,
	overfit domrepo.OverfitReportSource,
	store domrepo.ReportStore,
	publisher domrepo.ReportPublisher,
	metrics domrepo.Metrics,
	caps models.RunCapabilities,
) *CanaryService {
	if controller == nil {
		controller = NewCanaryController(nil)
	}
	return &CanaryService{
		controller: controller,
		replays:    replays,
		fills:      fills,
		overfit:    overfit,
		store:      store,
		publisher:  publisher,
		metrics:    metrics,
		caps:       caps,
		defaults:   models.DefaultCanaryRunConfig(),
		l:          applogger.Nop(),
	}
}

func (s *CanaryService) SetLogger(l *applogger.Logger) {
	if l != nil {
		s.l = l
	}
}

// SetDefaultConfig replaces the config new requests start from.
func (s *CanaryService) SetDefaultConfig(cfg models.CanaryRunConfig) { s.defaults = cfg }

// NewRequest returns a request pre-filled with the default config, ready to be decoded into.
func (s *CanaryService) NewRequest() RunRequest {
	return RunRequest{Config: s.defaults}
}

// Capabilities reports what this process allows runs to do.
func (s *CanaryService) Capabilities() models.RunCapabilities { return s.caps }

// Execute performs one run. Coded errors from the controller are returned unchanged.
func (s *CanaryService) Execute(ctx context.Context, req RunRequest) (*models.CanaryRun, error) {
	start := time.Now()
	if req.RequestID != "" {
		ctx = pkgkafka.WithRequestID(ctx, req.RequestID)
	}
	log := s.l.With(applogger.String("request_id", pkgkafka.RequestIDFrom(ctx)))

	// reject bad configs before touching any source
	if _, err := ValidateRunConfig(req.Config); err != nil {
		s.recordError(err)
		return nil, err
	}
	in, err := s.loadInput(ctx, req, log)
	if err != nil {
		s.recordError(err)
		return nil, err
	}

	run, err := s.controller.Run(in)
	if err != nil {
		s.recordError(err)
		log.Warn("canary run rejected",
			applogger.String("code", models.CodeOf(err)),
			applogger.Error(err),
		)
		return nil, err
	}

	if s.store != nil {
		if err := s.store.Save(ctx, run); err != nil {
			s.recordError(err)
			log.Error("store canary run", applogger.String("fingerprint", run.Report.Fingerprint), applogger.Error(err))
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishReport(ctx, run); err != nil {
			s.recordError(err)
			log.Error("publish canary run", applogger.String("fingerprint", run.Report.Fingerprint), applogger.Error(err))
		}
	}
	s.recordRun(run, time.Since(start).Seconds())
	return run, nil
}

// Get returns a stored run by fingerprint.
func (s *CanaryService) Get(ctx context.Context, fp string) (*models.CanaryRun, error) {
	if s.store == nil {
		return nil, models.NewError(models.ErrCodeReportNotFound, "no report store configured")
	}
	return s.store.Get(ctx, fp)
}

func (s *CanaryService) loadInput(ctx context.Context, req RunRequest, log *applogger.Logger) (RunInput, error) {
	in := RunInput{Config: req.Config, Capabilities: s.caps}

	switch {
	case req.Replay != nil:
		r := *req.Replay
		r.Source = models.ReplaySourceInline
		in.Replay = &r
	case s.replays != nil:
		r, err := s.replays.LoadReplay(ctx, req.Query)
		if err != nil {
			return RunInput{}, err
		}
		in.Replay = r
	default:
		return RunInput{}, models.NewError(models.ErrCodeInvalidMarketData, "no replay given and no replay source configured")
	}

	switch {
	case req.Fills != nil:
		in.Fills = req.Fills
	case s.fills != nil:
		f, err := s.fills.LoadFills(ctx, req.Query)
		if err != nil {
			return RunInput{}, err
		}
		in.Fills = f
	}

	in.Overfit = models.OverfitReport{Status: models.OverfitUnknown}
	switch {
	case req.Overfit != nil:
		rep, err := req.Overfit.Normalized()
		if err != nil {
			return RunInput{}, err
		}
		in.Overfit = rep
	case s.overfit != nil:
		rep, err := s.overfit.LoadOverfitReport(ctx, req.Strategy)
		if err != nil {
			log.Warn("overfit report unavailable", applogger.String("strategy", req.Strategy), applogger.Error(err))
			s.recordError(err)
		} else {
			in.Overfit = rep
		}
	}

	start := int64(0)
	if len(in.Replay.Ticks) > 0 {
		start = in.Replay.Ticks[0].TsMs
	}
	in.Clock = clock.NewCounter(start, 1)
	return in, nil
}

func (s *CanaryService) recordRun(run *models.CanaryRun, seconds float64) {
	if s.metrics == nil {
		return
	}
	r := run.Report
	s.metrics.RecordRun(string(r.Mode), string(r.Status), seconds)
	for _, p := range r.PauseEvents {
		s.metrics.RecordPauseEvent(p.Code)
	}
	for _, e := range r.RiskEvents {
		s.metrics.RecordRiskEvent(string(e.Reason))
	}
	s.metrics.RecordSizeFactor(r.Scenario, r.Metrics.FinalSizeFactor)
}

func (s *CanaryService) recordError(err error) {
	if s.metrics == nil {
		return
	}
	kind := models.CodeOf(err)
	if kind == "" {
		kind = "internal"
	}
	s.metrics.RecordError(kind)
}
