package usecase

import (
	"fmt"

	"TreasureEngine/internal/domain/models"
	domsvc "TreasureEngine/internal/domain/service"
	"TreasureEngine/internal/services/calibration"
	"TreasureEngine/internal/services/features"
	"TreasureEngine/internal/services/paper"
	"TreasureEngine/internal/services/riskfortress"
	"TreasureEngine/pkg/clock"
	"TreasureEngine/pkg/fingerprint"
	applogger "TreasureEngine/pkg/logger"
)

// State log event names.
const (
	logInit      = "INIT"
	logCalibrate = "CALIBRATED"
	logMonitors  = "MONITORS"
	logBar       = "BAR"
	logStopped   = "STOPPED"
	logCompleted = "COMPLETED"
	logFinalize  = "FINALIZE"
)

// RunInput is everything one canary run consumes. Nothing is read from ambient state.
type RunInput struct {
	Config       models.CanaryRunConfig
	Capabilities models.RunCapabilities
	Clock        clock.Clock
	Replay       *models.MarketReplay
	Fills        *models.FillHistory // nil means no fill source
	Overfit      models.OverfitReport
}

// CanaryController replays a market stream through the risk fortress and the run monitors.
// It keeps no per-run state, so one controller may serve concurrent runs.
type CanaryController struct {
	paper domsvc.PaperSession
	l     *applogger.Logger
}

func NewCanaryController(session domsvc.PaperSession) *CanaryController {
	if session == nil {
		session = paper.NewSession(paper.Config{})
	}
	return &CanaryController{paper: session}
}

// SetLogger injects a structured logger.
func (c *CanaryController) SetLogger(l *applogger.Logger) { c.l = l }

// runState holds the accumulators of a single run.
type runState struct {
	in       RunInput
	scenario models.Scenario
	status   models.ControllerState
	calib    models.CalibrationResult
	pauses   []models.PauseEvent
	risks    []models.RiskEvent
	warnings []models.Warning
	log      []models.StateLogEntry
	monitors models.Monitors
	metrics  models.RunMetrics
	crisisFP string
	bars     []domsvc.PaperBar
	lastBar  map[string]domsvc.PaperBar
	barOrder []string
}

func (s *runState) record(event, detail string, bar *models.BarLog) int64 {
	ts := s.in.Clock.Now()
	s.log = append(s.log, models.StateLogEntry{TsMs: ts, Event: event, Bar: bar, Detail: detail})
	return ts
}

// Run executes one canary evaluation. Configuration and policy violations fail before any
// replay work with a coded error and no report. Monitor breaches and hard stops are outcomes.
func (c *CanaryController) Run(in RunInput) (*models.CanaryRun, error) {
	sc, err := ValidateRunConfig(in.Config)
	if err != nil {
		return nil, err
	}
	if in.Clock == nil {
		return nil, models.NewError(models.ErrCodeMissingClock, "canary run requires an injected clock")
	}
	if err := validateReplay(in.Replay); err != nil {
		return nil, err
	}
	if in.Replay.Source.Networked() && !in.Capabilities.NetworkEnabled {
		return nil, models.NewError(models.ErrCodeNetworkDisabled, "replay source %q requires network access", in.Replay.Source)
	}
	if in.Config.Strict && !in.Overfit.Known() {
		return nil, models.NewError(models.CodeFailOverfitUnknown, "strict run requires a present overfit report")
	}

	s := &runState{
		in:       in,
		scenario: sc,
		status:   models.StateInit,
		pauses:   []models.PauseEvent{},
		risks:    []models.RiskEvent{},
		warnings: []models.Warning{},
		lastBar:  map[string]domsvc.PaperBar{},
	}
	s.record(logInit, fmt.Sprintf("mode=%s scenario=%s seed=%d", in.Config.Mode, sc.Name, in.Config.Seed), nil)

	s.calib, err = calibration.Calibrate(in.Fills, in.Config.Seed, in.Config.Strict)
	if err != nil {
		return nil, err
	}
	s.record(logCalibrate, string(s.calib.Mode), nil)

	s.evaluateMonitors()

	s.status = models.StateReplaying
	s.replay()
	if s.status != models.StateStopped {
		s.status = models.StateCompleted
		s.record(logCompleted, fmt.Sprintf("bars=%d", s.metrics.BarsReplayed), nil)
	}

	var plan *models.SubmissionPlan
	switch in.Config.Mode {
	case models.ModePaper:
		pm, err := c.runPaper(s)
		if err != nil {
			return nil, err
		}
		s.metrics.Paper = pm
		s.record(logFinalize, "paper", nil)
	case models.ModeGuardedLive:
		plan = s.buildSubmissionPlan()
		s.record(logFinalize, "guarded_live", nil)
	default:
		s.record(logFinalize, "shadow", nil)
	}

	run, err := s.assemble(plan)
	if err != nil {
		return nil, err
	}
	c.logRun(run)
	return run, nil
}

// replay drives the risk fortress once per bar until the stream ends or the kill switch fires.
func (s *runState) replay() {
	cfg := s.in.Config
	armed := cfg.KillSwitch.Enabled && s.in.Capabilities.KillSwitchEnabled
	pbo := s.in.Overfit.Known() && s.in.Overfit.PBOFail
	dsr := s.in.Overfit.Known() && s.in.Overfit.DSRFail

	ticks := s.in.Replay.Ticks
	trackers := map[string]*features.PathTracker{}
	prevState := models.RiskActive
	latched := false
	sizeSum := 0.0

	s.metrics.BarsTotal = len(ticks)
	s.metrics.FinalRiskState = models.RiskActive
	s.metrics.MeanAbsReturn = fingerprint.Round(meanAbsReturnBySymbol(ticks))

	for i, tick := range ticks {
		tr, ok := trackers[tick.Symbol]
		if !ok {
			tr = features.NewPathTracker()
			trackers[tick.Symbol] = tr
		}
		bs := tr.Observe(tick)

		ra := riskfortress.ApplyRiskFortress(models.RiskInput{
			TradeLossPct:  bs.TradeLoss,
			DayLossPct:    bs.DayLoss,
			WeekLossPct:   bs.WeekLoss,
			Drawdown:      bs.Drawdown,
			DrawdownSpeed: bs.DrawdownSpeed,
			Regime:        bs.Regime,
			PBOFlag:       pbo,
			DSRFlag:       dsr,
		})

		state, size := ra.State, ra.SizeFactor
		if ra.HardStop.Halt {
			latched = true
		}
		if latched {
			state, size = models.RiskHalted, 0
		}

		bar := &models.BarLog{
			Index:      i,
			BarTsMs:    tick.TsMs,
			Symbol:     tick.Symbol,
			Price:      tick.Price,
			State:      state,
			SizeFactor: fingerprint.Round(size),
			Reason:     ra.HardStop.Reason,
			Latched:    latched && !ra.HardStop.Halt,
		}
		ts := s.record(logBar, "", bar)

		if ra.HardStop.Halt {
			s.risks = append(s.risks, models.RiskEvent{
				Code:            models.CodePauseRiskHardstop,
				Reason:          ra.HardStop.Reason,
				StateTransition: fmt.Sprintf("%s->%s", prevState, models.RiskHalted),
				Ts:              ts,
			})
		}

		s.observeBar(bar, bs.Drawdown)
		sizeSum += bar.SizeFactor
		s.trackPaperBar(tick, bar.SizeFactor)
		prevState = state

		if armed && len(s.risks) > cfg.Thresholds.MaxRiskEvents {
			s.pauses = append(s.pauses, models.PauseEvent{
				Code:      models.CodePauseRiskHardstop,
				Metric:    "risk_events",
				Value:     float64(len(s.risks)),
				Threshold: float64(cfg.Thresholds.MaxRiskEvents),
				Ts:        ts,
				ContextFingerprint: contextFingerprint(map[string]interface{}{
					"bar_index":   i,
					"reason":      ra.HardStop.Reason,
					"risk_events": len(s.risks),
				}),
			})
			s.status = models.StateStopped
			s.record(logStopped, fmt.Sprintf("risk_events=%d", len(s.risks)), nil)
			break
		}
	}

	if s.metrics.BarsReplayed > 0 {
		s.metrics.MeanSizeFactor = fingerprint.Round(sizeSum / float64(s.metrics.BarsReplayed))
	}
}

func (s *runState) observeBar(bar *models.BarLog, drawdown float64) {
	m := &s.metrics
	if m.BarsReplayed == 0 || bar.SizeFactor < m.MinSizeFactor {
		m.MinSizeFactor = bar.SizeFactor
	}
	m.BarsReplayed++
	switch bar.State {
	case models.RiskHalted:
		m.HaltedBars++
	case models.RiskDegraded:
		m.DegradedBars++
	}
	if dd := fingerprint.Round(drawdown); dd > m.MaxDrawdown {
		m.MaxDrawdown = dd
	}
	m.FinalSizeFactor = bar.SizeFactor
	m.FinalRiskState = bar.State
}

func (s *runState) trackPaperBar(tick models.PriceTick, size float64) {
	pb := domsvc.PaperBar{TsMs: tick.TsMs, Symbol: tick.Symbol, Price: tick.Price, SizeFactor: size}
	s.bars = append(s.bars, pb)
	if _, seen := s.lastBar[tick.Symbol]; !seen {
		s.barOrder = append(s.barOrder, tick.Symbol)
	}
	s.lastBar[tick.Symbol] = pb
}

func (c *CanaryController) runPaper(s *runState) (*models.PaperMetrics, error) {
	res, err := c.paper.Run(domsvc.PaperInput{
		Seed:        s.in.Config.Seed,
		Calibration: s.calib.Params,
		Bars:        s.bars,
	})
	if err != nil {
		if models.CodeOf(err) != "" {
			return nil, err
		}
		return nil, models.WrapError(models.ErrCodePaperSessionFailed, err, "paper session")
	}
	pm := res.Metrics
	pm.RawNetPnL = fingerprint.Round(res.Metrics.NetPnL)
	pm.PnLMultiplier = s.scenario.PnL
	pm.NetPnL = fingerprint.Round(res.Metrics.NetPnL * s.scenario.PnL)
	return &pm, nil
}

func (c *CanaryController) logRun(run *models.CanaryRun) {
	if c.l == nil {
		return
	}
	r := run.Report
	fields := []applogger.Field{
		applogger.String("fingerprint", r.Fingerprint),
		applogger.String("mode", string(r.Mode)),
		applogger.String("scenario", r.Scenario),
		applogger.String("status", string(r.Status)),
		applogger.Int("pause_events", len(r.PauseEvents)),
		applogger.Int("risk_events", len(r.RiskEvents)),
		applogger.Float64("reality_gap", r.Monitors.RealityGap),
	}
	if r.Verdict == models.VerdictPause {
		c.l.Warn("canary run paused", fields...)
		return
	}
	c.l.Info("canary run passed", fields...)
}
