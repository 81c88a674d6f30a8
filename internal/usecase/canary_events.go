package usecase

import (
	"fmt"
	"sort"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/fingerprint"
)

// Timeline entry kinds.
const (
	KindPause = "pause"
	KindRisk  = "risk"
)

// SortPauseEvents orders events by (ts, code), keeping emission order for ties.
func SortPauseEvents(evs []models.PauseEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Ts != evs[j].Ts {
			return evs[i].Ts < evs[j].Ts
		}
		return evs[i].Code < evs[j].Code
	})
}

// SortRiskEvents orders events by (ts, code), keeping emission order for ties.
func SortRiskEvents(evs []models.RiskEvent) {
	sort.SliceStable(evs, func(i, j int) bool {
		if evs[i].Ts != evs[j].Ts {
			return evs[i].Ts < evs[j].Ts
		}
		return evs[i].Code < evs[j].Code
	})
}

// BuildTimeline merges both event lists into one trace sorted by (ts, code, kind).
func BuildTimeline(pauses []models.PauseEvent, risks []models.RiskEvent) []models.TimelineEntry {
	out := make([]models.TimelineEntry, 0, len(pauses)+len(risks))
	for _, p := range pauses {
		out = append(out, models.TimelineEntry{Ts: p.Ts, Code: p.Code, Kind: KindPause})
	}
	for _, r := range risks {
		out = append(out, models.TimelineEntry{Ts: r.Ts, Code: r.Code, Kind: KindRisk})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Ts != b.Ts {
			return a.Ts < b.Ts
		}
		if a.Code != b.Code {
			return a.Code < b.Code
		}
		return a.Kind < b.Kind
	})
	return out
}

type runFingerprint struct {
	Config         models.CanaryRunConfig `json:"config"`
	Report         models.CanaryReport    `json:"report"`
	StateLog       []models.StateLogEntry `json:"state_log"`
	SubmissionPlan *models.SubmissionPlan `json:"submission_plan"`
}

// RunFingerprint digests {config, report, state log, submission plan}. The report's own
// fingerprint field is blanked first.
func RunFingerprint(run *models.CanaryRun) (string, error) {
	rep := run.Report
	rep.Fingerprint = ""
	return fingerprint.Of(runFingerprint{
		Config:         run.Config,
		Report:         rep,
		StateLog:       run.StateLog,
		SubmissionPlan: run.SubmissionPlan,
	})
}

func (s *runState) assemble(plan *models.SubmissionPlan) (*models.CanaryRun, error) {
	SortPauseEvents(s.pauses)
	SortRiskEvents(s.risks)
	sort.SliceStable(s.warnings, func(i, j int) bool {
		if s.warnings[i].Ts != s.warnings[j].Ts {
			return s.warnings[i].Ts < s.warnings[j].Ts
		}
		return s.warnings[i].Code < s.warnings[j].Code
	})

	s.monitors.RiskEvents = len(s.risks)
	verdict := models.VerdictPass
	if len(s.pauses) > 0 {
		verdict = models.VerdictPause
	}

	run := &models.CanaryRun{
		Config: s.in.Config,
		Report: models.CanaryReport{
			Status:      s.status,
			Verdict:     verdict,
			Mode:        s.in.Config.Mode,
			Scenario:    s.scenario.Name,
			Seed:        s.in.Config.Seed,
			Calibration: s.calib,
			PauseEvents: s.pauses,
			RiskEvents:  s.risks,
			Timeline:    BuildTimeline(s.pauses, s.risks),
			Warnings:    s.warnings,
			Monitors:    s.monitors,
			Metrics:     s.metrics,
			Invariants: models.Invariants{
				NetworkGuard:   !s.in.Capabilities.NetworkEnabled,
				Submitted:      false,
				LiveSubmitFuse: true,
			},
			CrisisSuite: s.crisisFP,
		},
		StateLog:       s.log,
		SubmissionPlan: plan,
	}

	fp, err := RunFingerprint(run)
	if err != nil {
		return nil, fmt.Errorf("fingerprint canary run: %w", err)
	}
	run.Report.Fingerprint = fp
	return run, nil
}
