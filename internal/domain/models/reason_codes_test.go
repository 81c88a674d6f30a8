package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReasonCodesExhaustive(t *testing.T) {
	want := []string{
		"PAUSE_REALITY_GAP",
		"PAUSE_DD_SPEED",
		"PAUSE_VOL_SPIKE",
		"PAUSE_DATA_GAP",
		"PAUSE_RISK_HARDSTOP",
		"FAIL_OVERFIT_UNKNOWN_STRICT",
		"WARN_HEURISTIC_DEDUP_USED",
	}
	table := ReasonCodes()
	require.Len(t, table, len(want))
	for i, rc := range table {
		assert.Equal(t, want[i], rc.Code)
		assert.NotEmpty(t, rc.Metric)
		assert.NotEmpty(t, rc.ContextFields)
	}
}

func TestReasonCodeSeverities(t *testing.T) {
	for _, rc := range ReasonCodes() {
		switch rc.Code[:4] {
		case "PAUS":
			assert.Equal(t, SeverityPause, rc.Severity, rc.Code)
		case "FAIL":
			assert.Equal(t, SeverityFail, rc.Severity, rc.Code)
		case "WARN":
			assert.Equal(t, SeverityWarn, rc.Severity, rc.Code)
		default:
			t.Fatalf("unexpected code %s", rc.Code)
		}
	}
}

func TestReasonCodesReturnsCopy(t *testing.T) {
	table := ReasonCodes()
	table[0].ContextFields[0] = "mutated"
	rc, ok := LookupReasonCode(CodePauseRealityGap)
	require.True(t, ok)
	assert.Equal(t, "mean_abs_return", rc.ContextFields[0])

	_, ok = LookupReasonCode("PAUSE_UNKNOWN")
	assert.False(t, ok)
}

func TestScenarioTable(t *testing.T) {
	s, ok := LookupScenario(ScenarioGapDown)
	require.True(t, ok)
	assert.Equal(t, 1, s.DataGap)
	assert.Equal(t, 2.5, s.Gap)

	names := []string{}
	for _, sc := range Scenarios() {
		names = append(names, sc.Name)
	}
	assert.Equal(t, []string{"baseline", "gap_down", "liquidity_vacuum", "vol_expansion", "whipsaw"}, names)
}
