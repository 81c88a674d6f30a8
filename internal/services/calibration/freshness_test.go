package calibration

import (
	"strconv"
	"testing"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nowMs = int64(1_700_000_000_000)

func TestFreshnessAllowFresh(t *testing.T) {
	sig := models.Signal{ID: "s1", StrategyClass: models.StrategyHFT, Timestamp: "1699999999800"}
	got, err := ScoreSignalFreshness(sig, clock.Fixed(nowMs))
	require.NoError(t, err)
	assert.Equal(t, "HFT", got.Profile)
	assert.Equal(t, int64(200), got.AgeMs)
	assert.InDelta(t, 0.8, got.FreshnessScore, 1e-9)
	assert.Equal(t, models.ActionAllow, got.Action)
	assert.Equal(t, 1.0, got.Weight)
}

func TestFreshnessBlockStaleHFT(t *testing.T) {
	sig := models.Signal{ID: "s2", StrategyClass: models.StrategyHFT, Timestamp: "1699999999000"}
	got, err := ScoreSignalFreshness(sig, clock.Fixed(nowMs))
	require.NoError(t, err)
	assert.Equal(t, 0.0, got.FreshnessScore)
	assert.Equal(t, models.ActionBlock, got.Action)
	assert.Equal(t, 0.0, got.Weight)
}

func TestFreshnessDownweightSwing(t *testing.T) {
	// 3.5h old against a 4h profile: score 0.125 < 0.25.
	ts := nowMs - int64(3.5*60*60*1000)
	sig := models.Signal{ID: "s3", StrategyClass: models.StrategySwing, Timestamp: itoa(ts)}
	got, err := ScoreSignalFreshness(sig, clock.Fixed(nowMs))
	require.NoError(t, err)
	assert.Equal(t, models.ActionDownweight, got.Action)
	assert.InDelta(t, 0.125, got.FreshnessScore, 1e-9)
	assert.InDelta(t, 0.125, got.Weight, 1e-9)
}

func TestFreshnessDefaultProfile(t *testing.T) {
	sig := models.Signal{ID: "s4", StrategyClass: "MEAN_REVERSION", Timestamp: "2023-11-14T22:13:20Z"}
	got, err := ScoreSignalFreshness(sig, clock.Fixed(nowMs))
	require.NoError(t, err)
	assert.Equal(t, "DEFAULT", got.Profile)
	assert.Equal(t, int64(0), got.AgeMs)
	assert.Equal(t, models.ActionAllow, got.Action)
}

func TestFreshnessFutureSignalClampsAge(t *testing.T) {
	sig := models.Signal{ID: "s5", StrategyClass: models.StrategyPosition, Timestamp: itoa(nowMs + 5000)}
	got, err := ScoreSignalFreshness(sig, clock.Fixed(nowMs))
	require.NoError(t, err)
	assert.Equal(t, int64(0), got.AgeMs)
	assert.Equal(t, 1.0, got.FreshnessScore)
}

func TestFreshnessErrors(t *testing.T) {
	_, err := ScoreSignalFreshness(models.Signal{Timestamp: "1699999999000"}, nil)
	assert.Equal(t, models.ErrCodeMissingClock, models.CodeOf(err))

	_, err = ScoreSignalFreshness(models.Signal{Timestamp: "not-a-time"}, clock.Fixed(nowMs))
	assert.Equal(t, models.ErrCodeInvalidTimestamp, models.CodeOf(err))
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
