package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"TreasureEngine/internal/domain/models"
	pkgkafka "TreasureEngine/pkg/kafka"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKafkaRunHandlerRunsAndPublishes(t *testing.T) {
	pub := &recordingPublisher{}
	svc := newTestService(&fakeReplaySource{err: errors.New("unused")}, fakeOverfitSource{}, newMemStore(), pub, nil)
	h := NewKafkaRunHandler("canary.run.requests", svc)
	assert.Equal(t, "canary.run.requests", h.Topic())

	body, err := json.Marshal(map[string]interface{}{
		"config": map[string]interface{}{"mode": "GUARDED_LIVE", "seed": 42},
		"replay": oscillatingReplay("BTCUSDT", 10),
	})
	require.NoError(t, err)

	ctx := pkgkafka.WithRequestID(context.Background(), "req-7")
	require.NoError(t, h.Handle(ctx, body))

	require.Len(t, pub.runs, 1)
	run := pub.runs[0]
	assert.Equal(t, models.ModeGuardedLive, run.Config.Mode)
	assert.Equal(t, uint32(42), run.Config.Seed)
	// fields absent from the message keep their defaults
	assert.Equal(t, models.DefaultCanaryRunConfig().Thresholds, run.Config.Thresholds)
	require.NotNil(t, run.SubmissionPlan)
}

func TestKafkaRunHandlerErrorClasses(t *testing.T) {
	ctx := context.Background()

	svc := newTestService(&fakeReplaySource{err: models.NewError(models.ErrCodeSourceUnavailable, "down")}, fakeOverfitSource{}, newMemStore(), nil, nil)
	h := NewKafkaRunHandler("t", svc)

	err := h.Handle(ctx, []byte("{not json"))
	require.Error(t, err)
	assert.True(t, pkgkafka.IsPermanent(err))
	assert.Equal(t, models.ErrCodeInvalidRequest, models.CodeOf(err))

	err = h.Handle(ctx, []byte(`{"config":{"mode":"LIVE"}}`))
	require.Error(t, err)
	assert.True(t, pkgkafka.IsPermanent(err))
	assert.Equal(t, models.ErrCodeInvalidMode, models.CodeOf(err))

	err = h.Handle(ctx, []byte(`{}`))
	require.Error(t, err)
	assert.False(t, pkgkafka.IsPermanent(err))
	assert.Equal(t, models.ErrCodeSourceUnavailable, models.CodeOf(err))
}
