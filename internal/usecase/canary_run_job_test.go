package usecase

import (
	"context"
	"encoding/json"
	"testing"

	"TreasureEngine/internal/domain/models"
	"TreasureEngine/pkg/queue"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanaryRunJob(t *testing.T) {
	store := newMemStore()
	svc := newTestService(&fakeReplaySource{err: models.NewError(models.ErrCodeSourceUnavailable, "down")}, fakeOverfitSource{}, store, nil, nil)
	job := NewCanaryRunJob(svc)
	assert.Equal(t, CanaryRunJobType, job.Type())

	ctx := queue.WithMessageID(context.Background(), "msg-1")

	body, err := json.Marshal(RunRequest{Config: models.DefaultCanaryRunConfig(), Replay: oscillatingReplay("BTCUSDT", 6)})
	require.NoError(t, err)
	require.NoError(t, job.Handle(ctx, json.RawMessage(body)))
	assert.Len(t, store.runs, 1)

	// rejected and malformed requests are dropped, not retried
	assert.NoError(t, job.Handle(ctx, json.RawMessage(`{"config":{"mode":"LIVE"}}`)))
	assert.NoError(t, job.Handle(ctx, json.RawMessage(`not json`)))

	// a source outage is retried
	err = job.Handle(ctx, map[string]interface{}{"strategy": "momo"})
	require.Error(t, err)
	assert.Equal(t, models.ErrCodeSourceUnavailable, models.CodeOf(err))
}
