package usecase

import (
	"context"

	applogger "TreasureEngine/pkg/logger"
	"TreasureEngine/pkg/queue"
)

// CanaryRunJobType is the queue message type of asynchronous run requests.
const CanaryRunJobType = "canary.run"

// CanaryRunJob executes queued run requests. Rejected requests are logged and dropped;
// only retryable failures go back to the queue.
type CanaryRunJob struct {
	service *CanaryService
	l       *applogger.Logger
}

func NewCanaryRunJob(service *CanaryService) *CanaryRunJob {
	return &CanaryRunJob{service: service, l: applogger.Nop()}
}

func (j *CanaryRunJob) SetLogger(l *applogger.Logger) {
	if l != nil {
		j.l = l
	}
}

func (j *CanaryRunJob) Name() string { return "canary-run" }
func (j *CanaryRunJob) Type() string { return CanaryRunJobType }

func (j *CanaryRunJob) Handle(ctx context.Context, payload interface{}) error {
	req := j.service.NewRequest()
	if err := queue.DecodePayload(payload, &req); err != nil {
		j.l.Warn("dropping malformed queued run", applogger.String("id", queue.MessageIDFrom(ctx)), applogger.Error(err))
		return nil
	}
	if req.RequestID == "" {
		req.RequestID = queue.MessageIDFrom(ctx)
	}

	run, err := j.service.Execute(ctx, req)
	if err != nil {
		if retryable(err) {
			return err
		}
		j.l.Warn("queued run rejected", applogger.String("request_id", req.RequestID), applogger.Error(err))
		return nil
	}
	j.l.Info("queued canary run done",
		applogger.String("request_id", req.RequestID),
		applogger.String("fingerprint", run.Report.Fingerprint))
	return nil
}

var _ queue.Job = (*CanaryRunJob)(nil)
