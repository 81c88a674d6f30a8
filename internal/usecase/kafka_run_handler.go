package usecase

import (
	"context"
	"encoding/json"

	"TreasureEngine/internal/domain/models"
	pkgkafka "TreasureEngine/pkg/kafka"
	applogger "TreasureEngine/pkg/logger"
)

// KafkaRunHandler executes canary runs requested over Kafka. Reports leave through the
// service's publisher.
type KafkaRunHandler struct {
	topic   string
	service *CanaryService
	l       *applogger.Logger
}

func NewKafkaRunHandler(topic string, service *CanaryService) *KafkaRunHandler {
	return &KafkaRunHandler{topic: topic, service: service, l: applogger.Nop()}
}

func (h *KafkaRunHandler) SetLogger(l *applogger.Logger) {
	if l != nil {
		h.l = l
	}
}

func (h *KafkaRunHandler) Topic() string { return h.topic }

// Handle decodes a RunRequest over the default config. Malformed requests and coded run
// rejections are permanent; anything else is retried by the consumer.
func (h *KafkaRunHandler) Handle(ctx context.Context, b []byte) error {
	req := h.service.NewRequest()
	if err := json.Unmarshal(b, &req); err != nil {
		return pkgkafka.Permanent(models.WrapError(models.ErrCodeInvalidRequest, err, "decode run request"))
	}
	if req.RequestID == "" {
		req.RequestID = pkgkafka.RequestIDFrom(ctx)
	}

	run, err := h.service.Execute(ctx, req)
	if err != nil {
		if retryable(err) {
			return err
		}
		return pkgkafka.Permanent(err)
	}
	h.l.Info("kafka canary run done",
		applogger.String("request_id", req.RequestID),
		applogger.String("fingerprint", run.Report.Fingerprint),
		applogger.String("verdict", string(run.Report.Verdict)),
	)
	return nil
}

// retryable is true for uncoded failures and for sources that may come back.
func retryable(err error) bool {
	code := models.CodeOf(err)
	return code == "" || code == models.ErrCodeSourceUnavailable
}

var _ pkgkafka.MessageHandler = (*KafkaRunHandler)(nil)
