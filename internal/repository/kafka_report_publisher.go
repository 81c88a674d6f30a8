package repository

import (
	"context"

	"TreasureEngine/internal/domain/models"
	domrepo "TreasureEngine/internal/domain/repository"
	pkgkafka "TreasureEngine/pkg/kafka"
)

// ReportEnvelope is the message published for every finished run.
type ReportEnvelope struct {
	RequestID   string                 `json:"request_id,omitempty"`
	Fingerprint string                 `json:"fingerprint"`
	Mode        models.Mode            `json:"mode"`
	Scenario    string                 `json:"scenario"`
	Status      models.ControllerState `json:"status"`
	Verdict     models.Verdict         `json:"verdict"`
	Run         *models.CanaryRun      `json:"run"`
}

// KafkaReportPublisher publishes runs keyed by fingerprint.
type KafkaReportPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

var _ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)

func NewKafkaReportPublisher(producer *pkgkafka.Producer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

func (p *KafkaReportPublisher) PublishReport(ctx context.Context, run *models.CanaryRun) error {
	r := run.Report
	env := ReportEnvelope{
		RequestID:   pkgkafka.RequestIDFrom(ctx),
		Fingerprint: r.Fingerprint,
		Mode:        r.Mode,
		Scenario:    r.Scenario,
		Status:      r.Status,
		Verdict:     r.Verdict,
		Run:         run,
	}
	return p.producer.PublishBatch(ctx, p.topic, []pkgkafka.Message{{
		Key:   []byte(r.Fingerprint),
		Value: env,
		Headers: map[string]string{
			"verdict": string(r.Verdict),
			"mode":    string(r.Mode),
		},
	}})
}

func (p *KafkaReportPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

// NopReportPublisher drops every report.
type NopReportPublisher struct{}

func (NopReportPublisher) PublishReport(context.Context, *models.CanaryRun) error { return nil }
func (NopReportPublisher) Close() error                                          { return nil }
