package events

import (
	"context"

	"github.com/punchaudit/punchaudit-backend/internal/audit/domain"
	"github.com/punchaudit/punchaudit-backend/pkg/logger"
	"github.com/punchaudit/punchaudit-backend/pkg/messaging"
)

// Source identifies this service in published events.
const Source = "audit-service"

// Publisher is the subset of messaging.Publisher used here.
type Publisher interface {
	Publish(ctx context.Context, eventType string, data interface{}) error
}

// AuditEventPublisher publishes analysis events. Failures are logged and
// never returned; a run is complete whether or not anyone hears about it.
type AuditEventPublisher struct {
	publisher Publisher
	logger    *logger.Logger
}

// NewAuditEventPublisher wraps an existing publisher.
func NewAuditEventPublisher(publisher Publisher, log *logger.Logger) *AuditEventPublisher {
	return &AuditEventPublisher{publisher: publisher, logger: log}
}

// NewRabbitMQPublisher publishes to exchange on rmq, declaring it first. An
// empty exchange means messaging.ExchangeAuditEvents.
func NewRabbitMQPublisher(rmq *messaging.RabbitMQ, exchange string, log *logger.Logger) (*AuditEventPublisher, error) {
	if exchange == "" {
		exchange = messaging.ExchangeAuditEvents
	}
	publisher, err := messaging.NewPublisher(rmq, exchange, Source, log)
	if err != nil {
		return nil, err
	}
	return NewAuditEventPublisher(publisher, log), nil
}

// PublishAnalysisCompleted publishes the summary of a finished run.
func (p *AuditEventPublisher) PublishAnalysisCompleted(ctx context.Context, res *domain.AnalysisResult, sourceFilename string, reportAvailable bool) {
	if p == nil || p.publisher == nil {
		return
	}

	data := messaging.AnalysisCompletedEvent{
		RunID:           res.RequestID,
		SourceFilename:  sourceFilename,
		StartDate:       res.Window.StartDate.String(),
		EndDate:         res.Window.EndDate.String(),
		RowsReceived:    res.Summary.RowsReceived,
		RowsAfterFilter: res.Summary.RowsAfterFilter,
		Employees:       res.Summary.Employees,
		Flags:           res.Summary.Flags.Map(),
		WarningCount:    len(res.Warnings),
		ReportAvailable: reportAvailable,
	}

	ctx = messaging.WithCorrelationID(ctx, res.RequestID)
	if err := p.publisher.Publish(ctx, messaging.EventAnalysisCompleted, data); err != nil {
		p.logger.Error().Err(err).Str("run_id", res.RequestID).Msg("failed to publish analysis completed event")
	}
}
