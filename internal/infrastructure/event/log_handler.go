package event

import (
	"context"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured log line per receipt lifecycle event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates an AuditLogHandler
func NewAuditLogHandler(l *zap.Logger) *AuditLogHandler {
	if l == nil {
		l = zap.NewNop()
	}
	return &AuditLogHandler{logger: l.Named("audit")}
}

// EventTypes returns the receipt lifecycle events
func (h *AuditLogHandler) EventTypes() []string {
	return []string{
		receipt.EventTypeReceiptIssued,
		receipt.EventTypeReceiptSigned,
		receipt.EventTypeReceiptCancelled,
	}
}

// Handle logs the event with its receipt specific fields
func (h *AuditLogHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("receipt_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	}
	if rid := logger.GetRequestID(ctx); rid != "" {
		fields = append(fields, zap.String("request_id", rid))
	}

	switch e := event.(type) {
	case *receipt.ReceiptIssuedEvent:
		fields = append(fields, zap.String("numero", e.Number), zap.String("valor", e.Amount.StringFixed(2)))
	case *receipt.ReceiptSignedEvent:
		fields = append(fields, zap.String("numero", e.Number), zap.String("hash", e.DocumentHash))
	case *receipt.ReceiptCancelledEvent:
		fields = append(fields,
			zap.String("numero", e.Number),
			zap.String("from_status", e.PreviousStatus.String()),
			zap.String("motivo", e.Reason),
		)
	}

	h.logger.Info("receipt event", fields...)
	return nil
}
