package event

import (
	"context"

	"github.com/feedlot/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// AuditLogHandler writes one structured line per engine event
type AuditLogHandler struct {
	logger *zap.Logger
}

// NewAuditLogHandler creates a handler subscribed to every event
func NewAuditLogHandler(logger *zap.Logger) *AuditLogHandler {
	return &AuditLogHandler{logger: logger.Named("audit")}
}

// Handle logs the event
func (h *AuditLogHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.logger.Info("domain event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes returns nil: the handler receives all events
func (h *AuditLogHandler) EventTypes() []string {
	return nil
}

var _ shared.EventHandler = (*AuditLogHandler)(nil)
