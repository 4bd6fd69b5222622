package cache

import (
	"context"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InvalidationHandler drops cached documents of a receipt once it changes state
type InvalidationHandler struct {
	cache  DocumentCache
	logger *zap.Logger
}

// NewInvalidationHandler creates a handler bound to cache
func NewInvalidationHandler(cache DocumentCache, logger *zap.Logger) *InvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvalidationHandler{cache: cache, logger: logger.Named("document_cache")}
}

// EventTypes returns the events that change a rendered document
func (h *InvalidationHandler) EventTypes() []string {
	return []string{receipt.EventTypeReceiptSigned, receipt.EventTypeReceiptCancelled}
}

// Handle deletes every cached document of the event's receipt
func (h *InvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.DeletePrefix(ctx, ReceiptKeyPrefix(event.AggregateID())); err != nil {
		h.logger.Warn("failed to invalidate receipt documents",
			zap.String("receipt_id", event.AggregateID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

var _ shared.EventHandler = (*InvalidationHandler)(nil)
