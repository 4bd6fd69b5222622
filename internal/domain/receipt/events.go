package receipt

import (
	"github.com/obra/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event type constants
const (
	EventTypeReceiptIssued    = "ReceiptIssued"
	EventTypeReceiptSigned    = "ReceiptSigned"
	EventTypeReceiptCancelled = "ReceiptCancelled"
)

// ReceiptIssuedEvent is raised when a draft receipt is created
type ReceiptIssuedEvent struct {
	shared.BaseDomainEvent
	Number string          `json:"numero"`
	Amount decimal.Decimal `json:"valor"`
}

// NewReceiptIssuedEvent creates a ReceiptIssuedEvent
func NewReceiptIssuedEvent(r *Receipt) *ReceiptIssuedEvent {
	return &ReceiptIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptIssued, AggregateType, r.ID, r.CreatedAt),
		Number:          r.Number,
		Amount:          r.Amount,
	}
}

// ReceiptSignedEvent is raised when the provider signature is attached
type ReceiptSignedEvent struct {
	shared.BaseDomainEvent
	Number       string `json:"numero"`
	DocumentHash string `json:"hashDocumento"`
}

// NewReceiptSignedEvent creates a ReceiptSignedEvent
func NewReceiptSignedEvent(r *Receipt) *ReceiptSignedEvent {
	return &ReceiptSignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptSigned, AggregateType, r.ID, r.UpdatedAt),
		Number:          r.Number,
		DocumentHash:    r.Signature.DocumentHash,
	}
}

// ReceiptCancelledEvent is raised when a receipt is voided
type ReceiptCancelledEvent struct {
	shared.BaseDomainEvent
	Number         string `json:"numero"`
	PreviousStatus Status `json:"statusAnterior"`
	Reason         string `json:"motivo,omitempty"`
}

// NewReceiptCancelledEvent creates a ReceiptCancelledEvent
func NewReceiptCancelledEvent(r *Receipt, previous Status) *ReceiptCancelledEvent {
	return &ReceiptCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReceiptCancelled, AggregateType, r.ID, r.UpdatedAt),
		Number:          r.Number,
		PreviousStatus:  previous,
		Reason:          r.CancellationReason,
	}
}
