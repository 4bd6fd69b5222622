package receipt

import (
	"context"

	"github.com/google/uuid"
	"github.com/obra/backend/internal/domain/shared"
)

// Filter keys understood by ReceiptRepository
const (
	FilterStatus    = "status"
	FilterProjectID = "project_id"
)

// ReceiptRepository persists receipts
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Receipt, error)
	FindByNumber(ctx context.Context, number string) (*Receipt, error)
	// FindAll lists receipts matching filter; Search matches payer name, payee name or number
	FindAll(ctx context.Context, filter shared.Filter) ([]Receipt, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	// Save inserts a version 1 receipt and otherwise updates it under
	// optimistic locking, returning CONCURRENCY_CONFLICT on a stale version.
	Save(ctx context.Context, r *Receipt) error
}
