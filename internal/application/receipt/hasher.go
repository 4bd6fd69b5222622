package receipt

import (
	"context"
	"errors"
	"time"

	"github.com/obra/backend/internal/domain/receipt"
	"github.com/obra/backend/internal/infrastructure/telemetry"
)

// HashMetrics records hash computation latency
type HashMetrics interface {
	RecordHash(ctx context.Context, d time.Duration, outcome string)
}

// InstrumentedHasher records the latency and outcome of every hash computation
type InstrumentedHasher struct {
	next    receipt.Hasher
	metrics HashMetrics
}

// NewInstrumentedHasher wraps next
func NewInstrumentedHasher(next receipt.Hasher, metrics HashMetrics) *InstrumentedHasher {
	return &InstrumentedHasher{next: next, metrics: metrics}
}

// Hash delegates to the wrapped hasher
func (h *InstrumentedHasher) Hash(ctx context.Context, canonical string) (string, error) {
	start := time.Now()
	sum, err := h.next.Hash(ctx, canonical)

	outcome := telemetry.OutcomeSuccess
	switch {
	case errors.Is(err, receipt.ErrHashComputationTimeout):
		outcome = telemetry.OutcomeTimeout
	case err != nil:
		outcome = telemetry.OutcomeError
	}
	if h.metrics != nil {
		h.metrics.RecordHash(ctx, time.Since(start), outcome)
	}
	return sum, err
}

var _ receipt.Hasher = (*InstrumentedHasher)(nil)
