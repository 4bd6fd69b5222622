package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
)

const receiptMeterName = "obra-recibos/receipt"

// Outcome values recorded with hash and render durations
const (
	OutcomeSuccess = "success"
	OutcomeTimeout = "timeout"
	OutcomeError   = "error"
)

// ReceiptMetrics records lifecycle counters and hash/render latencies.
type ReceiptMetrics struct {
	issued         *Counter
	signed         *Counter
	cancelled      *Counter
	hashDuration   *Histogram
	renderDuration *Histogram
}

// NewReceiptMetrics registers the receipt instruments on meter
func NewReceiptMetrics(meter metric.Meter) (*ReceiptMetrics, error) {
	issued, err := NewCounter(meter, "receipt.issued", "Receipts issued", "{receipt}")
	if err != nil {
		return nil, err
	}
	signed, err := NewCounter(meter, "receipt.signed", "Provider signatures attached", "{receipt}")
	if err != nil {
		return nil, err
	}
	cancelled, err := NewCounter(meter, "receipt.cancelled", "Receipts cancelled", "{receipt}")
	if err != nil {
		return nil, err
	}
	hashDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "receipt.hash.duration",
		Description: "Document hash computation time",
		Unit:        "s",
		Boundaries:  HashDurationBuckets,
	})
	if err != nil {
		return nil, err
	}
	renderDuration, err := NewHistogram(meter, HistogramOpts{
		Name:        "receipt.render.duration",
		Description: "Document rendering time",
		Unit:        "s",
		Boundaries:  RenderDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &ReceiptMetrics{
		issued:         issued,
		signed:         signed,
		cancelled:      cancelled,
		hashDuration:   hashDuration,
		renderDuration: renderDuration,
	}, nil
}

// NewReceiptMetricsFromProvider is a convenience for wiring in main
func NewReceiptMetricsFromProvider(mp *MeterProvider) (*ReceiptMetrics, error) {
	return NewReceiptMetrics(mp.Meter(receiptMeterName))
}

// Methods are nil-safe so callers can run without metrics.

func (m *ReceiptMetrics) RecordIssued(ctx context.Context, currency string) {
	if m == nil {
		return
	}
	m.issued.Inc(ctx, AttrCurrency.String(currency))
}

func (m *ReceiptMetrics) RecordSigned(ctx context.Context, signatureType string) {
	if m == nil {
		return
	}
	m.signed.Inc(ctx, AttrSignatureType.String(signatureType))
}

func (m *ReceiptMetrics) RecordCancelled(ctx context.Context, fromStatus string) {
	if m == nil {
		return
	}
	m.cancelled.Inc(ctx, AttrFromStatus.String(fromStatus))
}

func (m *ReceiptMetrics) RecordHash(ctx context.Context, d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.hashDuration.RecordDuration(ctx, d, AttrOutcome.String(outcome))
}

// RecordRender records an HTML or PDF render; kind is "html" or "pdf"
func (m *ReceiptMetrics) RecordRender(ctx context.Context, kind string, d time.Duration, outcome string) {
	if m == nil {
		return
	}
	m.renderDuration.RecordDuration(ctx, d, AttrDocumentKind.String(kind), AttrOutcome.String(outcome))
}
