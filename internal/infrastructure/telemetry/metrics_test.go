package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func newTestReceiptMetrics(t *testing.T) (*ReceiptMetrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	m, err := NewReceiptMetrics(provider.Meter("test"))
	require.NoError(t, err)
	return m, reader
}

func TestReceiptMetrics_Counters(t *testing.T) {
	m, reader := newTestReceiptMetrics(t)
	ctx := context.Background()

	m.RecordIssued(ctx, "BRL")
	m.RecordIssued(ctx, "BRL")
	m.RecordSigned(ctx, "desenho")
	m.RecordCancelled(ctx, "assinado")

	metrics := collect(t, reader)

	issued, ok := metrics["receipt.issued"]
	require.True(t, ok)
	sum := issued.Data.(metricdata.Sum[int64])
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(2), sum.DataPoints[0].Value)
	currency, _ := sum.DataPoints[0].Attributes.Value(AttrCurrency)
	assert.Equal(t, "BRL", currency.AsString())

	signed := metrics["receipt.signed"].Data.(metricdata.Sum[int64])
	require.Len(t, signed.DataPoints, 1)
	assert.Equal(t, int64(1), signed.DataPoints[0].Value)

	cancelled := metrics["receipt.cancelled"].Data.(metricdata.Sum[int64])
	require.Len(t, cancelled.DataPoints, 1)
	from, _ := cancelled.DataPoints[0].Attributes.Value(AttrFromStatus)
	assert.Equal(t, "assinado", from.AsString())
}

func TestReceiptMetrics_Durations(t *testing.T) {
	m, reader := newTestReceiptMetrics(t)
	ctx := context.Background()

	m.RecordHash(ctx, 2*time.Millisecond, OutcomeSuccess)
	m.RecordHash(ctx, 5*time.Second, OutcomeTimeout)
	m.RecordRender(ctx, "pdf", 1500*time.Millisecond, OutcomeSuccess)

	metrics := collect(t, reader)

	hash := metrics["receipt.hash.duration"].Data.(metricdata.Histogram[float64])
	require.Len(t, hash.DataPoints, 2)
	var outcomes []string
	for _, dp := range hash.DataPoints {
		v, _ := dp.Attributes.Value(AttrOutcome)
		outcomes = append(outcomes, v.AsString())
		assert.Equal(t, HashDurationBuckets, dp.Bounds)
	}
	assert.ElementsMatch(t, []string{OutcomeSuccess, OutcomeTimeout}, outcomes)

	render := metrics["receipt.render.duration"].Data.(metricdata.Histogram[float64])
	require.Len(t, render.DataPoints, 1)
	assert.InDelta(t, 1.5, render.DataPoints[0].Sum, 1e-9)
	kind, _ := render.DataPoints[0].Attributes.Value(attribute.Key("document.kind"))
	assert.Equal(t, "pdf", kind.AsString())
}

func TestReceiptMetrics_NilIsSafe(t *testing.T) {
	var m *ReceiptMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		m.RecordIssued(ctx, "BRL")
		m.RecordSigned(ctx, "digitado")
		m.RecordCancelled(ctx, "rascunho")
		m.RecordHash(ctx, time.Millisecond, OutcomeError)
		m.RecordRender(ctx, "html", time.Millisecond, OutcomeSuccess)
	})
}

func TestMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(context.Background()))

	m, err := NewReceiptMetricsFromProvider(mp)
	require.NoError(t, err)
	assert.NotPanics(t, func() { m.RecordIssued(context.Background(), "BRL") })
}
