package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/obra/backend/internal/domain/shared"
	"github.com/obra/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// panickingHandler records nothing and panics on every event
type panickingHandler struct {
	msg string
}

func (h panickingHandler) Handle(context.Context, shared.DomainEvent) error { panic(h.msg) }

func (h panickingHandler) EventTypes() []string { return []string{"ReceiptIssued"} }

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler("ReceiptSigned")
	bus.Subscribe(handler)

	event := testutil.NewTestEvent("ReceiptSigned")
	require.NoError(t, bus.Publish(context.Background(), event, testutil.NewTestEvent("ReceiptSigned")))

	handled := handler.Handled()
	require.Len(t, handled, 2)
	assert.Same(t, event, handled[0])
}

func TestInMemoryEventBus_Publish_Routing(t *testing.T) {
	bus := NewInMemoryEventBus(nil)

	signed := testutil.NewMockEventHandler("ReceiptSigned")
	other := testutil.NewMockEventHandler("ReceiptCancelled")
	wildcard := testutil.NewMockEventHandler()
	bus.Subscribe(signed)
	bus.Subscribe(other)
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), testutil.NewTestEvent("ReceiptSigned")))

	assert.Len(t, signed.Handled(), 1)
	assert.Empty(t, other.Handled())
	assert.Len(t, wildcard.Handled(), 1)
}

func TestInMemoryEventBus_Publish_FailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := testutil.NewMockEventHandler("ReceiptIssued")
	failing.SetError(errors.New("redis unavailable"))
	panicking := panickingHandler{msg: "boom"}
	healthy := testutil.NewMockEventHandler("ReceiptIssued")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	err := bus.Publish(context.Background(), testutil.NewTestEvent("ReceiptIssued"))

	require.NoError(t, err)
	assert.Len(t, healthy.Handled(), 1)
	entries := logs.FilterMessage("event handler failed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "redis unavailable", entries[0].ContextMap()["error"])
	assert.Contains(t, entries[1].ContextMap()["error"], "handler panicked: boom")
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())

	handler := testutil.NewMockEventHandler("ReceiptSigned")
	bus.Subscribe(handler)
	_ = bus.Publish(context.Background(), testutil.NewTestEvent("ReceiptSigned"))

	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), testutil.NewTestEvent("ReceiptSigned"))

	assert.Len(t, handler.Handled(), 1)
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	assert.False(t, bus.IsRunning())

	require.NoError(t, bus.Start(context.Background()))
	assert.True(t, bus.IsRunning())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.IsRunning())
}

func TestInMemoryEventBus_Publish_Concurrent(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := testutil.NewMockEventHandler("ReceiptSigned", "ReceiptCancelled")
	bus.Subscribe(handler)

	const publishers = 8
	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = bus.Publish(context.Background(), testutil.NewTestEvent("ReceiptSigned"), testutil.NewTestEvent("ReceiptCancelled"))
		}()
	}

	require.True(t, testutil.WaitForEventCount(t, handler, 2*publishers, time.Second))
	wg.Wait()
	assert.Equal(t, 2*publishers, handler.HandledCount())
}
