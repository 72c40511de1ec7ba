package buildlog

import (
	"context"
	"testing"
	"time"

	"doorsmith/internal/customize"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan customize.Payload) customize.Payload {
	t.Helper()
	select {
	case p, ok := <-ch:
		require.True(t, ok, "channel closed")
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for payload")
		return customize.Payload{}
	}
}

func TestBus_FanOut(t *testing.T) {
	bus := NewBus(4)
	defer bus.Close()

	a, cancelA := bus.Subscribe()
	defer cancelA()
	b, cancelB := bus.Subscribe()
	defer cancelB()

	p := samplePayload(t)
	require.NoError(t, bus.Emit(context.Background(), p))

	assert.Equal(t, p.BuildID, receive(t, a).BuildID)
	assert.Equal(t, p.BuildID, receive(t, b).BuildID)
}

func TestBus_DropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus(1)
	ch, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Emit(context.Background(), samplePayload(t)))
	}
	bus.Close()

	got := 0
	for range ch {
		got++
	}
	assert.Equal(t, 1, got)
	assert.Equal(t, uint64(2), bus.Dropped())
}

func TestBus_UnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus(1)
	defer bus.Close()

	ch, cancel := bus.Subscribe()
	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	require.NoError(t, bus.Emit(context.Background(), samplePayload(t)))
}

func TestBus_EmitAfterClose(t *testing.T) {
	bus := NewBus(1)
	bus.Close()
	bus.Close()

	assert.ErrorIs(t, bus.Emit(context.Background(), samplePayload(t)), ErrBusClosed)

	ch, cancel := bus.Subscribe()
	defer cancel()
	_, ok := <-ch
	assert.False(t, ok)
}
