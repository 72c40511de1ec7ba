package buildlog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"doorsmith/internal/customize"
	"doorsmith/internal/logging"
)

// ErrBusClosed is returned by Emit after Close.
var ErrBusClosed = errors.New("buildlog: bus closed")

// Bus fans payloads out to in-process subscribers. A subscriber whose
// buffer is full misses the payload; Emit never waits on a slow reader.
type Bus struct {
	mu      sync.RWMutex
	subs    map[uint64]chan customize.Payload
	nextID  uint64
	buffer  int
	closed  bool
	dropped atomic.Uint64

	inbox   chan customize.Payload
	done    chan struct{}
	stopped chan struct{}
}

// NewBus starts a bus whose subscriber channels hold buffer payloads.
func NewBus(buffer int) *Bus {
	if buffer < 0 {
		buffer = 0
	}
	b := &Bus{
		subs:    make(map[uint64]chan customize.Payload),
		buffer:  buffer,
		inbox:   make(chan customize.Payload, 16),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go b.run()
	return b
}

// Subscribe returns a channel of payloads and a function that cancels the
// subscription and closes the channel.
func (b *Bus) Subscribe() (<-chan customize.Payload, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan customize.Payload, b.buffer)
	if b.closed {
		close(ch)
		return ch, func() {}
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if c, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(c)
			}
		})
	}
}

// Emit queues p for delivery.
func (b *Bus) Emit(ctx context.Context, p customize.Payload) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return ErrBusClosed
	}

	select {
	case b.inbox <- p:
		return nil
	case <-b.done:
		return ErrBusClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dropped reports how many deliveries were skipped because a subscriber was full.
func (b *Bus) Dropped() uint64 {
	return b.dropped.Load()
}

// Close stops delivery and closes every subscriber channel. Payloads still
// queued are delivered first.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	close(b.done)
	b.mu.Unlock()

	<-b.stopped

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
}

func (b *Bus) run() {
	defer close(b.stopped)
	for {
		select {
		case p := <-b.inbox:
			b.fanout(p)
		case <-b.done:
			for {
				select {
				case p := <-b.inbox:
					b.fanout(p)
				default:
					return
				}
			}
		}
	}
}

func (b *Bus) fanout(p customize.Payload) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- p:
		default:
			b.dropped.Add(1)
			logging.BuildError("Bus subscriber full, dropped build %s", p.BuildID)
		}
	}
}
