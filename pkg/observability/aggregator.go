package observability

import (
	"sync"

	"github.com/avells/cadre/pkg/bus"
)

// Aggregator merges the event streams of multiple buses into a single
// channel. Emission never blocks the engines: when the channel buffer is
// full the event is dropped and counted.
type Aggregator struct {
	mu      sync.Mutex
	events  chan bus.Event
	offs    []func()
	dropped uint64
	closed  bool
}

// NewAggregator creates an aggregator with the given channel buffer.
func NewAggregator(buffer int) *Aggregator {
	if buffer <= 0 {
		buffer = 64
	}
	return &Aggregator{
		events: make(chan bus.Event, buffer),
	}
}

// Watch subscribes the aggregator to a bus until Close.
func (a *Aggregator) Watch(b *bus.Bus) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	off := b.OnAny(func(e bus.Event) {
		a.mu.Lock()
		if a.closed {
			a.mu.Unlock()
			return
		}
		select {
		case a.events <- e:
		default:
			a.dropped++
		}
		a.mu.Unlock()
	})
	a.offs = append(a.offs, off)
}

// Events returns the merged stream. The channel closes on Close.
func (a *Aggregator) Events() <-chan bus.Event {
	return a.events
}

// Dropped reports how many events were discarded because the buffer was
// full.
func (a *Aggregator) Dropped() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

// Close detaches all subscriptions and closes the event channel.
func (a *Aggregator) Close() {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return
	}
	a.closed = true
	offs := a.offs
	a.offs = nil
	a.mu.Unlock()

	for _, off := range offs {
		off()
	}

	a.mu.Lock()
	close(a.events)
	a.mu.Unlock()
}
