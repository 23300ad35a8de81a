// Package bus implements the synchronous publish/subscribe mechanism the
// engine uses for observability. Listeners run in registration order on the
// emitter's goroutine; a panicking listener is isolated so it can neither
// starve later listeners nor reach the emitter.
package bus

import (
	"io"
	"log/slog"
	"sync"
	"time"
)

// Event is one observable engine occurrence.
type Event struct {
	// Name is the event name, e.g. domain.EventEntryStart. Forwarded
	// events carry a "<group>." prefix.
	Name string `json:"name"`

	// Source is the name of the Group or Organization that emitted it.
	Source string `json:"source"`

	Timestamp time.Time      `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Listener receives emitted events.
type Listener func(Event)

type subscription struct {
	id   uint64
	name string // "*" matches every event
	fn   Listener
	once bool
}

// Bus dispatches events for one owning container.
type Bus struct {
	mu     sync.Mutex
	source string
	nextID uint64
	subs   []subscription
	logger *slog.Logger
}

// New creates a bus owned by source. Events emitted through it carry that
// source name.
func New(source string) *Bus {
	return &Bus{
		source: source,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// SetLogger sets the logger used to report isolated listener panics.
func (b *Bus) SetLogger(logger *slog.Logger) {
	if logger == nil {
		return
	}
	b.mu.Lock()
	b.logger = logger
	b.mu.Unlock()
}

// Source returns the owning container name.
func (b *Bus) Source() string { return b.source }

// On registers a listener for the named event and returns its unsubscribe
// function. Listeners are invoked in registration order.
func (b *Bus) On(name string, fn Listener) func() {
	return b.subscribe(name, fn, false)
}

// OnAny registers a listener for every event. Used by organizations to
// forward the activity stream of contained groups.
func (b *Bus) OnAny(fn Listener) func() {
	return b.subscribe("*", fn, false)
}

// Once registers a listener that unsubscribes itself after its first
// invocation.
func (b *Bus) Once(name string, fn Listener) func() {
	return b.subscribe(name, fn, true)
}

func (b *Bus) subscribe(name string, fn Listener, once bool) func() {
	if fn == nil {
		return func() {}
	}
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, name: name, fn: fn, once: once})
	b.mu.Unlock()

	return func() { b.remove(id) }
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			return
		}
	}
}

// Emit publishes a named event with the given payload to all current
// listeners, synchronously and in registration order.
func (b *Bus) Emit(name string, payload map[string]any) {
	b.Publish(Event{
		Name:      name,
		Source:    b.source,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}

// Publish dispatches a fully-formed event. Forwarders use it to preserve the
// original source and timestamp while renaming the event.
func (b *Bus) Publish(evt Event) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}
	if evt.Source == "" {
		evt.Source = b.source
	}

	b.mu.Lock()
	matched := make([]subscription, 0, len(b.subs))
	for _, s := range b.subs {
		if s.name == "*" || s.name == evt.Name {
			matched = append(matched, s)
		}
	}
	logger := b.logger
	b.mu.Unlock()

	// Once-listeners are removed before invocation so a re-entrant emit
	// from inside the listener cannot trigger them twice.
	for _, s := range matched {
		if s.once {
			b.remove(s.id)
		}
	}

	for _, s := range matched {
		b.invoke(logger, s, evt)
	}
}

func (b *Bus) invoke(logger *slog.Logger, s subscription, evt Event) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("event listener panicked",
				"event", evt.Name,
				"source", evt.Source,
				"panic", r,
			)
		}
	}()
	s.fn(evt)
}

// Forward re-emits every event published on src onto dst, renamed with the
// given prefix and a dot separator. Returns the unsubscribe function.
func Forward(src, dst *Bus, prefix string) func() {
	return src.OnAny(func(evt Event) {
		forwarded := evt
		forwarded.Name = prefix + "." + evt.Name
		dst.Publish(forwarded)
	})
}
