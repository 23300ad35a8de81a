package cadre

import (
	"log/slog"

	"github.com/avells/cadre/pkg/bus"
)

// Option configures a Group or an Organization.
type Option func(*container)

// container holds the configuration shared by both levels.
type container struct {
	logger *slog.Logger
	bus    *bus.Bus
}

// WithLogger sets the structured logger. The default discards everything,
// keeping the library silent when embedded.
func WithLogger(logger *slog.Logger) Option {
	return func(c *container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBus sets the event bus the container emits on. By default each
// container owns a fresh bus named after it.
func WithBus(b *bus.Bus) Option {
	return func(c *container) {
		if b != nil {
			c.bus = b
		}
	}
}
