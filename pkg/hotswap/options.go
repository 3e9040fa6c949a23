package hotswap

import (
	"net"

	"github.com/patchwork-labs/hotswap/internal/reload"
	"github.com/patchwork-labs/hotswap/pkg/log"
)

// Rebuilder produces a freshly built artifact on request.
type Rebuilder = reload.Rebuilder

// RebuildFunc adapts a plain function to the Rebuilder interface.
type RebuildFunc = reload.RebuildFunc

// EventHandler receives notifications about agent activity. Methods are
// called synchronously and should return quickly.
type EventHandler = reload.EventHandler

// Option configures optional behavior of the agent.
type Option func(*options)

type options struct {
	logger       log.Logger
	rebuilder    Rebuilder
	eventHandler EventHandler
	listener     net.Listener
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithRebuilder injects a custom build collaborator, replacing the
// external command configured via Config.RebuildArgv.
func WithRebuilder(r Rebuilder) Option {
	return func(o *options) {
		o.rebuilder = r
	}
}

// WithEventHandler sets a handler for agent events.
// If not provided, no events are emitted.
func WithEventHandler(h EventHandler) Option {
	return func(o *options) {
		o.eventHandler = h
	}
}

// WithListener injects an already-bound listener for peer connections,
// replacing Config.ListenNetwork/ListenAddress. The agent takes ownership
// and closes it on Stop.
func WithListener(ln net.Listener) Option {
	return func(o *options) {
		o.listener = ln
	}
}
