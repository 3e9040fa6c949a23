package hotswap

import (
	"context"
	"fmt"
	"net"
	"sync"

	"github.com/patchwork-labs/hotswap/internal/reload"
	"github.com/patchwork-labs/hotswap/internal/watcher"
	"github.com/patchwork-labs/hotswap/pkg/lifecycle"
	"github.com/patchwork-labs/hotswap/pkg/log"
)

// Lifecycle states, re-exported for convenient access.
const (
	StateStopped  = lifecycle.StateStopped
	StateStarting = lifecycle.StateStarting
	StateRunning  = lifecycle.StateRunning
	StateStopping = lifecycle.StateStopping
	StateCrashed  = lifecycle.StateCrashed
)

// Hotswap is a live-reload agent that can be embedded in other applications.
// Use New() to create an instance, then Start() to begin watching.
type Hotswap struct {
	config    Config
	opts      options
	lifecycle *lifecycle.DefaultManager
	orch      *reload.Orchestrator
	logger    log.Logger

	mu       sync.Mutex
	listener net.Listener
	cancel   context.CancelFunc
}

// New creates a new agent with the given configuration.
// The instance is created in StateStopped; call Start() to begin watching.
// Returns an error if configuration is invalid.
func New(cfg Config, opts ...Option) (*Hotswap, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	rebuilder := o.rebuilder
	if rebuilder == nil {
		if len(cfg.RebuildArgv) == 0 {
			return nil, fmt.Errorf("%w: a rebuild command or a Rebuilder is required", ErrInvalidConfig)
		}
		rebuilder = &reload.CommandRebuilder{
			Argv:     cfg.RebuildArgv,
			Dir:      cfg.RebuildDir,
			Artifact: cfg.Artifact,
		}
	}

	orch := reload.New(reload.Config{
		Paths:       cfg.Paths,
		QuietWindow: cfg.QuietWindow,
		Backend:     watcher.Backend(cfg.Backend),
	}, rebuilder, o.logger, o.eventHandler)

	return &Hotswap{
		config:    cfg,
		opts:      o,
		lifecycle: lifecycle.NewManager(o.logger, nil),
		orch:      orch,
		logger:    o.logger,
	}, nil
}

// Start begins watching and serving peers in the background.
// Returns immediately once the watch session and listener are up.
// Returns ErrAlreadyRunning if the agent is not stopped.
func (h *Hotswap) Start(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.lifecycle.CanStart() {
		return ErrAlreadyRunning
	}
	if err := h.lifecycle.TransitionTo(lifecycle.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.lifecycle.SetCancel(cancel)

	ln := h.opts.listener
	if ln == nil && h.config.ListenAddress != "" {
		var err error
		ln, err = net.Listen(h.config.ListenNetwork, h.config.ListenAddress)
		if err != nil {
			cancel()
			_ = h.lifecycle.TransitionTo(lifecycle.StateCrashed, "listen failed")
			return fmt.Errorf("hotswap: listen %s %s: %w", h.config.ListenNetwork, h.config.ListenAddress, err)
		}
	}
	h.listener = ln

	if err := h.orch.Start(runCtx, ln); err != nil {
		if ln != nil {
			ln.Close()
		}
		cancel()
		_ = h.lifecycle.TransitionTo(lifecycle.StateCrashed, "watcher start failed")
		return err
	}

	return h.lifecycle.TransitionTo(lifecycle.StateRunning, "startup complete")
}

// Stop shuts the agent down gracefully: watcher first, then coalescer,
// listener and peer connections. Returns ErrNotRunning if the agent is
// not running.
func (h *Hotswap) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.lifecycle.CanStop() {
		return ErrNotRunning
	}
	if err := h.lifecycle.TransitionTo(lifecycle.StateStopping, "Stop() called"); err != nil {
		return err
	}

	err := h.orch.Stop()
	if h.cancel != nil {
		h.cancel()
	}
	h.listener = nil

	if terr := h.lifecycle.TransitionTo(lifecycle.StateStopped, "shutdown complete"); terr != nil && err == nil {
		err = terr
	}
	return err
}

// Status returns the current lifecycle state.
func (h *Hotswap) Status() lifecycle.State {
	return h.lifecycle.State()
}

// PeerCount returns the number of live peer connections.
func (h *Hotswap) PeerCount() int {
	return h.orch.PeerCount()
}

// Addr returns the listener address, or nil when no listener is active.
func (h *Hotswap) Addr() net.Addr {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listener == nil {
		return nil
	}
	return h.listener.Addr()
}
