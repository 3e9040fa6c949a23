package reload

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/patchwork-labs/hotswap/internal/debounce"
	"github.com/patchwork-labs/hotswap/internal/watcher"
	"github.com/patchwork-labs/hotswap/internal/wire"
	"github.com/patchwork-labs/hotswap/pkg/log"
)

// Config holds the orchestrator settings.
type Config struct {
	// Paths are the directories to watch. Required.
	Paths []string

	// QuietWindow is the debounce window. Zero means the default.
	QuietWindow time.Duration

	// Backend selects the watcher backend. Empty means platform-native.
	Backend watcher.Backend
}

// Orchestrator wires watcher, coalescer, rebuilder and peers together.
type Orchestrator struct {
	cfg       Config
	rebuilder Rebuilder
	logger    log.Logger
	events    EventHandler

	coalescer *debounce.Coalescer
	session   watcher.Session
	listener  net.Listener

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	peersMu sync.Mutex
	peers   map[*peer]struct{}

	// buildMu serializes rebuilds. A settle during a running rebuild marks
	// pending; the build loop runs once more after finishing so the final
	// settle is never lost.
	buildMu  sync.Mutex
	building bool
	pending  bool
}

// New creates an orchestrator. The rebuilder is the external build
// collaborator; logger and events may be nil.
func New(cfg Config, rebuilder Rebuilder, logger log.Logger, events EventHandler) *Orchestrator {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	if events == nil {
		events = NoopEvents{}
	}
	return &Orchestrator{
		cfg:       cfg,
		rebuilder: rebuilder,
		logger:    logger,
		events:    events,
		peers:     make(map[*peer]struct{}),
	}
}

// Start begins watching and, when ln is non-nil, accepting peer connections.
// Watcher start failure aborts the whole session.
func (o *Orchestrator) Start(ctx context.Context, ln net.Listener) error {
	if o.rebuilder == nil {
		return fmt.Errorf("reload: rebuilder is required")
	}
	if o.session != nil {
		return fmt.Errorf("reload: already started")
	}

	o.ctx, o.cancel = context.WithCancel(ctx)
	o.coalescer = debounce.New(o.cfg.QuietWindow, o.onSettle)

	session, err := watcher.WatchWithBackend(o.cfg.Backend, o.cfg.Paths, o.onRawEvent, o.onWatchError, o.logger)
	if err != nil {
		o.cancel()
		return fmt.Errorf("reload: start watcher: %w", err)
	}
	o.session = session
	o.listener = ln

	if ln != nil {
		o.wg.Add(1)
		go o.acceptLoop()
		o.logger.Info("reload loop started",
			log.Int("paths", len(o.cfg.Paths)),
			log.String("listen", ln.Addr().String()),
		)
	} else {
		o.logger.Info("reload loop started", log.Int("paths", len(o.cfg.Paths)))
	}
	return nil
}

// Stop tears the session down: the watcher first, so no event reaches the
// coalescer afterwards, then the coalescer, listener and peers. Blocks until
// all orchestrator goroutines have exited.
func (o *Orchestrator) Stop() error {
	if o.session == nil {
		return fmt.Errorf("reload: not started")
	}

	o.cancel()

	err := o.session.Stop()
	o.coalescer.Stop()

	if o.listener != nil {
		o.listener.Close()
	}

	o.peersMu.Lock()
	targets := make([]*peer, 0, len(o.peers))
	for p := range o.peers {
		targets = append(targets, p)
	}
	o.peers = make(map[*peer]struct{})
	o.peersMu.Unlock()
	for _, p := range targets {
		p.close()
	}

	o.wg.Wait()

	// Reset per-run state so the orchestrator can be started again.
	o.session = nil
	o.coalescer = nil
	o.listener = nil
	o.buildMu.Lock()
	o.building = false
	o.pending = false
	o.buildMu.Unlock()

	o.logger.Info("reload loop stopped")
	return err
}

// PeerCount returns the number of live connections.
func (o *Orchestrator) PeerCount() int {
	o.peersMu.Lock()
	defer o.peersMu.Unlock()
	return len(o.peers)
}

func (o *Orchestrator) onRawEvent(ev watcher.RawChangeEvent) {
	o.logger.Debug("change event",
		log.String("path", ev.Path),
		log.String("flags", ev.Flags.String()),
		log.Uint64("seq", ev.Seq),
	)
	o.coalescer.Observe(ev.Seq)
}

func (o *Orchestrator) onWatchError(err error) {
	o.logger.Error("watcher error", log.Err(err))
}

func (o *Orchestrator) onSettle(lastSeq uint64) {
	if o.ctx.Err() != nil {
		return
	}

	o.logger.Debug("file system settled", log.Uint64("last_seq", lastSeq))
	o.events.OnSettle(lastSeq)

	o.buildMu.Lock()
	if o.building {
		o.pending = true
		o.buildMu.Unlock()
		return
	}
	o.building = true
	o.buildMu.Unlock()

	o.wg.Add(1)
	go o.buildLoop()
}

// buildLoop runs rebuilds until no settle is pending. Only one loop runs at
// a time.
func (o *Orchestrator) buildLoop() {
	defer o.wg.Done()

	for {
		o.rebuildOnce()

		o.buildMu.Lock()
		if !o.pending {
			o.building = false
			o.buildMu.Unlock()
			return
		}
		o.pending = false
		o.buildMu.Unlock()
	}
}

func (o *Orchestrator) rebuildOnce() {
	if o.ctx.Err() != nil {
		return
	}

	start := time.Now()
	artifact, err := o.rebuilder.Rebuild(o.ctx)
	duration := time.Since(start)

	if err != nil {
		// Peers keep running previously loaded code.
		o.logger.Error("rebuild failed", log.Err(err), log.Duration("duration", duration))
		o.events.OnRebuildError(err)
		return
	}

	o.logger.Info("rebuild succeeded",
		log.String("artifact", artifact),
		log.Duration("duration", duration),
	)
	o.events.OnRebuildSuccess(artifact, duration)
	o.broadcast(artifact)
}

// broadcast sends one ReloadDylib packet to every live peer. A failed write
// removes that one peer and does not affect the others.
func (o *Orchestrator) broadcast(artifact string) {
	pkt := wire.ReloadDylib{Path: artifact}

	o.peersMu.Lock()
	targets := make([]*peer, 0, len(o.peers))
	for p := range o.peers {
		targets = append(targets, p)
	}
	o.peersMu.Unlock()

	sent := 0
	for _, p := range targets {
		if err := p.send(pkt); err != nil {
			o.logger.Error("reload send failed",
				log.String("peer", p.addr()),
				log.Err(err),
			)
			o.removePeer(p, err)
			continue
		}
		sent++
	}

	o.logger.Info("reload broadcast",
		log.String("artifact", artifact),
		log.Int("peers", sent),
	)
	o.events.OnBroadcast(artifact, sent)
}

func (o *Orchestrator) acceptLoop() {
	defer o.wg.Done()

	for {
		conn, err := o.listener.Accept()
		if err != nil {
			if o.ctx.Err() != nil {
				return
			}
			o.logger.Error("accept failed", log.Err(err))
			return
		}
		o.addPeer(conn)
	}
}

func (o *Orchestrator) addPeer(conn net.Conn) {
	p := newPeer(conn)

	o.peersMu.Lock()
	o.peers[p] = struct{}{}
	n := len(o.peers)
	o.peersMu.Unlock()

	o.logger.Info("peer connected", log.String("peer", p.addr()), log.Int("peers", n))
	o.events.OnPeerConnected(p.addr())

	o.wg.Add(1)
	go o.servePeer(p)
}

// servePeer is the read loop of one connection. Transport and protocol
// errors have the same outcome: the peer leaves the live set.
func (o *Orchestrator) servePeer(p *peer) {
	defer o.wg.Done()

	for {
		pkt, err := wire.ReadPacket(p.stream)
		if err != nil {
			o.removePeer(p, err)
			return
		}

		switch pkt.(type) {
		case wire.Ping:
			if err := p.send(wire.Pong{}); err != nil {
				o.removePeer(p, err)
				return
			}
		case wire.Pong:
			o.logger.Debug("pong received", log.String("peer", p.addr()))
		default:
			o.logger.Warn("unexpected packet from peer",
				log.String("peer", p.addr()),
				log.Uint64("tag", uint64(pkt.Tag())),
			)
		}
	}
}

// removePeer deletes the peer from the live set and closes it. The presence
// check keeps racing callers (read loop vs broadcast vs Stop) from reporting
// one disconnect twice.
func (o *Orchestrator) removePeer(p *peer, cause error) {
	o.peersMu.Lock()
	_, present := o.peers[p]
	if present {
		delete(o.peers, p)
	}
	o.peersMu.Unlock()

	if !present {
		return
	}

	p.close()
	o.logger.Info("peer disconnected", log.String("peer", p.addr()), log.Err(cause))
	o.events.OnPeerDisconnected(p.addr(), cause)
}
