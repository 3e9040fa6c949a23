package reload

import "time"

// EventHandler receives notifications about orchestrator activity.
// Methods are called synchronously from orchestrator goroutines and should
// return quickly.
type EventHandler interface {
	// OnSettle is called when the coalescer fires after a quiet window.
	OnSettle(lastSeq uint64)

	// OnRebuildSuccess is called after a successful rebuild.
	OnRebuildSuccess(artifact string, duration time.Duration)

	// OnRebuildError is called when a rebuild fails. No packet is sent.
	OnRebuildError(err error)

	// OnPeerConnected is called when a peer dials in.
	OnPeerConnected(addr string)

	// OnPeerDisconnected is called when a peer is removed from the live set.
	OnPeerDisconnected(addr string, err error)

	// OnBroadcast is called after a reload packet went out to peers.
	OnBroadcast(artifact string, peers int)
}

// NoopEvents discards all notifications.
type NoopEvents struct{}

func (NoopEvents) OnSettle(uint64)                        {}
func (NoopEvents) OnRebuildSuccess(string, time.Duration) {}
func (NoopEvents) OnRebuildError(error)                   {}
func (NoopEvents) OnPeerConnected(string)                 {}
func (NoopEvents) OnPeerDisconnected(string, error)       {}
func (NoopEvents) OnBroadcast(string, int)                {}
