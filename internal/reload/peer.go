package reload

import (
	"net"
	"sync"

	"github.com/patchwork-labs/hotswap/internal/wire"
)

// peer is one live connection. The read loop is the only reader; writes
// come from the read loop (Pong) and the broadcast path, serialized by
// writeMu.
type peer struct {
	conn   net.Conn
	stream *wire.Stream

	writeMu sync.Mutex
}

func newPeer(conn net.Conn) *peer {
	return &peer{
		conn:   conn,
		stream: wire.NewStream(conn),
	}
}

func (p *peer) addr() string {
	if a := p.conn.RemoteAddr(); a != nil {
		return a.String()
	}
	return "unknown"
}

// send writes one packet. Concurrent senders are serialized so packet bytes
// never interleave on the wire.
func (p *peer) send(pkt wire.Packet) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return wire.WritePacket(p.stream, pkt)
}

func (p *peer) close() error {
	return p.conn.Close()
}
