package wire

import "fmt"

// PacketTag identifies a packet variant on the wire.
// Tags are append-only: existing values are never reassigned.
type PacketTag uint64

const (
	// TagPing is a liveness probe. No payload.
	TagPing PacketTag = 0

	// TagPong answers a Ping. No payload.
	TagPong PacketTag = 1

	// TagReloadDylib instructs the peer to load a freshly built dynamic
	// library. Payload: artifact path as a variable string.
	TagReloadDylib PacketTag = 2
)

// UnknownPacketError is returned when a decoded tag is not a known variant.
// Decoding consumes only the 8 tag bytes; the connection is desynced and
// should be closed.
type UnknownPacketError struct {
	Tag uint64
}

func (e *UnknownPacketError) Error() string {
	return fmt.Sprintf("wire: unknown packet tag %d", e.Tag)
}

// Packet is a protocol message. The variant set is closed: Ping, Pong and
// ReloadDylib are the only implementations.
type Packet interface {
	// Tag returns the wire tag of this variant.
	Tag() PacketTag
}

// Ping is a liveness probe. The peer answers with Pong.
type Ping struct{}

// Pong answers a Ping.
type Pong struct{}

// ReloadDylib tells a peer to swap in the dynamic library at Path.
type ReloadDylib struct {
	Path string
}

// Tag returns TagPing.
func (Ping) Tag() PacketTag { return TagPing }

// Tag returns TagPong.
func (Pong) Tag() PacketTag { return TagPong }

// Tag returns TagReloadDylib.
func (ReloadDylib) Tag() PacketTag { return TagReloadDylib }

// ReadPacket decodes one packet from the stream.
// An unrecognized tag fails with UnknownPacketError after consuming only the
// tag itself.
func ReadPacket(s *Stream) (Packet, error) {
	tag, err := s.ReadUint64()
	if err != nil {
		return nil, err
	}

	switch PacketTag(tag) {
	case TagPing:
		return Ping{}, nil
	case TagPong:
		return Pong{}, nil
	case TagReloadDylib:
		path, err := s.ReadVariableString()
		if err != nil {
			return nil, err
		}
		return ReloadDylib{Path: path}, nil
	default:
		return nil, &UnknownPacketError{Tag: tag}
	}
}

// WritePacket encodes one packet to the stream: tag first, then whatever
// payload the variant carries.
func WritePacket(s *Stream, p Packet) error {
	if err := s.WriteUint64(uint64(p.Tag())); err != nil {
		return err
	}

	switch pkt := p.(type) {
	case Ping, Pong:
		return nil
	case ReloadDylib:
		return s.WriteVariableString(pkt.Path)
	default:
		return fmt.Errorf("wire: cannot encode packet type %T", p)
	}
}
