// Package wire implements the binary protocol spoken between the hotswap
// agent and running peer processes.
//
// The protocol is a sequence of length-prefixed packets over any reliable,
// ordered, bidirectional byte stream (unix-domain socket or TCP). Each packet
// starts with an 8-byte tag followed by a tag-specific payload. Integers are
// little-endian. Variable-length fields carry an 8-byte length prefix.
//
// The Stream type provides the primitive codec (exact reads, fixed-width
// integers, variable data, optionals); packet.go layers the tagged message
// format on top of it.
package wire
