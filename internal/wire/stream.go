package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// maxVariableLen bounds a single variable-length field. A peer announcing a
// larger length is desynced or hostile; reject before allocating.
const maxVariableLen = 64 << 20

// ErrInvalidEncoding is returned when a decoded string is not valid UTF-8.
var ErrInvalidEncoding = errors.New("wire: string is not valid UTF-8")

// ShortReadError is returned when the underlying stream could not supply the
// requested number of bytes. A short read is never a partial success.
type ShortReadError struct {
	Requested int
	Got       int
}

func (e *ShortReadError) Error() string {
	return fmt.Sprintf("wire: short read: requested %d bytes, got %d", e.Requested, e.Got)
}

// Stream wraps a duplex byte stream with exact-read and full-write semantics.
// It owns the read/write cursor of exactly one peer connection and must not
// be shared across goroutines without external serialization.
type Stream struct {
	rw io.ReadWriter
}

// NewStream creates a Stream over the given byte stream.
// Any reliable ordered transport works: net.Conn, net.Pipe, bytes.Buffer.
func NewStream(rw io.ReadWriter) *Stream {
	return &Stream{rw: rw}
}

// ReadExactly reads exactly n bytes or fails with a ShortReadError.
func (s *Stream) ReadExactly(n int) ([]byte, error) {
	buf := make([]byte, n)
	got, err := io.ReadFull(s.rw, buf)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, &ShortReadError{Requested: n, Got: got}
		}
		return nil, fmt.Errorf("wire: read: %w", err)
	}
	return buf, nil
}

// Write writes the full buffer or fails.
func (s *Stream) Write(p []byte) error {
	if _, err := s.rw.Write(p); err != nil {
		return fmt.Errorf("wire: write: %w", err)
	}
	return nil
}

// ReadByte reads a single byte.
func (s *Stream) ReadByte() (byte, error) {
	b, err := s.ReadExactly(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads one byte and interprets any nonzero value as true.
func (s *Stream) ReadBool() (bool, error) {
	b, err := s.ReadByte()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

// ReadUint64 reads a little-endian 64-bit unsigned integer.
func (s *Stream) ReadUint64() (uint64, error) {
	b, err := s.ReadExactly(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadVariableData reads an 8-byte length prefix followed by that many bytes.
func (s *Stream) ReadVariableData() ([]byte, error) {
	n, err := s.ReadUint64()
	if err != nil {
		return nil, err
	}
	if n > maxVariableLen {
		return nil, fmt.Errorf("wire: variable field of %d bytes exceeds limit", n)
	}
	if n == 0 {
		return []byte{}, nil
	}
	return s.ReadExactly(int(n))
}

// ReadVariableString reads variable data and decodes it as UTF-8.
// Invalid byte sequences fail with ErrInvalidEncoding.
func (s *Stream) ReadVariableString() (string, error) {
	b, err := s.ReadVariableData()
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", ErrInvalidEncoding
	}
	return string(b), nil
}

// WriteByte writes a single byte.
func (s *Stream) WriteByte(b byte) error {
	return s.Write([]byte{b})
}

// WriteBool writes a bool as one byte (1 or 0).
func (s *Stream) WriteBool(v bool) error {
	if v {
		return s.WriteByte(1)
	}
	return s.WriteByte(0)
}

// WriteUint64 writes a little-endian 64-bit unsigned integer.
func (s *Stream) WriteUint64(v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return s.Write(b[:])
}

// WriteVariableData writes an 8-byte length prefix followed by the bytes.
func (s *Stream) WriteVariableData(p []byte) error {
	if err := s.WriteUint64(uint64(len(p))); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	return s.Write(p)
}

// WriteVariableString writes a string as variable data.
func (s *Stream) WriteVariableString(v string) error {
	return s.WriteVariableData([]byte(v))
}

// ReadOptional reads a presence bool, then the value via read if present.
// Returns nil when the value is absent.
func ReadOptional[T any](s *Stream, read func(*Stream) (T, error)) (*T, error) {
	present, err := s.ReadBool()
	if err != nil {
		return nil, err
	}
	if !present {
		return nil, nil
	}
	v, err := read(s)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// WriteOptional writes a presence bool, then the value via write if non-nil.
func WriteOptional[T any](s *Stream, v *T, write func(*Stream, T) error) error {
	if err := s.WriteBool(v != nil); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	return write(s, *v)
}
