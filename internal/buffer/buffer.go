// Package buffer provides a growable byte buffer with the cursor
// operations the wire codec needs for both marshaling and unmarshaling.
// It is the analogue of the teacher's internal/buffer package referenced
// throughout encode.go and frames.go.
package buffer

import (
	"encoding/binary"
	"errors"
)

// ErrShortBuffer is returned by the read* methods when fewer bytes remain
// than requested. It is not fatal on its own: the frame transport adapter
// treats it as "wait for more bytes" rather than a protocol error.
var ErrShortBuffer = errors.New("buffer: not enough bytes remain")

// Buffer is a read/write cursor over a byte slice. The zero value is a
// valid, empty buffer ready for writing.
type Buffer struct {
	b   []byte
	off int // read offset
}

// New wraps b for reading; the write cursor starts at len(b).
func New(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Reset empties the buffer for reuse, keeping the underlying array.
func (b *Buffer) Reset() {
	b.b = b.b[:0]
	b.off = 0
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return len(b.b) - b.off
}

// Size returns the total number of bytes written, ignoring the read cursor.
func (b *Buffer) Size() int {
	return len(b.b)
}

// Bytes returns the full underlying slice (ignores the read cursor).
func (b *Buffer) Bytes() []byte {
	return b.b
}

// Unread returns the slice of bytes not yet consumed by Read*.
func (b *Buffer) Unread() []byte {
	return b.b[b.off:]
}

// Skip advances the read cursor by n bytes.
func (b *Buffer) Skip(n int) error {
	if b.Len() < n {
		return ErrShortBuffer
	}
	b.off += n
	return nil
}

// Write appends p to the buffer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.b = append(b.b, p...)
	return len(p), nil
}

// Append is an allocation-free-at-the-call-site alias for Write used by
// marshal code that doesn't care about the (int, error) return.
func (b *Buffer) Append(p []byte) {
	b.b = append(b.b, p...)
}

// WriteByte appends a single byte.
func (b *Buffer) WriteByte(c byte) error {
	b.b = append(b.b, c)
	return nil
}

// WriteString appends s without a length prefix; callers prefix with the
// appropriate short/long string length themselves.
func (b *Buffer) WriteString(s string) {
	b.b = append(b.b, s...)
}

// WriteUint16 appends v big-endian.
func (b *Buffer) WriteUint16(v uint16) {
	b.b = append(b.b, byte(v>>8), byte(v))
}

// WriteUint32 appends v big-endian.
func (b *Buffer) WriteUint32(v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// WriteUint64 appends v big-endian.
func (b *Buffer) WriteUint64(v uint64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], v)
	b.b = append(b.b, tmp[:]...)
}

// ReadByte consumes and returns the next byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Len() < 1 {
		return 0, ErrShortBuffer
	}
	c := b.b[b.off]
	b.off++
	return c, nil
}

// PeekByte returns the next byte without consuming it.
func (b *Buffer) PeekByte() (byte, error) {
	if b.Len() < 1 {
		return 0, ErrShortBuffer
	}
	return b.b[b.off], nil
}

// ReadUint16 consumes a big-endian uint16.
func (b *Buffer) ReadUint16() (uint16, error) {
	if b.Len() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(b.b[b.off:])
	b.off += 2
	return v, nil
}

// ReadUint32 consumes a big-endian uint32.
func (b *Buffer) ReadUint32() (uint32, error) {
	if b.Len() < 4 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint32(b.b[b.off:])
	b.off += 4
	return v, nil
}

// ReadUint64 consumes a big-endian uint64.
func (b *Buffer) ReadUint64() (uint64, error) {
	if b.Len() < 8 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint64(b.b[b.off:])
	b.off += 8
	return v, nil
}

// Next consumes and returns the next n bytes. The returned slice aliases
// the buffer's backing array and must be copied if retained.
func (b *Buffer) Next(n int) ([]byte, error) {
	if b.Len() < n {
		return nil, ErrShortBuffer
	}
	out := b.b[b.off : b.off+n]
	b.off += n
	return out, nil
}
