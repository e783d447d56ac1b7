// Package wire implements the AMQP 0-9-1 frame and method codec: the
// byte-level (un)marshalling the core engine treats as an external
// collaborator per the specification, but which this module must still
// supply a concrete implementation of. The split between this file's
// low-level primitives and methods.go's per-performative structs mirrors
// the teacher's encode.go/frames.go split.
package wire

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coreamqp/amqp091/internal/buffer"
)

// Frame types, per AMQP 0-9-1 §2.3.5.
const (
	FrameMethod      byte = 1
	FrameHeader      byte = 2
	FrameContentBody byte = 3
	FrameHeartbeat   byte = 8
)

const frameEnd byte = 0xCE

// ErrMalformedFrame is returned for structurally invalid frames (wrong
// end-octet, unknown field-value tag, etc). The frame transport adapter
// treats it as fatal: it logs the error and closes the transport, and
// the offending bytes are not kept. Only buffer.ErrShortBuffer means
// "wait for more bytes".
var ErrMalformedFrame = errors.New("wire: malformed frame")

// field-value type tags used inside a field-table, per AMQP 0-9-1 §4.2.5.5.
const (
	fvBoolean   = 't'
	fvShortShort = 'b'
	fvShort     = 'U'
	fvLong      = 'I'
	fvLongLong  = 'L'
	fvFloat     = 'f'
	fvDouble    = 'd'
	fvDecimal   = 'D'
	fvShortStr  = 's'
	fvLongStr   = 'S'
	fvFieldArray = 'A'
	fvTimestamp = 'T'
	fvFieldTable = 'F'
	fvByteArray = 'x'
	fvVoid      = 'V'
)

// WriteShortString writes an 0-9-1 short-string: a 1-byte length prefix
// followed by up to 255 bytes. It is the on-the-wire representation of
// short-string arguments (exchange/queue/consumer-tag names, etc).
func WriteShortString(w *buffer.Buffer, s string) error {
	if len(s) > 255 {
		return fmt.Errorf("wire: short string exceeds 255 bytes: %q", s)
	}
	w.WriteByte(byte(len(s)))
	w.WriteString(s)
	return nil
}

// ReadShortString reads an 0-9-1 short-string.
func ReadShortString(r *buffer.Buffer) (string, error) {
	n, err := r.ReadByte()
	if err != nil {
		return "", err
	}
	b, err := r.Next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteLongString writes an 0-9-1 long-string: a 4-byte length prefix
// followed by the payload. Used for message bodies' sibling fields
// (field-table values, Basic.Return.routing-key is short, but e.g.
// field-table string values are long-string).
func WriteLongString(w *buffer.Buffer, s string) error {
	if uint(len(s)) > math.MaxUint32 {
		return errors.New("wire: long string too large")
	}
	w.WriteUint32(uint32(len(s)))
	w.WriteString(s)
	return nil
}

// ReadLongString reads an 0-9-1 long-string.
func ReadLongString(r *buffer.Buffer) (string, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return "", err
	}
	b, err := r.Next(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// WriteLongBytes writes a 4-byte length prefix followed by raw bytes,
// used for message bodies.
func WriteLongBytes(w *buffer.Buffer, p []byte) error {
	if uint(len(p)) > math.MaxUint32 {
		return errors.New("wire: payload too large")
	}
	w.WriteUint32(uint32(len(p)))
	w.Append(p)
	return nil
}

// ReadLongBytes reads a length-prefixed byte payload, copying it out of
// the underlying buffer since body slices outlive the read cursor.
func ReadLongBytes(r *buffer.Buffer) ([]byte, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	b, err := r.Next(int(n))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// Table is an AMQP 0-9-1 field-table: a map of short-string keys (1-256
// chars per spec §4.5) to typed field values. Accepted value types
// mirror RabbitMQ's Table: bool, int8/16/32/64, float32/64, string,
// []byte, time.Time, Decimal, Table (nested), []interface{}, nil.
type Table map[string]interface{}

// WriteTable writes t as a length-prefixed sequence of (short-string,
// typed-value) pairs.
func WriteTable(w *buffer.Buffer, t Table) error {
	sizeIdx := w.Size()
	w.WriteUint32(0) // placeholder, patched below

	start := w.Size()
	for k, v := range t {
		if err := validateFieldTableKey(k); err != nil {
			return err
		}
		if err := WriteShortString(w, k); err != nil {
			return err
		}
		if err := writeFieldValue(w, v); err != nil {
			return err
		}
	}
	size := uint32(w.Size() - start)
	patchUint32(w, sizeIdx, size)
	return nil
}

func validateFieldTableKey(k string) error {
	if len(k) < 1 || len(k) > 256 {
		return fmt.Errorf("wire: field-table key length out of range [1,256]: %q", k)
	}
	return nil
}

// ReadTable reads a length-prefixed field-table.
func ReadTable(r *buffer.Buffer) (Table, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	raw, err := r.Next(int(n))
	if err != nil {
		return nil, err
	}
	sub := buffer.New(raw)
	t := make(Table)
	for sub.Len() > 0 {
		k, err := ReadShortString(sub)
		if err != nil {
			return nil, err
		}
		v, err := readFieldValue(sub)
		if err != nil {
			return nil, err
		}
		t[k] = v
	}
	return t, nil
}

func writeFieldValue(w *buffer.Buffer, v interface{}) error {
	switch t := v.(type) {
	case nil:
		w.WriteByte(fvVoid)
	case bool:
		w.WriteByte(fvBoolean)
		if t {
			w.WriteByte(1)
		} else {
			w.WriteByte(0)
		}
	case int8:
		w.WriteByte(fvShortShort)
		w.WriteByte(byte(t))
	case int16:
		w.WriteByte(fvShort)
		w.WriteUint16(uint16(t))
	case int32:
		w.WriteByte(fvLong)
		w.WriteUint32(uint32(t))
	case int:
		w.WriteByte(fvLong)
		w.WriteUint32(uint32(t))
	case int64:
		w.WriteByte(fvLongLong)
		w.WriteUint64(uint64(t))
	case float32:
		w.WriteByte(fvFloat)
		w.WriteUint32(math.Float32bits(t))
	case float64:
		w.WriteByte(fvDouble)
		w.WriteUint64(math.Float64bits(t))
	case Decimal:
		w.WriteByte(fvDecimal)
		w.WriteByte(t.Scale)
		w.WriteUint32(uint32(t.Value))
	case string:
		w.WriteByte(fvLongStr)
		return WriteLongString(w, t)
	case []byte:
		w.WriteByte(fvByteArray)
		return WriteLongBytes(w, t)
	case time.Time:
		w.WriteByte(fvTimestamp)
		w.WriteUint64(uint64(t.Unix()))
	case Table:
		w.WriteByte(fvFieldTable)
		return WriteTable(w, t)
	case map[string]interface{}:
		w.WriteByte(fvFieldTable)
		return WriteTable(w, Table(t))
	case []interface{}:
		w.WriteByte(fvFieldArray)
		return writeFieldArray(w, t)
	default:
		return fmt.Errorf("wire: unsupported field-table value type %T", v)
	}
	return nil
}

func writeFieldArray(w *buffer.Buffer, a []interface{}) error {
	sizeIdx := w.Size()
	w.WriteUint32(0)
	start := w.Size()
	for _, v := range a {
		if err := writeFieldValue(w, v); err != nil {
			return err
		}
	}
	patchUint32(w, sizeIdx, uint32(w.Size()-start))
	return nil
}

func readFieldValue(r *buffer.Buffer) (interface{}, error) {
	tag, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	switch tag {
	case fvVoid:
		return nil, nil
	case fvBoolean:
		b, err := r.ReadByte()
		return b != 0, err
	case fvShortShort:
		b, err := r.ReadByte()
		return int8(b), err
	case fvShort:
		v, err := r.ReadUint16()
		return int16(v), err
	case fvLong:
		v, err := r.ReadUint32()
		return int32(v), err
	case fvLongLong:
		v, err := r.ReadUint64()
		return int64(v), err
	case fvFloat:
		v, err := r.ReadUint32()
		return math.Float32frombits(v), err
	case fvDouble:
		v, err := r.ReadUint64()
		return math.Float64frombits(v), err
	case fvShortStr:
		return ReadShortString(r)
	case fvLongStr:
		return ReadLongString(r)
	case fvByteArray:
		return ReadLongBytes(r)
	case fvTimestamp:
		v, err := r.ReadUint64()
		return time.Unix(int64(v), 0).UTC(), err
	case fvDecimal:
		scale, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		v, err := r.ReadUint32()
		return Decimal{Scale: scale, Value: int32(v)}, err
	case fvFieldTable:
		return ReadTable(r)
	case fvFieldArray:
		return readFieldArray(r)
	default:
		return nil, fmt.Errorf("%w: unknown field-value tag %q", ErrMalformedFrame, tag)
	}
}

func readFieldArray(r *buffer.Buffer) ([]interface{}, error) {
	n, err := r.ReadUint32()
	if err != nil {
		return nil, err
	}
	raw, err := r.Next(int(n))
	if err != nil {
		return nil, err
	}
	sub := buffer.New(raw)
	var out []interface{}
	for sub.Len() > 0 {
		v, err := readFieldValue(sub)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Decimal is AMQP 0-9-1's scaled-decimal field value: value * 10^-scale.
type Decimal struct {
	Scale byte
	Value int32
}

func patchUint32(w *buffer.Buffer, at int, v uint32) {
	b := w.Bytes()
	_ = b[at+3] // bounds check hint, mirrors teacher's encode.go idiom
	b[at] = byte(v >> 24)
	b[at+1] = byte(v >> 16)
	b[at+2] = byte(v >> 8)
	b[at+3] = byte(v)
}

// Bits packs up to 8 booleans into a single octet, used by methods with
// adjacent boolean flags (e.g. Queue.Declare's durable/exclusive/auto-
// delete/no-wait run).
type Bits struct {
	v byte
}

// Set sets bit i (0-7).
func (b *Bits) Set(i uint, on bool) {
	if on {
		b.v |= 1 << i
	}
}

// Get reads bit i.
func (b Bits) Get(i uint) bool {
	return b.v&(1<<i) != 0
}

// WriteBits writes the packed octet.
func WriteBits(w *buffer.Buffer, b Bits) {
	w.WriteByte(b.v)
}

// ReadBits reads a packed octet.
func ReadBits(r *buffer.Buffer) (Bits, error) {
	v, err := r.ReadByte()
	return Bits{v}, err
}
