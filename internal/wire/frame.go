package wire

import (
	"fmt"

	"github.com/coreamqp/amqp091/internal/buffer"
)

// ProtocolHeader is the literal 8-byte AMQP 0-9-1 protocol identification
// string the control-channel engine writes first, per spec §4.3 step 1
// and §6 ("the protocol header is the literal 8 bytes").
var ProtocolHeader = [8]byte{'A', 'M', 'Q', 'P', 0, 0, 9, 1}

// Frame is the decoded representation of one frame on the wire: a type,
// a channel id, and a body. It is opaque to the rest of the core beyond
// its kind, per spec §3.
type Frame struct {
	Type    byte
	Channel uint16
	Body    FrameBody
}

// FrameBody adds type safety to the set of things a Frame can carry, the
// same role the teacher's frameBody marker interface plays in frames.go.
type FrameBody interface {
	frameBody()
}

// Method is a decoded AMQ method (class-id, method-id, fields). Methods
// are the payload of a FrameMethod frame.
type Method interface {
	FrameBody
	ClassID() uint16
	MethodID() uint16
	Marshal(w *buffer.Buffer) error
	Unmarshal(r *buffer.Buffer) error
}

// ContentHeader follows a method that carries content (Basic.Publish,
// Basic.Deliver, Basic.GetOk, Basic.Return).
type ContentHeader struct {
	ClassID    uint16
	Weight     uint16 // reserved, always 0
	BodySize   uint64
	Properties Properties
}

func (*ContentHeader) frameBody() {}

// Marshal writes the header frame body (class-id, weight, body-size,
// property-flags + property list).
func (h *ContentHeader) Marshal(w *buffer.Buffer) error {
	w.WriteUint16(h.ClassID)
	w.WriteUint16(h.Weight)
	w.WriteUint64(h.BodySize)
	return h.Properties.Marshal(w)
}

// Unmarshal reads a header frame body.
func (h *ContentHeader) Unmarshal(r *buffer.Buffer) error {
	var err error
	if h.ClassID, err = r.ReadUint16(); err != nil {
		return err
	}
	if h.Weight, err = r.ReadUint16(); err != nil {
		return err
	}
	if h.BodySize, err = r.ReadUint64(); err != nil {
		return err
	}
	return h.Properties.Unmarshal(r)
}

// ContentBody is a slice of a content payload, sized to at most the
// negotiated max frame size per spec §4.4.
type ContentBody struct {
	Payload []byte
}

func (*ContentBody) frameBody() {}

// Marshal writes the raw payload with no additional framing (the frame
// header itself carries the length).
func (b *ContentBody) Marshal(w *buffer.Buffer) error {
	w.Append(b.Payload)
	return nil
}

// Unmarshal copies the remainder of r as the body payload.
func (b *ContentBody) Unmarshal(r *buffer.Buffer) error {
	b.Payload = append([]byte(nil), r.Unread()...)
	return r.Skip(r.Len())
}

// Heartbeat carries no payload, per spec §3.
type Heartbeat struct{}

func (Heartbeat) frameBody() {}

// WriteFrame marshals body as a frame of type typ on channel (header +
// payload + 0xCE end-octet) into w.
func WriteFrame(w *buffer.Buffer, typ byte, channel uint16, body FrameBody) error {
	sizeIdx := w.Size()
	w.WriteByte(typ)
	w.WriteUint16(channel)
	w.WriteUint32(0) // size placeholder

	payloadStart := w.Size()
	switch b := body.(type) {
	case Method:
		w.WriteUint16(b.ClassID())
		w.WriteUint16(b.MethodID())
		if err := b.Marshal(w); err != nil {
			return err
		}
	case *ContentHeader:
		if err := b.Marshal(w); err != nil {
			return err
		}
	case *ContentBody:
		if err := b.Marshal(w); err != nil {
			return err
		}
	case Heartbeat:
		// no payload
	default:
		return fmt.Errorf("wire: unsupported frame body %T", body)
	}

	size := uint32(w.Size() - payloadStart)
	patchUint32(w, sizeIdx+1+2, size) // +1 type, +2 channel
	w.WriteByte(frameEnd)
	return nil
}

// ReadFrame attempts to decode exactly one complete frame from the front
// of r. It returns (nil, 0, buffer.ErrShortBuffer) if r does not yet
// contain a complete frame -- the adapter's contract (spec §4.2) is to
// treat that as "wait for more bytes", never as fatal.
func ReadFrame(r *buffer.Buffer, classify MethodClassifier) (*Frame, int, error) {
	if r.Len() < 7 {
		return nil, 0, buffer.ErrShortBuffer
	}
	start := r.Len()

	peek := buffer.New(r.Unread())
	typ, _ := peek.ReadByte()
	channel, _ := peek.ReadUint16()
	size, _ := peek.ReadUint32()

	total := 7 + int(size) + 1 // header + payload + end-octet
	if r.Len() < total {
		return nil, 0, buffer.ErrShortBuffer
	}

	// consume the real cursor now that we know the frame is complete
	if _, err := r.Next(7); err != nil {
		return nil, 0, err
	}
	payload, err := r.Next(int(size))
	if err != nil {
		return nil, 0, err
	}
	end, err := r.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	if end != frameEnd {
		return nil, 0, fmt.Errorf("%w: missing frame end-octet", ErrMalformedFrame)
	}

	pr := buffer.New(payload)
	var body FrameBody
	switch typ {
	case FrameMethod:
		classID, err := pr.ReadUint16()
		if err != nil {
			return nil, 0, err
		}
		methodID, err := pr.ReadUint16()
		if err != nil {
			return nil, 0, err
		}
		m, err := classify(classID, methodID)
		if err != nil {
			return nil, 0, err
		}
		if err := m.Unmarshal(pr); err != nil {
			return nil, 0, err
		}
		body = m
	case FrameHeader:
		h := &ContentHeader{}
		if err := h.Unmarshal(pr); err != nil {
			return nil, 0, err
		}
		body = h
	case FrameContentBody:
		b := &ContentBody{}
		if err := b.Unmarshal(pr); err != nil {
			return nil, 0, err
		}
		body = b
	case FrameHeartbeat:
		body = Heartbeat{}
	default:
		return nil, 0, fmt.Errorf("%w: unknown frame type %d", ErrMalformedFrame, typ)
	}

	return &Frame{Type: typ, Channel: channel, Body: body}, start - r.Len(), nil
}

// MethodClassifier maps a (class-id, method-id) pair to a zero-valued
// Method ready for Unmarshal. Supplied by the registry in methods.go so
// that frame.go stays codec-table agnostic.
type MethodClassifier func(classID, methodID uint16) (Method, error)
