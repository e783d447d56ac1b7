// Package amqptest provides a fake net.Conn driven by a responder
// callback, grounded on the teacher's internal/mocks.MockConnection:
// Read/Write/Close run on separate goroutines exactly as a real
// transport adapter would drive them, so tests exercise the real mux
// loop instead of a hand-wired fake engine.
package amqptest

import (
	"errors"
	"net"
	"time"

	"github.com/coreamqp/amqp091/internal/buffer"
	"github.com/coreamqp/amqp091/internal/wire"
)

// Responder is invoked once per decoded frame received by Write. It may
// return a body to send back on the same channel, nil to swallow the
// frame, or an error to simulate a write failure.
type Responder func(channel uint16, body wire.FrameBody) (wire.FrameBody, error)

// NewConnection builds a MockConnection driven by resp.
func NewConnection(resp Responder) *Connection {
	return &Connection{
		resp: resp,
		// buffered so shutdown ordering between the reader and writer
		// goroutines (both select on done) never blocks a late write.
		readData:  make(chan []byte, 16),
		readClose: make(chan struct{}),
	}
}

// Connection is a mock net.Conn that speaks the AMQP 0-9-1 framing
// layer well enough to drive Client/Connection tests end-to-end.
type Connection struct {
	resp      Responder
	readDL    *time.Timer
	readData  chan []byte
	readClose chan struct{}
	closed    bool

	// protoSeen is set once the 8-byte protocol header has been
	// consumed from the write side; until then, Write treats its input
	// as the header rather than a frame.
	protoSeen bool
}

// Read is invoked by the transport adapter's read loop. It blocks until
// Write/Close are called or the read deadline fires.
func (c *Connection) Read(b []byte) (int, error) {
	select {
	case <-c.readClose:
		return 0, errors.New("amqptest: mock connection closed")
	default:
	}

	var dl <-chan time.Time
	if c.readDL != nil {
		dl = c.readDL.C
	}
	select {
	case <-c.readClose:
		return 0, errors.New("amqptest: mock connection closed")
	case <-dl:
		return 0, errors.New("amqptest: read deadline exceeded")
	case rd := <-c.readData:
		return copy(b, rd), nil
	}
}

// Write decodes every complete frame (or the protocol header) out of b
// and calls the responder for each. Responses are queued for Read.
func (c *Connection) Write(b []byte) (int, error) {
	select {
	case <-c.readClose:
		return 0, errors.New("amqptest: mock connection closed")
	default:
	}

	if !c.protoSeen && len(b) >= 8 {
		c.protoSeen = true
		b = b[8:]
	}

	buf := buffer.New(b)
	for buf.Len() > 0 {
		fr, _, err := wire.ReadFrame(buf, wire.Classify)
		if err == buffer.ErrShortBuffer {
			break
		}
		if err != nil {
			return 0, err
		}
		reply, err := c.resp(fr.Channel, fr.Body)
		if err != nil {
			return 0, err
		}
		if reply == nil {
			continue
		}
		out := buffer.New(nil)
		typ := frameTypeOf(reply)
		if err := wire.WriteFrame(out, typ, fr.Channel, reply); err != nil {
			return 0, err
		}
		c.readData <- out.Bytes()
	}
	return len(b), nil
}

func frameTypeOf(body wire.FrameBody) byte {
	switch body.(type) {
	case wire.Method:
		return wire.FrameMethod
	case *wire.ContentHeader:
		return wire.FrameHeader
	case *wire.ContentBody:
		return wire.FrameContentBody
	default:
		return wire.FrameHeartbeat
	}
}

// Push injects a frame directly onto the read side, bypassing the
// responder. Tests use this to send the server's first frame
// (Connection.Start) before the client has written anything that would
// trigger the responder -- the real broker behaves the same way,
// speaking first on a freshly accepted socket.
func (c *Connection) Push(channel uint16, body wire.FrameBody) error {
	out := buffer.New(nil)
	if err := wire.WriteFrame(out, frameTypeOf(body), channel, body); err != nil {
		return err
	}
	c.readData <- out.Bytes()
	return nil
}

// Close shuts the mock connection down; a second call errors, mirroring
// the real net.Conn contract.
func (c *Connection) Close() error {
	if c.closed {
		return errors.New("amqptest: double close")
	}
	c.closed = true
	close(c.readClose)
	return nil
}

func (c *Connection) LocalAddr() net.Addr  { return &net.IPAddr{IP: net.IPv4(127, 0, 0, 1)} }
func (c *Connection) RemoteAddr() net.Addr { return &net.IPAddr{IP: net.IPv4(127, 0, 0, 2)} }

func (c *Connection) SetDeadline(t time.Time) error { return c.SetReadDeadline(t) }

func (c *Connection) SetReadDeadline(t time.Time) error {
	if c.readDL != nil && !c.readDL.Stop() {
		select {
		case <-c.readDL.C:
		default:
		}
	}
	if t.IsZero() {
		c.readDL = nil
		return nil
	}
	c.readDL = time.NewTimer(time.Until(t))
	return nil
}

func (c *Connection) SetWriteDeadline(time.Time) error { return nil }

// ProtocolHeader returns the literal 8-byte AMQP 0-9-1 handshake header,
// for tests that need to enqueue it as the first Read payload.
func ProtocolHeader() []byte {
	return wire.ProtocolHeader[:]
}

// Frame encodes a single frame for injection via the responder's return
// value or for pre-seeding readData in a test.
func Frame(channel uint16, body wire.FrameBody) ([]byte, error) {
	out := buffer.New(nil)
	if err := wire.WriteFrame(out, frameTypeOf(body), channel, body); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
