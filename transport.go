package amqp091

import (
	"net"
	"sync"

	"github.com/coreamqp/amqp091/internal/buffer"
	"github.com/coreamqp/amqp091/internal/wire"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// transportEventKind tags the two lifecycle events the adapter emits,
// per spec §4.2.
type transportEventKind int

const (
	eventConnected transportEventKind = iota
	eventDisconnected
)

type transportEvent struct {
	kind transportEventKind
	err  error
}

// readBufSize is how much the adapter reads from the socket per
// net.Conn.Read call; frames larger than this simply accumulate across
// several reads before ReadFrame succeeds.
const readBufSize = 32 * 1024

// transport is the Frame Transport Adapter (component B): it turns the
// byte-stream on conn into a sequence of decoded frames delivered in
// strict receipt order to a single consumer, and marshals outbound
// frames back onto the wire. Grounded on the teacher's conn
// read/write-loop split, where a dedicated reader goroutine never
// mutates shared state -- it only decodes and hands frames upstream,
// matching the mocks file's own contract comment ("Read, Write, and
// Close are all called by separate goroutines").
type transport struct {
	conn net.Conn
	log  *logrus.Entry

	frames chan *wire.Frame
	events chan transportEvent

	writeMu sync.Mutex

	closeOnce sync.Once
	closed    chan struct{}
}

func newTransport(conn net.Conn, log *logrus.Entry) *transport {
	return &transport{
		conn:   conn,
		log:    log,
		frames: make(chan *wire.Frame, 64),
		events: make(chan transportEvent, 2),
		closed: make(chan struct{}),
	}
}

// readLoop decodes frames off conn until it closes or a malformed frame
// is seen. It never mutates engine state directly -- it only publishes
// to t.frames/t.events, which the owning mux goroutine drains.
func (t *transport) readLoop() {
	defer close(t.frames)

	buf := buffer.New(nil)
	chunk := make([]byte, readBufSize)

	t.events <- transportEvent{kind: eventConnected}

	for {
		n, err := t.conn.Read(chunk)
		if n > 0 {
			buf.Append(chunk[:n])
		}
		if err != nil {
			t.events <- transportEvent{kind: eventDisconnected, err: err}
			return
		}

		for {
			fr, consumed, ferr := wire.ReadFrame(buf, wire.Classify)
			if ferr == buffer.ErrShortBuffer {
				// not a complete frame yet; keep the bytes and read more.
				break
			}
			if ferr != nil {
				t.log.WithError(ferr).Warn("amqp091: malformed frame, closing transport")
				t.events <- transportEvent{kind: eventDisconnected, err: ferr}
				return
			}
			_ = consumed
			select {
			case t.frames <- fr:
			case <-t.closed:
				return
			}
		}
	}
}

// write marshals and sends one frame. It is best-effort and
// non-blocking from the caller's perspective in the sense that it never
// waits on another RPC to drain -- the underlying net.Conn.Write may
// still block on socket back-pressure. Honoring transport-level
// pause/resume hooks is noted as unimplemented, per spec §9 "Back-
// pressure".
func (t *transport) write(channel uint16, body wire.FrameBody) error {
	typ := frameTypeOf(body)

	out := buffer.New(nil)
	if err := wire.WriteFrame(out, typ, channel, body); err != nil {
		return errors.Wrap(err, "amqp091: encode frame")
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err := t.conn.Write(out.Bytes())
	return err
}

// writeHeader sends the literal 8-byte protocol identification header,
// per spec §4.3 step 1.
func (t *transport) writeHeader() error {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	_, err := t.conn.Write(wire.ProtocolHeader[:])
	return err
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

// close shuts the underlying connection down exactly once.
func (t *transport) close() error {
	var err error
	t.closeOnce.Do(func() {
		close(t.closed)
		err = t.conn.Close()
	})
	return err
}
