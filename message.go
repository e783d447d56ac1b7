package amqp091

import (
	"fmt"

	"github.com/coreamqp/amqp091/internal/wire"
)

// messageOrigin distinguishes which method opened a Message, per spec
// §3 ("tuple of originating method (Deliver | GetOk | Return)").
type messageOrigin int

const (
	originDeliver messageOrigin = iota
	originGetOk
	originReturn
)

// Message is a fully assembled content-bearing delivery, dispatched to
// exactly one sink once complete, per spec §3 and §4.4.
type Message struct {
	Origin       messageOrigin
	ConsumerTag  string
	DeliveryTag  uint64
	Redelivered  bool
	Exchange     string
	RoutingKey   string
	ReplyCode    uint16
	ReplyText    string
	MessageCount uint32
	Properties   wire.Properties
	Body         []byte
}

// inFlightMessage accumulates one Message across a Deliver/GetOk/Return
// + ContentHeader + N*ContentBody frame group, per spec §4.4. At most
// one is ever in flight per channel, since the spec mandates strict
// ordering and a single open channel.
type inFlightMessage struct {
	msg      Message
	bodySize uint64
	haveHead bool
}

// openMessage starts assembly from the opening method frame. method
// must be one of *wire.BasicDeliver, *wire.BasicGetOk, *wire.BasicReturn
// -- any other frame on a channel with no message in flight is a
// protocol violation the caller must treat as fatal, per spec §4.4.
func openMessage(method wire.Method) (*inFlightMessage, error) {
	f := &inFlightMessage{}
	switch m := method.(type) {
	case *wire.BasicDeliver:
		f.msg = Message{
			Origin:      originDeliver,
			ConsumerTag: m.ConsumerTag,
			DeliveryTag: m.DeliveryTag,
			Redelivered: m.Redelivered,
			Exchange:    m.Exchange,
			RoutingKey:  m.RoutingKey,
		}
	case *wire.BasicGetOk:
		f.msg = Message{
			Origin:       originGetOk,
			DeliveryTag:  m.DeliveryTag,
			Redelivered:  m.Redelivered,
			Exchange:     m.Exchange,
			RoutingKey:   m.RoutingKey,
			MessageCount: m.MessageCount,
		}
	case *wire.BasicReturn:
		f.msg = Message{
			Origin:     originReturn,
			ReplyCode:  m.ReplyCode,
			ReplyText:  m.ReplyText,
			Exchange:   m.Exchange,
			RoutingKey: m.RoutingKey,
		}
	default:
		return nil, fmt.Errorf("amqp091: %T does not open a message", method)
	}
	return f, nil
}

// addHeader records the content header. Nothing checks that the frame
// following the opening method is a ContentHeader: handleChannelFrame
// processes a method frame arriving mid-message as usual, and a new
// opening method replaces the message in flight.
func (f *inFlightMessage) addHeader(h *wire.ContentHeader) {
	f.msg.Properties = h.Properties
	f.bodySize = h.BodySize
	f.haveHead = true
	if f.bodySize == 0 {
		f.msg.Body = []byte{}
	}
}

// addBody appends a ContentBody chunk and reports whether the message
// is now complete (sum of chunk lengths equals the declared body size).
func (f *inFlightMessage) addBody(b *wire.ContentBody) bool {
	f.msg.Body = append(f.msg.Body, b.Payload...)
	return uint64(len(f.msg.Body)) >= f.bodySize
}

// complete reports whether the declared body size has been reached
// without requiring a further addBody call (used for the zero-length
// body case, where addHeader alone completes the message).
func (f *inFlightMessage) complete() bool {
	return f.haveHead && uint64(len(f.msg.Body)) >= f.bodySize
}

// splitBody slices body into chunks no larger than maxFrame, per spec
// §4.4 ("ceil(len(body)/max_frame_size) ContentBody frames"). A
// zero-length body still yields exactly one (empty) chunk so the header
// frame is always followed by at least the declared zero bytes.
func splitBody(body []byte, maxFrame uint32) [][]byte {
	if maxFrame == 0 {
		maxFrame = defaultFrameMax
	}
	if len(body) == 0 {
		return [][]byte{{}}
	}
	var chunks [][]byte
	for off := 0; off < len(body); off += int(maxFrame) {
		end := off + int(maxFrame)
		if end > len(body) {
			end = len(body)
		}
		chunks = append(chunks, body[off:end])
	}
	return chunks
}
