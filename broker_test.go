package amqp091

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/coreamqp/amqp091/internal/amqptest"
	"github.com/coreamqp/amqp091/internal/wire"
)

// testBroker is a minimal in-memory AMQP 0-9-1 server good enough to
// drive the Client end to end over the amqptest mock transport: it
// understands the handshake, exchange/queue declare+bind, basic_get,
// basic_publish (including mandatory-unroutable returns and publisher
// confirms), and transactions/consume acknowledgement methods. It does
// not implement routing-key wildcard matching or persistence -- only
// what scenarios S1-S6 (spec §8) need.
type testBroker struct {
	mu sync.Mutex

	conn *amqptest.Connection

	heartbeat  uint16 // seconds; 0 disables
	channelMax uint16
	frameMax   uint32

	queues   map[string][]storedMsg
	bindings []binding

	confirmsOn      bool
	nextConfirmTag  uint64
	nextGetTag      uint64
	softErrorKinds  map[string]uint16 // exchange kind -> reply code to close with

	// publish-in-progress accumulation, per spec §4.4's content
	// assembly: a method frame is followed by a header then N body
	// frames, all on the same channel.
	pub *inProgressPublish
}

type storedMsg struct {
	exchange   string
	routingKey string
	properties wire.Properties
	body       []byte
}

type binding struct {
	exchange   string
	routingKey string
	queue      string
}

type inProgressPublish struct {
	channel    uint16
	exchange   string
	routingKey string
	mandatory  bool
	bodySize   uint64
	properties wire.Properties
	body       []byte
}

func newTestBroker() *testBroker {
	return &testBroker{
		heartbeat:      0,
		channelMax:     2048,
		frameMax:       131072,
		queues:         make(map[string][]storedMsg),
		softErrorKinds: map[string]uint16{"no-such-type": 406},
	}
}

// dial wires b up to a fresh Client via the mock transport, performing
// the handshake exactly as a real broker connection would.
func (b *testBroker) dial(t *testing.T, cfg Config) *Client {
	t.Helper()
	conn := amqptest.NewConnection(b.handle)
	b.conn = conn

	start := wire.NewConnectionStart()
	start.VersionMajor, start.VersionMinor = 0, 9
	start.ServerProperties = wire.Table{
		"product": "testbroker",
		"capabilities": wire.Table{
			"publisher_confirms":      true,
			"basic.nack":              true,
			"consumer_cancel_notify":  true,
			"connection.blocked":      true,
			"per_consumer_qos":        true,
		},
	}
	start.Mechanisms = "PLAIN"
	start.Locales = "en_US"
	if err := b.conn.Push(0, start); err != nil {
		t.Fatalf("seed Connection.Start: %v", err)
	}

	ep := Endpoint{Host: "mock", Port: 5672, User: "guest", Password: "guest", Vhost: "/"}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := connectClient(ctx, ep, cfg, conn)
	if err != nil {
		t.Fatalf("connectClient: %v", err)
	}
	return c
}

func (b *testBroker) handle(channel uint16, body wire.FrameBody) (wire.FrameBody, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch m := body.(type) {
	case *wire.ConnectionStartOk:
		tune := wire.NewConnectionTune()
		tune.ChannelMax, tune.FrameMax, tune.Heartbeat = b.channelMax, b.frameMax, b.heartbeat
		return tune, nil

	case *wire.ConnectionTuneOk:
		return nil, nil

	case *wire.ConnectionOpen:
		return wire.NewConnectionOpenOk(), nil

	case *wire.ConnectionClose:
		return wire.NewConnectionCloseOk(), nil

	case *wire.ChannelOpen:
		return wire.NewChannelOpenOk(), nil

	case *wire.ChannelClose:
		return wire.NewChannelCloseOk(), nil

	case *wire.ExchangeDeclare:
		if code, bad := b.softErrorKinds[m.Kind]; bad {
			cc := wire.NewChannelClose()
			cc.ReplyCode, cc.ReplyText = code, "PRECONDITION_FAILED - invalid exchange type '"+m.Kind+"'"
			cc.FailingClassID, cc.FailingMethodID = wire.ClassExchange, 10
			return cc, nil
		}
		return wire.NewExchangeDeclareOk(), nil

	case *wire.QueueDeclare:
		if _, ok := b.queues[m.Queue]; !ok {
			b.queues[m.Queue] = nil
		}
		ok := wire.NewQueueDeclareOk()
		ok.Queue = m.Queue
		ok.MessageCount = uint32(len(b.queues[m.Queue]))
		return ok, nil

	case *wire.QueueBind:
		b.bindings = append(b.bindings, binding{exchange: m.Exchange, routingKey: m.RoutingKey, queue: m.Queue})
		return wire.NewQueueBindOk(), nil

	case *wire.QueuePurge:
		n := uint32(len(b.queues[m.Queue]))
		b.queues[m.Queue] = nil
		ok := wire.NewQueuePurgeOk()
		ok.MessageCount = n
		return ok, nil

	case *wire.QueueDelete:
		n := uint32(len(b.queues[m.Queue]))
		delete(b.queues, m.Queue)
		ok := wire.NewQueueDeleteOk()
		ok.MessageCount = n
		return ok, nil

	case *wire.BasicQos:
		return wire.NewBasicQosOk(), nil

	case *wire.ConfirmSelect:
		b.confirmsOn = true
		return wire.NewConfirmSelectOk(), nil

	case *wire.BasicPublish:
		b.pub = &inProgressPublish{channel: channel, exchange: m.Exchange, routingKey: m.RoutingKey, mandatory: m.Mandatory}
		return nil, nil

	case *wire.ContentHeader:
		if b.pub != nil {
			b.pub.bodySize = m.BodySize
			b.pub.properties = m.Properties
		}
		if b.pub != nil && b.pub.bodySize == 0 {
			b.finishPublish()
		}
		return nil, nil

	case *wire.ContentBody:
		if b.pub != nil {
			b.pub.body = append(b.pub.body, m.Payload...)
			if uint64(len(b.pub.body)) >= b.pub.bodySize {
				b.finishPublish()
			}
		}
		return nil, nil

	case *wire.BasicGet:
		msgs := b.queues[m.Queue]
		if len(msgs) == 0 {
			return wire.NewBasicGetEmpty(), nil
		}
		msg := msgs[0]
		b.queues[m.Queue] = msgs[1:]
		b.nextGetTag++

		ok := wire.NewBasicGetOk()
		ok.DeliveryTag = b.nextGetTag
		ok.Exchange, ok.RoutingKey = msg.exchange, msg.routingKey
		ok.MessageCount = uint32(len(b.queues[m.Queue]))
		b.pushLater(channel, ok, msg.properties, msg.body)
		return nil, nil

	case *wire.BasicConsume:
		tag := m.ConsumerTag
		if tag == "" {
			tag = "srv-ctag-1"
		}
		ok := wire.NewBasicConsumeOk()
		ok.ConsumerTag = tag
		return ok, nil

	case *wire.BasicCancel:
		ok := wire.NewBasicCancelOk()
		ok.ConsumerTag = m.ConsumerTag
		return ok, nil

	case *wire.BasicAck, *wire.BasicNack, *wire.BasicReject:
		return nil, nil

	case *wire.BasicRecover:
		return wire.NewBasicRecoverOk(), nil

	case *wire.TxSelect:
		return wire.NewTxSelectOk(), nil
	case *wire.TxCommit:
		return wire.NewTxCommitOk(), nil
	case *wire.TxRollback:
		return wire.NewTxRollbackOk(), nil
	}

	return nil, nil
}

// finishPublish routes the accumulated message and, depending on
// routing outcome and confirms mode, pushes Basic.Return or Basic.Ack
// back to the client, per spec §4.5 publisher-confirms and scenario S5.
// Must be called with b.mu held.
func (b *testBroker) finishPublish() {
	p := b.pub
	b.pub = nil

	var targets []string
	if p.exchange == "" {
		if _, ok := b.queues[p.routingKey]; ok {
			targets = append(targets, p.routingKey)
		}
	} else {
		for _, bd := range b.bindings {
			if bd.exchange == p.exchange && bd.routingKey == p.routingKey {
				targets = append(targets, bd.queue)
			}
		}
	}

	var tag uint64
	if b.confirmsOn {
		b.nextConfirmTag++
		tag = b.nextConfirmTag
	}

	if len(targets) == 0 {
		if p.mandatory {
			ret := wire.NewBasicReturn()
			ret.ReplyCode, ret.ReplyText = 312, "NO_ROUTE"
			ret.Exchange, ret.RoutingKey = p.exchange, p.routingKey
			b.pushLater(p.channel, ret, p.properties, p.body)
		}
		return
	}

	for _, q := range targets {
		b.queues[q] = append(b.queues[q], storedMsg{exchange: p.exchange, routingKey: p.routingKey, properties: p.properties, body: p.body})
	}

	if b.confirmsOn {
		ack := wire.NewBasicAck()
		ack.DeliveryTag = tag
		b.pushNow(p.channel, ack)
	}
}

// pushLater sends a multi-frame reply (method, then header, then N body
// chunks) in order. Called from inside handle with b.mu already held;
// safe because Push only sends on a buffered channel drained by a
// separate read-loop goroutine, never acquires b.mu itself.
func (b *testBroker) pushLater(channel uint16, method wire.Method, props wire.Properties, body []byte) {
	b.conn.Push(channel, method)
	b.conn.Push(channel, &wire.ContentHeader{ClassID: wire.ClassBasic, BodySize: uint64(len(body)), Properties: props})
	for _, chunk := range splitBody(body, b.frameMax) {
		b.conn.Push(channel, &wire.ContentBody{Payload: chunk})
	}
}

func (b *testBroker) pushNow(channel uint16, body wire.FrameBody) {
	b.conn.Push(channel, body)
}
