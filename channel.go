package amqp091

import (
	"context"
	"fmt"
	"regexp"

	"github.com/coreamqp/amqp091/internal/wire"
)

// rpcCommand is submitted to the mux goroutine by a caller holding the
// RPC lock. send marshals and writes the request frame(s) from inside
// the mux goroutine (so channel-id and confirm/consumer bookkeeping are
// only ever touched by one goroutine); match recognises the expected
// reply method on a later, independently-arriving frame.
type rpcCommand struct {
	send  func() error
	match func(wire.Method) (interface{}, bool)
	reply chan rpcOutcome
	// external marks a command whose send closure arranges its own
	// waiter (basic_get's getWait) rather than the generic pendingRPC
	// slot; the mux loop takes no further action after send succeeds.
	external bool
	// noReply marks a fire-and-forget method (basic_ack/nack/reject):
	// the mux loop answers as soon as send succeeds, since the protocol
	// defines no Ok reply to wait for.
	noReply bool
}

type rpcOutcome struct {
	value interface{}
	err   error
}

// rpcWait is what the mux goroutine keeps around between "frame sent"
// and "matching reply observed".
type rpcWait struct {
	match func(wire.Method) (interface{}, bool)
	reply chan rpcOutcome
}

// doRPC implements the RPC pattern of spec §4.5: acquire the lock,
// check liveness, submit the request to the mux goroutine, and await
// either the matching reply or a channel-close-triggered failure.
func (c *Client) doRPC(ctx context.Context, send func() error, match func(wire.Method) (interface{}, bool)) (interface{}, error) {
	select {
	case c.rpcLock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.rpcLock }()

	if c.ctrl.State() == ctrlClosed || c.ctrl.State() == ctrlException {
		return nil, ErrConnectionClosed
	}

	reply := make(chan rpcOutcome, 1)
	cmd := &rpcCommand{send: send, match: match, reply: reply}

	select {
	case c.commands <- cmd:
	case <-c.muxDone:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-reply:
		return res.value, res.err
	case <-c.muxDone:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fireAndForget submits a command with no expected reply (basic_ack,
// basic_nack, basic_reject), per spec §4.5's "fire-and-forget ... no Ok
// reply".
func (c *Client) fireAndForget(ctx context.Context, send func() error) error {
	select {
	case c.rpcLock <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.rpcLock }()

	if c.ctrl.State() == ctrlClosed || c.ctrl.State() == ctrlException {
		return ErrConnectionClosed
	}

	reply := make(chan rpcOutcome, 1)
	cmd := &rpcCommand{send: send, reply: reply, noReply: true}

	select {
	case c.commands <- cmd:
	case <-c.muxDone:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case res := <-reply:
		return res.err
	case <-c.muxDone:
		return ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// argument validation, per spec §4.5 "Argument validation".

var exchangeNameRE = regexp.MustCompile(`^[A-Za-z0-9_:.\-]{1,256}$`)

func validateExchangeName(name string) error {
	if name == "" {
		return nil
	}
	if !exchangeNameRE.MatchString(name) {
		return &Error{Kind: KindValueError, Reason: fmt.Sprintf("invalid exchange name %q", name)}
	}
	return nil
}

func validateShortString(field, s string) error {
	if len(s) > 255 {
		return &Error{Kind: KindValueError, Reason: fmt.Sprintf("%s exceeds 255 characters", field)}
	}
	return nil
}

func validateFieldTable(t wire.Table) error {
	for k := range t {
		if len(k) < 1 || len(k) > 256 {
			return &Error{Kind: KindValueError, Reason: fmt.Sprintf("field-table key length out of range: %q", k)}
		}
	}
	return nil
}

func validateDeliveryMode(mode uint8) error {
	if mode != 0 && mode != 1 && mode != 2 {
		return &Error{Kind: KindValueError, Reason: "delivery mode must be 1 or 2"}
	}
	return nil
}

// matchOk builds a match function that recognises a specific reply
// type, paired with the universal ChannelClose branch handled centrally
// by the mux loop.
func matchOk[T wire.Method](extract func(T) interface{}) func(wire.Method) (interface{}, bool) {
	return func(m wire.Method) (interface{}, bool) {
		if t, ok := m.(T); ok {
			return extract(t), true
		}
		return nil, false
	}
}

// ---- exchange operations -------------------------------------------------

// ExchangeDeclareOptions configures ExchangeDeclare.
type ExchangeDeclareOptions struct {
	Passive    bool
	Durable    bool
	AutoDelete bool
	Internal   bool
	Arguments  wire.Table
}

// ExchangeDeclare declares (or asserts) an exchange, per spec §4.5.
func (c *Client) ExchangeDeclare(ctx context.Context, name, kind string, opts ExchangeDeclareOptions) error {
	if err := validateExchangeName(name); err != nil {
		return err
	}
	if err := validateShortString("exchange kind", kind); err != nil {
		return err
	}
	if err := validateFieldTable(opts.Arguments); err != nil {
		return err
	}
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewExchangeDeclare()
		m.Exchange, m.Kind = name, kind
		m.Passive, m.Durable, m.AutoDelete, m.Internal = opts.Passive, opts.Durable, opts.AutoDelete, opts.Internal
		m.Arguments = opts.Arguments
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.ExchangeDeclareOk) interface{} { return nil }))
	return err
}

// ExchangeDelete deletes an exchange.
func (c *Client) ExchangeDelete(ctx context.Context, name string, ifUnused bool) error {
	if err := validateExchangeName(name); err != nil {
		return err
	}
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewExchangeDelete()
		m.Exchange, m.IfUnused = name, ifUnused
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.ExchangeDeleteOk) interface{} { return nil }))
	return err
}

// ExchangeBind binds one exchange to another.
func (c *Client) ExchangeBind(ctx context.Context, destination, source, routingKey string, args wire.Table) error {
	if err := validateExchangeName(destination); err != nil {
		return err
	}
	if err := validateExchangeName(source); err != nil {
		return err
	}
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewExchangeBind()
		m.Destination, m.Source, m.RoutingKey, m.Arguments = destination, source, routingKey, args
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.ExchangeBindOk) interface{} { return nil }))
	return err
}

// ExchangeUnbind reverses ExchangeBind.
func (c *Client) ExchangeUnbind(ctx context.Context, destination, source, routingKey string, args wire.Table) error {
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewExchangeUnbind()
		m.Destination, m.Source, m.RoutingKey, m.Arguments = destination, source, routingKey, args
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.ExchangeUnbindOk) interface{} { return nil }))
	return err
}

// ---- queue operations -----------------------------------------------------

// QueueDeclareOptions configures QueueDeclare.
type QueueDeclareOptions struct {
	Passive    bool
	Durable    bool
	Exclusive  bool
	AutoDelete bool
	Arguments  wire.Table
}

// QueueDeclareResult carries declare-ok's returned counters, per spec
// §4.5 ("declare-ok returns (message_count, consumer_count)").
type QueueDeclareResult struct {
	Queue         string
	MessageCount  uint32
	ConsumerCount uint32
}

// QueueDeclare declares (or asserts) a queue.
func (c *Client) QueueDeclare(ctx context.Context, name string, opts QueueDeclareOptions) (QueueDeclareResult, error) {
	if err := validateFieldTable(opts.Arguments); err != nil {
		return QueueDeclareResult{}, err
	}
	v, err := c.doRPC(ctx, func() error {
		m := wire.NewQueueDeclare()
		m.Queue = name
		m.Passive, m.Durable, m.Exclusive, m.AutoDelete = opts.Passive, opts.Durable, opts.Exclusive, opts.AutoDelete
		m.Arguments = opts.Arguments
		return c.t.write(c.channelID, m)
	}, matchOk(func(ok *wire.QueueDeclareOk) interface{} {
		return QueueDeclareResult{Queue: ok.Queue, MessageCount: ok.MessageCount, ConsumerCount: ok.ConsumerCount}
	}))
	if err != nil {
		return QueueDeclareResult{}, err
	}
	return v.(QueueDeclareResult), nil
}

// QueueBind binds a queue to an exchange under a routing key.
func (c *Client) QueueBind(ctx context.Context, queue, exchange, routingKey string, args wire.Table) error {
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewQueueBind()
		m.Queue, m.Exchange, m.RoutingKey, m.Arguments = queue, exchange, routingKey, args
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.QueueBindOk) interface{} { return nil }))
	return err
}

// QueueUnbind reverses QueueBind.
func (c *Client) QueueUnbind(ctx context.Context, queue, exchange, routingKey string, args wire.Table) error {
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewQueueUnbind()
		m.Queue, m.Exchange, m.RoutingKey, m.Arguments = queue, exchange, routingKey, args
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.QueueUnbindOk) interface{} { return nil }))
	return err
}

// QueuePurge discards all ready messages in queue, returning the count
// purged.
func (c *Client) QueuePurge(ctx context.Context, queue string) (uint32, error) {
	v, err := c.doRPC(ctx, func() error {
		m := wire.NewQueuePurge()
		m.Queue = queue
		return c.t.write(c.channelID, m)
	}, matchOk(func(ok *wire.QueuePurgeOk) interface{} { return ok.MessageCount }))
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

// QueueDelete deletes a queue, returning the number of messages it held.
func (c *Client) QueueDelete(ctx context.Context, queue string, ifUnused, ifEmpty bool) (uint32, error) {
	v, err := c.doRPC(ctx, func() error {
		m := wire.NewQueueDelete()
		m.Queue, m.IfUnused, m.IfEmpty = queue, ifUnused, ifEmpty
		return c.t.write(c.channelID, m)
	}, matchOk(func(ok *wire.QueueDeleteOk) interface{} { return ok.MessageCount }))
	if err != nil {
		return 0, err
	}
	return v.(uint32), nil
}

// ---- qos / confirms --------------------------------------------------------

// Qos sets the channel's prefetch limits. Only count and per-consumer
// semantics are implemented, matching RabbitMQ's own extension, per
// spec §4.5 ("count and per_consumer only (RabbitMQ semantics)").
func (c *Client) Qos(ctx context.Context, prefetchCount uint16, global bool) error {
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewBasicQos()
		m.PrefetchCount, m.Global = prefetchCount, global
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.BasicQosOk) interface{} { return nil }))
	return err
}

// ConfirmSelect switches the channel into publisher-confirms mode, per
// spec §4.5.
func (c *Client) ConfirmSelect(ctx context.Context) error {
	_, err := c.doRPC(ctx, func() error {
		if c.confirms.enabled {
			return &Error{Kind: KindInvalidRequest, Reason: "confirms already enabled"}
		}
		return c.t.write(c.channelID, wire.NewConfirmSelect())
	}, matchOk(func(*wire.ConfirmSelectOk) interface{} {
		c.confirms.enabled = true
		return nil
	}))
	return err
}

// ---- publish ---------------------------------------------------------------

// PublishOptions configures BasicPublish.
type PublishOptions struct {
	Mandatory  bool
	Immediate  bool
	Properties wire.Properties
}

// Publish emits a message on exchange/routingKey, per spec §4.4's
// outbound sequence (method, header, N body chunks) under the RPC
// lock's strict per-channel ordering. If publisher confirms are
// enabled it awaits resolution and returns true for Ack, false for
// Nack or Returned.
func (c *Client) Publish(ctx context.Context, exchange, routingKey string, body []byte, opts PublishOptions) (bool, error) {
	if err := validateExchangeName(exchange); err != nil {
		return false, err
	}
	if err := validateDeliveryMode(opts.Properties.DeliveryMode); err != nil {
		return false, err
	}

	var pp *PendingPublish
	err := c.fireAndForget(ctx, func() error {
		method := wire.NewBasicPublish()
		method.Exchange, method.RoutingKey = exchange, routingKey
		method.Mandatory, method.Immediate = opts.Mandatory, opts.Immediate
		if err := c.t.write(c.channelID, method); err != nil {
			return err
		}

		header := &wire.ContentHeader{ClassID: wire.ClassBasic, BodySize: uint64(len(body)), Properties: opts.Properties}
		if err := c.t.write(c.channelID, header); err != nil {
			return err
		}
		for _, chunk := range splitBody(body, c.limits.FrameMax) {
			if err := c.t.write(c.channelID, &wire.ContentBody{Payload: chunk}); err != nil {
				return err
			}
		}

		if c.confirms.enabled {
			pp = c.confirms.nextDeliveryTag()
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	if pp == nil {
		return true, nil
	}
	select {
	case res := <-pp.reply:
		if res.err != nil {
			return false, res.err
		}
		return res.outcome == OutcomeAck, nil
	case <-ctx.Done():
		return false, ctx.Err()
	case <-c.muxDone:
		return false, ErrConnectionClosed
	}
}

// ---- consume / get / ack -----------------------------------------------

// ConsumeOptions configures Consume and BasicConsume.
type ConsumeOptions struct {
	ConsumerTag string
	NoLocal     bool
	NoAck       bool
	Exclusive   bool
	Arguments   wire.Table
}

// BasicConsume registers a sink callback for deliveries on queue, per
// spec §4.5.
func (c *Client) BasicConsume(ctx context.Context, queue string, opts ConsumeOptions, kind ConsumerKind, sync ConsumerFunc, async AsyncConsumerFunc) (string, error) {
	tag := opts.ConsumerTag
	if tag == "" {
		tag = defaultConsumerTag()
	}

	pc := &pendingConsumer{requestedTag: tag, kind: kind, sync: sync, async: async}

	v, err := c.doRPC(ctx, func() error {
		c.consumers.enqueue(pc)
		m := wire.NewBasicConsume()
		m.Queue, m.ConsumerTag = queue, tag
		m.NoLocal, m.NoAck, m.Exclusive = opts.NoLocal, opts.NoAck, opts.Exclusive
		m.Arguments = opts.Arguments
		return c.t.write(c.channelID, m)
	}, matchOk(func(ok *wire.BasicConsumeOk) interface{} { return ok.ConsumerTag }))
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Consume is the generator-style surface of spec §4.5: it adapts a
// callback consumer into a bounded channel of deliveries.
func (c *Client) Consume(queue string, opts ConsumeOptions) (*Generator, error) {
	gen := &Generator{c: c, messages: make(chan Message, 64)}
	sync := func(msg Message) {
		select {
		case gen.messages <- msg:
		case <-c.muxDone:
		}
	}
	tag, err := c.BasicConsume(context.Background(), queue, opts, ConsumerSync, sync, nil)
	if err != nil {
		close(gen.messages)
		return nil, err
	}
	gen.tag = tag
	gen.closeOnce = func() error {
		err := c.BasicCancel(context.Background(), tag)
		close(gen.messages)
		return err
	}
	return gen, nil
}

// BasicCancel cancels a consumer registration.
func (c *Client) BasicCancel(ctx context.Context, tag string) error {
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewBasicCancel()
		m.ConsumerTag = tag
		return c.t.write(c.channelID, m)
	}, matchOk(func(ok *wire.BasicCancelOk) interface{} {
		c.consumers.remove(ok.ConsumerTag)
		return nil
	}))
	return err
}

// Get performs a one-shot poll of queue (basic_get). It returns (nil,
// nil) on an empty queue, per §9.1's supplemented "basic_get empty-
// queue signaling" behaviour, rather than an error.
func (c *Client) Get(ctx context.Context, queue string, noAck bool) (*Message, error) {
	select {
	case c.rpcLock <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-c.rpcLock }()

	if c.ctrl.State() == ctrlClosed || c.ctrl.State() == ctrlException {
		return nil, ErrConnectionClosed
	}

	reply := make(chan rpcOutcome, 1)
	cmd := &rpcCommand{
		external: true,
		send: func() error {
			m := wire.NewBasicGet()
			m.Queue, m.NoAck = queue, noAck
			c.getWait = &rpcWait{reply: reply}
			return c.t.write(c.channelID, m)
		},
	}
	select {
	case c.commands <- cmd:
	case <-c.muxDone:
		return nil, ErrConnectionClosed
	}

	select {
	case res := <-reply:
		if res.err != nil {
			return nil, res.err
		}
		if res.value == nil {
			return nil, nil
		}
		msg := res.value.(*Message)
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.muxDone:
		return nil, ErrConnectionClosed
	}
}

// Ack acknowledges one or more deliveries. It is fire-and-forget: the
// protocol defines no reply, per spec §4.5.
func (c *Client) Ack(ctx context.Context, deliveryTag uint64, multiple bool) error {
	return c.fireAndForget(ctx, func() error {
		m := wire.NewBasicAck()
		m.DeliveryTag, m.Multiple = deliveryTag, multiple
		return c.t.write(c.channelID, m)
	})
}

// Nack negatively-acknowledges one or more deliveries (RabbitMQ
// extension), optionally requeuing.
func (c *Client) Nack(ctx context.Context, deliveryTag uint64, multiple, requeue bool) error {
	return c.fireAndForget(ctx, func() error {
		m := wire.NewBasicNack()
		m.DeliveryTag, m.Multiple, m.Requeue = deliveryTag, multiple, requeue
		return c.t.write(c.channelID, m)
	})
}

// Reject negatively-acknowledges a single delivery.
func (c *Client) Reject(ctx context.Context, deliveryTag uint64, requeue bool) error {
	return c.fireAndForget(ctx, func() error {
		m := wire.NewBasicReject()
		m.DeliveryTag, m.Requeue = deliveryTag, requeue
		return c.t.write(c.channelID, m)
	})
}

// Recover requests redelivery of unacknowledged messages. requeue=false
// is not implemented server-side by RabbitMQ and is reported as such,
// per spec §4.5.
func (c *Client) Recover(ctx context.Context, requeue bool) error {
	if !requeue {
		return &Error{Kind: KindNotImplemented, Reason: "basic.recover with requeue=false is not implemented by the server"}
	}
	_, err := c.doRPC(ctx, func() error {
		m := wire.NewBasicRecover()
		m.Requeue = requeue
		return c.t.write(c.channelID, m)
	}, matchOk(func(*wire.BasicRecoverOk) interface{} { return nil }))
	return err
}

// ---- channel recovery -------------------------------------------------------

// nextChannelID rotates the channel id 1..max, wrapping to 1, per spec
// §3's ClientState and §4.5's channel recovery.
func nextChannelID(cur uint16, max uint16) uint16 {
	next := cur + 1
	if next == 0 || (max > 0 && next > max) {
		next = 1
	}
	return next
}

// handleChannelClose implements spec §4.5's "Channel recovery": the
// server has closed the channel for a soft error. The engine
// acknowledges, discards in-flight bookkeeping, opens a replacement
// channel, and only then raises the mapped error to whichever RPC (or
// basic_get) was outstanding.
func (c *Client) handleChannelClose(cc *wire.ChannelClose) {
	_ = c.t.write(c.channelID, wire.NewChannelCloseOk())
	mapped := mapError(int(cc.ReplyCode), cc.ReplyText)

	var waiters []*rpcWait
	if c.pendingRPC != nil {
		waiters = append(waiters, c.pendingRPC)
		c.pendingRPC = nil
	}
	if c.getWait != nil {
		waiters = append(waiters, c.getWait)
		c.getWait = nil
	}

	c.confirms.failAll(mapped)
	c.consumers.reset()
	c.inFlight = nil
	// transactional state does not survive a channel reopen: the server
	// has already discarded it along with the channel, per spec §4.5.
	c.txActive = false

	wasConfirming := c.confirms.enabled
	c.confirms.reset()

	c.channelID = nextChannelID(c.channelID, c.limits.ChannelMax)

	c.reopenWait = func() {
		if wasConfirming {
			_ = c.t.write(c.channelID, wire.NewConfirmSelect())
			c.confirms.enabled = true
		}
		for _, w := range waiters {
			w.reply <- rpcOutcome{err: mapped}
		}
	}
	_ = c.t.write(c.channelID, wire.NewChannelOpen())
}
