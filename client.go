package amqp091

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/coreamqp/amqp091/internal/stateman"
	"github.com/coreamqp/amqp091/internal/wire"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Client is the single-connection AMQP 0-9-1 engine described across
// spec §4: it owns one Control-Channel Engine (component C), one Frame
// Transport Adapter (component B), and exactly one open data channel
// driven by the RPC & Channel Engine (component E), all coordinated by
// a single mux goroutine (the cooperative concurrency model of spec
// §5/§5.1).
type Client struct {
	ep  Endpoint
	cfg Config
	log *logrus.Entry

	t    *transport
	ctrl *stateman.Manager[ctrlState]

	limits             NegotiatedLimits
	serverProperties   wire.Table
	serverCapabilities map[string]bool
	blocked            bool
	lastRecv           time.Time
	lastSend           time.Time

	// channel engine state -- all touched exclusively from the mux
	// goroutine, per spec §4.5's "single owner, no locks on shared
	// state" design.
	channelID  uint16
	pendingRPC *rpcWait
	getWait    *rpcWait
	confirms   *confirmState
	consumers  *consumerState
	inFlight   *inFlightMessage
	txActive   bool
	reopenWait func()

	returnMu sync.RWMutex
	onReturn func(Message)

	rpcLock  chan struct{}
	commands chan *rpcCommand

	closeOnce  sync.Once
	muxDone    chan struct{}
	closeErr   error
	closeErrMu sync.Mutex
}

// Dial opens a TCP (or TLS) connection to the endpoint described by
// rawURL, performs the full handshake of spec §4.3, and starts the mux
// goroutine, returning a ready-to-use Client. Grounded on the teacher's
// top-level Dial in its conn.go: "resolve transport, construct engine,
// run handshake, hand back a live handle".
func Dial(ctx context.Context, rawURL string, cfg Config) (*Client, error) {
	ep, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	return DialEndpoint(ctx, ep, cfg)
}

// DialEndpoint is Dial without URL parsing, for callers that already
// have a resolved Endpoint (e.g. from service discovery).
func DialEndpoint(ctx context.Context, ep Endpoint, cfg Config) (*Client, error) {
	cfg = cfg.withDefaults()
	if ep.Heartbeat == 0 {
		ep.Heartbeat = cfg.Heartbeat
	}
	if ep.ChannelMax == 0 {
		ep.ChannelMax = cfg.ChannelMax
	}

	dialCtx := ctx
	var cancel context.CancelFunc
	if _, ok := ctx.Deadline(); !ok {
		dialCtx, cancel = context.WithTimeout(ctx, ep.dialTimeout())
		defer cancel()
	}

	conn, err := ep.dial()
	if err != nil {
		return nil, errors.Wrap(err, "amqp091: dial")
	}
	select {
	case <-dialCtx.Done():
		conn.Close()
		return nil, dialCtx.Err()
	default:
	}

	return connectClient(ctx, ep, cfg, conn)
}

// connectClient runs the handshake and starts the mux loop over an
// already-established conn. Split out of DialEndpoint so tests can
// drive the engine over the amqptest mock transport instead of a real
// socket, per spec §2.1's test transport double.
func connectClient(ctx context.Context, ep Endpoint, cfg Config, conn net.Conn) (*Client, error) {
	cfg = cfg.withDefaults()
	log := logrus.WithField("component", "amqp091")

	c := &Client{
		ep:       ep,
		cfg:      cfg,
		log:      log,
		t:        newTransport(conn, log),
		ctrl:     newCtrlStateManager(),
		confirms: newConfirmState(),
		consumers: newConsumerState(),
		channelID: 1,
		rpcLock:   make(chan struct{}, 1),
		commands:  make(chan *rpcCommand),
		muxDone:   make(chan struct{}),
	}

	go c.t.readLoop()

	if err := c.performHandshake(ctx); err != nil {
		c.t.close()
		return nil, err
	}

	if err := c.openDataChannel(ctx); err != nil {
		c.t.close()
		return nil, err
	}

	go c.mux()
	return c, nil
}

// openDataChannel performs the one-time Channel.Open/OpenOk exchange
// for the client's initial data channel, before the mux loop starts
// (so there is no concurrent reader of c.t.frames yet).
func (c *Client) openDataChannel(ctx context.Context) error {
	if err := c.t.write(c.channelID, wire.NewChannelOpen()); err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.t.events:
			if ev.kind == eventDisconnected {
				return &Error{Kind: KindConnectionClosed, Reason: fmt.Sprintf("transport closed opening channel: %v", ev.err)}
			}
		case fr, ok := <-c.t.frames:
			if !ok {
				return &Error{Kind: KindConnectionClosed, Reason: "transport closed opening channel"}
			}
			if _, isOpenOk := fr.Body.(*wire.ChannelOpenOk); isOpenOk {
				return nil
			}
			if cc, isClose := fr.Body.(*wire.ChannelClose); isClose {
				return mapError(int(cc.ReplyCode), cc.ReplyText)
			}
		}
	}
}

// mux is the single dispatch loop of spec §5.1: it owns all frame I/O
// and all channel/connection state, and is the only goroutine that
// ever mutates it. Every other goroutine communicates with it only
// through c.commands, c.t.frames and c.t.events.
func (c *Client) mux() {
	defer close(c.muxDone)
	defer c.t.close()

	c.lastRecv = time.Now()
	heartbeatC, stopHeartbeat := c.armHeartbeat()
	defer stopHeartbeat()

	for {
		select {
		case cmd, ok := <-c.commands:
			if !ok {
				return
			}
			if err := cmd.send(); err != nil {
				cmd.reply <- rpcOutcome{err: err}
				continue
			}
			switch {
			case cmd.external:
				// send() already arranged its own waiter (basic_get).
			case cmd.noReply:
				cmd.reply <- rpcOutcome{}
			default:
				c.pendingRPC = &rpcWait{match: cmd.match, reply: cmd.reply}
			}

		case <-heartbeatC:
			c.checkHeartbeat()
			if c.ctrl.State() == ctrlClosed || c.ctrl.State() == ctrlException {
				return
			}

		case ev := <-c.t.events:
			if ev.kind == eventDisconnected {
				c.terminate(&Error{Kind: KindConnectionClosed, Reason: fmt.Sprintf("transport closed: %v", ev.err)})
				return
			}

		case fr, ok := <-c.t.frames:
			if !ok {
				c.terminate(ErrConnectionClosed)
				return
			}
			c.lastRecv = time.Now()
			if fr.Channel == 0 {
				c.handleControlFrame(fr)
				if c.ctrl.State() == ctrlClosed || c.ctrl.State() == ctrlException {
					return
				}
			} else {
				c.handleChannelFrame(fr)
			}

			if w := c.reopenWait; w != nil {
				if _, ok := fr.Body.(*wire.ChannelOpenOk); ok {
					c.reopenWait = nil
					w()
				}
			}
		}
	}
}

// handleChannelFrame processes one frame arriving on the client's data
// channel, per spec §4.4 (content assembly) and §4.5 (method
// dispatch).
func (c *Client) handleChannelFrame(fr *wire.Frame) {
	switch body := fr.Body.(type) {
	case wire.Method:
		c.handleChannelMethod(body)
	case *wire.ContentHeader:
		if c.inFlight == nil {
			c.log.Warn("amqp091: content header with no message in flight")
			return
		}
		c.inFlight.addHeader(body)
		if c.inFlight.complete() {
			c.dispatchMessage()
		}
	case *wire.ContentBody:
		if c.inFlight == nil {
			c.log.Warn("amqp091: content body with no message in flight")
			return
		}
		if c.inFlight.addBody(body) {
			c.dispatchMessage()
		}
	}
}

func (c *Client) handleChannelMethod(m wire.Method) {
	switch t := m.(type) {
	case *wire.ChannelOpenOk:
		// handled centrally in mux() so a reopen after a soft error is
		// recognised even with no pendingRPC/getWait outstanding.
		return

	case *wire.ChannelClose:
		c.handleChannelClose(t)
		return

	case *wire.BasicDeliver, *wire.BasicGetOk, *wire.BasicReturn:
		f, err := openMessage(t)
		if err != nil {
			c.log.WithError(err).Warn("amqp091: failed to open message")
			return
		}
		c.inFlight = f
		return

	case *wire.BasicGetEmpty:
		if c.getWait != nil {
			w := c.getWait
			c.getWait = nil
			w.reply <- rpcOutcome{}
		}
		return

	case *wire.BasicConsumeOk:
		c.consumers.bindHead(t.ConsumerTag)

	case *wire.BasicCancelOk:
		c.consumers.remove(t.ConsumerTag)

	case *wire.BasicCancel:
		c.consumers.remove(t.ConsumerTag)

	case *wire.BasicAck:
		c.confirms.resolve(t.DeliveryTag, t.Multiple, OutcomeAck)

	case *wire.BasicNack:
		c.confirms.resolve(t.DeliveryTag, t.Multiple, OutcomeNack)
	}

	if c.pendingRPC != nil {
		if v, ok := c.pendingRPC.match(m); ok {
			w := c.pendingRPC
			c.pendingRPC = nil
			w.reply <- rpcOutcome{value: v}
		}
	}
}

// dispatchMessage routes a fully-assembled inFlight message to its
// sink: the matching consumer callback, the basic_get waiter, or the
// return callback plus the oldest pending confirm, per spec §4.4's
// completion rule and §4.5's return handling.
func (c *Client) dispatchMessage() {
	f := c.inFlight
	c.inFlight = nil
	msg := f.msg

	switch msg.Origin {
	case originGetOk:
		if c.getWait != nil {
			w := c.getWait
			c.getWait = nil
			mc := msg
			w.reply <- rpcOutcome{value: &mc}
		}

	case originReturn:
		c.confirms.resolveReturn()
		c.returnMu.RLock()
		cb := c.onReturn
		c.returnMu.RUnlock()
		if cb != nil {
			go cb(msg)
		}

	case originDeliver:
		if reg, ok := c.consumers.byTag[msg.ConsumerTag]; ok {
			reg.dispatch(msg)
		}
	}
}

// terminate fails every outstanding waiter and tears the connection
// down, per spec §4.3's "on hard close or transport loss, fail every
// outstanding RPC/confirm/consumer". A nil err means a clean
// server-initiated close (reply-code < 300): Client.Err() stays nil,
// per §4.3's "treat as clean remote close", but any RPC or confirm
// still in flight when the connection goes away must still raise,
// per §5's "if a remote close arrives during an outstanding RPC, that
// RPC raises" -- so waiters are always failed with a non-nil error.
func (c *Client) terminate(err error) {
	c.closeErrMu.Lock()
	if c.closeErr == nil {
		c.closeErr = err
	}
	c.closeErrMu.Unlock()

	if err != nil {
		c.ctrl.Set(ctrlException, err)
	}

	waiterErr := err
	if waiterErr == nil {
		waiterErr = ErrConnectionClosed
	}

	if c.pendingRPC != nil {
		c.pendingRPC.reply <- rpcOutcome{err: waiterErr}
		c.pendingRPC = nil
	}
	if c.getWait != nil {
		c.getWait.reply <- rpcOutcome{err: waiterErr}
		c.getWait = nil
	}
	c.confirms.failAll(waiterErr)
}

// OnReturn registers the sink for unroutable mandatory/immediate
// publishes (Basic.Return), per spec §4.5.
func (c *Client) OnReturn(fn func(Message)) {
	c.returnMu.Lock()
	defer c.returnMu.Unlock()
	c.onReturn = fn
}

// IsClosed reports whether the connection has reached a terminal
// state, per spec §3's ClientState.
func (c *Client) IsClosed() bool {
	s := c.ctrl.State()
	return s == ctrlClosed || s == ctrlException
}

// ServerProperties returns the peer-properties table received in
// Connection.Start, per spec §4.3.
func (c *Client) ServerProperties() wire.Table {
	return c.serverProperties
}

// HasServerCapability reports a named entry of the server's
// capabilities sub-table of Connection.Start, per spec §4.3 step 2.
func (c *Client) HasServerCapability(name string) bool {
	return c.serverCapabilities[name]
}

// Limits returns the negotiated channel-max/frame-max/heartbeat
// triple.
func (c *Client) Limits() NegotiatedLimits {
	return c.limits
}

// IsBlocked reports whether the broker has asserted Connection.Blocked
// (e.g. under a resource alarm), per spec §4.3.
func (c *Client) IsBlocked() bool {
	return c.blocked
}

// Close performs a clean, idempotent shutdown: it asks the server to
// close the connection and waits for the handshake to complete, per
// spec §4.3's client-initiated close path.
func (c *Client) Close(ctx context.Context) error {
	var err error
	c.closeOnce.Do(func() {
		err = c.requestClose(ctx)
		<-c.muxDone
	})
	return err
}

// Err returns the error that caused the connection to terminate, or
// nil if it is still open or was closed cleanly.
func (c *Client) Err() error {
	c.closeErrMu.Lock()
	defer c.closeErrMu.Unlock()
	return c.closeErr
}
