package amqp091

import (
	"context"
	"fmt"
	"time"

	"github.com/coreamqp/amqp091/internal/stateman"
	"github.com/coreamqp/amqp091/internal/wire"
	"github.com/pkg/errors"
)

// ctrlState enumerates the Control-Channel Engine's states, per spec
// §4.3's state diagram.
type ctrlState int

const (
	ctrlUninitialized ctrlState = iota
	ctrlProtocolHeaderSent
	ctrlStartReceived
	ctrlStartOkSent
	ctrlTuneReceived
	ctrlTuneOkSent
	ctrlOpenSent
	ctrlOpenOkReceived // the steady-state superstate
	ctrlCloseSent
	ctrlCloseReceived
	ctrlClosed
	ctrlException
)

var ctrlLabels = map[ctrlState]string{
	ctrlUninitialized:      "uninitialized",
	ctrlProtocolHeaderSent: "protocol-header-sent",
	ctrlStartReceived:      "start-received",
	ctrlStartOkSent:        "start-ok-sent",
	ctrlTuneReceived:       "tune-received",
	ctrlTuneOkSent:         "tune-ok-sent",
	ctrlOpenSent:           "open-sent",
	ctrlOpenOkReceived:     "open-ok-received",
	ctrlCloseSent:          "close-sent",
	ctrlCloseReceived:      "close-received",
	ctrlClosed:             "closed",
	ctrlException:          "exception",
}

var ctrlTransitions = map[ctrlState][]ctrlState{
	ctrlUninitialized:      {ctrlProtocolHeaderSent},
	ctrlProtocolHeaderSent: {ctrlStartReceived},
	ctrlStartReceived:      {ctrlStartOkSent},
	ctrlStartOkSent:        {ctrlTuneReceived},
	ctrlTuneReceived:       {ctrlTuneOkSent},
	ctrlTuneOkSent:         {ctrlOpenSent},
	ctrlOpenSent:           {ctrlOpenOkReceived},
	ctrlOpenOkReceived:     {ctrlCloseSent, ctrlCloseReceived},
	ctrlCloseSent:          {ctrlClosed},
	ctrlCloseReceived:      {ctrlClosed},
}

func newCtrlStateManager() *stateman.Manager[ctrlState] {
	return stateman.New(ctrlUninitialized, ctrlTransitions, ctrlException, ctrlLabels)
}

// performHandshake drives the channel-0 handshake described in spec
// §4.3 steps 1-4. It runs before the steady-state mux loop starts,
// since nothing else can be happening on the connection yet.
func (c *Client) performHandshake(ctx context.Context) error {
	if err := c.ctrl.Set(ctrlProtocolHeaderSent, nil); err != nil {
		return err
	}
	if err := c.t.writeHeader(); err != nil {
		return errors.Wrap(err, "amqp091: write protocol header")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-c.t.events:
			if ev.kind == eventDisconnected {
				return &Error{Kind: KindConnectionClosed, Reason: fmt.Sprintf("transport closed during handshake: %v", ev.err)}
			}
		case fr, ok := <-c.t.frames:
			if !ok {
				return &Error{Kind: KindConnectionClosed, Reason: "transport closed during handshake"}
			}
			done, err := c.handleHandshakeFrame(fr)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		}
	}
}

func (c *Client) handleHandshakeFrame(fr *wire.Frame) (done bool, err error) {
	method, ok := fr.Body.(wire.Method)
	if !ok {
		return false, nil
	}

	switch m := method.(type) {
	case *wire.ConnectionStart:
		if m.VersionMajor != 0 || m.VersionMinor != 9 {
			c.ctrl.Set(ctrlException, ErrClientNegotiation)
			return false, &Error{Kind: KindClientNegotiation, Reason: fmt.Sprintf("unsupported protocol version %d.%d", m.VersionMajor, m.VersionMinor)}
		}
		c.serverProperties = m.ServerProperties
		c.serverCapabilities = extractCapabilities(m.ServerProperties)
		c.ctrl.Set(ctrlStartReceived, nil)

		startOk := wire.NewConnectionStartOk()
		startOk.ClientProperties = clientProperties(c.cfg.Properties)
		startOk.Mechanism = "PLAIN"
		startOk.Response = "\x00" + c.ep.User + "\x00" + c.ep.Password
		startOk.Locale = c.cfg.Locale
		if err := c.t.write(0, startOk); err != nil {
			return false, err
		}
		c.ctrl.Set(ctrlStartOkSent, nil)

	case *wire.ConnectionTune:
		c.ctrl.Set(ctrlTuneReceived, nil)
		c.limits = negotiateLimits(c.cfg.ChannelMax, c.cfg.FrameMax, c.cfg.Heartbeat, m)

		tuneOk := wire.NewConnectionTuneOk()
		tuneOk.ChannelMax = c.limits.ChannelMax
		tuneOk.FrameMax = c.limits.FrameMax
		tuneOk.Heartbeat = uint16(c.limits.Heartbeat / time.Second)
		if err := c.t.write(0, tuneOk); err != nil {
			return false, err
		}
		c.ctrl.Set(ctrlTuneOkSent, nil)

		open := wire.NewConnectionOpen()
		open.VirtualHost = c.ep.Vhost
		if err := c.t.write(0, open); err != nil {
			return false, err
		}
		c.ctrl.Set(ctrlOpenSent, nil)

	case *wire.ConnectionOpenOk:
		c.ctrl.Set(ctrlOpenOkReceived, nil)
		return true, nil

	case *wire.ConnectionClose:
		return false, mapError(int(m.ReplyCode), m.ReplyText)
	}

	return false, nil
}

func extractCapabilities(props wire.Table) map[string]bool {
	caps := make(map[string]bool)
	raw, _ := props["capabilities"]
	switch t := raw.(type) {
	case wire.Table:
		for k, v := range t {
			if b, ok := v.(bool); ok && b {
				caps[k] = true
			}
		}
	case map[string]interface{}:
		for k, v := range t {
			if b, ok := v.(bool); ok && b {
				caps[k] = true
			}
		}
	}
	return caps
}

// handleControlFrame processes a steady-state (post-handshake) frame
// arriving on channel 0, per spec §4.3's "Steady-state behaviours".
func (c *Client) handleControlFrame(fr *wire.Frame) {
	c.lastRecv = time.Now()

	switch m := fr.Body.(type) {
	case wire.Heartbeat:
		if err := c.t.write(0, wire.Heartbeat{}); err == nil {
			c.lastSend = time.Now()
		}

	case *wire.ConnectionBlocked:
		c.blocked = true
		c.log.WithField("reason", m.Reason).Debug("amqp091: connection blocked")

	case *wire.ConnectionUnblocked:
		c.blocked = false
		c.log.Debug("amqp091: connection unblocked")

	case *wire.ConnectionClose:
		_ = c.t.write(0, wire.NewConnectionCloseOk())
		// ctrlOpenOkReceived only transitions directly to ctrlCloseSent
		// or ctrlCloseReceived (never straight to ctrlClosed), so route
		// through the intermediate state the table actually allows.
		c.ctrl.Set(ctrlCloseReceived, nil)
		if m.ReplyCode < 300 {
			c.ctrl.Set(ctrlClosed, nil)
			c.terminate(nil)
		} else {
			err := mapError(int(m.ReplyCode), m.ReplyText)
			c.ctrl.Set(ctrlException, err)
			c.terminate(err)
		}

	case *wire.ConnectionCloseOk:
		c.ctrl.Set(ctrlClosed, nil)
	}
}

// requestClose performs a client-initiated clean shutdown, per spec
// §4.3 ("emit Connection.Close(200, ...), wait for CloseOk, terminate").
func (c *Client) requestClose(ctx context.Context) error {
	close := wire.NewConnectionClose()
	close.ReplyCode = 200
	close.ReplyText = "Client Requested"
	c.ctrl.Set(ctrlCloseSent, nil)
	if err := c.t.write(0, close); err != nil {
		return err
	}
	_, err := c.ctrl.Wait(ctx, ctrlClosed)
	return err
}

// armHeartbeat starts the heartbeat ticker described in spec §4.3's
// "Heartbeat policing" paragraph. It returns a nil channel (which
// blocks forever in a select) if heartbeats are disabled.
func (c *Client) armHeartbeat() (<-chan time.Time, func()) {
	if c.limits.Heartbeat <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(c.limits.Heartbeat)
	return t.C, t.Stop
}

// checkHeartbeat implements the >2h missed-heartbeat rule by
// synthesising a local close with code 599, matching spec §4.3 and
// §9.1's lastRecv/lastSend asymmetry (only inbound traffic counts
// towards liveness).
func (c *Client) checkHeartbeat() {
	if c.limits.Heartbeat <= 0 {
		return
	}
	if time.Since(c.lastRecv) > 2*c.limits.Heartbeat {
		err := mapError(599, "Too many missed heartbeats")
		c.ctrl.Set(ctrlException, err)
		c.terminate(err)
		return
	}
	if err := c.t.write(0, wire.Heartbeat{}); err == nil {
		c.lastSend = time.Now()
	}
}
