package amqp091

import (
	"time"

	"github.com/coreamqp/amqp091/internal/wire"
	uuid "github.com/satori/go.uuid"
)

const (
	// defaultChannelMax is the client-side ceiling offered during
	// negotiation, per spec §6 ("Defaults: ... channel_max 32768").
	defaultChannelMax = 32768
	// defaultConnectionTimeout is the outer deadline on TCP/TLS
	// establishment, per spec §6 ("timeout 3.0").
	defaultConnectionTimeout = 3 * time.Second
	// defaultFrameMax is the client's proposed content-frame ceiling;
	// RabbitMQ's own default is 131072.
	defaultFrameMax = 131072

	clientProduct  = "coreamqp"
	clientPlatform = "Go"
	clientVersion  = "0.1.0"
)

// declaredCapabilities lists the client capabilities advertised in
// Connection.StartOk, per spec §4.3 step 2.
var declaredCapabilities = []string{
	"authentication_failure_close",
	"basic.nack",
	"connection.blocked",
	"consumer_cancel_notify",
	"consumer_priorities",
	"direct_reply_to",
	"per_consumer_qos",
	"publisher_confirms",
}

// Config holds the caller-supplied connection preferences; the zero
// value is valid and resolves to the spec's stated defaults.
type Config struct {
	Vhost             string
	ChannelMax        uint16
	FrameMax          uint32
	Heartbeat         time.Duration // 0 means "negotiate with server"
	ConnectionTimeout time.Duration
	Locale            string
	Properties        wire.Table // merged into the client-properties table
}

func (c Config) withDefaults() Config {
	if c.Vhost == "" {
		c.Vhost = "/"
	}
	if c.ChannelMax == 0 {
		c.ChannelMax = defaultChannelMax
	}
	if c.FrameMax == 0 {
		c.FrameMax = defaultFrameMax
	}
	if c.ConnectionTimeout == 0 {
		c.ConnectionTimeout = defaultConnectionTimeout
	}
	if c.Locale == "" {
		c.Locale = "en_US"
	}
	return c
}

// NegotiatedLimits are the resolved channel/frame/heartbeat triple, per
// spec §3 "NegotiatedLimits" and §4.3 step 3.
type NegotiatedLimits struct {
	ChannelMax uint16
	FrameMax   uint32
	Heartbeat  time.Duration
}

// negotiate implements spec §4.3's resolution rule: min(client, server)
// if both are non-zero, else the non-zero one (zero means "unlimited"
// from whichever side asserted it).
func negotiate(client, server uint32) uint32 {
	switch {
	case client == 0:
		return server
	case server == 0:
		return client
	case client < server:
		return client
	default:
		return server
	}
}

func negotiateLimits(clientChannelMax uint16, clientFrameMax uint32, clientHeartbeat time.Duration, tune *wire.ConnectionTune) NegotiatedLimits {
	channelMax := negotiate(uint32(clientChannelMax), uint32(tune.ChannelMax))
	frameMax := negotiate(clientFrameMax, tune.FrameMax)

	var heartbeat time.Duration
	if clientHeartbeat == 0 {
		// caller left it unset: adopt the server's, per spec §4.3 step 3.
		heartbeat = time.Duration(tune.Heartbeat) * time.Second
	} else {
		heartbeat = clientHeartbeat
		if server := time.Duration(tune.Heartbeat) * time.Second; server > 0 && server < heartbeat {
			heartbeat = server
		}
	}

	return NegotiatedLimits{
		ChannelMax: uint16(channelMax),
		FrameMax:   frameMax,
		Heartbeat:  heartbeat,
	}
}

// clientProperties builds the Connection.StartOk properties table,
// merging any caller-supplied Config.Properties on top of the built-in
// identity fields.
func clientProperties(extra wire.Table) wire.Table {
	caps := make(wire.Table, len(declaredCapabilities))
	for _, c := range declaredCapabilities {
		caps[c] = true
	}
	t := wire.Table{
		"product":      clientProduct,
		"platform":     clientPlatform,
		"version":      clientVersion,
		"capabilities": caps,
	}
	for k, v := range extra {
		t[k] = v
	}
	return t
}

// defaultConsumerTag mints a consumer tag the way the rest of the
// RabbitMQ Go ecosystem does when the caller leaves it blank, grounded
// on dihedron-rabbit's use of github.com/satori/go.uuid for the same
// purpose.
func defaultConsumerTag() string {
	return "ctag-" + uuid.NewV4().String()
}
