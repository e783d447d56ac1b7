package amqp091

import (
	"testing"
	"time"

	"github.com/coreamqp/amqp091/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestConfigWithDefaultsFillsZeroValues(t *testing.T) {
	c := Config{}.withDefaults()
	require.Equal(t, "/", c.Vhost)
	require.Equal(t, uint16(defaultChannelMax), c.ChannelMax)
	require.Equal(t, uint32(defaultFrameMax), c.FrameMax)
	require.Equal(t, defaultConnectionTimeout, c.ConnectionTimeout)
	require.Equal(t, "en_US", c.Locale)
}

func TestConfigWithDefaultsPreservesCallerValues(t *testing.T) {
	c := Config{Vhost: "/custom", ChannelMax: 10, FrameMax: 4096, ConnectionTimeout: time.Second, Locale: "fr_FR"}.withDefaults()
	require.Equal(t, "/custom", c.Vhost)
	require.Equal(t, uint16(10), c.ChannelMax)
	require.Equal(t, uint32(4096), c.FrameMax)
	require.Equal(t, time.Second, c.ConnectionTimeout)
	require.Equal(t, "fr_FR", c.Locale)
}

func TestNegotiateLimitsAdoptsServerHeartbeatWhenUnset(t *testing.T) {
	tune := wire.NewConnectionTune()
	tune.ChannelMax, tune.FrameMax, tune.Heartbeat = 100, 8192, 30

	limits := negotiateLimits(2048, 131072, 0, tune)
	require.Equal(t, uint16(100), limits.ChannelMax)
	require.Equal(t, uint32(8192), limits.FrameMax)
	require.Equal(t, 30*time.Second, limits.Heartbeat)
}

func TestNegotiateLimitsKeepsClientHeartbeatWhenSet(t *testing.T) {
	tune := wire.NewConnectionTune()
	tune.Heartbeat = 30

	limits := negotiateLimits(0, 0, 5*time.Second, tune)
	require.Equal(t, 5*time.Second, limits.Heartbeat)
}

func TestClientPropertiesMergesExtraAndDeclaresCapabilities(t *testing.T) {
	t1 := clientProperties(wire.Table{"custom": "value"})
	require.Equal(t, clientProduct, t1["product"])
	require.Equal(t, "value", t1["custom"])

	caps, ok := t1["capabilities"].(wire.Table)
	require.True(t, ok)
	require.True(t, caps["publisher_confirms"].(bool))
}

func TestDefaultConsumerTagIsUnique(t *testing.T) {
	a := defaultConsumerTag()
	b := defaultConsumerTag()
	require.NotEqual(t, a, b)
	require.Contains(t, a, "ctag-")
}
