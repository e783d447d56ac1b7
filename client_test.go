package amqp091

import (
	"context"
	"testing"
	"time"

	"github.com/fortytw2/leaktest"
	"github.com/stretchr/testify/require"
)

// TestScenarioHandshake is spec §8 scenario S1: connect() transitions
// through the control-channel states ending in OpenOkReceived, and
// server_capabilities reflects what Connection.Start advertised.
func TestScenarioHandshake(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())

	require.Equal(t, ctrlOpenOkReceived, c.ctrl.State())
	require.True(t, c.HasServerCapability("publisher_confirms"))
	require.False(t, c.IsClosed())
}

// TestScenarioPublishGetRoundtrip is spec §8 scenario S2.
func TestScenarioPublishGetRoundtrip(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())
	ctx := context.Background()

	_, err := c.QueueDeclare(ctx, "q", QueueDeclareOptions{})
	require.NoError(t, err)
	require.NoError(t, c.QueueBind(ctx, "q", "amq.direct", "#", nil))

	ok, err := c.Publish(ctx, "amq.direct", "#", []byte("hello"), PublishOptions{})
	require.NoError(t, err)
	require.True(t, ok)

	msg, err := c.Get(ctx, "q", false)
	require.NoError(t, err)
	require.NotNil(t, msg)
	require.Equal(t, []byte("hello"), msg.Body)
	require.Equal(t, uint32(0), msg.MessageCount)

	require.NoError(t, c.Ack(ctx, msg.DeliveryTag, false))
}

// TestScenarioGetEmpty exercises §9.1's supplemented basic_get
// empty-queue signaling: an empty queue yields (nil, nil), not an error.
func TestScenarioGetEmpty(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())
	ctx := context.Background()

	_, err := c.QueueDeclare(ctx, "empty", QueueDeclareOptions{})
	require.NoError(t, err)

	msg, err := c.Get(ctx, "empty", false)
	require.NoError(t, err)
	require.Nil(t, msg)
}

// TestScenarioConfirms is spec §8 scenario S3: once confirms are
// enabled, each of two routed publishes resolves as an Ack (true).
func TestScenarioConfirms(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())
	ctx := context.Background()

	_, err := c.QueueDeclare(ctx, "q", QueueDeclareOptions{})
	require.NoError(t, err)
	require.NoError(t, c.ConfirmSelect(ctx))

	okA, err := c.Publish(ctx, "", "q", []byte("a"), PublishOptions{})
	require.NoError(t, err)
	require.True(t, okA)

	okB, err := c.Publish(ctx, "", "q", []byte("b"), PublishOptions{})
	require.NoError(t, err)
	require.True(t, okB)
}

// TestScenarioSoftErrorRecovery is spec §8 scenario S4: a channel-level
// error reopens the channel transparently and increments its id.
func TestScenarioSoftErrorRecovery(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())
	ctx := context.Background()

	before := c.channelID

	err := c.ExchangeDeclare(ctx, "x", "no-such-type", ExchangeDeclareOptions{})
	require.Error(t, err)
	var amqpErr *Error
	require.ErrorAs(t, err, &amqpErr)
	require.Equal(t, KindSoftError, amqpErr.Kind)

	// give the mux loop a moment to finish the reopen handshake
	// triggered by the channel close.
	require.Eventually(t, func() bool {
		return c.channelID == nextChannelID(before, c.limits.ChannelMax)
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, c.ExchangeDeclare(ctx, "x", "direct", ExchangeDeclareOptions{}))
}

// TestScenarioMandatoryReturn is spec §8 scenario S5.
func TestScenarioMandatoryReturn(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())
	ctx := context.Background()

	returned := make(chan Message, 1)
	c.OnReturn(func(m Message) { returned <- m })

	ok, err := c.Publish(ctx, "amq.direct", "nokey", []byte("x"), PublishOptions{Mandatory: true})
	require.NoError(t, err)
	require.True(t, ok) // no confirms enabled: Publish only reports write success

	select {
	case m := <-returned:
		require.Equal(t, uint16(312), m.ReplyCode)
		require.Equal(t, []byte("x"), m.Body)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for Basic.Return")
	}
}

// TestScenarioMandatoryReturnWithConfirms checks that a returned
// publish resolves the pending confirm as Returned (false), per spec
// §9's Open Question (c) decision, rather than as an Ack.
func TestScenarioMandatoryReturnWithConfirms(t *testing.T) {
	b := newTestBroker()
	c := b.dial(t, Config{})
	defer c.Close(context.Background())
	ctx := context.Background()

	require.NoError(t, c.ConfirmSelect(ctx))
	c.OnReturn(func(Message) {})

	ok, err := c.Publish(ctx, "amq.direct", "nokey", []byte("x"), PublishOptions{Mandatory: true})
	require.NoError(t, err)
	require.False(t, ok)
}

// TestScenarioHeartbeatTimeout is spec §8 scenario S6.
func TestScenarioHeartbeatTimeout(t *testing.T) {
	defer leaktest.Check(t)()

	b := newTestBroker()
	b.heartbeat = 1
	c := b.dial(t, Config{})
	defer c.Close(context.Background())

	require.Equal(t, time.Second, c.limits.Heartbeat)

	require.Eventually(t, func() bool {
		return c.IsClosed()
	}, 4*time.Second, 50*time.Millisecond)

	var amqpErr *Error
	require.ErrorAs(t, c.Err(), &amqpErr)
	require.Equal(t, 599, amqpErr.Code)
}

// TestClientCloseIdempotent is spec §8 property 4.
func TestClientCloseIdempotent(t *testing.T) {
	defer leaktest.Check(t)()

	b := newTestBroker()
	c := b.dial(t, Config{})

	ctx := context.Background()
	require.NoError(t, c.Close(ctx))
	require.NoError(t, c.Close(ctx))
	require.True(t, c.IsClosed())
}

// TestNegotiateRule is spec §8 property 5.
func TestNegotiateRule(t *testing.T) {
	require.Equal(t, uint32(5), negotiate(0, 5))
	require.Equal(t, uint32(5), negotiate(5, 0))
	require.Equal(t, uint32(3), negotiate(3, 7))
	require.Equal(t, uint32(3), negotiate(7, 3))
}
