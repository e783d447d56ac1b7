package amqp091

import (
	"testing"

	"github.com/coreamqp/amqp091/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestOpenMessageFromDeliver(t *testing.T) {
	d := wire.NewBasicDeliver()
	d.ConsumerTag = "ctag"
	d.DeliveryTag = 9
	d.Redelivered = true
	d.Exchange = "x"
	d.RoutingKey = "rk"

	f, err := openMessage(d)
	require.NoError(t, err)
	require.Equal(t, originDeliver, f.msg.Origin)
	require.Equal(t, "ctag", f.msg.ConsumerTag)
	require.Equal(t, uint64(9), f.msg.DeliveryTag)
	require.True(t, f.msg.Redelivered)
}

func TestOpenMessageRejectsUnrelatedMethod(t *testing.T) {
	_, err := openMessage(wire.NewChannelOpenOk())
	require.Error(t, err)
}

func TestInFlightMessageAssembly(t *testing.T) {
	f, err := openMessage(wire.NewBasicGetOk())
	require.NoError(t, err)

	f.addHeader(&wire.ContentHeader{BodySize: 5})
	require.False(t, f.complete())

	require.False(t, f.addBody(&wire.ContentBody{Payload: []byte("hel")}))
	require.True(t, f.addBody(&wire.ContentBody{Payload: []byte("lo")}))
	require.Equal(t, []byte("hello"), f.msg.Body)
}

func TestInFlightMessageZeroBodyCompletesOnHeader(t *testing.T) {
	f, err := openMessage(wire.NewBasicReturn())
	require.NoError(t, err)

	f.addHeader(&wire.ContentHeader{BodySize: 0})
	require.True(t, f.complete())
	require.Equal(t, []byte{}, f.msg.Body)
}

func TestSplitBodyChunking(t *testing.T) {
	chunks := splitBody([]byte("abcdefg"), 3)
	require.Equal(t, [][]byte{[]byte("abc"), []byte("def"), []byte("g")}, chunks)
}

func TestSplitBodyEmptyYieldsOneEmptyChunk(t *testing.T) {
	chunks := splitBody(nil, 3)
	require.Equal(t, [][]byte{{}}, chunks)
}

func TestSplitBodyZeroMaxFrameUsesDefault(t *testing.T) {
	body := make([]byte, 10)
	chunks := splitBody(body, 0)
	require.Len(t, chunks, 1)
}
