package wire

import (
	"testing"

	"github.com/coreamqp/amqp091/internal/buffer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func roundTripFrame(t *testing.T, typ byte, channel uint16, body FrameBody) *Frame {
	t.Helper()
	w := buffer.New(nil)
	require.NoError(t, WriteFrame(w, typ, channel, body))

	fr, n, err := ReadFrame(buffer.New(w.Bytes()), Classify)
	require.NoError(t, err)
	require.Equal(t, len(w.Bytes()), n)
	require.Equal(t, channel, fr.Channel)
	require.Equal(t, typ, fr.Type)
	return fr
}

func TestWriteReadFrameMethod(t *testing.T) {
	decl := NewExchangeDeclare()
	decl.Exchange = "logs"
	decl.Kind = "topic"
	decl.Durable = true
	decl.Arguments = Table{"x-foo": int32(7)}

	fr := roundTripFrame(t, FrameMethod, 3, decl)
	got, ok := fr.Body.(*ExchangeDeclare)
	require.True(t, ok)
	require.Equal(t, "logs", got.Exchange)
	require.Equal(t, "topic", got.Kind)
	require.True(t, got.Durable)
	require.Equal(t, int32(7), got.Arguments["x-foo"])
}

func TestWriteReadFrameContentHeaderAndBody(t *testing.T) {
	h := &ContentHeader{
		ClassID:  ClassBasic,
		BodySize: 5,
		Properties: Properties{
			ContentType: "text/plain",
			DeliveryMode: 2,
		},
	}
	fr := roundTripFrame(t, FrameHeader, 1, h)
	got, ok := fr.Body.(*ContentHeader)
	require.True(t, ok)
	require.Equal(t, uint64(5), got.BodySize)
	require.Equal(t, "text/plain", got.Properties.ContentType)
	require.Equal(t, uint8(2), got.Properties.DeliveryMode)

	body := &ContentBody{Payload: []byte("hello")}
	fr2 := roundTripFrame(t, FrameContentBody, 1, body)
	gotBody, ok := fr2.Body.(*ContentBody)
	require.True(t, ok)
	require.Equal(t, []byte("hello"), gotBody.Payload)
}

func TestWriteReadFrameHeartbeat(t *testing.T) {
	fr := roundTripFrame(t, FrameHeartbeat, 0, Heartbeat{})
	_, ok := fr.Body.(Heartbeat)
	require.True(t, ok)
}

func TestReadFrameShortBufferWaitsForMore(t *testing.T) {
	w := buffer.New(nil)
	require.NoError(t, WriteFrame(w, FrameMethod, 0, NewConnectionCloseOk()))
	full := w.Bytes()

	_, _, err := ReadFrame(buffer.New(full[:len(full)-2]), Classify)
	require.ErrorIs(t, err, buffer.ErrShortBuffer)
}

func TestReadFrameRejectsBadEndOctet(t *testing.T) {
	w := buffer.New(nil)
	require.NoError(t, WriteFrame(w, FrameMethod, 0, NewConnectionCloseOk()))
	b := w.Bytes()
	b[len(b)-1] = 0x00

	_, _, err := ReadFrame(buffer.New(b), Classify)
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestClassifyUnknownMethod(t *testing.T) {
	_, err := Classify(9999, 1)
	require.ErrorIs(t, err, ErrMalformedFrame)
}

func TestBasicPublishRoundTrip(t *testing.T) {
	pub := NewBasicPublish()
	pub.Exchange = "amq.direct"
	pub.RoutingKey = "rk"
	pub.Mandatory = true

	fr := roundTripFrame(t, FrameMethod, 7, pub)
	got, ok := fr.Body.(*BasicPublish)
	require.True(t, ok)
	require.Equal(t, "amq.direct", got.Exchange)
	require.Equal(t, "rk", got.RoutingKey)
	require.True(t, got.Mandatory)
	require.False(t, got.Immediate)
}

func TestTableRoundTripNestedTypes(t *testing.T) {
	tbl := Table{
		"str":   "v",
		"bool":  true,
		"int":   int32(42),
		"long":  int64(42),
		"nest":  Table{"inner": "x"},
	}
	w := buffer.New(nil)
	require.NoError(t, WriteTable(w, tbl))

	got, err := ReadTable(buffer.New(w.Bytes()))
	require.NoError(t, err)
	if diff := cmp.Diff(tbl, got); diff != "" {
		t.Fatalf("table round-trip mismatch (-want +got):\n%s", diff)
	}
}
