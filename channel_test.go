package amqp091

import (
	"strings"
	"testing"

	"github.com/coreamqp/amqp091/internal/wire"
	"github.com/stretchr/testify/require"
)

func TestValidateExchangeName(t *testing.T) {
	require.NoError(t, validateExchangeName(""))
	require.NoError(t, validateExchangeName("amq.direct"))
	require.NoError(t, validateExchangeName("my-exchange_1:v2.0"))

	err := validateExchangeName("bad name!")
	require.Error(t, err)
	var amqpErr *Error
	require.ErrorAs(t, err, &amqpErr)
	require.Equal(t, KindValueError, amqpErr.Kind)
}

func TestValidateShortString(t *testing.T) {
	require.NoError(t, validateShortString("field", "short"))
	require.Error(t, validateShortString("field", strings.Repeat("x", 256)))
}

func TestValidateFieldTable(t *testing.T) {
	require.NoError(t, validateFieldTable(wire.Table{"ok": true}))
	require.Error(t, validateFieldTable(wire.Table{"": true}))
	require.Error(t, validateFieldTable(wire.Table{strings.Repeat("k", 257): true}))
}

func TestValidateDeliveryMode(t *testing.T) {
	require.NoError(t, validateDeliveryMode(0))
	require.NoError(t, validateDeliveryMode(1))
	require.NoError(t, validateDeliveryMode(2))
	require.Error(t, validateDeliveryMode(3))
}

func TestMatchOkExtractsOnTypeMatch(t *testing.T) {
	match := matchOk(func(ok *wire.QueueDeclareOk) interface{} { return ok.Queue })

	ok := wire.NewQueueDeclareOk()
	ok.Queue = "q1"
	v, matched := match(ok)
	require.True(t, matched)
	require.Equal(t, "q1", v)

	_, matched = match(wire.NewChannelOpenOk())
	require.False(t, matched)
}

func TestNextChannelIDIncrementsAndWraps(t *testing.T) {
	require.Equal(t, uint16(2), nextChannelID(1, 100))
	require.Equal(t, uint16(1), nextChannelID(100, 100))
	require.Equal(t, uint16(1), nextChannelID(65535, 0))
	require.Equal(t, uint16(4), nextChannelID(3, 0))
}
