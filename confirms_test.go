package amqp091

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfirmStateResolveSingleTag(t *testing.T) {
	cs := newConfirmState()
	pp1 := cs.nextDeliveryTag()
	pp2 := cs.nextDeliveryTag()

	cs.resolve(pp1.Tag, false, OutcomeAck)

	select {
	case r := <-pp1.reply:
		require.Equal(t, OutcomeAck, r.outcome)
	default:
		t.Fatal("pp1 was not resolved")
	}
	select {
	case <-pp2.reply:
		t.Fatal("pp2 should not be resolved yet")
	default:
	}
}

func TestConfirmStateResolveMultipleUpToTag(t *testing.T) {
	cs := newConfirmState()
	pp1 := cs.nextDeliveryTag()
	pp2 := cs.nextDeliveryTag()
	pp3 := cs.nextDeliveryTag()

	cs.resolve(pp2.Tag, true, OutcomeAck)

	for _, pp := range []*PendingPublish{pp1, pp2} {
		select {
		case r := <-pp.reply:
			require.Equal(t, OutcomeAck, r.outcome)
		default:
			t.Fatalf("tag %d should have resolved", pp.Tag)
		}
	}
	select {
	case <-pp3.reply:
		t.Fatal("pp3 should still be pending")
	default:
	}
}

func TestConfirmStateResolveReturnTakesOldestPending(t *testing.T) {
	cs := newConfirmState()
	pp1 := cs.nextDeliveryTag()
	pp2 := cs.nextDeliveryTag()

	cs.resolveReturn()

	select {
	case r := <-pp1.reply:
		require.Equal(t, OutcomeReturned, r.outcome)
	default:
		t.Fatal("pp1 should resolve as returned")
	}
	select {
	case <-pp2.reply:
		t.Fatal("pp2 should remain pending")
	default:
	}
}

func TestConfirmStateFailAll(t *testing.T) {
	cs := newConfirmState()
	pp1 := cs.nextDeliveryTag()
	pp2 := cs.nextDeliveryTag()
	boom := errors.New("boom")

	cs.failAll(boom)

	for _, pp := range []*PendingPublish{pp1, pp2} {
		r := <-pp.reply
		require.Equal(t, OutcomeUnresolved, r.outcome)
		require.ErrorIs(t, r.err, boom)
	}
	require.Empty(t, cs.order)
	require.Empty(t, cs.pending)
}

func TestConfirmStateResetClearsBookkeeping(t *testing.T) {
	cs := newConfirmState()
	cs.enabled = true
	cs.nextDeliveryTag()

	cs.reset()

	require.False(t, cs.enabled)
	require.Zero(t, cs.nextTag)
	require.Empty(t, cs.order)
	require.Empty(t, cs.pending)
}

func TestPublishOutcomeString(t *testing.T) {
	require.Equal(t, "ack", OutcomeAck.String())
	require.Equal(t, "nack", OutcomeNack.String())
	require.Equal(t, "returned", OutcomeReturned.String())
	require.Equal(t, "unresolved", OutcomeUnresolved.String())
}
