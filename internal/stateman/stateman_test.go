package stateman

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type state int

const (
	stateIdle state = iota
	stateRunning
	stateDone
	stateBroken
)

func newTestManager() *Manager[state] {
	return New(stateIdle, map[state][]state{
		stateIdle:    {stateRunning},
		stateRunning: {stateDone},
	}, stateBroken, map[state]string{
		stateIdle:    "idle",
		stateRunning: "running",
		stateDone:    "done",
		stateBroken:  "broken",
	})
}

func TestManagerAllowedTransition(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Set(stateRunning, nil))
	require.Equal(t, stateRunning, m.State())
}

func TestManagerDisallowedTransition(t *testing.T) {
	m := newTestManager()
	err := m.Set(stateDone, nil)
	var transErr *StateTransitionError[state]
	require.ErrorAs(t, err, &transErr)
	require.Equal(t, stateIdle, transErr.From)
	require.Equal(t, stateDone, transErr.To)
	require.Equal(t, stateIdle, m.State())
}

func TestManagerSetToCurrentStateIsNoop(t *testing.T) {
	m := newTestManager()
	require.NoError(t, m.Set(stateIdle, nil))
	require.Equal(t, stateIdle, m.State())
}

func TestManagerLatchedErrorForcesException(t *testing.T) {
	m := newTestManager()
	boom := errors.New("boom")
	require.NoError(t, m.Set(stateRunning, boom))
	require.Equal(t, stateBroken, m.State())
}

func TestManagerWaitReturnsImmediatelyWhenAlreadyInState(t *testing.T) {
	m := newTestManager()
	s, err := m.Wait(context.Background(), stateIdle, stateRunning)
	require.NoError(t, err)
	require.Equal(t, stateIdle, s)
}

func TestManagerWaitWakesOnTransition(t *testing.T) {
	m := newTestManager()
	done := make(chan struct{})
	go func() {
		s, err := m.Wait(context.Background(), stateRunning)
		require.NoError(t, err)
		require.Equal(t, stateRunning, s)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, m.Set(stateRunning, nil))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not wake on transition")
	}
}

func TestManagerWaitPropagatesLatchedError(t *testing.T) {
	m := newTestManager()
	boom := errors.New("boom")
	done := make(chan error, 1)
	go func() {
		_, err := m.Wait(context.Background(), stateDone)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, m.Set(stateRunning, boom))

	select {
	case err := <-done:
		require.ErrorIs(t, err, boom)
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe latched error")
	}
}

func TestManagerWaitCancelledByContext(t *testing.T) {
	m := newTestManager()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := m.Wait(ctx, stateDone)
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Wait did not observe context cancellation")
	}
}

func TestManagerDescriptionFallsBackToFormat(t *testing.T) {
	m := newTestManager()
	require.Equal(t, "idle", m.Description(stateIdle))
	require.Equal(t, "4", m.Description(state(4)))
}
