package amqp091

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeKindClassification(t *testing.T) {
	require.Equal(t, KindAccessRefused, codeKind(403))
	require.Equal(t, KindSoftError, codeKind(404))
	require.Equal(t, KindSoftError, codeKind(406))
	require.Equal(t, KindHardError, codeKind(504))
	require.Equal(t, KindHardError, codeKind(599))
	require.Equal(t, KindConnectionClosed, codeKind(200))
}

func TestMapErrorFillsReasonWhenEmpty(t *testing.T) {
	err := mapError(404, "")
	require.Equal(t, "reply-code 404", err.Reason)
	require.Equal(t, KindSoftError, err.Kind)
	require.Equal(t, 404, err.Code)
}

func TestMapErrorKeepsGivenReason(t *testing.T) {
	err := mapError(406, "PRECONDITION_FAILED")
	require.Equal(t, "PRECONDITION_FAILED", err.Reason)
}

func TestIsSoftIsHard(t *testing.T) {
	require.True(t, IsSoft(406))
	require.False(t, IsSoft(504))
	require.True(t, IsHard(504))
	require.False(t, IsHard(406))
}

func TestErrorIsMatchesByKindOnly(t *testing.T) {
	e1 := &Error{Kind: KindSoftError, Code: 404, Reason: "not found"}
	e2 := &Error{Kind: KindSoftError, Code: 406, Reason: "precondition"}
	require.True(t, errors.Is(e1, e2))

	e3 := &Error{Kind: KindHardError, Code: 504}
	require.False(t, errors.Is(e1, e3))
}

func TestErrorIsSentinelComparisons(t *testing.T) {
	err := &Error{Kind: KindNotSupported, Code: 540, Reason: "not implemented"}
	require.True(t, errors.Is(err, ErrNotSupported))
	require.False(t, errors.Is(err, ErrAccessRefused))
}

func TestErrorMessageFormat(t *testing.T) {
	err := mapError(404, "NOT_FOUND")
	require.Contains(t, err.Error(), "404")
	require.Contains(t, err.Error(), "NOT_FOUND")
}
