package amqp091

import "fmt"

// Error is a protocol-level error carrying the AMQP 0-9-1 reply-code and
// reply-text exactly as they arrived on a Connection.Close or
// Channel.Close frame, mirroring the teacher's *LinkError/*ConnError
// split (link.go's &LinkError{RemoteErr: ...}) generalized across the
// connection/channel boundary this spec requires.
type Error struct {
	Code   int
	Reason string
	Kind   errorKind
}

func (e *Error) Error() string {
	return fmt.Sprintf("amqp091: %s (code %d): %s", e.Kind, e.Code, e.Reason)
}

type errorKind string

const (
	KindClientNegotiation errorKind = "client-negotiation"
	KindAccessRefused     errorKind = "access-refused"
	KindConnectionClosed  errorKind = "connection-closed"
	KindStateTransition   errorKind = "state-transition"
	KindNoTransaction     errorKind = "no-transaction"
	KindNotSupported      errorKind = "not-supported"
	KindNotImplemented    errorKind = "not-implemented"
	KindInvalidRequest    errorKind = "invalid-request"
	KindTypeError         errorKind = "type-error"
	KindValueError        errorKind = "value-error"
	KindSoftError         errorKind = "soft-channel-error"
	KindHardError         errorKind = "hard-connection-error"
)

// sentinel errors for errors.Is comparisons against a Kind, independent
// of the specific code/reason carried by an *Error instance.
var (
	ErrClientNegotiation = &Error{Kind: KindClientNegotiation}
	ErrAccessRefused     = &Error{Kind: KindAccessRefused}
	ErrConnectionClosed  = &Error{Kind: KindConnectionClosed}
	ErrStateTransition   = &Error{Kind: KindStateTransition}
	ErrNoTransaction     = &Error{Kind: KindNoTransaction}
	ErrNotSupported      = &Error{Kind: KindNotSupported}
	ErrNotImplemented    = &Error{Kind: KindNotImplemented}
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest}
)

// Is lets errors.Is(err, ErrConnectionClosed) match any *Error of that
// Kind regardless of code/reason.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// softErrorCodes are reply-codes the server uses to close just the
// offending channel, per spec §7.
var softErrorCodes = map[int]bool{
	311: true, // content-too-large
	313: true, // no-consumers
	403: true, // access-refused
	404: true, // not-found
	405: true, // resource-locked
	406: true, // precondition-failed
}

// hardErrorCodes are reply-codes the server uses to close the entire
// connection, per spec §7.
var hardErrorCodes = map[int]bool{
	320: true, // connection-forced
	402: true, // invalid-path
	501: true, // frame-error
	502: true, // syntax-error
	503: true, // command-invalid
	504: true, // channel-error
	505: true, // unexpected-frame
	506: true, // resource-error
	530: true, // not-allowed
	540: true, // not-implemented
	541: true, // internal-error
	599: true, // heartbeat timeout, synthesised locally per §4.3
}

// codeKind classifies a reply-code: 403 as KindAccessRefused, a listed
// soft code as KindSoftError, a listed hard code as KindHardError, and
// any other code (e.g. 200 "client requested") as KindConnectionClosed.
func codeKind(code int) errorKind {
	switch {
	case code == 403:
		return KindAccessRefused
	case softErrorCodes[code]:
		return KindSoftError
	case hardErrorCodes[code]:
		return KindHardError
	default:
		return KindConnectionClosed
	}
}

// mapError builds the *Error a caller should see for a given
// reply-code/reply-text pair, per spec §7's propagation policy.
func mapError(code int, reason string) *Error {
	kind := codeKind(code)
	if reason == "" {
		reason = fmt.Sprintf("reply-code %d", code)
	}
	return &Error{Code: code, Reason: reason, Kind: kind}
}

// IsSoft reports whether code closes only the channel, not the
// connection.
func IsSoft(code int) bool { return softErrorCodes[code] }

// IsHard reports whether code closes the whole connection.
func IsHard(code int) bool { return hardErrorCodes[code] }
