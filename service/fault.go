package service

import (
	"fmt"

	"ipcrpc/wire"
)

// Kind is a flat tag for the handful of ways a request can fail, replacing
// the original's ServiceException/StateException/UnknownCommandException
// hierarchy per spec.md §9's design note: "prefer a flat tagged error
// variant (kind + payload) over inheritance."
type Kind int

const (
	// KindUnknownCommand: the requested command is not registered. Wire
	// token ERROR_UNKNOWN_COMMAND.
	KindUnknownCommand Kind = iota
	// KindInvalidArguments: the handler rejected the arguments. Wire token
	// ERROR_UNCATEGORISED.
	KindInvalidArguments
	// KindHandlerFailure: any other handler error. Wire token
	// ERROR_UNCATEGORISED.
	KindHandlerFailure
	// KindStateViolation: the RECEIVING/SENDING FSM invariant was broken.
	KindStateViolation
	// KindFatal: an unrecoverable condition; Run returns this to its
	// caller so the process can terminate.
	KindFatal
)

// Fault is the service-side error type. It carries enough payload to encode
// the wire error reply (Code, Message) and, separately, to log the
// offending command.
type Fault struct {
	Kind    Kind
	Command string
	Message string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("service: %s", f.Message)
}

// WireCode returns the ERROR_* token this fault encodes to, or "" for kinds
// that never reach the wire (KindStateViolation, KindFatal).
func (f *Fault) WireCode() string {
	switch f.Kind {
	case KindUnknownCommand:
		return wire.CodeUnknownCommand
	case KindInvalidArguments, KindHandlerFailure:
		return wire.CodeUncategorised
	default:
		return ""
	}
}

func unknownCommand(command string) *Fault {
	// spec.md §7/§8: the payload carries the offending name verbatim.
	return &Fault{Kind: KindUnknownCommand, Command: command, Message: command}
}

// InvalidArguments builds a handler error that the service classifies as
// KindInvalidArguments: its message reaches the wire unprefixed (spec.md §8
// scenario 5: "Expected one or more commands as arguments", with no
// exception-name decoration).
func InvalidArguments(message string) error {
	return &Fault{Kind: KindInvalidArguments, Message: message}
}

func handlerFailure(err error) *Fault {
	// spec.md §7: "message includes the exception's qualified name and
	// string form" — the closest stable, deterministic Go analogue of
	// Python's f'{type(e).__module__}.{type(e).__name__}: {e}' is the
	// error's dynamic type plus its Error() string.
	return &Fault{Kind: KindHandlerFailure, Message: fmt.Sprintf("%T: %s", err, err)}
}

func stateViolation(command string) *Fault {
	return &Fault{Kind: KindStateViolation, Command: command, Message: "illegal state transition"}
}

// classify turns a handler's returned error into a Fault, preserving an
// already-classified *Fault (from InvalidArguments, or a Fault threaded
// through from elsewhere) and wrapping anything else as KindHandlerFailure.
func classify(err error) *Fault {
	if f, ok := err.(*Fault); ok {
		return f
	}
	return handlerFailure(err)
}
