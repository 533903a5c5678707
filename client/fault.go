package client

import (
	"fmt"

	"ipcrpc/wire"
)

// Kind is a flat tag for the ways a call can fail client-side, replacing
// original_source/client.py's TimeoutException/ServiceException plus
// original_source/pyservice.py's ProtocolException with one tagged variant,
// per spec.md §9's design note.
type Kind int

const (
	// KindProtocol: reply frame count/tags malformed, metadata schema
	// malformed, or an empty reply (spec.md §7, client-side only).
	KindProtocol Kind = iota
	// KindTimeout: the transport receive deadline elapsed (spec.md §7,
	// client-side only).
	KindTimeout
	// KindUnknownCommand: the probe or invoke reported ERROR_UNKNOWN_COMMAND.
	KindUnknownCommand
	// KindServiceError: any other ERROR_* token, carrying Code and Message
	// verbatim (spec.md §7: "a generic ServiceError carrying code and
	// message").
	KindServiceError
)

// Fault is the client-side error type.
type Fault struct {
	Kind    Kind
	Command string
	Code    string // set for KindUnknownCommand, KindServiceError
	Message string

	// Transient marks a failure a second attempt against the same endpoint
	// could plausibly resolve (a dial failure, a receive timeout) as opposed
	// to one the service answered definitively (unknown command, a
	// handler-reported error): see WithRetry.
	Transient bool
}

func (f *Fault) Error() string {
	switch f.Kind {
	case KindProtocol:
		return fmt.Sprintf("client: protocol error: %s", f.Message)
	case KindTimeout:
		return fmt.Sprintf("client: timeout: %s", f.Message)
	case KindUnknownCommand:
		return fmt.Sprintf("client: unknown command %q", f.Command)
	case KindServiceError:
		return fmt.Sprintf("client: service error %s: %s", f.Code, f.Message)
	default:
		return fmt.Sprintf("client: fault: %s", f.Message)
	}
}

func protocolFault(format string, args ...any) *Fault {
	return &Fault{Kind: KindProtocol, Message: fmt.Sprintf(format, args...)}
}

// dialFault is a protocol fault raised before any bytes were exchanged with
// the service; a retry against the same (or a freshly resolved) endpoint
// may simply succeed once the service is reachable, so it's marked
// Transient.
func dialFault(format string, args ...any) *Fault {
	return &Fault{Kind: KindProtocol, Message: fmt.Sprintf(format, args...), Transient: true}
}

func timeoutFault(message string) *Fault {
	return &Fault{Kind: KindTimeout, Message: message, Transient: true}
}

// faultFromReply turns a decoded ERROR wire reply into the matching typed
// client Fault (spec.md §7: "ERROR_UNKNOWN_COMMAND → UnknownCommand; any
// other token → a generic ServiceError carrying code and message").
func faultFromReply(command, code, message string) *Fault {
	if code == wire.CodeUnknownCommand {
		return &Fault{Kind: KindUnknownCommand, Command: command, Code: code, Message: message}
	}
	return &Fault{Kind: KindServiceError, Command: command, Code: code, Message: message}
}
