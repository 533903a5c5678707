// Package service implements the server-side state machine: it owns a
// transport endpoint, enforces the strict RECEIVING/SENDING alternation,
// dispatches textual commands to registered handlers, and serialises
// errors into the wire encoding.
//
// Grounded on server/server.go's Serve/handleConn/handleRequest structure in
// the teacher repository (Accept loop, per-connection handling, stdlib log
// for operational messages), de-parallelised: the teacher dispatches
// `go svr.handleRequest` per request because its domain wants concurrent
// in-flight requests multiplexed by sequence number. spec.md §1 and §5
// forbid that here — at most one request is ever in flight per connection —
// so dispatch runs inline in the connection loop instead of being handed to
// its own goroutine.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"

	"ipcrpc/command"
	"ipcrpc/metadata"
	"ipcrpc/middleware"
	"ipcrpc/transport"
	"ipcrpc/wire"
)

// Descriptor supplies the two virtual strings the `describe` builtin
// returns. Concrete services implement this; spec.md §4.4 calls name() and
// description() "virtual strings the concrete service supplies."
type Descriptor interface {
	Name() string
	Description() string
}

// Service owns a command registry and the connection-handling loop that
// dispatches to it.
type Service struct {
	descriptor  Descriptor
	registry    *command.Registry
	middlewares []middleware.Middleware
}

// New constructs a Service and pre-registers its four built-in commands:
// describe, list, help, metadata (spec.md §3, §6, §8 scenario 1).
func New(descriptor Descriptor) *Service {
	s := &Service{
		descriptor: descriptor,
		registry:   command.NewRegistry(),
	}
	s.registerBuiltins()
	return s
}

// Register inserts or replaces a command. Precondition (caller's
// responsibility, per spec.md §3): md.Name == name.
func (s *Service) Register(name string, handler command.Handler, md metadata.Metadata) {
	s.registry.Register(name, command.Entry{Handler: handler, Metadata: md})
}

// Use appends a dispatch middleware. Middlewares registered first are the
// outermost layer, matching middleware.Chain's ordering.
func (s *Service) Use(mw middleware.Middleware) {
	s.middlewares = append(s.middlewares, mw)
}

func (s *Service) registerBuiltins() {
	s.Register("describe",
		func(arguments []string) ([]string, error) {
			return []string{s.descriptor.Name(), s.descriptor.Description()}, nil
		},
		metadata.Metadata{
			Name:        "describe",
			Description: "Returns the description of the service.",
			Timeout:     metadata.Default,
			Arguments:   metadata.NoArguments(),
			Returns:     "The name of the service, followed by its description.",
			Errors:      "None",
		})

	s.Register("list",
		func(arguments []string) ([]string, error) {
			return s.registry.Names(), nil
		},
		metadata.Metadata{
			Name:        "list",
			Description: "Lists the names of available service commands.",
			Timeout:     metadata.Default,
			Arguments:   metadata.NoArguments(),
			Returns:     "The names of the available service commands.",
			Errors:      "None",
		})

	s.Register("help",
		func(arguments []string) ([]string, error) {
			return renderHelp(s.registry), nil
		},
		metadata.Metadata{
			Name:        "help",
			Description: "Describes available service commands.",
			Timeout:     metadata.Default,
			Arguments:   metadata.NoArguments(),
			Returns:     "A list of strings describing the available service commands.",
			Errors:      "*HandlerFailure* - metadata is missing or invalid for a command.",
		})

	s.Register("metadata",
		s.metadataCommand,
		metadata.Metadata{
			Name:        "metadata",
			Description: "Describes the given commands.",
			Timeout:     metadata.Default,
			Arguments:   metadata.VariableLength(metadata.Argument{Name: "command", Description: "a command name"}),
			Returns:     "One JSON-encoded metadata document per requested command.",
			Errors:      "*InvalidArguments* - arguments are empty.\\\n*UnknownCommand* - a requested name is not registered.",
		})
}

// metadataCommand implements the `metadata` builtin (spec.md §4.4, §6): for
// each requested name, one JSON-encoded metadata document; an unknown name
// short-circuits with UnknownCommand (spec.md §8: "the first unknown
// short-circuits"); zero names is InvalidArguments.
func (s *Service) metadataCommand(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, InvalidArguments("Expected one or more commands as arguments")
	}

	docs := make([]string, 0, len(names))
	for _, name := range names {
		entry, ok := s.registry.Get(name)
		if !ok {
			return nil, unknownCommand(name)
		}
		data, err := entry.Metadata.MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("marshalling metadata for %s: %w", name, err)
		}
		docs = append(docs, string(data))
	}
	return docs, nil
}

// connState is the RECEIVING/SENDING FSM position of a single connection
// (spec.md §4.4). Each connection has its own state: the service endpoint
// serves one connection to completion before accepting the next, so only
// one connState is ever live at a time.
type connState int

const (
	stateReceiving connState = iota
	stateSending
)

// Run accepts connections from listener and serves each one to completion
// (one full RECEIVING→SENDING→RECEIVING… cycle per connection) before
// accepting the next, honouring ctx for shutdown: callers should close
// listener when ctx is done to unblock Accept.
//
// Run returns nil on a clean shutdown (ctx cancelled). It returns a non-nil
// error when Accept fails while ctx is still live, or as a KindFatal Fault
// (spec.md §4.4: "a state violation detected before any reply is a fatal
// error... terminate the process with a non-zero exit status") — callers
// should treat a returned error as a signal to exit non-zero, the Go
// analogue of the original's `exit(1)`.
func (s *Service) Run(ctx context.Context, listener net.Listener) error {
	handler := middleware.Chain(s.middlewares...)(s.dispatch)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		if fault := s.serveConn(ctx, transport.New(conn), handler); fault != nil {
			conn.Close()
			return fault
		}

		if ctx.Err() != nil {
			return nil
		}
	}
}

// serveConn drives the FSM for one connection until it closes or a genuine
// state violation occurs (fatal). A decode-stage error on an otherwise-live
// connection is not connection-ending: per spec.md §4.4 step 6 and
// original_source/pyservice.py's command = message[0].decode() sitting
// inside the same try as the handler call, it is classified per §7 and
// answered with an ERROR reply like any other handler failure, and the
// loop returns to RECEIVING.
func (s *Service) serveConn(ctx context.Context, conn *transport.Conn, handler middleware.HandlerFunc) *Fault {
	defer conn.Close()

	state := stateReceiving
	for {
		if ctx.Err() != nil {
			return nil
		}

		if state != stateReceiving {
			f := stateViolation("")
			f.Kind = KindFatal
			return f
		}
		req, err := conn.ReceiveRequest()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil // connection closed
			}

			log.Printf("malformed request: %v", err)
			state = stateSending
			f := handlerFailure(err)
			if sendErr := conn.SendReply(wire.Reply{OK: false, Code: f.WireCode(), Message: f.Message}); sendErr != nil {
				log.Printf("failed to send reply for malformed request: %v", sendErr)
				return nil
			}
			state = stateReceiving
			continue
		}
		state = stateSending

		log.Printf("received command %s", req.Command)

		reply := s.invoke(ctx, handler, req)

		if state != stateSending {
			log.Printf("illegal state while trying to respond to %s: %s", req.Command, reply.Message)
			continue
		}
		if err := conn.SendReply(toWireReply(reply)); err != nil {
			log.Printf("failed to send reply for %s: %v", req.Command, err)
			return nil
		}
		state = stateReceiving
	}
}

// invoke recovers from a handler panic (the Go analogue of Python's
// catch-all `except Exception`) and classifies it the same way a returned
// error would be.
func (s *Service) invoke(ctx context.Context, handler middleware.HandlerFunc, req wire.Request) (reply *middleware.Reply) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			f := handlerFailure(err)
			reply = &middleware.Reply{OK: false, Code: f.WireCode(), Message: f.Message}
		}
	}()
	return handler(ctx, &middleware.Request{Command: req.Command, Arguments: req.Arguments})
}

func (s *Service) dispatch(ctx context.Context, req *middleware.Request) *middleware.Reply {
	entry, ok := s.registry.Get(req.Command)
	if !ok {
		f := unknownCommand(req.Command)
		return &middleware.Reply{OK: false, Code: f.WireCode(), Message: f.Message}
	}

	results, err := entry.Handler(req.Arguments)
	if err != nil {
		f := classify(err)
		return &middleware.Reply{OK: false, Code: f.WireCode(), Message: f.Message}
	}
	return &middleware.Reply{OK: true, Results: results}
}

func toWireReply(reply *middleware.Reply) wire.Reply {
	if reply.OK {
		return wire.Reply{OK: true, Results: reply.Results}
	}
	return wire.Reply{OK: false, Code: reply.Code, Message: reply.Message}
}
