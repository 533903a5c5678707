// Package transport pairs a net.Conn with the wire codec for a single
// synchronous send/receive pair at a time.
//
// Grounded on transport/client_transport.go's idea of "a transport type
// wraps a conn and a codec", with the teacher's recvLoop goroutine, pending
// sync.Map, and heartbeat loop removed: those exist solely to support
// request multiplexing over one shared connection, which spec.md §1 and §5
// explicitly put out of scope. Exactly one request is ever in flight on a
// Conn, so there is nothing to route.
package transport

import (
	"context"
	"net"

	"ipcrpc/wire"
)

// Conn wraps a net.Conn and exposes the wire message operations both the
// service and the client need.
type Conn struct {
	net.Conn
}

// New wraps an already-established net.Conn.
func New(conn net.Conn) *Conn {
	return &Conn{Conn: conn}
}

// Dial connects to address over network ("tcp" for the reference transport)
// and wraps the resulting connection.
func Dial(network, address string) (*Conn, error) {
	conn, err := net.Dial(network, address)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// DialContext is Dial with connect-time cancellation.
func DialContext(ctx context.Context, network, address string) (*Conn, error) {
	conn, err := (&net.Dialer{}).DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return New(conn), nil
}

// SendRequest writes a request message.
func (c *Conn) SendRequest(req wire.Request) error {
	return wire.WriteMessage(c.Conn, wire.KindRequest, wire.EncodeRequest(req))
}

// ReceiveRequest reads and decodes a request message.
func (c *Conn) ReceiveRequest() (wire.Request, error) {
	msg, err := wire.ReadMessage(c.Conn)
	if err != nil {
		return wire.Request{}, err
	}
	if msg.Kind != wire.KindRequest {
		return wire.Request{}, errUnexpectedKind(msg.Kind, wire.KindRequest)
	}
	return wire.DecodeRequest(msg.Frames)
}

// SendReply writes a success or error reply message.
func (c *Conn) SendReply(reply wire.Reply) error {
	if reply.OK {
		return wire.WriteMessage(c.Conn, wire.KindOK, wire.EncodeOK(reply.Results))
	}
	return wire.WriteMessage(c.Conn, wire.KindError, wire.EncodeError(reply.Code, reply.Message))
}

// ReceiveReply reads and decodes a reply message.
func (c *Conn) ReceiveReply() (wire.Reply, error) {
	msg, err := wire.ReadMessage(c.Conn)
	if err != nil {
		return wire.Reply{}, err
	}
	return wire.DecodeReply(msg.Frames)
}

func errUnexpectedKind(got, want wire.MessageKind) error {
	return &unexpectedKindError{got: got, want: want}
}

type unexpectedKindError struct {
	got, want wire.MessageKind
}

func (e *unexpectedKindError) Error() string {
	return "transport: expected " + e.want.String() + " message, got " + e.got.String()
}
