package service

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"ipcrpc/metadata"
	"ipcrpc/transport"
	"ipcrpc/wire"
)

type echoDescriptor struct{}

func (echoDescriptor) Name() string        { return "echosvc" }
func (echoDescriptor) Description() string { return "echoes its arguments" }

func startTestService(t *testing.T, configure func(*Service)) (addr string, stop func()) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	svc := New(echoDescriptor{})
	if configure != nil {
		configure(svc)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, listener) }()

	return listener.Addr().String(), func() {
		cancel()
		listener.Close()
		<-done
	}
}

func dial(t *testing.T, addr string) *transport.Conn {
	t.Helper()
	conn, err := transport.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func TestDescribeBuiltin(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	if err := conn.SendRequest(wire.Request{Command: "describe"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !reply.OK || len(reply.Results) != 2 || reply.Results[0] != "echosvc" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestListIncludesRegisteredCommand(t *testing.T) {
	addr, stop := startTestService(t, func(svc *Service) {
		svc.Register("echo", func(args []string) ([]string, error) {
			return args, nil
		}, metadata.Metadata{
			Name:      "echo",
			Timeout:   metadata.Default,
			Arguments: metadata.VariableLength(metadata.Argument{Name: "value"}),
		})
	})
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "list"})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !reply.OK {
		t.Fatalf("expected OK, got %+v", reply)
	}
	found := false
	for _, name := range reply.Results {
		if name == "echo" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected echo in %v", reply.Results)
	}
}

func TestEchoRoundTrip(t *testing.T) {
	addr, stop := startTestService(t, func(svc *Service) {
		svc.Register("echo", func(args []string) ([]string, error) {
			return args, nil
		}, metadata.Metadata{Name: "echo", Timeout: metadata.Default, Arguments: metadata.VariableLength(metadata.Argument{Name: "value"})})
	})
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "echo", Arguments: []string{"a", "b"}})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !reply.OK || len(reply.Results) != 2 || reply.Results[0] != "a" || reply.Results[1] != "b" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestUnknownCommandCarriesVerbatimName(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "nope"})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if reply.OK || reply.Code != wire.CodeUnknownCommand || reply.Message != "nope" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestMetadataBuiltinRejectsEmptyArguments(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "metadata"})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if reply.OK || reply.Code != wire.CodeUncategorised {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestMetadataBuiltinShortCircuitsOnFirstUnknown(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "metadata", Arguments: []string{"describe", "bogus"}})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if reply.OK || reply.Code != wire.CodeUnknownCommand || reply.Message != "bogus" {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestMetadataBuiltinReturnsDecodableDocument(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "metadata", Arguments: []string{"describe"}})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if !reply.OK || len(reply.Results) != 1 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	var doc map[string]any
	if err := json.Unmarshal([]byte(reply.Results[0]), &doc); err != nil {
		t.Fatalf("metadata document did not decode: %v", err)
	}
	if doc["name"] != "describe" {
		t.Fatalf("unexpected document: %v", doc)
	}
}

func TestHandlerFailureIsClassifiedUncategorised(t *testing.T) {
	addr, stop := startTestService(t, func(svc *Service) {
		svc.Register("boom", func(args []string) ([]string, error) {
			panic("kaboom")
		}, metadata.Metadata{Name: "boom", Timeout: metadata.Default, Arguments: metadata.NoArguments()})
	})
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	conn.SendRequest(wire.Request{Command: "boom"})
	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if reply.OK || reply.Code != wire.CodeUncategorised {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestSequentialRequestsOnSameConnection(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	for i := 0; i < 3; i++ {
		conn.SendRequest(wire.Request{Command: "list"})
		reply, err := conn.ReceiveReply()
		if err != nil {
			t.Fatalf("receive %d: %v", i, err)
		}
		if !reply.OK {
			t.Fatalf("unexpected reply %d: %+v", i, reply)
		}
	}
}

func TestMalformedRequestDoesNotEndConnection(t *testing.T) {
	addr, stop := startTestService(t, nil)
	defer stop()

	conn := dial(t, addr)
	defer conn.Close()

	// A command frame that isn't valid UTF-8: a decode-stage error, not a
	// connection close, so it must be answered and the connection must
	// stay usable for the next request.
	if err := wire.WriteMessage(conn, wire.KindRequest, [][]byte{{0xff, 0xfe}}); err != nil {
		t.Fatalf("write malformed request: %v", err)
	}

	reply, err := conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive: %v", err)
	}
	if reply.OK || reply.Code != wire.CodeUncategorised {
		t.Fatalf("expected ERROR_UNCATEGORISED for malformed request, got %+v", reply)
	}

	conn.SendRequest(wire.Request{Command: "list"})
	reply, err = conn.ReceiveReply()
	if err != nil {
		t.Fatalf("receive after malformed request: %v", err)
	}
	if !reply.OK {
		t.Fatalf("expected connection to still be usable, got %+v", reply)
	}
}

func TestShutdownStopsRun(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	svc := New(echoDescriptor{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, listener) }()

	cancel()
	listener.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after shutdown")
	}
}
