package wire

import (
	"fmt"
	"unicode/utf8"
)

// Error-code tokens carried in the second frame of an ERROR reply
// (spec.md §6).
const (
	CodeUnknownCommand = "ERROR_UNKNOWN_COMMAND"
	CodeUncategorised  = "ERROR_UNCATEGORISED"
)

// Request is the client→service logical message: a command name followed by
// its positional, UTF-8 arguments.
type Request struct {
	Command   string
	Arguments []string
}

// EncodeRequest turns a Request into wire frames: [command, arg0, arg1, ...].
func EncodeRequest(req Request) [][]byte {
	frames := make([][]byte, 0, 1+len(req.Arguments))
	frames = append(frames, []byte(req.Command))
	for _, arg := range req.Arguments {
		frames = append(frames, []byte(arg))
	}
	return frames
}

// DecodeRequest parses a KindRequest message's frames into a Request.
//
// An empty message is a protocol error (spec.md §4.1): there must be at
// least a command-name frame.
func DecodeRequest(frames [][]byte) (Request, error) {
	if len(frames) == 0 {
		return Request{}, fmt.Errorf("wire: empty request message")
	}
	if !utf8.Valid(frames[0]) {
		return Request{}, fmt.Errorf("wire: command frame is not valid UTF-8")
	}
	args := make([]string, len(frames)-1)
	for i, frame := range frames[1:] {
		if !utf8.Valid(frame) {
			return Request{}, fmt.Errorf("wire: argument %d is not valid UTF-8", i)
		}
		args[i] = string(frame)
	}
	return Request{Command: string(frames[0]), Arguments: args}, nil
}

// Reply is the service→client logical message: either a success carrying
// zero or more result strings, or an error carrying a code and a message.
type Reply struct {
	OK      bool
	Results []string // valid when OK
	Code    string   // valid when !OK
	Message string   // valid when !OK
}

// EncodeOK builds the success reply frames: ["OK", ret0, ret1, ...].
func EncodeOK(results []string) [][]byte {
	frames := make([][]byte, 0, 1+len(results))
	frames = append(frames, []byte("OK"))
	for _, r := range results {
		frames = append(frames, []byte(r))
	}
	return frames
}

// EncodeError builds the error reply frames: ["ERROR", code, message].
func EncodeError(code, message string) [][]byte {
	return [][]byte{[]byte("ERROR"), []byte(code), []byte(message)}
}

// DecodeReply parses a reply message's frames into a Reply, enforcing the
// shape rules in spec.md §4.1: the first frame must be "OK" or "ERROR", and
// an "ERROR" reply must have exactly three frames.
func DecodeReply(frames [][]byte) (Reply, error) {
	if len(frames) == 0 {
		return Reply{}, fmt.Errorf("wire: empty reply message")
	}

	switch string(frames[0]) {
	case "OK":
		results := make([]string, len(frames)-1)
		for i, frame := range frames[1:] {
			if !utf8.Valid(frame) {
				return Reply{}, fmt.Errorf("wire: result %d is not valid UTF-8", i)
			}
			results[i] = string(frame)
		}
		return Reply{OK: true, Results: results}, nil
	case "ERROR":
		if len(frames) != 3 {
			return Reply{}, fmt.Errorf("wire: malformed error reply: %d frames", len(frames))
		}
		if !utf8.Valid(frames[1]) || !utf8.Valid(frames[2]) {
			return Reply{}, fmt.Errorf("wire: error code or message is not valid UTF-8")
		}
		return Reply{OK: false, Code: string(frames[1]), Message: string(frames[2])}, nil
	default:
		return Reply{}, fmt.Errorf("wire: reply has unknown leading frame %q", frames[0])
	}
}
