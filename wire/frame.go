// Package wire implements the framing layer for ipcrpc.
//
// A logical message is an ordered sequence of byte-string frames delivered
// atomically between exactly two peers (the reference transport is a ZeroMQ
// REQ/REP pair; this package's concrete form is a bespoke length-delimited
// protocol over TCP). It solves the same sticky-packet problem a raw TCP
// stream always has: the receiver reads a fixed header first, learns how
// many frames follow and how long each is, then reads exactly that many
// bytes per frame.
//
// Frame format:
//
//	0      3  4  5  6    8
//	┌──────┬──┬──┬──┬────┬─────────────────────────────┐
//	│magic │v │k │ r│ n  │ frame0Len(4) frame0 ...      │
//	│ ipc  │01│  │  │u16 │ frame1Len(4) frame1 ...  ... │
//	└──────┴──┴──┴──┴────┴─────────────────────────────┘
//
// magic identifies the protocol (rejecting, e.g., a stray HTTP client hitting
// the port); k is the MessageKind; r is reserved for future use; n is the
// frame count. There is no sequence number: this protocol carries at most one
// in-flight exchange per connection, so nothing needs routing.
package wire

import (
	"encoding/binary"
	"fmt"
	"io"
)

const (
	magicByte0 byte = 0x69 // 'i'
	magicByte1 byte = 0x70 // 'p'
	magicByte2 byte = 0x63 // 'c'
	version    byte = 0x01

	headerSize = 8 // 3 magic + 1 version + 1 kind + 1 reserved + 2 frame count

	// MaxFrames bounds the frame count field so a corrupt or hostile header
	// can't make the receiver allocate an enormous frame slice up front.
	MaxFrames = 1<<16 - 1
	// MaxFrameLen bounds a single frame's length for the same reason.
	MaxFrameLen = 64 << 20
)

// MessageKind distinguishes request, success-reply, and error-reply frames.
type MessageKind byte

const (
	KindRequest MessageKind = 0
	KindOK      MessageKind = 1
	KindError   MessageKind = 2
)

func (k MessageKind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindOK:
		return "ok"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// Message is a decoded multi-frame wire message: a kind tag plus its frames.
type Message struct {
	Kind   MessageKind
	Frames [][]byte
}

// WriteMessage writes a complete message (header + frames) to w.
//
// The caller must serialise writes to a shared connection itself — this
// function performs one Write for the header plus one or two per frame and
// does not buffer them into a single syscall.
func WriteMessage(w io.Writer, kind MessageKind, frames [][]byte) error {
	if len(frames) > MaxFrames {
		return fmt.Errorf("wire: too many frames: %d", len(frames))
	}

	header := make([]byte, headerSize)
	header[0] = magicByte0
	header[1] = magicByte1
	header[2] = magicByte2
	header[3] = version
	header[4] = byte(kind)
	header[5] = 0 // reserved
	binary.BigEndian.PutUint16(header[6:8], uint16(len(frames)))

	if _, err := w.Write(header); err != nil {
		return err
	}

	lenBuf := make([]byte, 4)
	for _, frame := range frames {
		if len(frame) > MaxFrameLen {
			return fmt.Errorf("wire: frame too long: %d bytes", len(frame))
		}
		binary.BigEndian.PutUint32(lenBuf, uint32(len(frame)))
		if _, err := w.Write(lenBuf); err != nil {
			return err
		}
		if len(frame) > 0 {
			if _, err := w.Write(frame); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReadMessage reads one complete message from r.
func ReadMessage(r io.Reader) (*Message, error) {
	header := make([]byte, headerSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != magicByte0 || header[1] != magicByte1 || header[2] != magicByte2 {
		return nil, fmt.Errorf("wire: invalid magic number: %x", header[0:3])
	}
	if header[3] != version {
		return nil, fmt.Errorf("wire: unsupported version: %d", header[3])
	}

	kind := MessageKind(header[4])
	switch kind {
	case KindRequest, KindOK, KindError:
	default:
		return nil, fmt.Errorf("wire: unsupported message kind: %d", header[4])
	}

	frameCount := int(binary.BigEndian.Uint16(header[6:8]))

	frames := make([][]byte, 0, frameCount)
	lenBuf := make([]byte, 4)
	for i := 0; i < frameCount; i++ {
		if _, err := io.ReadFull(r, lenBuf); err != nil {
			return nil, err
		}
		frameLen := binary.BigEndian.Uint32(lenBuf)
		if frameLen > MaxFrameLen {
			return nil, fmt.Errorf("wire: frame too long: %d bytes", frameLen)
		}
		frame := make([]byte, frameLen)
		if frameLen > 0 {
			if _, err := io.ReadFull(r, frame); err != nil {
				return nil, err
			}
		}
		frames = append(frames, frame)
	}

	return &Message{Kind: kind, Frames: frames}, nil
}
