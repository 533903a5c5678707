// Package metadata implements the self-describing command record that
// service.Service exposes reflectively and client.Client probes before every
// call.
//
// Grounded on original_source/metadata.py: Timeout is the closed enumeration
// of receive-deadline presets, Argument/ArgumentShape is the tagged union
// over a command's argument shape, and Metadata is the full record. All three
// round-trip through a string-keyed document (encoding/json under the hood),
// matching metadata.py's to_dictionary/from_dictionary.
package metadata

import (
	"encoding/json"
	"fmt"
)

// Timeout is a closed enumeration of receive-deadline presets, expressed in
// milliseconds on the wire.
type Timeout int

const (
	Default Timeout = 300
	Long    Timeout = 30000
)

// Milliseconds returns the receive deadline this timeout class represents.
func (t Timeout) Milliseconds() int { return int(t) }

// FromWireTimeout rejects any integer that isn't a recognised Timeout value,
// per spec.md §3: "values not in the enumeration are rejected as malformed
// metadata."
func FromWireTimeout(value int) (Timeout, error) {
	switch Timeout(value) {
	case Default, Long:
		return Timeout(value), nil
	default:
		return 0, fmt.Errorf("metadata: unrecognised timeout value %d", value)
	}
}

// Argument describes a single command argument.
type Argument struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ShapeKind discriminates the three ArgumentShape cases.
type ShapeKind int

const (
	ShapeNone ShapeKind = iota
	ShapeVariableLength
	ShapeList
)

// ArgumentShape is a tagged variant over exactly three cases: the command
// takes no arguments, zero-or-more arguments of one shared shape, or an
// exact, positionally-matched list of arguments.
type ArgumentShape struct {
	Kind  ShapeKind
	Inner Argument   // valid when Kind == ShapeVariableLength
	Items []Argument // valid when Kind == ShapeList
}

// NoArguments constructs the "none" case.
func NoArguments() ArgumentShape {
	return ArgumentShape{Kind: ShapeNone}
}

// VariableLength constructs the "variable_length" case.
func VariableLength(inner Argument) ArgumentShape {
	return ArgumentShape{Kind: ShapeVariableLength, Inner: inner}
}

// ArgumentList constructs the "list" case. A nil or empty slice is still a
// "list" shape, distinct from ShapeNone — an explicitly empty positional
// list differs from a command declared to take no arguments at all.
func ArgumentList(items []Argument) ArgumentShape {
	return ArgumentShape{Kind: ShapeList, Items: items}
}

type argumentShapeDocument struct {
	Type      string     `json:"type"`
	Argument  *Argument  `json:"argument,omitempty"`
	Arguments []Argument `json:"arguments,omitempty"`
}

// ToDocument converts the shape to its wire document form.
func (s ArgumentShape) ToDocument() map[string]any {
	switch s.Kind {
	case ShapeNone:
		return map[string]any{"type": "none"}
	case ShapeVariableLength:
		return map[string]any{
			"type":     "variable_length",
			"argument": s.Inner,
		}
	case ShapeList:
		items := s.Items
		if items == nil {
			items = []Argument{}
		}
		return map[string]any{
			"type":      "list",
			"arguments": items,
		}
	default:
		panic(fmt.Sprintf("metadata: unreachable ArgumentShape kind %d", s.Kind))
	}
}

// ArgumentShapeFromDocument decodes a document produced by ToDocument (after
// a JSON round trip, so values arrive as map[string]any / []any). Unknown
// discriminator tags are rejected, per spec.md §4.2.
func ArgumentShapeFromDocument(doc map[string]any) (ArgumentShape, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return ArgumentShape{}, fmt.Errorf("metadata: re-encoding argument shape document: %w", err)
	}
	var decoded argumentShapeDocument
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ArgumentShape{}, fmt.Errorf("metadata: decoding argument shape document: %w", err)
	}

	switch decoded.Type {
	case "none":
		return NoArguments(), nil
	case "variable_length":
		if decoded.Argument == nil {
			return ArgumentShape{}, fmt.Errorf("metadata: variable_length shape missing argument")
		}
		return VariableLength(*decoded.Argument), nil
	case "list":
		return ArgumentList(decoded.Arguments), nil
	default:
		return ArgumentShape{}, fmt.Errorf("metadata: unrecognised argument shape type %q", decoded.Type)
	}
}

// Metadata is a command's full, self-describing record.
type Metadata struct {
	Name        string
	Description string
	Timeout     Timeout
	Arguments   ArgumentShape
	Returns     string
	Errors      string
}

type document struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Timeout     int            `json:"timeout"`
	Arguments   map[string]any `json:"arguments"`
	Returns     string         `json:"returns"`
	Errors      string         `json:"errors"`
}

// ToDocument converts m to a string-keyed document suitable for JSON
// encoding onto the wire (spec.md §4.2).
func (m Metadata) ToDocument() map[string]any {
	return map[string]any{
		"name":        m.Name,
		"description": m.Description,
		"timeout":     int(m.Timeout),
		"arguments":   m.Arguments.ToDocument(),
		"returns":     m.Returns,
		"errors":      m.Errors,
	}
}

// FromDocument is the inverse of ToDocument.
func FromDocument(doc map[string]any) (Metadata, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return Metadata{}, fmt.Errorf("metadata: re-encoding document: %w", err)
	}
	var decoded document
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return Metadata{}, fmt.Errorf("metadata: decoding document: %w", err)
	}

	timeout, err := FromWireTimeout(decoded.Timeout)
	if err != nil {
		return Metadata{}, err
	}
	shape, err := ArgumentShapeFromDocument(decoded.Arguments)
	if err != nil {
		return Metadata{}, err
	}

	return Metadata{
		Name:        decoded.Name,
		Description: decoded.Description,
		Timeout:     timeout,
		Arguments:   shape,
		Returns:     decoded.Returns,
		Errors:      decoded.Errors,
	}, nil
}

// MarshalJSON encodes the metadata document as JSON, for use as a single
// wire frame in a `metadata` command's reply (spec.md §4.4).
func (m Metadata) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.ToDocument())
}

// UnmarshalMetadataJSON decodes a single JSON-encoded metadata document, as
// returned by the `metadata` command.
func UnmarshalMetadataJSON(data []byte) (Metadata, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Metadata{}, fmt.Errorf("metadata: invalid JSON document: %w", err)
	}
	return FromDocument(doc)
}
