// Package msg implements the wire envelope and payload codecs for the six
// message kinds exchanged with neighbors, decoded as a tagged variant
// switched on the top-level "type" field rather than left as untyped
// dynamic dispatch.
package msg

import (
	"errors"
	"fmt"

	"github.com/bgpfix/routed/json"
)

// Type is the wire "type" field, one of six known values.
type Type int

const (
	TYPE_INVALID Type = iota
	DATA
	DUMP
	UPDATE
	REVOKE
	TABLE
	NOROUTE
)

// String renders the wire text for Type.
func (t Type) String() string {
	switch t {
	case DATA:
		return "data"
	case DUMP:
		return "dump"
	case UPDATE:
		return "update"
	case REVOKE:
		return "revoke"
	case TABLE:
		return "table"
	case NOROUTE:
		return "no route"
	default:
		return "?"
	}
}

// ParseType parses the wire "type" string. An unrecognized type is fatal:
// the caller must close the protocol.
func ParseType(s string) (Type, error) {
	switch s {
	case "data":
		return DATA, nil
	case "dump":
		return DUMP, nil
	case "update":
		return UPDATE, nil
	case "revoke":
		return REVOKE, nil
	case "table":
		return TABLE, nil
	case "no route":
		return NOROUTE, nil
	default:
		return TYPE_INVALID, fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
}

var (
	// ErrUnknownType is fatal: the protocol is closed.
	ErrUnknownType = errors.New("msg: unknown message type")
	ErrMalformed   = errors.New("msg: malformed message")
)

// Msg is the envelope common to every message.
type Msg struct {
	Src  string
	Dst  string
	Type Type

	// Exactly one of these is populated, matching Type. Raw holds the
	// original payload bytes for DATA (transparently forwarded, opaque).
	Update  *Update
	Revoke  []Prefix
	Table   []TableEntry
	Raw     []byte // DATA payload, or the raw "msg" object for DUMP/NOROUTE

	// wire is the full verbatim message as received, retained for the RIB's
	// update/revocation logs.
	wire []byte
}

// Wire returns the verbatim bytes this Msg was decoded from, or nil for a
// locally constructed Msg not yet marshaled.
func (m *Msg) Wire() []byte {
	return m.wire
}

// Decode parses raw as one Msg. An unrecognized type or malformed payload
// returns an error; the caller must treat both as fatal.
func Decode(raw []byte) (*Msg, error) {
	m := &Msg{wire: raw}
	m.Src = json.GetString(raw, "src")
	m.Dst = json.GetString(raw, "dst")

	typRaw := json.Get(raw, "type")
	if typRaw == nil {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}
	typ, err := ParseType(json.SQ(typRaw))
	if err != nil {
		return nil, err
	}
	m.Type = typ

	payload := json.Get(raw, "msg")
	if payload == nil {
		return nil, fmt.Errorf("%w: missing msg", ErrMalformed)
	}

	switch typ {
	case UPDATE:
		u := &Update{}
		if err := u.FromJSON(payload); err != nil {
			return nil, fmt.Errorf("%w: update: %v", ErrMalformed, err)
		}
		m.Update = u
	case REVOKE:
		prefixes, err := decodeRevoke(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: revoke: %v", ErrMalformed, err)
		}
		m.Revoke = prefixes
	case TABLE:
		entries, err := decodeTable(payload)
		if err != nil {
			return nil, fmt.Errorf("%w: table: %v", ErrMalformed, err)
		}
		m.Table = entries
	case DATA, DUMP, NOROUTE:
		m.Raw = append([]byte(nil), payload...)
	}

	return m, nil
}

// Encode serializes m to its wire form.
func Encode(m *Msg) []byte {
	dst := make([]byte, 0, 128)
	dst = append(dst, '{')
	dst = append(dst, `"src":`...)
	dst = json.String(dst, m.Src)
	dst = append(dst, `,"dst":`...)
	dst = json.String(dst, m.Dst)
	dst = append(dst, `,"type":`...)
	dst = json.String(dst, m.Type.String())
	dst = append(dst, `,"msg":`...)

	switch m.Type {
	case UPDATE:
		dst = m.Update.ToJSON(dst)
	case REVOKE:
		dst = encodeRevoke(dst, m.Revoke)
	case TABLE:
		dst = encodeTable(dst, m.Table)
	case DATA, DUMP, NOROUTE:
		if len(m.Raw) == 0 {
			dst = append(dst, '{', '}')
		} else {
			dst = append(dst, m.Raw...)
		}
	}

	dst = append(dst, '}')
	return dst
}

// NewDump builds an outbound "dump" request.
func NewDump(src, dst string) *Msg {
	return &Msg{Src: src, Dst: dst, Type: DUMP, Raw: []byte("{}")}
}

// NewNoRoute builds an outbound "no route" reply.
func NewNoRoute(src, dst string) *Msg {
	return &Msg{Src: src, Dst: dst, Type: NOROUTE, Raw: []byte("{}")}
}

// NewTable builds an outbound "table" reply.
func NewTable(src, dst string, entries []TableEntry) *Msg {
	return &Msg{Src: src, Dst: dst, Type: TABLE, Table: entries}
}

// NewData wraps an opaque forwarded payload.
func NewData(src, dst string, raw []byte) *Msg {
	return &Msg{Src: src, Dst: dst, Type: DATA, Raw: raw}
}

// NewUpdate builds an outbound "update" message.
func NewUpdate(src, dst string, u *Update) *Msg {
	return &Msg{Src: src, Dst: dst, Type: UPDATE, Update: u}
}

// NewRevoke builds an outbound "revoke" message.
func NewRevoke(src, dst string, prefixes []Prefix) *Msg {
	return &Msg{Src: src, Dst: dst, Type: REVOKE, Revoke: prefixes}
}
