// Package neighbor tracks each neighbor router's address, commercial
// relationship, and transport handle. Populated once at startup and never
// mutated afterward, so no locking is required.
package neighbor

import (
	"fmt"

	"github.com/bgpfix/routed/ipaddr"
	"github.com/bgpfix/routed/transport"
)

// Relation is the commercial relationship of a neighbor to this router.
type Relation int

const (
	// RELATION_INVALID is the zero value; never assigned to a real neighbor.
	RELATION_INVALID Relation = iota
	CUSTOMER
	PEER
	PROVIDER
)

// String renders the relation using the wire abbreviation.
func (r Relation) String() string {
	switch r {
	case CUSTOMER:
		return "cust"
	case PEER:
		return "peer"
	case PROVIDER:
		return "prov"
	default:
		return "?"
	}
}

// ParseRelation parses one of "cust", "peer", "prov".
func ParseRelation(s string) (Relation, error) {
	switch s {
	case "cust":
		return CUSTOMER, nil
	case "peer":
		return PEER, nil
	case "prov":
		return PROVIDER, nil
	default:
		return RELATION_INVALID, fmt.Errorf("neighbor: invalid relation %q", s)
	}
}

// Neighbor is one configured BGP-like neighbor router.
type Neighbor struct {
	Addr     string // dotted-quad text, as configured
	Num      uint32 // Addr parsed once at startup
	Relation Relation
	Conn     transport.Conn
}

// LocalAddr is the router's own address on the link to this neighbor.
func (n *Neighbor) LocalAddr() string {
	return ipaddr.LocalAddr(n.Addr)
}

// Spec describes one neighbor to dial at startup.
type Spec struct {
	Addr     string
	Relation Relation
}

// Table is the immutable set of configured neighbors, keyed by address.
type Table struct {
	byAddr map[string]*Neighbor
	order  []string // dial order, preserved for deterministic iteration
}

// NewTable dials specs in order using dial and returns the resulting table.
// If any dial fails, NewTable returns the error and no partial table.
func NewTable(specs []Spec, dial func(addr string) (transport.Conn, error)) (*Table, error) {
	t := &Table{byAddr: make(map[string]*Neighbor, len(specs))}
	for _, sp := range specs {
		num, err := ipaddr.Parse(sp.Addr)
		if err != nil {
			return nil, fmt.Errorf("neighbor: %s: %w", sp.Addr, err)
		}
		conn, err := dial(sp.Addr)
		if err != nil {
			return nil, fmt.Errorf("neighbor: dial %s: %w", sp.Addr, err)
		}
		t.byAddr[sp.Addr] = &Neighbor{
			Addr:     sp.Addr,
			Num:      num,
			Relation: sp.Relation,
			Conn:     conn,
		}
		t.order = append(t.order, sp.Addr)
	}
	return t, nil
}

// Lookup returns the neighbor at addr, if configured.
func (t *Table) Lookup(addr string) (*Neighbor, bool) {
	n, ok := t.byAddr[addr]
	return n, ok
}

// Each calls fn for every neighbor, in dial order.
func (t *Table) Each(fn func(*Neighbor)) {
	for _, addr := range t.order {
		fn(t.byAddr[addr])
	}
}

// Len returns the number of configured neighbors.
func (t *Table) Len() int {
	return len(t.order)
}

// Send writes b as a single framed message to the neighbor at addr.
func (t *Table) Send(addr string, b []byte) error {
	n, ok := t.byAddr[addr]
	if !ok {
		return fmt.Errorf("neighbor: unknown address %s", addr)
	}
	return n.Conn.Send(b)
}

// ByConn finds the neighbor owning conn, used by the dispatcher to identify
// the source of an inbound frame.
func (t *Table) ByConn(conn transport.Conn) (*Neighbor, bool) {
	for _, addr := range t.order {
		n := t.byAddr[addr]
		if n.Conn == conn {
			return n, true
		}
	}
	return nil, false
}
