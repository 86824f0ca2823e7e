// Package aggregate coalesces numerically adjacent routes with identical
// attributes for forwarding-table dumps. Aggregate is a pure function of
// the routes it is given; it never mutates the RIB.
package aggregate

import (
	"encoding/binary"
	"net/netip"
	"sort"

	"github.com/bgpfix/routed/ipaddr"
	"github.com/bgpfix/routed/rib"
	"go4.org/netipx"
)

// Entry is one coalesced line of a table dump.
type Entry struct {
	Network string
	Netmask string
	Peer    string
}

// Aggregate coalesces routes learned from a single neighbor. Callers should
// invoke it once per neighbor, independently of every other neighbor's
// routes. Routes are first split into groups sharing identical (localpref,
// selfOrigin, ASPath, origin); coalescing then runs separately within each
// group, so routes with different attributes are never combined into one
// entry even if their prefixes are adjacent or one contains the other.
func Aggregate(peer string, routes []*rib.Route) []Entry {
	var lines []line
	for _, group := range groupByAttrs(routes) {
		var b netipx.IPSetBuilder
		for _, r := range group {
			b.AddPrefix(toPrefix(r))
		}
		set, err := b.IPSet()
		if err != nil {
			continue // AddPrefix only ever receives prefixes built from valid routes
		}
		for _, p := range set.Prefixes() {
			lines = append(lines, lineFromPrefix(p, peer))
		}
	}

	sort.Slice(lines, func(i, j int) bool {
		if lines[i].num != lines[j].num {
			return lines[i].num < lines[j].num
		}
		return lines[i].bits < lines[j].bits
	})

	out := make([]Entry, len(lines))
	for i, l := range lines {
		out[i] = l.entry
	}
	return out
}

// groupByAttrs partitions routes into runs that share identical
// (localpref, selfOrigin, ASPath, origin). Linear scan against each
// group's first member is fine: RIB entries per neighbor are small.
func groupByAttrs(routes []*rib.Route) [][]*rib.Route {
	var groups [][]*rib.Route
	for _, r := range routes {
		placed := false
		for i, g := range groups {
			if g[0].SameAttrs(r) {
				groups[i] = append(g, r)
				placed = true
				break
			}
		}
		if !placed {
			groups = append(groups, []*rib.Route{r})
		}
	}
	return groups
}

// line pairs a coalesced Entry with the numeric key used to order it in
// the final output.
type line struct {
	num   uint32
	bits  int
	entry Entry
}

func toPrefix(r *rib.Route) netip.Prefix {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], r.NetworkNum)
	return netip.PrefixFrom(netip.AddrFrom4(b), r.PrefixLen)
}

func lineFromPrefix(p netip.Prefix, peer string) line {
	addr := p.Addr().As4()
	num := binary.BigEndian.Uint32(addr[:])
	return line{
		num:  num,
		bits: p.Bits(),
		entry: Entry{
			Network: ipaddr.String(num),
			Netmask: ipaddr.String(maskFromBits(p.Bits())),
			Peer:    peer,
		},
	}
}

// maskFromBits renders a prefix length as a left-contiguous netmask.
func maskFromBits(bits int) uint32 {
	if bits == 0 {
		return 0
	}
	return ^uint32(0) << uint(32-bits)
}
