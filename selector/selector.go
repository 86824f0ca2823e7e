// Package selector implements the best-route pipeline: longest-match
// lookup, five-stage tie-break, relationship filter, and a final
// longest-prefix pick. Select is a pure function of its inputs; it never
// mutates the RIB or the neighbor table.
package selector

import (
	"github.com/bgpfix/routed/neighbor"
	"github.com/bgpfix/routed/rib"
)

type candidate struct {
	neighbor string
	num      uint32 // neighbor address, numeric, for stage 6/7 ordering
	route    *rib.Route
}

// Select runs the eight-stage best-route pipeline against rb for a packet
// arriving on srcAddr destined for daddr, and returns the neighbor to
// forward to, or ok=false for "no route".
func Select(nt *neighbor.Table, rb *rib.RIB, srcAddr string, daddr uint32) (*neighbor.Neighbor, bool) {
	// stage 1: matching candidate set (the actual longest-prefix pick
	// happens in stage 8)
	var cands []candidate
	rb.Iter(func(nbr string, route *rib.Route) bool {
		if route.Matches(daddr) {
			n, ok := nt.Lookup(nbr)
			if !ok {
				return true // route learned from a neighbor no longer configured
			}
			cands = append(cands, candidate{neighbor: nbr, num: n.Num, route: route})
		}
		return true
	})
	if len(cands) == 0 {
		return nil, false
	}

	// stage 2: highest local-pref
	cands = filterMax(cands, func(c candidate) int { return c.route.LocalPref })

	// stage 3: self-origin preferred
	if hasSelfOrigin(cands) {
		cands = keepSelfOrigin(cands)
	}

	// stage 4: shortest AS-path
	cands = filterMin(cands, func(c candidate) int { return len(c.route.ASPath) })

	// stage 5: origin rank, IGP < EGP < UNK
	cands = filterMin(cands, func(c candidate) int { return int(c.route.Origin) })

	// stage 6: lowest neighbor IP, ascending — establishes ordering only
	sortByNum(cands)

	// stage 7: relationship filter, applied AFTER tie-breaking — a single
	// surviving candidate can still be filtered away here
	src, ok := nt.Lookup(srcAddr)
	if !ok {
		return nil, false
	}
	if src.Relation != neighbor.CUSTOMER {
		cands = filterCustomers(nt, cands)
	}
	if len(cands) == 0 {
		return nil, false
	}

	// stage 8: longest-prefix-match pick among survivors, ties broken by
	// the stage-6 ordering (first in cands wins on equal PrefixLen)
	best := cands[0]
	for _, c := range cands[1:] {
		if c.route.PrefixLen > best.route.PrefixLen {
			best = c
		}
	}

	n, ok := nt.Lookup(best.neighbor)
	return n, ok
}

func filterMax(cands []candidate, key func(candidate) int) []candidate {
	max := key(cands[0])
	for _, c := range cands[1:] {
		if v := key(c); v > max {
			max = v
		}
	}
	out := cands[:0]
	for _, c := range cands {
		if key(c) == max {
			out = append(out, c)
		}
	}
	return out
}

func filterMin(cands []candidate, key func(candidate) int) []candidate {
	min := key(cands[0])
	for _, c := range cands[1:] {
		if v := key(c); v < min {
			min = v
		}
	}
	out := cands[:0]
	for _, c := range cands {
		if key(c) == min {
			out = append(out, c)
		}
	}
	return out
}

func hasSelfOrigin(cands []candidate) bool {
	for _, c := range cands {
		if c.route.SelfOrigin {
			return true
		}
	}
	return false
}

func keepSelfOrigin(cands []candidate) []candidate {
	out := cands[:0]
	for _, c := range cands {
		if c.route.SelfOrigin {
			out = append(out, c)
		}
	}
	return out
}

func sortByNum(cands []candidate) {
	// insertion sort: candidate counts are always small (per-router RIBs)
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].num < cands[j-1].num; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
}

// filterCustomers keeps only candidates whose next-hop neighbor is a
// customer.
func filterCustomers(nt *neighbor.Table, cands []candidate) []candidate {
	out := cands[:0]
	for _, c := range cands {
		if n, ok := nt.Lookup(c.neighbor); ok && n.Relation == neighbor.CUSTOMER {
			out = append(out, c)
		}
	}
	return out
}
