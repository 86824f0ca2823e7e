// Package rib holds the Routing Information Base: a per-neighbor list of
// learned routes plus the append-only update/revocation logs.
package rib

import "github.com/bgpfix/routed/ipaddr"

// Origin ranks a route's origin type; lower is preferred by the selector.
type Origin int

const (
	IGP Origin = iota
	EGP
	UNK
)

// String renders the wire text for Origin.
func (o Origin) String() string {
	switch o {
	case IGP:
		return "IGP"
	case EGP:
		return "EGP"
	case UNK:
		return "UNK"
	default:
		return "UNK"
	}
}

// ParseOrigin parses one of "IGP", "EGP", "UNK".
func ParseOrigin(s string) Origin {
	switch s {
	case "IGP":
		return IGP
	case "EGP":
		return EGP
	default:
		return UNK
	}
}

// Prefix identifies a route by its network/netmask pair, the unit that
// withdrawals and coalescing operate on.
type Prefix struct {
	Network string
	Netmask string
}

// Route is one RIB entry, scoped to the neighbor it was learned from.
// Network/Netmask are parsed once at ingress into 32-bit integers
// (NetworkNum, MaskNum, PrefixLen); the text forms are kept only for
// echoing in outgoing messages.
type Route struct {
	Network string
	Netmask string

	NetworkNum uint32
	MaskNum    uint32
	PrefixLen  int

	LocalPref  int
	SelfOrigin bool
	ASPath     []int
	Origin     Origin
}

// NewRoute parses network/netmask once and builds a Route. Netmask must be
// a left-contiguous run of 1-bits.
func NewRoute(network, netmask string, localPref int, selfOrigin bool, asPath []int, origin Origin) (*Route, error) {
	netNum, err := ipaddr.Parse(network)
	if err != nil {
		return nil, err
	}
	maskNum, err := ipaddr.Parse(netmask)
	if err != nil {
		return nil, err
	}
	plen, err := ipaddr.PrefixLen(maskNum)
	if err != nil {
		return nil, err
	}
	return &Route{
		Network:    network,
		Netmask:    netmask,
		NetworkNum: netNum,
		MaskNum:    maskNum,
		PrefixLen:  plen,
		LocalPref:  localPref,
		SelfOrigin: selfOrigin,
		ASPath:     append([]int(nil), asPath...),
		Origin:     origin,
	}, nil
}

// Prefix returns the (network, netmask) key of r.
func (r *Route) Prefix() Prefix {
	return Prefix{Network: r.Network, Netmask: r.Netmask}
}

// Matches reports whether addr falls within r's network/netmask.
func (r *Route) Matches(addr uint32) bool {
	return ipaddr.Contains(r.NetworkNum, r.MaskNum, addr)
}

// SameAttrs reports whether r and other share (localpref, selfOrigin,
// ASPath, origin) — the aggregator's merge precondition.
func (r *Route) SameAttrs(other *Route) bool {
	if r.LocalPref != other.LocalPref ||
		r.SelfOrigin != other.SelfOrigin ||
		r.Origin != other.Origin ||
		len(r.ASPath) != len(other.ASPath) {
		return false
	}
	for i := range r.ASPath {
		if r.ASPath[i] != other.ASPath[i] {
			return false
		}
	}
	return true
}
