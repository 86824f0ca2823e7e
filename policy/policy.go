// Package policy decides which neighbors receive a forwarded update or
// withdrawal, based on the relationship of the neighbor the message
// arrived from.
package policy

import "github.com/bgpfix/routed/neighbor"

// Targets returns the addresses that should receive a message which arrived
// from the neighbor at fromAddr:
//
//   - if fromAddr is a customer, every other configured neighbor;
//   - otherwise (peer or provider), only customers.
func Targets(nt *neighbor.Table, fromAddr string) []string {
	from, ok := nt.Lookup(fromAddr)
	if !ok {
		return nil
	}

	var out []string
	nt.Each(func(n *neighbor.Neighbor) {
		if n.Addr == fromAddr {
			return
		}
		if from.Relation == neighbor.CUSTOMER || n.Relation == neighbor.CUSTOMER {
			out = append(out, n.Addr)
		}
	})
	return out
}
