package rib

// LogEntry is one verbatim update or revocation message, kept for future
// replay tooling but never consulted by the selector.
type LogEntry struct {
	Neighbor string
	Raw      []byte
}

// RIB is the mapping neighbor -> ordered list of learned routes, plus the
// append-only update and revocation logs. The Selector and Aggregator are
// pure functions of a RIB; only Insert/Withdraw/LogUpdate/LogRevoke mutate
// it, and only the single dispatcher goroutine ever calls them.
type RIB struct {
	routes    map[string][]*Route
	updateLog []LogEntry
	revokeLog []LogEntry
}

// New returns an empty RIB.
func New() *RIB {
	return &RIB{routes: make(map[string][]*Route)}
}

// Insert appends r under neighbor, with no de-duplication.
func (r *RIB) Insert(neighbor string, route *Route) {
	r.routes[neighbor] = append(r.routes[neighbor], route)
}

// Withdraw removes every route under neighbor matching any of pairs,
// comparing both Network and Netmask as text.
func (r *RIB) Withdraw(neighbor string, pairs []Prefix) {
	cur := r.routes[neighbor]
	if len(cur) == 0 {
		return
	}
	kept := cur[:0]
	for _, route := range cur {
		if matchesAny(route, pairs) {
			continue
		}
		kept = append(kept, route)
	}
	if len(kept) == 0 {
		delete(r.routes, neighbor)
	} else {
		r.routes[neighbor] = kept
	}
}

func matchesAny(route *Route, pairs []Prefix) bool {
	for _, p := range pairs {
		if route.Network == p.Network && route.Netmask == p.Netmask {
			return true
		}
	}
	return false
}

// RoutesOf returns the routes stored under neighbor, or nil if none — an
// explicit lookup rather than relying on a map's implicit zero value.
func (r *RIB) RoutesOf(neighbor string) []*Route {
	if rs, ok := r.routes[neighbor]; ok {
		return rs
	}
	return nil
}

// Neighbors returns every neighbor address that currently has routes.
func (r *RIB) Neighbors() []string {
	out := make([]string, 0, len(r.routes))
	for n := range r.routes {
		out = append(out, n)
	}
	return out
}

// Iter calls fn for every (neighbor, route) pair in the table. If fn
// returns false, iteration stops early.
func (r *RIB) Iter(fn func(neighbor string, route *Route) bool) {
	for neighbor, routes := range r.routes {
		for _, route := range routes {
			if !fn(neighbor, route) {
				return
			}
		}
	}
}

// LogUpdate appends raw to the update log for neighbor.
func (r *RIB) LogUpdate(neighbor string, raw []byte) {
	r.updateLog = append(r.updateLog, LogEntry{Neighbor: neighbor, Raw: raw})
}

// LogRevoke appends raw to the revocation log for neighbor.
func (r *RIB) LogRevoke(neighbor string, raw []byte) {
	r.revokeLog = append(r.revokeLog, LogEntry{Neighbor: neighbor, Raw: raw})
}

// UpdateLog returns the full append-only update history.
func (r *RIB) UpdateLog() []LogEntry {
	return r.updateLog
}

// RevokeLog returns the full append-only revocation history.
func (r *RIB) RevokeLog() []LogEntry {
	return r.revokeLog
}
