// Package router implements the single-threaded, cooperative dispatcher /
// event loop: it multiplexes neighbor connections, decodes messages, and
// routes them to the forward / update / revoke / dump handlers. A
// goroutine-per-connection reader model fans inbound frames into one
// channel consumed by a single dispatch goroutine, so no handler ever runs
// concurrently with another or with itself.
package router

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/bgpfix/routed/aggregate"
	"github.com/bgpfix/routed/ipaddr"
	"github.com/bgpfix/routed/msg"
	"github.com/bgpfix/routed/neighbor"
	"github.com/bgpfix/routed/policy"
	"github.com/bgpfix/routed/rib"
	"github.com/bgpfix/routed/selector"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"
)

// neighborStats counts frames exchanged with one neighbor, read by an
// operator-triggered dump in cmd/routed while the dispatcher goroutine
// keeps writing.
type neighborStats struct {
	Recv int64
	Sent int64
}

// Router owns all engine state: the neighbor table, the RIB, and the
// single goroutine permitted to mutate either.
type Router struct {
	zerolog.Logger

	ASN       int
	Neighbors *neighbor.Table
	RIB       *rib.RIB
	Metrics   *Metrics

	cfg   Config
	stats *xsync.MapOf[string, *neighborStats]
}

// NewRouter builds a Router. cfg's zero value is not valid; use
// DefaultConfig or LoadConfig.
func NewRouter(asn int, nt *neighbor.Table, rb *rib.RIB, cfg Config, logger zerolog.Logger, metrics *Metrics) *Router {
	if metrics == nil {
		metrics = NewMetrics()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(lvl)
	}
	return &Router{
		Logger:    logger,
		ASN:       asn,
		Neighbors: nt,
		RIB:       rb,
		Metrics:   metrics,
		cfg:       cfg,
		stats:     xsync.NewMapOf[string, *neighborStats](),
	}
}

// Stats returns a snapshot of per-neighbor frame counters.
func (r *Router) Stats(addr string) (recv, sent int64) {
	if s, ok := r.stats.Load(addr); ok {
		return s.Recv, s.Sent
	}
	return 0, 0
}

func (r *Router) statsFor(addr string) *neighborStats {
	s, _ := r.stats.LoadOrCompute(addr, func() *neighborStats { return &neighborStats{} })
	return s
}

// frame is one inbound event fanned in from a neighbor's reader goroutine.
type frame struct {
	addr string
	data []byte
	err  error
}

// Run starts one reader goroutine per configured neighbor and processes
// inbound frames until a neighbor connection closes or errors, or ctx is
// cancelled. It returns ErrProtocol, wrapped with detail, if a neighbor
// ever sends an unknown or malformed message — both are treated as fatal.
func (r *Router) Run(ctx context.Context) error {
	ch := make(chan frame, 16)
	done := make(chan struct{})
	defer close(done)

	r.Neighbors.Each(func(n *neighbor.Neighbor) {
		go r.readLoop(n, ch, done)
	})

	poll := time.NewTicker(r.cfg.PollInterval)
	defer poll.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-poll.C:
			r.Debug().Int("neighbors", r.Neighbors.Len()).Msg("idle poll")

		case f := <-ch:
			if f.err != nil || len(f.data) == 0 {
				r.Info().Str("neighbor", f.addr).Err(f.err).Msg("neighbor connection closed, shutting down")
				return nil
			}
			if len(f.data) > r.cfg.RecvBufferSize {
				return fmt.Errorf("%w: %s: message of %d bytes exceeds recv buffer of %d",
					ErrProtocol, f.addr, len(f.data), r.cfg.RecvBufferSize)
			}

			n, ok := r.Neighbors.Lookup(f.addr)
			if !ok {
				continue // reader for a neighbor removed mid-flight; ignore
			}
			r.statsFor(f.addr).Recv++

			if err := r.handle(n, f.data); err != nil {
				r.Error().Str("neighbor", f.addr).Err(err).Msg("fatal protocol error")
				return err
			}
		}
	}
}

// readLoop performs framing only: it never touches the RIB, the neighbor
// table, or any other engine state, so it can run concurrently with the
// single Run goroutine without any handler ever seeing concurrent access.
func (r *Router) readLoop(n *neighbor.Neighbor, ch chan<- frame, done <-chan struct{}) {
	for {
		data, err := n.Conn.Recv()
		select {
		case ch <- frame{addr: n.Addr, data: data, err: err}:
		case <-done:
			return
		}
		if err != nil {
			return
		}
	}
}

// handle decodes raw and dispatches it by type.
func (r *Router) handle(n *neighbor.Neighbor, raw []byte) error {
	m, err := msg.Decode(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	switch m.Type {
	case msg.DATA:
		return r.handleData(n, m)
	case msg.UPDATE:
		return r.handleUpdate(n, m)
	case msg.REVOKE:
		return r.handleRevoke(n, m)
	case msg.DUMP:
		return r.handleDump(n, m)
	default:
		// TABLE and NOROUTE are reply-only types; any inbound message of
		// those types (or an otherwise-unrecognized one) closes the
		// protocol.
		return fmt.Errorf("%w: unexpected inbound type %s", ErrProtocol, m.Type)
	}
}

func (r *Router) handleData(n *neighbor.Neighbor, m *msg.Msg) error {
	daddr, err := ipaddr.Parse(m.Dst)
	if err != nil {
		return fmt.Errorf("%w: data: invalid dst %q: %v", ErrProtocol, m.Dst, err)
	}

	target, ok := selector.Select(r.Neighbors, r.RIB, n.Addr, daddr)
	if !ok {
		r.Metrics.NoRoute.Inc()
		reply := msg.NewNoRoute(n.LocalAddr(), n.Addr)
		return r.sendTo(n.Addr, reply)
	}

	// forward the data packet verbatim, no field rewriting.
	if err := r.Neighbors.Send(target.Addr, m.Wire()); err != nil {
		return fmt.Errorf("router: forwarding to %s: %w", target.Addr, err)
	}
	r.statsFor(target.Addr).Sent++
	return nil
}

func (r *Router) handleUpdate(n *neighbor.Neighbor, m *msg.Msg) error {
	r.RIB.LogUpdate(n.Addr, m.Wire())

	route, err := m.Update.Route()
	if err != nil {
		return fmt.Errorf("%w: update: %v", ErrProtocol, err)
	}
	r.RIB.Insert(n.Addr, route)
	r.Metrics.Updates.Inc()

	targets := policy.Targets(r.Neighbors, n.Addr)
	for _, addr := range targets {
		fwd := *m.Update
		fwd.ASPath = append(append([]int(nil), m.Update.ASPath...), r.ASN)
		out := msg.NewUpdate(ipaddr.LocalAddr(addr), addr, &fwd)
		if err := r.sendTo(addr, out); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleRevoke(n *neighbor.Neighbor, m *msg.Msg) error {
	r.RIB.LogRevoke(n.Addr, m.Wire())
	r.RIB.Withdraw(n.Addr, m.Revoke)
	r.Metrics.Withdrawals.Inc()

	targets := policy.Targets(r.Neighbors, n.Addr)
	for _, addr := range targets {
		out := msg.NewRevoke(ipaddr.LocalAddr(addr), addr, m.Revoke)
		if err := r.sendTo(addr, out); err != nil {
			return err
		}
	}
	return nil
}

func (r *Router) handleDump(n *neighbor.Neighbor, _ *msg.Msg) error {
	r.Metrics.Dumps.Inc()

	var entries []msg.TableEntry
	for _, nbr := range r.RIB.Neighbors() {
		for _, e := range aggregate.Aggregate(nbr, r.RIB.RoutesOf(nbr)) {
			entries = append(entries, msg.TableEntry{Network: e.Network, Netmask: e.Netmask, Peer: e.Peer})
		}
	}

	reply := msg.NewTable(n.LocalAddr(), n.Addr, entries)
	return r.sendTo(n.Addr, reply)
}

func (r *Router) sendTo(addr string, m *msg.Msg) error {
	if err := r.Neighbors.Send(addr, msg.Encode(m)); err != nil {
		if err == io.EOF {
			return nil // peer already gone; the reader goroutine will report shutdown
		}
		return fmt.Errorf("router: sending to %s: %w", addr, err)
	}
	r.statsFor(addr).Sent++
	return nil
}
