// Command routed runs a single BGP-like router: it dials one connection
// per configured neighbor, then serves the dispatcher loop until a
// neighbor connection closes or a fatal protocol error occurs.
//
// Usage:
//
//	routed [-metrics-addr :9090] <asn> <addr-relation>...
//
// Each <addr-relation> is "1.2.3.2-cust", "1.2.3.2-peer", or "1.2.3.2-prov".
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bgpfix/routed/neighbor"
	"github.com/bgpfix/routed/rib"
	"github.com/bgpfix/routed/router"
	"github.com/bgpfix/routed/transport"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

var metricsAddr = flag.String("metrics-addr", "", "address to serve /metrics on, empty disables it")

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: routed [OPTIONS] <asn> <addr-relation>...\n")
		os.Exit(1)
	}

	logger := newLogger()

	asn, err := cast.ToIntE(args[0])
	if err != nil || asn < 0 {
		logger.Fatal().Str("asn", args[0]).Msg("invalid ASN")
	}

	specs, err := parseNeighbors(args[1:])
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid neighbor spec")
	}

	cfg, err := router.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("loading config")
	}
	if *metricsAddr != "" {
		cfg.MetricsAddr = *metricsAddr
	}

	nt, err := neighbor.NewTable(specs, transport.Dial)
	if err != nil {
		logger.Fatal().Err(err).Msg("dialing neighbors")
	}

	metrics := router.NewMetrics()
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		metrics.Register(reg)
		go serveMetrics(cfg.MetricsAddr, reg, logger)
	}

	r := router.NewRouter(asn, nt, rib.New(), cfg, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go dumpStatsOnSIGUSR1(ctx, r, nt)

	if err := r.Run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("router stopped")
	}
}

// dumpStatsOnSIGUSR1 logs each neighbor's recv/sent frame counters whenever
// the process receives SIGUSR1, the operator's way of inspecting live
// traffic counts without stopping the router.
func dumpStatsOnSIGUSR1(ctx context.Context, r *router.Router, nt *neighbor.Table) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
			nt.Each(func(n *neighbor.Neighbor) {
				recv, sent := r.Stats(n.Addr)
				r.Info().Str("neighbor", n.Addr).Int64("recv", recv).Int64("sent", sent).Msg("stats dump")
			})
		}
	}
}

func parseNeighbors(args []string) ([]neighbor.Spec, error) {
	specs := make([]neighbor.Spec, 0, len(args))
	for _, arg := range args {
		addr, relStr, ok := strings.Cut(arg, "-")
		if !ok {
			return nil, fmt.Errorf("expected addr-relation, got %q", arg)
		}
		rel, err := neighbor.ParseRelation(relStr)
		if err != nil {
			return nil, err
		}
		specs = append(specs, neighbor.Spec{Addr: addr, Relation: rel})
	}
	return specs, nil
}

// newLogger picks a human-friendly console writer on an interactive
// terminal and structured JSON otherwise, the same isatty check
// scionproto/scion uses before choosing a log encoder.
func newLogger() zerolog.Logger {
	if isatty.IsTerminal(os.Stderr.Fd()) {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func serveMetrics(addr string, reg *prometheus.Registry, logger zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	logger.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error().Err(err).Msg("metrics server stopped")
	}
}
