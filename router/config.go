package router

import (
	"fmt"
	"strings"
	"time"

	"github.com/bgpfix/routed/transport"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cast"
)

// Config holds the small set of operational tuning knobs the dispatcher
// loop reads: how often it wakes up idle and how much it logs. Loaded from
// ROUTED_* environment variables via koanf, the same provider
// route-beacon/rib-ingester uses for its own env overlay.
type Config struct {
	// PollInterval bounds how long Run waits between idle wakeups when no
	// neighbor has sent anything.
	PollInterval time.Duration

	// RecvBufferSize is the largest inbound message accepted, capped at
	// transport.MaxFrame regardless of this setting.
	RecvBufferSize int

	// LogLevel is a zerolog level name: "debug", "info", "warn", "error".
	LogLevel string

	// MetricsAddr, if non-empty, is where cmd/routed serves /metrics.
	MetricsAddr string
}

// DefaultConfig is a 100ms idle poll and the transport's own frame cap.
var DefaultConfig = Config{
	PollInterval:   100 * time.Millisecond,
	RecvBufferSize: transport.MaxFrame,
	LogLevel:       "info",
}

// LoadConfig starts from DefaultConfig and overlays ROUTED_* environment
// variables (ROUTED_POLL_INTERVAL_MS, ROUTED_LOG_LEVEL, ROUTED_METRICS_ADDR,
// ROUTED_RECV_BUFFER_SIZE).
func LoadConfig() (Config, error) {
	cfg := DefaultConfig

	k := koanf.New(".")
	if err := k.Load(env.Provider("ROUTED_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "ROUTED_")
		return strings.ToLower(s)
	}), nil); err != nil {
		return cfg, fmt.Errorf("router: loading env config: %w", err)
	}

	if v := k.String("poll_interval_ms"); v != "" {
		ms, err := cast.ToIntE(v)
		if err != nil {
			return cfg, fmt.Errorf("router: ROUTED_POLL_INTERVAL_MS: %w", err)
		}
		cfg.PollInterval = time.Duration(ms) * time.Millisecond
	}
	if v := k.String("log_level"); v != "" {
		cfg.LogLevel = v
	}
	if v := k.String("metrics_addr"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := k.String("recv_buffer_size"); v != "" {
		n, err := cast.ToIntE(v)
		if err != nil {
			return cfg, fmt.Errorf("router: ROUTED_RECV_BUFFER_SIZE: %w", err)
		}
		cfg.RecvBufferSize = n
	}

	if cfg.RecvBufferSize > transport.MaxFrame {
		cfg.RecvBufferSize = transport.MaxFrame
	}

	return cfg, nil
}
