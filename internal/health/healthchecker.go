// Package health runs periodic probes against the service's dependencies
// and aggregates them into a single flag for the health endpoint.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Checker is implemented by component-level checkers.
type Checker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ComponentChecker probes one HealthPinger on an interval and caches the
// result.
type ComponentChecker struct {
	name    string
	pinger  HealthPinger
	timeout time.Duration
	healthy atomic.Bool
	log     zerolog.Logger
}

// NewComponentChecker wraps a pinger. Components start unhealthy until
// their first successful probe.
func NewComponentChecker(name string, p HealthPinger, log zerolog.Logger, timeout time.Duration) *ComponentChecker {
	return &ComponentChecker{name: name, pinger: p, timeout: timeout, log: log}
}

func (c *ComponentChecker) Name() string    { return c.name }
func (c *ComponentChecker) IsHealthy() bool { return c.healthy.Load() }

// Start probes immediately, then on every tick, until ctx is done.
func (c *ComponentChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		probeCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		err := c.pinger.HealthPing(probeCtx)
		was := c.healthy.Load()
		now := err == nil
		c.healthy.Store(now)
		if was != now {
			if now {
				c.log.Info().Str("component", c.name).Msg("component health: UP")
			} else {
				c.log.Warn().Err(err).Str("component", c.name).Msg("component health: DOWN")
			}
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}

// ServiceHealthChecker aggregates component checkers into one flag.
type ServiceHealthChecker struct {
	healthy atomic.Bool
	deps    []Checker
	log     zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...Checker) *ServiceHealthChecker {
	return &ServiceHealthChecker{deps: deps, log: log}
}

// IsHealthy returns cached service health.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() }

// Start periodically evaluates dependency health and updates the flag.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := false
	eval := func() {
		all := true
		for _, c := range h.deps {
			if !c.IsHealthy() {
				all = false
			}
		}
		h.healthy.Store(all)
		if all != prev {
			if all {
				h.log.Info().Msg("service health: UP")
			} else {
				h.log.Error().Msg("service health: DOWN")
			}
			prev = all
		}
	}

	eval()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eval()
		}
	}
}
