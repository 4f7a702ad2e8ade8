package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// HealthPinger probes backend liveness.
type HealthPinger interface {
	Health(ctx context.Context) error
}

// Monitor composes raw link state with a periodic application-level
// heartbeat into a single boolean: online = linkUp AND serverReachable.
//
// A single failed probe flips offline with no debounce: treating a reachable
// backend as unreachable only delays a sync, while the opposite mistake
// uploads orders into a black hole.
type Monitor struct {
	pinger   HealthPinger
	interval time.Duration
	timeout  time.Duration
	logger   zerolog.Logger

	mu              sync.Mutex
	linkUp          bool
	serverReachable bool
	probed          bool
}

// NewMonitor creates a monitor that probes every interval with a hard
// per-probe timeout. The link starts up; the server starts unreachable
// until the first probe proves otherwise, so nothing drains into a dead
// backend before a heartbeat has succeeded.
func NewMonitor(pinger HealthPinger, interval, timeout time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		pinger:   pinger,
		interval: interval,
		timeout:  timeout,
		logger:   logger.With().Str("component", "connectivity-monitor").Logger(),
		linkUp:   true,
	}
}

// SetLinkUp records platform-level network state. Edge-triggered: callers
// invoke it only on changes.
func (m *Monitor) SetLinkUp(up bool) {
	m.mu.Lock()
	changed := m.linkUp != up
	m.linkUp = up
	m.mu.Unlock()

	if changed {
		m.logger.Info().Bool("link_up", up).Msg("network link state changed")
	}
}

// Online reports composed system connectivity.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.linkUp && m.serverReachable
}

// Run probes immediately and then on every interval until ctx is cancelled.
// It has no side effects beyond the online flag; draining is someone else's
// job.
func (m *Monitor) Run(ctx context.Context) {
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

// probe issues one bounded health request. Skipped entirely while the link
// is known down, to avoid wasted attempts.
func (m *Monitor) probe(ctx context.Context) {
	m.mu.Lock()
	up := m.linkUp
	m.mu.Unlock()

	if !up {
		return
	}

	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Health(probeCtx)

	m.mu.Lock()
	wasReachable := m.serverReachable
	first := !m.probed
	m.probed = true
	m.serverReachable = err == nil
	m.mu.Unlock()

	if err != nil && (wasReachable || first) {
		m.logger.Warn().Err(err).Msg("heartbeat failed, marking server unreachable")
	} else if err == nil && !wasReachable && !first {
		m.logger.Info().Msg("heartbeat recovered, server reachable")
	}
}
