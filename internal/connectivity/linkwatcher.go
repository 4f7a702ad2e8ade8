package connectivity

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"
)

// LinkWatcher feeds platform-level link state into a Monitor. Go has no
// portable network up/down event source, so it polls the interface table at
// a short interval and notifies the monitor only on edges.
type LinkWatcher struct {
	monitor  *Monitor
	interval time.Duration
	logger   zerolog.Logger
}

// NewLinkWatcher creates a watcher driving the given monitor.
func NewLinkWatcher(monitor *Monitor, interval time.Duration, logger zerolog.Logger) *LinkWatcher {
	return &LinkWatcher{
		monitor:  monitor,
		interval: interval,
		logger:   logger.With().Str("component", "link-watcher").Logger(),
	}
}

// Run polls until ctx is cancelled.
func (w *LinkWatcher) Run(ctx context.Context) {
	last := hasActiveLink()
	w.monitor.SetLinkUp(last)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := hasActiveLink()
			if current != last {
				last = current
				w.monitor.SetLinkUp(current)
			}
		}
	}
}

// hasActiveLink reports whether any non-loopback interface is up with an
// address assigned.
func hasActiveLink() bool {
	ifaces, err := net.Interfaces()
	if err != nil {
		return false
	}

	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err == nil && len(addrs) > 0 {
			return true
		}
	}

	return false
}
