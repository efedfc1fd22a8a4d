package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/inkwell-notes/inkwell/internal/logging"
)

const probeTimeout = 3 * time.Second

// Probe reports whether the remote service answers. gateway.RESTGateway
// satisfies it via Ping.
type Probe interface {
	Ping(ctx context.Context) error
}

// Monitor polls a Probe on a fixed interval and fires a callback on
// unreachable to reachable edges. It starts pessimistic: the first
// successful probe counts as an edge, so a client that boots online
// drains its backlog right away.
type Monitor struct {
	probe    Probe
	interval time.Duration
	debounce time.Duration
	onOnline func()
	logger   logging.Logger
	now      func() time.Time

	mu          sync.Mutex
	reachable   bool
	pendingEdge bool
	lastFire    time.Time
}

// NewMonitor returns a stopped Monitor. onOnline runs in its own goroutine
// on every debounced edge; it must be safe to call concurrently with a
// previous invocation still running.
func NewMonitor(probe Probe, interval, debounce time.Duration, onOnline func(), logger logging.Logger) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		debounce: debounce,
		onOnline: onOnline,
		logger:   logger,
		now:      time.Now,
	}
}

// Reachable reports the result of the most recent probe.
func (m *Monitor) Reachable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reachable
}

// Run polls until ctx is cancelled. It probes once immediately so the
// status line is accurate before the first tick.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.poll(ctx)

	for {
		select {
		case <-ticker.C:
			m.poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) poll(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.probe.Ping(pctx)
	cancel()

	m.mu.Lock()
	was := m.reachable
	m.reachable = err == nil
	fire := false
	if m.reachable {
		if !was {
			m.pendingEdge = true
		}
		// a debounced edge is deferred, not dropped, so a flapping link
		// still gets exactly one drain once it settles
		if m.pendingEdge && m.now().Sub(m.lastFire) >= m.debounce {
			m.pendingEdge = false
			m.lastFire = m.now()
			fire = true
		}
	}
	m.mu.Unlock()

	switch {
	case fire:
		m.logger.Info(ctx, "connection restored, starting sync")
		go m.onOnline()
	case was && !m.reachable:
		m.logger.Info(ctx, "connection lost, switching to offline mode")
	}
}
