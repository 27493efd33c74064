package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Pinger is anything whose reachability can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthReporter receives the result of every probe.
type HealthReporter interface {
	SetServing(serving bool)
}

// HealthMonitor periodically pings the backing store and reports the
// outcome, so orchestrators see the service go unhealthy when the store
// becomes unreachable.
type HealthMonitor struct {
	target   Pinger
	reporter HealthReporter
	interval time.Duration
	timeout  time.Duration
	logger   logrus.FieldLogger

	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	serving bool
}

type HealthMonitorConfig struct {
	// IntervalSeconds is how often the store is probed.  Defaults to 15.
	IntervalSeconds int
}

// NewHealthMonitor creates a monitor but does not start it.
func NewHealthMonitor(target Pinger, reporter HealthReporter, cfg HealthMonitorConfig, logger logrus.FieldLogger) *HealthMonitor {
	interval := time.Duration(cfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 15 * time.Second
	}
	timeout := interval / 2
	if timeout > 3*time.Second {
		timeout = 3 * time.Second
	}

	return &HealthMonitor{
		target:   target,
		reporter: reporter,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

// Start probes once immediately, then on every interval until ctx is
// cancelled or Stop is called.
func (m *HealthMonitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	go m.loop(ctx)
	m.logger.WithField("interval", m.interval.String()).Info("health monitor started")
}

// Stop signals the monitor to exit, waits for it, and reports not serving.
// Safe to call more than once.
func (m *HealthMonitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
			<-m.done
		}
		m.set(false)
	})
}

// Serving returns the result of the most recent probe.
func (m *HealthMonitor) Serving() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.serving
}

func (m *HealthMonitor) loop(ctx context.Context) {
	defer close(m.done)

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

func (m *HealthMonitor) probe(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.target.Ping(pctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		if m.Serving() {
			m.logger.WithError(err).Error("store unreachable")
		}
		m.set(false)
		return
	}
	if !m.Serving() {
		m.logger.Info("store reachable")
	}
	m.set(true)
}

func (m *HealthMonitor) set(serving bool) {
	m.mu.Lock()
	m.serving = serving
	m.mu.Unlock()
	if m.reporter != nil {
		m.reporter.SetServing(serving)
	}
}
