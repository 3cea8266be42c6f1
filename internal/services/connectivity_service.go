package services

import (
	"context"
	"log"
	"sync"
	"time"
)

// ConnectivityMonitor watches the remote ledger's reachability and raises
// edge-triggered events: OnUp fires once per offline-to-online transition,
// OnDown once per online-to-offline transition. Steady state raises
// nothing; the flush path hangs off the OnUp edge, not off polling.
type ConnectivityMonitor struct {
	remote   RemoteLedger
	interval time.Duration
	timeout  time.Duration

	mu     sync.Mutex
	online bool
	onUp   func()
	onDown func()
	stop   chan struct{}
}

func NewConnectivityMonitor(remote RemoteLedger, interval time.Duration) *ConnectivityMonitor {
	return &ConnectivityMonitor{
		remote:   remote,
		interval: interval,
		timeout:  5 * time.Second,
		stop:     make(chan struct{}),
	}
}

// OnUp registers the offline-to-online edge handler.
func (m *ConnectivityMonitor) OnUp(fn func()) { m.onUp = fn }

// OnDown registers the online-to-offline edge handler.
func (m *ConnectivityMonitor) OnDown(fn func()) { m.onDown = fn }

// Start probes once to establish the initial state, then keeps probing on
// the configured interval until Stop. The initial probe is returned so the
// caller can seed its own state; it raises no edge.
func (m *ConnectivityMonitor) Start(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	initial := m.remote.Ping(probeCtx)
	cancel()

	m.mu.Lock()
	m.online = initial
	m.mu.Unlock()
	log.Printf("[CONNECTIVITY] Initial state: online=%v", initial)

	go m.loop(ctx)
	return initial
}

// Stop ends the probe loop.
func (m *ConnectivityMonitor) Stop() {
	close(m.stop)
}

// Online reports the last observed state.
func (m *ConnectivityMonitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

func (m *ConnectivityMonitor) loop(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check runs one probe and fires at most one edge callback.
func (m *ConnectivityMonitor) check(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, m.timeout)
	online := m.remote.Ping(probeCtx)
	cancel()

	m.mu.Lock()
	was := m.online
	m.online = online
	m.mu.Unlock()

	if online == was {
		return
	}

	if online {
		log.Printf("[CONNECTIVITY] Remote ledger became reachable")
		if m.onUp != nil {
			m.onUp()
		}
		return
	}

	log.Printf("[CONNECTIVITY] Remote ledger became unreachable")
	if m.onDown != nil {
		m.onDown()
	}
}
