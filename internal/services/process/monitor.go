// Package process polls the backend for running Codex processes.
package process

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

// DefaultInterval is the default poll interval.
const DefaultInterval = 4 * time.Second

// Checker reports running Codex processes.
type Checker interface {
	CheckCodexProcesses(ctx context.Context) (models.ProcessInfo, error)
}

// Event is sent whenever the process info changes.
type Event struct {
	Info models.ProcessInfo
}

// Monitor keeps the latest process info. A failed check keeps the previous value.
type Monitor struct {
	checker   Checker
	info      *models.ProcessInfo
	eventChan chan Event
	stopChan  chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	interval  time.Duration
	mu        sync.RWMutex
	closeOnce sync.Once
}

// New creates a monitor and starts polling immediately.
func New(checker Checker, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		checker:   checker,
		interval:  interval,
		eventChan: make(chan Event, 100),
		stopChan:  make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}

	m.wg.Add(1)
	go m.poll()

	return m
}

// Events returns the event channel.
func (m *Monitor) Events() <-chan Event {
	return m.eventChan
}

// Info returns the most recent process info, or nil before the first
// successful check.
func (m *Monitor) Info() *models.ProcessInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.info == nil {
		return nil
	}
	info := *m.info
	return &info
}

// Refresh checks processes now. On failure the previous info is kept and
// nil is returned.
func (m *Monitor) Refresh(ctx context.Context) *models.ProcessInfo {
	info, err := m.checker.CheckCodexProcesses(ctx)
	if err != nil {
		logger.Error("failed to check processes", "error", err)
		return nil
	}

	m.mu.Lock()
	changed := m.info == nil || !sameInfo(*m.info, info)
	m.info = &info
	m.mu.Unlock()

	if changed {
		m.sendEvent(Event{Info: info})
	}
	return &info
}

func sameInfo(a, b models.ProcessInfo) bool {
	return a.Count == b.Count && a.CanSwitch == b.CanSwitch && slices.Equal(a.PIDs, b.PIDs)
}

func (m *Monitor) poll() {
	defer m.wg.Done()

	m.Refresh(m.ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh(m.ctx)
		case <-m.stopChan:
			return
		}
	}
}

// sendEvent sends an event without blocking, dropping the oldest if full.
func (m *Monitor) sendEvent(event Event) {
	select {
	case m.eventChan <- event:
	default:
		select {
		case <-m.eventChan:
		default:
		}
		select {
		case m.eventChan <- event:
		default:
		}
	}
}

// Close stops polling and waits for an in-flight check to return.
func (m *Monitor) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.cancel()
	})
	m.wg.Wait()
	return nil
}
