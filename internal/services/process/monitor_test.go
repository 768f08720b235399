package process

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/codex-switcher-tui/internal/models"
)

type mockChecker struct {
	mu      sync.Mutex
	results []models.ProcessInfo
	errs    []error
	calls   int
}

func (m *mockChecker) CheckCodexProcesses(context.Context) (models.ProcessInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.calls
	m.calls++
	if i < len(m.errs) && m.errs[i] != nil {
		return models.ProcessInfo{}, m.errs[i]
	}
	if i < len(m.results) {
		return m.results[i], nil
	}
	return m.results[len(m.results)-1], nil
}

func (m *mockChecker) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestMonitor_InitialCheck(t *testing.T) {
	checker := &mockChecker{results: []models.ProcessInfo{{Count: 2, PIDs: []int{10, 11}}}}
	m := New(checker, time.Hour)
	defer func() { _ = m.Close() }()

	waitFor(t, func() bool { return m.Info() != nil })

	info := m.Info()
	if info.Count != 2 || info.CanSwitch {
		t.Errorf("Info() = %+v", info)
	}

	select {
	case ev := <-m.Events():
		if ev.Info.Count != 2 {
			t.Errorf("event info = %+v", ev.Info)
		}
	case <-time.After(time.Second):
		t.Fatal("no event after first check")
	}
}

func TestMonitor_ErrorKeepsLastValue(t *testing.T) {
	checker := &mockChecker{
		results: []models.ProcessInfo{{CanSwitch: true}, {}},
		errs:    []error{nil, errors.New("ps failed")},
	}
	m := New(checker, time.Hour)
	defer func() { _ = m.Close() }()

	waitFor(t, func() bool { return m.Info() != nil })

	if got := m.Refresh(context.Background()); got != nil {
		t.Errorf("Refresh() = %+v, want nil on failure", got)
	}
	if info := m.Info(); info == nil || !info.CanSwitch {
		t.Errorf("Info() = %+v, want previous value", info)
	}
}

func TestMonitor_NoInfoBeforeSuccess(t *testing.T) {
	checker := &mockChecker{
		results: []models.ProcessInfo{{}},
		errs:    []error{errors.New("unavailable")},
	}
	m := New(checker, time.Hour)
	defer func() { _ = m.Close() }()

	waitFor(t, func() bool { return checker.callCount() >= 1 })
	if info := m.Info(); info != nil {
		t.Errorf("Info() = %+v before any successful check", info)
	}
}

func TestMonitor_PollsAndStops(t *testing.T) {
	checker := &mockChecker{results: []models.ProcessInfo{{CanSwitch: true}}}
	m := New(checker, 5*time.Millisecond)

	waitFor(t, func() bool { return checker.callCount() >= 3 })

	if err := m.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	calls := checker.callCount()
	time.Sleep(20 * time.Millisecond)
	if checker.callCount() != calls {
		t.Error("checker called after Close")
	}
	if err := m.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMonitor_EventOnlyOnChange(t *testing.T) {
	same := models.ProcessInfo{CanSwitch: true}
	checker := &mockChecker{results: []models.ProcessInfo{same}}
	m := New(checker, time.Hour)
	defer func() { _ = m.Close() }()

	waitFor(t, func() bool { return m.Info() != nil })
	<-m.Events()

	m.Refresh(context.Background())
	select {
	case ev := <-m.Events():
		t.Errorf("unexpected event %+v", ev)
	default:
	}
}
