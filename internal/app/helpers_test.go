package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/codex-switcher-tui/internal/backend"
	"github.com/j-veylop/codex-switcher-tui/internal/config"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
)

// stubClient implements the backend calls the app drives. Embedding the
// interface makes any other call panic.
type stubClient struct {
	backend.Client

	mu        sync.Mutex
	switched  []string
	cancelled int
	procs     models.ProcessInfo
}

func (s *stubClient) CheckCodexProcesses(context.Context) (models.ProcessInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procs, nil
}

func (s *stubClient) ListAccounts(context.Context) ([]models.Account, error) {
	return []models.Account{{ID: "a", Name: "Work", IsActive: true}}, nil
}

func (s *stubClient) SwitchAccount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.switched = append(s.switched, id)
	return nil
}

func (s *stubClient) StartLogin(_ context.Context, name string) (models.OAuthLoginInfo, error) {
	return models.OAuthLoginInfo{AuthURL: "https://auth.example/" + name}, nil
}

// CompleteLogin blocks until the login is cancelled.
func (s *stubClient) CompleteLogin(ctx context.Context) (models.Account, error) {
	<-ctx.Done()
	return models.Account{}, ctx.Err()
}

func (s *stubClient) CancelLogin(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelled++
	return nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, string) error { return nil }

func newTestManager(t *testing.T, client *stubClient) *services.Manager {
	t.Helper()
	dir := t.TempDir()
	cfg := &config.Config{
		DatabasePath:         filepath.Join(dir, "usage.db"),
		PreferencesPath:      filepath.Join(dir, "preferences.yaml"),
		UsageRefreshInterval: time.Hour,
		ProcessPollInterval:  time.Hour,
	}
	mgr, err := services.NewManager(cfg,
		services.WithClient(client),
		services.WithNotifier(nopNotifier{}))
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	t.Cleanup(func() {
		if err := mgr.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})
	return mgr
}

// fakeTab records the messages it receives.
type fakeTab struct {
	msgs      []tea.Msg
	width     int
	height    int
	capturing bool
}

func (f *fakeTab) Init() tea.Cmd { return nil }

func (f *fakeTab) Update(msg tea.Msg) (Tab, tea.Cmd) {
	f.msgs = append(f.msgs, msg)
	return f, nil
}

func (f *fakeTab) View() string { return "fake tab content" }

func (f *fakeTab) SetSize(width, height int) {
	f.width = width
	f.height = height
}

func (f *fakeTab) ShortHelp() []key.Binding {
	return []key.Binding{key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "do thing"))}
}

func (f *fakeTab) FullHelp() [][]key.Binding { return [][]key.Binding{f.ShortHelp()} }

func (f *fakeTab) CapturingInput() bool { return f.capturing }

func (f *fakeTab) received(match func(tea.Msg) bool) bool {
	for _, m := range f.msgs {
		if match(m) {
			return true
		}
	}
	return false
}

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}
