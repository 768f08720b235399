package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/codex-switcher-tui/internal/app"
	"github.com/j-veylop/codex-switcher-tui/internal/config"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/tabs/accounts"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/tabs/history"
	"github.com/j-veylop/codex-switcher-tui/internal/ui/tabs/session"
)

// newProgramModel builds the root model with its three tabs.
func newProgramModel(cfg *config.Config, mgr *services.Manager) *app.Model {
	model := app.NewModel(mgr)

	state := model.GetState()
	cmds := model.GetCommands()
	prefs := mgr.Preferences()

	model.SetTabs([]app.Tab{
		accounts.New(state, cmds, prefs),
		session.New(state, cmds, prefs, cfg),
		history.New(state, mgr),
	})
	return model
}

// runProgram runs the terminal UI until the user quits or ctx is done.
func runProgram(ctx context.Context, cfg *config.Config, mgr *services.Manager) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := tea.NewProgram(
		newProgramModel(cfg, mgr),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
