// Package cli implements the cxs command line: the terminal UI plus headless
// subcommands that drive the same account store.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/j-veylop/codex-switcher-tui/internal/config"
	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/version"
)

// Replaced in tests.
var (
	loadConfig = config.Load
	newManager = func(cfg *config.Config) (*services.Manager, error) {
		return services.NewManager(cfg)
	}
	runTUI = runProgram
)

// options holds the global flags and what PersistentPreRunE derives from them.
type options struct {
	cfg        *config.Config
	logCloser  io.Closer
	backendURL string
	logLevel   string
	jsonOut    bool
}

// NewRootCmd builds the cxs command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "cxs",
		Short: "Switch between Codex CLI accounts",
		Long: `cxs manages the accounts the Codex CLI signs in with.

Run without arguments to open the terminal UI. The subcommands perform the
same operations headless, for scripts and quick checks.`,
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return opts.setup()
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logCloser != nil {
				_ = opts.logCloser.Close()
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := newManager(opts.cfg)
			if err != nil {
				return fmt.Errorf("failed to initialize services: %w", err)
			}
			defer closeManager(mgr)
			return runTUI(cmd.Context(), opts.cfg, mgr)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	root.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print machine-readable JSON")
	root.PersistentFlags().StringVar(&opts.backendURL, "backend", "", "backend URL (overrides CXS_BACKEND_URL)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error")

	root.AddCommand(
		newListCmd(opts),
		newUsageCmd(opts),
		newSwitchCmd(opts),
		newRenameCmd(opts),
		newDeleteCmd(opts),
		newReorderCmd(opts),
		newImportCmd(opts),
		newLoginCmd(opts),
		newReconnectCmd(opts),
		newSessionCmd(opts),
		newSnapshotCmd(opts),
		newProcessesCmd(opts),
		newHistoryCmd(opts),
		newVersionCmd(opts),
	)

	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and routes logs
// to the log file.
func (o *options) setup() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if o.backendURL != "" {
		cfg.BackendURL = o.backendURL
	}
	if o.logLevel != "" {
		cfg.LogLevel = o.logLevel
	}
	o.cfg = cfg

	closer, err := logger.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	o.logCloser = closer
	return nil
}

// withManager runs fn against a manager that lives for one command.
// Desktop notifications are disabled for headless runs.
func (o *options) withManager(cmd *cobra.Command, fn func(ctx context.Context, mgr *services.Manager) error) error {
	cfg := *o.cfg
	cfg.Notifications = false

	mgr, err := newManager(&cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer closeManager(mgr)

	return fn(cmd.Context(), mgr)
}

func closeManager(mgr *services.Manager) {
	if err := mgr.Close(); err != nil {
		logger.Warn("error closing services", "error", err)
	}
}
