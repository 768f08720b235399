package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/version"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

func newSessionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Show the auth file Codex is currently using",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				summary, err := mgr.Store().RefreshCurrentSession(ctx)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				if opts.jsonOut {
					return printJSON(out, summary)
				}

				w := newTable(out)
				fmt.Fprintf(w, "Status:\t%s\n", summary.Status)
				if summary.IsReady() {
					fmt.Fprintf(w, "Account:\t%s\n", orDash(summary.Email))
					fmt.Fprintf(w, "Plan:\t%s\n", orDash(strings.ToUpper(summary.PlanType)))
					fmt.Fprintf(w, "Auth mode:\t%s\n", summary.AuthMode.Label())
				} else if summary.Message != "" {
					fmt.Fprintf(w, "Message:\t%s\n", summary.Message)
				}
				fmt.Fprintf(w, "Auth file:\t%s\n", orDash(summary.AuthFilePath))
				fmt.Fprintf(w, "Snapshots:\t%s\n", orDash(summary.SnapshotsDirPath))
				if summary.LastModifiedAt != nil {
					fmt.Fprintf(w, "Modified:\t%s\n", workbench.RelativeTime(*summary.LastModifiedAt, time.Now()))
				}
				return w.Flush()
			})
		},
	}
}

func newSnapshotCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "snapshot",
		Short: "Copy the live auth file into the snapshots directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				path, err := mgr.Store().SaveCurrentSessionSnapshot(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOut {
					return printJSON(cmd.OutOrStdout(), map[string]string{"path": path})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Snapshot saved to %s\n", path)
				return nil
			})
		},
	}
}

func newProcessesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "processes",
		Short: "Check for running Codex processes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				info := mgr.Processes().Refresh(ctx)
				if info == nil {
					return fmt.Errorf("failed to check Codex processes")
				}

				out := cmd.OutOrStdout()
				if opts.jsonOut {
					return printJSON(out, info)
				}

				safety := workbench.SummarizeSafety(info)
				fmt.Fprintf(out, "%s: %s\n", safety.Title, safety.Text)
				if len(info.PIDs) > 0 {
					pids := make([]string, 0, len(info.PIDs))
					for _, pid := range info.PIDs {
						pids = append(pids, fmt.Sprintf("%d", pid))
					}
					fmt.Fprintf(out, "PIDs: %s\n", strings.Join(pids, ", "))
				}
				return nil
			})
		},
	}
}

func newVersionCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.jsonOut {
				return printJSON(cmd.OutOrStdout(), map[string]string{
					"version": version.GetVersion(),
					"commit":  version.GetCommit(),
					"date":    version.GetDate(),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), version.Info())
			return nil
		},
	}
}
