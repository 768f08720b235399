package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/j-veylop/codex-switcher-tui/internal/logger"
	"github.com/j-veylop/codex-switcher-tui/internal/models"
	"github.com/j-veylop/codex-switcher-tui/internal/services"
	"github.com/j-veylop/codex-switcher-tui/internal/services/session"
	"github.com/j-veylop/codex-switcher-tui/internal/workbench"
)

var openBrowser = browser.OpenURL

// loadAccounts fetches the account list into the store and returns it.
func loadAccounts(ctx context.Context, mgr *services.Manager) ([]models.AccountWithUsage, error) {
	store := mgr.Store()
	store.LoadAccounts(ctx, false, false)
	st := store.Snapshot()
	if st.Error != "" {
		return nil, fmt.Errorf("failed to load accounts: %s", st.Error)
	}
	return st.Accounts, nil
}

func lookupAccount(ctx context.Context, mgr *services.Manager, ref string) (models.AccountWithUsage, error) {
	list, err := loadAccounts(ctx, mgr)
	if err != nil {
		return models.AccountWithUsage{}, err
	}
	return resolveAccount(list, ref)
}

func newListCmd(opts *options) *cobra.Command {
	var filter, sort, query string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List accounts",
		Long: `List stored accounts in their saved order.

Examples:
  cxs list                     # All accounts
  cxs list --filter oauth      # ChatGPT accounts only
  cxs list --sort name         # Active first, then by name
  cxs list --query work        # Name or email containing "work"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, s, err := parseListFlags(filter, sort)
			if err != nil {
				return err
			}
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				list, err := loadAccounts(ctx, mgr)
				if err != nil {
					return err
				}
				if filter != "" || sort != "" || query != "" {
					list = workbench.FilterAndSort(list, query, f, s)
				}

				out := cmd.OutOrStdout()
				if opts.jsonOut {
					accs := make([]models.Account, 0, len(list))
					for _, a := range list {
						accs = append(accs, a.Account)
					}
					return printJSON(out, accs)
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No accounts found")
					return nil
				}

				now := time.Now()
				w := newTable(out)
				fmt.Fprintln(w, " \tNAME\tID\tEMAIL\tPLAN\tMODE\tLAST USED")
				for _, a := range list {
					active := " "
					if a.IsActive {
						active = "*"
					}
					lastUsed := "-"
					if a.LastUsedAt != nil {
						lastUsed = workbench.RelativeTime(*a.LastUsedAt, now)
					}
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
						active, a.Name, a.ID, orDash(a.Email), a.DisplayPlan(), a.AuthMode.Label(), lastUsed)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all, oauth, imported or attention")
	cmd.Flags().StringVarP(&sort, "sort", "s", "", "recent, name or usage")
	cmd.Flags().StringVarP(&query, "query", "q", "", "match name or email")
	return cmd
}

func parseListFlags(filter, sort string) (workbench.Filter, workbench.Sort, error) {
	f := workbench.FilterAll
	switch workbench.Filter(filter) {
	case "":
	case workbench.FilterAll, workbench.FilterOAuth, workbench.FilterImported, workbench.FilterAttention:
		f = workbench.Filter(filter)
	default:
		return "", "", fmt.Errorf("invalid filter %q", filter)
	}

	s := workbench.SortRecent
	switch workbench.Sort(sort) {
	case "":
	case workbench.SortRecent, workbench.SortName, workbench.SortUsage:
		s = workbench.Sort(sort)
	default:
		return "", "", fmt.Errorf("invalid sort %q", sort)
	}
	return f, s, nil
}

// usageRow is the JSON shape of one account's usage.
type usageRow struct {
	Usage     *models.UsageSnapshot `json:"usage,omitempty"`
	AccountID string                `json:"account_id"`
	Name      string                `json:"name"`
}

func newUsageCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "usage [account]",
		Short: "Refresh and show rate-limit usage",
		Long: `Refresh usage from the backend and show the remaining share of the 5h and
weekly windows. With an account (id or name) only that account is refreshed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				list, err := loadAccounts(ctx, mgr)
				if err != nil {
					return err
				}

				store := mgr.Store()
				if len(args) == 1 {
					acc, err := resolveAccount(list, args[0])
					if err != nil {
						return err
					}
					if err := store.RefreshSingleUsage(ctx, acc.ID); err != nil {
						return err
					}
					list = []models.AccountWithUsage{mustAccount(mgr, acc.ID)}
				} else {
					if err := store.RefreshUsage(ctx); err != nil {
						return err
					}
					list = store.Snapshot().Accounts
				}

				return printUsage(cmd, opts, list)
			})
		},
	}
}

// mustAccount returns the stored account, which is known to exist.
func mustAccount(mgr *services.Manager, id string) models.AccountWithUsage {
	for _, a := range mgr.Store().Snapshot().Accounts {
		if a.ID == id {
			return a
		}
	}
	return models.AccountWithUsage{Account: models.Account{ID: id}}
}

func printUsage(cmd *cobra.Command, opts *options, list []models.AccountWithUsage) error {
	out := cmd.OutOrStdout()
	if opts.jsonOut {
		rows := make([]usageRow, 0, len(list))
		for _, a := range list {
			rows = append(rows, usageRow{AccountID: a.ID, Name: a.Name, Usage: a.Usage})
		}
		return printJSON(out, rows)
	}

	now := time.Now()
	w := newTable(out)
	fmt.Fprintln(w, "NAME\t5H WINDOW\tWEEKLY\tCREDITS")
	for _, a := range list {
		if a.Usage != nil && a.Usage.Error != "" {
			fmt.Fprintf(w, "%s\tunavailable: %s\t\t\n", a.Name, a.Usage.Error)
			continue
		}
		primary, hasPrimary := a.Usage.Primary()
		secondary, hasSecondary := a.Usage.Secondary()
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.Name,
			windowCell(primary, hasPrimary, now),
			windowCell(secondary, hasSecondary, now),
			orDash(a.Usage.CreditsLabel()))
	}
	return w.Flush()
}

func newSwitchCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "switch <account>",
		Short: "Make an account active for Codex",
		Long: `Make an account (id or name) the one Codex uses. Switching is refused
while Codex processes are running.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				acc, err := lookupAccount(ctx, mgr, args[0])
				if err != nil {
					return err
				}
				if acc.IsActive {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is already active\n", acc.Name)
					return nil
				}

				if err := mgr.SwitchAccount(ctx, acc.ID); err != nil {
					if info := mgr.Processes().Info(); info != nil && errors.Is(err, services.ErrCodexRunning) {
						return fmt.Errorf("%w (%d running)", err, info.Count)
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Switched to %s\n", acc.Name)
				return nil
			})
		},
	}
}

func newRenameCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <account> <new-name>",
		Short: "Rename an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				acc, err := lookupAccount(ctx, mgr, args[0])
				if err != nil {
					return err
				}
				if err := mgr.Store().RenameAccount(ctx, acc.ID, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", acc.Name, args[1])
				return nil
			})
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <account>",
		Aliases: []string{"rm"},
		Short:   "Delete an account and its stored credentials",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				acc, err := lookupAccount(ctx, mgr, args[0])
				if err != nil {
					return err
				}
				if err := mgr.Store().DeleteAccount(ctx, acc.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", acc.Name)
				return nil
			})
		},
	}
}

func newReorderCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reorder <account>...",
		Short: "Set the saved account order",
		Long: `Set the saved account order. Accounts not named keep their relative order
after the named ones.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				list, err := loadAccounts(ctx, mgr)
				if err != nil {
					return err
				}

				ids := make([]string, 0, len(list))
				seen := make(map[string]bool, len(list))
				for _, ref := range args {
					acc, err := resolveAccount(list, ref)
					if err != nil {
						return err
					}
					if seen[acc.ID] {
						return fmt.Errorf("%s is listed twice", acc.Name)
					}
					seen[acc.ID] = true
					ids = append(ids, acc.ID)
				}
				for _, a := range list {
					if !seen[a.ID] {
						ids = append(ids, a.ID)
					}
				}

				if err := mgr.Store().ReorderAccounts(ctx, ids); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Account order saved")
				return nil
			})
		},
	}
}

func newImportCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "import <auth-file> <name>",
		Short: "Add an account from a Codex auth.json file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := session.ExpandPath(args[0])
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				if err := mgr.Store().ImportFromFile(ctx, path, args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %s from %s\n", args[1], path)
				return nil
			})
		},
	}
}

func newLoginCmd(opts *options) *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "login <name>",
		Short: "Add a ChatGPT account through the browser sign-in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				store := mgr.Store()
				info, err := store.StartOAuthLogin(ctx, args[0])
				if err != nil {
					return err
				}
				showAuthURL(cmd, info.AuthURL, noBrowser)

				acc, err := store.CompleteOAuthLogin(ctx)
				if err != nil {
					if ctx.Err() != nil {
						store.CancelOAuthLogin(context.WithoutCancel(ctx))
					}
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", orDash(acc.Name))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the sign-in link without opening a browser")
	return cmd
}

func newReconnectCmd(opts *options) *cobra.Command {
	var noBrowser bool

	cmd := &cobra.Command{
		Use:   "reconnect <account>",
		Short: "Sign a ChatGPT account in again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withManager(cmd, func(ctx context.Context, mgr *services.Manager) error {
				acc, err := lookupAccount(ctx, mgr, args[0])
				if err != nil {
					return err
				}

				events, _ := mgr.Subscribe()
				done := make(chan struct{})
				defer func() {
					mgr.Unsubscribe(events)
					<-done
				}()
				go func() {
					defer close(done)
					for ev := range events {
						if e, ok := ev.(services.LoginURLEvent); ok {
							showAuthURL(cmd, e.Info.AuthURL, noBrowser)
						}
					}
				}()

				if _, err := mgr.Store().ReconnectAccount(ctx, acc.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reconnected %s\n", acc.Name)
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&noBrowser, "no-browser", false, "print the sign-in link without opening a browser")
	return cmd
}

func showAuthURL(cmd *cobra.Command, url string, noBrowser bool) {
	fmt.Fprintf(cmd.ErrOrStderr(), "Finish signing in in your browser:\n\n  %s\n\nWaiting...\n", url)
	if noBrowser {
		return
	}
	if err := openBrowser(url); err != nil {
		logger.Warn("failed to open browser", "error", err)
	}
}
