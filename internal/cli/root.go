package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"acctview/internal/app"
	"acctview/internal/config"
	"acctview/internal/logging"
	"acctview/internal/model"
	"acctview/internal/tui"
)

type globalOptions struct {
	configPath  string
	accountsDir string
	logLevel    string

	cfg     config.Config
	logFile io.Closer
}

func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:          "acctview",
		Short:        "Browse and edit instant-messaging accounts as a table",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if opts.logFile != nil {
				_ = opts.logFile.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/acctview/config.yaml)")
	root.PersistentFlags().StringVar(&opts.accountsDir, "accounts-dir", "", "Directory holding one TOML file per account")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error")

	root.AddCommand(newListCommand(opts))
	root.AddCommand(newColumnsCommand())
	root.AddCommand(newSetCommand(opts))
	root.AddCommand(newWatchCommand(opts))
	root.AddCommand(newUICommand(opts))
	root.AddCommand(newStatusCommand(opts))
	root.AddCommand(newAccountsCommand(opts))

	return root
}

// load resolves the config and sets up logging. Flags win over the config
// file and its environment overrides.
func (o *globalOptions) load() error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return app.WrapExit(app.ExitUserError, err)
	}
	if strings.TrimSpace(o.accountsDir) != "" {
		cfg.AccountsDir = o.accountsDir
	}
	if strings.TrimSpace(o.logLevel) != "" {
		cfg.LogLevel = o.logLevel
	}
	if cfg.AccountsDir != "" {
		cfg.AccountsDir = app.ExpandHome(cfg.AccountsDir)
	}
	o.cfg = cfg

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return app.WrapExit(app.ExitUserError, err)
	}
	var out io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(app.ExpandHome(cfg.LogFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return app.WrapExit(app.ExitIOFailure, fmt.Errorf("open log file: %w", err))
		}
		o.logFile = f
		out = f
	}
	logging.Init(level, out)
	return nil
}

func (o *globalOptions) open(ctx context.Context, watch bool) (*app.Service, error) {
	return app.OpenService(ctx, app.ServiceOptions{
		AccountsDir:   o.cfg.AccountsDir,
		Watch:         watch,
		WatchDebounce: o.cfg.WatchDebounce,
		Timeout:       o.cfg.ReadyTimeout,
	})
}

func newListCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the account table",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			rows := svc.Rows()
			if jsonOut {
				return printJSON(map[string]any{"columns": svc.Headers(), "rows": rows})
			}
			fmt.Print(renderTable(svc.Headers(), rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

type columnInfo struct {
	Index    int    `json:"index"`
	Label    string `json:"label"`
	Editable bool   `json:"editable"`
}

func newColumnsCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "List the table columns and which ones can be edited",
		RunE: func(cmd *cobra.Command, args []string) error {
			columns := make([]columnInfo, 0, model.ColumnCount)
			for c := model.Column(0); c < model.ColumnCount; c++ {
				columns = append(columns, columnInfo{Index: int(c), Label: c.Label(), Editable: model.Editable(c)})
			}
			if jsonOut {
				return printJSON(columns)
			}
			for _, c := range columns {
				mode := "read-only"
				if c.Editable {
					mode = "editable"
				}
				fmt.Printf("%2d  %-22s %s\n", c.Index, c.Label, mode)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newSetCommand(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <account> <column> <value>",
		Short: "Edit one cell and wait for the account to confirm it",
		Long: `Edit one cell of the account table.

<account> is an account id or a zero-based row index. <column> is a column
label ("display name", "nickname", "enabled") or index. Only Enabled,
Display name and Nick name are editable.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.Set(cmd.Context(), args[0], args[1], args[2]); err != nil {
				return err
			}
			fmt.Printf("%s: %s updated\n", args[0], args[1])
			return nil
		},
	}
	return cmd
}

func newWatchCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the table again whenever it is reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer svc.Close()

			headers := svc.Headers()
			enc := json.NewEncoder(os.Stdout)
			return svc.Watch(cmd.Context(), func(rows []app.Row) {
				if jsonOut {
					if err := enc.Encode(rows); err != nil {
						logging.Error("cli", err, "encode rows")
					}
					return
				}
				fmt.Print(renderTable(headers, rows))
				fmt.Println()
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output one JSON array per reset")
	return cmd
}

func newUICommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Open the interactive account table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.logFile == nil {
				// The terminal belongs to the table view.
				logging.Init(logging.LevelError, io.Discard)
			}
			svc, err := opts.open(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer svc.Close()
			return tui.Run(svc.Queue(), svc.Model())
		},
	}
}

func newStatusCommand(opts *globalOptions) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the accounts directory and a summary of its accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			result := svc.Status()
			if jsonOut {
				if err := printJSON(result); err != nil {
					return err
				}
			} else {
				fmt.Printf("accounts_dir: %s\n", result.Paths.RootDir)
				fmt.Printf("state_file: %s\n", result.Paths.StatePath)
				fmt.Printf("ready: %v\n", result.Ready)
				fmt.Printf("accounts: %d\n", result.AccountCount)
				fmt.Printf("enabled: %d\n", result.Enabled)
				fmt.Printf("connected: %d\n", result.Connected)
				fmt.Printf("invalid: %s\n", zeroDefault(strings.Join(result.Invalid, ","), "-"))
			}
			if len(result.Invalid) > 0 {
				return app.WrapExit(app.ExitPartial, fmt.Errorf("%d invalid account(s)", len(result.Invalid)))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	return cmd
}

func newAccountsCommand(opts *globalOptions) *cobra.Command {
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "Create and delete account files",
	}
	accounts.AddCommand(newAccountsAddCommand(opts))
	accounts.AddCommand(newAccountsRemoveCommand(opts))
	return accounts
}

func newAccountsAddCommand(opts *globalOptions) *cobra.Command {
	var spec app.AccountSpec
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account file",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			created, err := svc.Create(cmd.Context(), spec)
			if err != nil {
				return err
			}
			if jsonOut {
				return printJSON(created)
			}
			fmt.Printf("created account %s (%s/%s)\n", created.ID, created.ConnectionManager, created.Protocol)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec.Protocol, "protocol", "", "Protocol name, e.g. jabber, irc, sip")
	cmd.Flags().StringVar(&spec.ConnectionManager, "cm", "", "Connection manager (default depends on the protocol)")
	cmd.Flags().StringVar(&spec.ID, "id", "", "Account id (default <cm>-<protocol>-<random>)")
	cmd.Flags().StringVar(&spec.DisplayName, "display-name", "", "Display name (default the account id)")
	cmd.Flags().StringVar(&spec.Nickname, "nickname", "", "Nickname")
	cmd.Flags().BoolVar(&spec.Disabled, "disabled", false, "Create the account disabled")
	cmd.Flags().BoolVar(&spec.ConnectAutomatically, "auto-connect", false, "Connect automatically")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("protocol")
	return cmd
}

func newAccountsRemoveCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <account>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete an account file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.open(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer svc.Close()

			id := strings.TrimSpace(args[0])
			if err := svc.Remove(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("removed account %s\n", id)
			return nil
		},
	}
}

func printJSON(value any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func zeroDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
