package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeguard/internal/client/config"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// runFunc is the body of a command that needs an App.
type runFunc func(ctx context.Context, a *App, args []string) error

// NewRootCommand returns the tradeguard command tree.
func NewRootCommand(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "tradeguard",
		Short:         "Trading risk analysis from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		newRegisterCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newAnalyzeCmd(),
		newRiskCmd(),
		newReportCmd(),
		newSettingsCmd(),
		newAlertsCmd(),
		newDashboardCmd(),
		newBrokerCmd(),
		newVersionCmd(info),
	)
	return root
}

// withApp adapts fn to a cobra RunE. The App lives for one invocation.
func withApp(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(cmd.Flags())
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		a, err := NewApp(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				a.log.Warn(ctx, "close app", "error", err)
			}
		}()

		return fn(ctx, a, args)
	}
}

// authed is withApp for commands that need a signed-in user.
func authed(fn runFunc) func(*cobra.Command, []string) error {
	return withApp(func(ctx context.Context, a *App, args []string) error {
		if err := a.requireAuth(); err != nil {
			return err
		}
		return fn(ctx, a, args)
	})
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tradeguard %s (commit %s, built %s)\n", info.Version, info.Commit, info.BuildDate)
		},
	}
}
