package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func newBrokerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "broker",
		Short: "Manage Deriv broker connections",
	}
	cmd.AddCommand(
		newBrokerConnectCmd(),
		&cobra.Command{
			Use:   "list",
			Short: "List connections",
			Args:  cobra.NoArgs,
			RunE: authed(func(ctx context.Context, a *App, _ []string) error {
				return show(a.out, a.gw.ListDerivConnections(ctx))
			}),
		},
		newBrokerStatusCmd(),
		newBrokerSyncCmd(),
		newBrokerTradesCmd(),
		newBrokerUpdateCmd(),
		&cobra.Command{
			Use:   "disconnect <connection-id>",
			Short: "Remove a connection",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(ctx context.Context, a *App, args []string) error {
				res := a.gw.DisconnectDeriv(ctx, args[0])
				if !res.OK {
					return errors.New(res.Error)
				}
				fmt.Fprintf(a.out, "Connection %s removed.\n", args[0])
				return nil
			}),
		},
	)
	return cmd
}

// newBrokerConnectCmd prompts for the API token; it is sent once and never
// written to disk.
func newBrokerConnectCmd() *cobra.Command {
	var req models.DerivConnectRequest
	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Link a Deriv account",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			token, err := getPassword("Deriv API token", a.out)
			if err != nil {
				return err
			}
			req.APIToken = token
			return show(a.out, a.gw.ConnectDeriv(ctx, req))
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&req.AppID, "app-id", "", "Deriv application id")
	fs.StringVar(&req.AccountID, "account-id", "", "Deriv account id")
	fs.StringVar(&req.ConnectionName, "name", "", "connection name")
	fs.BoolVar(&req.AutoSync, "auto-sync", true, "sync trades automatically")
	fs.StringVar(&req.SyncFrequency, "frequency", "daily", "hourly, daily, weekly or manual")
	fs.IntVar(&req.SyncDaysBack, "days-back", 30, "days of history to sync")
	return cmd
}

func newBrokerStatusCmd() *cobra.Command {
	var connID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show sync status",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			return show(a.out, a.gw.DerivStatus(ctx, connID))
		}),
	}
	cmd.Flags().StringVar(&connID, "connection", "", "limit to one connection")
	return cmd
}

func newBrokerSyncCmd() *cobra.Command {
	var (
		connID string
		req    models.SyncRequest
	)
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Start a trade sync",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			return show(a.out, a.gw.SyncDeriv(ctx, connID, req))
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&connID, "connection", "", "sync only this connection")
	fs.IntVar(&req.DaysBack, "days-back", 0, "days of history to fetch")
	fs.BoolVar(&req.ForceFullSync, "full", false, "ignore the last sync position")
	fs.BoolVar(&req.AnalyzeAfterSync, "analyze", true, "run an analysis when the sync finishes")
	return cmd
}

func newBrokerTradesCmd() *cobra.Command {
	var q models.DerivTradesQuery
	cmd := &cobra.Command{
		Use:   "trades",
		Short: "List synced trades",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			return show(a.out, a.gw.DerivTrades(ctx, q))
		}),
	}
	fs := cmd.Flags()
	fs.StringVar(&q.ConnectionID, "connection", "", "limit to one connection")
	fs.IntVar(&q.Limit, "limit", 50, "page size")
	fs.IntVar(&q.Offset, "offset", 0, "page offset")
	fs.StringVar(&q.Status, "status", "all", "open, won, lost or all")
	return cmd
}

func newBrokerUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <connection-id>",
		Short: "Change connection settings; only the given flags are updated",
		Args:  cobra.ExactArgs(1),
	}
	fs := cmd.Flags()
	fs.String("name", "", "connection name")
	fs.Bool("auto-sync", true, "sync trades automatically")
	fs.String("frequency", "", "hourly, daily, weekly or manual")
	fs.Int("days-back", 0, "days of history to sync")
	fs.Bool("disabled", false, "pause the connection")

	cmd.RunE = authed(func(ctx context.Context, a *App, args []string) error {
		req := models.UpdateConnectionRequest{
			ConnectionName: changedString(fs, "name"),
			AutoSync:       changedBool(fs, "auto-sync"),
			SyncFrequency:  changedString(fs, "frequency"),
			Disabled:       changedBool(fs, "disabled"),
		}
		if fs.Changed("days-back") {
			v, _ := fs.GetInt("days-back")
			req.SyncDaysBack = &v
		}
		if req == (models.UpdateConnectionRequest{}) {
			return errors.New("nothing to update")
		}
		return show(a.out, a.gw.UpdateDerivConnection(ctx, args[0], req))
	})
	return cmd
}
