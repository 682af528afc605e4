package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Risk thresholds and AI preferences",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current settings",
			Args:  cobra.NoArgs,
			RunE: authed(func(ctx context.Context, a *App, _ []string) error {
				return show(a.out, a.gw.GetSettings(ctx))
			}),
		},
		newSettingsSetCmd(),
	)
	return cmd
}

func newSettingsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change settings; only the given flags are updated",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.Float64("max-position-size", 0, "maximum position size, percent of balance")
	fs.Float64("min-win-rate", 0, "minimum acceptable win rate, percent")
	fs.Float64("max-drawdown", 0, "maximum drawdown, percent")
	fs.Float64("min-rr-ratio", 0, "minimum risk/reward ratio")
	fs.Float64("min-sl-usage", 0, "minimum stop-loss usage, percent")
	fs.Bool("ai", true, "enable AI explanations")
	fs.String("model", "", "preferred AI model")
	fs.Bool("openai-key", false, "prompt for an OpenAI API key")

	cmd.RunE = authed(func(ctx context.Context, a *App, _ []string) error {
		upd := models.SettingsUpdate{
			MaxPositionSizePct: changedFloat(fs, "max-position-size"),
			MinWinRate:         changedFloat(fs, "min-win-rate"),
			MaxDrawdownPct:     changedFloat(fs, "max-drawdown"),
			MinRRRatio:         changedFloat(fs, "min-rr-ratio"),
			MinSLUsageRate:     changedFloat(fs, "min-sl-usage"),
			AIEnabled:          changedBool(fs, "ai"),
			PreferredModel:     changedString(fs, "model"),
		}
		if ask, _ := fs.GetBool("openai-key"); ask {
			key, err := getPassword("OpenAI API key", a.out)
			if err != nil {
				return err
			}
			upd.OpenAIAPIKey = &key
		}
		if upd == (models.SettingsUpdate{}) {
			return errors.New("nothing to update")
		}
		return show(a.out, a.gw.UpdateSettings(ctx, upd))
	})
	return cmd
}

func newAlertsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Risk alert preferences",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show alert settings",
			Args:  cobra.NoArgs,
			RunE: authed(func(ctx context.Context, a *App, _ []string) error {
				return show(a.out, a.gw.GetAlertSettings(ctx))
			}),
		},
		newAlertsSetCmd(),
		newAlertsSnoozeCmd(),
	)
	return cmd
}

// newAlertsSetCmd reads the current alert settings and overlays the flags
// that were given, since the backend replaces the whole document.
func newAlertsSetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change alert settings; only the given flags are updated",
		Args:  cobra.NoArgs,
	}
	fs := cmd.Flags()
	fs.Bool("enabled", true, "raise alerts at all")
	fs.Bool("email", false, "send alerts by email")
	fs.Float64("threshold", 0, "alert when the score drops below this value")
	fs.Bool("new-risk", true, "alert when a new risk type is detected")
	fs.Bool("digest", false, "send a daily digest")
	fs.StringSlice("monitor", nil, "risk types to monitor")

	cmd.RunE = authed(func(ctx context.Context, a *App, _ []string) error {
		cur := a.gw.GetAlertSettings(ctx)
		if !cur.OK {
			return errors.New(cur.Error)
		}
		s := cur.Data
		if v := changedBool(fs, "enabled"); v != nil {
			s.Enabled = *v
		}
		if v := changedBool(fs, "email"); v != nil {
			s.EmailAlerts = *v
		}
		if v := changedFloat(fs, "threshold"); v != nil {
			s.ScoreThreshold = *v
		}
		if v := changedBool(fs, "new-risk"); v != nil {
			s.NotifyOnNewRisk = *v
		}
		if v := changedBool(fs, "digest"); v != nil {
			s.DailyDigest = *v
		}
		if fs.Changed("monitor") {
			s.MonitoredRiskTypes, _ = fs.GetStringSlice("monitor")
		}
		return show(a.out, a.gw.UpdateAlertSettings(ctx, s))
	})
	return cmd
}

func newAlertsSnoozeCmd() *cobra.Command {
	var minutes int
	cmd := &cobra.Command{
		Use:   "snooze <alert-id>",
		Short: "Silence an alert for a while",
		Args:  cobra.ExactArgs(1),
		RunE: authed(func(ctx context.Context, a *App, args []string) error {
			res := a.gw.SnoozeAlert(ctx, args[0], models.SnoozeRequest{DurationMinutes: minutes})
			if !res.OK {
				return errors.New(res.Error)
			}
			fmt.Fprintf(a.out, "Alert %s snoozed until %s\n", args[0], res.Data.SnoozedUntil.Format("2006-01-02 15:04"))
			return nil
		}),
	}
	cmd.Flags().IntVarP(&minutes, "minutes", "m", 60, "snooze duration in minutes (max one week)")
	return cmd
}

func changedFloat(fs *pflag.FlagSet, name string) *float64 {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetFloat64(name)
	return &v
}

func changedBool(fs *pflag.FlagSet, name string) *bool {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetBool(name)
	return &v
}

func changedString(fs *pflag.FlagSet, name string) *string {
	if !fs.Changed(name) {
		return nil
	}
	v, _ := fs.GetString(name)
	return &v
}
