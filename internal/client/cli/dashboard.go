package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func newDashboardCmd() *cobra.Command {
	var (
		period string
		limit  int
	)
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Aggregated views over past analyses",
	}

	metrics := &cobra.Command{
		Use:   "metrics",
		Short: "Score and performance over time",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			return show(a.out, a.gw.DashboardMetrics(ctx, models.Period(period)))
		}),
	}
	metrics.Flags().StringVarP(&period, "period", "p", string(models.PeriodMonth), "day, week, month or year")

	insights := &cobra.Command{
		Use:   "insights",
		Short: "Observations drawn from recent analyses",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			return show(a.out, a.gw.DashboardInsights(ctx, limit))
		}),
	}
	insights.Flags().IntVarP(&limit, "limit", "n", 10, "number of analyses to consider")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "summary",
			Short: "Totals, average score and risk distribution",
			Args:  cobra.NoArgs,
			RunE: authed(func(ctx context.Context, a *App, _ []string) error {
				return show(a.out, a.gw.DashboardSummary(ctx))
			}),
		},
		metrics,
		insights,
	)
	return cmd
}
