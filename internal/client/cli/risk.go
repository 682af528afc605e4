package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func newRiskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Risk scoring tools",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "types",
			Short: "List the risk categories the backend scores",
			Args:  cobra.NoArgs,
			RunE: authed(func(ctx context.Context, a *App, _ []string) error {
				return show(a.out, a.gw.RiskTypes(ctx))
			}),
		},
		&cobra.Command{
			Use:   "calculate <risk-details.json>",
			Short: "Score a set of detected risks",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(ctx context.Context, a *App, args []string) error {
				var details map[string]models.RiskDetail
				if err := readJSONFile(args[0], &details); err != nil {
					return err
				}
				return show(a.out, a.gw.CalculateRisk(ctx, details))
			}),
		},
		newRiskSimulateCmd(),
		newRiskExplainCmd(),
	)
	return cmd
}

func newRiskSimulateCmd() *cobra.Command {
	var (
		score   float64
		improve map[string]string
	)
	cmd := &cobra.Command{
		Use:     "simulate",
		Short:   "Estimate the score after fixing some risks",
		Example: "  tradeguard risk simulate --score 55 --improve over_leverage=50 --improve no_stop_loss=100",
		Args:    cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			req := models.SimulationRequest{CurrentScore: score, Improvements: map[string]float64{}}
			for name, raw := range improve {
				pct, err := strconv.ParseFloat(raw, 64)
				if err != nil {
					return fmt.Errorf("improvement %s: %w", name, err)
				}
				req.Improvements[name] = pct
			}
			if len(req.Improvements) == 0 {
				return errors.New("at least one --improve risk=percent is required")
			}
			return show(a.out, a.gw.SimulateRisk(ctx, req))
		}),
	}
	cmd.Flags().Float64Var(&score, "score", 0, "current risk score (0-100)")
	cmd.Flags().StringToStringVar(&improve, "improve", nil, "risk=percent improvement, repeatable")
	return cmd
}

func newRiskExplainCmd() *cobra.Command {
	var formatted bool
	cmd := &cobra.Command{
		Use:   "explain <analysis-id>",
		Short: "Ask for explanations of a stored analysis",
		Args:  cobra.ExactArgs(1),
		RunE: authed(func(ctx context.Context, a *App, args []string) error {
			res := a.gw.GetAnalysis(ctx, args[0])
			if !res.OK {
				return errors.New(res.Error)
			}
			an := res.Data
			if an.Metrics == nil || an.RiskResults == nil || an.ScoreResult == nil {
				return fmt.Errorf("analysis %s has no results yet (status %s)", args[0], an.Status)
			}

			exp := a.gw.RiskExplanations(ctx, models.ExplanationsRequest{
				Metrics:          *an.Metrics,
				RiskResults:      *an.RiskResults,
				ScoreResult:      *an.ScoreResult,
				FormatForDisplay: formatted,
			})
			if exp.OK && formatted && exp.Data.Formatted != nil {
				fmt.Fprintln(a.out, *exp.Data.Formatted)
				return nil
			}
			return show(a.out, exp)
		}),
	}
	cmd.Flags().BoolVar(&formatted, "formatted", false, "print display-ready text")
	return cmd
}
