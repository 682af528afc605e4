package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeguard/internal/client/gateway"
	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Submit trades for risk analysis and browse results",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "upload <trades.csv>",
			Short: "Analyze a CSV export of trades",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(ctx context.Context, a *App, args []string) error {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()

				return show(a.out, a.gw.UploadTrades(ctx, gateway.TradeUpload{
					File: &gateway.FilePart{Name: filepath.Base(args[0]), ContentType: "text/csv", Content: f},
				}))
			}),
		},
		&cobra.Command{
			Use:   "sample",
			Short: "Analyze the backend's sample trades",
			Args:  cobra.NoArgs,
			RunE: authed(func(ctx context.Context, a *App, _ []string) error {
				return show(a.out, a.gw.UploadTrades(ctx, gateway.TradeUpload{UseSample: true}))
			}),
		},
		&cobra.Command{
			Use:   "quick <trades.json>",
			Short: "Analyze trades given as a JSON array",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(ctx context.Context, a *App, args []string) error {
				var req models.QuickAnalyzeRequest
				if err := readJSONFile(args[0], &req.Trades); err != nil {
					return err
				}
				return show(a.out, a.gw.QuickAnalyze(ctx, req))
			}),
		},
		&cobra.Command{
			Use:   "get <analysis-id>",
			Short: "Show a stored analysis",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(ctx context.Context, a *App, args []string) error {
				return show(a.out, a.gw.GetAnalysis(ctx, args[0]))
			}),
		},
		newAnalyzeListCmd(),
	)
	return cmd
}

func newAnalyzeListCmd() *cobra.Command {
	var q models.ListQuery
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List past analyses",
		Args:  cobra.NoArgs,
		RunE: authed(func(ctx context.Context, a *App, _ []string) error {
			res := a.gw.ListAnalyses(ctx, q)
			if !res.OK {
				return show(a.out, res)
			}
			for _, s := range res.Data.Analyses {
				score, grade := "-", "-"
				if s.Score != nil {
					score = fmt.Sprintf("%.1f", *s.Score)
				}
				if s.Grade != nil {
					grade = *s.Grade
				}
				fmt.Fprintf(a.out, "%s  %-24s  %4d trades  score %5s  grade %s  %s\n",
					s.ID, s.Filename, s.TradeCount, score, grade, s.Status)
			}
			fmt.Fprintf(a.out, "%d of %d\n", len(res.Data.Analyses), res.Data.Total)
			return nil
		}),
	}
	cmd.Flags().IntVar(&q.Skip, "skip", 0, "number of analyses to skip")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "maximum number of analyses")
	return cmd
}

func readJSONFile(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
