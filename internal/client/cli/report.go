package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/filex"
)

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate and download analysis reports",
	}
	cmd.AddCommand(
		newReportGenerateCmd(),
		&cobra.Command{
			Use:   "list <analysis-id>",
			Short: "List reports generated for an analysis",
			Args:  cobra.ExactArgs(1),
			RunE: authed(func(ctx context.Context, a *App, args []string) error {
				return show(a.out, a.reports.List(ctx, args[0]))
			}),
		},
		newReportDownloadCmd(),
	)
	return cmd
}

func newReportGenerateCmd() *cobra.Command {
	var (
		format   string
		sections []string
	)
	cmd := &cobra.Command{
		Use:   "generate <analysis-id>",
		Short: "Generate a report for an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: authed(func(ctx context.Context, a *App, args []string) error {
			return show(a.out, a.reports.Generate(ctx, models.ReportRequest{
				AnalysisID:      args[0],
				Format:          models.ReportFormat(format),
				IncludeSections: sections,
			}))
		}),
	}
	cmd.Flags().StringVarP(&format, "format", "f", string(models.ReportMarkdown), "markdown, html or pdf")
	cmd.Flags().StringSliceVar(&sections, "section", nil, "limit the report to these sections")
	return cmd
}

func newReportDownloadCmd() *cobra.Command {
	var (
		output string
		format string
		save   bool
	)
	cmd := &cobra.Command{
		Use:   "download <report-id>",
		Short: "Download a report to stdout, a file or the archive",
		Args:  cobra.ExactArgs(1),
		RunE: authed(func(ctx context.Context, a *App, args []string) error {
			if save {
				locs, err := a.reports.Archive(ctx, args[0], models.ReportFormat(format))
				for _, loc := range locs {
					fmt.Fprintln(a.out, "Saved", loc)
				}
				return err
			}

			data := a.gw.DownloadReport(ctx, args[0], output != "")
			if data == nil {
				return errors.New("report download failed")
			}
			if output == "" {
				_, err := a.out.Write(data)
				return err
			}
			if err := filex.WriteFileAtomic(output, data); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Saved", output)
			return nil
		}),
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the rendered report to this file")
	cmd.Flags().StringVarP(&format, "format", "f", string(models.ReportMarkdown), "report format, used for archive file names")
	cmd.Flags().BoolVar(&save, "archive", false, "store the report in the configured archive")
	return cmd
}
