package engine

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// ReportMarkdown renders an analysis as a Markdown risk health report.
func ReportMarkdown(res models.AnalysisResult, at time.Time) string {
	var b strings.Builder
	m, s := res.Metrics, res.ScoreResult

	fmt.Fprintf(&b, "# TradeGuard - Risk Health Report\n")
	fmt.Fprintf(&b, "**Generated:** %s\n", at.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Report ID:** TG-%s\n\n---\n\n", at.Format("20060102150405"))

	b.WriteString("## Executive Summary\n\n")
	fmt.Fprintf(&b, "**Overall Risk Score:** %.2f/100\n", s.Score)
	fmt.Fprintf(&b, "**Risk Grade:** %s\n", s.Grade)
	fmt.Fprintf(&b, "**Total Risks Detected:** %d\n", s.TotalRisks)
	fmt.Fprintf(&b, "**Improvement Potential:** %.2f%%\n\n", s.ImprovementPotential)
	b.WriteString("### Assessment:\n")
	if summary, ok := res.AIExplanations["risk_summary"].(string); ok {
		b.WriteString(summary)
	} else {
		b.WriteString("No assessment available")
	}
	b.WriteString("\n\n---\n\n")

	b.WriteString("## Trading Performance Metrics\n\n| Metric | Value |\n|--------|-------|\n")
	rows := [][2]string{
		{"Total Trades", fmt.Sprint(m.TotalTrades)},
		{"Win Rate", fmt.Sprintf("%.1f%%", m.WinRate)},
		{"Profit Factor", fmt.Sprintf("%.2f", m.ProfitFactor)},
		{"Net Profit", fmt.Sprintf("$%.2f", m.NetProfit)},
		{"Average Position Size", fmt.Sprintf("%.1f%%", m.AvgPositionSizePct)},
		{"Maximum Drawdown", fmt.Sprintf("%.1f%%", m.MaxDrawdownPct)},
		{"Risk-Reward Ratio", fmt.Sprintf("%.2f", m.RiskRewardRatio)},
		{"Stop-Loss Usage", fmt.Sprintf("%.1f%%", m.SLUsageRate)},
		{"Revenge Trading", fmt.Sprintf("%.1f%%", m.RevengeTradingPct)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %s |\n", r[0], r[1])
	}

	b.WriteString("\n---\n\n## Risk Analysis\n\n### Detected Risks:\n")
	if len(res.RiskResults.DetectedRisks) == 0 {
		b.WriteString("No significant risks detected.\n")
	}
	for _, name := range res.RiskResults.DetectedRisks {
		d := res.RiskResults.RiskDetails[name]
		fmt.Fprintf(&b, "- **%s** (Severity: %g%%): %s\n", Title(name), d.Severity, d.Message)
	}

	b.WriteString("\n---\n\n## Action Plan (Non-Advisory)\n\n### Priority Areas:\n")
	for i, name := range s.TopRisks {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, Title(name))
	}
	if s.Recommendation != "" {
		fmt.Fprintf(&b, "\n%s\n", s.Recommendation)
	}

	b.WriteString("\n---\n\n## Important Disclaimers\n\n")
	b.WriteString("1. **Educational Purpose Only**: This report is for educational purposes only.\n")
	b.WriteString("2. **No Trading Advice**: This report does not provide trading advice, signals, or predictions.\n")
	b.WriteString("3. **Past Performance**: Past performance is not indicative of future results.\n")
	b.WriteString("4. **Risk of Loss**: Trading involves risk of loss.\n\n---\n*End of Report*\n")
	return b.String()
}

// ReportHTML converts a report produced by ReportMarkdown into a standalone
// HTML page. Only headings, list items and pipe tables are recognised.
func ReportHTML(md string) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"UTF-8\">\n")
	b.WriteString("<title>TradeGuard - Risk Health Report</title>\n</head>\n<body>\n")

	inTable := false
	for _, line := range strings.Split(md, "\n") {
		if strings.HasPrefix(line, "|") {
			if strings.HasPrefix(line, "|--") {
				continue
			}
			if !inTable {
				b.WriteString("<table>\n")
				inTable = true
			}
			b.WriteString("<tr>")
			cells := strings.Split(strings.Trim(line, "|"), "|")
			for _, cell := range cells {
				fmt.Fprintf(&b, "<td>%s</td>", html.EscapeString(strings.TrimSpace(cell)))
			}
			b.WriteString("</tr>\n")
			continue
		}
		if inTable {
			b.WriteString("</table>\n")
			inTable = false
		}

		switch {
		case strings.HasPrefix(line, "### "):
			fmt.Fprintf(&b, "<h3>%s</h3>\n", html.EscapeString(line[4:]))
		case strings.HasPrefix(line, "## "):
			fmt.Fprintf(&b, "<h2>%s</h2>\n", html.EscapeString(line[3:]))
		case strings.HasPrefix(line, "# "):
			fmt.Fprintf(&b, "<h1>%s</h1>\n", html.EscapeString(line[2:]))
		case strings.HasPrefix(line, "- "):
			fmt.Fprintf(&b, "<li>%s</li>\n", html.EscapeString(line[2:]))
		case line == "---":
			b.WriteString("<hr>\n")
		case strings.TrimSpace(line) != "":
			fmt.Fprintf(&b, "<p>%s</p>\n", html.EscapeString(line))
		}
	}
	if inTable {
		b.WriteString("</table>\n")
	}
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
