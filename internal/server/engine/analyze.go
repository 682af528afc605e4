package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// Analyze runs the full pipeline over trades.
func Analyze(trades []models.Trade, cols Columns, th Thresholds) models.AnalysisResult {
	c := Compute(trades, cols)
	risks := Detect(c, trades, th)
	score := Score(risks.RiskDetails)
	return models.AnalysisResult{
		Metrics:        c.Metrics,
		RiskResults:    risks,
		ScoreResult:    score,
		AIExplanations: Explain(c.Metrics, risks, score),
	}
}

// Explain produces rule-based explanation text keyed like the AI
// explainer's output, so clients can render either.
func Explain(m models.Metrics, risks models.RiskResults, score models.ScoreResult) map[string]any {
	perRisk := map[string]any{}
	names := make([]string, 0, len(risks.RiskDetails))
	for name := range risks.RiskDetails {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		d := risks.RiskDetails[name]
		perRisk[name] = map[string]any{
			"title":       Title(name),
			"explanation": d.Message,
			"severity":    d.Severity,
		}
	}

	summary := fmt.Sprintf("Across %d trades you scored %.1f (grade %s) with a %.1f%% win rate.",
		m.TotalTrades, score.Score, score.Grade, m.WinRate)
	if risks.TotalRisks == 0 {
		summary += " No significant risks were detected."
	} else {
		summary += fmt.Sprintf(" %d risk(s) need attention.", risks.TotalRisks)
	}

	return map[string]any{
		"risk_summary":   summary,
		"risks":          perRisk,
		"recommendation": score.Recommendation,
		"ai_model":       "rules",
	}
}

// SampleTrades is the data set analyzed when a client asks for the sample.
func SampleTrades() []models.Trade {
	sl := func(v float64) *float64 { return &v }
	return []models.Trade{
		{TradeID: 1, ProfitLoss: 50, LotSize: 0.1, AccountBalanceBefore: 10000, StopLoss: sl(1.1), EntryTime: "2024-01-01 10:00:00", ExitTime: "2024-01-01 11:00:00"},
		{TradeID: 2, ProfitLoss: -30, LotSize: 0.2, AccountBalanceBefore: 10050, StopLoss: sl(1.2), EntryTime: "2024-01-01 11:00:00", ExitTime: "2024-01-01 11:30:00"},
		{TradeID: 3, ProfitLoss: 75, LotSize: 0.15, AccountBalanceBefore: 10020, StopLoss: sl(1.15), EntryTime: "2024-01-01 12:00:00", ExitTime: "2024-01-01 13:00:00"},
		{TradeID: 4, ProfitLoss: -20, LotSize: 0.1, AccountBalanceBefore: 10095, StopLoss: sl(1.3), EntryTime: "2024-01-01 12:15:00", ExitTime: "2024-01-01 12:45:00"},
	}
}

// FormatExplanations renders Explain output as plain text.
func FormatExplanations(exp map[string]any) string {
	var b strings.Builder
	if s, ok := exp["risk_summary"].(string); ok {
		b.WriteString(s)
		b.WriteString("\n")
	}
	if risks, ok := exp["risks"].(map[string]any); ok && len(risks) > 0 {
		names := make([]string, 0, len(risks))
		for name := range risks {
			names = append(names, name)
		}
		sort.Strings(names)
		b.WriteString("\nRisks:\n")
		for _, name := range names {
			r, _ := risks[name].(map[string]any)
			fmt.Fprintf(&b, "- %v: %v\n", r["title"], r["explanation"])
		}
	}
	if rec, ok := exp["recommendation"].(string); ok && rec != "" {
		b.WriteString("\nRecommendation: ")
		b.WriteString(rec)
		b.WriteString("\n")
	}
	return b.String()
}
