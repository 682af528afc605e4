package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// riskOrder lists scored risks by descending weight; breakdowns follow it.
var riskOrder = []string{
	RiskOverLeverage, RiskNoStopLoss, RiskHighDrawdown, RiskRevenge,
	RiskPoorRR, RiskLowWinRate, RiskConcentration, RiskOvertrading,
}

// The five core weights sum to 100. The supplementary risks add 15 on top.
var weights = map[string]float64{
	RiskOverLeverage:  30,
	RiskNoStopLoss:    25,
	RiskHighDrawdown:  20,
	RiskRevenge:       15,
	RiskPoorRR:        10,
	RiskLowWinRate:    5,
	RiskConcentration: 5,
	RiskOvertrading:   5,
}

var gradeColors = map[string]string{
	"A": "#10b981",
	"B": "#f59e0b",
	"C": "#ef4444",
	"D": "#dc2626",
}

var gradeAdvice = map[string]string{
	"A": "Maintain your excellent risk management practices. Consider periodic reviews to stay consistent.",
	"B": "Good risk management overall. Focus on addressing the few areas of concern to improve your score.",
	"C": "Significant improvement needed in risk management. Prioritize addressing the high-risk areas identified.",
	"D": "Urgent attention required. Your current risk management practices expose you to high potential losses.",
}

// Grade maps a 0..100 score to A (>= 80) through D (< 40).
func Grade(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 60:
		return "B"
	case score >= 40:
		return "C"
	default:
		return "D"
	}
}

// Score turns risk details into a weighted 0..100 score. Unknown risk names
// are ignored.
func Score(details map[string]models.RiskDetail) models.ScoreResult {
	if len(details) == 0 {
		return models.ScoreResult{
			Score:                95,
			Grade:                "A",
			GradeColor:           gradeColors["A"],
			ImprovementPotential: 5,
			Breakdown:            []models.ScoreBreakdown{},
			TopRisks:             []string{},
			RiskBreakdown:        map[string]int{"low": 100, "medium": 0, "high": 0},
			Recommendation:       "Excellent risk management! Continue with your disciplined approach.",
		}
	}

	var (
		breakdown []models.ScoreBreakdown
		impact    float64
		used      float64
	)
	for _, name := range riskOrder {
		d, ok := details[name]
		if !ok {
			continue
		}
		w := weights[name]
		contribution := d.Severity / 100 * w
		breakdown = append(breakdown, models.ScoreBreakdown{
			Risk:         name,
			Severity:     d.Severity,
			Weight:       w,
			Contribution: round2(contribution),
			Message:      d.Message,
		})
		impact += contribution
		used += w
	}

	raw := 100 - impact
	if raw < 0 {
		raw = 0
	}
	if used < 100 {
		raw = (raw*used + 100*(100-used)) / 100
	}
	score := round2(raw)
	grade := Grade(score)

	top := append([]models.ScoreBreakdown(nil), breakdown...)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Contribution > top[j].Contribution })
	if len(top) > 3 {
		top = top[:3]
	}
	topNames := make([]string, 0, len(top))
	for _, b := range top {
		topNames = append(topNames, b.Risk)
	}

	if breakdown == nil {
		breakdown = []models.ScoreBreakdown{}
	}
	return models.ScoreResult{
		Score:                score,
		Grade:                grade,
		GradeColor:           gradeColors[grade],
		ImprovementPotential: round2(100 - score),
		TotalRisks:           len(details),
		Breakdown:            breakdown,
		TopRisks:             topNames,
		RiskBreakdown:        severityBuckets(breakdown),
		Recommendation:       recommendation(grade, topNames),
	}
}

func severityBuckets(bs []models.ScoreBreakdown) map[string]int {
	out := map[string]int{"low": 0, "medium": 0, "high": 0}
	for _, b := range bs {
		switch {
		case b.Severity >= 70:
			out["high"]++
		case b.Severity >= 40:
			out["medium"]++
		default:
			out["low"]++
		}
	}
	return out
}

func recommendation(grade string, top []string) string {
	rec := gradeAdvice[grade]
	if len(top) == 0 {
		return rec
	}
	names := make([]string, len(top))
	for i, r := range top {
		names[i] = Title(r)
	}
	return rec + " Focus on: " + strings.Join(names, ", ") + "."
}

// Title turns a risk identifier into words, e.g. "no_stop_loss" -> "No Stop Loss".
func Title(id string) string {
	words := strings.Split(id, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// Scorecard renders s as a fixed-width text box.
func Scorecard(s models.ScoreResult) string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, "| %-40s |\n", fmt.Sprintf(format, args...))
	}
	rule := "+" + strings.Repeat("-", 42) + "+\n"

	b.WriteString(rule)
	line("%26s", "RISK HEALTH SCORECARD")
	b.WriteString(rule)
	line("Overall Score: %6.1f/100", s.Score)
	line("Grade:         %6s", s.Grade)
	line("Total Risks:   %6d", s.TotalRisks)
	line("Improvement:   %6.1f%%", s.ImprovementPotential)
	b.WriteString(rule)
	line("High Risks:    %6d", s.RiskBreakdown["high"])
	line("Medium Risks:  %6d", s.RiskBreakdown["medium"])
	line("Low Risks:     %6d", s.RiskBreakdown["low"])
	b.WriteString(rule)
	return b.String()
}

// Simulate estimates the score after the given percentage improvements.
// Each improvement point is worth half a score point.
func Simulate(req models.SimulationRequest) models.SimulationResult {
	var total float64
	for _, v := range req.Improvements {
		total += v
	}
	simulated := req.CurrentScore + total*0.5
	if simulated > 100 {
		simulated = 100
	}

	res := models.SimulationResult{
		OriginalScore:   req.CurrentScore,
		SimulatedScore:  simulated,
		Improvement:     simulated - req.CurrentScore,
		NewGrade:        Grade(simulated),
		Recommendations: []string{},
	}
	if simulated > req.CurrentScore {
		res.Recommendations = append(res.Recommendations,
			fmt.Sprintf("Implementing these improvements could increase your score by %.1f points", res.Improvement))
		if old := Grade(req.CurrentScore); old != res.NewGrade {
			res.Recommendations = append(res.Recommendations,
				fmt.Sprintf("This could improve your grade from %s to %s", old, res.NewGrade))
		}
	}
	return res
}

// RiskTypes describes the scored risk categories.
func RiskTypes() models.RiskTypes {
	return models.RiskTypes{
		RiskOverLeverage: {Name: "Over Leverage", Description: "Position size too large relative to account balance", Threshold: "2% of account per trade", Weight: 30},
		RiskNoStopLoss:   {Name: "No Stop Loss", Description: "Trading without stop-loss orders", Threshold: "80% minimum usage rate", Weight: 25},
		RiskHighDrawdown: {Name: "High Drawdown", Description: "Excessive peak-to-trough decline in account value", Threshold: "20% maximum drawdown", Weight: 20},
		RiskRevenge:      {Name: "Revenge Trading", Description: "Trading shortly after losses, often emotionally driven", Threshold: "10% maximum revenge trades", Weight: 15},
		RiskPoorRR:       {Name: "Poor Risk-Reward Ratio", Description: "Unfavorable ratio of potential profit to potential loss", Threshold: "1:1 minimum ratio", Weight: 10},
	}
}
