package server

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

const (
	recentAnalyses  = 5
	trendWindow     = 30 * 24 * time.Hour
	insightAnalyses = 10
)

var periodWindows = map[models.Period]time.Duration{
	models.PeriodDay:   24 * time.Hour,
	models.PeriodWeek:  7 * 24 * time.Hour,
	models.PeriodMonth: 30 * 24 * time.Hour,
	models.PeriodYear:  365 * 24 * time.Hour,
}

// riskAreas names recurring risks in insight text.
var riskAreas = map[string]string{
	"over_leverage":   "position sizing",
	"no_stop_loss":    "stop-loss usage",
	"revenge_trading": "emotional trading",
	"poor_rr_ratio":   "risk-reward management",
	"high_drawdown":   "capital preservation",
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func (a *API) dashboardSummary(c *gin.Context) {
	all := a.data.userAnalyses(currentUserID(c))
	out := models.DashboardSummary{
		TotalAnalyses:    len(all),
		RecentAnalyses:   []models.Analysis{},
		RiskDistribution: map[string]int{},
		ImprovementTrend: []models.TrendPoint{},
	}
	if len(all) == 0 {
		ok(c, out, "")
		return
	}

	out.RiskDistribution = map[string]int{"low": 0, "medium": 0, "high": 0}
	var sum float64
	for _, rec := range all {
		sum += rec.Result.ScoreResult.Score
		for level, n := range rec.Result.ScoreResult.RiskBreakdown {
			if _, known := out.RiskDistribution[level]; known {
				out.RiskDistribution[level] += n
			}
		}
	}
	out.AverageScore = round2(sum / float64(len(all)))

	for i := 0; i < len(all) && i < recentAnalyses; i++ {
		out.RecentAnalyses = append(out.RecentAnalyses, toAnalysis(all[i]))
	}

	cutoff := a.now().Add(-trendWindow)
	weekly := map[int][]float64{}
	recent := 0
	for _, rec := range all {
		if rec.CreatedAt.Before(cutoff) {
			continue
		}
		recent++
		_, week := rec.CreatedAt.ISOWeek()
		weekly[week] = append(weekly[week], rec.Result.ScoreResult.Score)
	}
	if recent > 1 {
		weeks := make([]int, 0, len(weekly))
		for w := range weekly {
			weeks = append(weeks, w)
		}
		sort.Ints(weeks)
		for _, w := range weeks {
			scores := weekly[w]
			var s float64
			for _, v := range scores {
				s += v
			}
			out.ImprovementTrend = append(out.ImprovementTrend, models.TrendPoint{
				Week:          w,
				AverageScore:  round2(s / float64(len(scores))),
				AnalysisCount: len(scores),
			})
		}
	}

	ok(c, out, "")
}

func (a *API) dashboardMetrics(c *gin.Context) {
	period := models.Period(c.DefaultQuery("period", string(models.PeriodMonth)))
	window, known := periodWindows[period]
	if !known {
		unprocessable(c, "query", "period must be one of: day, week, month, year")
		return
	}

	all := a.data.userAnalyses(currentUserID(c))
	cutoff := a.now().Add(-window)
	out := models.PerformanceMetrics{
		Period:  period,
		Metrics: []models.MetricPoint{},
		Trends:  map[string]float64{},
	}
	// Oldest first.
	for i := len(all) - 1; i >= 0; i-- {
		rec := all[i]
		if rec.CreatedAt.Before(cutoff) {
			continue
		}
		m, s := rec.Result.Metrics, rec.Result.ScoreResult
		winRate, pf, dd := m.WinRate, m.ProfitFactor, m.MaxDrawdownPct
		out.Metrics = append(out.Metrics, models.MetricPoint{
			Date:         rec.CreatedAt.Format(time.RFC3339),
			Score:        s.Score,
			Grade:        s.Grade,
			WinRate:      &winRate,
			ProfitFactor: &pf,
			MaxDrawdown:  &dd,
			RiskCount:    s.TotalRisks,
		})
	}
	out.AnalysesCount = len(out.Metrics)

	if n := len(out.Metrics); n > 0 {
		first, last := out.Metrics[0], out.Metrics[n-1]
		if n >= 2 {
			out.Trends["score_change"] = round2(last.Score - first.Score)
			out.Trends["win_rate_change"] = round2(*last.WinRate - *first.WinRate)
			out.Trends["risk_count_change"] = float64(last.RiskCount - first.RiskCount)
		}
		best, worst, sum := first.Score, first.Score, 0.0
		for _, p := range out.Metrics {
			best = math.Max(best, p.Score)
			worst = math.Min(worst, p.Score)
			sum += p.Score
		}
		out.Summary = models.MetricsSummary{
			AverageScore: round2(sum / float64(n)),
			BestScore:    best,
			WorstScore:   worst,
		}
	}

	ok(c, out, "")
}

func (a *API) dashboardInsights(c *gin.Context) {
	limit, good := queryInt(c, "limit", 3)
	if !good {
		return
	}
	if limit < 0 {
		unprocessable(c, "query", "limit must not be negative")
		return
	}

	all := a.data.userAnalyses(currentUserID(c))
	if len(all) > insightAnalyses {
		all = all[:insightAnalyses]
	}
	if len(all) == 0 {
		ok(c, models.Insights{Insights: []string{}}, "No analyses found for insights")
		return
	}

	ok(c, models.Insights{
		Insights:      insights(all, limit),
		AnalysisCount: len(all),
		Timeframe:     fmt.Sprintf("last %d analyses", len(all)),
	}, "")
}

// insights derives observations from analyses ordered newest first.
func insights(all []analysisRecord, limit int) []string {
	out := []string{}

	counts := map[string]int{}
	var order []string
	for _, rec := range all {
		for _, r := range rec.Result.RiskResults.DetectedRisks {
			if counts[r] == 0 {
				order = append(order, r)
			}
			counts[r]++
		}
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > limit {
		order = order[:limit]
	}
	for _, r := range order {
		if float64(counts[r]) < float64(len(all))/2 {
			continue
		}
		name, known := riskAreas[r]
		if !known {
			name = strings.ReplaceAll(r, "_", " ")
		}
		out = append(out, fmt.Sprintf("You frequently struggle with %s. This appears in %d out of %d recent analyses.", name, counts[r], len(all)))
	}

	if len(all) >= 2 {
		newest, oldest := all[0].Result.ScoreResult.Score, all[len(all)-1].Result.ScoreResult.Score
		switch {
		case newest > oldest:
			out = append(out, fmt.Sprintf("Your risk score has improved by %.1f points since your earliest recent analysis. Keep it up!", newest-oldest))
		case newest < oldest:
			out = append(out, fmt.Sprintf("Your risk score has declined by %.1f points. Consider reviewing recent trading patterns.", oldest-newest))
		}
	}

	if bd := all[0].Result.ScoreResult.Breakdown; len(bd) > 0 {
		best, worst := bd[0], bd[0]
		for _, b := range bd[1:] {
			if b.Contribution < best.Contribution {
				best = b
			}
			if b.Contribution > worst.Contribution {
				worst = b
			}
		}
		out = append(out,
			fmt.Sprintf("Your strongest area is %s with only %.1f risk contribution.", strings.ReplaceAll(best.Risk, "_", " "), best.Contribution),
			fmt.Sprintf("Your weakest area is %s with %.1f risk contribution.", strings.ReplaceAll(worst.Risk, "_", " "), worst.Contribution),
		)
	}
	return out
}
