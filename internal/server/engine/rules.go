package engine

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// Risk identifiers.
const (
	RiskOverLeverage  = "over_leverage"
	RiskNoStopLoss    = "no_stop_loss"
	RiskHighDrawdown  = "high_drawdown"
	RiskRevenge       = "revenge_trading"
	RiskPoorRR        = "poor_rr_ratio"
	RiskLowWinRate    = "low_win_rate"
	RiskConcentration = "concentration_risk"
	RiskOvertrading   = "overtrading"
)

// Thresholds configures the rule engine.
type Thresholds struct {
	MaxPositionSizePct    float64
	MinWinRate            float64
	MaxDrawdownPct        float64
	MinRRRatio            float64
	MaxRevengeTradingPct  float64
	MinSLUsageRate        float64
	MaxSymbolConcentrated float64
}

// DefaultThresholds are used when a user has not configured their own.
var DefaultThresholds = Thresholds{
	MaxPositionSizePct:    2,
	MinWinRate:            40,
	MaxDrawdownPct:        20,
	MinRRRatio:            1,
	MaxRevengeTradingPct:  10,
	MinSLUsageRate:        80,
	MaxSymbolConcentrated: 50,
}

// WithSettings overrides thresholds with the values a user has set.
func (t Thresholds) WithSettings(s models.UserSettings) Thresholds {
	set := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.MaxPositionSizePct, s.MaxPositionSizePct)
	set(&t.MinWinRate, s.MinWinRate)
	set(&t.MaxDrawdownPct, s.MaxDrawdownPct)
	set(&t.MinRRRatio, s.MinRRRatio)
	set(&t.MinSLUsageRate, s.MinSLUsageRate)
	return t
}

// severity maps how far value exceeds threshold, relative to max, onto 0..100.
func severity(value, threshold, max float64) float64 {
	excess := math.Max(0, value-threshold)
	span := math.Max(0, max-threshold)
	if span == 0 {
		if excess > 0 {
			return 100
		}
		return 0
	}
	return round2(math.Min(100, excess/span*100))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Detect runs every rule against c in a fixed order.
func Detect(c Computed, trades []models.Trade, th Thresholds) models.RiskResults {
	res := models.RiskResults{DetectedRisks: []string{}, RiskDetails: map[string]models.RiskDetail{}}
	add := func(name string, d models.RiskDetail) {
		res.DetectedRisks = append(res.DetectedRisks, name)
		res.RiskDetails[name] = d
	}
	m := c.Metrics

	if c.Columns.Sizing && m.AvgPositionSizePct > th.MaxPositionSizePct {
		add(RiskOverLeverage, models.RiskDetail{
			Severity:  severity(m.AvgPositionSizePct, th.MaxPositionSizePct, 5),
			Threshold: th.MaxPositionSizePct,
			Message:   fmt.Sprintf("Average position size (%.1f%%) exceeds recommended limit (%g%% of account)", m.AvgPositionSizePct, th.MaxPositionSizePct),
		})
	}
	if c.Columns.StopLoss && m.SLUsageRate < th.MinSLUsageRate {
		add(RiskNoStopLoss, models.RiskDetail{
			Severity:  severity(th.MinSLUsageRate, m.SLUsageRate, th.MinSLUsageRate),
			Threshold: th.MinSLUsageRate,
			Message:   fmt.Sprintf("%.1f%% of trades executed without stop-loss orders", 100-m.SLUsageRate),
		})
	}
	if c.Columns.Sizing && m.MaxDrawdownPct > th.MaxDrawdownPct {
		add(RiskHighDrawdown, models.RiskDetail{
			Severity:  severity(m.MaxDrawdownPct, th.MaxDrawdownPct, 50),
			Threshold: th.MaxDrawdownPct,
			Message:   fmt.Sprintf("Maximum drawdown (%.1f%%) exceeds safe limit (%g%%)", m.MaxDrawdownPct, th.MaxDrawdownPct),
		})
	}
	if c.Columns.Times && m.RevengeTradingPct > th.MaxRevengeTradingPct {
		add(RiskRevenge, models.RiskDetail{
			Severity:  severity(m.RevengeTradingPct, th.MaxRevengeTradingPct, 30),
			Threshold: th.MaxRevengeTradingPct,
			Message:   fmt.Sprintf("Revenge trading detected: %.1f%% of trades entered shortly after a loss", m.RevengeTradingPct),
		})
	}
	if m.RiskRewardRatio < th.MinRRRatio {
		add(RiskPoorRR, models.RiskDetail{
			Severity:  severity(th.MinRRRatio, m.RiskRewardRatio, th.MinRRRatio),
			Threshold: th.MinRRRatio,
			Message:   fmt.Sprintf("Risk-reward ratio (%.2f) below recommended minimum (%g)", m.RiskRewardRatio, th.MinRRRatio),
		})
	}
	if m.WinRate < th.MinWinRate {
		add(RiskLowWinRate, models.RiskDetail{
			Severity:  severity(th.MinWinRate, m.WinRate, th.MinWinRate),
			Threshold: th.MinWinRate,
			Message:   fmt.Sprintf("Win rate (%.1f%%) below acceptable level (%g%%)", m.WinRate, th.MinWinRate),
		})
	}
	if c.Columns.Symbol {
		if sym, pct := topSymbol(trades); pct > th.MaxSymbolConcentrated {
			add(RiskConcentration, models.RiskDetail{
				Severity:  severity(pct, th.MaxSymbolConcentrated, 80),
				Threshold: th.MaxSymbolConcentrated,
				Message:   fmt.Sprintf("High concentration: %.1f%% of trades in %s", pct, sym),
			})
		}
	}
	if c.Columns.Times && m.AvgTradeDurationHours < 1 && m.TotalTrades > 20 {
		// Trades are assumed to span 30 days.
		if perDay := float64(m.TotalTrades) / 30; perDay > 5 {
			add(RiskOvertrading, models.RiskDetail{
				Severity: math.Min(100, round2(perDay*10)),
				Message:  fmt.Sprintf("Potential overtrading: %.1f trades per day with average duration %.1f hours", perDay, m.AvgTradeDurationHours),
			})
		}
	}

	res.TotalRisks = len(res.DetectedRisks)
	return res
}

// topSymbol returns the most traded symbol and its share of all trades.
// Ties go to the symbol seen first.
func topSymbol(trades []models.Trade) (string, float64) {
	counts := map[string]int{}
	var order []string
	for _, t := range trades {
		if t.Symbol == "" {
			continue
		}
		if counts[t.Symbol] == 0 {
			order = append(order, t.Symbol)
		}
		counts[t.Symbol]++
	}
	best := ""
	for _, s := range order {
		if best == "" || counts[s] > counts[best] {
			best = s
		}
	}
	if best == "" {
		return "", 0
	}
	return best, float64(counts[best]) / float64(len(trades)) * 100
}
