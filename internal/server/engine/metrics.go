package engine

import (
	"math"
	"sort"
	"time"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// contractSize converts a lot size to units of the base currency.
const contractSize = 100000

// maxProfitFactor stands in for an infinite profit factor (no losing trades).
const maxProfitFactor = 999

// revengeWindow is how soon after a loss a new entry counts as revenge.
const revengeWindow = 30 * time.Minute

// Columns records which optional inputs the trades carry. Metrics that need
// a missing column are not computed and the matching rules do not fire.
type Columns struct {
	Sizing   bool // lot_size and account_balance_before
	StopLoss bool
	Times    bool // entry_time and exit_time
	Symbol   bool
}

// ColumnsOf infers Columns from the values present in trades.
func ColumnsOf(trades []models.Trade) Columns {
	var c Columns
	for _, t := range trades {
		c.Sizing = c.Sizing || (t.LotSize != 0 && t.AccountBalanceBefore != 0)
		c.StopLoss = c.StopLoss || t.StopLoss != nil
		c.Times = c.Times || (t.EntryTime != "" && t.ExitTime != "")
		c.Symbol = c.Symbol || t.Symbol != ""
	}
	return c
}

// Computed is the output of Compute.
type Computed struct {
	models.Metrics
	Columns Columns
}

var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006.01.02 15:04:05",
}

func parseTime(s string) (time.Time, bool) {
	for _, l := range timeLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Compute derives trading statistics from trades.
func Compute(trades []models.Trade, cols Columns) Computed {
	out := Computed{Columns: cols}
	m := &out.Metrics
	n := len(trades)
	m.TotalTrades = n
	if n == 0 {
		return out
	}

	for _, t := range trades {
		switch {
		case t.ProfitLoss > 0:
			m.WinningTrades++
			m.TotalProfit += t.ProfitLoss
		case t.ProfitLoss < 0:
			m.LosingTrades++
			m.TotalLoss += -t.ProfitLoss
		}
		m.NetProfit += t.ProfitLoss
	}
	m.WinRate = float64(m.WinningTrades) / float64(n) * 100
	if m.WinningTrades > 0 {
		m.AvgWin = m.TotalProfit / float64(m.WinningTrades)
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = m.TotalLoss / float64(m.LosingTrades)
	}
	switch {
	case m.TotalLoss != 0:
		m.ProfitFactor = m.TotalProfit / m.TotalLoss
	case m.TotalProfit > 0:
		m.ProfitFactor = maxProfitFactor
	}
	if m.WinningTrades > 0 && m.LosingTrades > 0 && m.AvgLoss != 0 {
		m.RiskRewardRatio = m.AvgWin / m.AvgLoss
	}

	if cols.Sizing {
		computeSizing(m, trades)
	}
	if cols.StopLoss {
		missing := 0
		for _, t := range trades {
			if t.StopLoss == nil || *t.StopLoss == 0 {
				missing++
			}
		}
		m.SLUsageRate = (1 - float64(missing)/float64(n)) * 100
	}
	if cols.Times {
		computePatterns(m, trades)
	}
	return out
}

func computeSizing(m *models.Metrics, trades []models.Trade) {
	var sum float64
	counted := 0
	for _, t := range trades {
		if t.AccountBalanceBefore == 0 {
			continue
		}
		pct := t.LotSize * contractSize / t.AccountBalanceBefore * 100
		sum += pct
		counted++
		m.MaxPositionSizePct = math.Max(m.MaxPositionSizePct, pct)
	}
	if counted > 0 {
		m.AvgPositionSizePct = sum / float64(counted)
	}

	peak := trades[0].AccountBalanceBefore
	for _, t := range trades {
		b := t.AccountBalanceBefore
		if b > peak {
			peak = b
		}
		if peak > 0 {
			m.MaxDrawdownPct = math.Max(m.MaxDrawdownPct, (peak-b)/peak*100)
		}
	}
}

type timedTrade struct {
	entry, exit time.Time
	pnl         float64
}

func computePatterns(m *models.Metrics, trades []models.Trade) {
	timed := make([]timedTrade, 0, len(trades))
	for _, t := range trades {
		entry, ok1 := parseTime(t.EntryTime)
		exit, ok2 := parseTime(t.ExitTime)
		if ok1 && ok2 {
			timed = append(timed, timedTrade{entry: entry, exit: exit, pnl: t.ProfitLoss})
		}
	}
	if len(timed) == 0 {
		return
	}

	var hours float64
	for _, t := range timed {
		hours += t.exit.Sub(t.entry).Hours()
	}
	m.AvgTradeDurationHours = hours / float64(len(timed))

	sort.SliceStable(timed, func(i, j int) bool { return timed[i].entry.Before(timed[j].entry) })
	for i := 1; i < len(timed); i++ {
		if timed[i-1].pnl < 0 && timed[i].entry.Sub(timed[i-1].entry) < revengeWindow {
			m.RevengeTradesCount++
		}
	}
	m.RevengeTradingPct = float64(m.RevengeTradesCount) / float64(len(trades)) * 100

	var counts [24]int
	for _, t := range timed {
		counts[t.entry.Hour()]++
	}
	best := 0
	for h := 1; h < 24; h++ {
		if counts[h] > counts[best] {
			best = h
		}
	}
	m.MostActiveHour = &best
}
