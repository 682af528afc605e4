package models

// Metrics are the trading statistics computed server-side for a batch of
// trades. Fields the backend omits stay zero.
type Metrics struct {
	TotalTrades           int     `json:"total_trades"`
	WinningTrades         int     `json:"winning_trades"`
	LosingTrades          int     `json:"losing_trades"`
	WinRate               float64 `json:"win_rate"`
	TotalProfit           float64 `json:"total_profit"`
	TotalLoss             float64 `json:"total_loss"`
	NetProfit             float64 `json:"net_profit"`
	AvgWin                float64 `json:"avg_win"`
	AvgLoss               float64 `json:"avg_loss"`
	ProfitFactor          float64 `json:"profit_factor"`
	AvgPositionSizePct    float64 `json:"avg_position_size_pct"`
	MaxPositionSizePct    float64 `json:"max_position_size_pct"`
	SLUsageRate           float64 `json:"sl_usage_rate"`
	RiskRewardRatio       float64 `json:"risk_reward_ratio"`
	MaxDrawdownPct        float64 `json:"max_drawdown_pct"`
	AvgTradeDurationHours float64 `json:"avg_trade_duration_hours"`
	RevengeTradesCount    int     `json:"revenge_trades_count"`
	RevengeTradingPct     float64 `json:"revenge_trading_pct"`
	MostActiveHour        *int    `json:"most_active_hour,omitempty"`
}

// RiskDetail describes one detected risk. Extra numeric fields vary by risk
// type and are not modelled.
type RiskDetail struct {
	Severity  float64 `json:"severity"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

type RiskResults struct {
	DetectedRisks []string              `json:"detected_risks"`
	RiskDetails   map[string]RiskDetail `json:"risk_details"`
	TotalRisks    int                   `json:"total_risks"`
}

type ScoreBreakdown struct {
	Risk         string  `json:"risk"`
	Severity     float64 `json:"severity"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
	Message      string  `json:"message"`
}

type ScoreResult struct {
	Score                float64          `json:"score"`
	Grade                string           `json:"grade"`
	GradeColor           string           `json:"grade_color,omitempty"`
	ImprovementPotential float64          `json:"improvement_potential"`
	TotalRisks           int              `json:"total_risks"`
	Breakdown            []ScoreBreakdown `json:"breakdown"`
	TopRisks             []string         `json:"top_risks"`
	RiskBreakdown        map[string]int   `json:"risk_breakdown,omitempty"`
	Recommendation       string           `json:"recommendation"`
}

// AnalysisResult is returned when trades are submitted for analysis.
type AnalysisResult struct {
	AnalysisID     string         `json:"analysis_id"`
	Metrics        Metrics        `json:"metrics"`
	RiskResults    RiskResults    `json:"risk_results"`
	ScoreResult    ScoreResult    `json:"score_result"`
	AIExplanations map[string]any `json:"ai_explanations,omitempty"`
}

// Analysis is a stored analysis fetched by id.
type Analysis struct {
	ID             string         `json:"id"`
	Status         string         `json:"status"`
	Metrics        *Metrics       `json:"metrics,omitempty"`
	RiskResults    *RiskResults   `json:"risk_results,omitempty"`
	ScoreResult    *ScoreResult   `json:"score_result,omitempty"`
	AIExplanations map[string]any `json:"ai_explanations,omitempty"`
	CreatedAt      Timestamp      `json:"created_at"`
	CompletedAt    Timestamp      `json:"completed_at"`
	Filename       string         `json:"filename,omitempty"`
	TradeCount     int            `json:"trade_count,omitempty"`
}

type AnalysisSummary struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	TradeCount int       `json:"trade_count"`
	Score      *float64  `json:"score"`
	Grade      *string   `json:"grade"`
	CreatedAt  Timestamp `json:"created_at"`
	Status     string    `json:"status"`
}

type AnalysisList struct {
	Analyses []AnalysisSummary `json:"analyses"`
	Total    int               `json:"total"`
	Skip     int               `json:"skip"`
	Limit    int               `json:"limit"`
}

// ListQuery pages through stored analyses. Zero Limit means the backend
// default.
type ListQuery struct {
	Skip  int `validate:"gte=0"`
	Limit int `validate:"gte=0,lte=100"`
}

// Trade is one row of trade history submitted for quick analysis.
type Trade struct {
	TradeID              any      `json:"trade_id,omitempty"`
	ProfitLoss           float64  `json:"profit_loss"`
	LotSize              float64  `json:"lot_size,omitempty"`
	AccountBalanceBefore float64  `json:"account_balance_before,omitempty"`
	StopLoss             *float64 `json:"stop_loss,omitempty"`
	EntryTime            string   `json:"entry_time,omitempty"`
	ExitTime             string   `json:"exit_time,omitempty"`
	Symbol               string   `json:"symbol,omitempty"`
}

type QuickAnalyzeRequest struct {
	Trades []Trade `json:"trades" validate:"required,min=1,dive"`
}
