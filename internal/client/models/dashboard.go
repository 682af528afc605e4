package models

type TrendPoint struct {
	Week          int     `json:"week"`
	AverageScore  float64 `json:"average_score"`
	AnalysisCount int     `json:"analysis_count"`
}

type DashboardSummary struct {
	TotalAnalyses    int            `json:"total_analyses"`
	AverageScore     float64        `json:"average_score"`
	RecentAnalyses   []Analysis     `json:"recent_analyses"`
	RiskDistribution map[string]int `json:"risk_distribution"`
	ImprovementTrend []TrendPoint   `json:"improvement_trend"`
}

// Period selects the window for performance metrics.
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

type MetricPoint struct {
	Date         string   `json:"date"`
	Score        float64  `json:"score"`
	Grade        string   `json:"grade"`
	WinRate      *float64 `json:"win_rate"`
	ProfitFactor *float64 `json:"profit_factor"`
	MaxDrawdown  *float64 `json:"max_drawdown"`
	RiskCount    int      `json:"risk_count"`
}

type MetricsSummary struct {
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
	WorstScore   float64 `json:"worst_score"`
}

type PerformanceMetrics struct {
	Period        Period             `json:"period"`
	AnalysesCount int                `json:"analyses_count"`
	Metrics       []MetricPoint      `json:"metrics"`
	Trends        map[string]float64 `json:"trends"`
	Summary       MetricsSummary     `json:"summary"`
}

type Insights struct {
	Insights      []string `json:"insights"`
	AnalysisCount int      `json:"analysis_count"`
	Timeframe     string   `json:"timeframe,omitempty"`
}
