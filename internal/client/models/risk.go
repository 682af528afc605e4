package models

// RiskType describes one category of risk the backend scores.
type RiskType struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Threshold   string  `json:"threshold"`
	Weight      float64 `json:"weight"`
}

// RiskTypes is keyed by the risk identifier, e.g. "over_leverage".
type RiskTypes map[string]RiskType

// RiskScore is the result of scoring a set of risk details.
type RiskScore struct {
	ScoreResult ScoreResult `json:"score_result"`
	Scorecard   string      `json:"scorecard"`
}

// ExplanationsRequest asks for AI explanations of an analysis outcome.
type ExplanationsRequest struct {
	Metrics          Metrics     `json:"metrics"`
	RiskResults      RiskResults `json:"risk_results"`
	ScoreResult      ScoreResult `json:"score_result"`
	FormatForDisplay bool        `json:"format_for_display,omitempty"`
}

// Explanations carries free-form explanation text. Its inner structure
// depends on the model that produced it.
type Explanations struct {
	Explanations map[string]any `json:"explanations"`
	Formatted    *string        `json:"formatted"`
	AIModel      string         `json:"ai_model"`
}

// SimulationRequest is a what-if: improvements maps a risk name to an
// improvement percentage.
type SimulationRequest struct {
	CurrentScore float64            `json:"current_score" validate:"gte=0,lte=100"`
	Improvements map[string]float64 `json:"improvements" validate:"required,dive,keys,required,endkeys,gte=0,lte=100"`
}

type SimulationResult struct {
	OriginalScore   float64  `json:"original_score"`
	SimulatedScore  float64  `json:"simulated_score"`
	Improvement     float64  `json:"improvement"`
	NewGrade        string   `json:"new_grade"`
	Recommendations []string `json:"recommendations"`
}
