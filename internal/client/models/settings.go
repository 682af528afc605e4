package models

// UserSettings are the per-user risk thresholds and AI preferences.
type UserSettings struct {
	UserID                 string    `json:"user_id"`
	MaxPositionSizePct     *float64  `json:"max_position_size_pct"`
	MinWinRate             *float64  `json:"min_win_rate"`
	MaxDrawdownPct         *float64  `json:"max_drawdown_pct"`
	MinRRRatio             *float64  `json:"min_rr_ratio"`
	MinSLUsageRate         *float64  `json:"min_sl_usage_rate"`
	AIEnabled              *bool     `json:"ai_enabled"`
	PreferredModel         *string   `json:"preferred_model"`
	OpenAIAPIKeyConfigured bool      `json:"openai_api_key_configured"`
	CreatedAt              Timestamp `json:"created_at"`
	UpdatedAt              Timestamp `json:"updated_at"`
}

// SettingsUpdate is a partial update. Nil fields are left unchanged.
type SettingsUpdate struct {
	MaxPositionSizePct *float64 `json:"max_position_size_pct,omitempty" validate:"omitempty,gt=0,lte=100"`
	MinWinRate         *float64 `json:"min_win_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	MaxDrawdownPct     *float64 `json:"max_drawdown_pct,omitempty" validate:"omitempty,gt=0,lte=100"`
	MinRRRatio         *float64 `json:"min_rr_ratio,omitempty" validate:"omitempty,gte=0"`
	MinSLUsageRate     *float64 `json:"min_sl_usage_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	AIEnabled          *bool    `json:"ai_enabled,omitempty"`
	PreferredModel     *string  `json:"preferred_model,omitempty"`
	OpenAIAPIKey       *string  `json:"openai_api_key,omitempty"`
}

// AlertSettings controls when risk alerts are raised.
type AlertSettings struct {
	Enabled            bool      `json:"enabled"`
	EmailAlerts        bool      `json:"email_alerts"`
	ScoreThreshold     float64   `json:"score_threshold" validate:"gte=0,lte=100"`
	NotifyOnNewRisk    bool      `json:"notify_on_new_risk"`
	DailyDigest        bool      `json:"daily_digest"`
	SnoozedUntil       Timestamp `json:"snoozed_until"`
	MonitoredRiskTypes []string  `json:"monitored_risk_types,omitempty"`
}

// SnoozeRequest silences an alert for a number of minutes, at most a week.
type SnoozeRequest struct {
	DurationMinutes int `json:"duration_minutes" validate:"required,min=1,max=10080"`
}

type SnoozeResult struct {
	AlertID      string    `json:"alert_id"`
	SnoozedUntil Timestamp `json:"snoozed_until"`
}
