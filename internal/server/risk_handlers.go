package server

import (
	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/server/engine"
)

func (a *API) calculateRisk(c *gin.Context) {
	var details map[string]models.RiskDetail
	if !decodeJSON(c, &details) {
		return
	}
	score := engine.Score(details)
	ok(c, models.RiskScore{ScoreResult: score, Scorecard: engine.Scorecard(score)}, "")
}

func (a *API) explanations(c *gin.Context) {
	var req models.ExplanationsRequest
	if !bindJSON(c, &req) {
		return
	}

	exp := engine.Explain(req.Metrics, req.RiskResults, req.ScoreResult)
	out := models.Explanations{Explanations: exp, AIModel: "rules"}
	if req.FormatForDisplay {
		text := engine.FormatExplanations(exp)
		out.Formatted = &text
	}
	ok(c, out, "")
}

func (a *API) simulate(c *gin.Context) {
	var req models.SimulationRequest
	if !bindJSON(c, &req) {
		return
	}
	ok(c, engine.Simulate(req), "")
}

func (a *API) riskTypes(c *gin.Context) {
	ok(c, engine.RiskTypes(), "")
}
