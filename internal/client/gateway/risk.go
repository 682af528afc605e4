package gateway

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

// CalculateRisk scores a map of risk details keyed by risk name.
func (g *Gateway) CalculateRisk(ctx context.Context, details map[string]models.RiskDetail) Result[models.RiskScore] {
	if details == nil {
		details = map[string]models.RiskDetail{}
	}
	return Call[models.RiskScore](ctx, g, http.MethodPost, "/api/risk/calculate", details)
}

func (g *Gateway) RiskExplanations(ctx context.Context, req models.ExplanationsRequest) Result[models.Explanations] {
	return Call[models.Explanations](ctx, g, http.MethodPost, "/api/risk/explanations", req)
}

func (g *Gateway) SimulateRisk(ctx context.Context, req models.SimulationRequest) Result[models.SimulationResult] {
	if res, ok := checked[models.SimulationResult](req); !ok {
		return res
	}
	return Call[models.SimulationResult](ctx, g, http.MethodPost, "/api/risk/simulate", req)
}

func (g *Gateway) RiskTypes(ctx context.Context) Result[models.RiskTypes] {
	return Call[models.RiskTypes](ctx, g, http.MethodGet, "/api/risk/types", nil)
}
