package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func (g *Gateway) DashboardSummary(ctx context.Context) Result[models.DashboardSummary] {
	return Call[models.DashboardSummary](ctx, g, http.MethodGet, "/api/dashboard/summary", nil)
}

// DashboardMetrics returns performance over the period; empty means month.
func (g *Gateway) DashboardMetrics(ctx context.Context, period models.Period) Result[models.PerformanceMetrics] {
	switch period {
	case "":
		period = models.PeriodMonth
	case models.PeriodDay, models.PeriodWeek, models.PeriodMonth, models.PeriodYear:
	default:
		return failure[models.PerformanceMetrics](fmt.Sprintf("period must be one of: day, week, month, year (got %q)", period))
	}
	q := url.Values{"period": {string(period)}}
	return Call[models.PerformanceMetrics](ctx, g, http.MethodGet, "/api/dashboard/metrics", nil, WithQuery(q))
}

// DashboardInsights returns up to limit insights; zero means the backend
// default.
func (g *Gateway) DashboardInsights(ctx context.Context, limit int) Result[models.Insights] {
	if limit < 0 {
		return failure[models.Insights]("limit must not be negative")
	}
	var opts []CallOption
	if limit > 0 {
		opts = append(opts, WithQuery(url.Values{"limit": {strconv.Itoa(limit)}}))
	}
	return Call[models.Insights](ctx, g, http.MethodGet, "/api/dashboard/insights", nil, opts...)
}
