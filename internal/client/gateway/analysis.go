package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

const defaultListLimit = 20

// TradeUpload selects what UploadTrades submits. With UseSample set the
// backend analyzes its built-in sample and File may be nil.
type TradeUpload struct {
	File      *FilePart
	UseSample bool
}

// UploadTrades submits a CSV of trades, or the sample data set, for analysis.
func (g *Gateway) UploadTrades(ctx context.Context, up TradeUpload) Result[models.AnalysisResult] {
	var opts []CallOption
	if up.UseSample {
		opts = append(opts, WithQuery(url.Values{"use_sample": {"true"}}))
	} else if up.File == nil {
		return failure[models.AnalysisResult]("No file uploaded. Either upload a file or set use_sample=true")
	}
	return Upload[models.AnalysisResult](ctx, g, "/api/analyze/trades", nil, up.File, opts...)
}

// QuickAnalyze analyzes trades sent inline as JSON.
func (g *Gateway) QuickAnalyze(ctx context.Context, req models.QuickAnalyzeRequest) Result[models.AnalysisResult] {
	if res, ok := checked[models.AnalysisResult](req); !ok {
		return res
	}
	return Call[models.AnalysisResult](ctx, g, http.MethodPost, "/api/analyze/quick", req)
}

func (g *Gateway) GetAnalysis(ctx context.Context, id string) Result[models.Analysis] {
	if id == "" {
		return failure[models.Analysis]("analysis id is required")
	}
	return Call[models.Analysis](ctx, g, http.MethodGet, "/api/analyze/"+url.PathEscape(id), nil)
}

func (g *Gateway) ListAnalyses(ctx context.Context, q models.ListQuery) Result[models.AnalysisList] {
	if res, ok := checked[models.AnalysisList](q); !ok {
		return res
	}
	limit := q.Limit
	if limit == 0 {
		limit = defaultListLimit
	}
	query := url.Values{
		"skip":  {strconv.Itoa(q.Skip)},
		"limit": {strconv.Itoa(limit)},
	}
	return Call[models.AnalysisList](ctx, g, http.MethodGet, "/api/analyze/", nil, WithQuery(query))
}
