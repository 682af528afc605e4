package gateway

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
)

func (g *Gateway) GenerateReport(ctx context.Context, req models.ReportRequest) Result[models.Report] {
	if req.Format == "" {
		req.Format = models.ReportMarkdown
	}
	if res, ok := checked[models.Report](req); !ok {
		return res
	}
	return Call[models.Report](ctx, g, http.MethodPost, "/api/reports/generate", req)
}

// ListReports lists the reports generated for one analysis.
func (g *Gateway) ListReports(ctx context.Context, analysisID string) Result[models.ReportList] {
	if analysisID == "" {
		return failure[models.ReportList]("analysis id is required")
	}
	return Call[models.ReportList](ctx, g, http.MethodGet, "/api/reports/"+url.PathEscape(analysisID), nil)
}

// DownloadReport returns the report body, or nil on any failure. With asFile
// the backend streams the rendered document instead of a JSON description.
func (g *Gateway) DownloadReport(ctx context.Context, reportID string, asFile bool) []byte {
	if reportID == "" {
		return nil
	}
	var q url.Values
	if asFile {
		q = url.Values{"format": {"file"}}
	}
	return g.Download(ctx, "/api/reports/download/"+url.PathEscape(reportID), q)
}
