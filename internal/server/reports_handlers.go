package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/server/engine"
)

// maxInlineContent caps report content echoed by the generate endpoint.
const maxInlineContent = 10000

func downloadURL(id string) string { return "/api/reports/download/" + id }

func (a *API) generateReport(c *gin.Context) {
	var req models.ReportRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Format == "" {
		req.Format = models.ReportMarkdown
	}

	rec, found := a.data.analysis(req.AnalysisID)
	if !found {
		fail(c, http.StatusNotFound, "Analysis not found")
		return
	}
	if !visible(c, rec.UserID) {
		fail(c, http.StatusForbidden, "Not authorized to generate report for this analysis")
		return
	}

	now := a.now()
	content := engine.ReportMarkdown(rec.Result, now)
	switch req.Format {
	case models.ReportHTML:
		content = engine.ReportHTML(content)
	case models.ReportPDF:
		content = "PDF generation coming soon. Here's markdown version:\n\n" + content
	}

	report := &reportRecord{
		ID:          uuid.NewString(),
		AnalysisID:  rec.ID,
		Format:      req.Format,
		Content:     content,
		GeneratedAt: now,
	}
	a.data.addReport(report)

	inline := content
	if len(inline) >= maxInlineContent {
		inline = inline[:maxInlineContent] + "..."
	}
	ok(c, models.Report{
		ID:          report.ID,
		AnalysisID:  report.AnalysisID,
		ReportType:  string(report.Format),
		Content:     inline,
		DownloadURL: downloadURL(report.ID),
		GeneratedAt: models.Timestamp{Time: now},
	}, "Report generated successfully")
}

// downloadReport returns the report as bare JSON, or as an attachment with
// format=file.
func (a *API) downloadReport(c *gin.Context) {
	id := c.Param("id")
	existing, found := a.data.report(id)
	if !found {
		fail(c, http.StatusNotFound, "Report not found")
		return
	}
	if rec, found := a.data.analysis(existing.AnalysisID); found && !visible(c, rec.UserID) {
		fail(c, http.StatusForbidden, "Not authorized to download this report")
		return
	}

	r, _ := a.data.downloadReport(id)
	if c.Query("format") == "file" && r.Content != "" {
		ctype := "text/plain; charset=utf-8"
		if r.Format == models.ReportHTML {
			ctype = "text/html; charset=utf-8"
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="tradeguard_report_%s.%s"`, r.ID, r.Format.Extension()))
		c.Data(http.StatusOK, ctype, []byte(r.Content))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":             r.ID,
		"analysis_id":    r.AnalysisID,
		"report_type":    string(r.Format),
		"content":        r.Content,
		"download_count": r.DownloadCount,
		"generated_at":   models.Timestamp{Time: r.GeneratedAt},
	})
}

func (a *API) listReports(c *gin.Context) {
	rec, found := a.data.analysis(c.Param("analysis_id"))
	if !found {
		fail(c, http.StatusNotFound, "Analysis not found")
		return
	}
	if !visible(c, rec.UserID) {
		fail(c, http.StatusForbidden, "Not authorized")
		return
	}

	list := models.ReportList{}
	for _, r := range a.data.analysisReports(rec.ID) {
		list = append(list, models.ReportSummary{
			ID:            r.ID,
			ReportType:    string(r.Format),
			DownloadCount: r.DownloadCount,
			GeneratedAt:   models.Timestamp{Time: r.GeneratedAt},
			DownloadURL:   downloadURL(r.ID),
		})
	}
	ok(c, list, "")
}
