package models

type ReportFormat string

const (
	ReportMarkdown ReportFormat = "markdown"
	ReportHTML     ReportFormat = "html"
	ReportPDF      ReportFormat = "pdf"
)

// Extension returns the file extension used when saving a report.
func (f ReportFormat) Extension() string {
	switch f {
	case ReportHTML:
		return "html"
	case ReportPDF:
		return "pdf"
	default:
		return "md"
	}
}

// ContentType returns the MIME type used when archiving a report.
func (f ReportFormat) ContentType() string {
	switch f {
	case ReportHTML:
		return "text/html"
	case ReportPDF:
		return "application/pdf"
	default:
		return "text/markdown"
	}
}

type ReportRequest struct {
	AnalysisID      string       `json:"analysis_id" validate:"required"`
	Format          ReportFormat `json:"format,omitempty" validate:"omitempty,oneof=markdown html pdf"`
	IncludeSections []string     `json:"include_sections,omitempty"`
}

type Report struct {
	ID          string    `json:"id"`
	AnalysisID  string    `json:"analysis_id"`
	ReportType  string    `json:"report_type"`
	Content     string    `json:"content,omitempty"`
	DownloadURL string    `json:"download_url,omitempty"`
	GeneratedAt Timestamp `json:"generated_at"`
}

type ReportSummary struct {
	ID            string    `json:"id"`
	ReportType    string    `json:"report_type"`
	DownloadCount int       `json:"download_count"`
	GeneratedAt   Timestamp `json:"generated_at"`
	DownloadURL   string    `json:"download_url"`
}

type ReportList []ReportSummary
