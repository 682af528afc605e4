package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tradeguard/internal/client/archive"
	"github.com/dmitrijs2005/tradeguard/internal/client/gateway"
	"github.com/dmitrijs2005/tradeguard/internal/client/models"
	"github.com/dmitrijs2005/tradeguard/internal/logging"
)

// ErrDownloadFailed is returned when the backend yields no report body.
var ErrDownloadFailed = errors.New("report download failed")

// ReportGateway is the part of the gateway used for reports.
type ReportGateway interface {
	GenerateReport(ctx context.Context, req models.ReportRequest) gateway.Result[models.Report]
	ListReports(ctx context.Context, analysisID string) gateway.Result[models.ReportList]
	DownloadReport(ctx context.Context, reportID string, asFile bool) []byte
}

// ReportService generates reports and archives their rendered bodies.
//
// Contract:
//   - Generate / List: pass the gateway Result through unchanged.
//   - Archive: downloads the rendered document and stores it in every
//     configured sink, returning the locations in sink order. The first
//     failing sink aborts the call.
type ReportService interface {
	Generate(ctx context.Context, req models.ReportRequest) gateway.Result[models.Report]
	List(ctx context.Context, analysisID string) gateway.Result[models.ReportList]
	Archive(ctx context.Context, reportID string, format models.ReportFormat) ([]string, error)
}

type reportService struct {
	gw    ReportGateway
	sinks []archive.Sink
	log   logging.Logger
}

func NewReportService(gw ReportGateway, log logging.Logger, sinks ...archive.Sink) ReportService {
	if log == nil {
		log = logging.Discard()
	}
	return &reportService{gw: gw, sinks: sinks, log: log}
}

func (s *reportService) Generate(ctx context.Context, req models.ReportRequest) gateway.Result[models.Report] {
	return s.gw.GenerateReport(ctx, req)
}

func (s *reportService) List(ctx context.Context, analysisID string) gateway.Result[models.ReportList] {
	return s.gw.ListReports(ctx, analysisID)
}

func (s *reportService) Archive(ctx context.Context, reportID string, format models.ReportFormat) ([]string, error) {
	if len(s.sinks) == 0 {
		return nil, errors.New("no archive destination configured")
	}

	data := s.gw.DownloadReport(ctx, reportID, true)
	if data == nil {
		return nil, fmt.Errorf("%w: %s", ErrDownloadFailed, reportID)
	}

	name := fmt.Sprintf("report-%s.%s", reportID, format.Extension())
	locations := make([]string, 0, len(s.sinks))
	for _, sink := range s.sinks {
		loc, err := sink.Store(ctx, name, format.ContentType(), data)
		if err != nil {
			return locations, err
		}
		s.log.Info(ctx, "report archived", "report_id", reportID, "location", loc)
		locations = append(locations, loc)
	}
	return locations, nil
}
