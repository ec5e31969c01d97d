package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure LoggingReportService implements serp.ReportService.
var _ serp.ReportService = (*LoggingReportService)(nil)

// LoggingReportService wraps a ReportService with debug logging.
type LoggingReportService struct {
	next   serp.ReportService
	logger *slog.Logger
}

// NewLoggingReportService creates a new LoggingReportService.
func NewLoggingReportService(next serp.ReportService, logger *slog.Logger) *LoggingReportService {
	return &LoggingReportService{next: next, logger: logger}
}

// CreateReport delegates to the wrapped service and logs the assigned ID.
func (s *LoggingReportService) CreateReport(ctx context.Context, report *serp.SessionReport) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("create report",
			"id", report.ID,
			"engine", report.Engine,
			"items", len(report.Items),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.CreateReport(ctx, report)
}

// FindReportByID delegates to the wrapped service.
func (s *LoggingReportService) FindReportByID(ctx context.Context, id string) (report *serp.SessionReport, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find report",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindReportByID(ctx, id)
}

// FindReports delegates to the wrapped service and logs the result count.
func (s *LoggingReportService) FindReports(ctx context.Context, filter serp.ReportFilter) (reports []*serp.SessionReport, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find reports",
			"count", len(reports),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindReports(ctx, filter)
}

// DeleteReport delegates to the wrapped service.
func (s *LoggingReportService) DeleteReport(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("delete report",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteReport(ctx, id)
}
