package mock

import (
	"context"

	"github.com/fwojciec/serp"
)

var (
	_ serp.ReportService = (*ReportService)(nil)
	_ serp.ReportWriter  = (*ReportWriter)(nil)
)

// ReportService is a mock implementation of serp.ReportService.
type ReportService struct {
	CreateReportFn   func(ctx context.Context, r *serp.SessionReport) error
	FindReportByIDFn func(ctx context.Context, id string) (*serp.SessionReport, error)
	FindReportsFn    func(ctx context.Context, filter serp.ReportFilter) ([]*serp.SessionReport, error)
	DeleteReportFn   func(ctx context.Context, id string) error
}

func (s *ReportService) CreateReport(ctx context.Context, r *serp.SessionReport) error {
	return s.CreateReportFn(ctx, r)
}

func (s *ReportService) FindReportByID(ctx context.Context, id string) (*serp.SessionReport, error) {
	return s.FindReportByIDFn(ctx, id)
}

func (s *ReportService) FindReports(ctx context.Context, filter serp.ReportFilter) ([]*serp.SessionReport, error) {
	return s.FindReportsFn(ctx, filter)
}

func (s *ReportService) DeleteReport(ctx context.Context, id string) error {
	return s.DeleteReportFn(ctx, id)
}

// ReportWriter is a mock implementation of serp.ReportWriter.
type ReportWriter struct {
	SaveFn   func(ctx context.Context, r *serp.SessionReport) error
	CommitFn func() error
	AbortFn  func() error
}

func (w *ReportWriter) Save(ctx context.Context, r *serp.SessionReport) error {
	return w.SaveFn(ctx, r)
}

func (w *ReportWriter) Commit() error {
	return w.CommitFn()
}

func (w *ReportWriter) Abort() error {
	return w.AbortFn()
}
