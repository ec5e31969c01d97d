package serp

import (
	"context"
	"time"
)

// SessionReport is the result of one search session: one query against
// one engine, possibly spanning several result pages.
type SessionReport struct {
	ID        string       `json:"id"`
	Engine    Engine       `json:"engine"`
	Query     string       `json:"query"`
	UserAgent string       `json:"userAgent"`
	Items     []ResultItem `json:"items"`
	Blocked   bool         `json:"blocked"`

	// NoResults stays true until a page contributes at least one item.
	NoResults bool `json:"noResults"`

	// DiagnosticLog is empty unless an internal failure occurred or the
	// session was blocked.
	DiagnosticLog string `json:"diagnosticLog"`

	// Pages is the number of result pages that were extracted.
	Pages       int           `json:"pages"`
	ContentHash string        `json:"contentHash"`
	StartedAt   time.Time     `json:"startedAt"`
	Duration    time.Duration `json:"duration"`
}

// Validate returns an error if the report contains invalid fields.
func (r *SessionReport) Validate() error {
	if r.Engine == "" {
		return Errorf(EINVALID, "report engine required")
	}
	if _, err := LookupEngine(r.Engine); err != nil {
		return err
	}
	return nil
}

// ReportService represents a service for managing stored session reports.
type ReportService interface {
	// CreateReport stores a new report and assigns its ID.
	CreateReport(ctx context.Context, report *SessionReport) error

	// FindReportByID retrieves a report and its items by ID.
	// Returns ENOTFOUND if the report does not exist.
	FindReportByID(ctx context.Context, id string) (*SessionReport, error)

	// FindReports retrieves reports matching the filter, newest first.
	// Items are loaded for every returned report.
	FindReports(ctx context.Context, filter ReportFilter) ([]*SessionReport, error)

	// DeleteReport permanently removes a report and its items.
	// Returns ENOTFOUND if the report does not exist.
	DeleteReport(ctx context.Context, id string) error
}

// ReportFilter represents a filter for FindReports.
type ReportFilter struct {
	ID      *string `json:"id"`
	Engine  *Engine `json:"engine"`
	Query   *string `json:"query"`
	Blocked *bool   `json:"blocked"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// ReportWriter persists reports to an export destination with atomic
// semantics. Save stages a report; Commit makes staged reports permanent;
// Abort discards them.
type ReportWriter interface {
	Save(ctx context.Context, report *SessionReport) error
	Commit() error
	Abort() error
}
