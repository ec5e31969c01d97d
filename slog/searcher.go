// Package slog provides logging decorators for serp services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure LoggingSearcher implements serp.Searcher.
var _ serp.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with session logging.
type LoggingSearcher struct {
	next   serp.Searcher
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher.
func NewLoggingSearcher(next serp.Searcher, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, logger: logger}
}

// Search delegates to the wrapped searcher and logs the session outcome.
// Blocked sessions and sessions with a diagnostic are logged as warnings.
func (s *LoggingSearcher) Search(ctx context.Context, req serp.SearchRequest) (report *serp.SessionReport, err error) {
	defer func(begin time.Time) {
		if err != nil {
			s.logger.Error("search",
				"engine", req.Engine,
				"query", req.Query,
				"duration", time.Since(begin),
				"err", err,
			)
			return
		}
		level := slog.LevelInfo
		if report.Blocked || report.DiagnosticLog != "" {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "search",
			"engine", req.Engine,
			"query", req.Query,
			"allPages", req.AllPages,
			"items", len(report.Items),
			"pages", report.Pages,
			"blocked", report.Blocked,
			"noResults", report.NoResults,
			"diagnostic", report.DiagnosticLog,
			"duration", time.Since(begin),
		)
	}(time.Now())
	return s.next.Search(ctx, req)
}
