package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure LoggingExtractor implements serp.Extractor.
var _ serp.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   serp.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next serp.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the page outcome.
func (e *LoggingExtractor) Extract(html string, rule serp.ExtractionRule) (out *serp.PageOutcome, err error) {
	defer func(begin time.Time) {
		var items int
		var blocked, noResults bool
		if out != nil {
			items, blocked, noResults = len(out.Items), out.Blocked, out.NoResults
		}
		e.logger.Debug("extract",
			"bytes", len(html),
			"items", items,
			"blocked", blocked,
			"noResults", noResults,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html, rule)
}
