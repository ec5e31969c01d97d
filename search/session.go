package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure Session implements serp.Searcher at compile time.
var _ serp.Searcher = (*Session)(nil)

// Session runs one query against one engine per Search call. Concurrent
// Search calls are independent; each opens its own renderer.
type Session struct {
	Browser   serp.Browser
	Extractor serp.Extractor
	Navigator serp.Navigator

	// RetryDelays is the backoff schedule for rendering the first page.
	// Empty means no retry.
	RetryDelays []time.Duration

	// MaxPages caps the number of pages extracted in an all-pages walk.
	// Zero means no cap.
	MaxPages int

	// Logger, if set, receives render retry messages.
	Logger *slog.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Search runs the session described by req.
//
// The only error returned is EUNKNOWNENGINE. Every other failure ends the
// walk early and is recorded in the report's DiagnosticLog, keeping the
// items gathered so far.
func (s *Session) Search(ctx context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
	d, err := serp.LookupEngine(req.Engine)
	if err != nil {
		return nil, err
	}

	now := s.Now
	if now == nil {
		now = time.Now
	}
	begin := now()

	acc := serp.PageOutcome{NoResults: true}
	pages, walkErr := s.walk(ctx, d, req, &acc)

	report := &serp.SessionReport{
		Engine:    d.ID,
		Query:     req.Query,
		UserAgent: req.UserAgent,
		Items:     acc.Items,
		Blocked:   acc.Blocked,
		NoResults: acc.NoResults,
		Pages:     pages,
		StartedAt: begin,
		Duration:  now().Sub(begin),
	}
	if report.Items == nil {
		report.Items = []serp.ResultItem{}
	}
	report.DiagnosticLog = diagnose(walkErr, acc.Blocked, req.UserAgent)

	return report, nil
}

// walk renders, extracts and folds pages into acc until the walk stops.
// It returns the number of pages folded and the error that ended the walk
// early, if any.
func (s *Session) walk(ctx context.Context, d *serp.EngineDescriptor, req serp.SearchRequest, acc *serp.PageOutcome) (int, error) {
	r, err := s.Browser.NewRenderer(ctx, req.UserAgent)
	if err != nil {
		return 0, fmt.Errorf("opening renderer: %w", err)
	}
	defer r.Close()

	url := d.SearchURL(req.Query, req.IncludeOmitted)
	html, err := RenderWithRetryDelays(ctx, url, r.Render, s.logRetry, s.RetryDelays)
	if err != nil {
		return 0, fmt.Errorf("rendering %s: %w", url, err)
	}

	for page := 1; ; page++ {
		out, err := s.Extractor.Extract(html, d.Extraction)
		if err != nil {
			return page - 1, fmt.Errorf("extracting page %d: %w", page, err)
		}
		*acc = serp.Fold(*acc, *out)

		if !req.AllPages || out.Blocked {
			return page, nil
		}
		if s.MaxPages > 0 && page >= s.MaxPages {
			return page, nil
		}
		if err := ctx.Err(); err != nil {
			return page, err
		}

		next, ok, err := s.Navigator.Advance(ctx, r, d.Pagination)
		if err != nil {
			return page, fmt.Errorf("advancing past page %d: %w", page, err)
		}
		if !ok {
			return page, nil
		}
		html = next
	}
}

func (s *Session) logRetry(url string, attempt int, err error) {
	if s.Logger == nil {
		return
	}
	s.Logger.Warn("retrying render", "url", url, "attempt", attempt, "err", err)
}

// diagnose builds the diagnostic log line for a finished session. It is
// empty unless the walk failed or the session was blocked.
func diagnose(err error, blocked bool, userAgent string) string {
	var msg string
	if err != nil {
		msg = err.Error()
	}
	if blocked {
		if msg == "" {
			msg = "blocked"
		}
		msg += " | User agent: " + userAgent
	}
	return msg
}
