package serp

import "context"

// SearchRequest describes one search session.
type SearchRequest struct {
	Engine    Engine `json:"engine"`
	Query     string `json:"query"`
	UserAgent string `json:"userAgent"`

	// AllPages follows pagination until the engine runs out of pages.
	AllPages bool `json:"allPages"`

	// IncludeOmitted asks engines that support it to include results
	// they would otherwise hide as near-duplicates.
	IncludeOmitted bool `json:"includeOmitted"`
}

// Searcher runs search sessions.
type Searcher interface {
	// Search runs one session and always returns a report describing what
	// was gathered, with failures recorded in its DiagnosticLog.
	// Returns EUNKNOWNENGINE if the request names an unsupported engine.
	Search(ctx context.Context, req SearchRequest) (*SessionReport, error)
}

// Navigator advances a rendered result page to the next page.
type Navigator interface {
	// Advance activates the next-page control described by rule on the
	// renderer's current page. It returns ok=false when there are no
	// further pages; a missing or unclickable control is not an error.
	Advance(ctx context.Context, r Renderer, rule PaginationRule) (html string, ok bool, err error)
}

