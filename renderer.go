package serp

import "context"

// Browser opens rendering sessions.
type Browser interface {
	// NewRenderer opens a new page (tab) that presents itself with
	// userAgent. An empty userAgent keeps the browser default.
	// The returned Renderer must be closed by the caller.
	NewRenderer(ctx context.Context, userAgent string) (Renderer, error)
}

// Renderer drives a single browser page. It holds one mutable "current
// page", so calls must not be made concurrently.
//
// Both Render and Activate wait for the page to settle after navigation
// and return the rendered HTML.
type Renderer interface {
	// Render navigates to url and returns the rendered HTML.
	Render(ctx context.Context, url string) (html string, err error)

	// Activate clicks the first element matching loc on the current page
	// and returns the HTML rendered afterwards.
	// Returns ENOTFOUND if no element matches and ECONTROL if the element
	// could not be clicked.
	Activate(ctx context.Context, loc Locator) (html string, err error)

	// Close releases the page.
	Close() error
}
