package rod

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/serp"
)

// Ensure logging decorators implement the serp interfaces.
var (
	_ serp.Browser  = (*LoggingBrowser)(nil)
	_ serp.Renderer = (*LoggingRenderer)(nil)
)

// LoggingBrowser wraps a Browser so that every Renderer it opens logs its
// calls.
type LoggingBrowser struct {
	next   serp.Browser
	logger *slog.Logger
}

// NewLoggingBrowser creates a new LoggingBrowser.
func NewLoggingBrowser(next serp.Browser, logger *slog.Logger) *LoggingBrowser {
	return &LoggingBrowser{next: next, logger: logger}
}

// NewRenderer delegates to the wrapped browser and wraps the result.
func (b *LoggingBrowser) NewRenderer(ctx context.Context, userAgent string) (serp.Renderer, error) {
	r, err := b.next.NewRenderer(ctx, userAgent)
	if err != nil {
		b.logger.Debug("open tab", "userAgent", userAgent, "err", err)
		return nil, err
	}
	return NewLoggingRenderer(r, b.logger), nil
}

// LoggingRenderer wraps a Renderer with debug logging.
type LoggingRenderer struct {
	next   serp.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next serp.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render logs the URL being rendered and delegates to the wrapped renderer.
func (r *LoggingRenderer) Render(ctx context.Context, url string) (html string, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("render",
			"url", url,
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, url)
}

// Activate logs the control being clicked and delegates to the wrapped
// renderer.
func (r *LoggingRenderer) Activate(ctx context.Context, loc serp.Locator) (html string, err error) {
	defer func(begin time.Time) {
		r.logger.Debug("activate",
			"selector", loc.Selector(),
			"bytes", len(html),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Activate(ctx, loc)
}

// Close delegates to the wrapped renderer.
func (r *LoggingRenderer) Close() error {
	return r.next.Close()
}
