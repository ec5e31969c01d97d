package rod

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/fwojciec/serp"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Renderer implements serp.Renderer at compile time.
var _ serp.Renderer = (*Renderer)(nil)

// Renderer drives a single browser tab. It is not safe for concurrent use.
type Renderer struct {
	browser *Browser
	page    *rod.Page
	closed  atomic.Bool
}

// Render navigates the tab to url, waits for the load event and the settle
// delay, and returns the rendered HTML.
//
// Cancellation of ctx is returned as ctx.Err(). Any other failure, including
// the render timeout, is returned as ERENDER.
func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	if r.closed.Load() {
		return "", errClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page := r.page.Context(rctx)
	if err := page.Navigate(url); err != nil {
		return "", renderError(ctx, "navigating", err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", renderError(ctx, "waiting for load", err)
	}

	return r.settled(ctx, rctx, page)
}

// Activate clicks the first element matching loc and returns the HTML
// rendered after the page settles.
func (r *Renderer) Activate(ctx context.Context, loc serp.Locator) (string, error) {
	if r.closed.Load() {
		return "", errClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rctx, cancel := r.withTimeout(ctx)
	defer cancel()

	page := r.page.Context(rctx)
	sel := loc.Selector()

	has, el, err := page.Has(sel)
	if err != nil {
		return "", renderError(ctx, "locating control", err)
	}
	if !has {
		return "", serp.Errorf(serp.ENOTFOUND, "no element matches %q", sel)
	}

	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", serp.Errorf(serp.ECONTROL, "clicking %q: %v", sel, err)
	}

	if err := page.WaitLoad(); err != nil {
		return "", renderError(ctx, "waiting for load", err)
	}

	return r.settled(ctx, rctx, page)
}

// Close closes the tab and returns its lease to the manager.
// Close is safe to call multiple times.
func (r *Renderer) Close() error {
	if !r.closed.CompareAndSwap(false, true) {
		return nil
	}
	defer r.browser.manager.Release()
	return r.page.Close()
}

// settled waits for the settle delay and reads the page HTML.
func (r *Renderer) settled(ctx, rctx context.Context, page *rod.Page) (string, error) {
	if err := sleep(rctx, r.browser.settle); err != nil {
		return "", renderError(ctx, "settling", err)
	}
	html, err := page.HTML()
	if err != nil {
		return "", renderError(ctx, "reading HTML", err)
	}
	return html, nil
}

func (r *Renderer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.browser.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.browser.timeout)
}

// renderError returns the caller's context error if ctx is done, and wraps
// err as ERENDER otherwise. A deadline hit by the render timeout is a render
// failure, not a caller cancellation.
func renderError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return serp.Errorf(serp.ERENDER, "%s: render timed out", op)
	}
	return serp.Errorf(serp.ERENDER, "%s: %v", op, err)
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
