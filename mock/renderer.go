package mock

import (
	"context"

	"github.com/fwojciec/serp"
)

var (
	_ serp.Browser  = (*Browser)(nil)
	_ serp.Renderer = (*Renderer)(nil)
)

// Browser is a mock implementation of serp.Browser.
type Browser struct {
	NewRendererFn func(ctx context.Context, userAgent string) (serp.Renderer, error)
}

func (b *Browser) NewRenderer(ctx context.Context, userAgent string) (serp.Renderer, error) {
	return b.NewRendererFn(ctx, userAgent)
}

// Renderer is a mock implementation of serp.Renderer.
type Renderer struct {
	RenderFn   func(ctx context.Context, url string) (string, error)
	ActivateFn func(ctx context.Context, loc serp.Locator) (string, error)
	CloseFn    func() error
}

func (r *Renderer) Render(ctx context.Context, url string) (string, error) {
	return r.RenderFn(ctx, url)
}

func (r *Renderer) Activate(ctx context.Context, loc serp.Locator) (string, error) {
	return r.ActivateFn(ctx, loc)
}

func (r *Renderer) Close() error {
	return r.CloseFn()
}
