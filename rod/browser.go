// Package rod implements page rendering with a headless Chrome browser
// driven by go-rod.
package rod

import (
	"context"
	"time"

	"github.com/fwojciec/serp"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// Defaults for rendering.
const (
	DefaultSettleDelay   = 3 * time.Second
	DefaultRenderTimeout = 30 * time.Second
)

var errClosed = serp.Errorf(serp.EINVALID, "browser closed")

// Ensure Browser implements serp.Browser at compile time.
var _ serp.Browser = (*Browser)(nil)

// Browser opens rendering tabs on a managed Chrome instance.
// Browser is safe for concurrent use by multiple goroutines; each Renderer
// it returns is not.
type Browser struct {
	manager *BrowserManager
	settle  time.Duration
	timeout time.Duration
	stealth bool
	headers map[string]string
}

// Option configures a Browser.
type Option func(*Browser)

// WithSettleDelay sets how long a page is given to finish client-side
// rendering after load. Defaults to 3 seconds.
func WithSettleDelay(d time.Duration) Option {
	return func(b *Browser) {
		b.settle = d
	}
}

// WithRenderTimeout bounds a single Render or Activate call, including the
// settle delay. Zero disables the bound. Defaults to 30 seconds.
func WithRenderTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// WithStealth injects the go-rod stealth script into every new tab to mask
// common automation fingerprints.
func WithStealth(enabled bool) Option {
	return func(b *Browser) {
		b.stealth = enabled
	}
}

// WithHeaders sets extra HTTP headers sent with every request of every tab.
func WithHeaders(headers map[string]string) Option {
	return func(b *Browser) {
		b.headers = headers
	}
}

// NewBrowser creates a Browser that opens tabs on manager.
// Closing the Browser closes the manager.
func NewBrowser(manager *BrowserManager, opts ...Option) *Browser {
	b := &Browser{
		manager: manager,
		settle:  DefaultSettleDelay,
		timeout: DefaultRenderTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// NewRenderer opens a new tab presenting itself with userAgent.
// Returns EINVALID if the browser has been closed and ERENDER if the tab
// could not be prepared.
func (b *Browser) NewRenderer(ctx context.Context, userAgent string) (serp.Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	browser, err := b.manager.Acquire()
	if err != nil {
		return nil, err
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		b.manager.Release()
		return nil, serp.Errorf(serp.ERENDER, "opening tab: %v", err)
	}

	r := &Renderer{browser: b, page: page}

	if b.stealth {
		if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
			_ = r.Close()
			return nil, serp.Errorf(serp.ERENDER, "injecting stealth script: %v", err)
		}
	}

	if userAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: userAgent}); err != nil {
			_ = r.Close()
			return nil, serp.Errorf(serp.ERENDER, "setting user agent: %v", err)
		}
	}

	if len(b.headers) > 0 {
		if err := (proto.NetworkSetExtraHTTPHeaders{Headers: toHeadersMap(b.headers)}).Call(page); err != nil {
			_ = r.Close()
			return nil, serp.Errorf(serp.ERENDER, "setting headers: %v", err)
		}
	}

	return r, nil
}

// Close shuts down the underlying browser. Close is safe to call multiple
// times.
func (b *Browser) Close() error {
	return b.manager.Close()
}

// toHeadersMap converts a plain string map to the proto.NetworkHeaders type
// (map[string]gson.JSON) required by NetworkSetExtraHTTPHeaders.
func toHeadersMap(headers map[string]string) proto.NetworkHeaders {
	m := make(proto.NetworkHeaders, len(headers))
	for k, v := range headers {
		m[k] = gson.New(v)
	}
	return m
}
