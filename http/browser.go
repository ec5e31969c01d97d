// Package http provides a plain HTTP implementation of serp.Browser for
// result pages that render without JavaScript.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/serp"
)

// DefaultTimeout is the default limit for a single page request.
// Kept consistent with rod.DefaultRenderTimeout.
const DefaultTimeout = 30 * time.Second

// maxBodySize bounds the bytes read from a single response.
const maxBodySize = 10 << 20

var errClosed = serp.Errorf(serp.EINVALID, "renderer closed")

// Ensure types implement the serp interfaces at compile time.
var (
	_ serp.Browser  = (*Browser)(nil)
	_ serp.Renderer = (*Renderer)(nil)
)

// Browser opens renderers that fetch pages over HTTP. Unlike rod.Browser,
// it does not execute JavaScript, and pagination follows the href of the
// next-page control instead of clicking it.
type Browser struct {
	client  *http.Client
	timeout time.Duration
	headers map[string]string
	proxy   *url.URL
}

// Option configures a Browser.
type Option func(*Browser)

// WithTimeout sets the limit for a single page request.
// Defaults to DefaultTimeout (30s) if not specified.
func WithTimeout(d time.Duration) Option {
	return func(b *Browser) {
		b.timeout = d
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(b *Browser) {
		b.headers = headers
	}
}

// WithProxy routes requests through the proxy at rawURL. An empty or
// unparsable URL leaves the environment proxy settings in effect.
func WithProxy(rawURL string) Option {
	return func(b *Browser) {
		if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
			b.proxy = u
		}
	}
}

// NewBrowser creates a new HTTP Browser.
func NewBrowser(opts ...Option) *Browser {
	b := &Browser{
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(b)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if b.proxy != nil {
		transport.Proxy = http.ProxyURL(b.proxy)
	}
	b.client = &http.Client{
		Timeout:   b.timeout,
		Transport: transport,
	}

	return b
}

// NewRenderer returns a renderer presenting itself with userAgent.
func (b *Browser) NewRenderer(ctx context.Context, userAgent string) (serp.Renderer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Renderer{browser: b, userAgent: userAgent}, nil
}

// Close releases idle connections.
func (b *Browser) Close() error {
	b.client.CloseIdleConnections()
	return nil
}

// Renderer fetches one page at a time and remembers the last page so that
// Activate can follow its links. It is not safe for concurrent use.
type Renderer struct {
	browser   *Browser
	userAgent string

	current *url.URL
	html    string
	closed  atomic.Bool
}

// Render fetches url and returns the response body.
//
// Cancellation of ctx is returned as ctx.Err(). Any other failure, including
// a non-200 status, is returned as ERENDER.
func (r *Renderer) Render(ctx context.Context, rawURL string) (string, error) {
	if r.closed.Load() {
		return "", errClosed
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", serp.Errorf(serp.ERENDER, "invalid url %q: %v", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", serp.Errorf(serp.ERENDER, "building request: %v", err)
	}
	if r.userAgent != "" {
		req.Header.Set("User-Agent", r.userAgent)
	}
	for k, v := range r.browser.headers {
		req.Header.Set(k, v)
	}

	resp, err := r.browser.client.Do(req)
	if err != nil {
		return "", fetchError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", serp.Errorf(serp.ERENDER, "HTTP %d for %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fetchError(ctx, err)
	}

	r.current = resp.Request.URL
	r.html = string(body)
	return r.html, nil
}

// Activate follows the href of the first element on the last fetched page
// matching loc. Returns ENOTFOUND when no element matches and ECONTROL when
// the element has no usable link.
func (r *Renderer) Activate(ctx context.Context, loc serp.Locator) (string, error) {
	if r.closed.Load() {
		return "", errClosed
	}
	if r.current == nil {
		return "", serp.Errorf(serp.ECONTROL, "no page rendered")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(r.html))
	if err != nil {
		return "", serp.Errorf(serp.ECONTROL, "parsing page: %v", err)
	}

	sel := loc.Selector()
	el := doc.Find(sel).First()
	if el.Length() == 0 {
		return "", serp.Errorf(serp.ENOTFOUND, "no element matches %q", sel)
	}

	href, ok := el.Attr("href")
	if !ok {
		// Controls are often a wrapper around the actual link.
		href, ok = el.Find("a[href]").First().Attr("href")
	}
	href = strings.TrimSpace(href)
	if !ok || href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return "", serp.Errorf(serp.ECONTROL, "control %q has no link to follow", sel)
	}

	next, err := r.current.Parse(href)
	if err != nil {
		return "", serp.Errorf(serp.ECONTROL, "control %q has invalid link %q: %v", sel, href, err)
	}

	return r.Render(ctx, next.String())
}

// Close marks the renderer closed. Close is safe to call multiple times.
func (r *Renderer) Close() error {
	r.closed.Store(true)
	return nil
}

// fetchError returns the caller's context error if ctx is done, and wraps
// err as ERENDER otherwise.
func fetchError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return serp.Errorf(serp.ERENDER, "request timed out")
	}
	return serp.Errorf(serp.ERENDER, "%v", err)
}
