package rod_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/mock"
	"github.com/fwojciec/serp/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestLoggingRenderer_Render(t *testing.T) {
	t.Parallel()

	t.Run("logs render with bytes and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Renderer{
			RenderFn: func(_ context.Context, _ string) (string, error) {
				return "<html>content</html>", nil
			},
		}

		r := rod.NewLoggingRenderer(inner, debugLogger(&buf))
		html, err := r.Render(context.Background(), "https://www.bing.com/search?q=go")

		require.NoError(t, err)
		assert.Equal(t, "<html>content</html>", html)
		output := buf.String()
		assert.Contains(t, output, "msg=render")
		assert.Contains(t, output, "url=\"https://www.bing.com/search?q=go\"")
		assert.Contains(t, output, "bytes=20")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Renderer{
			RenderFn: func(_ context.Context, _ string) (string, error) {
				return "", errors.New("network error")
			},
		}

		_, err := rod.NewLoggingRenderer(inner, debugLogger(&buf)).Render(context.Background(), "https://example.com")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"network error\"")
	})
}

func TestLoggingRenderer_Activate(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := &mock.Renderer{
		ActivateFn: func(_ context.Context, _ serp.Locator) (string, error) {
			return "", serp.Errorf(serp.ENOTFOUND, "no element")
		},
	}

	_, err := rod.NewLoggingRenderer(inner, debugLogger(&buf)).Activate(context.Background(), serp.Locator{ID: "pnnext"})

	require.Error(t, err)
	output := buf.String()
	assert.Contains(t, output, "msg=activate")
	assert.Contains(t, output, "selector=#pnnext")
}

func TestLoggingBrowser_NewRenderer(t *testing.T) {
	t.Parallel()

	t.Run("wraps returned renderer", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		closed := false
		inner := &mock.Browser{
			NewRendererFn: func(_ context.Context, ua string) (serp.Renderer, error) {
				assert.Equal(t, "agent", ua)
				return &mock.Renderer{
					RenderFn: func(_ context.Context, _ string) (string, error) { return "x", nil },
					CloseFn: func() error {
						closed = true
						return nil
					},
				}, nil
			},
		}

		r, err := rod.NewLoggingBrowser(inner, debugLogger(&buf)).NewRenderer(context.Background(), "agent")
		require.NoError(t, err)
		_, err = r.Render(context.Background(), "https://example.com")
		require.NoError(t, err)
		require.NoError(t, r.Close())

		assert.IsType(t, &rod.LoggingRenderer{}, r)
		assert.True(t, closed)
		assert.Contains(t, buf.String(), "msg=render")
	})

	t.Run("logs open failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		inner := &mock.Browser{
			NewRendererFn: func(_ context.Context, _ string) (serp.Renderer, error) {
				return nil, serp.Errorf(serp.EINVALID, "browser closed")
			},
		}

		_, err := rod.NewLoggingBrowser(inner, debugLogger(&buf)).NewRenderer(context.Background(), "")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "msg=\"open tab\"")
	})
}
