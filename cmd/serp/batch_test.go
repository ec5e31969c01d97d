package main_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/fwojciec/serp"
	main "github.com/fwojciec/serp/cmd/serp"
	"github.com/fwojciec/serp/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeQueries(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "queries.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// recordingSearcher returns a report per request and records what it saw.
type recordingSearcher struct {
	mu   sync.Mutex
	reqs []serp.SearchRequest
}

func (s *recordingSearcher) searcher(blocked map[string]bool) *mock.Searcher {
	return &mock.Searcher{
		SearchFn: func(_ context.Context, req serp.SearchRequest) (*serp.SessionReport, error) {
			s.mu.Lock()
			s.reqs = append(s.reqs, req)
			s.mu.Unlock()
			return &serp.SessionReport{
				Engine:  req.Engine,
				Query:   req.Query,
				Items:   []serp.ResultItem{{Title: "t", Link: "l"}},
				Blocked: blocked[req.Query],
				Pages:   1,
			}, nil
		},
	}
}

func TestBatchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("searches every query on every engine and stores reports", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "golang\n\n# comment\nrust lang\n")
		rec := &recordingSearcher{}

		var mu sync.Mutex
		var stored []*serp.SessionReport
		reports := &mock.ReportService{
			CreateReportFn: func(_ context.Context, r *serp.SessionReport) error {
				mu.Lock()
				defer mu.Unlock()
				stored = append(stored, r)
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   stderr,
			Searcher: rec.searcher(map[string]bool{"rust lang": true}),
			Reports:  reports,
		}

		cmd := &main.BatchCmd{
			File:        path,
			Engines:     []string{"google", "bing"},
			Concurrency: 2,
			AllPages:    true,
		}

		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Len(t, rec.reqs, 4)
		for _, req := range rec.reqs {
			assert.True(t, req.AllPages)
		}
		// Stored in request order: queries outer, engines inner.
		require.Len(t, stored, 4)
		assert.Equal(t, "golang", stored[0].Query)
		assert.Equal(t, serp.EngineGoogle, stored[0].Engine)
		assert.Equal(t, serp.EngineBing, stored[1].Engine)
		assert.Equal(t, "rust lang", stored[2].Query)

		assert.Contains(t, stdout.String(), "Saved 4 reports (2 blocked, 0 failed)")
		assert.Contains(t, stderr.String(), "[4/4]")
		assert.Contains(t, stderr.String(), "blocked")
	})

	t.Run("skips duplicate queries", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "golang\nGoLang\n  golang  \n")
		rec := &recordingSearcher{}
		reports := &mock.ReportService{
			CreateReportFn: func(_ context.Context, _ *serp.SessionReport) error { return nil },
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Searcher: rec.searcher(nil),
			Reports:  reports,
		}

		err := (&main.BatchCmd{File: path, Engines: []string{"google"}}).Run(deps)

		require.NoError(t, err)
		assert.Len(t, rec.reqs, 1)
		assert.Contains(t, stderr.String(), "Skipping 2 duplicate searches")
	})

	t.Run("counts refused requests as failed", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "golang\n")
		searcher := &mock.Searcher{
			SearchFn: func(_ context.Context, _ serp.SearchRequest) (*serp.SessionReport, error) {
				return nil, serp.Errorf(serp.EUNKNOWNENGINE, "unknown engine")
			},
		}
		reports := &mock.ReportService{
			CreateReportFn: func(_ context.Context, _ *serp.SessionReport) error {
				t.Fatal("nothing should be stored")
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Searcher: searcher,
			Reports:  reports,
		}

		err := (&main.BatchCmd{File: path, Engines: []string{"google"}}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Saved 0 reports (0 blocked, 1 failed)")
	})

	t.Run("exports reports and commits", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "golang\nrust\n")
		rec := &recordingSearcher{}
		reports := &mock.ReportService{
			CreateReportFn: func(_ context.Context, _ *serp.SessionReport) error { return nil },
		}

		var saved int
		var committed bool
		var dir, name string
		writer := &mock.ReportWriter{
			SaveFn: func(_ context.Context, _ *serp.SessionReport) error {
				saved++
				return nil
			},
			CommitFn: func() error {
				committed = true
				return nil
			},
			AbortFn: func() error {
				t.Fatal("Abort should not be called")
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   stdout,
			Stderr:   &bytes.Buffer{},
			Searcher: rec.searcher(nil),
			Reports:  reports,
			NewReportWriter: func(d, n string) serp.ReportWriter {
				dir, name = d, n
				return writer
			},
		}

		err := (&main.BatchCmd{File: path, Engines: []string{"google"}, Out: "/tmp/exports/run1/"}).Run(deps)

		require.NoError(t, err)
		assert.Equal(t, 2, saved)
		assert.True(t, committed)
		assert.Equal(t, "/tmp/exports", dir)
		assert.Equal(t, "run1", name)
		assert.Contains(t, stdout.String(), "Exported to")
	})

	t.Run("aborts export when storing fails", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "golang\n")
		rec := &recordingSearcher{}
		reports := &mock.ReportService{
			CreateReportFn: func(_ context.Context, _ *serp.SessionReport) error {
				return errors.New("disk full")
			},
		}

		var aborted bool
		writer := &mock.ReportWriter{
			CommitFn: func() error {
				t.Fatal("Commit should not be called")
				return nil
			},
			AbortFn: func() error {
				aborted = true
				return nil
			},
		}

		deps := &main.Dependencies{
			Ctx:             context.Background(),
			Stdout:          &bytes.Buffer{},
			Stderr:          &bytes.Buffer{},
			Searcher:        rec.searcher(nil),
			Reports:         reports,
			NewReportWriter: func(_, _ string) serp.ReportWriter { return writer },
		}

		err := (&main.BatchCmd{File: path, Engines: []string{"google"}, Out: "out"}).Run(deps)

		require.Error(t, err)
		assert.True(t, aborted)
	})

	t.Run("rejects unknown engine", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "golang\n")
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		err := (&main.BatchCmd{File: path, Engines: []string{"google", "altavista"}}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, serp.EUNKNOWNENGINE, serp.ErrorCode(err))
	})

	t.Run("rejects file without queries", func(t *testing.T) {
		t.Parallel()

		path := writeQueries(t, "# only comments\n\n")
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		err := (&main.BatchCmd{File: path, Engines: []string{"google"}}).Run(deps)

		require.Error(t, err)
		assert.Equal(t, serp.EINVALID, serp.ErrorCode(err))
		assert.Contains(t, stderr.String(), "no queries")
	})
}
