package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fwojciec/serp"
	"github.com/fwojciec/serp/bloom"
	"github.com/fwojciec/serp/search"
)

// dedupeFPRate is the false positive rate of the request deduplication
// filter. A false positive silently drops a request, so it is kept low.
const dedupeFPRate = 0.0001

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	engines := make([]serp.Engine, 0, len(c.Engines))
	for _, name := range c.Engines {
		engine, err := serp.ParseEngine(name)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s. Use 'serp engines' to see supported engines.\n", serp.ErrorMessage(err))
			return err
		}
		engines = append(engines, engine)
	}

	queries, err := readQueries(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: reading %s: %v\n", c.File, err)
		return err
	}
	if len(queries) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no queries in %s\n", c.File)
		return serp.Errorf(serp.EINVALID, "no queries in %s", c.File)
	}

	reqs := make([]serp.SearchRequest, 0, len(engines)*len(queries))
	for _, query := range queries {
		for _, engine := range engines {
			reqs = append(reqs, serp.SearchRequest{
				Engine:         engine,
				Query:          query,
				UserAgent:      c.Browser.UserAgent,
				AllPages:       c.AllPages,
				IncludeOmitted: c.Omitted,
			})
		}
	}

	reqs, skipped := bloom.NewFilter(uint(len(reqs)), dedupeFPRate).Dedupe(reqs)
	if skipped > 0 {
		fmt.Fprintf(deps.Stderr, "Skipping %d duplicate searches\n", skipped)
	}

	var mu sync.Mutex
	progress := func(e search.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		status := "ok"
		switch {
		case e.Err != nil:
			status = "failed: " + serp.ErrorMessage(e.Err)
		case e.Report.Blocked:
			status = "blocked"
		case e.Report.NoResults:
			status = "no results"
		}
		fmt.Fprintf(deps.Stderr, "[%d/%d] %s %q: %s\n", e.Completed, e.Total, e.Request.Engine, e.Request.Query, status)
	}

	batch := &search.Batch{Searcher: deps.Searcher, Concurrency: c.Concurrency}
	results := batch.Run(deps.Ctx, reqs, progress)

	var writer serp.ReportWriter
	if c.Out != "" {
		out := filepath.Clean(c.Out)
		writer = deps.NewReportWriter(filepath.Dir(out), filepath.Base(out))
	}

	var saved, blocked, failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			continue
		}
		if err := deps.Reports.CreateReport(deps.Ctx, res.Report); err != nil {
			fmt.Fprintf(deps.Stderr, "error: saving report: %s\n", serp.ErrorMessage(err))
			return abort(writer, err)
		}
		if writer != nil {
			if err := writer.Save(deps.Ctx, res.Report); err != nil {
				fmt.Fprintf(deps.Stderr, "error: exporting report: %v\n", err)
				return abort(writer, err)
			}
		}
		saved++
		if res.Report.Blocked {
			blocked++
		}
	}

	if err := deps.Ctx.Err(); err != nil {
		return abort(writer, err)
	}

	if writer != nil {
		if err := writer.Commit(); err != nil {
			fmt.Fprintf(deps.Stderr, "error: exporting reports: %v\n", err)
			return err
		}
	}

	fmt.Fprintf(deps.Stdout, "Saved %d reports (%d blocked, %d failed)\n", saved, blocked, failed)
	if writer != nil {
		fmt.Fprintf(deps.Stdout, "Exported to %s\n", c.Out)
	}
	return nil
}

// abort discards staged exports and returns err.
func abort(writer serp.ReportWriter, err error) error {
	if writer == nil {
		return err
	}
	return errors.Join(err, writer.Abort())
}

// readQueries returns the queries in path, one per line. Blank lines and
// lines starting with # are ignored.
func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return queries, nil
}
