package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/serp"
)

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	engine, err := serp.ParseEngine(c.Engine)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'serp engines' to see supported engines.\n", serp.ErrorMessage(err))
		return err
	}

	query := strings.TrimSpace(c.Query)
	if query == "" {
		fmt.Fprintln(deps.Stderr, "error: query is required")
		return serp.Errorf(serp.EINVALID, "query is required")
	}

	report, err := deps.Searcher.Search(deps.Ctx, serp.SearchRequest{
		Engine:         engine,
		Query:          query,
		UserAgent:      c.Browser.UserAgent,
		AllPages:       c.AllPages,
		IncludeOmitted: c.Omitted,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	if err := deps.Reports.CreateReport(deps.Ctx, report); err != nil {
		fmt.Fprintf(deps.Stderr, "error: saving report: %s\n", serp.ErrorMessage(err))
		return err
	}

	if c.JSON {
		return writeJSON(deps, report)
	}

	fmt.Fprint(deps.Stdout, serp.FormatReport(report))
	fmt.Fprintf(deps.Stdout, "\nSaved report %s\n", report.ID)
	return nil
}

func writeJSON(deps *Dependencies, v any) error {
	enc := json.NewEncoder(deps.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
