package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/serp"
)

// Run executes the extract command.
func (c *ExtractCmd) Run(deps *Dependencies) error {
	engine, err := serp.ParseEngine(c.Engine)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s. Use 'serp engines' to see supported engines.\n", serp.ErrorMessage(err))
		return err
	}
	d, err := serp.LookupEngine(engine)
	if err != nil {
		return err
	}

	html, err := os.ReadFile(c.File)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %v\n", err)
		return err
	}

	out, err := deps.Extractor.Extract(string(html), d.Extraction)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", serp.ErrorMessage(err))
		return err
	}

	switch {
	case out.Blocked:
		fmt.Fprintln(deps.Stdout, "blocked: true")
	case out.NoResults:
		fmt.Fprintln(deps.Stdout, "no results: true")
	}
	if items := serp.FormatItems(out.Items); items != "" {
		fmt.Fprintln(deps.Stdout, items)
	}
	fmt.Fprintf(deps.Stdout, "%d results\n", len(out.Items))
	return nil
}
