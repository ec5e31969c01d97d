package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/fwojciec/serp"
)

// Run executes the engines command.
func (c *EnginesCmd) Run(deps *Dependencies) error {
	tw := tabwriter.NewWriter(deps.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ENGINE\tPAGINATES\tURL")
	for _, id := range serp.Engines() {
		d, err := serp.LookupEngine(id)
		if err != nil {
			return err
		}
		paginates := "no"
		if d.Pagination.Paginates() {
			paginates = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, paginates, d.URLTemplate)
	}
	return tw.Flush()
}
